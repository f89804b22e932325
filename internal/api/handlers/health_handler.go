package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/St1cky1/task-manager/internal/entity"
)

// HealthChecker - зависимость, доступность которой проверяет /healthz
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type HealthHandler struct {
	checker HealthChecker
}

// NewHealthHandler: checker может быть nil, тогда сервис всегда здоров (хранилище в памяти)
func NewHealthHandler(checker HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

type healthResponse struct {
	Status string `json:"status"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.checker != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.checker.HealthCheck(ctx); err != nil {
			writeError(w, r, entity.Unavailable(err, "task store is unreachable"))
			return
		}
	}

	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
