package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/St1cky1/task-manager/internal/entity"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc/codes"
)

// writeError переводит вид ошибки в HTTP статус
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := entity.CodeOf(err)
	status := http.StatusInternalServerError
	if code != codes.Unknown {
		status = runtime.HTTPStatusFromCode(code)
	}

	resp := errorResponse{
		Message:         errorTitle(status),
		DetailedMessage: err.Error(),
		ErrorTime:       time.Now(),
	}

	level := slog.LevelDebug
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
		// внутренние детали наружу не отдаем
		if code == codes.Unknown {
			resp.DetailedMessage = "internal server error"
		}
	}
	slog.Log(r.Context(), level, "ошибка обработки запроса",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"request_id", middleware.GetReqID(r.Context()),
		"error", err,
	)

	writeJSON(w, status, resp)
}

func errorTitle(status int) string {
	switch status {
	case http.StatusNotFound:
		return "Object not found"
	case http.StatusBadRequest:
		return "Bad request"
	case http.StatusServiceUnavailable:
		return "Service unavailable"
	default:
		return "Internal server error"
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("не удалось записать JSON ответ", "error", err)
	}
}
