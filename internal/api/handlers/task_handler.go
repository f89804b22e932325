package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/St1cky1/task-manager/internal/entity"
	"github.com/St1cky1/task-manager/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type TaskHandler struct {
	taskService *usecase.TaskService
	validate    *validator.Validate
}

func NewTaskHandler(taskService *usecase.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		validate:    validator.New(),
	}
}

// создаем новую задачу
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := h.decode(r, &req, createOnlyFields...); err != nil {
		writeError(w, r, err)
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), req.details())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, taskToResponse(task))
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	task, err := h.taskService.GetTask(r.Context(), taskID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, taskToResponse(task))
}

func (h *TaskHandler) EditTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req editTaskRequest
	if err := h.decode(r, &req, serverFields...); err != nil {
		writeError(w, r, err)
		return
	}

	editReq := entity.EditTaskRequest{Details: req.details()}
	if req.Status != nil {
		status := entity.Status(*req.Status)
		editReq.Status = &status
	}

	task, err := h.taskService.EditTask(r.Context(), taskID, editReq)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, taskToResponse(task))
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), taskID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) StartTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	task, err := h.taskService.StartTask(r.Context(), taskID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, taskToResponse(task))
}

func (h *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	task, err := h.taskService.CompleteTask(r.Context(), taskID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, taskToResponse(task))
}

func (h *TaskHandler) ListByAssignee(w http.ResponseWriter, r *http.Request) {
	assignedUserID, err := pathID(r, "assignedUserId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	tasks, err := h.taskService.ListByAssignee(r.Context(), assignedUserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tasksToResponse(tasks))
}

func (h *TaskHandler) SearchTasks(w http.ResponseWriter, r *http.Request) {
	filter, err := parseSearchFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	tasks, err := h.taskService.SearchTasks(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tasksToResponse(tasks))
}

func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	number, err := queryInt(query.Get("page"), "page", entity.DefaultPageNumber)
	if err != nil {
		writeError(w, r, err)
		return
	}
	size, err := queryInt(query.Get("size"), "size", entity.DefaultPageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := h.taskService.ListTasks(r.Context(), entity.Page{Size: size, Number: number})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, taskPageResponse{
		Tasks:      tasksToResponse(page.Tasks),
		Total:      page.Total,
		PageSize:   page.PageSize,
		PageNumber: page.PageNumber,
	})
}

// decode распарсивает тело запроса и проверяет его.
// forbidden - поля, которых не должно быть в теле вовсе, даже со значением null или 0.
func (h *TaskHandler) decode(r *http.Request, v any, forbidden ...string) error {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return entity.InvalidArgumentf("invalid JSON: %v", err)
	}
	for key := range raw {
		for _, name := range forbidden {
			// encoding/json сопоставляет ключи без учета регистра
			if strings.EqualFold(key, name) {
				return entity.InvalidArgumentf("field %q must not be set", key)
			}
		}
	}

	body, err := json.Marshal(raw)
	if err != nil {
		return entity.InvalidArgumentf("invalid JSON: %v", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return entity.InvalidArgumentf("invalid JSON: %v", err)
	}
	if err := h.validate.Struct(v); err != nil {
		return entity.InvalidArgumentf("invalid task data: %v", err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, entity.InvalidArgumentf("invalid %s %q", name, raw)
	}
	return id, nil
}

func parseSearchFilter(r *http.Request) (entity.SearchFilter, error) {
	query := r.URL.Query()
	var filter entity.SearchFilter

	if raw := query.Get("creatorId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, entity.InvalidArgumentf("invalid creatorId %q", raw)
		}
		filter.CreatorID = &id
	}
	if raw := query.Get("assignedUserId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, entity.InvalidArgumentf("invalid assignedUserId %q", raw)
		}
		filter.AssignedUserID = &id
	}
	if raw := query.Get("status"); raw != "" {
		status, err := entity.ParseStatus(raw)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}
	if raw := query.Get("priority"); raw != "" {
		priority, err := entity.ParsePriority(raw)
		if err != nil {
			return filter, err
		}
		filter.Priority = &priority
	}
	if raw := query.Get("pageSize"); raw != "" {
		size, err := queryInt(raw, "pageSize", 0)
		if err != nil {
			return filter, err
		}
		filter.PageSize = &size
	}
	if raw := query.Get("pageNum"); raw != "" {
		number, err := queryInt(raw, "pageNum", 0)
		if err != nil {
			return filter, err
		}
		filter.PageNumber = &number
	}

	return filter, nil
}

func queryInt(raw, name string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, entity.InvalidArgumentf("invalid %s %q", name, raw)
	}
	return v, nil
}
