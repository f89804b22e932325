package handlers

import (
	"time"

	"github.com/St1cky1/task-manager/internal/entity"
)

// taskPayload - поля, которые задает клиент
type taskPayload struct {
	Title          string     `json:"title" validate:"required,max=100"`
	Description    string     `json:"description" validate:"max=500"`
	CreatorID      int64      `json:"creatorId" validate:"required,gt=0"`
	AssignedUserID int64      `json:"assignedUserId" validate:"required,gt=0"`
	Deadline       *time.Time `json:"deadline" validate:"required"`
	Priority       string     `json:"priority" validate:"required,oneof=LOW MEDIUM HIGH"`
}

// серверные поля: клиент не должен передавать их даже с нулевым значением
var (
	serverFields     = []string{"id", "createdAt", "completedAt"}
	createOnlyFields = append([]string{"status"}, serverFields...)
)

type createTaskRequest struct {
	taskPayload
}

type editTaskRequest struct {
	taskPayload
	// статус только проверяется сервисом, вычисляется он всегда на сервере
	Status *string `json:"status" validate:"omitempty,oneof=CREATED UPDATED IN_PROGRESS DONE"`
}

func (p taskPayload) details() entity.TaskDetails {
	return entity.TaskDetails{
		Title:          p.Title,
		Description:    p.Description,
		CreatorID:      p.CreatorID,
		AssignedUserID: p.AssignedUserID,
		Deadline:       *p.Deadline,
		Priority:       entity.Priority(p.Priority),
	}
}

type taskResponse struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	CreatorID      int64      `json:"creatorId"`
	AssignedUserID int64      `json:"assignedUserId"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"createdAt"`
	Deadline       time.Time  `json:"deadline"`
	Priority       string     `json:"priority"`
	CompletedAt    *time.Time `json:"completedAt"`
}

type taskPageResponse struct {
	Tasks      []taskResponse `json:"tasks"`
	Total      int            `json:"total"`
	PageSize   int            `json:"pageSize"`
	PageNumber int            `json:"pageNumber"`
}

type errorResponse struct {
	Message         string    `json:"message"`
	DetailedMessage string    `json:"detailedMessage"`
	ErrorTime       time.Time `json:"errorTime"`
}

// Вспомогательная функция для преобразования entity.Task в ответ
func taskToResponse(task entity.Task) taskResponse {
	return taskResponse{
		ID:             task.ID(),
		Title:          task.Title,
		Description:    task.Description,
		CreatorID:      task.CreatorID,
		AssignedUserID: task.AssignedUserID,
		Status:         string(task.Status()),
		CreatedAt:      task.CreatedAt(),
		Deadline:       task.Deadline,
		Priority:       string(task.Priority),
		CompletedAt:    task.CompletedAt(),
	}
}

func tasksToResponse(tasks []entity.Task) []taskResponse {
	resp := make([]taskResponse, len(tasks))
	for i, task := range tasks {
		resp[i] = taskToResponse(task)
	}
	return resp
}
