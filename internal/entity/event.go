package entity

import "time"

type EventType string

const (
	EventTaskCreated   EventType = "task.created"
	EventTaskUpdated   EventType = "task.updated"
	EventTaskStarted   EventType = "task.started"
	EventTaskCompleted EventType = "task.completed"
	EventTaskDeleted   EventType = "task.deleted"
)

// TaskEvent - сообщение о переходе задачи, уходит в RabbitMQ
type TaskEvent struct {
	ID             string    `json:"id"`
	Type           EventType `json:"type"`
	TaskID         int64     `json:"task_id"`
	AssignedUserID int64     `json:"assigned_user_id"`
	Status         Status    `json:"status"`
	OccurredAt     time.Time `json:"occurred_at"`
}
