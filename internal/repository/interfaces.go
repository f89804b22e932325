package repository

import (
	"context"
	"errors"

	"github.com/St1cky1/task-manager/internal/entity"
)

// ErrNotFound - в хранилище нет записи с таким id
var ErrNotFound = errors.New("record not found")

// ITaskRepository - интерфейс хранилища задач. Правил жизненного цикла не знает.
type ITaskRepository interface {
	GetById(ctx context.Context, id int64) (entity.Task, error)
	// Save вставляет задачу без id или полностью заменяет существующую
	Save(ctx context.Context, task entity.Task) (entity.Task, error)
	Delete(ctx context.Context, id int64) error
	CountActiveByAssignee(ctx context.Context, assignedUserID int64) (int, error)
	FindByAssignee(ctx context.Context, assignedUserID int64) ([]entity.Task, error)
	Search(ctx context.Context, filter entity.SearchFilter, page entity.Page) ([]entity.Task, error)
	List(ctx context.Context, page entity.Page) ([]entity.Task, int, error)
	// WithAssigneeLock выполняет fn в критической секции исполнителя:
	// вызовы для одного assignedUserID идут строго по очереди, для разных не блокируют друг друга.
	WithAssigneeLock(ctx context.Context, assignedUserID int64, fn func(ctx context.Context, repo ITaskRepository) error) error
}
