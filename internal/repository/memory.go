package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/St1cky1/task-manager/internal/entity"
)

// MemoryTaskRepository - хранилище в памяти процесса.
// Используется для локального запуска (storage.driver=memory) и в тестах.
type MemoryTaskRepository struct {
	mu     sync.RWMutex
	tasks  map[int64]entity.Task
	nextID int64

	// мьютексы исполнителей, по одному на assignedUserID
	locks sync.Map
}

var _ ITaskRepository = (*MemoryTaskRepository)(nil)

func NewMemoryTaskRepository() *MemoryTaskRepository {
	return &MemoryTaskRepository{
		tasks: make(map[int64]entity.Task),
	}
}

func (r *MemoryTaskRepository) GetById(ctx context.Context, id int64) (entity.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[id]
	if !ok {
		return entity.Task{}, ErrNotFound
	}
	return task, nil
}

func (r *MemoryTaskRepository) Save(ctx context.Context, task entity.Task) (entity.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := task.ID()
	if id == 0 {
		r.nextID++
		id = r.nextID
	} else if _, ok := r.tasks[id]; !ok {
		return entity.Task{}, ErrNotFound
	}

	saved := entity.RestoreTask(id, task.TaskDetails, task.CreatedAt(), task.State())
	r.tasks[id] = saved
	return saved, nil
}

func (r *MemoryTaskRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *MemoryTaskRepository) CountActiveByAssignee(ctx context.Context, assignedUserID int64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, task := range r.tasks {
		if task.AssignedUserID == assignedUserID && task.Status() == entity.StatusInProgress {
			count++
		}
	}
	return count, nil
}

func (r *MemoryTaskRepository) FindByAssignee(ctx context.Context, assignedUserID int64) ([]entity.Task, error) {
	return r.filter(func(task entity.Task) bool {
		return task.AssignedUserID == assignedUserID
	}), nil
}

func (r *MemoryTaskRepository) Search(ctx context.Context, filter entity.SearchFilter, page entity.Page) ([]entity.Task, error) {
	matched := r.filter(func(task entity.Task) bool {
		return matches(task, filter)
	})
	return paginate(matched, page), nil
}

func (r *MemoryTaskRepository) List(ctx context.Context, page entity.Page) ([]entity.Task, int, error) {
	all := r.filter(func(entity.Task) bool { return true })
	return paginate(all, page), len(all), nil
}

func (r *MemoryTaskRepository) WithAssigneeLock(ctx context.Context, assignedUserID int64, fn func(ctx context.Context, repo ITaskRepository) error) error {
	value, _ := r.locks.LoadOrStore(assignedUserID, &sync.Mutex{})
	lock := value.(*sync.Mutex)

	lock.Lock()
	defer lock.Unlock()

	return fn(ctx, r)
}

// filter возвращает подходящие задачи, отсортированные по id
func (r *MemoryTaskRepository) filter(keep func(entity.Task) bool) []entity.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var tasks []entity.Task
	for _, task := range r.tasks {
		if keep(task) {
			tasks = append(tasks, task)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].ID() < tasks[j].ID()
	})
	return tasks
}

func matches(task entity.Task, filter entity.SearchFilter) bool {
	if filter.CreatorID != nil && task.CreatorID != *filter.CreatorID {
		return false
	}
	if filter.AssignedUserID != nil && task.AssignedUserID != *filter.AssignedUserID {
		return false
	}
	if filter.Status != nil && task.Status() != *filter.Status {
		return false
	}
	if filter.Priority != nil && task.Priority != *filter.Priority {
		return false
	}
	return true
}

func paginate(tasks []entity.Task, page entity.Page) []entity.Task {
	start := page.Offset()
	if start < 0 || start >= len(tasks) {
		return nil
	}
	end := len(tasks)
	if page.Size < end-start {
		end = start + page.Size
	}
	return tasks[start:end]
}
