package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/St1cky1/task-manager/internal/entity"
	"github.com/St1cky1/task-manager/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockTaskRepository - мок для ITaskRepository
type MockTaskRepository struct {
	GetByIdFunc               func(ctx context.Context, id int64) (entity.Task, error)
	SaveFunc                  func(ctx context.Context, task entity.Task) (entity.Task, error)
	DeleteFunc                func(ctx context.Context, id int64) error
	CountActiveByAssigneeFunc func(ctx context.Context, assignedUserID int64) (int, error)
	FindByAssigneeFunc        func(ctx context.Context, assignedUserID int64) ([]entity.Task, error)
	SearchFunc                func(ctx context.Context, filter entity.SearchFilter, page entity.Page) ([]entity.Task, error)
	ListFunc                  func(ctx context.Context, page entity.Page) ([]entity.Task, int, error)
	// WithAssigneeLockFunc вызывается перед fn, чтобы тест видел, чья блокировка взята
	WithAssigneeLockFunc func(ctx context.Context, assignedUserID int64)
}

var _ repository.ITaskRepository = (*MockTaskRepository)(nil)

func (m *MockTaskRepository) GetById(ctx context.Context, id int64) (entity.Task, error) {
	if m.GetByIdFunc != nil {
		return m.GetByIdFunc(ctx, id)
	}
	return entity.Task{}, repository.ErrNotFound
}

func (m *MockTaskRepository) Save(ctx context.Context, task entity.Task) (entity.Task, error) {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, task)
	}
	return task, nil
}

func (m *MockTaskRepository) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockTaskRepository) CountActiveByAssignee(ctx context.Context, assignedUserID int64) (int, error) {
	if m.CountActiveByAssigneeFunc != nil {
		return m.CountActiveByAssigneeFunc(ctx, assignedUserID)
	}
	return 0, nil
}

func (m *MockTaskRepository) FindByAssignee(ctx context.Context, assignedUserID int64) ([]entity.Task, error) {
	if m.FindByAssigneeFunc != nil {
		return m.FindByAssigneeFunc(ctx, assignedUserID)
	}
	return nil, nil
}

func (m *MockTaskRepository) Search(ctx context.Context, filter entity.SearchFilter, page entity.Page) ([]entity.Task, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, filter, page)
	}
	return nil, nil
}

func (m *MockTaskRepository) List(ctx context.Context, page entity.Page) ([]entity.Task, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, page)
	}
	return nil, 0, nil
}

func (m *MockTaskRepository) WithAssigneeLock(ctx context.Context, assignedUserID int64, fn func(ctx context.Context, repo repository.ITaskRepository) error) error {
	if m.WithAssigneeLockFunc != nil {
		m.WithAssigneeLockFunc(ctx, assignedUserID)
	}
	return fn(ctx, m)
}

// MockEventPublisher - мок для EventPublisher
type MockEventPublisher struct {
	mu     sync.Mutex
	events []entity.EventType
	sent   chan struct{}
}

func newMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{sent: make(chan struct{}, 100)}
}

func (m *MockEventPublisher) PublishTaskEvent(ctx context.Context, event *entity.TaskEvent) error {
	m.mu.Lock()
	m.events = append(m.events, event.Type)
	m.mu.Unlock()
	m.sent <- struct{}{}
	return nil
}

func (m *MockEventPublisher) waitEvents(t *testing.T, n int) []entity.EventType {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-m.sent:
		case <-time.After(time.Second):
			t.Fatalf("expected %d events, got %d", n, i)
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.EventType(nil), m.events...)
}

var testNow = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

func newTestService(repo repository.ITaskRepository, publisher EventPublisher) *TaskService {
	service := NewTaskService(repo, publisher, slog.New(slog.NewTextHandler(io.Discard, nil)))
	service.now = func() time.Time { return testNow }
	return service
}

func validDetails(assignee int64) entity.TaskDetails {
	return entity.TaskDetails{
		Title:          "Test Task",
		Description:    "Test Description",
		CreatorID:      1,
		AssignedUserID: assignee,
		Deadline:       testNow.Add(5 * 24 * time.Hour),
		Priority:       entity.PriorityMedium,
	}
}

func createTask(t *testing.T, service *TaskService, assignee int64) entity.Task {
	t.Helper()
	task, err := service.CreateTask(context.Background(), validDetails(assignee))
	require.NoError(t, err)
	return task
}

// Tests

func TestCreateTaskSuccess(t *testing.T) {
	publisher := newMockEventPublisher()
	service := newTestService(repository.NewMemoryTaskRepository(), publisher)

	task, err := service.CreateTask(context.Background(), validDetails(2))
	require.NoError(t, err)

	assert.NotZero(t, task.ID())
	assert.Equal(t, entity.StatusCreated, task.Status())
	assert.Equal(t, testNow, task.CreatedAt())
	assert.Nil(t, task.CompletedAt())
	assert.Equal(t, "Test Task", task.Title)

	assert.Equal(t, []entity.EventType{entity.EventTaskCreated}, publisher.waitEvents(t, 1))
}

func TestCreateTaskDeadlineNotInFuture(t *testing.T) {
	service := newTestService(repository.NewMemoryTaskRepository(), nil)

	for _, deadline := range []time.Time{testNow, testNow.Add(-time.Minute)} {
		details := validDetails(2)
		details.Deadline = deadline

		_, err := service.CreateTask(context.Background(), details)
		assert.ErrorIs(t, err, entity.ErrInvalidArgument)
	}
}

func TestEditTaskForcesUpdatedStatus(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryTaskRepository()
	service := newTestService(repo, nil)

	for _, prepare := range []func(id int64){
		func(id int64) {},
		func(id int64) {
			_, err := service.StartTask(ctx, id)
			require.NoError(t, err)
		},
	} {
		task := createTask(t, service, 2)
		prepare(task.ID())

		inProgress := entity.StatusInProgress
		details := validDetails(3)
		details.Title = "New Title"
		details.Priority = entity.PriorityHigh

		updated, err := service.EditTask(ctx, task.ID(), entity.EditTaskRequest{Details: details, Status: &inProgress})
		require.NoError(t, err)

		assert.Equal(t, entity.StatusUpdated, updated.Status())
		assert.Equal(t, task.ID(), updated.ID())
		assert.Equal(t, task.CreatedAt(), updated.CreatedAt())
		assert.Equal(t, "New Title", updated.Title)
		assert.Equal(t, int64(3), updated.AssignedUserID)
		assert.Equal(t, entity.PriorityHigh, updated.Priority)
	}
}

func TestEditTaskDoneFailsPrecondition(t *testing.T) {
	ctx := context.Background()
	service := newTestService(repository.NewMemoryTaskRepository(), nil)

	task := createTask(t, service, 2)
	_, err := service.CompleteTask(ctx, task.ID())
	require.NoError(t, err)

	_, err = service.EditTask(ctx, task.ID(), entity.EditTaskRequest{Details: validDetails(2)})
	assert.ErrorIs(t, err, entity.ErrFailedPrecondition)
}

func TestEditTaskRejectsCreatedStatus(t *testing.T) {
	ctx := context.Background()
	service := newTestService(repository.NewMemoryTaskRepository(), nil)
	task := createTask(t, service, 2)

	created := entity.StatusCreated
	_, err := service.EditTask(ctx, task.ID(), entity.EditTaskRequest{Details: validDetails(2), Status: &created})
	assert.ErrorIs(t, err, entity.ErrInvalidArgument)

	details := validDetails(2)
	details.Deadline = testNow.Add(-time.Hour)
	_, err = service.EditTask(ctx, task.ID(), entity.EditTaskRequest{Details: details})
	assert.ErrorIs(t, err, entity.ErrInvalidArgument)

	stored, err := service.GetTask(ctx, task.ID())
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCreated, stored.Status())
}

func TestEditTaskNotFound(t *testing.T) {
	service := newTestService(repository.NewMemoryTaskRepository(), nil)

	_, err := service.EditTask(context.Background(), 999, entity.EditTaskRequest{Details: validDetails(2)})
	assert.ErrorIs(t, err, entity.ErrNotFound)
	assert.Contains(t, err.Error(), "999")
}

func TestStartTaskWithoutAssignee(t *testing.T) {
	service := newTestService(repository.NewMemoryTaskRepository(), nil)
	task := createTask(t, service, 0)

	_, err := service.StartTask(context.Background(), task.ID())
	assert.ErrorIs(t, err, entity.ErrInvalidArgument)
}

func TestStartTaskNotFound(t *testing.T) {
	service := newTestService(repository.NewMemoryTaskRepository(), nil)

	_, err := service.StartTask(context.Background(), 42)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestStartTaskCapacityBoundary(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryTaskRepository()
	service := newTestService(repo, nil)

	// при 4 активных задачах пятая допускается, при 5 шестая отклоняется
	for i := 0; i < MaxActiveTasksPerAssignee; i++ {
		task := createTask(t, service, 2)
		started, err := service.StartTask(ctx, task.ID())
		require.NoError(t, err, "start #%d", i+1)
		assert.Equal(t, entity.StatusInProgress, started.Status())
	}

	count, err := repo.CountActiveByAssignee(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	extra := createTask(t, service, 2)
	_, err = service.StartTask(ctx, extra.ID())
	assert.ErrorIs(t, err, entity.ErrFailedPrecondition)

	// другого исполнителя лимит не касается
	other := createTask(t, service, 3)
	_, err = service.StartTask(ctx, other.ID())
	assert.NoError(t, err)
}

func TestStartTaskAlreadyInProgressIsNoop(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryTaskRepository()
	service := newTestService(repo, nil)

	task := createTask(t, service, 2)
	first, err := service.StartTask(ctx, task.ID())
	require.NoError(t, err)

	second, err := service.StartTask(ctx, task.ID())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	count, err := repo.CountActiveByAssignee(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStartTaskReopensDone(t *testing.T) {
	ctx := context.Background()
	service := newTestService(repository.NewMemoryTaskRepository(), nil)

	task := createTask(t, service, 2)
	done, err := service.CompleteTask(ctx, task.ID())
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt())

	reopened, err := service.StartTask(ctx, task.ID())
	require.NoError(t, err)
	assert.Equal(t, entity.StatusInProgress, reopened.Status())
	assert.Nil(t, reopened.CompletedAt())

	// после переоткрытия задачу снова можно редактировать
	_, err = service.EditTask(ctx, task.ID(), entity.EditTaskRequest{Details: validDetails(2)})
	assert.NoError(t, err)
}

func TestStartTaskConcurrentSingleSlot(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryTaskRepository()
	service := newTestService(repo, nil)

	for i := 0; i < MaxActiveTasksPerAssignee-1; i++ {
		task := createTask(t, service, 2)
		_, err := service.StartTask(ctx, task.ID())
		require.NoError(t, err)
	}

	const workers = 10
	candidates := make([]int64, workers)
	for i := range candidates {
		candidates[i] = createTask(t, service, 2).ID()
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	start := make(chan struct{})
	for _, id := range candidates {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			<-start
			_, err := service.StartTask(ctx, id)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, entity.ErrFailedPrecondition):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(id)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, rejected)

	count, err := repo.CountActiveByAssignee(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, MaxActiveTasksPerAssignee, count)
}

func TestStartTaskReassignedWhileWaiting(t *testing.T) {
	task := entity.RestoreTask(1, validDetails(2), testNow, entity.Created{})
	reassigned := entity.RestoreTask(1, validDetails(3), testNow, entity.Updated{})

	calls := 0
	repo := &MockTaskRepository{
		GetByIdFunc: func(ctx context.Context, id int64) (entity.Task, error) {
			calls++
			if calls == 1 {
				return task, nil
			}
			return reassigned, nil
		},
	}
	service := newTestService(repo, nil)

	_, err := service.StartTask(context.Background(), 1)
	assert.ErrorIs(t, err, entity.ErrFailedPrecondition)
}

func TestCompleteTaskSuccess(t *testing.T) {
	ctx := context.Background()
	publisher := newMockEventPublisher()
	service := newTestService(repository.NewMemoryTaskRepository(), publisher)

	task := createTask(t, service, 2)
	service.now = func() time.Time { return testNow.Add(time.Hour) }

	done, err := service.CompleteTask(ctx, task.ID())
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDone, done.Status())
	require.NotNil(t, done.CompletedAt())
	assert.False(t, done.CompletedAt().Before(done.CreatedAt()))

	// повторное завершение не меняет время
	service.now = func() time.Time { return testNow.Add(2 * time.Hour) }
	again, err := service.CompleteTask(ctx, task.ID())
	require.NoError(t, err)
	assert.Equal(t, *done.CompletedAt(), *again.CompletedAt())

	assert.ElementsMatch(t, []entity.EventType{entity.EventTaskCreated, entity.EventTaskCompleted}, publisher.waitEvents(t, 2))
}

func TestCompleteTaskMissingRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		modify func(d *entity.TaskDetails)
	}{
		{name: "creator", modify: func(d *entity.TaskDetails) { d.CreatorID = 0 }},
		{name: "assignee", modify: func(d *entity.TaskDetails) { d.AssignedUserID = 0 }},
		{name: "deadline", modify: func(d *entity.TaskDetails) { d.Deadline = time.Time{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			details := validDetails(2)
			tt.modify(&details)
			stored := entity.RestoreTask(5, details, testNow, entity.InProgress{})

			saved := false
			repo := &MockTaskRepository{
				GetByIdFunc: func(ctx context.Context, id int64) (entity.Task, error) {
					return stored, nil
				},
				SaveFunc: func(ctx context.Context, task entity.Task) (entity.Task, error) {
					saved = true
					return task, nil
				},
			}
			service := newTestService(repo, nil)

			_, err := service.CompleteTask(context.Background(), 5)
			assert.ErrorIs(t, err, entity.ErrInvalidArgument)
			assert.False(t, saved)
		})
	}
}

func TestConcurrentEditAndCompleteNeverReopensDone(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryTaskRepository()
	service := newTestService(repo, nil)

	for i := 0; i < 50; i++ {
		task := createTask(t, service, 2)

		var wg sync.WaitGroup
		var editErr, completeErr error
		start := make(chan struct{})
		wg.Add(2)
		go func() {
			defer wg.Done()
			<-start
			_, editErr = service.EditTask(ctx, task.ID(), entity.EditTaskRequest{Details: validDetails(2)})
		}()
		go func() {
			defer wg.Done()
			<-start
			_, completeErr = service.CompleteTask(ctx, task.ID())
		}()
		close(start)
		wg.Wait()

		require.NoError(t, completeErr)
		if editErr != nil {
			assert.ErrorIs(t, editErr, entity.ErrFailedPrecondition)
		}

		// правка либо успела до завершения, либо была отклонена
		stored, err := service.GetTask(ctx, task.ID())
		require.NoError(t, err)
		assert.Equal(t, entity.StatusDone, stored.Status())
		assert.NotNil(t, stored.CompletedAt())
	}
}

func TestCompleteTaskReassignedWhileWaiting(t *testing.T) {
	task := entity.RestoreTask(1, validDetails(2), testNow, entity.InProgress{})
	reassigned := entity.RestoreTask(1, validDetails(3), testNow, entity.Updated{})

	calls := 0
	saved := false
	var lockedFor []int64
	repo := &MockTaskRepository{
		GetByIdFunc: func(ctx context.Context, id int64) (entity.Task, error) {
			calls++
			if calls == 1 {
				return task, nil
			}
			return reassigned, nil
		},
		SaveFunc: func(ctx context.Context, task entity.Task) (entity.Task, error) {
			saved = true
			return task, nil
		},
		WithAssigneeLockFunc: func(ctx context.Context, assignedUserID int64) {
			lockedFor = append(lockedFor, assignedUserID)
		},
	}
	service := newTestService(repo, nil)

	_, err := service.CompleteTask(context.Background(), 1)
	assert.ErrorIs(t, err, entity.ErrFailedPrecondition)
	assert.False(t, saved)
	assert.Equal(t, []int64{2}, lockedFor)

	calls = 0
	_, err = service.EditTask(context.Background(), 1, entity.EditTaskRequest{Details: validDetails(2)})
	assert.ErrorIs(t, err, entity.ErrFailedPrecondition)
	assert.False(t, saved)
}

func TestDeleteTask(t *testing.T) {
	ctx := context.Background()
	service := newTestService(repository.NewMemoryTaskRepository(), nil)

	err := service.DeleteTask(ctx, 100)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	task := createTask(t, service, 2)
	_, err = service.CompleteTask(ctx, task.ID())
	require.NoError(t, err)

	require.NoError(t, service.DeleteTask(ctx, task.ID()))

	_, err = service.GetTask(ctx, task.ID())
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestListByAssignee(t *testing.T) {
	ctx := context.Background()
	service := newTestService(repository.NewMemoryTaskRepository(), nil)

	_, err := service.ListByAssignee(ctx, 2)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	first := createTask(t, service, 2)
	createTask(t, service, 3)
	second := createTask(t, service, 2)

	tasks, err := service.ListByAssignee(ctx, 2)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, first.ID(), tasks[0].ID())
	assert.Equal(t, second.ID(), tasks[1].ID())
}

func TestSearchTasks(t *testing.T) {
	ctx := context.Background()
	service := newTestService(repository.NewMemoryTaskRepository(), nil)

	for i, priority := range []entity.Priority{entity.PriorityLow, entity.PriorityLow, entity.PriorityHigh, entity.PriorityLow} {
		details := validDetails(2)
		details.Priority = priority
		task, err := service.CreateTask(ctx, details)
		require.NoError(t, err)
		if i != 1 {
			_, err = service.StartTask(ctx, task.ID())
			require.NoError(t, err)
		}
	}

	inProgress, low := entity.StatusInProgress, entity.PriorityLow
	tasks, err := service.SearchTasks(ctx, entity.SearchFilter{Status: &inProgress, Priority: &low})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	for _, task := range tasks {
		assert.Equal(t, entity.StatusInProgress, task.Status())
		assert.Equal(t, entity.PriorityLow, task.Priority)
	}

	all, err := service.SearchTasks(ctx, entity.SearchFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	size := 3
	paged, err := service.SearchTasks(ctx, entity.SearchFilter{PageSize: &size})
	require.NoError(t, err)
	assert.Len(t, paged, 3)

	done := entity.StatusDone
	_, err = service.SearchTasks(ctx, entity.SearchFilter{Status: &done})
	assert.ErrorIs(t, err, entity.ErrNotFound)

	zero := 0
	_, err = service.SearchTasks(ctx, entity.SearchFilter{PageSize: &zero})
	assert.ErrorIs(t, err, entity.ErrInvalidArgument)

	hugeSize, secondPage := math.MaxInt, 2
	_, err = service.SearchTasks(ctx, entity.SearchFilter{PageSize: &hugeSize, PageNumber: &secondPage})
	assert.ErrorIs(t, err, entity.ErrInvalidArgument)

	maxSize, farPage := entity.MaxPageSize, math.MaxInt/2
	_, err = service.SearchTasks(ctx, entity.SearchFilter{PageSize: &maxSize, PageNumber: &farPage})
	assert.ErrorIs(t, err, entity.ErrInvalidArgument)

	_, err = service.ListTasks(ctx, entity.Page{Size: math.MaxInt, Number: 2})
	assert.ErrorIs(t, err, entity.ErrInvalidArgument)
}

func TestListTasks(t *testing.T) {
	ctx := context.Background()
	service := newTestService(repository.NewMemoryTaskRepository(), nil)

	page, err := service.ListTasks(ctx, entity.Page{Size: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Tasks)
	assert.Equal(t, 0, page.Total)

	for i := 0; i < 3; i++ {
		createTask(t, service, 2)
	}

	page, err = service.ListTasks(ctx, entity.Page{Size: 2, Number: 1})
	require.NoError(t, err)
	assert.Len(t, page.Tasks, 1)
	assert.Equal(t, 3, page.Total)

	_, err = service.ListTasks(ctx, entity.Page{Size: 0})
	assert.ErrorIs(t, err, entity.ErrInvalidArgument)
}

func TestStoreErrorsPassThrough(t *testing.T) {
	unavailable := entity.Unavailable(errors.New("dial tcp: connection refused"), "task store is unreachable")
	repo := &MockTaskRepository{
		GetByIdFunc: func(ctx context.Context, id int64) (entity.Task, error) {
			return entity.Task{}, unavailable
		},
		SaveFunc: func(ctx context.Context, task entity.Task) (entity.Task, error) {
			return entity.Task{}, unavailable
		},
		FindByAssigneeFunc: func(ctx context.Context, assignedUserID int64) ([]entity.Task, error) {
			return nil, unavailable
		},
	}
	service := newTestService(repo, nil)
	ctx := context.Background()

	_, err := service.GetTask(ctx, 1)
	assert.Same(t, unavailable, err)

	_, err = service.CreateTask(ctx, validDetails(2))
	assert.Same(t, unavailable, err)

	_, err = service.StartTask(ctx, 1)
	assert.Same(t, unavailable, err)

	_, err = service.ListByAssignee(ctx, 2)
	assert.Same(t, unavailable, err)
}

func TestEndToEndCapacityScenario(t *testing.T) {
	ctx := context.Background()
	publisher := newMockEventPublisher()
	service := newTestService(repository.NewMemoryTaskRepository(), publisher)

	first := createTask(t, service, 2)
	assert.Equal(t, entity.StatusCreated, first.Status())

	_, err := service.StartTask(ctx, first.ID())
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		task := createTask(t, service, 2)
		_, err := service.StartTask(ctx, task.ID())
		require.NoError(t, err)
	}

	inProgress := entity.StatusInProgress
	assignee := int64(2)
	active, err := service.SearchTasks(ctx, entity.SearchFilter{AssignedUserID: &assignee, Status: &inProgress})
	require.NoError(t, err)
	assert.Len(t, active, 5)

	sixth := createTask(t, service, 2)
	_, err = service.StartTask(ctx, sixth.ID())
	assert.ErrorIs(t, err, entity.ErrFailedPrecondition)

	// 6 созданий и 5 запусков
	assert.Len(t, publisher.waitEvents(t, 11), 11)
}
