package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/St1cky1/task-manager/internal/entity"
	"github.com/St1cky1/task-manager/internal/repository"
	"github.com/google/uuid"
)

// MaxActiveTasksPerAssignee - сколько задач IN_PROGRESS может одновременно держать исполнитель
const MaxActiveTasksPerAssignee = 5

// EventPublisher интерфейс для публикации событий жизненного цикла
type EventPublisher interface {
	PublishTaskEvent(ctx context.Context, event *entity.TaskEvent) error
}

// NopPublisher используется, когда RabbitMQ отключен
type NopPublisher struct{}

func (NopPublisher) PublishTaskEvent(context.Context, *entity.TaskEvent) error { return nil }

type TaskService struct {
	taskRepo  repository.ITaskRepository
	publisher EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewTaskService(taskRepo repository.ITaskRepository, publisher EventPublisher, logger *slog.Logger) *TaskService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskService{
		taskRepo:  taskRepo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *TaskService) CreateTask(ctx context.Context, details entity.TaskDetails) (entity.Task, error) {
	now := s.now()

	// 1. Дедлайн строго в будущем
	if !details.Deadline.After(now) {
		return entity.Task{}, entity.InvalidArgumentf("deadline %s must be in the future", details.Deadline.Format(time.RFC3339))
	}

	// 2. Сохраняем, id выдает хранилище
	task, err := s.taskRepo.Save(ctx, entity.NewTask(details, now))
	if err != nil {
		return entity.Task{}, err
	}

	s.logger.InfoContext(ctx, "создана новая задача", "task_id", task.ID())
	s.sendEvent(entity.EventTaskCreated, task)

	return task, nil
}

func (s *TaskService) GetTask(ctx context.Context, taskID int64) (entity.Task, error) {
	return s.getTask(ctx, s.taskRepo, taskID)
}

// EditTask заменяет пользовательские поля. Чтение и запись идут под блокировкой исполнителя.
func (s *TaskService) EditTask(ctx context.Context, taskID int64, req entity.EditTaskRequest) (entity.Task, error) {
	var updatedTask entity.Task
	err := s.withTaskLock(ctx, taskID, func(ctx context.Context, repo repository.ITaskRepository, oldTask entity.Task) error {
		// 1. Завершенную задачу менять нельзя, сначала ее надо снова взять в работу
		if oldTask.Status() == entity.StatusDone {
			return entity.FailedPreconditionf("cannot modify task %d in status %s, start it again first", taskID, entity.StatusDone)
		}

		// 2. Проверяем запрос
		if req.Status != nil && *req.Status == entity.StatusCreated {
			return entity.InvalidArgumentf("cannot move task %d back to status %s", taskID, entity.StatusCreated)
		}
		if !req.Details.Deadline.After(s.now()) {
			return entity.InvalidArgumentf("deadline %s of task %d must be in the future", req.Details.Deadline.Format(time.RFC3339), taskID)
		}

		// 3. Сохраняем новую версию
		var err error
		updatedTask, err = s.save(ctx, repo, oldTask.Edit(req.Details))
		return err
	})
	if err != nil {
		return entity.Task{}, err
	}

	s.logger.InfoContext(ctx, "задача обновлена", "task_id", taskID)
	s.sendEvent(entity.EventTaskUpdated, updatedTask)

	return updatedTask, nil
}

// StartTask берет задачу в работу. Подсчет активных задач и запись статуса
// выполняются в критической секции исполнителя.
func (s *TaskService) StartTask(ctx context.Context, taskID int64) (entity.Task, error) {
	var started entity.Task
	changed := false
	err := s.withTaskLock(ctx, taskID, func(ctx context.Context, repo repository.ITaskRepository, current entity.Task) error {
		assignee := current.AssignedUserID
		if assignee == 0 {
			return entity.InvalidArgumentf("task %d has no assigned user", taskID)
		}
		if current.Status() == entity.StatusInProgress {
			started = current
			return nil
		}

		count, err := repo.CountActiveByAssignee(ctx, assignee)
		if err != nil {
			return err
		}
		if count > MaxActiveTasksPerAssignee-1 {
			return entity.FailedPreconditionf("user %d already has %d active tasks, limit is %d", assignee, count, MaxActiveTasksPerAssignee)
		}

		started, err = s.save(ctx, repo, current.Start())
		changed = err == nil
		return err
	})
	if err != nil {
		return entity.Task{}, err
	}

	if changed {
		s.logger.InfoContext(ctx, "задача переведена в работу", "task_id", taskID, "assigned_user_id", started.AssignedUserID)
		s.sendEvent(entity.EventTaskStarted, started)
	}

	return started, nil
}

func (s *TaskService) CompleteTask(ctx context.Context, taskID int64) (entity.Task, error) {
	var doneTask entity.Task
	changed := false
	err := s.withTaskLock(ctx, taskID, func(ctx context.Context, repo repository.ITaskRepository, task entity.Task) error {
		if task.CreatorID == 0 || task.AssignedUserID == 0 || task.Deadline.IsZero() {
			return entity.InvalidArgumentf("task %d requires creatorId, assignedUserId and deadline to be completed", taskID)
		}

		// время завершения выставляется один раз
		if task.Status() == entity.StatusDone {
			doneTask = task
			return nil
		}

		var err error
		doneTask, err = s.save(ctx, repo, task.Complete(s.now()))
		changed = err == nil
		return err
	})
	if err != nil {
		return entity.Task{}, err
	}

	if changed {
		s.logger.InfoContext(ctx, "задача завершена", "task_id", taskID)
		s.sendEvent(entity.EventTaskCompleted, doneTask)
	}

	return doneTask, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, taskID int64) error {
	// 1. Получаем задачу (для события и проверки существования)
	task, err := s.getTask(ctx, s.taskRepo, taskID)
	if err != nil {
		return err
	}

	// 2. Удаляем задачу
	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		return notFound(err, "there is no task found by id: %d", taskID)
	}

	s.logger.InfoContext(ctx, "задача удалена", "task_id", taskID)
	s.sendEvent(entity.EventTaskDeleted, task)

	return nil
}

// ListByAssignee - пустой результат считается промахом, а не пустым списком
func (s *TaskService) ListByAssignee(ctx context.Context, assignedUserID int64) ([]entity.Task, error) {
	tasks, err := s.taskRepo.FindByAssignee(ctx, assignedUserID)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, entity.NotFoundf("there are no tasks found for user with id: %d", assignedUserID)
	}
	return tasks, nil
}

func (s *TaskService) SearchTasks(ctx context.Context, filter entity.SearchFilter) ([]entity.Task, error) {
	page, err := filter.Page()
	if err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.Search(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, entity.NotFoundf("no tasks found by filter %s", filter)
	}
	return tasks, nil
}

// ListTasks - постраничный список всех задач, пустая страница не ошибка
func (s *TaskService) ListTasks(ctx context.Context, page entity.Page) (entity.TaskPage, error) {
	if _, err := entity.NewPage(page.Size, page.Number); err != nil {
		return entity.TaskPage{}, err
	}

	tasks, total, err := s.taskRepo.List(ctx, page)
	if err != nil {
		return entity.TaskPage{}, err
	}

	return entity.TaskPage{
		Tasks:      tasks,
		Total:      total,
		PageSize:   page.Size,
		PageNumber: page.Number,
	}, nil
}

// withTaskLock выполняет fn в критической секции текущего исполнителя задачи
// с версией задачи, перечитанной под блокировкой. Все изменения статуса идут через нее.
func (s *TaskService) withTaskLock(ctx context.Context, taskID int64, fn func(ctx context.Context, repo repository.ITaskRepository, task entity.Task) error) error {
	task, err := s.getTask(ctx, s.taskRepo, taskID)
	if err != nil {
		return err
	}

	assignee := task.AssignedUserID
	return s.taskRepo.WithAssigneeLock(ctx, assignee, func(ctx context.Context, repo repository.ITaskRepository) error {
		// перечитываем под блокировкой
		current, err := s.getTask(ctx, repo, taskID)
		if err != nil {
			return err
		}
		if current.AssignedUserID != assignee {
			return entity.FailedPreconditionf("task %d was reassigned from user %d concurrently", taskID, assignee)
		}
		return fn(ctx, repo, current)
	})
}

func (s *TaskService) getTask(ctx context.Context, repo repository.ITaskRepository, taskID int64) (entity.Task, error) {
	task, err := repo.GetById(ctx, taskID)
	if err != nil {
		return entity.Task{}, notFound(err, "there is no task found by id: %d", taskID)
	}
	return task, nil
}

func (s *TaskService) save(ctx context.Context, repo repository.ITaskRepository, task entity.Task) (entity.Task, error) {
	saved, err := repo.Save(ctx, task)
	if err != nil {
		return entity.Task{}, notFound(err, "there is no task found by id: %d", task.ID())
	}
	return saved, nil
}

// notFound заменяет промах хранилища на NotFound, остальные ошибки пробрасывает как есть
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return entity.NotFoundf(format, args...)
	}
	return err
}

// Вспомогательный метод для отправки события
func (s *TaskService) sendEvent(eventType entity.EventType, task entity.Task) {
	event := &entity.TaskEvent{
		ID:             uuid.NewString(),
		Type:           eventType,
		TaskID:         task.ID(),
		AssignedUserID: task.AssignedUserID,
		Status:         task.Status(),
		OccurredAt:     s.now(),
	}

	// Асинхронная отправка в RabbitMQ
	go func() {
		if err := s.publisher.PublishTaskEvent(context.Background(), event); err != nil {
			s.logger.Error("ошибка отправки события в RabbitMQ", "event", eventType, "task_id", event.TaskID, "error", err)
		}
	}()
}
