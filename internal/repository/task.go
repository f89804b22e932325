package repository

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/St1cky1/task-manager/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskColumns = `id, title, description, creator_id, assigned_user_id, status, created_at, deadline, priority, completed_at`

// querier - общее у pgxpool.Pool и pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type TaskRepository struct {
	pool *pgxpool.Pool
	db   querier
	// inTx - репозиторий привязан к транзакции WithAssigneeLock
	inTx bool
}

var _ ITaskRepository = (*TaskRepository)(nil)

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{
		pool: db,
		db:   db,
	}
}

func (r *TaskRepository) GetById(ctx context.Context, id int64) (entity.Task, error) {
	query := `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE id = $1
	`
	// внутри критической секции блокируем строку до конца транзакции
	if r.inTx {
		query += " FOR UPDATE"
	}

	task, err := scanTask(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return entity.Task{}, mapError(err)
	}

	return task, nil
}

func (r *TaskRepository) Save(ctx context.Context, task entity.Task) (entity.Task, error) {
	if task.ID() == 0 {
		return r.insert(ctx, task)
	}

	query := `
	UPDATE tasks
	SET title = $2, description = $3, creator_id = $4, assigned_user_id = $5,
	    status = $6, created_at = $7, deadline = $8, priority = $9, completed_at = $10
	WHERE id = $1
	RETURNING ` + taskColumns

	saved, err := scanTask(r.db.QueryRow(ctx, query,
		task.ID(),
		task.Title,
		task.Description,
		task.CreatorID,
		task.AssignedUserID,
		task.Status(),
		task.CreatedAt(),
		task.Deadline,
		task.Priority,
		task.CompletedAt(),
	))
	if err != nil {
		return entity.Task{}, mapError(err)
	}

	return saved, nil
}

func (r *TaskRepository) insert(ctx context.Context, task entity.Task) (entity.Task, error) {
	query := `
	INSERT INTO tasks (title, description, creator_id, assigned_user_id, status, created_at, deadline, priority, completed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING ` + taskColumns

	created, err := scanTask(r.db.QueryRow(ctx, query,
		task.Title,
		task.Description,
		task.CreatorID,
		task.AssignedUserID,
		task.Status(),
		task.CreatedAt(),
		task.Deadline,
		task.Priority,
		task.CompletedAt(),
	))
	if err != nil {
		return entity.Task{}, mapError(err)
	}

	return created, nil
}

// Delete - удаление задачи
func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TaskRepository) CountActiveByAssignee(ctx context.Context, assignedUserID int64) (int, error) {
	query := `
	SELECT COUNT(*)
	FROM tasks
	WHERE assigned_user_id = $1 AND status = $2
	`
	var count int
	if err := r.db.QueryRow(ctx, query, assignedUserID, entity.StatusInProgress).Scan(&count); err != nil {
		return 0, mapError(err)
	}
	return count, nil
}

func (r *TaskRepository) FindByAssignee(ctx context.Context, assignedUserID int64) ([]entity.Task, error) {
	query := `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE assigned_user_id = $1
	ORDER BY id
	`
	return r.queryTasks(ctx, query, assignedUserID)
}

// Search - выборка по пересечению заданных фильтров
func (r *TaskRepository) Search(ctx context.Context, filter entity.SearchFilter, page entity.Page) ([]entity.Task, error) {
	query, args := buildSearchQuery(filter, page)
	return r.queryTasks(ctx, query, args...)
}

func (r *TaskRepository) List(ctx context.Context, page entity.Page) ([]entity.Task, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&total); err != nil {
		return nil, 0, mapError(err)
	}

	query := `
	SELECT ` + taskColumns + `
	FROM tasks
	ORDER BY id
	LIMIT $1 OFFSET $2
	`
	tasks, err := r.queryTasks(ctx, query, page.Size, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// WithAssigneeLock открывает транзакцию и берет advisory lock по id исполнителя.
// Блокировка снимается при commit/rollback.
func (r *TaskRepository) WithAssigneeLock(ctx context.Context, assignedUserID int64, fn func(ctx context.Context, repo ITaskRepository) error) error {
	if r.inTx {
		// advisory lock реентерабелен в рамках одной сессии
		if _, err := r.db.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, assignedUserID); err != nil {
			return mapError(err)
		}
		return fn(ctx, r)
	}

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, assignedUserID); err != nil {
			return err
		}
		return fn(ctx, &TaskRepository{pool: r.pool, db: tx, inTx: true})
	})
	return mapError(err)
}

func (r *TaskRepository) queryTasks(ctx context.Context, query string, args ...any) ([]entity.Task, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var tasks []entity.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return tasks, nil
}

// buildSearchQuery динамически строит WHERE: отсутствующий фильтр не ограничивает выборку
func buildSearchQuery(filter entity.SearchFilter, page entity.Page) (string, []any) {
	var conditions []string
	args := []any{}

	add := func(column string, value any) {
		args = append(args, value)
		conditions = append(conditions, column+" = $"+strconv.Itoa(len(args)))
	}

	if filter.CreatorID != nil {
		add("creator_id", *filter.CreatorID)
	}
	if filter.AssignedUserID != nil {
		add("assigned_user_id", *filter.AssignedUserID)
	}
	if filter.Status != nil {
		add("status", *filter.Status)
	}
	if filter.Priority != nil {
		add("priority", *filter.Priority)
	}

	query := "SELECT " + taskColumns + " FROM tasks"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	args = append(args, page.Size, page.Offset())
	query += fmt.Sprintf(" ORDER BY id LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	return query, args
}

func scanTask(row pgx.Row) (entity.Task, error) {
	var (
		id          int64
		details     entity.TaskDetails
		status      string
		priority    string
		createdAt   time.Time
		completedAt *time.Time
	)

	err := row.Scan(
		&id,
		&details.Title,
		&details.Description,
		&details.CreatorID,
		&details.AssignedUserID,
		&status,
		&createdAt,
		&details.Deadline,
		&priority,
		&completedAt,
	)
	if err != nil {
		return entity.Task{}, err
	}

	details.Priority = entity.Priority(priority)
	state, err := entity.StateOf(entity.Status(status), completedAt)
	if err != nil {
		return entity.Task{}, fmt.Errorf("task %d: %w", id, err)
	}

	return entity.RestoreTask(id, details, createdAt, state), nil
}

// mapError переводит ошибки pgx в ошибки хранилища
func mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	// ошибки домена из fn пробрасываем как есть
	var domainErr *entity.Error
	if errors.As(err, &domainErr) || errors.Is(err, ErrNotFound) {
		return err
	}

	var connectErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connectErr) || errors.As(err, &netErr) || pgconn.Timeout(err) {
		return entity.Unavailable(err, "task store is unreachable")
	}

	return err
}
