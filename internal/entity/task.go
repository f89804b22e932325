package entity

import (
	"fmt"
	"math"
	"time"
)

type Status string

const (
	StatusCreated    Status = "CREATED"
	StatusUpdated    Status = "UPDATED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

// ParseStatus разбирает строковое представление статуса
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusCreated, StatusUpdated, StatusInProgress, StatusDone:
		return st, nil
	}
	return "", InvalidArgumentf("unknown task status %q", s)
}

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

func ParsePriority(s string) (Priority, error) {
	switch p := Priority(s); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	}
	return "", InvalidArgumentf("unknown task priority %q", s)
}

// State - состояние жизненного цикла задачи.
// Реализации: Created, Updated, InProgress, Done.
type State interface {
	Status() Status
	state()
}

type Created struct{}

type Updated struct{}

type InProgress struct{}

// Done - завершенная задача, всегда несет время завершения
type Done struct {
	CompletedAt time.Time
}

func (Created) Status() Status    { return StatusCreated }
func (Updated) Status() Status    { return StatusUpdated }
func (InProgress) Status() Status { return StatusInProgress }
func (Done) Status() Status       { return StatusDone }

func (Created) state()    {}
func (Updated) state()    {}
func (InProgress) state() {}
func (Done) state()       {}

// StateOf восстанавливает состояние из хранимых полей status и completed_at
func StateOf(status Status, completedAt *time.Time) (State, error) {
	if status == StatusDone {
		if completedAt == nil {
			return nil, fmt.Errorf("task in status %s has no completion time", status)
		}
		return Done{CompletedAt: *completedAt}, nil
	}
	if completedAt != nil {
		return nil, fmt.Errorf("task in status %s has completion time", status)
	}
	switch status {
	case StatusCreated:
		return Created{}, nil
	case StatusUpdated:
		return Updated{}, nil
	case StatusInProgress:
		return InProgress{}, nil
	}
	return nil, fmt.Errorf("unknown task status %q", status)
}

// TaskDetails - поля, которыми полностью владеет вызывающая сторона
type TaskDetails struct {
	Title          string
	Description    string
	CreatorID      int64
	AssignedUserID int64
	Deadline       time.Time
	Priority       Priority
}

// Task - задача. id, createdAt и состояние меняются только через переходы,
// каждый переход возвращает новую копию.
type Task struct {
	TaskDetails

	id        int64
	createdAt time.Time
	state     State
}

// NewTask создает еще не сохраненную задачу в состоянии CREATED
func NewTask(details TaskDetails, now time.Time) Task {
	return Task{
		TaskDetails: details,
		createdAt:   now,
		state:       Created{},
	}
}

// RestoreTask собирает задачу из хранилища
func RestoreTask(id int64, details TaskDetails, createdAt time.Time, state State) Task {
	return Task{
		TaskDetails: details,
		id:          id,
		createdAt:   createdAt,
		state:       state,
	}
}

func (t Task) ID() int64            { return t.id }
func (t Task) CreatedAt() time.Time { return t.createdAt }

func (t Task) State() State {
	if t.state == nil {
		return Created{}
	}
	return t.state
}

func (t Task) Status() Status { return t.State().Status() }

// CompletedAt возвращает nil для любой незавершенной задачи
func (t Task) CompletedAt() *time.Time {
	if done, ok := t.state.(Done); ok {
		at := done.CompletedAt
		return &at
	}
	return nil
}

// Edit заменяет все пользовательские поля, статус становится UPDATED
func (t Task) Edit(details TaskDetails) Task {
	return RestoreTask(t.id, details, t.createdAt, Updated{})
}

// Start переводит задачу в IN_PROGRESS, время завершения сбрасывается
func (t Task) Start() Task {
	return RestoreTask(t.id, t.TaskDetails, t.createdAt, InProgress{})
}

func (t Task) Complete(now time.Time) Task {
	return RestoreTask(t.id, t.TaskDetails, t.createdAt, Done{CompletedAt: now})
}

// EditTaskRequest - данные для редактирования.
// Status допускается только для проверки: вернуть задачу в CREATED нельзя.
type EditTaskRequest struct {
	Details TaskDetails
	Status  *Status
}

// SearchFilter - пустое поле означает отсутствие фильтра по нему
type SearchFilter struct {
	CreatorID      *int64
	AssignedUserID *int64
	Status         *Status
	Priority       *Priority
	PageSize       *int
	PageNumber     *int
}

const (
	DefaultPageSize   = 10
	DefaultPageNumber = 0
	MaxPageSize       = 1000
	// maxOffset ограничивает size*number, чтобы смещение не переполнялось
	maxOffset = math.MaxInt32
)

type Page struct {
	Size   int
	Number int
}

// NewPage проверяет параметры пагинации
func NewPage(size, number int) (Page, error) {
	if size < 1 {
		return Page{}, InvalidArgumentf("page size must be at least 1, got %d", size)
	}
	if size > MaxPageSize {
		return Page{}, InvalidArgumentf("page size must be at most %d, got %d", MaxPageSize, size)
	}
	if number < 0 {
		return Page{}, InvalidArgumentf("page number must not be negative, got %d", number)
	}
	if number > maxOffset/size {
		return Page{}, InvalidArgumentf("page number %d is too large for page size %d", number, size)
	}
	return Page{Size: size, Number: number}, nil
}

// Page возвращает пагинацию фильтра с подставленными значениями по умолчанию
func (f SearchFilter) Page() (Page, error) {
	size, number := DefaultPageSize, DefaultPageNumber
	if f.PageSize != nil {
		size = *f.PageSize
	}
	if f.PageNumber != nil {
		number = *f.PageNumber
	}
	return NewPage(size, number)
}

func (p Page) Offset() int {
	return p.Size * p.Number
}

// TaskPage - страница общего списка задач
type TaskPage struct {
	Tasks      []Task
	Total      int
	PageSize   int
	PageNumber int
}

func (f SearchFilter) String() string {
	s := "{"
	sep := ""
	add := func(k string, v any) {
		s += fmt.Sprintf("%s%s=%v", sep, k, v)
		sep = " "
	}
	if f.CreatorID != nil {
		add("creatorId", *f.CreatorID)
	}
	if f.AssignedUserID != nil {
		add("assignedUserId", *f.AssignedUserID)
	}
	if f.Status != nil {
		add("status", *f.Status)
	}
	if f.Priority != nil {
		add("priority", *f.Priority)
	}
	if f.PageSize != nil {
		add("pageSize", *f.PageSize)
	}
	if f.PageNumber != nil {
		add("pageNumber", *f.PageNumber)
	}
	return s + "}"
}
