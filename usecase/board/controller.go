package board

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
)

// TaskGateway is the Task Store as seen from the client.
type TaskGateway interface {
	ListTasks(ctx context.Context) ([]domain.Task, error)
	CreateTask(ctx context.Context, task *domain.Task) (*domain.Task, error)
	UpdateTask(ctx context.Context, id int64, task *domain.Task) (*domain.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}

const (
	ActionLoaded        = "tasks/loaded"
	ActionReplaced      = "tasks/replaced"
	ActionAppended      = "tasks/appended"
	ActionRemoved       = "tasks/removed"
	ActionEditStarted   = "edit/started"
	ActionEditSubmitted = "edit/submitted"
	ActionEditFailed    = "edit/failed"
	ActionEditClosed    = "edit/closed"
	ActionPriority      = "filter/priority"
	ActionSortOrder     = "filter/sort"
)

var (
	errSubmitting   = domain.NewError(domain.ErrCodeConflict, "an edit is being submitted")
	errNotEditing   = domain.NewError(domain.ErrCodeInvalid, "no edit in progress for this task")
	errUnknownOrder = domain.NewError(domain.ErrCodeInvalid, "sort order must be more or less")
)

// Controller owns the task list of one page: it loads, edits and projects the collection.
// Local state only changes after the Task Store confirms a mutation.
type Controller struct {
	gateway TaskGateway
	store   *Store
	logger  *zap.Logger
	now     func() time.Time
}

func NewController(gateway TaskGateway, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{
		gateway: gateway,
		store:   NewStore(State{SortOrder: SortMore}),
		logger:  logger,
		now:     time.Now,
	}
	c.registerReducers()
	return c
}

// WithClock overrides the clock used to compute days remaining.
func (c *Controller) WithClock(now func() time.Time) *Controller {
	if now != nil {
		c.now = now
	}
	return c
}

// Store exposes the underlying store for subscriptions.
func (c *Controller) Store() *Store {
	return c.store
}

func (c *Controller) State() State {
	return c.store.State()
}

// Load replaces the collection with the Task Store's current list.
func (c *Controller) Load(ctx context.Context) error {
	tasks, err := c.gateway.ListTasks(ctx)
	if err != nil {
		c.logger.Warn("load tasks failed", zap.Error(err))
		return err
	}
	return c.store.Dispatch(Action{Name: ActionLoaded, Payload: tasks})
}

// Visible is the filtered and ordered projection of the collection.
func (c *Controller) Visible() []domain.Task {
	state := c.store.State()
	return FilterAndSort(state.Tasks, state.PriorityFilter, state.SortOrder, c.now())
}

func (c *Controller) SetPriorityFilter(priority string) error {
	if !domain.ValidPriority(priority) {
		return domain.ErrInvalidPriority
	}
	return c.store.Dispatch(Action{Name: ActionPriority, Payload: priority})
}

// SetSortOrder accepts "more" or "less".
func (c *Controller) SetSortOrder(order string) error {
	if order != SortMore && order != SortLess {
		return errUnknownOrder
	}
	return c.store.Dispatch(Action{Name: ActionSortOrder, Payload: order})
}

// StartEdit opens an edit session for task, replacing any session still being edited.
func (c *Controller) StartEdit(task domain.Task) (FormState, error) {
	form := FormFromTask(task)
	if err := c.store.Dispatch(Action{Name: ActionEditStarted, Payload: EditSession{TaskID: task.ID, Form: form}}); err != nil {
		return FormState{}, err
	}
	return form.Clone(), nil
}

// CancelEdit closes the current edit session without sending anything.
func (c *Controller) CancelEdit() error {
	return c.store.Dispatch(Action{Name: ActionEditClosed})
}

// SubmitEdit sends the form of the open session as a full replacement of taskID.
// On failure the session stays open and the collection is unchanged.
func (c *Controller) SubmitEdit(ctx context.Context, taskID int64, form FormState) (*domain.Task, error) {
	if taskID == 0 {
		return nil, domain.ErrMissingTaskID
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}
	if err := c.store.Dispatch(Action{Name: ActionEditSubmitted, Payload: EditSession{TaskID: taskID, Form: form}}); err != nil {
		return nil, err
	}

	updated, err := c.gateway.UpdateTask(ctx, taskID, form.ToTask(taskID))
	if err != nil {
		c.logger.Warn("update task failed", zap.Int64("task_id", taskID), zap.Error(err))
		_ = c.store.Dispatch(Action{Name: ActionEditFailed})
		return nil, err
	}
	if err := c.store.Dispatch(Action{Name: ActionReplaced, Payload: *updated}); err != nil {
		return nil, err
	}
	return updated, c.store.Dispatch(Action{Name: ActionEditClosed})
}

// SubmitCreate posts a new task and appends the server's record.
func (c *Controller) SubmitCreate(ctx context.Context, form FormState) (*domain.Task, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	created, err := c.gateway.CreateTask(ctx, form.ToTask(0))
	if err != nil {
		c.logger.Warn("create task failed", zap.Error(err))
		return nil, err
	}
	if err := c.store.Dispatch(Action{Name: ActionAppended, Payload: *created}); err != nil {
		return nil, err
	}
	return created, nil
}

// DeleteTask removes taskID from the Task Store and then from the collection.
func (c *Controller) DeleteTask(ctx context.Context, taskID int64) error {
	if taskID == 0 {
		return domain.ErrMissingTaskID
	}
	if err := c.gateway.DeleteTask(ctx, taskID); err != nil {
		c.logger.Warn("delete task failed", zap.Int64("task_id", taskID), zap.Error(err))
		return err
	}
	return c.store.Dispatch(Action{Name: ActionRemoved, Payload: taskID})
}

func (c *Controller) registerReducers() {
	c.store.RegisterReducer(ActionLoaded, func(s State, payload interface{}) (State, error) {
		tasks, _ := payload.([]domain.Task)
		s.Tasks = make([]domain.Task, len(tasks))
		for i := range tasks {
			s.Tasks[i] = tasks[i].Clone()
		}
		return s, nil
	})
	c.store.RegisterReducer(ActionReplaced, func(s State, payload interface{}) (State, error) {
		task := payload.(domain.Task)
		for i := range s.Tasks {
			if s.Tasks[i].ID == task.ID {
				s.Tasks[i] = task.Clone()
			}
		}
		return s, nil
	})
	c.store.RegisterReducer(ActionAppended, func(s State, payload interface{}) (State, error) {
		s.Tasks = append(s.Tasks, payload.(domain.Task).Clone())
		return s, nil
	})
	c.store.RegisterReducer(ActionRemoved, func(s State, payload interface{}) (State, error) {
		id := payload.(int64)
		kept := s.Tasks[:0]
		for _, t := range s.Tasks {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		s.Tasks = kept
		return s, nil
	})
	c.store.RegisterReducer(ActionEditStarted, func(s State, payload interface{}) (State, error) {
		if s.Phase == PhaseSubmitting {
			return s, errSubmitting
		}
		session := payload.(EditSession)
		s.Phase = PhaseEditing
		s.Edit = &session
		return s, nil
	})
	c.store.RegisterReducer(ActionEditSubmitted, func(s State, payload interface{}) (State, error) {
		session := payload.(EditSession)
		switch {
		case s.Phase == PhaseSubmitting:
			return s, errSubmitting
		case s.Phase != PhaseEditing || s.Edit == nil || s.Edit.TaskID != session.TaskID:
			return s, errNotEditing
		}
		s.Phase = PhaseSubmitting
		s.Edit = &session
		return s, nil
	})
	c.store.RegisterReducer(ActionEditFailed, func(s State, _ interface{}) (State, error) {
		if s.Phase == PhaseSubmitting {
			s.Phase = PhaseEditing
		}
		return s, nil
	})
	c.store.RegisterReducer(ActionEditClosed, func(s State, _ interface{}) (State, error) {
		s.Phase = PhaseIdle
		s.Edit = nil
		return s, nil
	})
	c.store.RegisterReducer(ActionPriority, func(s State, payload interface{}) (State, error) {
		s.PriorityFilter, _ = payload.(string)
		return s, nil
	})
	c.store.RegisterReducer(ActionSortOrder, func(s State, payload interface{}) (State, error) {
		s.SortOrder = NormalizeSortOrder(payload.(string))
		return s, nil
	})
}
