// Package board holds the client-side task board: a one-way data-flow store,
// the task list controller on top of it and the page projections it feeds.
package board

import (
	"fmt"
	"sync"

	"github.com/fastygo/taskboard/domain"
)

// Phase is the position of the editing state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseEditing
	PhaseSubmitting
)

func (p Phase) String() string {
	switch p {
	case PhaseEditing:
		return "editing"
	case PhaseSubmitting:
		return "submitting"
	default:
		return "idle"
	}
}

// EditSession is the single in-flight edit.
type EditSession struct {
	TaskID int64
	Form   FormState
}

// State is everything the task list view renders.
type State struct {
	Tasks          []domain.Task
	PriorityFilter string
	SortOrder      string
	Phase          Phase
	Edit           *EditSession
}

func (s State) clone() State {
	out := s
	out.Tasks = make([]domain.Task, len(s.Tasks))
	for i := range s.Tasks {
		out.Tasks[i] = s.Tasks[i].Clone()
	}
	if s.Edit != nil {
		edit := *s.Edit
		edit.Form = edit.Form.Clone()
		out.Edit = &edit
	}
	return out
}

// Action is a named state transition request.
type Action struct {
	Name    string
	Payload interface{}
}

// Reducer derives the next state. Returning an error leaves the state untouched.
type Reducer func(state State, payload interface{}) (State, error)

// Store applies actions through registered reducers and notifies subscribers.
type Store struct {
	mu       sync.RWMutex
	state    State
	reducers map[string]Reducer

	subMu   sync.Mutex
	subs    map[int]func(State)
	nextSub int
}

func NewStore(initial State) *Store {
	if initial.Tasks == nil {
		initial.Tasks = []domain.Task{}
	}
	return &Store{
		state:    initial,
		reducers: make(map[string]Reducer),
		subs:     make(map[int]func(State)),
	}
}

func (s *Store) RegisterReducer(name string, reducer Reducer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reducers[name] = reducer
}

// Dispatch runs the reducer registered for action and publishes the new state.
func (s *Store) Dispatch(action Action) error {
	s.mu.Lock()
	reducer, ok := s.reducers[action.Name]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("reducer %s not registered", action.Name)
	}
	next, err := reducer(s.state.clone(), action.Payload)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = next
	snapshot := next.clone()
	s.mu.Unlock()

	s.notify(snapshot)
	return nil
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Subscribe registers fn for every state change and returns its cancel function.
func (s *Store) Subscribe(fn func(State)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify(state State) {
	s.subMu.Lock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(state.clone())
	}
}
