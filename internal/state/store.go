// Package state provides the reactive store shared by the jwtlens views.
//
// The Store is the single source of truth for the selected token, the active
// view, the token list and the loading/error flags. Views never reference each
// other; they write through Set and learn about each other's actions through
// Subscribe.
package state

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/tOgg1/jwtlens/internal/logging"
	"github.com/tOgg1/jwtlens/internal/models"
)

// ErrUnknownField is returned by Get for keys outside the known field set.
var ErrUnknownField = errors.New("unknown state field")

// State is a full snapshot of the Store.
type State struct {
	Selected   *models.TokenRecord
	ActiveView models.View
	Tokens     []models.TokenRecord
	Loading    bool
	Error      string
}

// Default returns the startup state.
func Default() State {
	return State{
		ActiveView: models.ViewAnalysis,
		Tokens:     []models.TokenRecord{},
	}
}

func (s State) clone() State {
	out := s
	if s.Selected != nil {
		rec := *s.Selected
		out.Selected = &rec
	}
	if s.Tokens != nil {
		out.Tokens = make([]models.TokenRecord, len(s.Tokens))
		copy(out.Tokens, s.Tokens)
	}
	return out
}

// Change overwrites one field of the state.
type Change func(*State)

// Selected sets the selected token. A nil record clears the selection.
func Selected(rec *models.TokenRecord) Change {
	return func(s *State) {
		if rec == nil {
			s.Selected = nil
			return
		}
		copied := *rec
		s.Selected = &copied
	}
}

// ActiveView sets the active view.
func ActiveView(v models.View) Change {
	return func(s *State) { s.ActiveView = v }
}

// Tokens replaces the token list.
func Tokens(list []models.TokenRecord) Change {
	copied := append([]models.TokenRecord{}, list...)
	return func(s *State) { s.Tokens = copied }
}

// Loading sets the loading flag.
func Loading(loading bool) Change {
	return func(s *State) { s.Loading = loading }
}

// Error sets the last error message. An empty message clears it.
func Error(msg string) Change {
	return func(s *State) { s.Error = msg }
}

// Handler is invoked with the new and previous state. A returned error is
// logged; it never reaches the caller of Set.
type Handler func(next, prev State) error

// subscription represents an active registration.
type subscription struct {
	id      uint64
	event   Event
	handler Handler
	active  atomic.Bool
}

// Option configures a Store.
type Option func(*Store)

// WithInitial replaces the default startup state.
func WithInitial(initial State) Option {
	return func(s *Store) {
		s.state = initial.clone()
	}
}

// WithLogger sets the logger used for handler failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Store holds the shared state and its subscriptions.
type Store struct {
	mu     sync.RWMutex
	state  State
	subs   map[Event][]*subscription
	nextID uint64
	logger zerolog.Logger
}

// New creates a Store holding Default().
func New(opts ...Option) *Store {
	s := &Store{
		state:  Default(),
		subs:   make(map[Event][]*subscription),
		logger: logging.Component("state"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the current value of a field.
func (s *Store) Get(field Field) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch field {
	case FieldSelected:
		return s.state.clone().Selected, nil
	case FieldActiveView:
		return s.state.ActiveView, nil
	case FieldTokens:
		return s.state.clone().Tokens, nil
	case FieldLoading:
		return s.state.Loading, nil
	case FieldError:
		return s.state.Error, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, string(field))
	}
}

// Selected returns a copy of the selected token, or nil.
func (s *Store) Selected() *models.TokenRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone().Selected
}

// ActiveView returns the active view.
func (s *Store) ActiveView() models.View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ActiveView
}

// Tokens returns a copy of the token list.
func (s *Store) Tokens() []models.TokenRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone().Tokens
}

// Loading reports whether a fetch is outstanding.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Loading
}

// Err returns the last error message.
func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Error
}

// Snapshot returns a copy of the full state. Mutating it does not affect the Store.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Set merges changes into the state, then broadcasts event (if any) followed
// by EventStateChanged. Passing EventStateChanged as event broadcasts it once.
// Handlers run synchronously, outside the lock, so they may call Set again.
func (s *Store) Set(event Event, changes ...Change) {
	s.mu.Lock()
	prev := s.state.clone()
	next := s.state
	for _, change := range changes {
		if change != nil {
			change(&next)
		}
	}
	s.state = next
	committed := s.state.clone()
	s.mu.Unlock()

	if event != EventNone && event != EventStateChanged {
		s.publish(event, committed, prev)
	}
	s.publish(EventStateChanged, committed, prev)
}

// Subscribe registers h for event. The returned func removes exactly this
// registration; calling it more than once is a no-op.
func (s *Store) Subscribe(event Event, h Handler) func() {
	if h == nil || event == EventNone {
		return func() {}
	}

	s.mu.Lock()
	s.nextID++
	sub := &subscription{id: s.nextID, event: event, handler: h}
	sub.active.Store(true)
	s.subs[event] = append(s.subs[event], sub)
	s.mu.Unlock()

	return func() {
		if !sub.active.CompareAndSwap(true, false) {
			return
		}
		s.remove(sub)
	}
}

// SubscriberCount returns the number of handlers registered for event.
func (s *Store) SubscriberCount(event Event) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs[event])
}

// Clear removes all subscriptions.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, subs := range s.subs {
		for _, sub := range subs {
			sub.active.Store(false)
		}
	}
	s.subs = make(map[Event][]*subscription)
}

func (s *Store) remove(target *subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs := s.subs[target.event]
	for i, sub := range subs {
		if sub.id == target.id {
			s.subs[target.event] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

func (s *Store) publish(event Event, next, prev State) {
	s.mu.RLock()
	handlers := append([]*subscription(nil), s.subs[event]...)
	s.mu.RUnlock()

	for _, sub := range handlers {
		// Unsubscribed by an earlier handler of this same broadcast.
		if !sub.active.Load() {
			continue
		}
		s.invoke(event, sub, next.clone(), prev.clone())
	}
}

func (s *Store) invoke(event Event, sub *subscription, next, prev State) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("event", event.String()).
				Uint64("subscription", sub.id).
				Interface("panic", r).
				Msg("state handler panicked")
		}
	}()

	if err := sub.handler(next, prev); err != nil {
		s.logger.Error().
			Err(err).
			Str("event", event.String()).
			Uint64("subscription", sub.id).
			Msg("state handler failed")
	}
}
