package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
)

// ErrDuplicateFire aborts a mutation whose effect is already recorded. It is
// expected under remounts and never surfaced to the player.
var ErrDuplicateFire = errors.New("duplicate fire")

// Store persists the session's record under one fixed key. Load never fails:
// missing or corrupt payloads come back as absent.
type Store interface {
	Load(ctx context.Context) (Record, bool)
	Save(ctx context.Context, r Record) error
}

// Session is the explicit progression context injected into every screen.
type Session struct {
	store   Store
	sched   *Scheduler
	catalog Catalog
	router  *Router
	nav     Navigator
	logger  *log.Logger
	current Record
	loaded  bool
}

type SessionOption func(*Session)

func WithLogger(l *log.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithNavigator(n Navigator) SessionOption {
	return func(s *Session) { s.nav = n }
}

func NewSession(store Store, sched *Scheduler, catalog Catalog, opts ...SessionOption) (*Session, error) {
	if store == nil {
		return nil, errors.New("session store is nil")
	}
	if sched == nil {
		return nil, errors.New("session scheduler is nil")
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	router, err := NewRouter(catalog.Routes)
	if err != nil {
		return nil, err
	}
	s := &Session{
		store:   store,
		sched:   sched,
		catalog: catalog,
		router:  router,
		nav:     NavigatorFunc(func(ScreenID) {}),
		logger:  log.New(io.Discard, "", 0),
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

func (s *Session) Scheduler() *Scheduler { return s.sched }
func (s *Session) Router() *Router       { return s.router }
func (s *Session) Catalog() Catalog      { return s.catalog }

// SetNavigator replaces the navigator, typically once the host is running.
func (s *Session) SetNavigator(n Navigator) {
	if n != nil {
		s.nav = n
	}
}

// Record returns a copy of the last loaded or saved record.
func (s *Session) Record() Record { return s.current.Clone() }

// Open loads the persisted record or lazily creates and saves a fresh one.
func (s *Session) Open(ctx context.Context) (Record, error) {
	if rec, ok := s.store.Load(ctx); ok {
		s.current = rec
		s.loaded = true
		return rec.Clone(), nil
	}
	rec := NewRecord(s.catalog.Home)
	if err := s.store.Save(ctx, rec); err != nil {
		return Record{}, fmt.Errorf("save initial record: %w", err)
	}
	s.current = rec
	s.loaded = true
	return rec.Clone(), nil
}

// Mutate reads the persisted record, applies fn to a copy and saves it. If fn
// or the save fails the previous record stays in place. The read happens at
// call time so guards inside fn see what other mounts already wrote.
func (s *Session) Mutate(ctx context.Context, fn func(r *Record) error) (Record, error) {
	base, ok := s.store.Load(ctx)
	if !ok {
		if s.loaded {
			base = s.current.Clone()
		} else {
			base = NewRecord(s.catalog.Home)
		}
	}
	next := base.Clone()
	if err := fn(&next); err != nil {
		s.current = base
		s.loaded = true
		return base.Clone(), err
	}
	next.Normalize()
	if err := s.store.Save(ctx, next); err != nil {
		s.current = base
		s.loaded = true
		return base.Clone(), fmt.Errorf("save record: %w", err)
	}
	s.current = next
	s.loaded = true
	return next.Clone(), nil
}

// suppressed logs a duplicate fire and swallows it.
func (s *Session) suppressed(err error, what string) error {
	if errors.Is(err, ErrDuplicateFire) {
		s.logger.Printf("suppressed duplicate %s", what)
		return nil
	}
	if err != nil {
		s.logger.Printf("%s: %v", what, err)
	}
	return err
}

// navigate hands a transition to the host.
func (s *Session) navigate(to ScreenID) { s.nav.Navigate(to) }
