package store

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/DaanHessen/snappr/internal/engine"
)

// RecordKeySuffix is appended to the session id to form the storage key.
const RecordKeySuffix = "progression.v1"

// RecordKey returns the fixed key of a session's progression record.
func RecordKey(sessionID string) string {
	return fmt.Sprintf("%s:%s", sessionID, RecordKeySuffix)
}

// RecordStore persists one session's engine.Record in a Backend. Load never
// returns an error: corrupt or unreadable payloads are logged and reported
// as absent so the session starts fresh.
type RecordStore struct {
	backend  Backend
	key      string
	compress bool
	logger   *log.Logger
}

type Option func(*RecordStore)

func WithCompression(on bool) Option { return func(s *RecordStore) { s.compress = on } }

func WithLogger(l *log.Logger) Option {
	return func(s *RecordStore) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewRecordStore(b Backend, sessionID string, opts ...Option) (*RecordStore, error) {
	if b == nil {
		return nil, fmt.Errorf("backend is nil")
	}
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("session id is required")
	}
	s := &RecordStore{backend: b, key: RecordKey(sessionID), logger: log.New(io.Discard, "", 0)}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

func (s *RecordStore) Key() string { return s.key }

func (s *RecordStore) Load(ctx context.Context) (engine.Record, bool) {
	payload, ok, err := s.backend.Get(ctx, s.key)
	if err != nil {
		s.logger.Printf("state read failed for %s: %v", s.key, err)
		return engine.Record{}, false
	}
	if !ok {
		return engine.Record{}, false
	}
	r, err := decode(payload)
	if err != nil {
		s.logger.Printf("state corrupt for %s, starting fresh: %v", s.key, err)
		return engine.Record{}, false
	}
	return r, true
}

func (s *RecordStore) Save(ctx context.Context, r engine.Record) error {
	payload, err := encode(r, s.compress)
	if err != nil {
		return err
	}
	return wrap(s.backend.Put(ctx, s.key, payload), "save record")
}

// Clear removes the session's record. The next load starts from defaults.
func (s *RecordStore) Clear(ctx context.Context) error {
	return wrap(s.backend.Delete(ctx, s.key), "clear record")
}

// Close releases the backend.
func (s *RecordStore) Close() error { return s.backend.Close() }
