package rolllog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dicetool/internal/storage"
)

// DefaultKey is the namespaced key the log is persisted under.
const DefaultKey = "sw25_logs"

// ErrLogUnreadable is returned by mutations when the backend could not be
// read. The mutation is not written, so the stored history survives.
var ErrLogUnreadable = errors.New("roll log unreadable")

// Backend persists the serialized log under a key.
type Backend interface {
	// Load returns the document under key, or storage.ErrKeyNotFound.
	Load(ctx context.Context, key string) ([]byte, error)
	// Save replaces the document under key.
	Save(ctx context.Context, key string, data []byte) error
	// Delete removes key; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Store is the ordered, newest-first roll log. The backend is the only
// copy: every operation reads it afresh, and every mutation writes the full
// log back, so several processes may share one backend. Store is safe for
// concurrent use; the read-modify-write of a mutation is atomic within the
// process only.
type Store struct {
	backend Backend
	key     string
	logger  *zap.Logger

	mu sync.Mutex
}

// NewStore creates a Store persisting under key.
//
// Precondition: backend and logger must be non-nil; key must be non-empty.
func NewStore(backend Backend, key string, logger *zap.Logger) *Store {
	return &Store{backend: backend, key: key, logger: logger}
}

// load reads the log from the backend. A missing or corrupted document is
// an empty log. Any other backend failure also yields an empty log, along
// with an error wrapping ErrLogUnreadable so mutations can refuse to write.
//
// Precondition: s.mu is held.
func (s *Store) load(ctx context.Context) ([]Record, error) {
	data, err := s.backend.Load(ctx, s.key)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			s.logger.Debug("no roll history yet", zap.String("key", s.key))
			return nil, nil
		}
		s.logger.Warn("roll history unreadable, serving empty",
			zap.String("key", s.key),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrLogUnreadable, err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn("roll history corrupted, starting empty",
			zap.String("key", s.key),
			zap.Int("bytes", len(data)),
			zap.Error(err),
		)
		return nil, nil
	}
	return records, nil
}

// persist writes records as the full log.
//
// Precondition: s.mu is held.
func (s *Store) persist(ctx context.Context, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding roll log: %w", err)
	}
	if err := s.backend.Save(ctx, s.key, data); err != nil {
		return fmt.Errorf("persisting roll log: %w", err)
	}
	return nil
}

// All returns the log, newest first. An unreadable backend reads as empty.
//
// Postcondition: The returned slice is owned by the caller.
func (s *Store) All(ctx context.Context) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, _ := s.load(ctx)
	return records
}

// Len returns the number of records.
func (s *Store) Len(ctx context.Context) int {
	return len(s.All(ctx))
}

// Append prepends r and persists the log.
//
// Postcondition: on a nil error, All(ctx)[0] == r.
func (s *Store) Append(ctx context.Context, r Record) error {
	_, err := s.AppendFunc(ctx, func([]Record) Record { return r })
	return err
}

// AppendFunc builds a record from the current log and prepends it, all in
// one critical section, so no other mutation from this process can land
// between reading the log (e.g. for ComputeStreak) and appending.
//
// build receives the log newest-first without the new record; it must not
// retain or modify the slice. When the backend cannot be read, build sees
// an empty log and the record is returned unsaved with an error wrapping
// ErrLogUnreadable.
//
// Postcondition: Returns the built record; a non-nil error means it was
// not persisted.
func (s *Store) AppendFunc(ctx context.Context, build func(log []Record) Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, loadErr := s.load(ctx)
	r := build(records)
	if loadErr != nil {
		return r, loadErr
	}
	next := make([]Record, 0, len(records)+1)
	next = append(next, r)
	return r, s.persist(ctx, append(next, records...))
}

// DeleteAt removes the record at index (0 = newest). An out-of-range index
// is a no-op reported as false.
//
// Postcondition: when removed is true, every later record shifted down by one.
func (s *Store) DeleteAt(ctx context.Context, index int) (removed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	if index < 0 || index >= len(records) {
		s.logger.Debug("delete index out of range",
			zap.Int("index", index),
			zap.Int("records", len(records)),
		)
		return false, nil
	}
	next := make([]Record, 0, len(records)-1)
	next = append(next, records[:index]...)
	next = append(next, records[index+1:]...)
	if err := s.persist(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

// Clear empties the log and removes the persisted document.
//
// Postcondition: on a nil error, All(ctx) is empty, and ComputeStreak
// against it returns 1.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.backend.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("clearing roll log: %w", err)
	}
	return nil
}
