package todo

import (
	"encoding/json"
	"fmt"
	"github.com/ValentinKolb/dTodo/lib/db"
	"github.com/ValentinKolb/dTodo/lib/store"
	"github.com/lni/dragonboat/v4/logger"
	"math/rand/v2"
	"time"
)

var log = logger.GetLogger("todo")

// RandSource picks the index used by Random. *rand.Rand from math/rand/v2 satisfies it.
type RandSource interface {
	IntN(n int) int
}

type randFunc func(n int) int

func (f randFunc) IntN(n int) int { return f(n) }

// Option configures a Service
type Option func(*Service)

// WithClock replaces time.Now as the source of createdAt and completedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithRandSource replaces the global math/rand/v2 source used by Random.
func WithRandSource(rnd RandSource) Option {
	return func(s *Service) {
		s.rnd = rnd
	}
}

// Service implements the todo operations on top of a store.IStore.
// It keeps no state besides the store handle, every call reads and writes the store directly.
type Service struct {
	store store.IStore
	now   func() time.Time
	rnd   RandSource
}

// NewService creates a Service writing todos to s, keyed by their id.
func NewService(s store.IStore, opts ...Option) *Service {
	svc := &Service{
		store: s,
		now:   time.Now,
		rnd:   randFunc(rand.IntN),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// timestamp returns the current time in UTC with millisecond precision
func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// --------------------------------------------------------------------------
// Store helpers
// --------------------------------------------------------------------------

// load fetches and decodes the todo stored under id.
// The boolean is false when the key does not exist.
func (s *Service) load(id string) (Todo, bool, error) {
	data, ok, err := s.store.Get(id)
	if err != nil {
		return Todo{}, false, fmt.Errorf("get %q: %w", id, err)
	}
	if !ok {
		return Todo{}, false, nil
	}

	var t Todo
	if err := json.Unmarshal(data, &t); err != nil {
		return Todo{}, true, fmt.Errorf("%w: key %q: %v", ErrMalformed, id, err)
	}
	return t, true, nil
}

func (s *Service) save(t Todo) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode %q: %w", t.ID, err)
	}
	if err := s.store.Set(t.ID, data); err != nil {
		return fmt.Errorf("set %q: %w", t.ID, err)
	}
	return nil
}

// --------------------------------------------------------------------------
// Operations
// --------------------------------------------------------------------------

// List returns all live todos in key enumeration order.
// Keys that vanish during the enumeration, fail to load or hold undecodable values are skipped.
func (s *Service) List() ([]Todo, error) {
	keys, err := s.store.Keys()
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}

	todos := make([]Todo, 0, len(keys))
	for _, key := range keys {
		t, ok, err := s.load(key)
		if err != nil {
			log.Debugf("skipping key %q: %v", key, err)
			continue
		}
		if !ok || t.Deleted {
			continue
		}
		todos = append(todos, t)
	}
	return todos, nil
}

// Random returns a uniformly chosen todo.
//
// It returns ErrEmpty when the store has no keys and ErrNotFound when the chosen key
// was deleted in the meantime or holds a tombstone.
func (s *Service) Random() (Todo, error) {
	keys, err := s.store.Keys()
	if err != nil {
		return Todo{}, fmt.Errorf("list keys: %w", err)
	}
	if len(keys) == 0 {
		return Todo{}, ErrEmpty
	}

	key := keys[s.rnd.IntN(len(keys))]
	t, ok, err := s.load(key)
	if err != nil {
		return Todo{}, err
	}
	if !ok || t.Deleted {
		return Todo{}, ErrNotFound
	}
	return t, nil
}

// Create stores a new todo under d.ID, replacing any existing record with that id.
func (s *Service) Create(d Draft) (Todo, error) {
	t := Todo{
		ID:          d.ID,
		Title:       d.Title,
		Completed:   d.Completed,
		CreatedAt:   s.timestamp(),
		CompletedAt: nil,
		Deleted:     false,
	}
	if err := s.save(t); err != nil {
		return Todo{}, err
	}
	log.Debugf("created %s", t)
	return t, nil
}

// Get returns the todo stored under id.
func (s *Service) Get(id string) (Todo, error) {
	t, ok, err := s.load(id)
	if err != nil {
		return Todo{}, err
	}
	if !ok {
		return Todo{}, ErrNotFound
	}
	return t, nil
}

// Update merges p into the todo stored under id.
//
// completedAt is set when the todo becomes completed and kept otherwise, it is never cleared.
// The id, createdAt and the deleted flag of the stored record are kept.
func (s *Service) Update(id string, p Patch) (Todo, error) {
	existing, ok, err := s.load(id)
	if err != nil {
		return Todo{}, err
	}
	if !ok {
		return Todo{}, ErrNotFound
	}

	updated := existing
	if p.Title != nil {
		updated.Title = *p.Title
	}
	if p.Completed != nil {
		updated.Completed = *p.Completed
		if *p.Completed && !existing.Completed {
			now := s.timestamp()
			updated.CompletedAt = &now
		}
	}

	if err := s.save(updated); err != nil {
		return Todo{}, err
	}
	return updated, nil
}

// Delete removes the todo stored under id. Deleting a missing id is not an error.
func (s *Service) Delete(id string) error {
	if err := s.store.Delete(id); err != nil {
		return fmt.Errorf("delete %q: %w", id, err)
	}
	return nil
}

// StoreInfo reports key count and size of the underlying store.
// Tombstones and undecodable values are counted like any other key.
func (s *Service) StoreInfo() (db.DatabaseInfo, error) {
	info, err := s.store.GetDBInfo()
	if err != nil {
		return db.DatabaseInfo{}, fmt.Errorf("store info: %w", err)
	}
	return info, nil
}

// Seed overwrites the ids 1 to 5 with a fixed set of todos.
// All of them are created now, the completed ones are also completed now.
func (s *Service) Seed() error {
	now := s.timestamp()
	for _, d := range seedData {
		t := Todo{
			ID:        d.ID,
			Title:     d.Title,
			Completed: d.Completed,
			CreatedAt: now,
		}
		if d.Completed {
			completedAt := now
			t.CompletedAt = &completedAt
		}
		if err := s.save(t); err != nil {
			return err
		}
	}
	log.Infof("seeded %d todos", len(seedData))
	return nil
}
