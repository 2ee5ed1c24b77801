// Package memory is a process-local persistence backend. Units of work take
// an exclusive lock and operate on a copy of the data that replaces the
// shared state on commit.
package memory

import (
	"context"
	"sync"

	"crux-backend/application/ports"
	"crux-backend/domain/core/valueobjects"

	"go.uber.org/zap"
)

type state struct {
	cruxes     map[string]cruxRow
	dimensions map[string]dimensionRow
	tags       map[string]tagRow
	// external resources owned by other services, keyed by type then key
	external map[valueobjects.ResourceType]map[string]string
}

func newState() *state {
	return &state{
		cruxes:     make(map[string]cruxRow),
		dimensions: make(map[string]dimensionRow),
		tags:       make(map[string]tagRow),
		external:   make(map[valueobjects.ResourceType]map[string]string),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.cruxes {
		c.cruxes[k] = v
	}
	for k, v := range s.dimensions {
		c.dimensions[k] = v
	}
	for k, v := range s.tags {
		c.tags[k] = v
	}
	for rt, keys := range s.external {
		m := make(map[string]string, len(keys))
		for k, v := range keys {
			m[k] = v
		}
		c.external[rt] = m
	}
	return c
}

// accessor runs fn with exclusive access to a state
type accessor func(fn func(s *state) error) error

// Backend is the in-memory implementation of ports.Backend
type Backend struct {
	mu       sync.Mutex
	state    *state
	failures map[string]error
	logger   *zap.Logger
}

// NewBackend creates an empty in-memory backend
func NewBackend(logger *zap.Logger) *Backend {
	return &Backend{
		state:    newState(),
		failures: make(map[string]error),
		logger:   logger,
	}
}

func (b *Backend) locked(fn func(s *state) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return fn(b.state)
}

// InjectFailure makes the named repository operation (for example
// "tags.create") fail with err until cleared with a nil err
func (b *Backend) InjectFailure(operation string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		delete(b.failures, operation)
		return
	}
	b.failures[operation] = err
}

// fail is called with b.mu held
func (b *Backend) fail(operation string) error {
	return b.failures[operation]
}

// RegisterResource records an externally owned taggable resource
func (b *Backend) RegisterResource(resourceType valueobjects.ResourceType, id, key string) {
	_ = b.locked(func(s *state) error {
		if s.external[resourceType] == nil {
			s.external[resourceType] = make(map[string]string)
		}
		s.external[resourceType][key] = id
		return nil
	})
}

func (b *Backend) Dimensions() ports.DimensionRepository {
	return &dimensionRepository{backend: b, with: b.locked}
}

func (b *Backend) Tags() ports.TagRepository {
	return &tagRepository{backend: b, with: b.locked}
}

func (b *Backend) Cruxes() ports.CruxRepository {
	return &cruxRepository{backend: b, with: b.locked}
}

func (b *Backend) Resources() ports.ResourceResolver {
	return &resourceResolver{with: b.locked}
}

// Ping succeeds unless a "ping" failure was injected
func (b *Backend) Ping(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fail("ping")
}

// Begin takes the backend lock until the unit of work ends
func (b *Backend) Begin(ctx context.Context) (ports.UnitOfWork, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	if err := b.fail("begin"); err != nil {
		b.mu.Unlock()
		return nil, err
	}
	return &unitOfWork{backend: b, working: b.state.clone()}, nil
}

type unitOfWork struct {
	backend *Backend
	working *state
	done    bool
}

func (u *unitOfWork) with(fn func(s *state) error) error {
	return fn(u.working)
}

func (u *unitOfWork) Dimensions() ports.DimensionRepository {
	return &dimensionRepository{backend: u.backend, with: u.with}
}

func (u *unitOfWork) Tags() ports.TagRepository {
	return &tagRepository{backend: u.backend, with: u.with}
}

func (u *unitOfWork) Cruxes() ports.CruxRepository {
	return &cruxRepository{backend: u.backend, with: u.with}
}

func (u *unitOfWork) Resources() ports.ResourceResolver {
	return &resourceResolver{with: u.with}
}

func (u *unitOfWork) Commit(context.Context) error {
	if u.done {
		return nil
	}
	if err := u.backend.fail("commit"); err != nil {
		return err
	}
	u.backend.state = u.working
	u.done = true
	u.backend.mu.Unlock()
	return nil
}

func (u *unitOfWork) Rollback() error {
	if u.done {
		return nil
	}
	u.done = true
	u.backend.mu.Unlock()
	return nil
}

var (
	_ ports.Backend    = (*Backend)(nil)
	_ ports.UnitOfWork = (*unitOfWork)(nil)
)
