package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"crux-backend/domain/config"
	"crux-backend/domain/core/entities"
	"crux-backend/domain/core/valueobjects"
	"crux-backend/domain/events"
	"crux-backend/infrastructure/persistence/memory"
	"crux-backend/pkg/common"
	"crux-backend/pkg/utils"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	alice = common.Actor{AuthorID: "author-alice", HomeID: "home-1"}
	bob   = common.Actor{AuthorID: "author-bob", HomeID: "home-1"}
	admin = common.Actor{AuthorID: "author-admin", HomeID: "home-1", Roles: []string{common.RoleAdmin}}
	start = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
)

// MockEventPublisher is a mock implementation of ports.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishBatch(ctx context.Context, evts []events.DomainEvent) error {
	args := m.Called(ctx, evts)
	return args.Error(0)
}

type countingMetrics struct {
	mu      sync.Mutex
	created int
	deleted map[events.DeletionReason]int
	added   int
	removed int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{deleted: make(map[events.DeletionReason]int)}
}

func (m *countingMetrics) DimensionsCreated(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created += n
}

func (m *countingMetrics) DimensionsDeleted(reason events.DeletionReason, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted[reason] += n
}

func (m *countingMetrics) TagsSynchronized(_ valueobjects.ResourceType, added, removed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.added += added
	m.removed += removed
}

// steppingClock advances one second per call so creation order is stable
func steppingClock(from time.Time) utils.Clock {
	var mu sync.Mutex
	now := from
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

type fixture struct {
	backend    *memory.Backend
	metrics    *countingMetrics
	publisher  *MockEventPublisher
	dimensions *DimensionManager
	tags       *TagSynchronizer
	service    *ResourceGraphService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := zap.NewNop()
	backend := memory.NewBackend(logger)
	metrics := newCountingMetrics()
	publisher := new(MockEventPublisher)
	clock := steppingClock(start)
	cfg := config.DefaultDomainConfig()

	dimensions := NewDimensionManager(backend, cfg, metrics, clock, logger)
	tags := NewTagSynchronizer(backend, cfg, metrics, clock, logger)

	return &fixture{
		backend:    backend,
		metrics:    metrics,
		publisher:  publisher,
		dimensions: dimensions,
		tags:       tags,
		service:    NewResourceGraphService(backend, dimensions, tags, publisher, clock, logger),
	}
}

func (f *fixture) crux(t *testing.T, author common.Actor) *entities.Crux {
	t.Helper()
	c, err := entities.NewCrux(author.AuthorID, author.HomeID, start)
	require.NoError(t, err)
	require.NoError(t, f.backend.Cruxes().Create(context.Background(), c))
	return c
}

func (f *fixture) dimension(t *testing.T, source, target *entities.Crux, author common.Actor) *entities.Dimension {
	t.Helper()
	d, err := f.dimensions.Create(context.Background(), entities.DimensionParams{
		SourceID: source.ID(),
		TargetID: target.ID(),
		Type:     valueobjects.DimensionGate,
		AuthorID: author.AuthorID,
		HomeID:   author.HomeID,
	})
	require.NoError(t, err)
	return d
}

func labelsOf(tags []*entities.Tag) []string {
	labels := make([]string, 0, len(tags))
	for _, tag := range tags {
		labels = append(labels, tag.Label())
	}
	return labels
}
