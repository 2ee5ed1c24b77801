package messaging

import (
	"context"
	"testing"
	"time"

	"crux-backend/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogPublisher(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	publisher := NewLogPublisher(zap.New(core))
	at := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	err := publisher.PublishBatch(context.Background(), []events.DomainEvent{
		events.NewDimensionCreated("dim-1", "k1", "src", "dst", "gate", "author-alice", "home-1", at),
		events.NewCruxDeleted("crux-1", "k2", "author-alice", 1, at),
	})

	require.NoError(t, err)
	entries := logs.FilterMessage("Domain event").All()
	require.Len(t, entries, 2)
	assert.Equal(t, events.TypeDimensionCreated, entries[0].ContextMap()["eventType"])
	assert.Equal(t, "crux-1", entries[1].ContextMap()["aggregateID"])
}
