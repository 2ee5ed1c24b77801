package observability

import (
	"crux-backend/application/ports"
	"crux-backend/domain/core/valueobjects"
	"crux-backend/domain/events"
)

// NopRecorder discards every measurement
type NopRecorder struct{}

func (NopRecorder) DimensionsCreated(int)                                {}
func (NopRecorder) DimensionsDeleted(events.DeletionReason, int)         {}
func (NopRecorder) TagsSynchronized(valueobjects.ResourceType, int, int) {}

// MultiRecorder fans measurements out to several recorders
type MultiRecorder []ports.MetricsRecorder

func (m MultiRecorder) DimensionsCreated(n int) {
	for _, r := range m {
		r.DimensionsCreated(n)
	}
}

func (m MultiRecorder) DimensionsDeleted(reason events.DeletionReason, n int) {
	for _, r := range m {
		r.DimensionsDeleted(reason, n)
	}
}

func (m MultiRecorder) TagsSynchronized(resourceType valueobjects.ResourceType, added, removed int) {
	for _, r := range m {
		r.TagsSynchronized(resourceType, added, removed)
	}
}

var (
	_ ports.MetricsRecorder = NopRecorder{}
	_ ports.MetricsRecorder = MultiRecorder{}
	_ ports.MetricsRecorder = (*Collector)(nil)
	_ ports.MetricsRecorder = (*CloudWatchRecorder)(nil)
)
