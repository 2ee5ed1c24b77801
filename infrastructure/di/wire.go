//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"crux-backend/infrastructure/config"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogLevel,
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideBackend,
	ProvideEventPublisher,
	ProvideCollector,
	ProvideMetricsRecorder,
	ProvideDomainConfig,
	ProvideClock,
	ProvideDimensionManager,
	ProvideTagSynchronizer,
	ProvideResourceGraphService,
	ProvideAuthenticator,
	ProvideRateLimiter,
	ProvideTracerProvider,
	ProvideConfigWatcher,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container. The cleanup closes
// what the providers opened.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil // Wire will replace this
}
