package di

import (
	"context"
	"fmt"
	"time"

	"crux-backend/application/ports"
	"crux-backend/application/services"
	domainconfig "crux-backend/domain/config"
	"crux-backend/infrastructure/config"
	"crux-backend/infrastructure/messaging"
	"crux-backend/infrastructure/messaging/eventbridge"
	"crux-backend/infrastructure/persistence/dynamodb"
	"crux-backend/infrastructure/persistence/memory"
	"crux-backend/infrastructure/persistence/sqlstore"
	"crux-backend/pkg/auth"
	"crux-backend/pkg/observability"
	"crux-backend/pkg/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DevelopmentSecret signs and verifies tokens when no JWT_SECRET is set
// outside production
const DevelopmentSecret = "development-secret-change-in-production"

// ProvideLogLevel creates the adjustable level shared by the logger and
// the config watcher
func ProvideLogLevel(cfg *config.Config) zap.AtomicLevel {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if parsed, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		level.SetLevel(parsed)
	}
	return level
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config, level zap.AtomicLevel) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = level

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("environment", cfg.Environment)), nil
}

// ProvideAWSConfig creates AWS configuration. SDK calls get X-Ray
// subsegments when running inside Lambda.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	if cfg.IsLambda {
		observability.InstrumentAWSConfig(&awsCfg)
	}
	return awsCfg, nil
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideBackend opens the configured storage backend. The cleanup closes
// SQL connections.
func ProvideBackend(
	ctx context.Context,
	cfg *config.Config,
	client *awsdynamodb.Client,
	logger *zap.Logger,
) (ports.Backend, func(), error) {
	switch cfg.Storage {
	case config.StorageMemory:
		logger.Warn("Using in-memory storage, data is lost on restart")
		return memory.NewBackend(logger), func() {}, nil

	case config.StorageSQLite, config.StoragePostgres:
		dialect, err := sqlstore.ParseDialect(cfg.Storage)
		if err != nil {
			return nil, nil, err
		}
		db, err := sqlstore.Open(ctx, sqlstore.Options{
			Dialect:         dialect,
			DSN:             cfg.DatabaseDSN,
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
		})
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if err := db.Close(); err != nil {
				logger.Error("Failed to close database", zap.Error(err))
			}
		}

		backend := sqlstore.NewBackend(db, dialect, cfg.TransactionalWrites, logger)
		if cfg.AutoMigrate {
			applied, err := backend.Migrate(ctx)
			if err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("failed to migrate schema: %w", err)
			}
			logger.Info("Schema migrated", zap.Int("applied", applied))
		}
		return backend, cleanup, nil

	case config.StorageDynamoDB:
		return dynamodb.NewBackend(client, cfg.DynamoDBTable, logger), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unsupported storage %q", cfg.Storage)
	}
}

// ProvideEventPublisher publishes to EventBridge in Lambda and production
// and logs events everywhere else
func ProvideEventPublisher(cfg *config.Config, client *awseventbridge.Client, logger *zap.Logger) ports.EventPublisher {
	if (cfg.IsLambda || cfg.IsProduction()) && cfg.EventBusName != "" {
		return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
	}
	return messaging.NewLogPublisher(logger)
}

// ProvideCollector creates the Prometheus collector, or nil when metrics
// are disabled
func ProvideCollector(cfg *config.Config) *observability.Collector {
	if !cfg.EnableMetrics {
		return nil
	}
	return observability.NewCollector(cfg.MetricsNamespace)
}

// ProvideMetricsRecorder fans domain counters out to Prometheus and, in
// Lambda, CloudWatch
func ProvideMetricsRecorder(
	cfg *config.Config,
	collector *observability.Collector,
	client *awscloudwatch.Client,
	logger *zap.Logger,
) ports.MetricsRecorder {
	var recorders observability.MultiRecorder
	if collector != nil {
		recorders = append(recorders, collector)
	}
	if cfg.IsLambda && cfg.CloudWatchNamespace != "" {
		recorders = append(recorders, observability.NewCloudWatchRecorder(cfg.CloudWatchNamespace, client, logger))
	}

	switch len(recorders) {
	case 0:
		return observability.NopRecorder{}
	case 1:
		return recorders[0]
	default:
		return recorders
	}
}

// ProvideDomainConfig picks the domain limits for the environment
func ProvideDomainConfig(cfg *config.Config) (*domainconfig.DomainConfig, error) {
	domainCfg := domainconfig.LoadDomainConfig(cfg.Environment)
	if err := domainCfg.Validate(); err != nil {
		return nil, err
	}
	return domainCfg, nil
}

// ProvideClock returns the wall clock
func ProvideClock() utils.Clock {
	return utils.SystemClock
}

// ProvideDimensionManager creates the dimension manager
func ProvideDimensionManager(
	backend ports.Backend,
	domainCfg *domainconfig.DomainConfig,
	metrics ports.MetricsRecorder,
	clock utils.Clock,
	logger *zap.Logger,
) *services.DimensionManager {
	return services.NewDimensionManager(backend, domainCfg, metrics, clock, logger.Named("dimensions"))
}

// ProvideTagSynchronizer creates the tag synchronizer
func ProvideTagSynchronizer(
	backend ports.Backend,
	domainCfg *domainconfig.DomainConfig,
	metrics ports.MetricsRecorder,
	clock utils.Clock,
	logger *zap.Logger,
) *services.TagSynchronizer {
	return services.NewTagSynchronizer(backend, domainCfg, metrics, clock, logger.Named("tags"))
}

// ProvideResourceGraphService creates the application service the
// transports call
func ProvideResourceGraphService(
	backend ports.Backend,
	dimensions *services.DimensionManager,
	tags *services.TagSynchronizer,
	publisher ports.EventPublisher,
	clock utils.Clock,
	logger *zap.Logger,
) *services.ResourceGraphService {
	return services.NewResourceGraphService(backend, dimensions, tags, publisher, clock, logger)
}

// ProvideAuthenticator trusts API Gateway in Lambda and verifies bearer
// tokens everywhere else
func ProvideAuthenticator(cfg *config.Config, logger *zap.Logger) (auth.Authenticator, error) {
	if cfg.IsLambda {
		return auth.GatewayAuthenticator{}, nil
	}

	secret := cfg.JWTSecret
	if secret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		logger.Warn("JWT_SECRET not set, using the development secret")
		secret = DevelopmentSecret
	}

	validator, err := auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: secret,
		Issuer:    cfg.JWTIssuer,
		Audience:  cfg.JWTAudience,
	})
	if err != nil {
		return nil, err
	}
	return auth.NewBearerAuthenticator(validator), nil
}

// ProvideRateLimiter counts requests in DynamoDB when several Lambda
// instances share the table, and in process otherwise
func ProvideRateLimiter(cfg *config.Config, client *awsdynamodb.Client) *auth.AuthorRateLimiter {
	if cfg.IsLambda && cfg.Storage == config.StorageDynamoDB {
		limiter := auth.NewDistributedRateLimiter(client, cfg.DynamoDBTable, cfg.RateLimitPerMinute, time.Minute)
		return auth.NewAuthorRateLimiterWith(limiter, cfg.RateLimitPerMinute)
	}
	return auth.NewAuthorRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
}

// ProvideTracerProvider installs the OTLP exporter when tracing is enabled.
// A nil provider turns the tracing middleware off.
func ProvideTracerProvider(ctx context.Context, cfg *config.Config, logger *zap.Logger) (trace.TracerProvider, func(), error) {
	if !cfg.EnableTracing || cfg.OTLPEndpoint == "" {
		return nil, func() {}, nil
	}

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    cfg.OTLPInsecure,
		SampleRatio: cfg.TraceSampleRatio,
	})
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			logger.Error("Failed to flush traces", zap.Error(err))
		}
	}
	return otel.GetTracerProvider(), cleanup, nil
}

// ProvideConfigWatcher reloads the log level when the YAML file changes.
// Without a config file there is nothing to watch and the result is nil.
func ProvideConfigWatcher(cfg *config.Config, level zap.AtomicLevel, logger *zap.Logger) (*config.ConfigWatcher, func(), error) {
	if cfg.ConfigFile == "" || cfg.IsLambda {
		return nil, func() {}, nil
	}

	watcher, err := config.NewConfigWatcher(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	watcher.OnChange(config.ApplyLogLevel(level, logger))
	return watcher, watcher.Stop, nil
}
