package di

import (
	"crux-backend/application/ports"
	"crux-backend/application/services"
	domainconfig "crux-backend/domain/config"
	"crux-backend/infrastructure/config"
	"crux-backend/interfaces/http/rest"
	"crux-backend/interfaces/http/rest/middleware"
	"crux-backend/pkg/auth"
	"crux-backend/pkg/observability"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const serviceName = "crux-backend"

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	DomainConfig   *domainconfig.DomainConfig
	Logger         *zap.Logger
	LogLevel       zap.AtomicLevel
	Backend        ports.Backend
	Publisher      ports.EventPublisher
	Service        *services.ResourceGraphService
	Collector      *observability.Collector
	Authenticator  auth.Authenticator
	RateLimiter    *auth.AuthorRateLimiter
	TracerProvider trace.TracerProvider
	Watcher        *config.ConfigWatcher
}

// Router builds the HTTP handler for the container's service
func (c *Container) Router() *chi.Mux {
	breaker := middleware.DefaultCircuitBreakerConfig(serviceName)
	if c.Config.BreakerMaxFailures > 0 {
		breaker.MinRequests = uint32(c.Config.BreakerMaxFailures)
	}
	if c.Config.BreakerTimeout > 0 {
		breaker.Timeout = c.Config.BreakerTimeout
	}

	return rest.NewRouter(rest.Options{
		Service:            c.Service,
		DomainConfig:       c.DomainConfig,
		Authenticator:      c.Authenticator,
		RateLimiter:        c.RateLimiter,
		Metrics:            c.Collector,
		TracerProvider:     c.TracerProvider,
		ServiceName:        serviceName,
		EnableCORS:         c.Config.EnableCORS,
		CORSAllowedOrigins: c.Config.CORSAllowedOrigins,
		EnableSwagger:      c.Config.EnableSwagger,
		Breaker:            &breaker,
		MaxBodyBytes:       c.Config.MaxBodyBytes,
		Debug:              c.Config.IsDevelopment(),
		Logger:             c.Logger,
	}).Setup()
}
