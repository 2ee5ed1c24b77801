// Package rest exposes the resource graph over HTTP.
//
//	@title						Crux Backend API
//	@version					1.0
//	@description				Dimensions between cruxes and tags on content resources.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package rest

import (
	"net/http"

	"crux-backend/docs"
	"crux-backend/domain/config"
	"crux-backend/domain/core/valueobjects"
	"crux-backend/interfaces/http/rest/handlers"
	"crux-backend/interfaces/http/rest/middleware"
	"crux-backend/pkg/auth"
	"crux-backend/pkg/common"
	pkgerrors "crux-backend/pkg/errors"
	"crux-backend/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/swaggo/swag"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Options carries everything the router wires together. Nil Metrics,
// TracerProvider and RateLimiter switch the matching middleware off.
type Options struct {
	Service        handlers.GraphService
	DomainConfig   *config.DomainConfig
	Authenticator  auth.Authenticator
	RateLimiter    *auth.AuthorRateLimiter
	Metrics        *observability.Collector
	TracerProvider trace.TracerProvider
	ServiceName    string

	EnableCORS         bool
	CORSAllowedOrigins []string
	EnableSwagger      bool
	Breaker            *middleware.CircuitBreakerConfig
	MaxBodyBytes       int64
	Debug              bool

	Logger *zap.Logger
}

// Router creates and configures the HTTP router
type Router struct {
	opts Options
	errs *pkgerrors.ErrorHandler
}

// NewRouter creates a new router instance
func NewRouter(opts Options) *Router {
	if opts.DomainConfig == nil {
		opts.DomainConfig = config.DefaultDomainConfig()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	if opts.ServiceName == "" {
		opts.ServiceName = "crux-backend"
	}
	return &Router{
		opts: opts,
		errs: pkgerrors.NewErrorHandler(opts.Logger, opts.Debug),
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() *chi.Mux {
	o := rt.opts
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.Logger(o.Logger))
	router.Use(rt.errs.Middleware)
	if o.TracerProvider != nil {
		router.Use(observability.TracingMiddleware(o.TracerProvider, o.ServiceName))
	}
	if o.Metrics != nil {
		router.Use(o.Metrics.Middleware)
	}

	if o.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   o.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID", "Link", "Pagination"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rt.errs.HandleStatus(w, r, http.StatusNotFound, "Route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		rt.errs.HandleStatus(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	health := handlers.NewHealthHandler(o.Service, o.Logger)
	router.Get("/health", health.Health)
	router.Get("/ready", health.Ready)
	if o.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", o.Metrics.Handler())
	}
	if o.EnableSwagger {
		router.Get("/swagger/doc.json", rt.swaggerDoc)
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(o.Authenticator, o.RateLimiter, rt.errs, o.Logger))
		if o.Breaker != nil {
			r.Use(middleware.CircuitBreaker(*o.Breaker, rt.errs, o.Logger))
		}

		dimensions := handlers.NewDimensionHandler(o.Service, o.DomainConfig, rt.errs, o.MaxBodyBytes, o.Logger)
		cruxes := handlers.NewCruxHandler(o.Service, rt.errs, o.Logger)
		tags := handlers.NewTagHandler(o.Service, rt.errs, o.MaxBodyBytes, o.Logger)

		r.Delete("/cruxes/{key}", cruxes.DeleteCrux)
		r.Post("/cruxes/{key}/dimensions", dimensions.CreateDimension)
		r.Get("/cruxes/{key}/dimensions", dimensions.ListDimensions)

		r.Get("/dimensions/{key}", dimensions.GetDimension)
		r.Put("/dimensions/{key}", dimensions.UpdateDimension)
		r.Delete("/dimensions/{key}", dimensions.DeleteDimension)

		r.Get("/tags/{key}", tags.GetTag)
		admin := r.With(middleware.RequireRole(rt.errs, common.RoleAdmin))
		admin.Put("/tags/{key}", tags.UpdateTag)
		admin.Delete("/tags/{key}", tags.DeleteTag)

		for _, resourceType := range valueobjects.ResourceTypes {
			pattern := "/" + resourceType.Collection() + "/{key}/tags"
			r.Get(pattern, tags.ListTags(resourceType))
			r.Put(pattern, tags.SyncTags(resourceType))
		}
	})

	return router
}

func (rt *Router) swaggerDoc(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		rt.errs.Handle(w, r, pkgerrors.NewInternalError("swagger document unavailable").WithCause(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(doc))
}
