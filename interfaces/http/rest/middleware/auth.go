package middleware

import (
	"net/http"

	"crux-backend/pkg/auth"
	"crux-backend/pkg/common"
	pkgerrors "crux-backend/pkg/errors"

	"go.uber.org/zap"
)

// Authenticate resolves the acting author for every request and applies the
// per-author rate limit. A nil limiter disables limiting.
func Authenticate(
	authn auth.Authenticator,
	limiter *auth.AuthorRateLimiter,
	errs *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := authn.Authenticate(r)
			if err != nil {
				errs.Handle(w, r, err)
				return
			}

			if limiter != nil {
				allowed, err := limiter.Allow(r.Context(), actor.AuthorID)
				if err != nil {
					// the distributed limiter fails open and reports why
					logger.Warn("Rate limiter error", zap.Error(err))
				}
				if !allowed {
					errs.Handle(w, r, pkgerrors.NewRateLimitError(limiter.RequestsPerMinute(), "minute"))
					return
				}
			}

			setLoggedAuthor(r.Context(), actor.AuthorID)
			logger.Debug("Request authenticated",
				zap.String("authorID", actor.AuthorID),
				zap.String("path", r.URL.Path),
				zap.String("method", r.Method),
			)

			next.ServeHTTP(w, r.WithContext(common.WithActor(r.Context(), actor)))
		})
	}
}

// RequireRole creates middleware that requires one of the given roles
func RequireRole(errs *pkgerrors.ErrorHandler, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := common.GetActor(r.Context()); !ok {
				errs.Handle(w, r, pkgerrors.NewUnauthorizedError("Unauthorized"))
				return
			}

			for _, role := range roles {
				if common.HasRole(r.Context(), role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			errs.Handle(w, r, pkgerrors.NewForbiddenError("Insufficient permissions"))
		})
	}
}
