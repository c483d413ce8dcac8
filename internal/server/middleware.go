package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/howard-nolan/questionrouter/internal/auth"
	"github.com/howard-nolan/questionrouter/internal/model"
)

// callerContextKey is unexported so only this package can set or read
// the resolved model.Caller from a request context — the idiomatic Go
// pattern for middleware-attached request state (grounded on chi
// middleware usage across the pack, e.g. jroosing-HydraDNS).
type callerContextKey struct{}

// callerFromContext retrieves the model.Caller attached by bearerAuth.
func callerFromContext(ctx context.Context) (model.Caller, bool) {
	c, ok := ctx.Value(callerContextKey{}).(model.Caller)
	return c, ok
}

// bearerAuth validates an `Authorization: Bearer <token>` header against
// tokens and attaches the resolved Caller to the request context.
func bearerAuth(tokens auth.TokenStore, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			caller, err := tokens.Resolve(r.Context(), token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid bearer token")
				return
			}

			ctx := context.WithValue(r.Context(), callerContextKey{}, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// zapLogger adapts the zap logger to chi's middleware.Logger shape,
// logging one line per request at completion with structured zap
// fields instead of chi's default text formatter.
func zapLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
