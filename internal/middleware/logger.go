package myMiddleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/xid"
	"go.uber.org/zap"

	"go-social/internal/db/zapadapter"
)

// RequestLogger tags every request with an xid, makes the id available to
// the pgx tracer through the context and logs the request once it is done.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := xid.New().String()
			ctx := zapadapter.NewContextWithID(r.Context(), id)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.Info("http request",
				zap.String("id", id),
				zap.String("method", r.Method),
				zap.String("uri", r.URL.RequestURI()),
				zap.String("ip", r.RemoteAddr),
				zap.Int("status", status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
