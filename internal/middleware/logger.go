// Package middleware provides reusable HTTP middleware for the API server.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// wrap returns a writer that records status and size. A writer already
// wrapped further up the chain is reused so the response is wrapped once.
func wrap(w http.ResponseWriter, r *http.Request) chiMiddleware.WrapResponseWriter {
	if ww, ok := w.(chiMiddleware.WrapResponseWriter); ok {
		return ww
	}
	return chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
}

// status is the code sent to the client; a handler that wrote nothing got 200.
func status(ww chiMiddleware.WrapResponseWriter) int {
	if code := ww.Status(); code != 0 {
		return code
	}
	return http.StatusOK
}

// Logger logs method, path, status, duration and size for every request.
// 5xx responses log at error, 4xx at warn.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := wrap(w, r)
			next.ServeHTTP(ww, r)

			code := status(ww)
			level := slog.LevelInfo
			switch {
			case code >= 500:
				level = slog.LevelError
			case code >= 400:
				level = slog.LevelWarn
			}

			logger.LogAttrs(r.Context(), level, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", code),
				slog.Duration("duration", time.Since(start)),
				slog.Int("bytes", ww.BytesWritten()),
				slog.String("request_id", chiMiddleware.GetReqID(r.Context())),
			)
		})
	}
}
