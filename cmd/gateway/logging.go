package main

import (
	"net/http"
	"time"

	"github.com/mind-engage/growthreport/internal/logger"

	"github.com/go-chi/chi/v5/middleware"
)

// requestLogger logs one line per request and puts a request-scoped logger
// on the context for handlers.
func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLog := log.With("requestId", middleware.GetReqID(r.Context()))
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(logger.NewContext(r.Context(), reqLog)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			kv := []interface{}{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			}
			if status >= http.StatusInternalServerError {
				reqLog.Warn("request", kv...)
				return
			}
			reqLog.Info("request", kv...)
		})
	}
}
