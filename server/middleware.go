package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/kasuboski/rollwatch/pkg/logger"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-Id"

// LogMiddleware puts a request scoped logger in the context and echoes the request id back.
// An incoming X-Request-Id is reused so webhook retries can be correlated.
func (s Server) LogMiddleware() mux.MiddlewareFunc {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if id == "" {
				id = uuid.New().String()
			}
			w.Header().Set(requestIDHeader, id)

			log := s.baseLogger.With(zap.String("request_path", r.URL.Path)).With(zap.String("id", id))
			h.ServeHTTP(w, r.WithContext(logger.WithCtx(r.Context(), log)))
		})
	}
}
