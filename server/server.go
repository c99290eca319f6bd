package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/kasuboski/rollwatch/pkg/logger"
	"github.com/kasuboski/rollwatch/pkg/manager"
	"github.com/kasuboski/rollwatch/pkg/sonarr"
	"github.com/kasuboski/rollwatch/pkg/storage"
	"github.com/kasuboski/rollwatch/pkg/webhook"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type GenericResponse struct {
	Error    *string `json:"error,omitempty"`
	Response any     `json:"response"`
}

// WebhookResponse tells the sender what became of a delivery
type WebhookResponse struct {
	Outcome webhook.Outcome `json:"outcome"`
}

// DeleteAllResponse reports how many rows were removed for a show
type DeleteAllResponse struct {
	Deleted int64 `json:"deleted"`
}

// Server houses the dependencies for the http api such as loggers and the manager
type Server struct {
	baseLogger *zap.SugaredLogger
	manager    manager.Manager
}

// New creates a new server
func New(logger *zap.SugaredLogger, manager manager.Manager) Server {
	return Server{
		baseLogger: logger,
		manager:    manager,
	}
}

func writeErrorResponse(w http.ResponseWriter, status int, err error) error {
	msg := err.Error()
	return writeResponse(w, status, GenericResponse{
		Error: &msg,
	})
}

func writeResponse(w http.ResponseWriter, status int, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	w.Header().Set("content-type", "application/json")
	if status != http.StatusOK {
		w.WriteHeader(status)
	}

	w.Write(b)
	return nil
}

// Router builds the routes with logging and CORS applied
func (s Server) Router() http.Handler {
	rtr := mux.NewRouter()
	rtr.Use(s.LogMiddleware())
	rtr.HandleFunc("/healthz", s.Healthz()).Methods(http.MethodGet)
	rtr.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := rtr.PathPrefix("/api").Subrouter()

	v1 := api.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/webhooks/sonarr", s.SonarrWebhook()).Methods(http.MethodPost)
	v1.HandleFunc("/webhooks/radarr", s.RadarrWebhook()).Methods(http.MethodPost)
	v1.HandleFunc("/webhooks/queue", s.WebhookQueue()).Methods(http.MethodGet)

	v1.HandleFunc("/sessions/monitor", s.MonitorSessions()).Methods(http.MethodPost)

	v1.HandleFunc("/rolling", s.ListRollingShows()).Methods(http.MethodGet)
	v1.HandleFunc("/rolling", s.AddRollingShow()).Methods(http.MethodPost)
	v1.HandleFunc("/rolling/{id}", s.DeleteRollingShow()).Methods(http.MethodDelete)
	v1.HandleFunc("/rolling/{id}/reset", s.ResetRollingShow()).Methods(http.MethodPost)
	v1.HandleFunc("/rolling/{id}/all", s.DeleteAllRollingShowEntries()).Methods(http.MethodDelete)

	// known paths hit with the wrong method land here instead of a 404
	rtr.MethodNotAllowedHandler = s.MethodNotAllowed()
	for _, path := range []string{
		"/webhooks/sonarr",
		"/webhooks/radarr",
		"/webhooks/queue",
		"/sessions/monitor",
		"/rolling",
		"/rolling/{id}",
		"/rolling/{id}/reset",
		"/rolling/{id}/all",
	} {
		v1.Handle(path, rtr.MethodNotAllowedHandler)
	}

	return handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(rtr)
}

// Serve starts the http server and blocks until ctx is cancelled
func (s Server) Serve(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		s.baseLogger.Info("serving...", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// Healthz is an endpoint for liveness and readiness checks
func (s Server) Healthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := GenericResponse{
			Response: "ok",
		}
		writeResponse(w, http.StatusOK, response)
	}
}

// MethodNotAllowed answers requests whose path exists under a different method
func (s Server) MethodNotAllowed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeErrorResponse(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
	}
}

// SonarrWebhook accepts Sonarr download notifications. Deliveries that are skipped still get a 200
// so Sonarr does not retry them.
func (s Server) SonarrWebhook() http.HandlerFunc {
	return s.webhook(s.manager.HandleSonarrWebhook)
}

// RadarrWebhook accepts Radarr download notifications
func (s Server) RadarrWebhook() http.HandlerFunc {
	return s.webhook(s.manager.HandleRadarrWebhook)
}

func (s Server) webhook(handle func(context.Context, []byte) (webhook.Outcome, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromCtx(r.Context())

		b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			log.Debug("invalid request body", zap.Error(err))
			writeErrorResponse(w, http.StatusBadRequest, errors.New("invalid request body"))
			return
		}

		outcome, err := handle(r.Context(), b)
		if errors.Is(err, webhook.ErrInvalidPayload) {
			log.Debug("invalid webhook payload", zap.Error(err))
			writeErrorResponse(w, http.StatusBadRequest, err)
			return
		}
		if err != nil {
			log.Error("failed to process webhook", zap.Error(err))
			writeErrorResponse(w, http.StatusInternalServerError, err)
			return
		}

		log.Debugw("processed webhook", "outcome", outcome)
		writeResponse(w, http.StatusOK, GenericResponse{Response: WebhookResponse{Outcome: outcome}})
	}
}

// WebhookQueue lists the seasons buffered from webhooks
func (s Server) WebhookQueue() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, http.StatusOK, GenericResponse{Response: s.manager.WebhookQueue()})
	}
}

// MonitorSessions runs one session monitor pass and returns its result
func (s Server) MonitorSessions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result := s.manager.MonitorSessions(r.Context())
		writeResponse(w, http.StatusOK, GenericResponse{Response: result})
	}
}

func (s Server) ListRollingShows() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromCtx(r.Context())

		params, err := pageParams(r)
		if err != nil {
			writeErrorResponse(w, http.StatusBadRequest, err)
			return
		}

		page, err := s.manager.ListRollingShows(r.Context(), params)
		if err != nil {
			log.Error("failed to list rolling shows", zap.Error(err))
			writeErrorResponse(w, http.StatusInternalServerError, err)
			return
		}

		writeResponse(w, http.StatusOK, GenericResponse{Response: page})
	}
}

func (s Server) AddRollingShow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromCtx(r.Context())

		b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			log.Debug("invalid request body", zap.Error(err))
			writeErrorResponse(w, http.StatusBadRequest, errors.New("invalid request body"))
			return
		}

		var request manager.AddRollingShowRequest
		err = json.Unmarshal(b, &request)
		if err != nil {
			log.Debug("invalid request body", zap.ByteString("body", b))
			writeErrorResponse(w, http.StatusBadRequest, errors.New("invalid request body"))
			return
		}

		show, err := s.manager.AddRollingShow(r.Context(), request)
		if err != nil {
			writeErrorResponse(w, statusFor(err), err)
			return
		}

		writeResponse(w, http.StatusCreated, GenericResponse{Response: show})
	}
}

func (s Server) DeleteRollingShow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeErrorResponse(w, http.StatusBadRequest, err)
			return
		}

		if err := s.manager.DeleteRollingShow(r.Context(), id); err != nil {
			writeErrorResponse(w, statusFor(err), err)
			return
		}

		writeResponse(w, http.StatusOK, GenericResponse{Response: "deleted"})
	}
}

func (s Server) DeleteAllRollingShowEntries() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeErrorResponse(w, http.StatusBadRequest, err)
			return
		}

		deleted, err := s.manager.DeleteAllRollingShowEntries(r.Context(), id)
		if err != nil {
			writeErrorResponse(w, statusFor(err), err)
			return
		}

		writeResponse(w, http.StatusOK, GenericResponse{Response: DeleteAllResponse{Deleted: deleted}})
	}
}

func (s Server) ResetRollingShow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromCtx(r.Context())

		id, err := pathID(r)
		if err != nil {
			writeErrorResponse(w, http.StatusBadRequest, err)
			return
		}

		if err := s.manager.ResetRollingShow(r.Context(), id); err != nil {
			log.Warn("failed to reset rolling show", zap.Int64("id", id), zap.Error(err))
			writeErrorResponse(w, statusFor(err), err)
			return
		}

		writeResponse(w, http.StatusOK, GenericResponse{Response: "reset"})
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, manager.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, manager.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, sonarr.ErrInstanceNotFound),
		errors.Is(err, sonarr.ErrSeriesNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
