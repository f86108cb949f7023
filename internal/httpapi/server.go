package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"tasklist/internal/export"
	"tasklist/internal/model"
	"tasklist/internal/realtime"
)

type TaskService interface {
	List(ctx context.Context) ([]model.Task, error)
	Add(ctx context.Context, text string) (model.Task, error)
	Update(ctx context.Context, id model.ID, text string, done bool) error
	Delete(ctx context.Context, id model.ID) error
	ClearAll(ctx context.Context) error
}

type Options struct {
	Logger *slog.Logger
	// Hub backs the websocket change stream; without it the route is absent.
	Hub *realtime.Hub
	// Pinger backs /readyz; without it the server is always ready.
	Pinger         Pinger
	RequestTimeout time.Duration
}

type Server struct {
	svc      TaskService
	hub      *realtime.Hub
	exporter *export.Exporter
	logger   *slog.Logger
	upgrader websocket.Upgrader
	handler  http.Handler
}

func NewServer(svc TaskService, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = 3 * time.Second
	}

	srv := &Server{
		svc:      svc,
		hub:      opts.Hub,
		exporter: export.NewExporter(svc),
		logger:   opts.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Methods(http.MethodGet).Path("/healthz").HandlerFunc(srv.handleHealth)
	r.Methods(http.MethodGet).Path("/readyz").Handler(ReadyzHandler(opts.Pinger))

	r.Methods(http.MethodGet).Path("/api/tasks").HandlerFunc(srv.handleListTasks)
	r.Methods(http.MethodPost).Path("/api/tasks").HandlerFunc(srv.handleCreateTask)
	r.Methods(http.MethodPut).Path("/api/tasks").HandlerFunc(srv.handleUpdateTask)
	r.Methods(http.MethodDelete).Path("/api/tasks").HandlerFunc(srv.handleDeleteTask)

	r.Methods(http.MethodPost).Path("/api/tasks/clear").HandlerFunc(srv.handleClearTasks)
	r.Methods(http.MethodGet).Path("/api/tasks/export").HandlerFunc(srv.handleExport)
	if srv.hub != nil {
		r.Methods(http.MethodGet).Path("/api/tasks/events").HandlerFunc(srv.handleEvents)
	}
	r.Methods(http.MethodDelete).Path("/api/tasks/{id}").HandlerFunc(srv.handleDeleteTaskByID)

	srv.handler = WithRequestID(Logging(opts.Logger)(Timeout(opts.RequestTimeout)(r)))
	return srv
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
