package api

import (
	"context"
	"errors"
	"github.com/ValentinKolb/dTodo/lib/todo"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/rs/cors"
	"net/http"
	"strings"
	"time"
)

var Logger = logger.GetLogger("api")

// maxBodyBytes limits the size of request bodies
const maxBodyBytes = 1 << 20

// Server serves the todo HTTP API
type Server struct {
	config  Config
	todos   *todo.Service
	handler http.Handler
}

// NewServer creates the API server and registers all routes.
func NewServer(config Config, todos *todo.Service) *Server {
	s := &Server{
		config: config,
		todos:  todos,
	}
	s.handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	handle := func(pattern, route string, h http.HandlerFunc) {
		if s.config.LogLevel == "debug" {
			h = loggerMiddleware(h)
		}
		mux.Handle(pattern, instrument(route, h))
	}

	handle("GET /{$}", "random", s.handleRandom)
	handle("GET /todos", "list", s.handleList)
	handle("POST /todos", "create", s.handleCreate)
	handle("POST /todos/seed", "seed", s.handleSeed)
	handle("GET /todos/{id}", "get", s.handleGet)
	handle("PUT /todos/{id}", "update", s.handleUpdate)
	handle("DELETE /todos/{id}", "delete", s.handleDelete)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet, http.MethodHead, http.MethodPut,
			http.MethodPost, http.MethodDelete, http.MethodPatch,
		},
		AllowedHeaders: []string{"*"},
	}).Handler(mux)

	// CORS only applies to the todo collection
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/todos" || strings.HasPrefix(r.URL.Path, "/todos/") {
			corsHandler.ServeHTTP(w, r)
			return
		}
		mux.ServeHTTP(w, r)
	})
}

// Handler returns the http.Handler serving all routes
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Serve listens on the configured endpoint until ctx is cancelled.
// On cancellation in-flight requests get up to five seconds to finish.
func (s *Server) Serve(ctx context.Context) error {
	timeout := time.Duration(s.config.TimeoutSecond) * time.Second
	server := &http.Server{
		Addr:              s.config.Endpoint,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			Logger.Errorf("http server shutdown error: %v", err)
		}
	}()

	Logger.Infof("Starting HTTP server on %s", s.config.Endpoint)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	Logger.Infof("HTTP server stopped")
	return nil
}
