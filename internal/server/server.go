package server

import (
	"context"
	"net/http"
	"time"

	"my-blog/internal/store"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Server struct {
	dialer store.Dialer
	logger *zap.Logger
	router *mux.Router
	server *http.Server
	static http.FileSystem
}

// NewServer wires the article API and the frontend bundle in staticDir.
func NewServer(dialer store.Dialer, staticDir string, logger *zap.Logger) *Server {
	s := &Server{
		dialer: dialer,
		logger: logger,
		router: mux.NewRouter(),
		static: http.Dir(staticDir),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(s.logRequests)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")

	// API Routes
	s.router.HandleFunc("/api/articles/{name}", s.handleGetArticle).Methods("GET")
	s.router.HandleFunc("/api/articles/{name}/add-comment", s.handleAddComment).Methods("POST")
	s.router.HandleFunc("/api/articles/{name}/upvote", s.handleUpvote).Methods("POST")

	// Everything else is the frontend bundle
	s.router.PathPrefix("/").HandlerFunc(s.handleStatic).Methods("GET", "HEAD")
}

// ServeHTTP lets the server be mounted or exercised with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start listens on addr (host:port) and blocks until the server stops.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	s.logger.Info("Web server listening", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop drains in-flight requests until ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}
