package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"my-blog/internal/store"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// withStore opens a session for this request, hands it to op and closes
// it afterwards. Any dial or op error is answered here; callers never
// see it.
func (s *Server) withStore(w http.ResponseWriter, r *http.Request, op func(store.Session) error) {
	ctx := r.Context()

	sess, err := s.dialer.Dial(ctx)
	if err != nil {
		s.storeFailure(w, r, err)
		return
	}
	defer func() {
		// The request may already be cancelled; still release the connection.
		if err := sess.Close(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("Failed to close store session", zap.Error(err))
		}
	}()

	if err := op(sess); err != nil {
		s.storeFailure(w, r, err)
	}
}

func (s *Server) storeFailure(w http.ResponseWriter, r *http.Request, err error) {
	logger := s.logger.With(
		zap.String("path", r.URL.Path),
		zap.String("article", mux.Vars(r)["name"]),
		zap.Error(err))

	var connErr *store.ConnectionError
	switch {
	case errors.Is(err, store.ErrNotFound):
		logger.Warn("Article not found")
		s.writeJSON(w, http.StatusNotFound, errorResponse{Message: "Article not found", Error: err.Error()})
	case errors.Is(err, store.ErrConflict):
		logger.Warn("Article update conflict")
		s.writeJSON(w, http.StatusConflict, errorResponse{Message: "Concurrent update, try again", Error: err.Error()})
	case errors.As(err, &connErr):
		logger.Error("Store unavailable", zap.String("driver", connErr.Driver))
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Error connecting to DB", Error: err.Error()})
	default:
		logger.Error("Store operation failed")
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Error connecting to DB", Error: err.Error()})
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to write response", zap.Error(err))
	}
}
