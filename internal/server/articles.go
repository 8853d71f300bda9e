package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"my-blog/internal/model"
	"my-blog/internal/store"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type commentRequest struct {
	Username string `json:"username" validate:"notblank"`
	Text     string `json:"text" validate:"notblank"`
}

func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	s.withStore(w, r, func(st store.Session) error {
		article, err := st.FindByName(r.Context(), name)
		if errors.Is(err, store.ErrNotFound) {
			// An unknown article is a successful lookup with a null body.
			s.writeJSON(w, http.StatusOK, nil)
			return nil
		}
		if err != nil {
			return err
		}
		s.writeJSON(w, http.StatusOK, article)
		return nil
	})
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req commentRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		s.invalid(w, r, fmt.Errorf("decode body: %w", err))
		return
	}
	if err := validateRequest(&req); err != nil {
		s.invalid(w, r, err)
		return
	}

	comment := model.Comment{Username: req.Username, Text: req.Text}
	s.withStore(w, r, func(st store.Session) error {
		article, err := st.AppendComment(r.Context(), name, comment)
		if err != nil {
			return err
		}
		s.writeJSON(w, http.StatusOK, article)
		return nil
	})
}

func (s *Server) handleUpvote(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	s.withStore(w, r, func(st store.Session) error {
		article, err := st.Upvote(r.Context(), name)
		if err != nil {
			return err
		}
		s.writeJSON(w, http.StatusOK, article)
		return nil
	})
}

func (s *Server) invalid(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Warn("Invalid request",
		zap.String("path", r.URL.Path),
		zap.Error(err))
	s.writeJSON(w, http.StatusBadRequest, errorResponse{
		Message: "Invalid request",
		Error:   err.Error(),
	})
}
