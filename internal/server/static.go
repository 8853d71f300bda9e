package server

import (
	"net/http"
	"path"

	"go.uber.org/zap"
)

const indexFile = "index.html"

// handleStatic serves a file from the bundle when one exists at the
// request path and the bundle entry point otherwise, so client-side
// routes resolve to the app.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	name := path.Clean("/" + r.URL.Path)

	if f, err := s.static.Open(name); err == nil {
		defer f.Close()
		// ServeContent, unlike FileServer, never redirects /index.html to /.
		if info, err := f.Stat(); err == nil && !info.IsDir() {
			http.ServeContent(w, r, info.Name(), info.ModTime(), f)
			return
		}
	}

	s.serveIndex(w, r)
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	f, err := s.static.Open("/" + indexFile)
	if err != nil {
		s.logger.Error("Bundle entry point missing", zap.Error(err))
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		s.logger.Error("Bundle entry point unreadable", zap.Error(err))
		http.Error(w, "Failed to read bundle", http.StatusInternalServerError)
		return
	}
	http.ServeContent(w, r, indexFile, info.ModTime(), f)
}
