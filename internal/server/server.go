// Package server is the HTTP front of the site: the HN comments endpoint,
// health and metrics endpoints, and the static site.
package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/brundonsmith/website/internal/cache"
	"github.com/brundonsmith/website/internal/static"
)

// Comments returns the rendered thread for a post slug; nil means the post
// has no HN discussion.
type Comments interface {
	Get(ctx context.Context, slug string) (*cache.Thread, error)
}

// Server routes requests to the comments cache and the static site.
type Server struct {
	r        *mux.Router
	comments Comments
	site     *static.Site
}

// New builds the router. site may be nil, in which case only the API routes
// are served.
func New(comments Comments, site *static.Site) *Server {
	s := &Server{r: mux.NewRouter(), comments: comments, site: site}
	s.endpoints()
	return s
}

// Router returns the HTTP handler.
func (s *Server) Router() *mux.Router {
	return s.r
}

func (s *Server) endpoints() {
	s.r.Use(requestIDMiddleware, loggingMiddleware)

	s.r.HandleFunc("/hn-comments/{slug}", s.hnComments).Methods(http.MethodGet)
	s.r.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)
	s.r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	s.r.PathPrefix("/").HandlerFunc(s.staticFile).Methods(http.MethodGet, http.MethodHead)
}

func (s *Server) hnComments(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	thread, err := s.comments.Get(r.Context(), slug)
	if err != nil {
		log.WithField("slug", slug).Errorf("[hnComments][from:%v] failed to load comments: %v", r.RemoteAddr, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if thread == nil {
		http.NotFound(w, r)
		return
	}

	writeJSON(w, http.StatusOK, thread)
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) staticFile(w http.ResponseWriter, r *http.Request) {
	if s.site == nil {
		http.NotFound(w, r)
		return
	}

	if f, ok := s.site.Lookup(r.URL.Path); ok {
		writeFile(w, r, http.StatusOK, f)
		return
	}

	f, ok := s.site.Get("404.html")
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeFile(w, r, http.StatusNotFound, f)
}

func writeFile(w http.ResponseWriter, r *http.Request, status int, f static.File) {
	w.Header().Set("Content-Type", f.ContentType)
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(f.Contents); err != nil {
		log.Debugf("[staticFile][from:%v] write failed: %v", r.RemoteAddr, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("[server] failed to encode response: %v", err)
	}
}
