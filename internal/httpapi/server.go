// Package httpapi implements the external interface described in
// spec.md §6, grounded on the teacher's cmd/server/main.go
// (DocumentServer over http.ServeMux) with the routes, request/
// response shapes and streaming semantics replaced to match this
// service's artifact upload/download model instead of the teacher's
// document CRUD model.
package httpapi

import (
	"net/http"

	"github.com/harryzcy/artifact-store/internal/ingest"
	"github.com/harryzcy/artifact-store/internal/logging"
	"github.com/harryzcy/artifact-store/internal/metadatastore"
	"github.com/harryzcy/artifact-store/internal/retrieve"
)

// Server wires together the metadata store, ingest and retrieval
// pipelines behind the HTTP surface described in spec.md §6.
type Server struct {
	store    *metadatastore.MetadataStore
	ingest   *ingest.Pipeline
	retrieve *retrieve.Pipeline
	logger   *logging.Logger
}

// New builds a Server over the given metadata store and pipelines.
func New(store *metadatastore.MetadataStore, in *ingest.Pipeline, re *retrieve.Pipeline, logger *logging.Logger) *Server {
	return &Server{store: store, ingest: in, retrieve: re, logger: logger}
}

// Handler builds the routed, logged, timeout-bounded http.Handler for
// the whole service.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /robots.txt", s.handleRobots)
	mux.HandleFunc("GET /ping", s.handlePing)
	mux.HandleFunc("GET /repositories", s.handleListRepos)
	mux.HandleFunc("GET /{server}/{owner}/{repo}", s.handleListCommits)
	mux.HandleFunc("GET /{server}/{owner}/{repo}/{commit}", s.handleListArtifacts)
	mux.HandleFunc("PUT /{server}/{owner}/{repo}/{commit}/{path...}", s.handleUpload)
	mux.HandleFunc("GET /{server}/{owner}/{repo}/{commit}/{path...}", s.handleDownload)

	return withTimeout(withLogging(s.logger, mux))
}
