package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"github.com/harryzcy/artifact-store/internal/apierr"
)

// wireTime renders a storage timestamp as an RFC 3339 string in UTC
// at seconds precision, per spec.md §6 ("Times are RFC 3339 strings
// in UTC (seconds precision on the wire; nanoseconds in storage)").
func wireTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func classify(err error) (status int, message string) {
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) {
		return http.StatusInternalServerError, err.Error()
	}
	if apiErr.Kind == apierr.KindNotFound {
		return http.StatusNotFound, apiErr.Error()
	}
	return http.StatusInternalServerError, apiErr.Error()
}

// writeError maps the apierr taxonomy onto HTTP status codes and a
// JSON {code,message} body, used by every endpoint except downloads:
// only a missing commit, repo, or artifact is a 404, everything else
// — including ArtifactExists, whose job is to protect upload
// idempotency rather than to describe a client-addressable state — is
// a 500, matching spec.md §7's error handling design.
func writeError(w http.ResponseWriter, err error) {
	status, message := classify(err)
	writeJSON(w, status, statusResponse{Code: status, Message: message})
}

// writeDownloadError reports a download failure as a plain-text body,
// per spec.md §6 ("Body is a plain-text message for downloads").
func writeDownloadError(w http.ResponseWriter, err error) {
	status, message := classify(err)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, message+"\n")
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, "<h1>Artifact Store</h1>\n")
}

func (s *Server) handleRobots(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "User-agent: *\nDisallow: /\n")
}

func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "pong")
}

func (s *Server) handleListRepos(w http.ResponseWriter, _ *http.Request) {
	repos, err := s.store.ListRepos()
	if err != nil {
		writeError(w, err)
		return
	}
	entries := make([]repoEntry, len(repos))
	for i, r := range repos {
		entries[i] = repoEntry{Server: r.Server, Owner: r.Owner, Repo: r.Repo, TimeAdded: wireTime(r.CreatedAt)}
	}
	writeJSON(w, http.StatusOK, listReposResponse{Repos: entries})
}

func (s *Server) handleListCommits(w http.ResponseWriter, r *http.Request) {
	server, owner, repo := r.PathValue("server"), r.PathValue("owner"), r.PathValue("repo")
	commits, err := s.store.ListRepoCommits(server, owner, repo)
	if err != nil {
		writeError(w, err)
		return
	}
	entries := make([]commitEntry, len(commits))
	for i, c := range commits {
		entries[i] = commitEntry{Commit: c.Commit, TimeAdded: wireTime(c.CreatedAt)}
	}
	writeJSON(w, http.StatusOK, listCommitsResponse{Server: server, Owner: owner, Repo: repo, Commits: entries})
}

func (s *Server) handleListArtifacts(w http.ResponseWriter, r *http.Request) {
	server, owner, repo, commit := r.PathValue("server"), r.PathValue("owner"), r.PathValue("repo"), r.PathValue("commit")
	resolved, err := s.retrieve.ResolveCommit(server, owner, repo, commit)
	if err != nil {
		writeError(w, err)
		return
	}
	artifacts, err := s.store.ListArtifacts(server, owner, repo, resolved)
	if err != nil {
		writeError(w, err)
		return
	}
	entries := make([]artifactEntry, len(artifacts))
	for i, a := range artifacts {
		entries[i] = artifactEntry{Path: a.Path, TimeAdded: wireTime(a.CreatedAt)}
	}
	writeJSON(w, http.StatusOK, listArtifactsResponse{
		Server: server, Owner: owner, Repo: repo, Commit: resolved, Artifacts: entries,
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	server, owner, repo, commit := r.PathValue("server"), r.PathValue("owner"), r.PathValue("repo"), r.PathValue("commit")
	artifactPath := r.PathValue("path")

	if err := s.ingest.Upload(server, owner, repo, commit, artifactPath, r.Body); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Code: http.StatusOK, Message: "OK"})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	server, owner, repo, commit := r.PathValue("server"), r.PathValue("owner"), r.PathValue("repo"), r.PathValue("commit")
	artifactPath := r.PathValue("path")

	f, err := s.retrieve.Open(server, owner, repo, commit, artifactPath)
	if err != nil {
		writeDownloadError(w, err)
		return
	}
	defer f.Close()

	contentType := mime.TypeByExtension(filepath.Ext(artifactPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifactPath))
	_, _ = io.Copy(w, f)
}
