// Package httphandler is the HTTP driving adapter serving the repository API.
package httphandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ericfisherdev/ghrepo/internal/application"
	"github.com/ericfisherdev/ghrepo/internal/domain/model"
	"github.com/ericfisherdev/ghrepo/internal/domain/port/driven"
)

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	repos   *application.RepositoryService
	pollSvc *application.PollService
	logger  *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. pollSvc may be
// nil, in which case refreshes run inline and health reports no schedules.
func NewHandler(
	repos *application.RepositoryService,
	pollSvc *application.PollService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		repos:   repos,
		pollSvc: pollSvc,
		logger:  logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/snapshots", h.ListSnapshots)
	mux.HandleFunc("GET /api/v1/snapshots/{owner}/{repo}", h.GetSnapshot)
	mux.HandleFunc("DELETE /api/v1/snapshots/{owner}/{repo}", h.DeleteSnapshot)
	mux.HandleFunc("GET /api/v1/repos/{owner}/{repo}", h.GetRepository)
	mux.HandleFunc("GET /api/v1/repos/{owner}/{repo}/overview", h.GetOverview)
	mux.HandleFunc("GET /api/v1/repos/{owner}/{repo}/{resource}", h.GetResource)
	mux.HandleFunc("GET /api/v1/repos/{owner}/{repo}/issues/{number}/comments", h.GetIssueComments)
	mux.HandleFunc("POST /api/v1/repos/{owner}/{repo}/refresh", h.Refresh)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	resp := HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	}
	if h.pollSvc != nil {
		resp.Schedules = h.pollSvc.Schedules()
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListSnapshots returns all stored repository snapshots.
func (h *Handler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	snaps, err := h.repos.Snapshots(r.Context())
	if err != nil {
		h.logger.Error("failed to list snapshots", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]SnapshotResponse, 0, len(snaps))
	for _, snap := range snaps {
		resp = append(resp, toSnapshotResponse(snap))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetSnapshot returns the stored snapshot of one repository.
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	ref, ok := repoRefFromPath(w, r)
	if !ok {
		return
	}

	snap, err := h.repos.Snapshot(r.Context(), ref.FullName())
	if err != nil {
		h.logger.Error("failed to get snapshot", "repo", ref.FullName(), "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if snap == nil {
		writeError(w, http.StatusNotFound, "snapshot not found")
		return
	}

	writeJSON(w, http.StatusOK, toSnapshotResponse(*snap))
}

// DeleteSnapshot removes the stored snapshot of one repository.
func (h *Handler) DeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	ref, ok := repoRefFromPath(w, r)
	if !ok {
		return
	}

	if err := h.repos.DeleteSnapshot(r.Context(), ref.FullName()); err != nil {
		if errors.Is(err, driven.ErrSnapshotNotFound) {
			writeError(w, http.StatusNotFound, "snapshot not found")
			return
		}
		h.logger.Error("failed to delete snapshot", "repo", ref.FullName(), "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetRepository fetches the live repository from GitHub and returns it in
// GitHub's wire shape. A fields query (comma-separated wire keys) trims the
// response to those keys.
func (h *Handler) GetRepository(w http.ResponseWriter, r *http.Request) {
	ref, ok := repoRefFromPath(w, r)
	if !ok {
		return
	}

	var fields []string
	if q := r.URL.Query().Get("fields"); q != "" {
		fields = strings.Split(q, ",")
		if unknown := unknownRepositoryFields(fields); len(unknown) > 0 {
			writeError(w, http.StatusBadRequest, "unknown repository fields: "+strings.Join(unknown, ", "))
			return
		}
	}

	repo, err := h.repos.Repository(r.Context(), ref)
	if err != nil {
		h.writeUpstreamError(w, ref, err)
		return
	}

	if fields == nil {
		writeJSON(w, http.StatusOK, repo)
		return
	}

	trimmed, err := selectFields(repo, fields)
	if err != nil {
		h.logger.Error("failed to trim repository", "repo", ref.String(), "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, trimmed)
}

// GetOverview fetches the repository together with its languages, branches,
// labels and milestones.
func (h *Handler) GetOverview(w http.ResponseWriter, r *http.Request) {
	ref, ok := repoRefFromPath(w, r)
	if !ok {
		return
	}

	ov, err := h.repos.Overview(r.Context(), ref)
	if err != nil {
		h.writeUpstreamError(w, ref, err)
		return
	}

	if ov.Languages == nil {
		ov.Languages = model.Languages{}
	}
	ov.Branches = emptyIfNil(ov.Branches)
	ov.Labels = emptyIfNil(ov.Labels)
	ov.Milestones = emptyIfNil(ov.Milestones)

	writeJSON(w, http.StatusOK, ov)
}

// GetResource fetches one sub-resource listing of the repository. For
// collaborators, a permission query keeps only those granted at least that
// permission.
func (h *Handler) GetResource(w http.ResponseWriter, r *http.Request) {
	ref, ok := repoRefFromPath(w, r)
	if !ok {
		return
	}

	resource := r.PathValue("resource")

	var (
		v   any
		err error
	)
	if perm := r.URL.Query().Get("permission"); perm != "" && resource == "collaborators" {
		want, perr := model.ParsePermission(perm)
		if perr != nil {
			writeError(w, http.StatusBadRequest, perr.Error())
			return
		}
		v, err = h.repos.CollaboratorsAtLeast(r.Context(), ref, want)
	} else {
		v, err = h.repos.Resource(r.Context(), ref, resource)
	}
	if err != nil {
		if errors.Is(err, application.ErrUnknownResource) {
			writeError(w, http.StatusNotFound, "unknown resource: expected one of "+strings.Join(application.Resources, ", "))
			return
		}
		h.writeUpstreamError(w, ref, err)
		return
	}

	writeJSON(w, http.StatusOK, toResourceResponse(v))
}

// GetIssueComments fetches the comments of a single issue.
func (h *Handler) GetIssueComments(w http.ResponseWriter, r *http.Request) {
	ref, ok := repoRefFromPath(w, r)
	if !ok {
		return
	}

	number, err := strconv.Atoi(r.PathValue("number"))
	if err != nil || number <= 0 {
		writeError(w, http.StatusBadRequest, "invalid issue number")
		return
	}

	comments, err := h.repos.CommentsOn(r.Context(), ref, number)
	if err != nil {
		h.writeUpstreamError(w, ref, err)
		return
	}

	writeJSON(w, http.StatusOK, toCommentResponses(comments))
}

// Refresh refetches the repository and returns the snapshot it stored. With a
// poll service the refresh goes through its loop so it is serialized with
// scheduled polls. The snapshot carries GitHub's canonical name, which may
// differ from the path in case or after a rename.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	ref, ok := repoRefFromPath(w, r)
	if !ok {
		return
	}

	var (
		snap *model.Snapshot
		err  error
	)
	if h.pollSvc != nil {
		snap, err = h.pollSvc.RefreshRepo(r.Context(), ref)
	} else {
		snap, err = h.repos.Refresh(r.Context(), ref)
	}
	if err != nil {
		h.writeUpstreamError(w, ref, err)
		return
	}

	writeJSON(w, http.StatusOK, toSnapshotResponse(*snap))
}

// writeUpstreamError maps a GitHub access failure to a response. Client
// errors GitHub reported (404, 403, ...) pass through with their status; a
// payload that failed to decode and every other upstream failure is a 502.
func (h *Handler) writeUpstreamError(w http.ResponseWriter, ref model.RepoRef, err error) {
	var te *driven.TransportError
	var de *model.DecodeError

	switch {
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful to write.
		h.logger.Debug("request canceled", "repo", ref.String())
		return
	case errors.As(err, &te) && te.StatusCode >= 400 && te.StatusCode < 500:
		writeError(w, te.StatusCode, http.StatusText(te.StatusCode))
	case errors.As(err, &de):
		h.logger.Warn("github payload rejected", "repo", ref.String(), "field", de.Path, "error", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{
			Error: "invalid response from github",
			Field: de.Path,
		})
	default:
		h.logger.Error("github request failed", "repo", ref.String(), "error", err)
		writeError(w, http.StatusBadGateway, "github request failed")
	}
}

// repoRefFromPath validates the {owner}/{repo} path values. It writes a 400
// and returns false when they are not a valid repository name.
func repoRefFromPath(w http.ResponseWriter, r *http.Request) (model.RepoRef, bool) {
	fullName := r.PathValue("owner") + "/" + r.PathValue("repo")
	if !isValidRepoName(fullName) {
		writeError(w, http.StatusBadRequest, "invalid repository name: expected owner/repo format")
		return model.RepoRef{}, false
	}

	ref, err := model.ParseRepoRef(fullName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return model.RepoRef{}, false
	}

	return ref, true
}

// isValidRepoName validates that name is in owner/repo format where each part
// contains only alphanumeric characters, hyphens, dots, or underscores.
func isValidRepoName(name string) bool {
	parts := strings.SplitN(name, "/", 3)
	if len(parts) != 2 {
		return false
	}

	for _, part := range parts {
		if part == "" {
			return false
		}
		for _, ch := range part {
			if !isValidRepoChar(ch) {
				return false
			}
		}
	}

	return true
}

// isValidRepoChar returns true if the rune is allowed in a repository owner or name.
func isValidRepoChar(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9') ||
		ch == '-' || ch == '.' || ch == '_'
}
