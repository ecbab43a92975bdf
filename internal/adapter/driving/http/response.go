package httphandler

import (
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"github.com/ericfisherdev/ghrepo/internal/application"
	"github.com/ericfisherdev/ghrepo/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
	// Field names the offending payload field for upstream decode failures.
	Field string `json:"field,omitempty"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status    string                     `json:"status"`
	Time      string                     `json:"time"`
	Schedules []application.ScheduleInfo `json:"schedules,omitempty"`
}

// SnapshotResponse is the JSON representation of a stored repository snapshot.
// Repository keeps GitHub's wire shape.
type SnapshotResponse struct {
	FullName      string           `json:"full_name"`
	Repository    model.Repository `json:"repository"`
	Languages     model.Languages  `json:"languages"`
	LanguageBytes int              `json:"language_bytes"`
	Primary       string           `json:"primary_language,omitempty"`
	FetchedAt     string           `json:"fetched_at"`
}

// IssueResponse is an issue in GitHub's wire shape plus its rendered body.
type IssueResponse struct {
	Issue    model.Issue
	BodyHTML string
}

// MarshalJSON flattens the issue and adds body_html next to body.
func (r IssueResponse) MarshalJSON() ([]byte, error) {
	return withBodyHTML(r.Issue, r.BodyHTML)
}

// CommentResponse is an issue comment in GitHub's wire shape plus its rendered body.
type CommentResponse struct {
	Comment  model.IssueComment
	BodyHTML string
}

// MarshalJSON flattens the comment and adds body_html next to body.
func (r CommentResponse) MarshalJSON() ([]byte, error) {
	return withBodyHTML(r.Comment, r.BodyHTML)
}

// withBodyHTML encodes v, which must encode to a JSON object, and adds a
// body_html member.
func withBodyHTML(v json.Marshaler, bodyHTML string) ([]byte, error) {
	data, err := v.MarshalJSON()
	if err != nil {
		return nil, err
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}

	rendered, err := json.Marshal(bodyHTML)
	if err != nil {
		return nil, err
	}
	obj["body_html"] = rendered

	return json.Marshal(obj)
}

// toSnapshotResponse converts a domain Snapshot to its JSON response representation.
func toSnapshotResponse(snap model.Snapshot) SnapshotResponse {
	langs := snap.Languages
	if langs == nil {
		langs = model.Languages{}
	}

	var primary string
	if names := langs.Names(); len(names) > 0 {
		primary = names[0]
	}

	return SnapshotResponse{
		FullName:      snap.FullName(),
		Repository:    snap.Repository,
		Languages:     langs,
		LanguageBytes: langs.Total(),
		Primary:       primary,
		FetchedAt:     snap.FetchedAt.UTC().Format(time.RFC3339),
	}
}

// toIssueResponse converts a domain Issue to its JSON representation.
func toIssueResponse(issue model.Issue) IssueResponse {
	var body string
	if issue.Body != nil {
		body = *issue.Body
	}

	return IssueResponse{
		Issue:    issue,
		BodyHTML: RenderMarkdown(body),
	}
}

// toCommentResponse converts a domain IssueComment to its JSON representation.
func toCommentResponse(c model.IssueComment) CommentResponse {
	return CommentResponse{
		Comment:  c,
		BodyHTML: RenderMarkdown(c.Body),
	}
}

// toCommentResponses converts comments, never returning nil so an empty list
// encodes as [].
func toCommentResponses(comments []model.IssueComment) []CommentResponse {
	resp := make([]CommentResponse, 0, len(comments))
	for _, c := range comments {
		resp = append(resp, toCommentResponse(c))
	}
	return resp
}

// toResourceResponse prepares a sub-resource listing for encoding. Issue and
// comment bodies are rendered; other resources encode as fetched.
func toResourceResponse(v any) any {
	switch items := v.(type) {
	case []model.Issue:
		resp := make([]IssueResponse, 0, len(items))
		for _, issue := range items {
			resp = append(resp, toIssueResponse(issue))
		}
		return resp
	case []model.IssueComment:
		return toCommentResponses(items)
	case model.Languages:
		if items == nil {
			return model.Languages{}
		}
		return items
	case []model.User:
		return emptyIfNil(items)
	case []model.Branch:
		return emptyIfNil(items)
	case []model.Commit:
		return emptyIfNil(items)
	case []model.Label:
		return emptyIfNil(items)
	case []model.Milestone:
		return emptyIfNil(items)
	default:
		return v
	}
}

// unknownRepositoryFields returns the names in fields that are not repository
// wire keys.
func unknownRepositoryFields(fields []string) []string {
	basic, detail := model.RepositoryKeys()

	var unknown []string
	for _, f := range fields {
		if !slices.Contains(basic, f) && !slices.Contains(detail, f) {
			unknown = append(unknown, f)
		}
	}
	return unknown
}

// selectFields encodes repo and keeps only the named keys. Keys the
// repository does not carry, such as Detail keys on a summary, are omitted.
func selectFields(repo *model.Repository, fields []string) (map[string]json.RawMessage, error) {
	data, err := json.Marshal(repo)
	if err != nil {
		return nil, err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}

	kept := make(map[string]json.RawMessage, len(fields))
	for _, f := range fields {
		if v, ok := all[f]; ok {
			kept[f] = v
		}
	}
	return kept, nil
}

func emptyIfNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
