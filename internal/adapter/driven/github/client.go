// Package github implements the RepoClient port on top of the go-github transport.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/ericfisherdev/ghrepo/internal/domain/model"
	"github.com/ericfisherdev/ghrepo/internal/domain/port/driven"
)

// DefaultBaseURL is the public GitHub REST API root.
const DefaultBaseURL = "https://api.github.com/"

// Compile-time interface satisfaction check.
var _ driven.RepoClient = (*Client)(nil)

// Client implements the driven.RepoClient port. go-github builds requests,
// attaches the token and turns error statuses into *gh.ErrorResponse; payloads
// are decoded by the domain model's own wire tables.
type Client struct {
	gh *gh.Client
}

// NewClient creates a new GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client with PAT auth)
//
// token may be empty for anonymous access. baseURL defaults to DefaultBaseURL.
func NewClient(token, baseURL string) (*Client, error) {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	return NewClientWithHTTPClient(rateLimitClient, baseURL, token)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// Tests use it to point the client at an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, token string) (*Client, error) {
	client := gh.NewClient(httpClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &Client{gh: client}, nil
}

// GetRepository fetches the full repository, including its fork parent.
func (c *Client) GetRepository(ctx context.Context, ref model.RepoRef) (*model.Repository, error) {
	path, err := repoPath(ref)
	if err != nil {
		return nil, err
	}

	raw, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}

	var repo model.Repository
	if err := repo.UnmarshalJSON(raw); err != nil {
		return nil, fmt.Errorf("decoding repository %s: %w", ref, err)
	}
	return &repo, nil
}

// Collaborators lists the users with access to the repository.
func (c *Client) Collaborators(ctx context.Context, ref model.RepoRef) ([]model.User, error) {
	return fetchList[model.User](ctx, c, ref, EndpointCollaborators, nil)
}

// Branches lists the repository's branches.
func (c *Client) Branches(ctx context.Context, ref model.RepoRef) ([]model.Branch, error) {
	return fetchList[model.Branch](ctx, c, ref, EndpointBranches, nil)
}

// Commits lists commits on the default branch.
func (c *Client) Commits(ctx context.Context, ref model.RepoRef) ([]model.Commit, error) {
	return fetchList[model.Commit](ctx, c, ref, EndpointCommits, nil)
}

// Languages returns the byte count per language.
func (c *Client) Languages(ctx context.Context, ref model.RepoRef) (model.Languages, error) {
	raw, err := c.getEndpoint(ctx, ref, EndpointLanguages, nil)
	if err != nil {
		return nil, err
	}

	var langs model.Languages
	if err := langs.UnmarshalJSON(raw); err != nil {
		return nil, fmt.Errorf("decoding %s for %s: %w", EndpointLanguages, ref, err)
	}
	return langs, nil
}

// Issues lists the repository's issues (pull requests included, as GitHub returns them).
func (c *Client) Issues(ctx context.Context, ref model.RepoRef) ([]model.Issue, error) {
	return fetchList[model.Issue](ctx, c, ref, EndpointIssues, nil)
}

// Comments lists issue comments across the repository.
func (c *Client) Comments(ctx context.Context, ref model.RepoRef) ([]model.IssueComment, error) {
	return fetchList[model.IssueComment](ctx, c, ref, EndpointComments, nil)
}

// CommentsOn lists the comments on one issue.
func (c *Client) CommentsOn(ctx context.Context, ref model.RepoRef, issueNumber int) ([]model.IssueComment, error) {
	params := map[string]string{"id": strconv.Itoa(issueNumber)}
	return fetchList[model.IssueComment](ctx, c, ref, EndpointCommentsOnIssue, params)
}

// Labels lists the repository's labels.
func (c *Client) Labels(ctx context.Context, ref model.RepoRef) ([]model.Label, error) {
	return fetchList[model.Label](ctx, c, ref, EndpointLabels, nil)
}

// Milestones lists the repository's milestones.
func (c *Client) Milestones(ctx context.Context, ref model.RepoRef) ([]model.Milestone, error) {
	return fetchList[model.Milestone](ctx, c, ref, EndpointMilestones, nil)
}

// fetchList performs one GET against endpoint e and decodes a JSON array of T.
func fetchList[T any, PT interface {
	*T
	json.Unmarshaler
}](ctx context.Context, c *Client, ref model.RepoRef, e Endpoint, params map[string]string) ([]T, error) {
	raw, err := c.getEndpoint(ctx, ref, e, params)
	if err != nil {
		return nil, err
	}

	items, err := model.DecodeList[T, PT](raw)
	if err != nil {
		return nil, fmt.Errorf("decoding %s for %s: %w", e, ref, err)
	}
	return items, nil
}

func (c *Client) getEndpoint(ctx context.Context, ref model.RepoRef, e Endpoint, params map[string]string) (json.RawMessage, error) {
	path, err := e.Path(ref, params)
	if err != nil {
		return nil, err
	}
	return c.get(ctx, path)
}

// get issues a single GET and returns the raw body. Any failure reported by
// go-github is wrapped, unchanged, in a *driven.TransportError.
func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := c.gh.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		return nil, &driven.TransportError{Path: path, Err: err}
	}

	var raw json.RawMessage
	resp, err := c.gh.Do(ctx, req, &raw)
	if err != nil {
		te := &driven.TransportError{Path: path, Err: err}
		if resp != nil {
			te.StatusCode = resp.StatusCode
		}
		return nil, te
	}

	logRateLimit(resp, path, len(raw))
	return raw, nil
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string, size int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"bytes", size,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Limit > 0 && resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}
