package github

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ericfisherdev/ghrepo/internal/domain/model"
)

// Endpoint is a repository sub-resource.
type Endpoint int

const (
	EndpointCollaborators Endpoint = iota
	EndpointBranches
	EndpointCommits
	EndpointLanguages
	EndpointLabels
	EndpointIssues
	EndpointMilestones
	EndpointComments
	EndpointCommentsOnIssue
)

// Endpoints lists every sub-resource endpoint.
var Endpoints = []Endpoint{
	EndpointCollaborators,
	EndpointBranches,
	EndpointCommits,
	EndpointLanguages,
	EndpointLabels,
	EndpointIssues,
	EndpointMilestones,
	EndpointComments,
	EndpointCommentsOnIssue,
}

// Template returns the endpoint's sub-path relative to the repository.
// Placeholders are written as {name}.
func (e Endpoint) Template() string {
	switch e {
	case EndpointCollaborators:
		return "collaborators"
	case EndpointBranches:
		return "branches"
	case EndpointCommits:
		return "commits"
	case EndpointLanguages:
		return "languages"
	case EndpointLabels:
		return "labels"
	case EndpointIssues:
		return "issues"
	case EndpointMilestones:
		return "milestones"
	case EndpointComments:
		return "issues/comments"
	case EndpointCommentsOnIssue:
		return "issues/{id}/comments"
	default:
		return ""
	}
}

func (e Endpoint) String() string {
	if t := e.Template(); t != "" {
		return t
	}
	return fmt.Sprintf("Endpoint(%d)", int(e))
}

// Path returns the request path of e for the repository ref, relative to the
// API base URL. params fills the template's placeholders.
func (e Endpoint) Path(ref model.RepoRef, params map[string]string) (string, error) {
	tmpl := e.Template()
	if tmpl == "" {
		return "", fmt.Errorf("unknown endpoint %d", int(e))
	}

	base, err := repoPath(ref)
	if err != nil {
		return "", err
	}

	sub, err := expand(tmpl, params)
	if err != nil {
		return "", fmt.Errorf("endpoint %s: %w", e, err)
	}

	return base + "/" + sub, nil
}

// repoPath returns "repos/{owner}/{repo}", or "repositories/{id}" for an id-only ref.
func repoPath(ref model.RepoRef) (string, error) {
	switch {
	case ref.HasName():
		return "repos/" + url.PathEscape(ref.Owner) + "/" + url.PathEscape(ref.Name), nil
	case ref.ID > 0:
		return fmt.Sprintf("repositories/%d", ref.ID), nil
	default:
		return "", fmt.Errorf("invalid repository ref %+v: need owner/name or id", ref)
	}
}

// expand substitutes {name} placeholders in tmpl. Every placeholder must be
// supplied.
func expand(tmpl string, params map[string]string) (string, error) {
	var b strings.Builder
	rest := tmpl
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return "", fmt.Errorf("unterminated placeholder in %q", tmpl)
		}
		name := rest[open+1 : open+end]
		value, ok := params[name]
		if !ok || value == "" {
			return "", fmt.Errorf("missing path parameter %q", name)
		}
		b.WriteString(rest[:open])
		b.WriteString(url.PathEscape(value))
		rest = rest[open+end+1:]
	}
}
