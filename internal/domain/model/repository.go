package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Repository is a GitHub repository snapshot. Basic is always present; Detail
// is nil when the payload only carried summary fields (list and search results
// embedded in other resources).
type Repository struct {
	Basic  Basic
	Detail *Detail
}

// Basic holds the summary fields GitHub includes in every repository payload.
type Basic struct {
	ID          int64
	Name        string
	FullName    string
	Description *string
	Owner       Owner
	IsPrivate   bool
	IsFork      bool
}

// Detail holds the fields only present on a full repository fetch.
type Detail struct {
	Homepage      *string
	Language      *string
	DefaultBranch *string
	HTMLURL       *string
	CloneURL      *string
	SSHURL        *string

	// parent is the repository this one was forked from.
	parent *Repository

	Size            *int
	ForksCount      int
	StarsCount      int
	WatchersCount   int
	OpenIssuesCount int

	HasIssues    bool
	HasWiki      bool
	HasPages     bool
	HasDownloads bool

	Created time.Time
	Updated time.Time
	Pushed  time.Time
}

// ForkedFrom returns the parent repository, or nil when this is not a fork or
// the payload did not include the parent.
func (d Detail) ForkedFrom() *Repository {
	return d.parent
}

// WithForkedFrom returns a copy of d whose parent is p.
func (d Detail) WithForkedFrom(p *Repository) Detail {
	d.parent = p
	return d
}

var basicSchema = Schema[Basic]{
	Req("id", func(b *Basic) *int64 { return &b.ID }),
	Req("name", func(b *Basic) *string { return &b.Name }),
	Req("full_name", func(b *Basic) *string { return &b.FullName }),
	Opt("description", func(b *Basic) **string { return &b.Description }),
	Req("owner", func(b *Basic) *Owner { return &b.Owner }),
	Req("private", func(b *Basic) *bool { return &b.IsPrivate }),
	Req("fork", func(b *Basic) *bool { return &b.IsFork }),
}

var detailSchema = Schema[Detail]{
	Opt("homepage", func(d *Detail) **string { return &d.Homepage }),
	Opt("language", func(d *Detail) **string { return &d.Language }),
	Opt("default_branch", func(d *Detail) **string { return &d.DefaultBranch }),
	Opt("html_url", func(d *Detail) **string { return &d.HTMLURL }),
	Opt("clone_url", func(d *Detail) **string { return &d.CloneURL }),
	Opt("ssh_url", func(d *Detail) **string { return &d.SSHURL }),
	Opt("parent", func(d *Detail) **Repository { return &d.parent }),
	Opt("size", func(d *Detail) **int { return &d.Size }),
	Req("forks_count", func(d *Detail) *int { return &d.ForksCount }),
	Req("stargazers_count", func(d *Detail) *int { return &d.StarsCount }),
	Req("watchers_count", func(d *Detail) *int { return &d.WatchersCount }),
	Req("open_issues_count", func(d *Detail) *int { return &d.OpenIssuesCount }),
	Req("has_issues", func(d *Detail) *bool { return &d.HasIssues }),
	Req("has_wiki", func(d *Detail) *bool { return &d.HasWiki }),
	Req("has_pages", func(d *Detail) *bool { return &d.HasPages }),
	Req("has_downloads", func(d *Detail) *bool { return &d.HasDownloads }),
	Req("created_at", func(d *Detail) *time.Time { return &d.Created }),
	Req("updated_at", func(d *Detail) *time.Time { return &d.Updated }),
	Req("pushed_at", func(d *Detail) *time.Time { return &d.Pushed }),
}

// RepositoryKeys returns the wire keys of the Basic and Detail tables.
func RepositoryKeys() (basic, detail []string) {
	return basicSchema.Keys(), detailSchema.Keys()
}

// UnmarshalJSON decodes Basic and Detail from the same flat object. Detail is
// decoded only when at least one of its required keys is present; from then
// on all of its required keys must be valid.
func (r *Repository) UnmarshalJSON(data []byte) error {
	obj, err := decodeObject(data)
	if err != nil {
		return err
	}

	var repo Repository
	if err := basicSchema.decodeFrom(obj, &repo.Basic); err != nil {
		return err
	}

	if detailSchema.present(obj) {
		repo.Detail = new(Detail)
		if err := detailSchema.decodeFrom(obj, repo.Detail); err != nil {
			return err
		}
	}

	*r = repo
	return nil
}

// MarshalJSON encodes r back into GitHub's flat wire shape.
func (r Repository) MarshalJSON() ([]byte, error) {
	obj := make(map[string]json.RawMessage, len(basicSchema)+len(detailSchema))
	if err := basicSchema.encodeInto(&r.Basic, obj); err != nil {
		return nil, err
	}
	if r.Detail != nil {
		if err := detailSchema.encodeInto(r.Detail, obj); err != nil {
			return nil, err
		}
	}
	return json.Marshal(obj)
}

// ForkedFrom is a shorthand for Detail.ForkedFrom that tolerates a nil Detail.
func (r Repository) ForkedFrom() *Repository {
	if r.Detail == nil {
		return nil
	}
	return r.Detail.ForkedFrom()
}

// Clone returns the repository's clone URLs, or nil when the payload lacked them.
func (r Repository) Clone() *Clone {
	if r.Detail == nil || r.Detail.CloneURL == nil || r.Detail.SSHURL == nil {
		return nil
	}
	return &Clone{HTTP: *r.Detail.CloneURL, SSH: *r.Detail.SSHURL}
}

// Ref returns the identifier accessors use to address this repository.
func (r Repository) Ref() RepoRef {
	return RepoRef{ID: r.Basic.ID, Owner: r.Basic.Owner.Login, Name: r.Basic.Name}
}

// Clone is the pair of transport URLs a repository can be cloned from.
type Clone struct {
	HTTP string
	SSH  string
}

var cloneSchema = Schema[Clone]{
	Req("http", func(c *Clone) *string { return &c.HTTP }),
	Req("ssh", func(c *Clone) *string { return &c.SSH }),
}

func (c *Clone) UnmarshalJSON(data []byte) error { return cloneSchema.Decode(data, c) }
func (c Clone) MarshalJSON() ([]byte, error)     { return cloneSchema.Encode(&c) }

// RepoRef identifies a repository for sub-resource requests. Owner and Name
// take precedence; a ref carrying only ID is addressed through GitHub's
// id-based alias.
type RepoRef struct {
	ID    int64
	Owner string
	Name  string
}

// ParseRepoRef parses an "owner/repo" string.
func ParseRepoRef(fullName string) (RepoRef, error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" || strings.Contains(parts[1], "/") {
		return RepoRef{}, fmt.Errorf("invalid repo name %q: expected owner/repo", fullName)
	}
	return RepoRef{Owner: parts[0], Name: parts[1]}, nil
}

// RepoRefByID returns a ref addressing a repository by its numeric id.
func RepoRefByID(id int64) RepoRef {
	return RepoRef{ID: id}
}

// HasName reports whether the ref carries an owner/name pair.
func (r RepoRef) HasName() bool {
	return r.Owner != "" && r.Name != ""
}

// IsZero reports whether the ref addresses nothing.
func (r RepoRef) IsZero() bool {
	return !r.HasName() && r.ID <= 0
}

// FullName returns "owner/name", or "" for an id-only ref.
func (r RepoRef) FullName() string {
	if !r.HasName() {
		return ""
	}
	return r.Owner + "/" + r.Name
}

func (r RepoRef) String() string {
	if r.HasName() {
		return r.FullName()
	}
	return fmt.Sprintf("#%d", r.ID)
}
