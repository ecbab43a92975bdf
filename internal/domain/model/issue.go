package model

import "time"

// IssueState is the open/closed state shared by issues and milestones.
type IssueState string

const (
	IssueStateOpen   IssueState = "open"
	IssueStateClosed IssueState = "closed"
)

// Issue is an entry of a repository's issue listing. GitHub lists pull
// requests here too; PullRequest is set for those.
type Issue struct {
	ID          int64
	Number      int
	Title       string
	State       IssueState
	User        User
	Body        *string
	Labels      []Label
	Milestone   *Milestone
	Comments    int
	HTMLURL     *string
	PullRequest *PullRequestLink
	Created     time.Time
	Updated     time.Time
	Closed      *time.Time
}

// PullRequestLink marks an issue as a pull request.
type PullRequestLink struct {
	URL     string
	HTMLURL *string
}

var issueSchema = Schema[Issue]{
	Req("id", func(i *Issue) *int64 { return &i.ID }),
	Req("number", func(i *Issue) *int { return &i.Number }),
	Req("title", func(i *Issue) *string { return &i.Title }),
	Req("state", func(i *Issue) *IssueState { return &i.State }),
	Req("user", func(i *Issue) *User { return &i.User }),
	Opt("body", func(i *Issue) **string { return &i.Body }),
	Opt("labels", func(i *Issue) *[]Label { return &i.Labels }),
	Opt("milestone", func(i *Issue) **Milestone { return &i.Milestone }),
	Opt("comments", func(i *Issue) *int { return &i.Comments }),
	Opt("html_url", func(i *Issue) **string { return &i.HTMLURL }),
	Opt("pull_request", func(i *Issue) **PullRequestLink { return &i.PullRequest }),
	Req("created_at", func(i *Issue) *time.Time { return &i.Created }),
	Req("updated_at", func(i *Issue) *time.Time { return &i.Updated }),
	Opt("closed_at", func(i *Issue) **time.Time { return &i.Closed }),
}

var pullRequestLinkSchema = Schema[PullRequestLink]{
	Req("url", func(p *PullRequestLink) *string { return &p.URL }),
	Opt("html_url", func(p *PullRequestLink) **string { return &p.HTMLURL }),
}

func (i *Issue) UnmarshalJSON(data []byte) error { return issueSchema.Decode(data, i) }
func (i Issue) MarshalJSON() ([]byte, error)     { return issueSchema.Encode(&i) }

func (p *PullRequestLink) UnmarshalJSON(data []byte) error {
	return pullRequestLinkSchema.Decode(data, p)
}

func (p PullRequestLink) MarshalJSON() ([]byte, error) {
	return pullRequestLinkSchema.Encode(&p)
}

// IsPullRequest reports whether the issue is a pull request.
func (i Issue) IsPullRequest() bool {
	return i.PullRequest != nil
}

// LabelNames returns the names of the issue's labels in listing order.
func (i Issue) LabelNames() []string {
	names := make([]string, 0, len(i.Labels))
	for _, l := range i.Labels {
		names = append(names, l.Name)
	}
	return names
}

// Label is a repository label.
type Label struct {
	Name        string
	ID          *int64
	Color       *string
	Description *string
	Default     bool
}

var labelSchema = Schema[Label]{
	Req("name", func(l *Label) *string { return &l.Name }),
	Opt("id", func(l *Label) **int64 { return &l.ID }),
	Opt("color", func(l *Label) **string { return &l.Color }),
	Opt("description", func(l *Label) **string { return &l.Description }),
	Opt("default", func(l *Label) *bool { return &l.Default }),
}

func (l *Label) UnmarshalJSON(data []byte) error { return labelSchema.Decode(data, l) }
func (l Label) MarshalJSON() ([]byte, error)     { return labelSchema.Encode(&l) }

// Milestone is a repository milestone.
type Milestone struct {
	ID           int64
	Number       int
	Title        string
	State        IssueState
	Description  *string
	OpenIssues   int
	ClosedIssues int
	DueOn        *time.Time
}

var milestoneSchema = Schema[Milestone]{
	Req("id", func(m *Milestone) *int64 { return &m.ID }),
	Req("number", func(m *Milestone) *int { return &m.Number }),
	Req("title", func(m *Milestone) *string { return &m.Title }),
	Req("state", func(m *Milestone) *IssueState { return &m.State }),
	Opt("description", func(m *Milestone) **string { return &m.Description }),
	Opt("open_issues", func(m *Milestone) *int { return &m.OpenIssues }),
	Opt("closed_issues", func(m *Milestone) *int { return &m.ClosedIssues }),
	Opt("due_on", func(m *Milestone) **time.Time { return &m.DueOn }),
}

func (m *Milestone) UnmarshalJSON(data []byte) error { return milestoneSchema.Decode(data, m) }
func (m Milestone) MarshalJSON() ([]byte, error)     { return milestoneSchema.Encode(&m) }
