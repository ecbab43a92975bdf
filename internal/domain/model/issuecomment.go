package model

import "time"

// IssueComment is a comment on an issue or pull request conversation (the
// Issues API, not inline review comments).
type IssueComment struct {
	ID       int64
	Body     string
	User     User
	HTMLURL  *string
	IssueURL *string
	Created  time.Time
	Updated  time.Time
}

var issueCommentSchema = Schema[IssueComment]{
	Req("id", func(c *IssueComment) *int64 { return &c.ID }),
	Req("body", func(c *IssueComment) *string { return &c.Body }),
	Req("user", func(c *IssueComment) *User { return &c.User }),
	Opt("html_url", func(c *IssueComment) **string { return &c.HTMLURL }),
	Opt("issue_url", func(c *IssueComment) **string { return &c.IssueURL }),
	Req("created_at", func(c *IssueComment) *time.Time { return &c.Created }),
	Req("updated_at", func(c *IssueComment) *time.Time { return &c.Updated }),
}

func (c *IssueComment) UnmarshalJSON(data []byte) error { return issueCommentSchema.Decode(data, c) }
func (c IssueComment) MarshalJSON() ([]byte, error)     { return issueCommentSchema.Encode(&c) }
