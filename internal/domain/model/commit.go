package model

import "time"

// Commit is an entry of a repository's commit listing. Author is the linked
// GitHub account and is nil when the commit email matches no account.
type Commit struct {
	SHA     string
	HTMLURL *string
	Commit  CommitInfo
	Author  *User
}

// CommitInfo is the git-level data of a commit.
type CommitInfo struct {
	Message string
	Author  *Signature
}

// Signature is a git author or committer line.
type Signature struct {
	Name  string
	Email string
	Date  time.Time
}

var commitSchema = Schema[Commit]{
	Req("sha", func(c *Commit) *string { return &c.SHA }),
	Opt("html_url", func(c *Commit) **string { return &c.HTMLURL }),
	Req("commit", func(c *Commit) *CommitInfo { return &c.Commit }),
	Opt("author", func(c *Commit) **User { return &c.Author }),
}

var commitInfoSchema = Schema[CommitInfo]{
	Req("message", func(c *CommitInfo) *string { return &c.Message }),
	Opt("author", func(c *CommitInfo) **Signature { return &c.Author }),
}

var signatureSchema = Schema[Signature]{
	Req("name", func(s *Signature) *string { return &s.Name }),
	Req("email", func(s *Signature) *string { return &s.Email }),
	Req("date", func(s *Signature) *time.Time { return &s.Date }),
}

func (c *Commit) UnmarshalJSON(data []byte) error { return commitSchema.Decode(data, c) }
func (c Commit) MarshalJSON() ([]byte, error)     { return commitSchema.Encode(&c) }

func (c *CommitInfo) UnmarshalJSON(data []byte) error { return commitInfoSchema.Decode(data, c) }
func (c CommitInfo) MarshalJSON() ([]byte, error)     { return commitInfoSchema.Encode(&c) }

func (s *Signature) UnmarshalJSON(data []byte) error { return signatureSchema.Decode(data, s) }
func (s Signature) MarshalJSON() ([]byte, error)     { return signatureSchema.Encode(&s) }
