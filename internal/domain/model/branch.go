package model

// Branch is an entry of a repository's branch listing.
type Branch struct {
	Name      string
	Commit    CommitRef
	Protected bool
}

// CommitRef points at the commit a branch head resolves to.
type CommitRef struct {
	SHA string
	URL *string
}

var branchSchema = Schema[Branch]{
	Req("name", func(b *Branch) *string { return &b.Name }),
	Req("commit", func(b *Branch) *CommitRef { return &b.Commit }),
	Opt("protected", func(b *Branch) *bool { return &b.Protected }),
}

var commitRefSchema = Schema[CommitRef]{
	Req("sha", func(c *CommitRef) *string { return &c.SHA }),
	Opt("url", func(c *CommitRef) **string { return &c.URL }),
}

func (b *Branch) UnmarshalJSON(data []byte) error { return branchSchema.Decode(data, b) }
func (b Branch) MarshalJSON() ([]byte, error)     { return branchSchema.Encode(&b) }

func (c *CommitRef) UnmarshalJSON(data []byte) error { return commitRefSchema.Decode(data, c) }
func (c CommitRef) MarshalJSON() ([]byte, error)     { return commitRefSchema.Encode(&c) }
