package model

// Owner is the account (user or organization) a repository belongs to.
type Owner struct {
	ID        int64
	Login     string
	Type      *string
	AvatarURL *string
	HTMLURL   *string
}

var ownerSchema = Schema[Owner]{
	Req("id", func(o *Owner) *int64 { return &o.ID }),
	Req("login", func(o *Owner) *string { return &o.Login }),
	Opt("type", func(o *Owner) **string { return &o.Type }),
	Opt("avatar_url", func(o *Owner) **string { return &o.AvatarURL }),
	Opt("html_url", func(o *Owner) **string { return &o.HTMLURL }),
}

func (o *Owner) UnmarshalJSON(data []byte) error { return ownerSchema.Decode(data, o) }
func (o Owner) MarshalJSON() ([]byte, error)     { return ownerSchema.Encode(&o) }

// User is a GitHub account as returned by the collaborators endpoint and
// embedded in issues and comments. Permissions is only set on collaborator
// listings.
type User struct {
	ID          int64
	Login       string
	Type        *string
	AvatarURL   *string
	HTMLURL     *string
	SiteAdmin   bool
	Permissions *RepoPermissions
}

var userSchema = Schema[User]{
	Req("id", func(u *User) *int64 { return &u.ID }),
	Req("login", func(u *User) *string { return &u.Login }),
	Opt("type", func(u *User) **string { return &u.Type }),
	Opt("avatar_url", func(u *User) **string { return &u.AvatarURL }),
	Opt("html_url", func(u *User) **string { return &u.HTMLURL }),
	Opt("site_admin", func(u *User) *bool { return &u.SiteAdmin }),
	Opt("permissions", func(u *User) **RepoPermissions { return &u.Permissions }),
}

func (u *User) UnmarshalJSON(data []byte) error { return userSchema.Decode(data, u) }
func (u User) MarshalJSON() ([]byte, error)     { return userSchema.Encode(&u) }

// Permission returns the user's highest permission on the repository, or
// false when the payload carried no permission set.
func (u User) Permission() (Permission, bool) {
	if u.Permissions == nil {
		return "", false
	}
	return u.Permissions.Highest()
}
