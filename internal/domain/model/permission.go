package model

import "fmt"

// Permission is a repository access level.
type Permission string

const (
	PermissionAdmin Permission = "admin"
	PermissionPush  Permission = "push"
	PermissionPull  Permission = "pull"
)

// Permissions lists every permission from most to least privileged.
var Permissions = []Permission{PermissionAdmin, PermissionPush, PermissionPull}

// ParsePermission returns the Permission named s.
func ParsePermission(s string) (Permission, error) {
	p := Permission(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown permission %q", s)
	}
	return p, nil
}

// Valid reports whether p is one of the known permissions.
func (p Permission) Valid() bool {
	return p.rank() > 0
}

// AtLeast reports whether p grants everything q grants (admin > push > pull).
// Unknown permissions grant nothing.
func (p Permission) AtLeast(q Permission) bool {
	return p.Valid() && p.rank() >= q.rank()
}

func (p Permission) rank() int {
	switch p {
	case PermissionAdmin:
		return 3
	case PermissionPush:
		return 2
	case PermissionPull:
		return 1
	default:
		return 0
	}
}

// RepoPermissions is the permission set GitHub attaches to collaborators.
type RepoPermissions struct {
	Admin bool
	Push  bool
	Pull  bool
}

var repoPermissionsSchema = Schema[RepoPermissions]{
	Req("admin", func(p *RepoPermissions) *bool { return &p.Admin }),
	Req("push", func(p *RepoPermissions) *bool { return &p.Push }),
	Req("pull", func(p *RepoPermissions) *bool { return &p.Pull }),
}

func (p *RepoPermissions) UnmarshalJSON(data []byte) error {
	return repoPermissionsSchema.Decode(data, p)
}

func (p RepoPermissions) MarshalJSON() ([]byte, error) {
	return repoPermissionsSchema.Encode(&p)
}

// Highest returns the most privileged permission granted, or false when none is.
func (p RepoPermissions) Highest() (Permission, bool) {
	switch {
	case p.Admin:
		return PermissionAdmin, true
	case p.Push:
		return PermissionPush, true
	case p.Pull:
		return PermissionPull, true
	default:
		return "", false
	}
}
