package model

import "strings"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// NormalizeRole maps free-form role claims onto a known role.
func NormalizeRole(role string) Role {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "admin", "administrador":
		return RoleAdmin
	default:
		return RoleUser
	}
}

// Actor is the identity acting on a thread, as reported by the identity provider.
type Actor struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a Actor) Authenticated() bool {
	return strings.TrimSpace(a.Email) != ""
}

// CanModify reports whether a may edit or delete n: admins always, authors by email.
func (a Actor) CanModify(n *CommentNode) bool {
	if n == nil || !a.Authenticated() {
		return false
	}
	if a.IsAdmin() {
		return true
	}
	return n.Email != "" && strings.EqualFold(n.Email, a.Email)
}

// Capability describes how a delete is carried out. The engine reads it to pick
// hard vs soft removal and the placeholder text; it never checks it against the node.
type Capability struct {
	Role Role
	Hard bool
}

// Placeholder is the message shown in place of soft-deleted content.
func (c Capability) Placeholder() string {
	if c.Role == RoleAdmin {
		return DeletedByAdmin
	}
	return DeletedByUser
}
