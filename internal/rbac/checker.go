package rbac

import (
	"context"
	"strings"
)

// Checker answers whether a role may perform an action. Grants are
// "resource:verb" strings from rules.go; a grant ending in "*" covers every
// permission under that prefix, and a bare "*" covers everything (admin).
type Checker struct {
	grants map[string][]string
}

func NewChecker(grants map[string][]string) *Checker {
	if grants == nil {
		grants = RolePermissions
	}
	return &Checker{grants: grants}
}

// Has reports whether the role holds the permission.
func (c *Checker) Has(role, perm string) bool {
	for _, g := range c.grants[role] {
		if granted(g, perm) {
			return true
		}
	}
	return false
}

// Any reports whether the role holds at least one of the permissions. Routes
// shared by teachers and students under different grants use this (awards:
// own view for students, results view for teachers).
func (c *Checker) Any(role string, perms ...string) bool {
	for _, p := range perms {
		if c.Has(role, p) {
			return true
		}
	}
	return false
}

func granted(grant, perm string) bool {
	if grant == "*" || grant == perm {
		return true
	}
	if strings.HasSuffix(grant, "*") {
		return strings.HasPrefix(perm, strings.TrimSuffix(grant, "*"))
	}
	return false
}

// ---- role in context ----

type roleKey struct{}

// WithRole records the caller's role for downstream permission checks. Set
// by the JWT middleware and overridden by the DB role lookup.
func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey{}, role)
}

// RoleFromContext returns the caller's role, or "" for unauthenticated
// requests.
func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(roleKey{}).(string)
	return role
}
