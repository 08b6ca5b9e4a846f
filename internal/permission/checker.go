// Package permission resuelve permisos "Doctype:perm" a partir de los roles del usuario.
package permission

import (
	"context"
	"strings"

	"github.com/dropDatabas3/essgate/internal/domain/repository"
)

const (
	Read  = "read"
	Write = "write"
)

// Checker responde si un usuario tiene un permiso sobre un doctype.
type Checker interface {
	HasPermission(ctx context.Context, userID, doctype, perm string) (bool, error)
}

// RoleChecker mapea rol → permisos; "*" concede todo y "Doctype:*" todo el doctype.
type RoleChecker struct {
	users  repository.UserRepository
	grants map[string]map[string]struct{}
}

func NewRoleChecker(users repository.UserRepository, roles map[string][]string) *RoleChecker {
	grants := make(map[string]map[string]struct{}, len(roles))
	for role, perms := range roles {
		set := make(map[string]struct{}, len(perms))
		for _, p := range perms {
			set[normalize(p)] = struct{}{}
		}
		grants[normalize(role)] = set
	}
	return &RoleChecker{users: users, grants: grants}
}

func normalize(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func (c *RoleChecker) HasPermission(ctx context.Context, userID, doctype, perm string) (bool, error) {
	u, err := c.users.GetByID(ctx, userID)
	if repository.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	want := normalize(doctype + ":" + perm)
	wantAll := normalize(doctype + ":*")
	for _, role := range u.Roles {
		set := c.grants[normalize(role)]
		if set == nil {
			continue
		}
		if _, ok := set["*"]; ok {
			return true, nil
		}
		if _, ok := set[want]; ok {
			return true, nil
		}
		if _, ok := set[wantAll]; ok {
			return true, nil
		}
	}
	return false, nil
}
