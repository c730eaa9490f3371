package permissions

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/damsoledevelopers/spireleap-console/pkg/auth/session"
	"github.com/damsoledevelopers/spireleap-console/pkg/enums"
	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
)

// Scope is who a permission matrix applies to.
type Scope struct {
	Kind enums.PermissionScope `json:"type"`
	ID   string                `json:"id,omitempty"`
	Role enums.UserRole        `json:"role,omitempty"`
}

// ParseScope reads the editor's type/id/role selectors:
// type=user&id=X, type=agency&id=Y, or role=R (optionally with type=role).
func ParseScope(typ, id, role string) (Scope, error) {
	typ = strings.TrimSpace(typ)
	id = strings.TrimSpace(id)
	role = strings.TrimSpace(role)

	switch enums.PermissionScope(typ) {
	case enums.PermissionScopeUser, enums.PermissionScopeAgency:
		if id == "" {
			return Scope{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("An id is required for %s permissions", typ))
		}
		return Scope{Kind: enums.PermissionScope(typ), ID: id}, nil
	case enums.PermissionScopeRole, "":
		if role == "" {
			return Scope{}, pkgerrors.New(pkgerrors.CodeValidation, "Select a role, agency, or user to edit permissions")
		}
		parsed, err := enums.ParseUserRole(role)
		if err != nil {
			return Scope{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Unknown role %q", role))
		}
		return Scope{Kind: enums.PermissionScopeRole, Role: parsed}, nil
	}
	return Scope{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Unknown permission scope %q", typ))
}

// Path is the CRM endpoint that reads and writes this scope's matrix.
func (s Scope) Path() string {
	switch s.Kind {
	case enums.PermissionScopeUser:
		return "/users/" + url.PathEscape(s.ID) + "/permissions"
	case enums.PermissionScopeAgency:
		return "/agencies/" + url.PathEscape(s.ID) + "/permissions"
	default:
		return "/permissions/" + url.PathEscape(string(s.Role))
	}
}

// Key identifies the scope in draft storage.
func (s Scope) Key() string {
	switch s.Kind {
	case enums.PermissionScopeRole:
		return "role." + string(s.Role)
	default:
		return string(s.Kind) + "." + s.ID
	}
}

// Covers reports whether saving this scope changes what sess may do: it is
// the session user's own id or own role. Agency scope never triggers.
func (s Scope) Covers(sess *session.Record) bool {
	if sess == nil {
		return false
	}
	switch s.Kind {
	case enums.PermissionScopeUser:
		return s.ID == sess.UserID
	case enums.PermissionScopeRole:
		return s.Role == sess.Role
	}
	return false
}
