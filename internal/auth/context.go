package auth

import (
	"encoding/json"

	"github.com/damsoledevelopers/spireleap-console/internal/backend"
	"github.com/damsoledevelopers/spireleap-console/internal/permissions"
	"github.com/damsoledevelopers/spireleap-console/pkg/auth/session"
	"github.com/damsoledevelopers/spireleap-console/pkg/enums"
)

// SessionMatrix decodes the permission matrix stored on sess. A missing or
// unreadable matrix is empty, which denies everything except super_admin.
func SessionMatrix(sess *session.Record) backend.PermissionMatrix {
	out := backend.PermissionMatrix{}
	if sess == nil || len(sess.Permissions) == 0 {
		return out
	}
	if err := json.Unmarshal(sess.Permissions, &out); err != nil {
		return backend.PermissionMatrix{}
	}
	return out
}

// SessionUser decodes the cached profile stored on sess.
func SessionUser(sess *session.Record) *backend.User {
	if sess == nil || len(sess.User) == 0 {
		return nil
	}
	var user backend.User
	if err := json.Unmarshal(sess.User, &user); err != nil {
		return nil
	}
	return &user
}

// CheckPermission answers the session's permission question.
func CheckPermission(sess *session.Record, module string, action enums.PermissionAction) bool {
	if sess == nil {
		return false
	}
	return permissions.Check(sess.Role, SessionMatrix(sess), module, action)
}

// SnapshotOf renders a stored session for the UI.
func SnapshotOf(sess *session.Record) *Snapshot {
	if sess == nil {
		return emptySnapshot()
	}
	return &Snapshot{
		User:              SessionUser(sess),
		Permissions:       SessionMatrix(sess),
		PermissionsLoaded: sess.PermissionsLoaded,
	}
}
