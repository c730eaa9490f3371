package middleware

import (
	"context"

	"github.com/damsoledevelopers/spireleap-console/pkg/auth/session"
)

type contextKey string

const (
	ctxUserID    contextKey = "user_id"
	ctxRole      contextKey = "actor_role"
	ctxSessionID contextKey = "session_id"
	ctxSession   contextKey = "session"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionID).(string); ok {
		return v
	}
	return ""
}

// SessionFromContext returns the tab session loaded by Auth, or nil.
func SessionFromContext(ctx context.Context) *session.Record {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxSession).(*session.Record); ok {
		return v
	}
	return nil
}

// WithSession seeds the context with a loaded session and its identifiers.
func WithSession(ctx context.Context, sess *session.Record) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if sess == nil {
		return ctx
	}
	ctx = context.WithValue(ctx, ctxSession, sess)
	ctx = context.WithValue(ctx, ctxSessionID, sess.ID)
	ctx = context.WithValue(ctx, ctxUserID, sess.UserID)
	return context.WithValue(ctx, ctxRole, string(sess.Role))
}
