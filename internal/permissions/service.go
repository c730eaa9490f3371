package permissions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/damsoledevelopers/spireleap-console/internal/audit"
	"github.com/damsoledevelopers/spireleap-console/internal/backend"
	"github.com/damsoledevelopers/spireleap-console/pkg/auth/session"
	"github.com/damsoledevelopers/spireleap-console/pkg/enums"
	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
	"github.com/damsoledevelopers/spireleap-console/pkg/logger"
	redisclient "github.com/damsoledevelopers/spireleap-console/pkg/redis"
)

const (
	draftKind        = "permissions"
	defaultDraftTTL  = 2 * time.Hour
	saveSuccessToast = "Permissions saved successfully"
)

// Service drives the permission matrix editor. Drafts live in Redis per
// session and scope so two tabs never edit the same copy.
type Service interface {
	Open(ctx context.Context, sess *session.Record, scope Scope) (*Editor, error)
	Draft(ctx context.Context, sess *session.Record, scope Scope) (*Editor, error)
	Toggle(ctx context.Context, sess *session.Record, scope Scope, module string, action enums.PermissionAction) (*Editor, error)
	ToggleAll(ctx context.Context, sess *session.Record, scope Scope, module string, value bool) (*Editor, error)
	Reset(ctx context.Context, sess *session.Record, scope Scope) (*Editor, error)
	Save(ctx context.Context, sess *session.Record, scope Scope) (*SaveResult, error)
}

// SaveResult is returned after a successful save. Refreshed is true when the
// saved scope covered the caller and their own session was re-hydrated.
type SaveResult struct {
	Editor    *Editor
	Refreshed bool
	Notice    string
}

type matrixBackend interface {
	GetPermissions(ctx context.Context, token, path string) (backend.PermissionMatrix, error)
	PutPermissions(ctx context.Context, token, path string, matrix backend.PermissionMatrix) error
}

type draftStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	DraftKey(kind, sessionID, id string) string
}

// SessionRefresher re-hydrates a session's user and matrix from the CRM.
type SessionRefresher interface {
	RefreshSession(ctx context.Context, sess *session.Record) error
}

type ServiceParams struct {
	Backend   matrixBackend
	Drafts    draftStore
	Refresher SessionRefresher
	Audit     audit.Sink
	Logger    *logger.Logger
	DraftTTL  time.Duration
}

type service struct {
	backend   matrixBackend
	drafts    draftStore
	refresher SessionRefresher
	audit     audit.Sink
	logg      *logger.Logger
	ttl       time.Duration
}

func NewService(params ServiceParams) (Service, error) {
	if params.Backend == nil {
		return nil, fmt.Errorf("backend client is required")
	}
	if params.Drafts == nil {
		return nil, fmt.Errorf("draft store is required")
	}
	if params.Refresher == nil {
		return nil, fmt.Errorf("session refresher is required")
	}
	sink := params.Audit
	if sink == nil {
		sink = audit.Nop{}
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	ttl := params.DraftTTL
	if ttl <= 0 {
		ttl = defaultDraftTTL
	}
	return &service{
		backend:   params.Backend,
		drafts:    params.Drafts,
		refresher: params.Refresher,
		audit:     sink,
		logg:      logg,
		ttl:       ttl,
	}, nil
}

func (s *service) Open(ctx context.Context, sess *session.Record, scope Scope) (*Editor, error) {
	if sess == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	matrix, err := s.backend.GetPermissions(ctx, sess.BackendToken, scope.Path())
	if err != nil {
		return nil, err
	}
	editor := NewEditor(scope, matrix)
	if err := s.store(ctx, sess, editor); err != nil {
		return nil, err
	}
	return editor, nil
}

func (s *service) Draft(ctx context.Context, sess *session.Record, scope Scope) (*Editor, error) {
	if sess == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	raw, err := s.drafts.Get(ctx, s.key(sess, scope))
	if err != nil {
		if errors.Is(err, redisclient.ErrNil) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Permission editor is not open for this selection. Reload and try again.")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load permission draft")
	}
	editor := &Editor{}
	if err := json.Unmarshal([]byte(raw), editor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode permission draft")
	}
	return editor, nil
}

func (s *service) Toggle(ctx context.Context, sess *session.Record, scope Scope, module string, action enums.PermissionAction) (*Editor, error) {
	return s.mutate(ctx, sess, scope, func(e *Editor) error {
		return e.Toggle(module, action)
	})
}

func (s *service) ToggleAll(ctx context.Context, sess *session.Record, scope Scope, module string, value bool) (*Editor, error) {
	return s.mutate(ctx, sess, scope, func(e *Editor) error {
		return e.ToggleAll(module, value)
	})
}

func (s *service) Reset(ctx context.Context, sess *session.Record, scope Scope) (*Editor, error) {
	return s.mutate(ctx, sess, scope, func(e *Editor) error {
		e.Reset()
		return nil
	})
}

// Save writes the whole current matrix to the scope endpoint. When the scope
// is the caller's own user or role, their session is refreshed so the new
// flags gate their next request.
func (s *service) Save(ctx context.Context, sess *session.Record, scope Scope) (*SaveResult, error) {
	editor, err := s.Draft(ctx, sess, scope)
	if err != nil {
		return nil, err
	}
	err = s.backend.PutPermissions(ctx, sess.BackendToken, scope.Path(), editor.Current())
	s.audit.Record(ctx, audit.FromSession(sess, "permissions.save", "permissions", scope.Key(), err))
	if err != nil {
		return nil, err
	}

	editor.MarkSaved()
	if err := s.store(ctx, sess, editor); err != nil {
		return nil, err
	}

	result := &SaveResult{Editor: editor, Notice: saveSuccessToast}
	if scope.Covers(sess) {
		if err := s.refresher.RefreshSession(ctx, sess); err != nil {
			s.logg.Error(s.logg.WithField(ctx, "scope", scope.Key()), "permissions.self_refresh_failed", err)
		} else {
			result.Refreshed = true
		}
	}
	return result, nil
}

func (s *service) mutate(ctx context.Context, sess *session.Record, scope Scope, fn func(*Editor) error) (*Editor, error) {
	editor, err := s.Draft(ctx, sess, scope)
	if err != nil {
		return nil, err
	}
	if err := fn(editor); err != nil {
		return nil, err
	}
	if err := s.store(ctx, sess, editor); err != nil {
		return nil, err
	}
	return editor, nil
}

func (s *service) store(ctx context.Context, sess *session.Record, editor *Editor) error {
	payload, err := json.Marshal(editor)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode permission draft")
	}
	if err := s.drafts.Set(ctx, s.key(sess, editor.Scope()), payload, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store permission draft")
	}
	return nil
}

func (s *service) key(sess *session.Record, scope Scope) string {
	return s.drafts.DraftKey(draftKind, sess.ID, scope.Key())
}
