package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/damsoledevelopers/spireleap-console/internal/audit"
	"github.com/damsoledevelopers/spireleap-console/internal/backend"
	pkgAuth "github.com/damsoledevelopers/spireleap-console/pkg/auth"
	"github.com/damsoledevelopers/spireleap-console/pkg/auth/session"
	"github.com/damsoledevelopers/spireleap-console/pkg/config"
	"github.com/damsoledevelopers/spireleap-console/pkg/enums"
	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
	"github.com/damsoledevelopers/spireleap-console/pkg/logger"
)

const loginFailedMessage = "Login failed. Please check your credentials."

// Service owns the console session: login, registration, logout and
// re-hydration of the cached user and permission matrix.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*Snapshot, error)
	Register(ctx context.Context, req RegisterRequest) (*Snapshot, error)
	Logout(ctx context.Context, sessionID string) (string, error)
	FetchUser(ctx context.Context, sessionID string) (*Snapshot, error)
	RefreshUser(ctx context.Context, sessionID string) (*Snapshot, error)
	RefreshSession(ctx context.Context, sess *session.Record) error
}

type crmClient interface {
	Login(ctx context.Context, creds backend.Credentials) (*backend.Session, error)
	Register(ctx context.Context, payload map[string]any) (*backend.Session, error)
	Me(ctx context.Context, token string) (*backend.User, error)
	GetPermissions(ctx context.Context, token, path string) (backend.PermissionMatrix, error)
}

type sessionStore interface {
	Create(ctx context.Context, rec session.Record) (*session.Record, error)
	Get(ctx context.Context, sessionID string) (*session.Record, error)
	Save(ctx context.Context, rec *session.Record) error
	Revoke(ctx context.Context, sessionID string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Backend   crmClient
	Sessions  sessionStore
	JWTConfig config.JWTConfig
	Audit     audit.Sink
	Logger    *logger.Logger
}

type service struct {
	crm      crmClient
	sessions sessionStore
	jwtCfg   config.JWTConfig
	audit    audit.Sink
	logg     *logger.Logger
	now      func() time.Time
}

// NewService constructs the session service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Backend == nil {
		return nil, fmt.Errorf("backend client is required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	sink := params.Audit
	if sink == nil {
		sink = audit.Nop{}
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		crm:      params.Backend,
		sessions: params.Sessions,
		jwtCfg:   params.JWTConfig,
		audit:    sink,
		logg:     logg,
		now:      time.Now,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*Snapshot, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Email and password are required")
	}
	reply, err := s.crm.Login(ctx, backend.Credentials{Email: email, Password: req.Password})
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "email", email), "auth.login_failed")
		return nil, err
	}
	if strings.TrimSpace(reply.Token) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, loginFailedMessage)
	}
	snap, err := s.start(ctx, reply)
	if err != nil {
		return nil, err
	}
	snap.Redirect = DashboardFor(snap.User.Role)
	return snap, nil
}

func (s *service) Logout(ctx context.Context, sessionID string) (string, error) {
	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoke session")
	}
	return LoginPath, nil
}

func (s *service) RefreshUser(ctx context.Context, sessionID string) (*Snapshot, error) {
	return s.FetchUser(ctx, sessionID)
}

// FetchUser re-hydrates the session from its backend token. Any failure
// clears the session and yields an empty snapshot without an error; the
// caller decides whether to send the operator to the login page.
func (s *service) FetchUser(ctx context.Context, sessionID string) (*Snapshot, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, session.ErrSessionNotFound) {
			s.logg.Error(ctx, "auth.fetch_user.session_lookup", err)
		}
		return emptySnapshot(), nil
	}
	if err := s.RefreshSession(ctx, sess); err != nil {
		if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) && !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
			s.logg.Error(s.logg.WithSessionID(ctx, sessionID), "auth.fetch_user_failed", err)
		}
		if revokeErr := s.sessions.Revoke(ctx, sessionID); revokeErr != nil {
			s.logg.Error(ctx, "auth.fetch_user.revoke_failed", revokeErr)
		}
		return emptySnapshot(), nil
	}
	return SnapshotOf(sess), nil
}

// RefreshSession reloads the profile and matrix into sess and persists it.
func (s *service) RefreshSession(ctx context.Context, sess *session.Record) error {
	if sess == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	user, err := s.crm.Me(ctx, sess.BackendToken)
	if err != nil {
		return err
	}
	matrix, loaded := s.loadPermissions(ctx, sess.BackendToken, user)
	if err := fill(sess, user, matrix, loaded); err != nil {
		return err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "session ended")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save session")
	}
	return nil
}

// start turns a login or registration reply into a fresh tab-scoped session.
func (s *service) start(ctx context.Context, reply *backend.Session) (*Snapshot, error) {
	user := &reply.User
	if me, err := s.crm.Me(ctx, reply.Token); err == nil {
		user = me
	} else {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "auth.me_after_login_failed")
	}
	if strings.TrimSpace(user.ID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "Unexpected login response")
	}

	matrix, loaded := s.loadPermissions(ctx, reply.Token, user)
	rec := session.Record{BackendToken: reply.Token}
	if err := fill(&rec, user, matrix, loaded); err != nil {
		return nil, err
	}
	created, err := s.sessions.Create(ctx, rec)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create session")
	}

	role := user.Role
	if !role.IsValid() {
		role = enums.UserRoleUser
	}
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now(), pkgAuth.AccessTokenPayload{
		SessionID: created.ID,
		UserID:    user.ID,
		Role:      role,
	})
	if err != nil {
		_ = s.sessions.Revoke(ctx, created.ID)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint console token")
	}

	s.audit.Record(ctx, audit.FromSession(created, "auth.login", "sessions", created.ID, nil))
	return &Snapshot{
		Token:             token,
		User:              user,
		Permissions:       matrix,
		PermissionsLoaded: loaded,
	}, nil
}

// loadPermissions fetches the user's effective matrix. super_admin skips the
// call since every check passes anyway. A failed fetch leaves an empty,
// unloaded matrix.
func (s *service) loadPermissions(ctx context.Context, token string, user *backend.User) (backend.PermissionMatrix, bool) {
	if user.Role == enums.UserRoleSuperAdmin {
		return backend.PermissionMatrix{}, true
	}
	matrix, err := s.crm.GetPermissions(ctx, token, "/users/"+url.PathEscape(user.ID)+"/permissions")
	if err != nil {
		s.logg.Error(s.logg.WithUserID(ctx, user.ID), "auth.permissions_fetch_failed", err)
		return backend.PermissionMatrix{}, false
	}
	if matrix == nil {
		matrix = backend.PermissionMatrix{}
	}
	return matrix, true
}

func fill(rec *session.Record, user *backend.User, matrix backend.PermissionMatrix, loaded bool) error {
	rawUser, err := json.Marshal(user)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode session user")
	}
	rawMatrix, err := json.Marshal(matrix)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode session permissions")
	}
	rec.UserID = user.ID
	rec.Role = user.Role
	rec.User = rawUser
	rec.Permissions = rawMatrix
	rec.PermissionsLoaded = loaded
	return nil
}
