package users

import (
	"context"
	"fmt"

	"github.com/damsoledevelopers/spireleap-console/internal/audit"
	"github.com/damsoledevelopers/spireleap-console/internal/backend"
	"github.com/damsoledevelopers/spireleap-console/internal/forms"
	"github.com/damsoledevelopers/spireleap-console/internal/listing"
	"github.com/damsoledevelopers/spireleap-console/internal/permissions"
	"github.com/damsoledevelopers/spireleap-console/pkg/auth/session"
	"github.com/damsoledevelopers/spireleap-console/pkg/enums"
	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
	"github.com/damsoledevelopers/spireleap-console/pkg/logger"
)

const (
	createdNotice     = "User created successfully"
	updatedNotice     = "User updated successfully"
	activatedNotice   = "User activated successfully"
	deactivatedNotice = "User deactivated successfully"
	deletedNotice     = "User deleted successfully"

	selfDeactivateMessage = "You cannot deactivate your own account"
	selfDeleteMessage     = "You cannot delete your own account"
)

type Service interface {
	Get(ctx context.Context, sess *session.Record, id string) (*UserDTO, error)
	Create(ctx context.Context, sess *session.Record, form forms.UserForm) (*Mutation, error)
	Update(ctx context.Context, sess *session.Record, id string, form forms.UserForm) (*Mutation, error)
	SetStatus(ctx context.Context, sess *session.Record, id string, active bool) (*Mutation, error)
	Delete(ctx context.Context, sess *session.Record, id string) (*Mutation, error)
	Permissions(ctx context.Context, sess *session.Record, id string) (backend.PermissionMatrix, error)
}

type Mutation struct {
	User      *UserDTO           `json:"user,omitempty"`
	Notice    string             `json:"-"`
	Refreshed *listing.Refreshed `json:"refreshed,omitempty"`
}

type userBackend interface {
	GetUser(ctx context.Context, token, id string) (*backend.User, error)
	CreateUser(ctx context.Context, token string, payload any) (*backend.User, error)
	UpdateUser(ctx context.Context, token, id string, payload any) (*backend.User, error)
	SetUserStatus(ctx context.Context, token, id string, active bool) error
	DeleteUser(ctx context.Context, token, id string) error
	GetPermissions(ctx context.Context, token, path string) (backend.PermissionMatrix, error)
}

type viewRefresher interface {
	Refresh(ctx context.Context, sess *session.Record, views ...string) *listing.Refreshed
}

type ServiceParams struct {
	Backend   userBackend
	Refresher viewRefresher
	Audit     audit.Sink
	Logger    *logger.Logger
}

type service struct {
	backend   userBackend
	refresher viewRefresher
	audit     audit.Sink
	logg      *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Backend == nil {
		return nil, fmt.Errorf("backend client is required")
	}
	sink := params.Audit
	if sink == nil {
		sink = audit.Nop{}
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{backend: params.Backend, refresher: params.Refresher, audit: sink, logg: logg}, nil
}

func (s *service) Get(ctx context.Context, sess *session.Record, id string) (*UserDTO, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	user, err := s.backend.GetUser(ctx, sess.BackendToken, id)
	if err != nil {
		return nil, err
	}
	return FromBackend(user, user.ID == sess.UserID), nil
}

func (s *service) Create(ctx context.Context, sess *session.Record, form forms.UserForm) (*Mutation, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	payload, err := form.Clean()
	if err != nil {
		return nil, err
	}
	if payload.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Password is required")
	}
	user, err := s.backend.CreateUser(ctx, sess.BackendToken, payload)
	id := ""
	if err == nil {
		id = user.ID
	}
	s.audit.Record(ctx, audit.FromSession(sess, "users.create", "user", id, err))
	if err != nil {
		return nil, err
	}
	return s.done(ctx, sess, FromBackend(user, false), createdNotice), nil
}

// Update sends the cleaned form. A blank password leaves the stored one
// untouched.
func (s *service) Update(ctx context.Context, sess *session.Record, id string, form forms.UserForm) (*Mutation, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	payload, err := form.Clean()
	if err != nil {
		return nil, err
	}
	if id == sess.UserID && payload.IsActive != nil && !*payload.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, selfDeactivateMessage)
	}
	user, err := s.backend.UpdateUser(ctx, sess.BackendToken, id, payload)
	s.audit.Record(ctx, audit.FromSession(sess, "users.update", "user", id, err))
	if err != nil {
		return nil, err
	}
	return s.done(ctx, sess, FromBackend(user, id == sess.UserID), updatedNotice), nil
}

// SetStatus activates or deactivates an account. The caller can never
// deactivate themselves; that is refused before the CRM is contacted.
func (s *service) SetStatus(ctx context.Context, sess *session.Record, id string, active bool) (*Mutation, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if !active && id == sess.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, selfDeactivateMessage)
	}
	err := s.backend.SetUserStatus(ctx, sess.BackendToken, id, active)
	action := "users.activate"
	notice := activatedNotice
	if !active {
		action = "users.deactivate"
		notice = deactivatedNotice
	}
	s.audit.Record(ctx, audit.FromSession(sess, action, "user", id, err))
	if err != nil {
		return nil, err
	}
	return s.done(ctx, sess, nil, notice), nil
}

func (s *service) Delete(ctx context.Context, sess *session.Record, id string) (*Mutation, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if id == sess.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, selfDeleteMessage)
	}
	err := s.backend.DeleteUser(ctx, sess.BackendToken, id)
	s.audit.Record(ctx, audit.FromSession(sess, "users.delete", "user", id, err))
	if err != nil {
		return nil, err
	}
	return s.done(ctx, sess, nil, deletedNotice), nil
}

// Permissions returns the user-level matrix shown on the detail page.
func (s *service) Permissions(ctx context.Context, sess *session.Record, id string) (backend.PermissionMatrix, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	scope := permissions.Scope{Kind: enums.PermissionScopeUser, ID: id}
	return s.backend.GetPermissions(ctx, sess.BackendToken, scope.Path())
}

func (s *service) done(ctx context.Context, sess *session.Record, user *UserDTO, notice string) *Mutation {
	out := &Mutation{User: user, Notice: notice}
	if s.refresher != nil {
		out.Refreshed = s.refresher.Refresh(ctx, sess, listing.ViewUsers, listing.ViewAgents)
	}
	return out
}

func requireSession(sess *session.Record) error {
	if sess == nil || sess.BackendToken == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return nil
}
