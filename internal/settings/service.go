// Package settings edits the CRM's global settings document.
package settings

import (
	"context"
	"fmt"

	"github.com/damsoledevelopers/spireleap-console/internal/audit"
	"github.com/damsoledevelopers/spireleap-console/pkg/auth/session"
	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
)

const savedNotice = "Settings saved successfully"

type Service interface {
	Get(ctx context.Context, sess *session.Record) (map[string]any, error)
	Update(ctx context.Context, sess *session.Record, changes map[string]any) (*Saved, error)
}

type Saved struct {
	Settings map[string]any `json:"settings"`
	Notice   string         `json:"-"`
}

type settingsBackend interface {
	GetSettings(ctx context.Context, token string) (map[string]any, error)
	UpdateSettings(ctx context.Context, token string, payload map[string]any) (map[string]any, error)
}

type ServiceParams struct {
	Backend settingsBackend
	Audit   audit.Sink
}

type service struct {
	backend settingsBackend
	audit   audit.Sink
}

func NewService(params ServiceParams) (Service, error) {
	if params.Backend == nil {
		return nil, fmt.Errorf("backend client is required")
	}
	sink := params.Audit
	if sink == nil {
		sink = audit.Nop{}
	}
	return &service{backend: params.Backend, audit: sink}, nil
}

func (s *service) Get(ctx context.Context, sess *session.Record) (map[string]any, error) {
	if sess == nil || sess.BackendToken == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return s.backend.GetSettings(ctx, sess.BackendToken)
}

// Update sends only the sections that changed.
func (s *service) Update(ctx context.Context, sess *session.Record, changes map[string]any) (*Saved, error) {
	if sess == nil || sess.BackendToken == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if len(changes) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "No changes to save")
	}
	saved, err := s.backend.UpdateSettings(ctx, sess.BackendToken, changes)
	s.audit.Record(ctx, audit.FromSession(sess, "settings.update", "settings", "", err))
	if err != nil {
		return nil, err
	}
	return &Saved{Settings: saved, Notice: savedNotice}, nil
}
