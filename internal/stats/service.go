// Package stats serves the dashboard metric cards.
package stats

import (
	"context"
	"fmt"

	"github.com/damsoledevelopers/spireleap-console/pkg/auth/session"
	"github.com/damsoledevelopers/spireleap-console/pkg/enums"
	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
)

type Service interface {
	Dashboard(ctx context.Context, sess *session.Record) (map[string]any, error)
	Customer(ctx context.Context, sess *session.Record) (map[string]any, error)
	// ForRole picks the customer cards for end users and the dashboard
	// cards for everyone else.
	ForRole(ctx context.Context, sess *session.Record) (map[string]any, error)
}

type statsBackend interface {
	DashboardStats(ctx context.Context, token string) (map[string]any, error)
	CustomerStats(ctx context.Context, token string) (map[string]any, error)
}

type service struct {
	backend statsBackend
}

func NewService(b statsBackend) (Service, error) {
	if b == nil {
		return nil, fmt.Errorf("backend client is required")
	}
	return &service{backend: b}, nil
}

func (s *service) Dashboard(ctx context.Context, sess *session.Record) (map[string]any, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	return s.backend.DashboardStats(ctx, sess.BackendToken)
}

func (s *service) Customer(ctx context.Context, sess *session.Record) (map[string]any, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	return s.backend.CustomerStats(ctx, sess.BackendToken)
}

func (s *service) ForRole(ctx context.Context, sess *session.Record) (map[string]any, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if sess.Role == enums.UserRoleUser {
		return s.Customer(ctx, sess)
	}
	return s.Dashboard(ctx, sess)
}

func requireSession(sess *session.Record) error {
	if sess == nil || sess.BackendToken == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return nil
}
