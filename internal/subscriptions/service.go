package subscriptions

import (
	"context"
	"fmt"

	"github.com/damsoledevelopers/spireleap-console/internal/audit"
	"github.com/damsoledevelopers/spireleap-console/internal/backend"
	"github.com/damsoledevelopers/spireleap-console/internal/listing"
	"github.com/damsoledevelopers/spireleap-console/pkg/auth/session"
	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
)

const (
	activatedNotice   = "Subscription activated"
	deactivatedNotice = "Subscription deactivated"
	deletedNotice     = "Subscription deleted successfully"
)

// Service manages existing subscriptions. The console never creates them;
// they come from the storefront checkout.
type Service interface {
	Get(ctx context.Context, sess *session.Record, id string) (*backend.Subscription, error)
	ForUser(ctx context.Context, sess *session.Record, userID string) ([]backend.Subscription, error)
	Toggle(ctx context.Context, sess *session.Record, id string, active bool) (*Mutation, error)
	Delete(ctx context.Context, sess *session.Record, id string) (*Mutation, error)
}

type Mutation struct {
	Subscription *backend.Subscription `json:"subscription,omitempty"`
	Notice       string                `json:"-"`
	Refreshed    *listing.Refreshed    `json:"refreshed,omitempty"`
}

type subscriptionBackend interface {
	GetSubscription(ctx context.Context, token, id string) (*backend.Subscription, error)
	SubscriptionsForUser(ctx context.Context, token, userID string) ([]backend.Subscription, error)
	ToggleSubscription(ctx context.Context, token, id string, active bool) (*backend.Subscription, error)
	DeleteSubscription(ctx context.Context, token, id string) error
}

type viewRefresher interface {
	Refresh(ctx context.Context, sess *session.Record, views ...string) *listing.Refreshed
}

// ServiceParams groups dependencies for the subscription service.
type ServiceParams struct {
	Backend   subscriptionBackend
	Refresher viewRefresher
	Audit     audit.Sink
}

type service struct {
	backend   subscriptionBackend
	refresher viewRefresher
	audit     audit.Sink
}

func NewService(params ServiceParams) (Service, error) {
	if params.Backend == nil {
		return nil, fmt.Errorf("backend client required")
	}
	sink := params.Audit
	if sink == nil {
		sink = audit.Nop{}
	}
	return &service{backend: params.Backend, refresher: params.Refresher, audit: sink}, nil
}

func (s *service) Get(ctx context.Context, sess *session.Record, id string) (*backend.Subscription, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	return s.backend.GetSubscription(ctx, sess.BackendToken, id)
}

func (s *service) ForUser(ctx context.Context, sess *session.Record, userID string) ([]backend.Subscription, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	subs, err := s.backend.SubscriptionsForUser(ctx, sess.BackendToken, userID)
	if err != nil {
		return nil, err
	}
	if subs == nil {
		subs = []backend.Subscription{}
	}
	return subs, nil
}

func (s *service) Toggle(ctx context.Context, sess *session.Record, id string, active bool) (*Mutation, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	sub, err := s.backend.ToggleSubscription(ctx, sess.BackendToken, id, active)
	action, notice := "subscriptions.activate", activatedNotice
	if !active {
		action, notice = "subscriptions.deactivate", deactivatedNotice
	}
	s.audit.Record(ctx, audit.FromSession(sess, action, "subscription", id, err))
	if err != nil {
		return nil, err
	}
	return &Mutation{Subscription: sub, Notice: notice, Refreshed: s.refresh(ctx, sess)}, nil
}

func (s *service) Delete(ctx context.Context, sess *session.Record, id string) (*Mutation, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	err := s.backend.DeleteSubscription(ctx, sess.BackendToken, id)
	s.audit.Record(ctx, audit.FromSession(sess, "subscriptions.delete", "subscription", id, err))
	if err != nil {
		return nil, err
	}
	return &Mutation{Notice: deletedNotice, Refreshed: s.refresh(ctx, sess)}, nil
}

func (s *service) refresh(ctx context.Context, sess *session.Record) *listing.Refreshed {
	if s.refresher == nil {
		return nil
	}
	return s.refresher.Refresh(ctx, sess, listing.ViewSubscriptions)
}

func requireSession(sess *session.Record) error {
	if sess == nil || sess.BackendToken == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return nil
}
