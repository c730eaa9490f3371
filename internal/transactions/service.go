package transactions

import (
	"context"
	"fmt"
	"net/url"

	"github.com/damsoledevelopers/spireleap-console/internal/listing"
	"github.com/damsoledevelopers/spireleap-console/pkg/auth/session"
	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
)

// Service is read-only: transactions are recorded by the CRM.
type Service interface {
	Revenue(ctx context.Context, sess *session.Record, query url.Values) (map[string]any, error)
	Overview(ctx context.Context, sess *session.Record) (*Overview, error)
}

// Overview is the transactions page as currently filtered, with totals for
// the rows on screen.
type Overview struct {
	Page    *listing.Result `json:"page"`
	Summary Summary         `json:"summary"`
}

type revenueBackend interface {
	Revenue(ctx context.Context, token string, query url.Values) (map[string]any, error)
}

type pageLoader interface {
	Load(ctx context.Context, sess *session.Record, viewKey string) (*listing.Result, error)
}

type ServiceParams struct {
	Backend revenueBackend
	Lists   pageLoader
}

type service struct {
	backend revenueBackend
	lists   pageLoader
}

func NewService(params ServiceParams) (Service, error) {
	if params.Backend == nil {
		return nil, fmt.Errorf("backend client is required")
	}
	if params.Lists == nil {
		return nil, fmt.Errorf("list controller is required")
	}
	return &service{backend: params.Backend, lists: params.Lists}, nil
}

var revenueParams = []string{"startDate", "endDate", "groupBy", "agency", "agent"}

// Revenue proxies the analytics endpoint, forwarding only known filters.
func (s *service) Revenue(ctx context.Context, sess *session.Record, query url.Values) (map[string]any, error) {
	if sess == nil || sess.BackendToken == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	forwarded := url.Values{}
	for _, key := range revenueParams {
		if v := query.Get(key); v != "" {
			forwarded.Set(key, v)
		}
	}
	return s.backend.Revenue(ctx, sess.BackendToken, forwarded)
}

func (s *service) Overview(ctx context.Context, sess *session.Record) (*Overview, error) {
	if sess == nil || sess.BackendToken == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	page, err := s.lists.Load(ctx, sess, listing.ViewTransactions)
	if err != nil {
		return nil, err
	}
	items, err := Decode(page.Items)
	if err != nil {
		return nil, err
	}
	return &Overview{Page: page, Summary: Summarize(items)}, nil
}
