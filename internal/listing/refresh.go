package listing

import (
	"context"

	"github.com/damsoledevelopers/spireleap-console/pkg/auth/session"
)

type dashboardStats interface {
	DashboardStats(ctx context.Context, token string) (map[string]any, error)
}

// Refreshed is attached to mutation responses: the affected views re-fetched
// with their stored state, plus the dashboard metrics.
type Refreshed struct {
	Views   map[string]*Result `json:"views"`
	Metrics map[string]any     `json:"metrics,omitempty"`
}

// Refresher re-fetches views after a mutation. The mutation already
// succeeded, so failures here are logged and left out of the result.
type Refresher struct {
	lists *Controller
	stats dashboardStats
}

func NewRefresher(lists *Controller, stats dashboardStats) *Refresher {
	return &Refresher{lists: lists, stats: stats}
}

func (r *Refresher) Refresh(ctx context.Context, sess *session.Record, views ...string) *Refreshed {
	out := &Refreshed{Views: map[string]*Result{}}
	if r == nil || sess == nil {
		return out
	}
	if r.lists != nil {
		for _, key := range views {
			result, err := r.lists.Load(ctx, sess, key)
			if err != nil {
				r.lists.logg.Error(r.lists.logg.WithField(ctx, "view", key), "listing.refresh_view_failed", err)
				continue
			}
			out.Views[key] = result
		}
	}
	if r.stats != nil {
		metrics, err := r.stats.DashboardStats(ctx, sess.BackendToken)
		if err != nil {
			if r.lists != nil {
				r.lists.logg.Error(ctx, "listing.refresh_metrics_failed", err)
			}
		} else {
			out.Metrics = metrics
		}
	}
	return out
}
