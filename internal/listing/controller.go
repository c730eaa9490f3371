package listing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/damsoledevelopers/spireleap-console/internal/backend"
	"github.com/damsoledevelopers/spireleap-console/pkg/auth/session"
	"github.com/damsoledevelopers/spireleap-console/pkg/config"
	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
	"github.com/damsoledevelopers/spireleap-console/pkg/logger"
	"github.com/damsoledevelopers/spireleap-console/pkg/metrics"
	"github.com/damsoledevelopers/spireleap-console/pkg/pagination"
	redisclient "github.com/damsoledevelopers/spireleap-console/pkg/redis"
)

// Result is what one list fetch produced. A stale result carries no items:
// a newer request for the same view was issued and owns the page.
type Result struct {
	View       string           `json:"view"`
	State      State            `json:"state"`
	Items      []map[string]any `json:"items"`
	Pagination pagination.Meta  `json:"pagination"`
	Stale      bool             `json:"stale"`
}

type lister interface {
	List(ctx context.Context, token, path, collection string, query url.Values, fallback string) (backend.Page, error)
}

type stateStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	ListStateKey(sessionID, view string) string
	ListTicketKey(sessionID, view string) string
}

type ControllerParams struct {
	Backend lister
	Store   stateStore
	Config  config.ListConfig
	Metrics *metrics.ListMetrics
	Logger  *logger.Logger
}

// Controller keeps each session's list pages in Redis and turns changes into
// ordered backend fetches. Every fetch takes a ticket from a per-view
// counter; only the holder of the newest ticket may publish its result.
type Controller struct {
	backend  lister
	store    stateStore
	cfg      config.ListConfig
	metrics  *metrics.ListMetrics
	logg     *logger.Logger
	debounce map[Debounce]time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewController(params ControllerParams) (*Controller, error) {
	if params.Backend == nil {
		return nil, fmt.Errorf("backend client is required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("state store is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	cfg := params.Config
	if cfg.StateTTL <= 0 {
		cfg.StateTTL = 12 * time.Hour
	}
	return &Controller{
		backend: params.Backend,
		store:   params.Store,
		cfg:     cfg,
		metrics: params.Metrics,
		logg:    logg,
		debounce: map[Debounce]time.Duration{
			Immediate: 0,
			Typing:    cfg.TypingDebounce,
		},
		sleep: sleepContext,
	}, nil
}

// State returns the stored state of a view, or a fresh one.
func (c *Controller) State(ctx context.Context, sess *session.Record, viewKey string) (State, error) {
	view, err := lookup(viewKey)
	if err != nil {
		return State{}, err
	}
	return c.load(ctx, sess, view)
}

// Update applies change, waits out its debounce, and fetches unless a newer
// update for the same view arrived in the meantime.
func (c *Controller) Update(ctx context.Context, sess *session.Record, viewKey string, change Change) (*Result, error) {
	view, err := lookup(viewKey)
	if err != nil {
		return nil, err
	}
	state, err := c.load(ctx, sess, view)
	if err != nil {
		return nil, err
	}
	debounce, err := change.Apply(view, &state)
	if err != nil {
		return nil, err
	}
	state.Limit = pagination.NormalizeLimitWith(state.Limit, c.cfg.DefaultLimit, c.cfg.MaxLimit)
	if err := c.save(ctx, sess, view, state); err != nil {
		return nil, err
	}

	ticket, err := c.ticket(ctx, sess, view)
	if err != nil {
		return nil, err
	}
	if wait := c.debounce[debounce]; wait > 0 {
		if err := c.sleep(ctx, wait); err != nil {
			return nil, err
		}
		if newer, err := c.superseded(ctx, sess, view, ticket); err != nil {
			return nil, err
		} else if newer {
			c.metrics.IncSuperseded(view.Key)
			return &Result{View: view.Key, State: state, Items: []map[string]any{}, Stale: true}, nil
		}
	}
	return c.fetch(ctx, sess, view, state, ticket)
}

// Load re-fetches a view with its stored state.
func (c *Controller) Load(ctx context.Context, sess *session.Record, viewKey string) (*Result, error) {
	view, err := lookup(viewKey)
	if err != nil {
		return nil, err
	}
	state, err := c.load(ctx, sess, view)
	if err != nil {
		return nil, err
	}
	ticket, err := c.ticket(ctx, sess, view)
	if err != nil {
		return nil, err
	}
	return c.fetch(ctx, sess, view, state, ticket)
}

// Reset forgets a view's state; the next load starts from page 1.
func (c *Controller) Reset(ctx context.Context, sess *session.Record, viewKey string) (State, error) {
	view, err := lookup(viewKey)
	if err != nil {
		return State{}, err
	}
	if err := c.store.Del(ctx, c.store.ListStateKey(sess.ID, view.Key)); err != nil {
		return State{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reset list state")
	}
	return NewState(c.defaultLimit()), nil
}

func (c *Controller) fetch(ctx context.Context, sess *session.Record, view View, state State, ticket int64) (*Result, error) {
	c.metrics.IncFetch(view.Key)
	page, err := c.backend.List(ctx, sess.BackendToken, view.Path, view.Collection, view.Query(state), view.Fallback)
	if err != nil {
		c.logg.Error(c.logg.WithField(ctx, "view", view.Key), "listing.fetch_failed", err)
		return nil, err
	}
	if newer, err := c.superseded(ctx, sess, view, ticket); err != nil {
		return nil, err
	} else if newer {
		c.metrics.IncStale(view.Key)
		return &Result{View: view.Key, State: state, Items: []map[string]any{}, Stale: true}, nil
	}

	items := page.Items
	if view.ClientSort && state.Sort.Column != "" {
		if column, ok := view.Column(state.Sort.Column); ok {
			items = SortItems(items, column, state.Sort.Direction)
		}
	}
	return &Result{View: view.Key, State: state, Items: items, Pagination: page.Pagination}, nil
}

func (c *Controller) ticket(ctx context.Context, sess *session.Record, view View) (int64, error) {
	key := c.store.ListTicketKey(sess.ID, view.Key)
	ticket, err := c.store.Incr(ctx, key)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "take list ticket")
	}
	if err := c.store.Expire(ctx, key, c.cfg.StateTTL); err != nil {
		c.logg.Warn(c.logg.WithField(ctx, "view", view.Key), "listing.ticket_expire_failed")
	}
	return ticket, nil
}

func (c *Controller) superseded(ctx context.Context, sess *session.Record, view View, ticket int64) (bool, error) {
	raw, err := c.store.Get(ctx, c.store.ListTicketKey(sess.ID, view.Key))
	if err != nil {
		if errors.Is(err, redisclient.ErrNil) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read list ticket")
	}
	latest, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse list ticket")
	}
	return latest > ticket, nil
}

func (c *Controller) load(ctx context.Context, sess *session.Record, view View) (State, error) {
	raw, err := c.store.Get(ctx, c.store.ListStateKey(sess.ID, view.Key))
	if err != nil {
		if errors.Is(err, redisclient.ErrNil) {
			return NewState(c.defaultLimit()), nil
		}
		return State{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load list state")
	}
	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		c.logg.Warn(c.logg.WithField(ctx, "view", view.Key), "listing.state_corrupt")
		return NewState(c.defaultLimit()), nil
	}
	if state.Filters == nil {
		state.Filters = map[string]string{}
	}
	state.Page = pagination.NormalizePage(state.Page)
	state.Limit = pagination.NormalizeLimitWith(state.Limit, c.cfg.DefaultLimit, c.cfg.MaxLimit)
	return state, nil
}

// save writes the whole state in one SET so a failure never leaves it
// partially updated.
func (c *Controller) save(ctx context.Context, sess *session.Record, view View, state State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode list state")
	}
	if err := c.store.Set(ctx, c.store.ListStateKey(sess.ID, view.Key), payload, c.cfg.StateTTL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save list state")
	}
	return nil
}

func (c *Controller) defaultLimit() int {
	return pagination.NormalizeLimitWith(0, c.cfg.DefaultLimit, c.cfg.MaxLimit)
}

func lookup(key string) (View, error) {
	view, ok := Lookup(key)
	if !ok {
		return View{}, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("Unknown list view %q", key))
	}
	return view, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
