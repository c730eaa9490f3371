package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/damsoledevelopers/spireleap-console/pkg/config"
	"github.com/damsoledevelopers/spireleap-console/pkg/enums"
	redisclient "github.com/damsoledevelopers/spireleap-console/pkg/redis"
	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned when the session expired or was revoked.
var ErrSessionNotFound = errors.New("session not found")

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SetXX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	SessionKey(sessionID string) string
}

// Record is everything the console keeps for one browser tab. The backend
// token never leaves the server.
type Record struct {
	ID                string          `json:"id"`
	BackendToken      string          `json:"backendToken"`
	UserID            string          `json:"userId"`
	Role              enums.UserRole  `json:"role"`
	User              json.RawMessage `json:"user,omitempty"`
	Permissions       json.RawMessage `json:"permissions,omitempty"`
	PermissionsLoaded bool            `json:"permissionsLoaded"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// Manager persists session records in Redis keyed by session id.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
	now   func() time.Time
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.SessionConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &Manager{store: client, keyer: client, ttl: cfg.TTL, now: time.Now}, nil
}

// Create stores a brand new session. Every login gets a fresh id so two tabs
// never share a record.
func (m *Manager) Create(ctx context.Context, rec Record) (*Record, error) {
	if strings.TrimSpace(rec.BackendToken) == "" {
		return nil, fmt.Errorf("backend token is required")
	}
	now := m.now().UTC()
	rec.ID = NewSessionID()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if err := m.write(ctx, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Get loads a session record.
func (m *Manager) Get(ctx context.Context, sessionID string) (*Record, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrSessionNotFound
	}
	raw, err := m.store.Get(ctx, m.keyer.SessionKey(sessionID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", sessionID, err)
	}
	return &rec, nil
}

// Save overwrites an existing record and extends its TTL. A session revoked
// in the meantime stays revoked and ErrSessionNotFound is returned.
func (m *Manager) Save(ctx context.Context, rec *Record) error {
	if rec == nil || strings.TrimSpace(rec.ID) == "" {
		return fmt.Errorf("session id is required")
	}
	rec.UpdatedAt = m.now().UTC()
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	ok, err := m.store.SetXX(ctx, m.keyer.SessionKey(rec.ID), payload, m.ttl)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

// Revoke deletes the session. Missing sessions are not an error.
func (m *Manager) Revoke(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return nil
	}
	return m.store.Del(ctx, m.keyer.SessionKey(sessionID))
}

func (m *Manager) write(ctx context.Context, rec *Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	return m.store.Set(ctx, m.keyer.SessionKey(rec.ID), payload, m.ttl)
}

// NewSessionID produces the identifier used as the JWT jti and Redis key.
func NewSessionID() string {
	return uuid.NewString()
}
