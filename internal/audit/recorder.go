package audit

import (
	"context"
	"time"

	"github.com/damsoledevelopers/spireleap-console/pkg/auth/session"
	"github.com/damsoledevelopers/spireleap-console/pkg/db/models"
	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
	"github.com/damsoledevelopers/spireleap-console/pkg/logger"
	"github.com/google/uuid"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Event is one mutating console action.
type Event struct {
	ActorID    string
	ActorRole  string
	SessionID  string
	Action     string
	Resource   string
	ResourceID string
	Err        error
}

// Sink is what services depend on to record actions.
type Sink interface {
	Record(ctx context.Context, event Event)
}

type eventWriter interface {
	Create(ctx context.Context, event *models.AuditEvent) error
}

// Recorder writes events to the audit store. A failed write is logged and
// never fails the action being audited.
type Recorder struct {
	repo eventWriter
	logg *logger.Logger
	now  func() time.Time
}

func NewRecorder(repo eventWriter, logg *logger.Logger) *Recorder {
	return &Recorder{repo: repo, logg: logg, now: time.Now}
}

func (r *Recorder) Record(ctx context.Context, event Event) {
	if r == nil || r.repo == nil {
		return
	}
	row := &models.AuditEvent{
		ID:         uuid.NewString(),
		ActorID:    event.ActorID,
		ActorRole:  event.ActorRole,
		SessionID:  event.SessionID,
		Action:     event.Action,
		Resource:   event.Resource,
		ResourceID: event.ResourceID,
		Outcome:    OutcomeSuccess,
		CreatedAt:  r.now().UTC(),
	}
	if event.Err != nil {
		row.Outcome = OutcomeFailure
		if typed := pkgerrors.As(event.Err); typed != nil {
			row.Message = typed.Message()
		} else {
			row.Message = event.Err.Error()
		}
	}
	if err := r.repo.Create(ctx, row); err != nil && r.logg != nil {
		ctx = r.logg.WithFields(ctx, map[string]any{"action": event.Action, "resource": event.Resource})
		r.logg.Error(ctx, "audit.record_failed", err)
	}
}

// FromSession builds an event attributed to the session's user.
func FromSession(sess *session.Record, action, resource, resourceID string, err error) Event {
	event := Event{Action: action, Resource: resource, ResourceID: resourceID, Err: err}
	if sess != nil {
		event.ActorID = sess.UserID
		event.ActorRole = string(sess.Role)
		event.SessionID = sess.ID
	}
	return event
}

// Nop discards events.
type Nop struct{}

func (Nop) Record(context.Context, Event) {}
