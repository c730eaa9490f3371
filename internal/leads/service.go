package leads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/damsoledevelopers/spireleap-console/internal/audit"
	"github.com/damsoledevelopers/spireleap-console/internal/backend"
	"github.com/damsoledevelopers/spireleap-console/internal/forms"
	"github.com/damsoledevelopers/spireleap-console/internal/listing"
	"github.com/damsoledevelopers/spireleap-console/pkg/auth/session"
	"github.com/damsoledevelopers/spireleap-console/pkg/enums"
	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
	"github.com/damsoledevelopers/spireleap-console/pkg/logger"
	redisclient "github.com/damsoledevelopers/spireleap-console/pkg/redis"
	"github.com/google/uuid"
)

const (
	draftKind       = "lead"
	defaultDraftTTL = 30 * time.Minute

	// ListPath is where a cancelled create returns to.
	ListPath = "/admin/leads"

	createdNotice = "Lead created successfully"
	updatedNotice = "Lead updated successfully"
	statusNotice  = "Lead status updated successfully"
	deletedNotice = "Lead deleted successfully"
)

// DetailPath links to a lead's detail page.
func DetailPath(id string) string {
	return ListPath + "/" + id
}

type Service interface {
	Get(ctx context.Context, sess *session.Record, id string) (*backend.Lead, error)
	Create(ctx context.Context, sess *session.Record, form forms.LeadForm) (*CreateResult, error)
	CreateAnyway(ctx context.Context, sess *session.Record, draftID string) (*CreateResult, error)
	CancelDraft(ctx context.Context, sess *session.Record, draftID string) (string, error)
	Update(ctx context.Context, sess *session.Record, id string, form forms.LeadForm) (*Mutation, error)
	UpdateStatus(ctx context.Context, sess *session.Record, id string, status enums.LeadStatus) (*Mutation, error)
	Delete(ctx context.Context, sess *session.Record, id string) (*Mutation, error)
}

// DuplicateView is one candidate shown in the duplicate warning.
type DuplicateView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Link  string `json:"link"`
}

// CreateResult holds either the created lead or, when the CRM reported
// possible duplicates, the draft id to resubmit and the candidates.
type CreateResult struct {
	Lead       *backend.Lead      `json:"lead,omitempty"`
	DraftID    string             `json:"draftId,omitempty"`
	Duplicates []DuplicateView    `json:"duplicates,omitempty"`
	Notice     string             `json:"-"`
	Refreshed  *listing.Refreshed `json:"refreshed,omitempty"`
}

type Mutation struct {
	Lead      *backend.Lead      `json:"lead,omitempty"`
	Notice    string             `json:"-"`
	Refreshed *listing.Refreshed `json:"refreshed,omitempty"`
}

type leadBackend interface {
	GetLead(ctx context.Context, token, id string) (*backend.Lead, error)
	CreateLead(ctx context.Context, token string, payload any) (*backend.LeadCreateResult, error)
	UpdateLead(ctx context.Context, token, id string, payload any) (*backend.Lead, error)
	DeleteLead(ctx context.Context, token, id string) error
}

type draftStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	DraftKey(kind, sessionID, id string) string
}

type viewRefresher interface {
	Refresh(ctx context.Context, sess *session.Record, views ...string) *listing.Refreshed
}

type ServiceParams struct {
	Backend   leadBackend
	Drafts    draftStore
	Refresher viewRefresher
	Audit     audit.Sink
	Logger    *logger.Logger
	DraftTTL  time.Duration
}

type service struct {
	backend   leadBackend
	drafts    draftStore
	refresher viewRefresher
	audit     audit.Sink
	logg      *logger.Logger
	ttl       time.Duration
	newID     func() string
}

func NewService(params ServiceParams) (Service, error) {
	if params.Backend == nil {
		return nil, fmt.Errorf("backend client is required")
	}
	if params.Drafts == nil {
		return nil, fmt.Errorf("draft store is required")
	}
	sink := params.Audit
	if sink == nil {
		sink = audit.Nop{}
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	ttl := params.DraftTTL
	if ttl <= 0 {
		ttl = defaultDraftTTL
	}
	return &service{
		backend:   params.Backend,
		drafts:    params.Drafts,
		refresher: params.Refresher,
		audit:     sink,
		logg:      logg,
		ttl:       ttl,
		newID:     uuid.NewString,
	}, nil
}

// resubmission is the stored payload sent again with duplicate checks off.
type resubmission struct {
	forms.LeadPayload
	IgnoreDuplicates bool `json:"ignoreDuplicates"`
}

func (s *service) Get(ctx context.Context, sess *session.Record, id string) (*backend.Lead, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	return s.backend.GetLead(ctx, sess.BackendToken, id)
}

// Create submits the cleaned form. A reply with duplicates does not count
// as created: the payload is parked as a draft for CreateAnyway.
func (s *service) Create(ctx context.Context, sess *session.Record, form forms.LeadForm) (*CreateResult, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	payload, err := form.Clean()
	if err != nil {
		return nil, err
	}
	created, err := s.backend.CreateLead(ctx, sess.BackendToken, payload)
	if err != nil {
		s.audit.Record(ctx, audit.FromSession(sess, "leads.create", "lead", "", err))
		return nil, err
	}
	if len(created.Duplicates) > 0 {
		return s.park(ctx, sess, payload, created.Duplicates)
	}
	if created.Lead == nil {
		return nil, s.noLead(ctx, sess)
	}
	return s.finish(ctx, sess, created.Lead), nil
}

func (s *service) CreateAnyway(ctx context.Context, sess *session.Record, draftID string) (*CreateResult, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	key := s.drafts.DraftKey(draftKind, sess.ID, draftID)
	raw, err := s.drafts.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redisclient.ErrNil) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "This lead draft has expired. Please submit the form again.")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load lead draft")
	}
	var payload forms.LeadPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode lead draft")
	}

	created, err := s.backend.CreateLead(ctx, sess.BackendToken, resubmission{LeadPayload: payload, IgnoreDuplicates: true})
	if err != nil {
		s.audit.Record(ctx, audit.FromSession(sess, "leads.create", "lead", "", err))
		return nil, err
	}
	if created.Lead == nil {
		return nil, s.noLead(ctx, sess)
	}
	if err := s.drafts.Del(ctx, key); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "draft_id", draftID), "leads.draft_delete_failed", err)
	}
	return s.finish(ctx, sess, created.Lead), nil
}

// CancelDraft discards a parked payload and returns the list path.
func (s *service) CancelDraft(ctx context.Context, sess *session.Record, draftID string) (string, error) {
	if err := requireSession(sess); err != nil {
		return "", err
	}
	if err := s.drafts.Del(ctx, s.drafts.DraftKey(draftKind, sess.ID, draftID)); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete lead draft")
	}
	return ListPath, nil
}

func (s *service) Update(ctx context.Context, sess *session.Record, id string, form forms.LeadForm) (*Mutation, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	payload, err := form.Clean()
	if err != nil {
		return nil, err
	}
	// The edit form carries status too, so it obeys the same lifecycle.
	if payload.Status != "" {
		current, err := s.backend.GetLead(ctx, sess.BackendToken, id)
		if err != nil {
			return nil, err
		}
		if err := CanTransition(current.Status, payload.Status); err != nil {
			return nil, err
		}
	}
	lead, err := s.backend.UpdateLead(ctx, sess.BackendToken, id, payload)
	s.audit.Record(ctx, audit.FromSession(sess, "leads.update", "lead", id, err))
	if err != nil {
		return nil, err
	}
	return &Mutation{Lead: lead, Notice: updatedNotice, Refreshed: s.refresh(ctx, sess)}, nil
}

// UpdateStatus loads the lead, checks the move is allowed and saves it.
func (s *service) UpdateStatus(ctx context.Context, sess *session.Record, id string, status enums.LeadStatus) (*Mutation, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	current, err := s.backend.GetLead(ctx, sess.BackendToken, id)
	if err != nil {
		return nil, err
	}
	if err := CanTransition(current.Status, status); err != nil {
		return nil, err
	}
	lead, err := s.backend.UpdateLead(ctx, sess.BackendToken, id, map[string]any{"status": status})
	s.audit.Record(ctx, audit.FromSession(sess, "leads.status", "lead", id, err))
	if err != nil {
		return nil, err
	}
	return &Mutation{Lead: lead, Notice: statusNotice, Refreshed: s.refresh(ctx, sess)}, nil
}

func (s *service) Delete(ctx context.Context, sess *session.Record, id string) (*Mutation, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	err := s.backend.DeleteLead(ctx, sess.BackendToken, id)
	s.audit.Record(ctx, audit.FromSession(sess, "leads.delete", "lead", id, err))
	if err != nil {
		return nil, err
	}
	return &Mutation{Notice: deletedNotice, Refreshed: s.refresh(ctx, sess)}, nil
}

func (s *service) park(ctx context.Context, sess *session.Record, payload forms.LeadPayload, dups []backend.Duplicate) (*CreateResult, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode lead draft")
	}
	draftID := s.newID()
	if err := s.drafts.Set(ctx, s.drafts.DraftKey(draftKind, sess.ID, draftID), raw, s.ttl); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store lead draft")
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"draft_id": draftID, "duplicates": len(dups)}), "leads.duplicates_found")

	out := &CreateResult{DraftID: draftID, Duplicates: make([]DuplicateView, 0, len(dups))}
	for _, d := range dups {
		out.Duplicates = append(out.Duplicates, DuplicateView{
			ID:    d.ID,
			Name:  strings.TrimSpace(d.Contact.FirstName + " " + d.Contact.LastName),
			Email: d.Contact.Email,
			Phone: d.Contact.Phone,
			Link:  DetailPath(d.ID),
		})
	}
	return out, nil
}

// noLead is a create reply that carried neither a lead nor duplicates.
func (s *service) noLead(ctx context.Context, sess *session.Record) error {
	err := pkgerrors.New(pkgerrors.CodeDependency, "Failed to create lead")
	s.audit.Record(ctx, audit.FromSession(sess, "leads.create", "lead", "", err))
	return err
}

func (s *service) finish(ctx context.Context, sess *session.Record, lead *backend.Lead) *CreateResult {
	s.audit.Record(ctx, audit.FromSession(sess, "leads.create", "lead", lead.ID, nil))
	return &CreateResult{Lead: lead, Notice: createdNotice, Refreshed: s.refresh(ctx, sess)}
}

func (s *service) refresh(ctx context.Context, sess *session.Record) *listing.Refreshed {
	if s.refresher == nil {
		return nil
	}
	return s.refresher.Refresh(ctx, sess, listing.ViewLeads)
}

func requireSession(sess *session.Record) error {
	if sess == nil || sess.BackendToken == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return nil
}
