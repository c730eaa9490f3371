package agencies

import (
	"context"
	"fmt"
	"strings"

	"github.com/damsoledevelopers/spireleap-console/internal/audit"
	"github.com/damsoledevelopers/spireleap-console/internal/backend"
	"github.com/damsoledevelopers/spireleap-console/internal/forms"
	"github.com/damsoledevelopers/spireleap-console/internal/listing"
	"github.com/damsoledevelopers/spireleap-console/pkg/auth/session"
	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
)

const updatedNotice = "Agency updated successfully"

// Form is the agency edit form.
type Form struct {
	Name     string            `json:"name"`
	Email    string            `json:"email"`
	Phone    string            `json:"phone"`
	Address  forms.AddressForm `json:"address"`
	IsActive *bool             `json:"isActive"`
}

type Payload struct {
	Name     string           `json:"name" validate:"required" label:"Agency name"`
	Email    string           `json:"email,omitempty" validate:"omitempty,email" label:"Email"`
	Phone    string           `json:"phone,omitempty"`
	Address  *backend.Address `json:"address,omitempty"`
	IsActive *bool            `json:"isActive,omitempty"`
}

func (f Form) Clean() (Payload, error) {
	out := Payload{
		Name:     strings.TrimSpace(f.Name),
		Email:    strings.ToLower(strings.TrimSpace(f.Email)),
		Phone:    strings.TrimSpace(f.Phone),
		Address:  f.Address.Clean(),
		IsActive: f.IsActive,
	}
	if err := forms.Check(out); err != nil {
		return Payload{}, err
	}
	return out, nil
}

type Service interface {
	Get(ctx context.Context, sess *session.Record, id string) (*backend.Agency, error)
	Update(ctx context.Context, sess *session.Record, id string, form Form) (*Mutation, error)
	Stats(ctx context.Context, sess *session.Record, id string) (map[string]any, error)
}

type Mutation struct {
	Agency    *backend.Agency    `json:"agency,omitempty"`
	Notice    string             `json:"-"`
	Refreshed *listing.Refreshed `json:"refreshed,omitempty"`
}

type agencyBackend interface {
	GetAgency(ctx context.Context, token, id string) (*backend.Agency, error)
	UpdateAgency(ctx context.Context, token, id string, payload any) (*backend.Agency, error)
	AgencyStats(ctx context.Context, token, id string) (map[string]any, error)
}

type viewRefresher interface {
	Refresh(ctx context.Context, sess *session.Record, views ...string) *listing.Refreshed
}

type ServiceParams struct {
	Backend   agencyBackend
	Refresher viewRefresher
	Audit     audit.Sink
}

type service struct {
	backend   agencyBackend
	refresher viewRefresher
	audit     audit.Sink
}

func NewService(params ServiceParams) (Service, error) {
	if params.Backend == nil {
		return nil, fmt.Errorf("backend client is required")
	}
	sink := params.Audit
	if sink == nil {
		sink = audit.Nop{}
	}
	return &service{backend: params.Backend, refresher: params.Refresher, audit: sink}, nil
}

func (s *service) Get(ctx context.Context, sess *session.Record, id string) (*backend.Agency, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	return s.backend.GetAgency(ctx, sess.BackendToken, id)
}

func (s *service) Update(ctx context.Context, sess *session.Record, id string, form Form) (*Mutation, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	payload, err := form.Clean()
	if err != nil {
		return nil, err
	}
	agency, err := s.backend.UpdateAgency(ctx, sess.BackendToken, id, payload)
	s.audit.Record(ctx, audit.FromSession(sess, "agencies.update", "agency", id, err))
	if err != nil {
		return nil, err
	}
	out := &Mutation{Agency: agency, Notice: updatedNotice}
	if s.refresher != nil {
		out.Refreshed = s.refresher.Refresh(ctx, sess, listing.ViewAgencies)
	}
	return out, nil
}

func (s *service) Stats(ctx context.Context, sess *session.Record, id string) (map[string]any, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	return s.backend.AgencyStats(ctx, sess.BackendToken, id)
}

func requireSession(sess *session.Record) error {
	if sess == nil || sess.BackendToken == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return nil
}
