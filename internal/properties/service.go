package properties

import (
	"context"
	"fmt"
	"strings"

	"github.com/damsoledevelopers/spireleap-console/internal/audit"
	"github.com/damsoledevelopers/spireleap-console/internal/backend"
	"github.com/damsoledevelopers/spireleap-console/internal/forms"
	"github.com/damsoledevelopers/spireleap-console/internal/listing"
	"github.com/damsoledevelopers/spireleap-console/pkg/auth/session"
	"github.com/damsoledevelopers/spireleap-console/pkg/enums"
	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
	"github.com/damsoledevelopers/spireleap-console/pkg/logger"
)

const (
	minCompare = 2
	maxCompare = 4

	createdNotice  = "Property created successfully"
	pendingNotice  = "Property submitted for approval"
	updatedNotice  = "Property updated successfully"
	approvedNotice = "Property approved successfully"
	rejectedNotice = "Property rejected"
	statusNotice   = "Property status updated successfully"
	uploadedNotice = "Images uploaded successfully"
)

type Service interface {
	Get(ctx context.Context, sess *session.Record, id string) (*Detail, error)
	Create(ctx context.Context, sess *session.Record, form forms.PropertyForm) (*Mutation, error)
	Update(ctx context.Context, sess *session.Record, id string, form forms.PropertyForm) (*Mutation, error)
	Approve(ctx context.Context, sess *session.Record, id string, approve bool, reason string) (*Mutation, error)
	SetStatus(ctx context.Context, sess *session.Record, id string, status string) (*Mutation, error)
	Compare(ctx context.Context, sess *session.Record, ids []string) ([]backend.Property, error)
	UploadImages(ctx context.Context, sess *session.Record, current []backend.Image, files []backend.File) (*Gallery, error)
}

// Detail is a stored property with its edit form prefilled.
type Detail struct {
	Property *backend.Property  `json:"property"`
	Form     forms.PropertyForm `json:"form"`
}

type Mutation struct {
	Property  *backend.Property  `json:"property,omitempty"`
	Notice    string             `json:"-"`
	Refreshed *listing.Refreshed `json:"refreshed,omitempty"`
}

// Gallery is the form's image list after an upload.
type Gallery struct {
	Images  []backend.Image `json:"images"`
	Primary string          `json:"primary,omitempty"`
	Notice  string          `json:"-"`
}

type propertyBackend interface {
	GetProperty(ctx context.Context, token, id string) (*backend.Property, error)
	CreateProperty(ctx context.Context, token string, payload any) (*backend.Property, error)
	UpdateProperty(ctx context.Context, token, id string, payload any) (*backend.Property, error)
	ApproveProperty(ctx context.Context, token, id string, approve bool, reason string) error
	SetPropertyStatus(ctx context.Context, token, id, status string) error
	CompareProperties(ctx context.Context, token string, ids []string) ([]backend.Property, error)
	UploadPropertyImages(ctx context.Context, token string, files []backend.File) ([]string, error)
}

type viewRefresher interface {
	Refresh(ctx context.Context, sess *session.Record, views ...string) *listing.Refreshed
}

type ServiceParams struct {
	Backend   propertyBackend
	Refresher viewRefresher
	Audit     audit.Sink
	Logger    *logger.Logger
}

type service struct {
	backend   propertyBackend
	refresher viewRefresher
	audit     audit.Sink
	logg      *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Backend == nil {
		return nil, fmt.Errorf("backend client is required")
	}
	sink := params.Audit
	if sink == nil {
		sink = audit.Nop{}
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{backend: params.Backend, refresher: params.Refresher, audit: sink, logg: logg}, nil
}

func (s *service) Get(ctx context.Context, sess *session.Record, id string) (*Detail, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	property, err := s.backend.GetProperty(ctx, sess.BackendToken, id)
	if err != nil {
		return nil, err
	}
	return &Detail{Property: property, Form: forms.PropertyFormFrom(*property)}, nil
}

// Create submits a new listing. Anything not created by an admin waits for
// approval; admins publish directly unless they picked a status.
func (s *service) Create(ctx context.Context, sess *session.Record, form forms.PropertyForm) (*Mutation, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	payload, err := form.Clean()
	if err != nil {
		return nil, err
	}
	payload.Status = InitialStatus(sess.Role, payload.Status)

	property, err := s.backend.CreateProperty(ctx, sess.BackendToken, payload)
	id := ""
	if err == nil {
		id = property.ID
	}
	s.audit.Record(ctx, audit.FromSession(sess, "properties.create", "property", id, err))
	if err != nil {
		return nil, err
	}
	notice := createdNotice
	if payload.Status == enums.PropertyStatusPending {
		notice = pendingNotice
	}
	return s.done(ctx, sess, property, notice), nil
}

// InitialStatus is the status a new listing is created with.
func InitialStatus(role enums.UserRole, requested enums.PropertyStatus) enums.PropertyStatus {
	switch role {
	case enums.UserRoleSuperAdmin, enums.UserRoleAgencyAdmin:
		if requested != "" {
			return requested
		}
		return enums.PropertyStatusActive
	default:
		return enums.PropertyStatusPending
	}
}

func (s *service) Update(ctx context.Context, sess *session.Record, id string, form forms.PropertyForm) (*Mutation, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	payload, err := form.Clean()
	if err != nil {
		return nil, err
	}
	property, err := s.backend.UpdateProperty(ctx, sess.BackendToken, id, payload)
	s.audit.Record(ctx, audit.FromSession(sess, "properties.update", "property", id, err))
	if err != nil {
		return nil, err
	}
	return s.done(ctx, sess, property, updatedNotice), nil
}

func (s *service) Approve(ctx context.Context, sess *session.Record, id string, approve bool, reason string) (*Mutation, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	err := s.backend.ApproveProperty(ctx, sess.BackendToken, id, approve, reason)
	action, notice := "properties.approve", approvedNotice
	if !approve {
		action, notice = "properties.reject", rejectedNotice
	}
	s.audit.Record(ctx, audit.FromSession(sess, action, "property", id, err))
	if err != nil {
		return nil, err
	}
	return s.done(ctx, sess, nil, notice), nil
}

func (s *service) SetStatus(ctx context.Context, sess *session.Record, id string, status string) (*Mutation, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	parsed, err := enums.ParsePropertyStatus(strings.TrimSpace(status))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Please select a valid status")
	}
	err = s.backend.SetPropertyStatus(ctx, sess.BackendToken, id, string(parsed))
	s.audit.Record(ctx, audit.FromSession(sess, "properties.status", "property", id, err))
	if err != nil {
		return nil, err
	}
	return s.done(ctx, sess, nil, statusNotice), nil
}

// Compare loads two to four distinct listings side by side.
func (s *service) Compare(ctx context.Context, sess *session.Record, ids []string) ([]backend.Property, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	unique := make([]string, 0, len(ids))
	seen := map[string]struct{}{}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) < minCompare || len(unique) > maxCompare {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Select %d to %d properties to compare", minCompare, maxCompare))
	}
	return s.backend.CompareProperties(ctx, sess.BackendToken, unique)
}

// UploadImages proxies the files and appends the returned URLs to the
// form's current images.
func (s *service) UploadImages(ctx context.Context, sess *session.Record, current []backend.Image, files []backend.File) (*Gallery, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Please choose at least one image")
	}
	urls, err := s.backend.UploadPropertyImages(ctx, sess.BackendToken, files)
	if err != nil {
		return nil, err
	}
	set := forms.NewImageSet(current)
	for _, u := range urls {
		set.Add(u, "")
	}
	out := &Gallery{Images: set.Images(), Notice: uploadedNotice}
	if primary, ok := set.Primary(); ok {
		out.Primary = primary.URL
	}
	return out, nil
}

func (s *service) done(ctx context.Context, sess *session.Record, property *backend.Property, notice string) *Mutation {
	out := &Mutation{Property: property, Notice: notice}
	if s.refresher != nil {
		out.Refreshed = s.refresher.Refresh(ctx, sess, listing.ViewProperties)
	}
	return out
}

func requireSession(sess *session.Record) error {
	if sess == nil || sess.BackendToken == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return nil
}
