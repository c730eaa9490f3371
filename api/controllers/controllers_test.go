package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damsoledevelopers/spireleap-console/api/middleware"
	"github.com/damsoledevelopers/spireleap-console/internal/audit"
	"github.com/damsoledevelopers/spireleap-console/internal/forms"
	"github.com/damsoledevelopers/spireleap-console/internal/leads"
	"github.com/damsoledevelopers/spireleap-console/pkg/auth/session"
	"github.com/damsoledevelopers/spireleap-console/pkg/db/models"
	"github.com/damsoledevelopers/spireleap-console/pkg/enums"
	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
	"github.com/damsoledevelopers/spireleap-console/pkg/pagination"
	"github.com/damsoledevelopers/spireleap-console/pkg/types"
)

func withSession(req *http.Request, role enums.UserRole, matrix string) *http.Request {
	sess := &session.Record{
		ID:                "s1",
		UserID:            "u1",
		Role:              role,
		Permissions:       json.RawMessage(matrix),
		PermissionsLoaded: true,
	}
	return req.WithContext(middleware.WithSession(req.Context(), sess))
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) types.APIError {
	t.Helper()
	var env types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env.Error
}

func TestAuthCheckAnswersFromSessionMatrix(t *testing.T) {
	handler := AuthCheck(nil)

	req := withSession(httptest.NewRequest(http.MethodGet, "/check?module=leads&action=view", nil), enums.UserRoleAgent, `{"leads":{"view":true}}`)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"allowed":true`)

	req = withSession(httptest.NewRequest(http.MethodGet, "/check?module=leads&action=delete", nil), enums.UserRoleAgent, `{"leads":{"view":true}}`)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"allowed":false`)

	req = withSession(httptest.NewRequest(http.MethodGet, "/check?module=leads&action=approve", nil), enums.UserRoleAgent, `{}`)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	assert.Equal(t, pkgerrors.MetadataFor(pkgerrors.CodeValidation).HTTPStatus, resp.Code)
}

func TestAuthMeRequiresSession(t *testing.T) {
	resp := httptest.NewRecorder()
	AuthMe(nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestPermissionsOpenRoleScopeIsSuperAdminOnly(t *testing.T) {
	handler := PermissionsOpen(nil, nil)

	req := withSession(httptest.NewRequest(http.MethodGet, "/editor?type=role&role=agent", nil),
		enums.UserRoleAgencyAdmin, `{"permissions":{"view":true,"edit":true}}`)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	require.Equal(t, http.StatusForbidden, resp.Code)

	apiErr := decodeError(t, resp)
	details, _ := apiErr.Details.(map[string]any)
	assert.Equal(t, "/agency/dashboard", details["redirect"])
}

func TestPermissionsOpenRejectsUnknownScope(t *testing.T) {
	req := withSession(httptest.NewRequest(http.MethodGet, "/editor?type=team&id=1", nil), enums.UserRoleSuperAdmin, `{}`)
	resp := httptest.NewRecorder()
	PermissionsOpen(nil, nil).ServeHTTP(resp, req)
	assert.Equal(t, pkgerrors.MetadataFor(pkgerrors.CodeValidation).HTTPStatus, resp.Code)
}

type duplicateLeads struct {
	leads.Service
}

func (duplicateLeads) Create(context.Context, *session.Record, forms.LeadForm) (*leads.CreateResult, error) {
	return &leads.CreateResult{
		DraftID:    "d1",
		Duplicates: []leads.DuplicateView{{ID: "l7", Name: "Ada Lovelace", Link: "/admin/leads/l7"}},
	}, nil
}

func TestLeadCreateWithDuplicatesReturnsDraft(t *testing.T) {
	req := withSession(httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader(`{"contact":{"firstName":"Ada"}}`)), enums.UserRoleAgent, `{}`)
	resp := httptest.NewRecorder()
	LeadCreate(duplicateLeads{}, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	var env struct {
		Data leads.CreateResult `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.Equal(t, "d1", env.Data.DraftID)
	assert.Len(t, env.Data.Duplicates, 1)
}

func TestLeadCreateRejectsUnknownFields(t *testing.T) {
	req := withSession(httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader(`{"bogus":1}`)), enums.UserRoleAgent, `{}`)
	resp := httptest.NewRecorder()
	LeadCreate(duplicateLeads{}, nil).ServeHTTP(resp, req)
	assert.Equal(t, pkgerrors.MetadataFor(pkgerrors.CodeValidation).HTTPStatus, resp.Code)
}

type stubAudit struct {
	filter audit.Filter
}

func (s *stubAudit) List(_ context.Context, filter audit.Filter) ([]models.AuditEvent, pagination.Meta, error) {
	s.filter = filter
	return nil, pagination.Meta{Current: filter.Page}, nil
}

func TestAuditListPassesFilters(t *testing.T) {
	repo := &stubAudit{}
	req := httptest.NewRequest(http.MethodGet, "/audit?page=2&limit=5&resource=lead&action=delete", nil)
	resp := httptest.NewRecorder()
	AuditList(repo, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, audit.Filter{Page: 2, Limit: 5, Resource: "lead", Action: "delete"}, repo.filter)
	assert.Contains(t, resp.Body.String(), `"items":[]`)
}

func TestAuditListRejectsOversizedLimit(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/audit?limit=1000", nil)
	resp := httptest.NewRecorder()
	AuditList(&stubAudit{}, nil).ServeHTTP(resp, req)
	assert.Equal(t, pkgerrors.MetadataFor(pkgerrors.CodeValidation).HTTPStatus, resp.Code)
}

func TestViewIndexListsOnlyPermittedViews(t *testing.T) {
	req := withSession(httptest.NewRequest(http.MethodGet, "/views", nil), enums.UserRoleAgent,
		`{"leads":{"view":true},"agents":{"view":true},"users":{"view":false}}`)
	resp := httptest.NewRecorder()
	ViewIndex(nil).ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)

	var env struct {
		Data struct {
			Views []ViewInfo `json:"views"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	require.Len(t, env.Data.Views, 2)
	assert.Equal(t, "agents", env.Data.Views[0].Key)
	assert.True(t, env.Data.Views[0].ClientSort)
	assert.Equal(t, "leads", env.Data.Views[1].Key)
	assert.Contains(t, env.Data.Views[1].Filters, "priority")
	assert.Contains(t, env.Data.Views[1].Sortable, "score")
}

func TestViewIndexSuperAdminSeesEveryView(t *testing.T) {
	req := withSession(httptest.NewRequest(http.MethodGet, "/views", nil), enums.UserRoleSuperAdmin, `{}`)
	resp := httptest.NewRecorder()
	ViewIndex(nil).ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 7, strings.Count(resp.Body.String(), `"key"`))
}
