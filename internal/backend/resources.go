package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
)

func decodeError(err error, message string) error {
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
}

func escape(id string) string {
	return url.PathEscape(id)
}

// List fetches one page of a list endpoint. collection is the key the CRM
// puts the items under ("users", "leads", ...).
func (c *Client) List(ctx context.Context, token, path, collection string, query url.Values, fallback string) (Page, error) {
	env := envelope{}
	if err := c.Do(ctx, Request{
		Operation: collection + ".list",
		Path:      path,
		Query:     query,
		Token:     token,
		Fallback:  fallback,
	}, &env); err != nil {
		return Page{}, err
	}
	page, err := env.page(collection)
	if err != nil {
		return Page{}, decodeError(err, fallback)
	}
	return page, nil
}

// getOne loads a single entity from path into out.
func (c *Client) getOne(ctx context.Context, op, token, path, key, fallback string, out any) error {
	env := envelope{}
	if err := c.Do(ctx, Request{Operation: op, Path: path, Token: token, Fallback: fallback}, &env); err != nil {
		return err
	}
	if err := env.pick(out, key); err != nil {
		return decodeError(err, fallback)
	}
	return nil
}

// write sends body with method and decodes the entity under key into out.
func (c *Client) write(ctx context.Context, op, method, token, path string, body any, key, fallback string, out any) error {
	env := envelope{}
	if err := c.Do(ctx, Request{Operation: op, Method: method, Path: path, Body: body, Token: token, Fallback: fallback}, &env); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := env.pick(out, key); err != nil {
		return decodeError(err, fallback)
	}
	return nil
}

// Users

func (c *Client) GetUser(ctx context.Context, token, id string) (*User, error) {
	var out User
	err := c.getOne(ctx, "users.get", token, "/users/"+escape(id), "user", "Failed to load user", &out)
	return &out, err
}

func (c *Client) CreateUser(ctx context.Context, token string, payload any) (*User, error) {
	var out User
	err := c.write(ctx, "users.create", http.MethodPost, token, "/users", payload, "user", "Failed to create user", &out)
	return &out, err
}

func (c *Client) UpdateUser(ctx context.Context, token, id string, payload any) (*User, error) {
	var out User
	err := c.write(ctx, "users.update", http.MethodPut, token, "/users/"+escape(id), payload, "user", "Failed to update user", &out)
	return &out, err
}

func (c *Client) SetUserStatus(ctx context.Context, token, id string, active bool) error {
	body := map[string]bool{"isActive": active}
	return c.write(ctx, "users.status", http.MethodPut, token, "/users/"+escape(id)+"/status", body, "", "Failed to update user status", nil)
}

func (c *Client) DeleteUser(ctx context.Context, token, id string) error {
	return c.write(ctx, "users.delete", http.MethodDelete, token, "/users/"+escape(id), nil, "", "Failed to delete user", nil)
}

// Permissions. path is one of /permissions/:role, /agencies/:id/permissions
// or /users/:id/permissions.

func (c *Client) GetPermissions(ctx context.Context, token, path string) (PermissionMatrix, error) {
	out := PermissionMatrix{}
	if err := c.getOne(ctx, "permissions.get", token, path, "permissions", "Failed to load permissions", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) PutPermissions(ctx context.Context, token, path string, matrix PermissionMatrix) error {
	body := map[string]any{"permissions": matrix}
	return c.write(ctx, "permissions.save", http.MethodPut, token, path, body, "", "Failed to save permissions", nil)
}

// Leads

// LeadCreateResult carries either the created lead or the duplicates that
// stopped it.
type LeadCreateResult struct {
	Lead       *Lead
	Duplicates []Duplicate
}

func (c *Client) GetLead(ctx context.Context, token, id string) (*Lead, error) {
	var out Lead
	err := c.getOne(ctx, "leads.get", token, "/leads/"+escape(id), "lead", "Failed to load lead", &out)
	return &out, err
}

func (c *Client) CreateLead(ctx context.Context, token string, payload any) (*LeadCreateResult, error) {
	env := envelope{}
	if err := c.Do(ctx, Request{
		Operation: "leads.create",
		Method:    http.MethodPost,
		Path:      "/leads",
		Body:      payload,
		Token:     token,
		Fallback:  "Failed to create lead",
	}, &env); err != nil {
		return nil, err
	}
	result := &LeadCreateResult{}
	if env.has("duplicates") {
		if err := env.pick(&result.Duplicates, "duplicates"); err != nil {
			return nil, decodeError(err, "Failed to create lead")
		}
		if len(result.Duplicates) > 0 {
			return result, nil
		}
	}
	var lead Lead
	if err := env.pick(&lead, "lead"); err != nil {
		return nil, decodeError(err, "Failed to create lead")
	}
	// A reply without an id created nothing.
	if lead.ID != "" {
		result.Lead = &lead
	}
	return result, nil
}

func (c *Client) UpdateLead(ctx context.Context, token, id string, payload any) (*Lead, error) {
	var out Lead
	err := c.write(ctx, "leads.update", http.MethodPut, token, "/leads/"+escape(id), payload, "lead", "Failed to update lead", &out)
	return &out, err
}

func (c *Client) DeleteLead(ctx context.Context, token, id string) error {
	return c.write(ctx, "leads.delete", http.MethodDelete, token, "/leads/"+escape(id), nil, "", "Failed to delete lead", nil)
}

// Properties

func (c *Client) GetProperty(ctx context.Context, token, id string) (*Property, error) {
	var out Property
	err := c.getOne(ctx, "properties.get", token, "/properties/"+escape(id), "property", "Failed to load property", &out)
	return &out, err
}

func (c *Client) CreateProperty(ctx context.Context, token string, payload any) (*Property, error) {
	var out Property
	err := c.write(ctx, "properties.create", http.MethodPost, token, "/properties", payload, "property", "Failed to create property", &out)
	return &out, err
}

func (c *Client) UpdateProperty(ctx context.Context, token, id string, payload any) (*Property, error) {
	var out Property
	err := c.write(ctx, "properties.update", http.MethodPut, token, "/properties/"+escape(id), payload, "property", "Failed to update property", &out)
	return &out, err
}

// ApproveProperty approves or rejects a pending listing.
func (c *Client) ApproveProperty(ctx context.Context, token, id string, approve bool, reason string) error {
	body := map[string]any{"approved": approve}
	if reason != "" {
		body["rejectionReason"] = reason
	}
	fallback := "Failed to approve property"
	if !approve {
		fallback = "Failed to reject property"
	}
	return c.write(ctx, "properties.approve", http.MethodPut, token, "/properties/"+escape(id)+"/approve", body, "", fallback, nil)
}

func (c *Client) SetPropertyStatus(ctx context.Context, token, id, status string) error {
	body := map[string]string{"status": status}
	return c.write(ctx, "properties.status", http.MethodPut, token, "/properties/"+escape(id)+"/status", body, "", "Failed to update property status", nil)
}

func (c *Client) CompareProperties(ctx context.Context, token string, ids []string) ([]Property, error) {
	var out []Property
	body := map[string][]string{"propertyIds": ids}
	err := c.write(ctx, "properties.compare", http.MethodPost, token, "/properties/compare", body, "properties", "Failed to compare properties", &out)
	return out, err
}

// Subscriptions

func (c *Client) GetSubscription(ctx context.Context, token, id string) (*Subscription, error) {
	var out Subscription
	err := c.getOne(ctx, "subscriptions.get", token, "/subscriptions/"+escape(id), "subscription", "Failed to load subscription", &out)
	return &out, err
}

func (c *Client) SubscriptionsForUser(ctx context.Context, token, userID string) ([]Subscription, error) {
	var out []Subscription
	err := c.getOne(ctx, "subscriptions.user", token, "/subscriptions/user/"+escape(userID), "subscriptions", "Failed to load subscriptions", &out)
	return out, err
}

func (c *Client) ToggleSubscription(ctx context.Context, token, id string, active bool) (*Subscription, error) {
	var out Subscription
	body := map[string]bool{"isActive": active}
	err := c.write(ctx, "subscriptions.toggle", http.MethodPatch, token, "/subscriptions/"+escape(id), body, "subscription", "Failed to update subscription", &out)
	return &out, err
}

func (c *Client) DeleteSubscription(ctx context.Context, token, id string) error {
	return c.write(ctx, "subscriptions.delete", http.MethodDelete, token, "/subscriptions/"+escape(id), nil, "", "Failed to delete subscription", nil)
}

// Transactions

func (c *Client) Revenue(ctx context.Context, token string, query url.Values) (map[string]any, error) {
	out := map[string]any{}
	env := envelope{}
	if err := c.Do(ctx, Request{
		Operation: "transactions.revenue",
		Path:      "/transactions/analytics/revenue",
		Query:     query,
		Token:     token,
		Fallback:  "Failed to load revenue analytics",
	}, &env); err != nil {
		return nil, err
	}
	if err := env.pick(&out, "analytics", "revenue"); err != nil {
		return nil, decodeError(err, "Failed to load revenue analytics")
	}
	return out, nil
}

// Agencies

func (c *Client) GetAgency(ctx context.Context, token, id string) (*Agency, error) {
	var out Agency
	err := c.getOne(ctx, "agencies.get", token, "/agencies/"+escape(id), "agency", "Failed to load agency", &out)
	return &out, err
}

func (c *Client) UpdateAgency(ctx context.Context, token, id string, payload any) (*Agency, error) {
	var out Agency
	err := c.write(ctx, "agencies.update", http.MethodPut, token, "/agencies/"+escape(id), payload, "agency", "Failed to update agency", &out)
	return &out, err
}

func (c *Client) AgencyStats(ctx context.Context, token, id string) (map[string]any, error) {
	out := map[string]any{}
	err := c.getOne(ctx, "agencies.stats", token, fmt.Sprintf("/agencies/%s/stats", escape(id)), "stats", "Failed to load agency stats", &out)
	return out, err
}

// Settings and stats

func (c *Client) GetSettings(ctx context.Context, token string) (map[string]any, error) {
	out := map[string]any{}
	err := c.getOne(ctx, "settings.get", token, "/settings", "settings", "Failed to load settings", &out)
	return out, err
}

func (c *Client) UpdateSettings(ctx context.Context, token string, payload map[string]any) (map[string]any, error) {
	out := map[string]any{}
	err := c.write(ctx, "settings.update", http.MethodPut, token, "/settings", payload, "settings", "Failed to save settings", &out)
	return out, err
}

func (c *Client) DashboardStats(ctx context.Context, token string) (map[string]any, error) {
	out := map[string]any{}
	err := c.getOne(ctx, "stats.dashboard", token, "/stats/dashboard", "stats", "Failed to load dashboard metrics", &out)
	return out, err
}

func (c *Client) CustomerStats(ctx context.Context, token string) (map[string]any, error) {
	out := map[string]any{}
	err := c.getOne(ctx, "stats.customer", token, "/stats/customer", "stats", "Failed to load customer metrics", &out)
	return out, err
}

// Uploads

func (c *Client) UploadProfileImage(ctx context.Context, token string, file File) (string, error) {
	env := envelope{}
	req := Request{Operation: "upload.profile", Path: "/upload/profile-image", Token: token, Fallback: "Failed to upload image"}
	if err := c.Upload(ctx, req, "image", []File{file}, &env); err != nil {
		return "", err
	}
	var location string
	if err := env.pick(&location, "url", "imageUrl"); err != nil {
		return "", decodeError(err, "Failed to upload image")
	}
	return location, nil
}

func (c *Client) UploadPropertyImages(ctx context.Context, token string, files []File) ([]string, error) {
	env := envelope{}
	req := Request{Operation: "upload.property", Path: "/upload/property-images", Token: token, Fallback: "Failed to upload images"}
	if err := c.Upload(ctx, req, "images", files, &env); err != nil {
		return nil, err
	}
	var urls []string
	if err := env.pick(&urls, "urls", "images"); err != nil {
		return nil, decodeError(err, "Failed to upload images")
	}
	return urls, nil
}
