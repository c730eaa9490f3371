package auth

import (
	"github.com/damsoledevelopers/spireleap-console/internal/backend"
)

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AddressInput is the optional address block of the registration form.
type AddressInput struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	ZipCode string `json:"zipCode"`
}

// RegisterRequest is the sign-up form. ConfirmPassword never reaches the CRM.
type RegisterRequest struct {
	FirstName       string        `json:"firstName" validate:"required"`
	LastName        string        `json:"lastName" validate:"required"`
	Email           string        `json:"email" validate:"required,email"`
	Password        string        `json:"password" validate:"required,min=6"`
	ConfirmPassword string        `json:"confirmPassword" validate:"required"`
	Phone           string        `json:"phone"`
	Role            string        `json:"role"`
	Agency          string        `json:"agency"`
	Address         *AddressInput `json:"address"`
}

// Snapshot is the session context handed to the console UI.
type Snapshot struct {
	Token             string                   `json:"token,omitempty"`
	User              *backend.User            `json:"user"`
	Permissions       backend.PermissionMatrix `json:"permissions"`
	PermissionsLoaded bool                     `json:"permissionsLoaded"`
	Redirect          string                   `json:"redirect,omitempty"`
}

// emptySnapshot is what a reset session looks like: no user, no flags.
func emptySnapshot() *Snapshot {
	return &Snapshot{Permissions: backend.PermissionMatrix{}}
}
