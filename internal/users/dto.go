package users

import (
	"strings"
	"time"

	"github.com/damsoledevelopers/spireleap-console/internal/backend"
	"github.com/damsoledevelopers/spireleap-console/internal/forms"
	"github.com/damsoledevelopers/spireleap-console/pkg/enums"
)

// UserDTO is the detail-page shape: the stored profile plus the prefilled
// edit form.
type UserDTO struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	Phone        string         `json:"phone,omitempty"`
	Role         enums.UserRole `json:"role"`
	IsActive     bool           `json:"isActive"`
	Agency       *backend.Ref   `json:"agency,omitempty"`
	ProfileImage string         `json:"profileImage,omitempty"`
	CreatedAt    *time.Time     `json:"createdAt,omitempty"`
	Self         bool           `json:"self"`
	Form         forms.UserForm `json:"form"`
}

// FromBackend builds the DTO. self marks the caller's own account, for
// which the status toggle and delete action are hidden.
func FromBackend(u *backend.User, self bool) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:           u.ID,
		Name:         strings.TrimSpace(u.FirstName + " " + u.LastName),
		Email:        u.Email,
		Phone:        u.Phone,
		Role:         u.Role,
		IsActive:     u.IsActive,
		Agency:       u.Agency,
		ProfileImage: u.ProfileImage,
		CreatedAt:    u.CreatedAt,
		Self:         self,
		Form:         forms.UserFormFrom(*u),
	}
}
