package forms

import (
	"strings"

	"github.com/damsoledevelopers/spireleap-console/internal/backend"
	"github.com/damsoledevelopers/spireleap-console/pkg/enums"
	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
	"github.com/shopspring/decimal"
)

type AgentInfoForm struct {
	LicenseNumber     string   `json:"licenseNumber"`
	Bio               string   `json:"bio"`
	YearsOfExperience string   `json:"yearsOfExperience"`
	CommissionRate    string   `json:"commissionRate"`
	Specializations   []string `json:"specializations"`
}

// UserForm is the admin "Add User" and edit-user form.
type UserForm struct {
	FirstName string        `json:"firstName"`
	LastName  string        `json:"lastName"`
	Email     string        `json:"email"`
	Password  string        `json:"password"`
	Phone     string        `json:"phone"`
	Role      string        `json:"role"`
	Agency    string        `json:"agency"`
	IsActive  *bool         `json:"isActive"`
	Address   AddressForm   `json:"address"`
	AgentInfo AgentInfoForm `json:"agentInfo"`
}

func (f UserForm) WithAddress(a AddressForm) UserForm {
	f.Address = a
	return f
}

func (f UserForm) WithAgentInfo(a AgentInfoForm) UserForm {
	f.AgentInfo = a
	return f
}

type AgentInfoPayload struct {
	LicenseNumber     string           `json:"licenseNumber,omitempty"`
	Bio               string           `json:"bio,omitempty"`
	YearsOfExperience *int             `json:"yearsOfExperience,omitempty"`
	CommissionRate    *decimal.Decimal `json:"commissionRate,omitempty"`
	Specializations   []string         `json:"specializations,omitempty"`
}

type UserPayload struct {
	FirstName string            `json:"firstName" validate:"required" label:"First name"`
	LastName  string            `json:"lastName" validate:"required" label:"Last name"`
	Email     string            `json:"email" validate:"required,email" label:"Email"`
	Password  string            `json:"password,omitempty"`
	Phone     string            `json:"phone,omitempty"`
	Role      enums.UserRole    `json:"role"`
	Agency    string            `json:"agency,omitempty"`
	IsActive  *bool             `json:"isActive,omitempty"`
	Address   *backend.Address  `json:"address,omitempty"`
	AgentInfo *AgentInfoPayload `json:"agentInfo,omitempty"`
}

// Clean validates the form. Agent details are only sent for agents.
func (f UserForm) Clean() (UserPayload, error) {
	out := UserPayload{
		FirstName: trim(f.FirstName),
		LastName:  trim(f.LastName),
		Email:     strings.ToLower(trim(f.Email)),
		Password:  f.Password,
		Phone:     trim(f.Phone),
		Agency:    trim(f.Agency),
		IsActive:  f.IsActive,
		Address:   f.Address.Clean(),
	}
	if err := Check(out); err != nil {
		return UserPayload{}, err
	}
	role, err := enums.ParseUserRole(trim(f.Role))
	if err != nil {
		return UserPayload{}, pkgerrors.New(pkgerrors.CodeValidation, "Please select a valid role")
	}
	out.Role = role
	if role == enums.UserRoleAgent {
		info, err := f.AgentInfo.clean()
		if err != nil {
			return UserPayload{}, err
		}
		out.AgentInfo = info
	}
	return out, nil
}

func (a AgentInfoForm) clean() (*AgentInfoPayload, error) {
	years, err := count("Years of experience", a.YearsOfExperience)
	if err != nil {
		return nil, err
	}
	rate, err := money("Commission rate", a.CommissionRate)
	if err != nil {
		return nil, err
	}
	if rate != nil && rate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Commission rate cannot exceed 100")
	}
	out := AgentInfoPayload{
		LicenseNumber:     trim(a.LicenseNumber),
		Bio:               trim(a.Bio),
		YearsOfExperience: years,
		CommissionRate:    rate,
		Specializations:   list(a.Specializations),
	}
	if out.LicenseNumber == "" && out.Bio == "" && years == nil && rate == nil && len(out.Specializations) == 0 {
		return nil, nil
	}
	return &out, nil
}

func (p UserPayload) ToForm() UserForm {
	f := UserForm{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		Password:  p.Password,
		Phone:     p.Phone,
		Role:      string(p.Role),
		Agency:    p.Agency,
		IsActive:  p.IsActive,
		Address:   addressForm(p.Address),
	}
	if a := p.AgentInfo; a != nil {
		f.AgentInfo = AgentInfoForm{
			LicenseNumber:     a.LicenseNumber,
			Bio:               a.Bio,
			YearsOfExperience: formatCount(a.YearsOfExperience),
			CommissionRate:    formatMoney(a.CommissionRate),
			Specializations:   append([]string(nil), a.Specializations...),
		}
	}
	return f
}

// UserFormFrom fills the edit form from a stored user. The password is
// never prefilled.
func UserFormFrom(u backend.User) UserForm {
	active := u.IsActive
	payload := UserPayload{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		Agency:    u.AgencyID(),
		IsActive:  &active,
		Address:   u.Address,
	}
	if a := u.AgentInfo; a != nil {
		payload.AgentInfo = &AgentInfoPayload{
			LicenseNumber:     a.LicenseNumber,
			Bio:               a.Bio,
			YearsOfExperience: a.YearsOfExperience,
			CommissionRate:    a.CommissionRate,
		}
	}
	return payload.ToForm()
}
