package forms

import (
	"github.com/damsoledevelopers/spireleap-console/internal/backend"
	"github.com/damsoledevelopers/spireleap-console/pkg/enums"
	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
	"github.com/shopspring/decimal"
)

type ContactForm struct {
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone"`
	Address   AddressForm `json:"address"`
}

type InquiryForm struct {
	PropertyType       string   `json:"propertyType"`
	BudgetMin          string   `json:"budgetMin"`
	BudgetMax          string   `json:"budgetMax"`
	PreferredLocations []string `json:"preferredLocations"`
	Requirements       string   `json:"requirements"`
}

// LeadForm is the raw create/edit lead form.
type LeadForm struct {
	Contact       ContactForm `json:"contact"`
	Inquiry       InquiryForm `json:"inquiry"`
	Status        string      `json:"status"`
	Priority      string      `json:"priority"`
	Source        string      `json:"source"`
	CampaignName  string      `json:"campaignName"`
	Property      string      `json:"property"`
	Agency        string      `json:"agency"`
	AssignedAgent string      `json:"assignedAgent"`
	Tags          []string    `json:"tags"`
	Notes         string      `json:"notes"`
}

func (f LeadForm) WithContact(c ContactForm) LeadForm {
	f.Contact = c
	return f
}

func (f LeadForm) WithAddress(a AddressForm) LeadForm {
	f.Contact.Address = a
	return f
}

func (f LeadForm) WithBudget(low, high string) LeadForm {
	f.Inquiry.BudgetMin = low
	f.Inquiry.BudgetMax = high
	return f
}

type ContactPayload struct {
	FirstName string           `json:"firstName" validate:"required" label:"First name"`
	LastName  string           `json:"lastName,omitempty"`
	Email     string           `json:"email,omitempty" validate:"required_without=Phone,omitempty,email" label:"Email"`
	Phone     string           `json:"phone,omitempty" label:"Phone"`
	Address   *backend.Address `json:"address,omitempty"`
}

type BudgetPayload struct {
	Min *decimal.Decimal `json:"min,omitempty"`
	Max *decimal.Decimal `json:"max,omitempty"`
}

type InquiryPayload struct {
	PropertyType       string         `json:"propertyType,omitempty"`
	Budget             *BudgetPayload `json:"budget,omitempty"`
	PreferredLocations []string       `json:"preferredLocations,omitempty"`
	Requirements       string         `json:"requirements,omitempty"`
}

// LeadPayload is the cleaned body sent to the CRM.
type LeadPayload struct {
	Contact       ContactPayload     `json:"contact"`
	Inquiry       *InquiryPayload    `json:"inquiry,omitempty"`
	Status        enums.LeadStatus   `json:"status,omitempty"`
	Priority      enums.LeadPriority `json:"priority,omitempty"`
	Source        string             `json:"source,omitempty"`
	CampaignName  string             `json:"campaignName,omitempty"`
	Property      string             `json:"property,omitempty"`
	Agency        string             `json:"agency,omitempty"`
	AssignedAgent string             `json:"assignedAgent,omitempty"`
	Tags          []string           `json:"tags,omitempty"`
	Notes         string             `json:"notes,omitempty"`
}

func (f LeadForm) Clean() (LeadPayload, error) {
	out := LeadPayload{
		Contact: ContactPayload{
			FirstName: trim(f.Contact.FirstName),
			LastName:  trim(f.Contact.LastName),
			Email:     trim(f.Contact.Email),
			Phone:     trim(f.Contact.Phone),
			Address:   f.Contact.Address.Clean(),
		},
		Source:        trim(f.Source),
		CampaignName:  trim(f.CampaignName),
		Property:      trim(f.Property),
		Agency:        trim(f.Agency),
		AssignedAgent: trim(f.AssignedAgent),
		Tags:          list(f.Tags),
		Notes:         trim(f.Notes),
	}
	if err := Check(out); err != nil {
		return LeadPayload{}, err
	}
	if status := trim(f.Status); status != "" {
		parsed, err := enums.ParseLeadStatus(status)
		if err != nil {
			return LeadPayload{}, pkgerrors.New(pkgerrors.CodeValidation, "Please select a valid status")
		}
		out.Status = parsed
	}
	if priority := trim(f.Priority); priority != "" {
		parsed, err := enums.ParseLeadPriority(priority)
		if err != nil {
			return LeadPayload{}, pkgerrors.New(pkgerrors.CodeValidation, "Please select a valid priority")
		}
		out.Priority = parsed
	}

	inquiry, err := f.Inquiry.clean()
	if err != nil {
		return LeadPayload{}, err
	}
	out.Inquiry = inquiry
	return out, nil
}

func (i InquiryForm) clean() (*InquiryPayload, error) {
	low, err := money("Minimum budget", i.BudgetMin)
	if err != nil {
		return nil, err
	}
	high, err := money("Maximum budget", i.BudgetMax)
	if err != nil {
		return nil, err
	}
	if low != nil && high != nil && low.GreaterThan(*high) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Minimum budget cannot exceed maximum budget")
	}
	out := InquiryPayload{
		PropertyType:       trim(i.PropertyType),
		PreferredLocations: list(i.PreferredLocations),
		Requirements:       trim(i.Requirements),
	}
	if low != nil || high != nil {
		out.Budget = &BudgetPayload{Min: low, Max: high}
	}
	if out.PropertyType == "" && out.Budget == nil && len(out.PreferredLocations) == 0 && out.Requirements == "" {
		return nil, nil
	}
	return &out, nil
}

func (p LeadPayload) ToForm() LeadForm {
	f := LeadForm{
		Contact: ContactForm{
			FirstName: p.Contact.FirstName,
			LastName:  p.Contact.LastName,
			Email:     p.Contact.Email,
			Phone:     p.Contact.Phone,
			Address:   addressForm(p.Contact.Address),
		},
		Status:        string(p.Status),
		Priority:      string(p.Priority),
		Source:        p.Source,
		CampaignName:  p.CampaignName,
		Property:      p.Property,
		Agency:        p.Agency,
		AssignedAgent: p.AssignedAgent,
		Tags:          append([]string(nil), p.Tags...),
		Notes:         p.Notes,
	}
	if in := p.Inquiry; in != nil {
		f.Inquiry = InquiryForm{
			PropertyType:       in.PropertyType,
			PreferredLocations: append([]string(nil), in.PreferredLocations...),
			Requirements:       in.Requirements,
		}
		if in.Budget != nil {
			f.Inquiry.BudgetMin = formatMoney(in.Budget.Min)
			f.Inquiry.BudgetMax = formatMoney(in.Budget.Max)
		}
	}
	return f
}

// LeadFormFrom fills the edit form from a stored lead.
func LeadFormFrom(l backend.Lead) LeadForm {
	return LeadPayload{
		Contact: ContactPayload{
			FirstName: l.Contact.FirstName,
			LastName:  l.Contact.LastName,
			Email:     l.Contact.Email,
			Phone:     l.Contact.Phone,
			Address:   l.Contact.Address,
		},
		Status:        l.Status,
		Priority:      l.Priority,
		Source:        l.Source,
		CampaignName:  l.CampaignName,
		Property:      refID(l.Property),
		Agency:        refID(l.Agency),
		AssignedAgent: refID(l.AssignedAgent),
		Tags:          l.Tags,
	}.ToForm()
}
