package backend

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/damsoledevelopers/spireleap-console/pkg/enums"
	"github.com/damsoledevelopers/spireleap-console/pkg/pagination"
	"github.com/shopspring/decimal"
)

// Ref is a relation that the CRM returns either as a bare id or as a
// populated object.
type Ref struct {
	ID        string `json:"_id"`
	Name      string `json:"name,omitempty"`
	Title     string `json:"title,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
}

func (r *Ref) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*r = Ref{}
		return nil
	}
	if trimmed[0] == '"' {
		var id string
		if err := json.Unmarshal(trimmed, &id); err != nil {
			return err
		}
		*r = Ref{ID: id}
		return nil
	}
	type plain Ref
	var out plain
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return err
	}
	*r = Ref(out)
	return nil
}

func (r Ref) MarshalJSON() ([]byte, error) {
	if r.Name == "" && r.Title == "" && r.FirstName == "" && r.LastName == "" && r.Email == "" {
		if r.ID == "" {
			return []byte("null"), nil
		}
		return json.Marshal(r.ID)
	}
	type plain Ref
	return json.Marshal(plain(r))
}

// DisplayName picks the most human label available.
func (r Ref) DisplayName() string {
	if full := strings.TrimSpace(r.FirstName + " " + r.LastName); full != "" {
		return full
	}
	if r.Name != "" {
		return r.Name
	}
	if r.Title != "" {
		return r.Title
	}
	return r.ID
}

type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
}

type AgentInfo struct {
	LicenseNumber     string           `json:"licenseNumber,omitempty"`
	Bio               string           `json:"bio,omitempty"`
	YearsOfExperience *int             `json:"yearsOfExperience,omitempty"`
	CommissionRate    *decimal.Decimal `json:"commissionRate,omitempty"`
	TotalSales        int              `json:"totalSales,omitempty"`
	TotalLeads        int              `json:"totalLeads,omitempty"`
	Rating            float64          `json:"rating,omitempty"`
}

type User struct {
	ID           string         `json:"_id"`
	FirstName    string         `json:"firstName"`
	LastName     string         `json:"lastName"`
	Email        string         `json:"email"`
	Phone        string         `json:"phone,omitempty"`
	Role         enums.UserRole `json:"role"`
	IsActive     bool           `json:"isActive"`
	Agency       *Ref           `json:"agency,omitempty"`
	Address      *Address       `json:"address,omitempty"`
	AgentInfo    *AgentInfo     `json:"agentInfo,omitempty"`
	ProfileImage string         `json:"profileImage,omitempty"`
	CreatedAt    *time.Time     `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time     `json:"updatedAt,omitempty"`
}

// AgencyID returns the id of the user's agency, if any.
func (u User) AgencyID() string {
	if u.Agency == nil {
		return ""
	}
	return u.Agency.ID
}

type Contact struct {
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName,omitempty"`
	Email     string   `json:"email,omitempty"`
	Phone     string   `json:"phone,omitempty"`
	Address   *Address `json:"address,omitempty"`
}

type Lead struct {
	ID            string             `json:"_id"`
	LeadID        string             `json:"leadId,omitempty"`
	Contact       Contact            `json:"contact"`
	Status        enums.LeadStatus   `json:"status"`
	Priority      enums.LeadPriority `json:"priority,omitempty"`
	Source        string             `json:"source,omitempty"`
	CampaignName  string             `json:"campaignName,omitempty"`
	Property      *Ref               `json:"property,omitempty"`
	Agency        *Ref               `json:"agency,omitempty"`
	AssignedAgent *Ref               `json:"assignedAgent,omitempty"`
	Score         *float64           `json:"score,omitempty"`
	SLA           json.RawMessage    `json:"sla,omitempty"`
	Tags          []string           `json:"tags,omitempty"`
	CreatedAt     *time.Time         `json:"createdAt,omitempty"`
}

// Duplicate is a candidate existing lead reported on create.
type Duplicate struct {
	ID      string  `json:"_id"`
	LeadID  string  `json:"leadId,omitempty"`
	Contact Contact `json:"contact"`
}

type RentPrice struct {
	Amount decimal.Decimal  `json:"amount"`
	Period enums.RentPeriod `json:"period,omitempty"`
}

type Price struct {
	Sale     *decimal.Decimal `json:"sale,omitempty"`
	Rent     *RentPrice       `json:"rent,omitempty"`
	Currency string           `json:"currency,omitempty"`
}

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Location struct {
	Address     string       `json:"address,omitempty"`
	City        string       `json:"city,omitempty"`
	State       string       `json:"state,omitempty"`
	Country     string       `json:"country,omitempty"`
	ZipCode     string       `json:"zipCode,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

type Specifications struct {
	Bedrooms  *int     `json:"bedrooms,omitempty"`
	Bathrooms *int     `json:"bathrooms,omitempty"`
	Area      *float64 `json:"area,omitempty"`
	Parking   *int     `json:"parking,omitempty"`
	Floors    *int     `json:"floors,omitempty"`
	YearBuilt *int     `json:"yearBuilt,omitempty"`
}

type Image struct {
	URL       string `json:"url"`
	IsPrimary bool   `json:"isPrimary"`
	Caption   string `json:"caption,omitempty"`
}

type Property struct {
	ID             string               `json:"_id"`
	Title          string               `json:"title"`
	Description    string               `json:"description,omitempty"`
	PropertyType   string               `json:"propertyType,omitempty"`
	ListingType    enums.ListingType    `json:"listingType"`
	Price          Price                `json:"price"`
	Location       Location             `json:"location"`
	Specifications Specifications       `json:"specifications"`
	Category       *Ref                 `json:"category,omitempty"`
	Amenities      []string             `json:"amenities,omitempty"`
	Images         []Image              `json:"images,omitempty"`
	Status         enums.PropertyStatus `json:"status"`
	Agency         *Ref                 `json:"agency,omitempty"`
	Agent          *Ref                 `json:"agent,omitempty"`
	Featured       bool                 `json:"featured"`
	Trending       bool                 `json:"trending"`
	CreatedAt      *time.Time           `json:"createdAt,omitempty"`
}

type Plan struct {
	Name  string          `json:"plan_name"`
	Price decimal.Decimal `json:"price"`
}

type Subscription struct {
	ID        string     `json:"_id"`
	User      *Ref       `json:"user,omitempty"`
	Plan      Plan       `json:"plan"`
	Provider  string     `json:"provider,omitempty"`
	IsActive  bool       `json:"isActive"`
	StartedAt *time.Time `json:"startedAt,omitempty"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
}

type Transaction struct {
	ID              string                  `json:"_id"`
	Property        *Ref                    `json:"property,omitempty"`
	Lead            *Ref                    `json:"lead,omitempty"`
	Agent           *Ref                    `json:"agent,omitempty"`
	Type            enums.TransactionType   `json:"type"`
	Amount          decimal.Decimal         `json:"amount"`
	Status          enums.TransactionStatus `json:"status"`
	TransactionDate *time.Time              `json:"transactionDate,omitempty"`
}

type Agency struct {
	ID       string          `json:"_id"`
	Name     string          `json:"name"`
	Email    string          `json:"email,omitempty"`
	Phone    string          `json:"phone,omitempty"`
	Address  *Address        `json:"address,omitempty"`
	IsActive bool            `json:"isActive"`
	Settings json.RawMessage `json:"settings,omitempty"`
}

// Actions is one row of a permission matrix.
type Actions struct {
	View   bool `json:"view"`
	Create bool `json:"create"`
	Edit   bool `json:"edit"`
	Delete bool `json:"delete"`
}

// PermissionMatrix maps module name to its allowed actions.
type PermissionMatrix map[string]Actions

// Page is one page of a list endpoint with items kept as raw objects so the
// console forwards every field the backend sends.
type Page struct {
	Items      []map[string]any `json:"items"`
	Pagination pagination.Meta  `json:"pagination"`
}
