package forms

import (
	"github.com/damsoledevelopers/spireleap-console/internal/backend"
	"github.com/damsoledevelopers/spireleap-console/pkg/enums"
	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
)

type RentForm struct {
	Amount string `json:"amount"`
	Period string `json:"period"`
}

type PriceForm struct {
	Sale     string   `json:"sale"`
	Rent     RentForm `json:"rent"`
	Currency string   `json:"currency"`
}

type LocationForm struct {
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	Country   string `json:"country"`
	ZipCode   string `json:"zipCode"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

type SpecificationsForm struct {
	Bedrooms  string `json:"bedrooms"`
	Bathrooms string `json:"bathrooms"`
	Area      string `json:"area"`
	Parking   string `json:"parking"`
	Floors    string `json:"floors"`
	YearBuilt string `json:"yearBuilt"`
}

// PropertyForm is the raw create/edit property form.
type PropertyForm struct {
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	PropertyType   string             `json:"propertyType"`
	ListingType    string             `json:"listingType"`
	Status         string             `json:"status"`
	Price          PriceForm          `json:"price"`
	Location       LocationForm       `json:"location"`
	Specifications SpecificationsForm `json:"specifications"`
	Category       string             `json:"category"`
	Agency         string             `json:"agency"`
	Agent          string             `json:"agent"`
	Amenities      []string           `json:"amenities"`
	Images         []backend.Image    `json:"images"`
	Featured       bool               `json:"featured"`
	Trending       bool               `json:"trending"`
}

func (f PropertyForm) WithListingType(t enums.ListingType) PropertyForm {
	f.ListingType = string(t)
	return f
}

func (f PropertyForm) WithSale(amount string) PropertyForm {
	f.Price.Sale = amount
	return f
}

func (f PropertyForm) WithRent(amount, period string) PropertyForm {
	f.Price.Rent = RentForm{Amount: amount, Period: period}
	return f
}

func (f PropertyForm) WithLocation(loc LocationForm) PropertyForm {
	f.Location = loc
	return f
}

func (f PropertyForm) WithSpecifications(specs SpecificationsForm) PropertyForm {
	f.Specifications = specs
	return f
}

// PropertyPayload is the cleaned body sent to the CRM.
type PropertyPayload struct {
	Title          string                  `json:"title" validate:"required" label:"Title"`
	Description    string                  `json:"description,omitempty"`
	PropertyType   string                  `json:"propertyType,omitempty"`
	ListingType    enums.ListingType       `json:"listingType"`
	Status         enums.PropertyStatus    `json:"status,omitempty"`
	Price          backend.Price           `json:"price"`
	Location       *backend.Location       `json:"location,omitempty"`
	Specifications *backend.Specifications `json:"specifications,omitempty"`
	Category       string                  `json:"category,omitempty"`
	Agency         string                  `json:"agency,omitempty"`
	Agent          string                  `json:"agent,omitempty"`
	Amenities      []string                `json:"amenities,omitempty"`
	Images         []backend.Image         `json:"images,omitempty"`
	Featured       bool                    `json:"featured"`
	Trending       bool                    `json:"trending"`
}

// Clean validates the form and builds the payload. The sale branch is only
// kept for sale/both listings and the rent branch only for rent/both.
func (f PropertyForm) Clean() (PropertyPayload, error) {
	out := PropertyPayload{
		Title:        trim(f.Title),
		Description:  trim(f.Description),
		PropertyType: trim(f.PropertyType),
		Category:     trim(f.Category),
		Agency:       trim(f.Agency),
		Agent:        trim(f.Agent),
		Amenities:    list(f.Amenities),
		Images:       NewImageSet(f.Images).Images(),
		Featured:     f.Featured,
		Trending:     f.Trending,
	}
	if err := Check(out); err != nil {
		return PropertyPayload{}, err
	}
	listing, err := enums.ParseListingType(trim(f.ListingType))
	if err != nil {
		return PropertyPayload{}, pkgerrors.New(pkgerrors.CodeValidation, "Please select a listing type")
	}
	out.ListingType = listing
	if status := trim(f.Status); status != "" {
		parsed, err := enums.ParsePropertyStatus(status)
		if err != nil {
			return PropertyPayload{}, pkgerrors.New(pkgerrors.CodeValidation, "Please select a valid status")
		}
		out.Status = parsed
	}

	if out.Price, err = f.Price.clean(listing); err != nil {
		return PropertyPayload{}, err
	}
	if out.Location, err = f.Location.clean(); err != nil {
		return PropertyPayload{}, err
	}
	if out.Specifications, err = f.Specifications.clean(); err != nil {
		return PropertyPayload{}, err
	}
	return out, nil
}

func (p PriceForm) clean(listing enums.ListingType) (backend.Price, error) {
	out := backend.Price{Currency: trim(p.Currency)}
	if listing.OffersSale() {
		sale, err := money("Sale price", p.Sale)
		if err != nil {
			return backend.Price{}, err
		}
		out.Sale = sale
	}
	if listing.OffersRent() {
		amount, err := money("Rent amount", p.Rent.Amount)
		if err != nil {
			return backend.Price{}, err
		}
		if amount != nil {
			rent := &backend.RentPrice{Amount: *amount}
			if period := trim(p.Rent.Period); period != "" {
				parsed, err := enums.ParseRentPeriod(period)
				if err != nil {
					return backend.Price{}, pkgerrors.New(pkgerrors.CodeValidation, "Please select a valid rent period")
				}
				rent.Period = parsed
			}
			out.Rent = rent
		}
	}
	return out, nil
}

func (l LocationForm) clean() (*backend.Location, error) {
	out := backend.Location{
		Address: trim(l.Address),
		City:    trim(l.City),
		State:   trim(l.State),
		Country: trim(l.Country),
		ZipCode: trim(l.ZipCode),
	}
	lat, err := coordinate("Latitude", l.Latitude, 90)
	if err != nil {
		return nil, err
	}
	lng, err := coordinate("Longitude", l.Longitude, 180)
	if err != nil {
		return nil, err
	}
	if (lat == nil) != (lng == nil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Latitude and longitude must be given together")
	}
	if lat != nil {
		out.Coordinates = &backend.Coordinates{Latitude: *lat, Longitude: *lng}
	}
	if out == (backend.Location{}) {
		return nil, nil
	}
	return &out, nil
}

func (s SpecificationsForm) clean() (*backend.Specifications, error) {
	var (
		out backend.Specifications
		err error
	)
	if out.Bedrooms, err = count("Bedrooms", s.Bedrooms); err != nil {
		return nil, err
	}
	if out.Bathrooms, err = count("Bathrooms", s.Bathrooms); err != nil {
		return nil, err
	}
	if out.Area, err = float("Area", s.Area); err != nil {
		return nil, err
	}
	if out.Parking, err = count("Parking", s.Parking); err != nil {
		return nil, err
	}
	if out.Floors, err = count("Floors", s.Floors); err != nil {
		return nil, err
	}
	if out.YearBuilt, err = count("Year built", s.YearBuilt); err != nil {
		return nil, err
	}
	if out == (backend.Specifications{}) {
		return nil, nil
	}
	return &out, nil
}

// ToForm renders a payload back into form inputs.
func (p PropertyPayload) ToForm() PropertyForm {
	f := PropertyForm{
		Title:        p.Title,
		Description:  p.Description,
		PropertyType: p.PropertyType,
		ListingType:  string(p.ListingType),
		Status:       string(p.Status),
		Category:     p.Category,
		Agency:       p.Agency,
		Agent:        p.Agent,
		Amenities:    append([]string(nil), p.Amenities...),
		Images:       append([]backend.Image(nil), p.Images...),
		Featured:     p.Featured,
		Trending:     p.Trending,
		Price:        PriceForm{Sale: formatMoney(p.Price.Sale), Currency: p.Price.Currency},
	}
	if p.Price.Rent != nil {
		amount := p.Price.Rent.Amount
		f.Price.Rent = RentForm{Amount: formatMoney(&amount), Period: string(p.Price.Rent.Period)}
	}
	if loc := p.Location; loc != nil {
		f.Location = LocationForm{Address: loc.Address, City: loc.City, State: loc.State, Country: loc.Country, ZipCode: loc.ZipCode}
		if loc.Coordinates != nil {
			f.Location.Latitude = formatFloat(&loc.Coordinates.Latitude)
			f.Location.Longitude = formatFloat(&loc.Coordinates.Longitude)
		}
	}
	if s := p.Specifications; s != nil {
		f.Specifications = SpecificationsForm{
			Bedrooms:  formatCount(s.Bedrooms),
			Bathrooms: formatCount(s.Bathrooms),
			Area:      formatFloat(s.Area),
			Parking:   formatCount(s.Parking),
			Floors:    formatCount(s.Floors),
			YearBuilt: formatCount(s.YearBuilt),
		}
	}
	return f
}

// PropertyFormFrom fills the edit form from a stored property.
func PropertyFormFrom(p backend.Property) PropertyForm {
	loc := p.Location
	specs := p.Specifications
	payload := PropertyPayload{
		Title:          p.Title,
		Description:    p.Description,
		PropertyType:   p.PropertyType,
		ListingType:    p.ListingType,
		Status:         p.Status,
		Price:          p.Price,
		Location:       &loc,
		Specifications: &specs,
		Category:       refID(p.Category),
		Agency:         refID(p.Agency),
		Agent:          refID(p.Agent),
		Amenities:      p.Amenities,
		Images:         p.Images,
		Featured:       p.Featured,
		Trending:       p.Trending,
	}
	return payload.ToForm()
}

func refID(r *backend.Ref) string {
	if r == nil {
		return ""
	}
	return r.ID
}
