package enums

// ListingType says whether a property is offered for sale, rent, or both.
type ListingType string

const (
	ListingTypeSale ListingType = "sale"
	ListingTypeRent ListingType = "rent"
	ListingTypeBoth ListingType = "both"
)

var validListingTypes = []ListingType{ListingTypeSale, ListingTypeRent, ListingTypeBoth}

func (l ListingType) String() string { return string(l) }

func (l ListingType) IsValid() bool {
	return isValid(validListingTypes, l)
}

// OffersSale reports whether the sale price branch applies.
func (l ListingType) OffersSale() bool {
	return l == ListingTypeSale || l == ListingTypeBoth
}

// OffersRent reports whether the rent price branch applies.
func (l ListingType) OffersRent() bool {
	return l == ListingTypeRent || l == ListingTypeBoth
}

func ParseListingType(value string) (ListingType, error) {
	return parse(validListingTypes, "listing type", value)
}

// PropertyStatus is the publication state of a listing.
type PropertyStatus string

const (
	PropertyStatusDraft    PropertyStatus = "draft"
	PropertyStatusPending  PropertyStatus = "pending"
	PropertyStatusActive   PropertyStatus = "active"
	PropertyStatusSold     PropertyStatus = "sold"
	PropertyStatusRented   PropertyStatus = "rented"
	PropertyStatusInactive PropertyStatus = "inactive"
)

var validPropertyStatuses = []PropertyStatus{
	PropertyStatusDraft,
	PropertyStatusPending,
	PropertyStatusActive,
	PropertyStatusSold,
	PropertyStatusRented,
	PropertyStatusInactive,
}

func (s PropertyStatus) String() string { return string(s) }

func (s PropertyStatus) IsValid() bool {
	return isValid(validPropertyStatuses, s)
}

func ParsePropertyStatus(value string) (PropertyStatus, error) {
	return parse(validPropertyStatuses, "property status", value)
}

// RentPeriod is the billing period of a rent price.
type RentPeriod string

const (
	RentPeriodMonthly RentPeriod = "monthly"
	RentPeriodYearly  RentPeriod = "yearly"
	RentPeriodWeekly  RentPeriod = "weekly"
	RentPeriodDaily   RentPeriod = "daily"
)

var validRentPeriods = []RentPeriod{RentPeriodMonthly, RentPeriodYearly, RentPeriodWeekly, RentPeriodDaily}

func (p RentPeriod) IsValid() bool {
	return isValid(validRentPeriods, p)
}

func ParseRentPeriod(value string) (RentPeriod, error) {
	return parse(validRentPeriods, "rent period", value)
}
