package forms

import "github.com/damsoledevelopers/spireleap-console/internal/backend"

// AddressForm is the shared address block.
type AddressForm struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	ZipCode string `json:"zipCode"`
}

// Clean returns nil when every field is blank.
func (a AddressForm) Clean() *backend.Address {
	out := backend.Address{
		Street:  trim(a.Street),
		City:    trim(a.City),
		State:   trim(a.State),
		Country: trim(a.Country),
		ZipCode: trim(a.ZipCode),
	}
	if out == (backend.Address{}) {
		return nil
	}
	return &out
}

func addressForm(a *backend.Address) AddressForm {
	if a == nil {
		return AddressForm{}
	}
	return AddressForm{Street: a.Street, City: a.City, State: a.State, Country: a.Country, ZipCode: a.ZipCode}
}
