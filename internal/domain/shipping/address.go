package shipping

import "context"

// Address is a US postal address attached to shipped orders.
type Address struct {
	Line1   string `json:"line1"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

// ZipCodeInfo holds the authoritative state and city list for a ZIP code.
type ZipCodeInfo struct {
	Code   string
	State  string
	Cities []string
}

// Directory resolves ZIP codes to their state and cities. Implementations
// return (nil, nil) for codes that do not exist.
type Directory interface {
	Lookup(ctx context.Context, code string) (*ZipCodeInfo, error)
}
