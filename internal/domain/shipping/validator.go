package shipping

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
)

// ErrAddressRequired is returned when a shipped order is created without a
// shipping address.
var ErrAddressRequired = errors.New("shipping address required")

// InvalidAddressError indicates the supplied address does not match the ZIP
// code directory. Reason is safe to surface to API clients.
type InvalidAddressError struct {
	Reason string
}

func (e *InvalidAddressError) Error() string {
	return "invalid shipping address: " + e.Reason
}

// Validator checks shipping addresses against a ZIP code directory.
type Validator struct {
	directory Directory
}

// NewValidator creates a Validator backed by the given directory.
func NewValidator(directory Directory) *Validator {
	return &Validator{directory: directory}
}

// Validate confirms the address refers to a real ZIP code whose state and
// city match the directory record. City comparison is case-insensitive.
func (v *Validator) Validate(ctx context.Context, addr *Address) error {
	if addr == nil {
		return ErrAddressRequired
	}

	info, err := v.directory.Lookup(ctx, addr.ZipCode)
	if err != nil {
		return errors.Wrap(err, "lookup zip code")
	}
	if info == nil {
		return &InvalidAddressError{Reason: "the zip code provided is invalid"}
	}

	if info.State != addr.State {
		return &InvalidAddressError{Reason: "the state code does not correspond to the supplied zip code"}
	}

	for _, city := range info.Cities {
		if strings.EqualFold(city, addr.City) {
			return nil
		}
	}
	return &InvalidAddressError{Reason: "the city does not correspond to the supplied zip code"}
}
