package countries

import (
	"context"
	"errors"
)

// ErrProviderUnavailable indicates the country provider is not configured.
var ErrProviderUnavailable = errors.New("country provider unavailable")

// Country is an entry of the registration nationality picker.
type Country struct {
	Name string `json:"name"`
	Flag string `json:"flag"`
}

// Provider returns the list of countries sorted by name.
type Provider interface {
	List(ctx context.Context) ([]Country, error)
}
