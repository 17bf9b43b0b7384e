package countries

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

// DefaultURL is the public country directory queried for names and flags.
const DefaultURL = "https://restcountries.com/v3.1/all?fields=name,flag"

// HTTPProvider fetches countries from a restcountries-compatible endpoint.
type HTTPProvider struct {
	url    string
	client *http.Client
}

// NewHTTPProvider constructs a provider querying url with the given request timeout.
func NewHTTPProvider(url string, timeout time.Duration) *HTTPProvider {
	if strings.TrimSpace(url) == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPProvider{url: url, client: &http.Client{Timeout: timeout}}
}

type wireCountry struct {
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
	Flag string `json:"flag"`
}

// List fetches and sorts the country list.
func (p *HTTPProvider) List(ctx context.Context) ([]Country, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build countries request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch countries: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("fetch countries: unexpected status %d", resp.StatusCode)
	}

	var payload []wireCountry
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode countries: %w", err)
	}

	out := make([]Country, 0, len(payload))
	for _, c := range payload {
		name := strings.TrimSpace(c.Name.Common)
		if name == "" {
			continue
		}
		out = append(out, Country{Name: name, Flag: c.Flag})
	}
	sortByName(out)
	return out, nil
}

func sortByName(list []Country) {
	sort.SliceStable(list, func(i, j int) bool {
		return strings.ToLower(list[i].Name) < strings.ToLower(list[j].Name)
	})
}
