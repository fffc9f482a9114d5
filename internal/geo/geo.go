// Package geo resolves a request IP to a rough location string for the
// bookings' audit trail. Strictly best-effort: any failure degrades to a
// placeholder and must never block a save.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const Unknown = "Unknown Location"

type Resolver struct {
	client  *http.Client
	baseURL string
}

func NewResolver() *Resolver {
	return &Resolver{
		client:  &http.Client{Timeout: 3 * time.Second},
		baseURL: "http://ip-api.com/json",
	}
}

// NewResolverWithBase exists for tests.
func NewResolverWithBase(baseURL string, client *http.Client) *Resolver {
	return &Resolver{client: client, baseURL: baseURL}
}

// Lookup returns "City, Country" for the given IP, or Unknown on any
// failure. The error return is informational; callers log it and move on.
func (r *Resolver) Lookup(ctx context.Context, ip string) (string, error) {
	if ip == "" {
		return Unknown, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/%s?fields=status,city,country", r.baseURL, ip), nil)
	if err != nil {
		return Unknown, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return Unknown, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Unknown, fmt.Errorf("geo lookup: status %d", resp.StatusCode)
	}

	var body struct {
		Status  string `json:"status"`
		City    string `json:"city"`
		Country string `json:"country"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Unknown, err
	}
	if body.Status != "success" || body.City == "" {
		return Unknown, nil
	}
	return body.City + ", " + body.Country, nil
}
