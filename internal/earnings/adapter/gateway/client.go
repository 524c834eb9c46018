package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"parcel-hub/internal/earnings/domain"
)

// Client reads delivery and pricing records from the platform's API
// gateway. It implements both domain.DeliverySource and domain.TierSource.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, serviceToken string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		token:   serviceToken,
		http:    &http.Client{Timeout: timeout},
	}
}

// DeliveriesForDriver fetches the driver's delivery records, including
// nested parcels, consolidations and status history.
func (c *Client) DeliveriesForDriver(ctx context.Context, driverID string) ([]domain.DeliveryRecord, error) {
	endpoint := fmt.Sprintf("%s/api/deliveries/driver/%s", c.baseURL, url.PathEscape(driverID))

	var deliveries []domain.DeliveryRecord
	if err := c.getJSON(ctx, endpoint, &deliveries); err != nil {
		return nil, fmt.Errorf("gateway: fetch deliveries for driver %s: %w", driverID, err)
	}
	return deliveries, nil
}

// ActiveTiers fetches the active driver pricing tiers.
func (c *Client) ActiveTiers(ctx context.Context) ([]domain.DriverPricingTier, error) {
	endpoint := c.baseURL + "/api/pricing-driver?isActive=true"

	var tiers []domain.DriverPricingTier
	if err := c.getJSON(ctx, endpoint, &tiers); err != nil {
		return nil, fmt.Errorf("gateway: fetch pricing tiers: %w", err)
	}
	return tiers, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
