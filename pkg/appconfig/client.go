// Package appconfig reads runtime configuration published by the backend:
// feature toggles, health and application info.
package appconfig

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/storekit/storefront_sdk_go/pkg/storefront"
)

// FeatureConfig is the backend's feature-toggle payload.
type FeatureConfig struct {
	AuthEnabled    bool `json:"authEnabled"`
	PaymentEnabled bool `json:"paymentEnabled"`
	EmailEnabled   bool `json:"emailEnabled"`
	SMSEnabled     bool `json:"smsEnabled"`
	StorageEnabled bool `json:"storageEnabled"`
}

// HealthStatus is the backend's health payload.
type HealthStatus struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// AppInfo describes the backend application.
type AppInfo struct {
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Description string          `json:"description"`
	Features    map[string]bool `json:"features"`
}

// Option configures a Client.
type Option func(*Client)

// WithLogger assigns the diagnostics logger (default: no-op).
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// Client issues config requests through the gateway.
type Client struct {
	gw  *storefront.Client
	log *zap.Logger
}

// New wraps a gateway.
func New(gw *storefront.Client, opts ...Option) (*Client, error) {
	if gw == nil {
		return nil, errors.New("appconfig: gateway is required")
	}
	c := &Client{gw: gw, log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Features fetches the backend feature toggles. Any failure degrades to the
// all-disabled defaults so an unreachable backend renders the catalog-only
// surface instead of an error page.
func (c *Client) Features(ctx context.Context) FeatureConfig {
	out := FeatureConfig{}
	if err := c.gw.Get(ctx, "/config/features", nil, &out); err != nil {
		c.log.Warn("feature fetch failed, features disabled", zap.Error(err))
		return FeatureConfig{}
	}
	return out
}

// Health performs a backend health check.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	out := &HealthStatus{}
	if err := c.gw.Get(ctx, "/config/health", nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Info fetches the backend application description.
func (c *Client) Info(ctx context.Context) (*AppInfo, error) {
	out := &AppInfo{}
	if err := c.gw.Get(ctx, "/config/info", nil, out); err != nil {
		return nil, err
	}
	return out, nil
}
