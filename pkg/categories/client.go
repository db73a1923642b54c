// Package categories is the typed client for the backend's category
// endpoints, including the admin mutations.
package categories

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/storekit/storefront_sdk_go/pkg/apierr"
	"github.com/storekit/storefront_sdk_go/pkg/storefront"
)

// MaxNameLen bounds a category name.
const MaxNameLen = 100

// Category mirrors the backend's category payload.
type Category struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Active      bool   `json:"active,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
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

// Client issues category requests through the gateway.
type Client struct {
	gw  *storefront.Client
	log *zap.Logger
}

// New wraps a gateway.
func New(gw *storefront.Client, opts ...Option) (*Client, error) {
	if gw == nil {
		return nil, errors.New("categories: gateway is required")
	}
	c := &Client{gw: gw, log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// List fetches every category. A malformed payload degrades to an empty
// slice with a diagnostic rather than failing the caller.
func (c *Client) List(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := c.gw.Get(ctx, "/categories", nil, &out); err != nil {
		var apiErr *apierr.Error
		if errors.As(err, &apiErr) && apiErr.Code == apierr.CodeInvalidData {
			c.log.Warn("invalid category data received, returning none")
			return []Category{}, nil
		}
		return nil, err
	}
	for i := range out {
		out[i] = sanitize(out[i])
	}
	return out, nil
}

// GetByID fetches one category.
func (c *Client) GetByID(ctx context.Context, id int) (*Category, error) {
	if id <= 0 {
		return nil, apierr.New("Category ID must be a positive number", 400, apierr.CodeInvalidID)
	}
	out := &Category{}
	if err := c.gw.Get(ctx, "/categories/"+strconv.Itoa(id), nil, out); err != nil {
		return nil, err
	}
	if out.ID == 0 {
		return nil, apierr.New("Invalid category data received", 500, apierr.CodeInvalidData)
	}
	s := sanitize(*out)
	return &s, nil
}

// Create adds a category (admin).
func (c *Client) Create(ctx context.Context, category Category) (*Category, error) {
	if err := validateName(category.Name, true); err != nil {
		return nil, err
	}
	body := sanitize(category)
	body.ID = 0
	out := &Category{}
	if err := c.gw.Post(ctx, "/categories", body, out); err != nil {
		return nil, err
	}
	if out.ID == 0 {
		return nil, apierr.New("Invalid category data received", 500, apierr.CodeInvalidData)
	}
	s := sanitize(*out)
	return &s, nil
}

// Update modifies a category (admin).
func (c *Client) Update(ctx context.Context, id int, category Category) (*Category, error) {
	if id <= 0 {
		return nil, apierr.New("Category ID must be a positive number", 400, apierr.CodeInvalidID)
	}
	if err := validateName(category.Name, false); err != nil {
		return nil, err
	}
	out := &Category{}
	if err := c.gw.Put(ctx, "/categories/"+strconv.Itoa(id), sanitize(category), out); err != nil {
		return nil, err
	}
	if out.ID == 0 {
		return nil, apierr.New("Invalid category data received", 500, apierr.CodeInvalidData)
	}
	s := sanitize(*out)
	return &s, nil
}

// Delete removes a category (admin).
func (c *Client) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return apierr.New("Category ID must be a positive number", 400, apierr.CodeInvalidID)
	}
	return c.gw.Delete(ctx, "/categories/"+strconv.Itoa(id), nil)
}

func validateName(name string, required bool) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		if required {
			return apierr.New("Category name is required", 400, apierr.CodeValidation)
		}
		return nil
	}
	if len(trimmed) > MaxNameLen {
		return apierr.New("Category name must be less than 100 characters", 400, apierr.CodeValidation)
	}
	return nil
}

func sanitize(c Category) Category {
	c.Name = strings.TrimSpace(c.Name)
	c.Description = strings.TrimSpace(c.Description)
	c.Image = strings.TrimSpace(c.Image)
	return c
}
