// Package products is the typed client for the backend's product endpoints.
package products

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/storekit/storefront_sdk_go/internal/validate"
	"github.com/storekit/storefront_sdk_go/pkg/apierr"
	"github.com/storekit/storefront_sdk_go/pkg/storefront"
)

// MaxIDLen bounds accepted product identifiers.
const MaxIDLen = 50

// Product mirrors the backend's product payload.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Stock       int     `json:"stock"`
	Rating      float64 `json:"rating,omitempty"`
}

// Filter narrows a product listing. Zero values are omitted from the query.
type Filter struct {
	Category string
	MinPrice float64
	MaxPrice float64
	Search   string
	Page     int
	Limit    int
}

// ListResult is a page of products with the backend's total count.
type ListResult struct {
	Data  []Product `json:"data"`
	Total int       `json:"total"`
}

// Client issues product requests through the gateway.
type Client struct {
	gw *storefront.Client
}

// New wraps a gateway.
func New(gw *storefront.Client) (*Client, error) {
	if gw == nil {
		return nil, errors.New("products: gateway is required")
	}
	return &Client{gw: gw}, nil
}

// List fetches a filtered product page.
func (c *Client) List(ctx context.Context, filter *Filter) (*ListResult, error) {
	out := &ListResult{}
	if err := c.gw.Get(ctx, "/products", filter.query(), out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID fetches one product.
func (c *Client) GetByID(ctx context.Context, id string) (*Product, error) {
	id = strings.TrimSpace(id)
	if id == "" || len(id) > MaxIDLen {
		return nil, apierr.New("Product ID must be a non-empty string", 400, apierr.CodeInvalidID)
	}
	out := &Product{}
	if err := c.gw.Get(ctx, "/products/"+url.PathEscape(id), nil, out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, apierr.New("Invalid product data received", 500, apierr.CodeInvalidData)
	}
	return out, nil
}

// Search queries products by free text. The query is sanitized before it
// leaves the process.
func (c *Client) Search(ctx context.Context, query string) ([]Product, error) {
	query = validate.SanitizeSearchQuery(query, 200)
	if query == "" {
		return nil, apierr.New("Search query is required", 400, apierr.CodeValidation)
	}
	var out []Product
	if err := c.gw.Get(ctx, "/products/search", url.Values{"q": {query}}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ByCategory lists the products of one category.
func (c *Client) ByCategory(ctx context.Context, category string) ([]Product, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, apierr.New("Category is required", 400, apierr.CodeValidation)
	}
	var out []Product
	if err := c.gw.Get(ctx, "/products/category/"+url.PathEscape(category), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *Filter) query() url.Values {
	if f == nil {
		return nil
	}
	q := url.Values{}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.MinPrice > 0 {
		q.Set("minPrice", strconv.FormatFloat(f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice > 0 {
		q.Set("maxPrice", strconv.FormatFloat(f.MaxPrice, 'f', -1, 64))
	}
	if f.Search != "" {
		q.Set("search", validate.SanitizeSearchQuery(f.Search, 200))
	}
	if f.Page > 0 {
		q.Set("page", fmt.Sprint(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", fmt.Sprint(f.Limit))
	}
	if len(q) == 0 {
		return nil
	}
	return q
}
