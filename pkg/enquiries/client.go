// Package enquiries is the typed client for the backend's enquiry (contact
// form) endpoints.
package enquiries

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/storekit/storefront_sdk_go/internal/validate"
	"github.com/storekit/storefront_sdk_go/pkg/apierr"
	"github.com/storekit/storefront_sdk_go/pkg/storefront"
)

// Enquiry statuses assigned by the backend.
const (
	StatusPending  = "pending"
	StatusReviewed = "reviewed"
	StatusResolved = "resolved"
)

// Enquiry is a customer contact record, optionally tied to a product.
type Enquiry struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Message   string `json:"message"`
	ProductID string `json:"productId,omitempty"`
	Status    string `json:"status,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// ListResult is a page of enquiries with the backend's total count.
type ListResult struct {
	Data  []Enquiry `json:"data"`
	Total int       `json:"total"`
}

// Client issues enquiry requests through the gateway.
type Client struct {
	gw *storefront.Client
}

// New wraps a gateway.
func New(gw *storefront.Client) (*Client, error) {
	if gw == nil {
		return nil, errors.New("enquiries: gateway is required")
	}
	return &Client{gw: gw}, nil
}

// Submit validates and sends a new enquiry. Validation failures surface as
// VALIDATION_ERROR with per-field details and never reach the network.
func (c *Client) Submit(ctx context.Context, enquiry Enquiry) (*Enquiry, error) {
	enquiry = sanitize(enquiry)
	if details := validateEnquiry(enquiry); len(details) > 0 {
		return nil, &apierr.Error{
			Message: "Enquiry validation failed",
			Status:  400,
			Code:    apierr.CodeValidation,
			Details: details,
		}
	}
	out := &Enquiry{}
	if err := c.gw.Post(ctx, "/enquiries", enquiry, out); err != nil {
		return nil, err
	}
	return out, nil
}

// List fetches a page of enquiries. Page defaults to 1, limit to 10.
func (c *Client) List(ctx context.Context, page, limit int) (*ListResult, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	q := url.Values{
		"page":  {strconv.Itoa(page)},
		"limit": {strconv.Itoa(limit)},
	}
	out := &ListResult{}
	if err := c.gw.Get(ctx, "/enquiries", q, out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID fetches one enquiry.
func (c *Client) GetByID(ctx context.Context, id string) (*Enquiry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apierr.New("Enquiry ID is required", 400, apierr.CodeInvalidID)
	}
	out := &Enquiry{}
	if err := c.gw.Get(ctx, "/enquiries/"+url.PathEscape(id), nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update modifies an existing enquiry (status changes and corrections).
func (c *Client) Update(ctx context.Context, id string, enquiry Enquiry) (*Enquiry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apierr.New("Enquiry ID is required", 400, apierr.CodeInvalidID)
	}
	out := &Enquiry{}
	if err := c.gw.Put(ctx, "/enquiries/"+url.PathEscape(id), sanitize(enquiry), out); err != nil {
		return nil, err
	}
	return out, nil
}

func sanitize(e Enquiry) Enquiry {
	e.Name = validate.SanitizeString(e.Name)
	e.Email = validate.SanitizeEmail(e.Email)
	e.Phone = validate.SanitizePhone(e.Phone)
	e.Message = validate.SanitizeString(e.Message)
	e.ProductID = strings.TrimSpace(e.ProductID)
	return e
}

func validateEnquiry(e Enquiry) map[string]string {
	details := make(map[string]string)
	if !validate.IsValidLength(e.Name, 1, 100) {
		details["name"] = "Name must be between 1 and 100 characters"
	}
	if !validate.IsValidEmail(e.Email) {
		details["email"] = "A valid email address is required"
	}
	if !validate.IsValidPhone(e.Phone) {
		details["phone"] = "A valid phone number is required"
	}
	if !validate.IsValidLength(e.Message, 1, 2000) {
		details["message"] = "Message must be between 1 and 2000 characters"
	}
	if len(details) == 0 {
		return nil
	}
	return details
}
