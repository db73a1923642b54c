// Package session persists the bearer token the gateway attaches to outbound
// requests. Absence of a token is not an error: unauthenticated requests
// simply pass through without an Authorization header.
package session

import (
	"context"
	"errors"
	"strings"

	"github.com/storekit/storefront_sdk_go/pkg/localstore"
)

// TokenKey is the storage key holding the session token.
const TokenKey = "authToken"

// Store reads and writes the session token.
type Store struct {
	storage localstore.Store
}

// New returns a token store over the supplied storage.
func New(storage localstore.Store) (*Store, error) {
	if storage == nil {
		return nil, errors.New("session: storage is required")
	}
	return &Store{storage: storage}, nil
}

// Token returns the stored token, or "" when none exists.
func (s *Store) Token(ctx context.Context) (string, error) {
	data, err := s.storage.Get(ctx, TokenKey)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// SetToken stores the token. An empty token clears the session instead.
func (s *Store) SetToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return s.Clear(ctx)
	}
	return s.storage.Set(ctx, TokenKey, []byte(token))
}

// Clear removes the stored token. Used on logout and on any 401 response.
func (s *Store) Clear(ctx context.Context) error {
	return s.storage.Delete(ctx, TokenKey)
}
