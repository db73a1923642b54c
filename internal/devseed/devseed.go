// Package devseed loads JSON seed files for the sandbox backend.
package devseed

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/storekit/storefront_sdk_go/pkg/categories"
	"github.com/storekit/storefront_sdk_go/pkg/products"
)

// CatalogSeed is the sandbox's initial state.
type CatalogSeed struct {
	Products   []products.Product    `json:"products"`
	Categories []categories.Category `json:"categories"`
}

// LoadCatalogSeed reads and validates a seed file.
func LoadCatalogSeed(path string) (*CatalogSeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("devseed: read seed file: %w", err)
	}
	seed := &CatalogSeed{}
	if err := json.Unmarshal(data, seed); err != nil {
		return nil, fmt.Errorf("devseed: parse seed file: %w", err)
	}
	for i, p := range seed.Products {
		if p.ID == "" {
			return nil, fmt.Errorf("devseed: product %d missing id", i)
		}
	}
	for i, c := range seed.Categories {
		if c.ID == 0 {
			return nil, fmt.Errorf("devseed: category %d missing id", i)
		}
	}
	return seed, nil
}
