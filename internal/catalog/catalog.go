// AngelaMos | 2026
// catalog.go

package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/angelamos/voltgear/internal/cart"
)

//go:embed seed.json
var seedJSON []byte

// Product is one catalog entry. The catalog is read-only reference data
// shipped with the binary; carts and orders snapshot what they need.
type Product struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Category         string   `json:"category"`
	Tag              string   `json:"tag,omitempty"`
	Price            float64  `json:"price"`
	Image            string   `json:"image,omitempty"`
	ShortDescription string   `json:"short_description,omitempty"`
	Description      string   `json:"description,omitempty"`
	Features         []string `json:"features,omitempty"`
	Stock            string   `json:"stock,omitempty"`
	Rating           float64  `json:"rating,omitempty"`
	Reviews          int      `json:"reviews,omitempty"`
	Delivery         string   `json:"delivery,omitempty"`
}

type Service struct {
	products []Product
	byID     map[string]int
}

func NewService() (*Service, error) {
	var products []Product
	if err := json.Unmarshal(seedJSON, &products); err != nil {
		return nil, fmt.Errorf("decode product seed: %w", err)
	}
	byID := make(map[string]int, len(products))
	for i, p := range products {
		byID[p.ID] = i
	}
	return &Service{products: products, byID: byID}, nil
}

// List returns every product in catalog order.
func (s *Service) List(ctx context.Context) []Product {
	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out
}

// Get looks a product up by id.
func (s *Service) Get(ctx context.Context, id string) (Product, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Product{}, false
	}
	return s.products[i], true
}

// ByCategory filters the catalog case-insensitively.
func (s *Service) ByCategory(ctx context.Context, category string) []Product {
	out := []Product{}
	for _, p := range s.products {
		if strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	return out
}

// Product satisfies the cart's catalog lookup.
func (s *Service) Product(ctx context.Context, id string) (cart.Product, bool) {
	p, ok := s.Get(ctx, id)
	if !ok {
		return cart.Product{}, false
	}
	return cart.Product{
		ID:    p.ID,
		Title: p.Name,
		Image: p.Image,
		Price: p.Price,
	}, true
}
