package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/jask/stockflow/internal/database"
	"github.com/jask/stockflow/internal/database/repository"
	"github.com/jask/stockflow/internal/domain"
	"github.com/jask/stockflow/internal/logging"
)

// maxSuggestDistance bounds fuzzy search suggestions.
const maxSuggestDistance = 3

// CatalogService manages products and what each role may buy.
type CatalogService struct {
	Products *repository.ProductRepo
	Log      log.FieldLogger
}

// AddProduct creates a product owned by owner. Customers hold no inventory.
func (s *CatalogService) AddProduct(ctx context.Context, owner domain.Actor, name string, quantity int, price decimal.Decimal) (*repository.Product, error) {
	if !owner.Role.Sells() {
		return nil, domain.ErrUnauthorized
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrMissingFields
	}
	if quantity < 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if price.IsNegative() {
		return nil, domain.ErrInvalidPrice
	}
	now := database.Now()
	p := repository.Product{
		ID:            uuid.NewString(),
		Name:          name,
		OwnerUsername: owner.Username,
		OwnerRole:     owner.Role,
		Quantity:      quantity,
		Price:         price,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Products.Insert(ctx, p); err != nil {
		return nil, err
	}
	logging.Or(s.Log).WithFields(log.Fields{
		"product_id": p.ID,
		"owner":      owner.Username,
		"quantity":   quantity,
	}).Info("product added")
	return &p, nil
}

// Inventory lists products owned by username.
func (s *CatalogService) Inventory(ctx context.Context, username string) ([]repository.Product, error) {
	return s.Products.ListByOwner(ctx, username)
}

// Supply lists the products a buyer of the given role may order.
func (s *CatalogService) Supply(ctx context.Context, buyer domain.Role) ([]repository.Product, error) {
	supplier, ok := buyer.Supplier()
	if !ok {
		return nil, nil
	}
	return s.Products.ListByOwnerRole(ctx, supplier)
}

// Search matches query against the buyer's supply by substring. When nothing
// matches it falls back to the closest names by edit distance.
func (s *CatalogService) Search(ctx context.Context, query string, buyer domain.Role) ([]repository.Product, error) {
	supply, err := s.Supply(ctx, buyer)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return supply, nil
	}

	var out []repository.Product
	for _, p := range supply {
		if strings.Contains(strings.ToLower(p.Name), q) {
			out = append(out, p)
		}
	}
	if len(out) > 0 {
		return out, nil
	}

	type scored struct {
		p    repository.Product
		dist int
	}
	var near []scored
	for _, p := range supply {
		d := levenshtein.ComputeDistance(q, strings.ToLower(p.Name))
		if d <= maxSuggestDistance {
			near = append(near, scored{p, d})
		}
	}
	sort.SliceStable(near, func(i, j int) bool { return near[i].dist < near[j].dist })
	for _, n := range near {
		out = append(out, n.p)
	}
	return out, nil
}

// Get fails with domain.ErrProductNotFound when id is unknown.
func (s *CatalogService) Get(ctx context.Context, id string) (*repository.Product, error) {
	p, err := s.Products.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("catalog get: %w", err)
	}
	return p, nil
}
