package testdata

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jask/stockflow/internal/auth"
	"github.com/jask/stockflow/internal/domain"
	"github.com/jask/stockflow/internal/service"
)

// DemoPassword is shared by every seeded account.
const DemoPassword = "password"

// Services bundles what Seed needs.
type Services struct {
	Auth    *auth.Authenticator
	Catalog *service.CatalogService
}

type demoProduct struct {
	Name     string
	Quantity int
	Price    string
}

var demoStock = map[domain.Role][]demoProduct{
	domain.Manufacturer: {
		{"Steel Bolt", 500, "0.20"},
		{"Hex Nut", 800, "0.05"},
		{"Bike Frame", 40, "85.00"},
	},
	domain.Wholesaler: {
		{"Steel Bolt", 200, "0.35"},
		{"Brake Cable", 120, "3.10"},
	},
	domain.Retailer: {
		{"Steel Bolt", 50, "0.60"},
		{"Bike Bell", 25, "7.99"},
		{"Brake Cable", 10, "5.50"},
	},
}

// Seed creates one demo user per role and stocks the sellers. It is idempotent:
// existing users and products are left alone.
func Seed(ctx context.Context, svc Services) error {
	for _, role := range domain.Roles {
		username := role.String()
		if _, err := svc.Auth.Register(ctx, username, DemoPassword, role); err != nil && !errors.Is(err, domain.ErrDuplicateUsername) {
			return fmt.Errorf("seed user %s: %w", username, err)
		}
		owner := domain.Actor{Username: username, Role: role}
		for _, p := range demoStock[role] {
			_, err := svc.Catalog.AddProduct(ctx, owner, p.Name, p.Quantity, decimal.RequireFromString(p.Price))
			if err != nil && !errors.Is(err, domain.ErrDuplicateProduct) {
				return fmt.Errorf("seed product %s: %w", p.Name, err)
			}
		}
	}
	return nil
}
