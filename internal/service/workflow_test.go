package service

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jask/stockflow/internal/database"
	"github.com/jask/stockflow/internal/database/repository"
	"github.com/jask/stockflow/internal/domain"
)

func TestCustomerOrderFulfilled(t *testing.T) {
	t.Parallel()
	f, ctx := newFixture(t)
	shop := f.user(t, ctx, "rita", domain.Retailer)
	buyer := f.user(t, ctx, "carl", domain.Customer)
	p := f.product(t, ctx, shop, "Widget", 5, "2.50")

	o, err := f.workflow.PlaceOrder(ctx, buyer, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFulfilled, o.Status)
	assert.Equal(t, "Widget", o.ProductName)
	assert.True(t, o.Total().Equal(decimal.RequireFromString("7.50")))
	assert.Equal(t, 2, f.stock(t, ctx, p.ID))

	ownerInbox := f.inbox(t, ctx, "rita")
	require.Len(t, ownerInbox, 1)
	assert.Contains(t, ownerInbox[0].Message, "carl ordered 3 x Widget")
	assert.Empty(t, f.inbox(t, ctx, "carl"))

	placed, err := f.workflow.ListOrders(ctx, "carl")
	require.NoError(t, err)
	require.Len(t, placed, 1)
	assert.Equal(t, domain.StatusFulfilled, placed[0].Status)

	incoming, err := f.workflow.IncomingOrders(ctx, "rita")
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, o.ID, incoming[0].ID)
}

func TestCustomerOrderRejectedOnShortStock(t *testing.T) {
	t.Parallel()
	f, ctx := newFixture(t)
	shop := f.user(t, ctx, "rita", domain.Retailer)
	buyer := f.user(t, ctx, "carl", domain.Customer)
	p := f.product(t, ctx, shop, "Widget", 2, "2.50")

	o, err := f.workflow.PlaceOrder(ctx, buyer, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, o.Status)
	assert.Equal(t, domain.ErrInsufficientStock.Error(), o.Reason)
	assert.Equal(t, 2, f.stock(t, ctx, p.ID))

	buyerInbox := f.inbox(t, ctx, "carl")
	require.Len(t, buyerInbox, 1)
	assert.Contains(t, buyerInbox[0].Message, "insufficient stock")
	assert.Empty(t, f.inbox(t, ctx, "rita"))

	stored, err := f.orders.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, stored.Status)
}

func TestConcurrentOrdersSerialize(t *testing.T) {
	t.Parallel()
	f, ctx := newFixture(t)
	shop := f.user(t, ctx, "rita", domain.Retailer)
	a := f.user(t, ctx, "ann", domain.Customer)
	b := f.user(t, ctx, "ben", domain.Customer)
	p := f.product(t, ctx, shop, "Widget", 5, "1")

	statuses := make([]domain.OrderStatus, 2)
	var g errgroup.Group
	for i, buyer := range []domain.Actor{a, b} {
		i, buyer := i, buyer
		g.Go(func() error {
			o, err := f.workflow.PlaceOrder(ctx, buyer, p.ID, 3)
			if err != nil {
				return err
			}
			statuses[i] = o.Status
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.ElementsMatch(t, []domain.OrderStatus{domain.StatusFulfilled, domain.StatusRejected}, statuses)
	assert.Equal(t, 2, f.stock(t, ctx, p.ID))
}

// Each TUI process holds its own connection to the shared file.
func TestConcurrentOrdersAcrossConnections(t *testing.T) {
	t.Parallel()
	f, ctx := newFixture(t)
	shop := f.user(t, ctx, "rita", domain.Retailer)
	a := f.user(t, ctx, "ann", domain.Customer)
	b := f.user(t, ctx, "ben", domain.Customer)

	other, err := database.Open(f.path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = other.Close() })
	workflows := []*WorkflowService{
		f.workflow,
		{
			DB:            other,
			Products:      repository.NewProductRepo(other),
			Orders:        repository.NewOrderRepo(other),
			Notifications: repository.NewNotificationRepo(other),
		},
	}

	for round := 0; round < 15; round++ {
		p := f.product(t, ctx, shop, fmt.Sprintf("Widget %d", round), 5, "1")

		statuses := make([]domain.OrderStatus, 2)
		var g errgroup.Group
		for i, buyer := range []domain.Actor{a, b} {
			i, buyer := i, buyer
			g.Go(func() error {
				o, err := workflows[i].PlaceOrder(ctx, buyer, p.ID, 3)
				if err != nil {
					return err
				}
				statuses[i] = o.Status
				return nil
			})
		}
		require.NoError(t, g.Wait(), "round %d", round)
		assert.ElementsMatch(t, []domain.OrderStatus{domain.StatusFulfilled, domain.StatusRejected}, statuses)
		assert.Equal(t, 2, f.stock(t, ctx, p.ID))
	}
}

func TestStockNeverNegative(t *testing.T) {
	t.Parallel()
	f, ctx := newFixture(t)
	shop := f.user(t, ctx, "rita", domain.Retailer)
	buyer := f.user(t, ctx, "carl", domain.Customer)
	p := f.product(t, ctx, shop, "Widget", 20, "1")

	rng := rand.New(rand.NewSource(7))
	want := 20
	for i := 0; i < 25; i++ {
		qty := rng.Intn(6) + 1
		o, err := f.workflow.PlaceOrder(ctx, buyer, p.ID, qty)
		require.NoError(t, err)
		if qty <= want {
			require.Equal(t, domain.StatusFulfilled, o.Status)
			want -= qty
		} else {
			require.Equal(t, domain.StatusRejected, o.Status)
		}
		got := f.stock(t, ctx, p.ID)
		require.Equal(t, want, got)
		require.GreaterOrEqual(t, got, 0)
	}
}

func TestOrderInvalidQuantity(t *testing.T) {
	t.Parallel()
	f, ctx := newFixture(t)
	shop := f.user(t, ctx, "rita", domain.Retailer)
	buyer := f.user(t, ctx, "carl", domain.Customer)
	p := f.product(t, ctx, shop, "Widget", 5, "1")

	for _, qty := range []int{0, -1} {
		_, err := f.workflow.PlaceOrder(ctx, buyer, p.ID, qty)
		assert.True(t, errors.Is(err, domain.ErrInvalidQuantity))
	}
	placed, err := f.workflow.ListOrders(ctx, "carl")
	require.NoError(t, err)
	assert.Empty(t, placed)
}

func TestOrderUnknownProduct(t *testing.T) {
	t.Parallel()
	f, ctx := newFixture(t)
	buyer := f.user(t, ctx, "carl", domain.Customer)

	_, err := f.workflow.PlaceOrder(ctx, buyer, "missing", 1)
	assert.True(t, errors.Is(err, domain.ErrProductNotFound))
}

func TestSupplyChainMatrix(t *testing.T) {
	t.Parallel()
	f, ctx := newFixture(t)

	owners := map[domain.Role]domain.Actor{}
	products := map[domain.Role]string{}
	for _, r := range []domain.Role{domain.Retailer, domain.Wholesaler, domain.Manufacturer} {
		owner := f.user(t, ctx, "owner-"+r.String(), r)
		owners[r] = owner
		products[r] = f.product(t, ctx, owner, "Item from "+r.String(), 100, "3").ID
	}

	for _, buyerRole := range domain.Roles {
		buyer := f.user(t, ctx, "buyer-"+buyerRole.String(), buyerRole)
		supplier, hasSupplier := buyerRole.Supplier()
		for ownerRole, productID := range products {
			name := fmt.Sprintf("%s from %s", buyerRole, ownerRole)
			o, err := f.workflow.PlaceOrder(ctx, buyer, productID, 1)
			switch {
			case !hasSupplier:
				assert.True(t, errors.Is(err, domain.ErrUnauthorized), name)
			case ownerRole == supplier:
				require.NoError(t, err, name)
				assert.Equal(t, domain.StatusFulfilled, o.Status, name)
			default:
				assert.True(t, errors.Is(err, domain.ErrInvalidSupplyChainRole), "%s: %v", name, err)
			}
		}
	}

	// only the three valid pairings moved stock
	for ownerRole, productID := range products {
		assert.Equal(t, 99, f.stock(t, ctx, productID), ownerRole.String())
	}
}

func TestProcessorRejectsWrongBuyerRole(t *testing.T) {
	t.Parallel()
	f, ctx := newFixture(t)
	shop := f.user(t, ctx, "rita", domain.Retailer)
	p := f.product(t, ctx, shop, "Widget", 5, "1")

	_, err := f.workflow.ProcessRetailerOrder(ctx, OrderRequest{
		Buyer: domain.Actor{Username: "rita", Role: domain.Customer}, ProductID: p.ID, Quantity: 1,
	})
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestB2BOrderCreditsBuyerInventory(t *testing.T) {
	t.Parallel()
	f, ctx := newFixture(t)
	maker := f.user(t, ctx, "mia", domain.Manufacturer)
	whole := f.user(t, ctx, "walt", domain.Wholesaler)
	p := f.product(t, ctx, maker, "Gear", 10, "4.20")

	_, err := f.workflow.PlaceOrder(ctx, whole, p.ID, 4)
	require.NoError(t, err)
	_, err = f.workflow.ProcessWholesalerOrder(ctx, OrderRequest{Buyer: whole, ProductID: p.ID, Quantity: 2})
	require.NoError(t, err)

	assert.Equal(t, 4, f.stock(t, ctx, p.ID))
	inv, err := f.catalog.Inventory(ctx, "walt")
	require.NoError(t, err)
	require.Len(t, inv, 1)
	assert.Equal(t, "Gear", inv[0].Name)
	assert.Equal(t, 6, inv[0].Quantity)
	assert.Equal(t, domain.Wholesaler, inv[0].OwnerRole)
	assert.True(t, inv[0].Price.Equal(decimal.RequireFromString("4.2")))

	// the credited stock is now sellable downstream
	retail := f.user(t, ctx, "rex", domain.Retailer)
	o, err := f.workflow.PlaceOrder(ctx, retail, inv[0].ID, 6)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFulfilled, o.Status)
	assert.Equal(t, 0, f.stock(t, ctx, inv[0].ID))
}

func TestB2BRejectedOrderDoesNotCredit(t *testing.T) {
	t.Parallel()
	f, ctx := newFixture(t)
	maker := f.user(t, ctx, "mia", domain.Manufacturer)
	whole := f.user(t, ctx, "walt", domain.Wholesaler)
	p := f.product(t, ctx, maker, "Gear", 1, "4")

	o, err := f.workflow.PlaceOrder(ctx, whole, p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, o.Status)

	inv, err := f.catalog.Inventory(ctx, "walt")
	require.NoError(t, err)
	assert.Empty(t, inv)
}

func TestManufacture(t *testing.T) {
	t.Parallel()
	f, ctx := newFixture(t)
	maker := f.user(t, ctx, "mia", domain.Manufacturer)
	other := f.user(t, ctx, "max", domain.Manufacturer)
	p := f.product(t, ctx, maker, "Gear", 3, "1")

	for _, r := range []domain.Role{domain.Customer, domain.Retailer, domain.Wholesaler} {
		_, err := f.workflow.Manufacture(ctx, domain.Actor{Username: "mia", Role: r}, p.ID, 5)
		assert.True(t, errors.Is(err, domain.ErrUnauthorized), r.String())
		assert.Equal(t, 3, f.stock(t, ctx, p.ID))
	}

	_, err := f.workflow.Manufacture(ctx, other, p.ID, 5)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	assert.Equal(t, 3, f.stock(t, ctx, p.ID))

	_, err = f.workflow.Manufacture(ctx, maker, p.ID, 0)
	assert.True(t, errors.Is(err, domain.ErrInvalidQuantity))

	got, err := f.workflow.Manufacture(ctx, maker, p.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 8, got.Quantity)
	require.Len(t, f.inbox(t, ctx, "mia"), 1)
}
