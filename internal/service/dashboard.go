package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jask/stockflow/internal/database/repository"
	"github.com/jask/stockflow/internal/domain"
)

// Summary is what the dashboard page shows.
type Summary struct {
	Products       int
	Units          int
	InventoryValue decimal.Decimal
	OrdersByStatus map[domain.OrderStatus]int
	Incoming       int
	Unread         int
}

// PlacedOrders totals OrdersByStatus.
func (s Summary) PlacedOrders() int {
	total := 0
	for _, n := range s.OrdersByStatus {
		total += n
	}
	return total
}

// DashboardService aggregates per-user figures.
type DashboardService struct {
	Products      *repository.ProductRepo
	Orders        *repository.OrderRepo
	Notifications *repository.NotificationRepo
}

func (s *DashboardService) Summary(ctx context.Context, actor domain.Actor) (Summary, error) {
	sum := Summary{InventoryValue: decimal.Zero}

	if actor.Role.Sells() {
		products, err := s.Products.ListByOwner(ctx, actor.Username)
		if err != nil {
			return Summary{}, err
		}
		sum.Products = len(products)
		for _, p := range products {
			sum.Units += p.Quantity
			sum.InventoryValue = sum.InventoryValue.Add(p.Price.Mul(decimal.NewFromInt(int64(p.Quantity))))
		}
		if sum.Incoming, err = s.Orders.CountIncoming(ctx, actor.Username); err != nil {
			return Summary{}, err
		}
	}

	byStatus, err := s.Orders.CountByStatus(ctx, actor.Username)
	if err != nil {
		return Summary{}, err
	}
	sum.OrdersByStatus = byStatus

	if sum.Unread, err = s.Notifications.CountUnread(ctx, actor.Username); err != nil {
		return Summary{}, err
	}
	return sum, nil
}
