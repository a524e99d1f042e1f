package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"

	"github.com/jask/stockflow/internal/database"
	"github.com/jask/stockflow/internal/database/repository"
	"github.com/jask/stockflow/internal/domain"
	"github.com/jask/stockflow/internal/logging"
)

// OrderRequest is a buyer asking for quantity units of a product.
type OrderRequest struct {
	Buyer     domain.Actor
	ProductID string
	Quantity  int
}

// WorkflowService validates orders against the supply chain and stock, and
// drives them through their status transitions. Each order runs in one
// transaction: the order row, stock changes, buyer credit and notifications
// commit together.
type WorkflowService struct {
	DB            *sqlx.DB
	Products      *repository.ProductRepo
	Orders        *repository.OrderRepo
	Notifications *repository.NotificationRepo
	Log           log.FieldLogger
}

// PlaceOrder dispatches to the processor for the buyer's role.
func (s *WorkflowService) PlaceOrder(ctx context.Context, buyer domain.Actor, productID string, quantity int) (*repository.Order, error) {
	req := OrderRequest{Buyer: buyer, ProductID: productID, Quantity: quantity}
	switch buyer.Role {
	case domain.Customer:
		return s.ProcessCustomerOrder(ctx, req)
	case domain.Retailer:
		return s.ProcessRetailerOrder(ctx, req)
	case domain.Wholesaler:
		return s.ProcessWholesalerOrder(ctx, req)
	case domain.Manufacturer:
		return nil, domain.ErrUnauthorized
	default:
		return nil, domain.ErrUnknownRole
	}
}

// ProcessCustomerOrder fulfils a customer's order from a retailer's stock.
// Short stock is not an error: the order comes back Rejected.
func (s *WorkflowService) ProcessCustomerOrder(ctx context.Context, req OrderRequest) (*repository.Order, error) {
	return s.process(ctx, req, domain.Customer)
}

// ProcessRetailerOrder fulfils a retailer's order from a wholesaler and
// credits the retailer's inventory.
func (s *WorkflowService) ProcessRetailerOrder(ctx context.Context, req OrderRequest) (*repository.Order, error) {
	return s.process(ctx, req, domain.Retailer)
}

// ProcessWholesalerOrder fulfils a wholesaler's order from a manufacturer and
// credits the wholesaler's inventory.
func (s *WorkflowService) ProcessWholesalerOrder(ctx context.Context, req OrderRequest) (*repository.Order, error) {
	return s.process(ctx, req, domain.Wholesaler)
}

func (s *WorkflowService) process(ctx context.Context, req OrderRequest, buyerRole domain.Role) (*repository.Order, error) {
	if req.Buyer.Role != buyerRole {
		return nil, domain.ErrUnauthorized
	}
	if req.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	supplierRole, ok := buyerRole.Supplier()
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	var order repository.Order
	err := database.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		products := s.Products.WithTx(tx)
		orders := s.Orders.WithTx(tx)
		notes := &NotificationService{Notifications: s.Notifications.WithTx(tx), Log: s.Log}

		p, err := products.Get(ctx, req.ProductID)
		if err != nil {
			return err
		}
		if p.OwnerRole != supplierRole {
			return fmt.Errorf("%w: %s buys from %s, not %s",
				domain.ErrInvalidSupplyChainRole, buyerRole.Label(), supplierRole.Label(), p.OwnerRole.Label())
		}

		now := database.Now()
		order = repository.Order{
			ID:               uuid.NewString(),
			BuyerUsername:    req.Buyer.Username,
			BuyerRole:        buyerRole,
			ProductID:        p.ID,
			Quantity:         req.Quantity,
			UnitPrice:        p.Price,
			Status:           domain.StatusPending,
			CreatedAt:        now,
			UpdatedAt:        now,
			ProductName:      p.Name,
			SupplierUsername: p.OwnerUsername,
		}
		if err := orders.Insert(ctx, order); err != nil {
			return err
		}

		taken, err := products.Decrement(ctx, p.ID, req.Quantity, now)
		if err != nil {
			return err
		}
		if !taken {
			reason := domain.ErrInsufficientStock.Error()
			if err := transition(ctx, orders, &order, domain.StatusRejected, reason, now); err != nil {
				return err
			}
			msg := fmt.Sprintf("Order %s for %d x %s was rejected: %s (%d available)",
				shortID(order.ID), order.Quantity, p.Name, reason, p.Quantity)
			_, err = notes.Notify(ctx, order.BuyerUsername, msg)
			return err
		}

		if err := transition(ctx, orders, &order, domain.StatusApproved, "", now); err != nil {
			return err
		}
		if buyerRole != domain.Customer {
			if err := credit(ctx, products, req.Buyer, p, req.Quantity, now); err != nil {
				return err
			}
		}
		if err := transition(ctx, orders, &order, domain.StatusFulfilled, "", now); err != nil {
			return err
		}
		msg := fmt.Sprintf("%s ordered %d x %s (order %s)",
			order.BuyerUsername, order.Quantity, p.Name, shortID(order.ID))
		_, err = notes.Notify(ctx, p.OwnerUsername, msg)
		return err
	})
	if err != nil {
		logging.Or(s.Log).WithFields(log.Fields{
			"buyer":      req.Buyer.Username,
			"product_id": req.ProductID,
		}).WithError(err).Warn("order failed")
		return nil, err
	}

	logging.Or(s.Log).WithFields(log.Fields{
		"order_id":   order.ID,
		"buyer":      order.BuyerUsername,
		"product_id": order.ProductID,
		"quantity":   order.Quantity,
		"status":     string(order.Status),
	}).Info("order processed")
	return &order, nil
}

// credit adds purchased units to the buyer's own product of the same name,
// creating it at the supplier's price when the buyer has none.
func credit(ctx context.Context, products *repository.ProductRepo, buyer domain.Actor, src *repository.Product, qty int, now time.Time) error {
	own, err := products.ByOwnerAndName(ctx, buyer.Username, src.Name)
	if err != nil {
		return err
	}
	if own != nil {
		return products.Increment(ctx, own.ID, qty, now)
	}
	return products.Insert(ctx, repository.Product{
		ID:            uuid.NewString(),
		Name:          src.Name,
		OwnerUsername: buyer.Username,
		OwnerRole:     buyer.Role,
		Quantity:      qty,
		Price:         src.Price,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
}

func transition(ctx context.Context, orders *repository.OrderRepo, o *repository.Order, to domain.OrderStatus, reason string, now time.Time) error {
	if err := orders.UpdateStatus(ctx, o.ID, o.Status, to, reason, now); err != nil {
		return err
	}
	o.Status = to
	o.Reason = reason
	o.UpdatedAt = now
	return nil
}

// Manufacture adds quantity units to a product the manufacturer owns.
func (s *WorkflowService) Manufacture(ctx context.Context, actor domain.Actor, productID string, quantity int) (*repository.Product, error) {
	if actor.Role != domain.Manufacturer {
		return nil, domain.ErrUnauthorized
	}
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	var updated *repository.Product
	err := database.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		products := s.Products.WithTx(tx)
		p, err := products.Get(ctx, productID)
		if err != nil {
			return err
		}
		if p.OwnerUsername != actor.Username {
			return fmt.Errorf("%w: %s does not own %s", domain.ErrUnauthorized, actor.Username, p.Name)
		}
		now := database.Now()
		if err := products.Increment(ctx, p.ID, quantity, now); err != nil {
			return err
		}
		if updated, err = products.Get(ctx, p.ID); err != nil {
			return err
		}
		msg := fmt.Sprintf("Manufactured %d x %s; stock is now %d", quantity, p.Name, updated.Quantity)
		notes := &NotificationService{Notifications: s.Notifications.WithTx(tx), Log: s.Log}
		_, err = notes.Notify(ctx, actor.Username, msg)
		return err
	})
	if err != nil {
		return nil, err
	}
	logging.Or(s.Log).WithFields(log.Fields{
		"product_id": productID,
		"owner":      actor.Username,
		"quantity":   quantity,
	}).Info("manufactured")
	return updated, nil
}

// ListOrders lists orders placed by username.
func (s *WorkflowService) ListOrders(ctx context.Context, username string) ([]repository.Order, error) {
	return s.Orders.ListByBuyer(ctx, username)
}

// IncomingOrders lists orders placed against username's products.
func (s *WorkflowService) IncomingOrders(ctx context.Context, username string) ([]repository.Order, error) {
	return s.Orders.ListBySupplier(ctx, username)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
