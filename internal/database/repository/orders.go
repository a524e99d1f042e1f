package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/jask/stockflow/internal/domain"
)

const orderSelect = `
	SELECT o.id, o.buyer_username, o.buyer_role, o.product_id, o.quantity, o.unit_price,
	       o.status, o.reason, o.created_at, o.updated_at,
	       p.name AS product_name, p.owner_username AS supplier_username
	FROM orders o
	JOIN products p ON p.id = o.product_id`

// OrderRepo handles orders.
type OrderRepo struct {
	db sqlx.ExtContext
}

func NewOrderRepo(db sqlx.ExtContext) *OrderRepo { return &OrderRepo{db: db} }

// WithTx returns a repo bound to tx.
func (r *OrderRepo) WithTx(tx *sqlx.Tx) *OrderRepo { return &OrderRepo{db: tx} }

func (r *OrderRepo) Insert(ctx context.Context, o Order) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO orders(id, buyer_username, buyer_role, product_id, quantity, unit_price, status, reason, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.BuyerUsername, o.BuyerRole, o.ProductID, o.Quantity, o.UnitPrice,
		o.Status, o.Reason, o.CreatedAt, o.UpdatedAt)
	return errors.Wrap(err, "insert order")
}

// UpdateStatus moves an order from one status to the next. The update only
// applies while the stored status still equals from.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus, reason string, now time.Time) error {
	if !from.CanTransition(to) {
		return errors.Wrapf(domain.ErrInvalidTransition, "%s -> %s", from, to)
	}
	res, err := r.db.ExecContext(ctx, `
	UPDATE orders SET status = ?, reason = ?, updated_at = ?
	WHERE id = ? AND status = ?`, to, reason, now, id, from)
	if err != nil {
		return errors.Wrap(err, "update order status")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "update order status")
	}
	if n == 0 {
		return errors.Wrapf(domain.ErrInvalidTransition, "order %s is not %s", id, from)
	}
	return nil
}

func (r *OrderRepo) Get(ctx context.Context, id string) (*Order, error) {
	var o Order
	err := sqlx.GetContext(ctx, r.db, &o, orderSelect+` WHERE o.id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get order")
	}
	return &o, nil
}

// ListByBuyer returns orders placed by buyer, newest first.
func (r *OrderRepo) ListByBuyer(ctx context.Context, buyer string) ([]Order, error) {
	var out []Order
	err := sqlx.SelectContext(ctx, r.db, &out, orderSelect+`
	WHERE o.buyer_username = ? ORDER BY o.created_at DESC, o.id`, buyer)
	return out, errors.Wrap(err, "list orders by buyer")
}

// ListBySupplier returns orders against products owned by supplier, newest first.
func (r *OrderRepo) ListBySupplier(ctx context.Context, supplier string) ([]Order, error) {
	var out []Order
	err := sqlx.SelectContext(ctx, r.db, &out, orderSelect+`
	WHERE p.owner_username = ? ORDER BY o.created_at DESC, o.id`, supplier)
	return out, errors.Wrap(err, "list orders by supplier")
}

func (r *OrderRepo) CountByStatus(ctx context.Context, buyer string) (map[domain.OrderStatus]int, error) {
	rows, err := r.db.QueryxContext(ctx, `
	SELECT status, COUNT(*) FROM orders WHERE buyer_username = ? GROUP BY status`, buyer)
	if err != nil {
		return nil, errors.Wrap(err, "count orders")
	}
	defer rows.Close()
	out := map[domain.OrderStatus]int{}
	for rows.Next() {
		var (
			s domain.OrderStatus
			n int
		)
		if err := rows.Scan(&s, &n); err != nil {
			return nil, errors.Wrap(err, "scan order count")
		}
		out[s] = n
	}
	return out, rows.Err()
}

func (r *OrderRepo) CountIncoming(ctx context.Context, supplier string) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n, `
	SELECT COUNT(*) FROM orders o JOIN products p ON p.id = o.product_id
	WHERE p.owner_username = ?`, supplier)
	return n, errors.Wrap(err, "count incoming orders")
}
