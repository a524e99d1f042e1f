package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/jask/stockflow/internal/domain"
)

const productColumns = `id, name, owner_username, owner_role, quantity, price, created_at, updated_at`

// ProductRepo handles the catalog.
type ProductRepo struct {
	db sqlx.ExtContext
}

func NewProductRepo(db sqlx.ExtContext) *ProductRepo { return &ProductRepo{db: db} }

// WithTx returns a repo bound to tx.
func (r *ProductRepo) WithTx(tx *sqlx.Tx) *ProductRepo { return &ProductRepo{db: tx} }

func (r *ProductRepo) Insert(ctx context.Context, p Product) error {
	_, err := sqlx.NamedExecContext(ctx, r.db, `
	INSERT INTO products(`+productColumns+`)
	VALUES (:id, :name, :owner_username, :owner_role, :quantity, :price, :created_at, :updated_at)`, p)
	if isUniqueViolation(err) {
		return errors.Wrapf(domain.ErrDuplicateProduct, "%s/%s", p.OwnerUsername, p.Name)
	}
	return errors.Wrap(err, "insert product")
}

func (r *ProductRepo) Get(ctx context.Context, id string) (*Product, error) {
	var p Product
	err := sqlx.GetContext(ctx, r.db, &p, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrap(domain.ErrProductNotFound, id)
		}
		return nil, errors.Wrap(err, "get product")
	}
	return &p, nil
}

// ByOwnerAndName returns nil when the owner has no product with that name.
func (r *ProductRepo) ByOwnerAndName(ctx context.Context, owner, name string) (*Product, error) {
	var p Product
	err := sqlx.GetContext(ctx, r.db, &p, `
	SELECT `+productColumns+` FROM products WHERE owner_username = ? AND name = ?`, owner, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get product by name")
	}
	return &p, nil
}

func (r *ProductRepo) ListByOwner(ctx context.Context, owner string) ([]Product, error) {
	var out []Product
	err := sqlx.SelectContext(ctx, r.db, &out, `
	SELECT `+productColumns+` FROM products WHERE owner_username = ? ORDER BY name`, owner)
	return out, errors.Wrap(err, "list products by owner")
}

func (r *ProductRepo) ListByOwnerRole(ctx context.Context, role domain.Role) ([]Product, error) {
	var out []Product
	err := sqlx.SelectContext(ctx, r.db, &out, `
	SELECT `+productColumns+` FROM products WHERE owner_role = ? ORDER BY name, owner_username`, role)
	return out, errors.Wrap(err, "list products by role")
}

// Decrement removes qty units only if that many are in stock. It reports
// false, leaving the row untouched, when stock is short.
func (r *ProductRepo) Decrement(ctx context.Context, id string, qty int, now time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
	UPDATE products SET quantity = quantity - ?, updated_at = ?
	WHERE id = ? AND quantity >= ?`, qty, now, id, qty)
	if err != nil {
		if isCheckViolation(err) {
			return false, nil
		}
		return false, errors.Wrap(err, "decrement stock")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "decrement stock")
	}
	return n == 1, nil
}

func (r *ProductRepo) Increment(ctx context.Context, id string, qty int, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `
	UPDATE products SET quantity = quantity + ?, updated_at = ? WHERE id = ?`, qty, now, id)
	if err != nil {
		return errors.Wrap(err, "increment stock")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "increment stock")
	}
	if n == 0 {
		return errors.Wrap(domain.ErrProductNotFound, id)
	}
	return nil
}
