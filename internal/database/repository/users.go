package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/jask/stockflow/internal/domain"
)

// UserRepo stores credentials.
type UserRepo struct {
	db sqlx.ExtContext
}

func NewUserRepo(db sqlx.ExtContext) *UserRepo { return &UserRepo{db: db} }

// WithTx returns a repo bound to tx.
func (r *UserRepo) WithTx(tx *sqlx.Tx) *UserRepo { return &UserRepo{db: tx} }

func (r *UserRepo) Create(ctx context.Context, u User) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO users(username, password_hash, role, created_at)
	VALUES (?, ?, ?, ?)`, u.Username, u.PasswordHash, u.Role, u.CreatedAt)
	if isUniqueViolation(err) {
		return errors.Wrap(domain.ErrDuplicateUsername, u.Username)
	}
	return errors.Wrap(err, "insert user")
}

// ByUsername returns nil when the user does not exist.
func (r *UserRepo) ByUsername(ctx context.Context, username string) (*User, error) {
	var u User
	err := sqlx.GetContext(ctx, r.db, &u, `
	SELECT username, password_hash, role, created_at FROM users WHERE username = ?`, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get user")
	}
	return &u, nil
}

func (r *UserRepo) Exists(ctx context.Context, username string) (bool, error) {
	var n int
	if err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(*) FROM users WHERE username = ?`, username); err != nil {
		return false, errors.Wrap(err, "count users")
	}
	return n > 0, nil
}

func (r *UserRepo) List(ctx context.Context) ([]User, error) {
	var out []User
	err := sqlx.SelectContext(ctx, r.db, &out, `
	SELECT username, password_hash, role, created_at FROM users ORDER BY username`)
	return out, errors.Wrap(err, "list users")
}
