package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jask/stockflow/internal/database"
	"github.com/jask/stockflow/internal/database/repository"
	"github.com/jask/stockflow/internal/domain"
)

type fixture struct {
	path          string
	db            *sqlx.DB
	users         *repository.UserRepo
	products      *repository.ProductRepo
	orders        *repository.OrderRepo
	notifications *repository.NotificationRepo

	catalog  *CatalogService
	workflow *WorkflowService
	notes    *NotificationService
	dash     *DashboardService
}

func newFixture(t *testing.T) (*fixture, context.Context) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	dbPath := filepath.Join(t.TempDir(), "test.db")
	migrations, err := filepath.Abs("../database/migrations")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(dbPath, migrations))

	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	f := &fixture{
		path:          dbPath,
		db:            db,
		users:         repository.NewUserRepo(db),
		products:      repository.NewProductRepo(db),
		orders:        repository.NewOrderRepo(db),
		notifications: repository.NewNotificationRepo(db),
	}
	f.catalog = &CatalogService{Products: f.products}
	f.workflow = &WorkflowService{DB: db, Products: f.products, Orders: f.orders, Notifications: f.notifications}
	f.notes = &NotificationService{Notifications: f.notifications}
	f.dash = &DashboardService{Products: f.products, Orders: f.orders, Notifications: f.notifications}
	return f, ctx
}

// user inserts a user row directly; hashing is irrelevant here.
func (f *fixture) user(t *testing.T, ctx context.Context, name string, role domain.Role) domain.Actor {
	t.Helper()
	require.NoError(t, f.users.Create(ctx, repository.User{
		Username: name, PasswordHash: "-", Role: role, CreatedAt: database.Now(),
	}))
	return domain.Actor{Username: name, Role: role}
}

func (f *fixture) product(t *testing.T, ctx context.Context, owner domain.Actor, name string, qty int, price string) *repository.Product {
	t.Helper()
	p, err := f.catalog.AddProduct(ctx, owner, name, qty, decimal.RequireFromString(price))
	require.NoError(t, err)
	return p
}

func (f *fixture) stock(t *testing.T, ctx context.Context, id string) int {
	t.Helper()
	p, err := f.products.Get(ctx, id)
	require.NoError(t, err)
	return p.Quantity
}

func (f *fixture) inbox(t *testing.T, ctx context.Context, username string) []repository.Notification {
	t.Helper()
	list, err := f.notifications.ListByRecipient(ctx, username)
	require.NoError(t, err)
	return list
}
