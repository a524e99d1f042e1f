package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jask/stockflow/internal/domain"
)

// User represents a users row.
type User struct {
	Username     string      `db:"username"`
	PasswordHash string      `db:"password_hash" json:"-"`
	Role         domain.Role `db:"role"`
	CreatedAt    time.Time   `db:"created_at"`
}

// Product represents a products row.
type Product struct {
	ID            string          `db:"id"`
	Name          string          `db:"name"`
	OwnerUsername string          `db:"owner_username"`
	OwnerRole     domain.Role     `db:"owner_role"`
	Quantity      int             `db:"quantity"`
	Price         decimal.Decimal `db:"price"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

// Order represents an orders row. ProductName and SupplierUsername are
// joined from products on reads and ignored on insert.
type Order struct {
	ID               string             `db:"id"`
	BuyerUsername    string             `db:"buyer_username"`
	BuyerRole        domain.Role        `db:"buyer_role"`
	ProductID        string             `db:"product_id"`
	Quantity         int                `db:"quantity"`
	UnitPrice        decimal.Decimal    `db:"unit_price"`
	Status           domain.OrderStatus `db:"status"`
	Reason           string             `db:"reason"`
	CreatedAt        time.Time          `db:"created_at"`
	UpdatedAt        time.Time          `db:"updated_at"`
	ProductName      string             `db:"product_name"`
	SupplierUsername string             `db:"supplier_username"`
}

// Total is quantity times unit price.
func (o Order) Total() decimal.Decimal {
	return o.UnitPrice.Mul(decimal.NewFromInt(int64(o.Quantity)))
}

// Notification represents a notifications row.
type Notification struct {
	ID        string    `db:"id"`
	Recipient string    `db:"recipient_username"`
	Message   string    `db:"message"`
	CreatedAt time.Time `db:"created_at"`
	Read      bool      `db:"read"`
}
