package domain

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Role identifies where a user sits in the supply chain.
type Role uint8

const (
	RoleNone Role = iota
	Customer
	Retailer
	Wholesaler
	Manufacturer
)

// Roles lists every assignable role in supply chain order, downstream first.
var Roles = []Role{Customer, Retailer, Wholesaler, Manufacturer}

// String returns the storage key.
func (r Role) String() string {
	switch r {
	case Customer:
		return "customer"
	case Retailer:
		return "retailer"
	case Wholesaler:
		return "wholesaler"
	case Manufacturer:
		return "manufacturer"
	default:
		return ""
	}
}

// Label is the name shown to users.
func (r Role) Label() string {
	switch r {
	case Customer:
		return "End Customer"
	case Retailer:
		return "Retailer"
	case Wholesaler:
		return "Wholesaler"
	case Manufacturer:
		return "Manufacturer"
	default:
		return "Unknown"
	}
}

// Supplier returns the role a buyer of role r orders from.
// Manufacturers have no supplier.
func (r Role) Supplier() (Role, bool) {
	switch r {
	case Customer:
		return Retailer, true
	case Retailer:
		return Wholesaler, true
	case Wholesaler:
		return Manufacturer, true
	default:
		return RoleNone, false
	}
}

// Sells reports whether users of this role own inventory.
func (r Role) Sells() bool {
	switch r {
	case Retailer, Wholesaler, Manufacturer:
		return true
	default:
		return false
	}
}

// Valid reports whether r is one of the assignable roles.
func (r Role) Valid() bool {
	return r >= Customer && r <= Manufacturer
}

// ParseRole accepts either the storage key or the display label, case-insensitively.
func ParseRole(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, r := range Roles {
		if s == r.String() || s == strings.ToLower(r.Label()) {
			return r, nil
		}
	}
	if s == "end_customer" || s == "end-customer" {
		return Customer, nil
	}
	return RoleNone, fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

func (r Role) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRole, r)
	}
	return r.String(), nil
}

func (r *Role) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("scan role: unsupported type %T", src)
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
