package domain

import (
	"database/sql/driver"
	"fmt"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusApproved  OrderStatus = "approved"
	StatusRejected  OrderStatus = "rejected"
	StatusFulfilled OrderStatus = "fulfilled"
)

// Statuses in display order.
var Statuses = []OrderStatus{StatusPending, StatusApproved, StatusRejected, StatusFulfilled}

var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusFulfilled, StatusRejected},
}

// CanTransition reports whether moving from s to next is allowed.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s OrderStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

func (s OrderStatus) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusApproved:
		return "Approved"
	case StatusRejected:
		return "Rejected"
	case StatusFulfilled:
		return "Fulfilled"
	default:
		return string(s)
	}
}

func (s OrderStatus) Value() (driver.Value, error) {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusFulfilled:
		return string(s), nil
	}
	return nil, fmt.Errorf("unknown order status %q", string(s))
}

func (s *OrderStatus) Scan(src any) error {
	switch v := src.(type) {
	case string:
		*s = OrderStatus(v)
	case []byte:
		*s = OrderStatus(v)
	default:
		return fmt.Errorf("scan order status: unsupported type %T", src)
	}
	return nil
}
