package domain

import "errors"

var (
	ErrDuplicateUsername      = errors.New("username already exists")
	ErrInvalidCredentials     = errors.New("invalid username or password")
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrInvalidSupplyChainRole = errors.New("product owner is not the buyer's supplier")
	ErrUnauthorized           = errors.New("not allowed for this role")

	ErrMissingFields        = errors.New("please fill in all fields")
	ErrPasswordMismatch     = errors.New("passwords do not match")
	ErrPasswordTooShort     = errors.New("password is too short")
	ErrUnknownRole          = errors.New("unknown role")
	ErrProductNotFound      = errors.New("product not found")
	ErrDuplicateProduct     = errors.New("product with this name already exists")
	ErrInvalidQuantity      = errors.New("quantity must be positive")
	ErrInvalidPrice         = errors.New("price must not be negative")
	ErrInvalidTransition    = errors.New("invalid order status transition")
	ErrNotificationNotFound = errors.New("notification not found")
)
