package domain

// Actor is the logged-in user an operation runs on behalf of.
type Actor struct {
	Username string
	Role     Role
}
