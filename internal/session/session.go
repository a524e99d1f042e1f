// Package session tracks who is logged in and which page they are on.
// A Session is a plain value: every transition returns the next state and
// leaves the receiver untouched.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jask/stockflow/internal/domain"
)

var (
	ErrNotLoggedIn = errors.New("not logged in")
	ErrInvalidPage = errors.New("invalid page")
)

// Page is a session state.
type Page int

const (
	LoggedOut Page = iota
	Dashboard
	Inventory
	Orders
	Notifications
)

// Pages lists the pages reachable while logged in, in menu order.
var Pages = []Page{Dashboard, Inventory, Orders, Notifications}

func (p Page) String() string {
	switch p {
	case LoggedOut:
		return "logged out"
	case Dashboard:
		return "dashboard"
	case Inventory:
		return "inventory"
	case Orders:
		return "orders"
	case Notifications:
		return "notifications"
	default:
		return fmt.Sprintf("page(%d)", int(p))
	}
}

// ParsePage maps a menu entry to a page. "logout" is not a page; callers
// handle it with Logout.
func ParsePage(s string) (Page, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dashboard":
		return Dashboard, nil
	case "inventory":
		return Inventory, nil
	case "orders":
		return Orders, nil
	case "notifications":
		return Notifications, nil
	}
	return LoggedOut, fmt.Errorf("%w: %q", ErrInvalidPage, s)
}

// Authenticator checks credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (bool, domain.Role, error)
}

// Session is the state of one login-to-logout cycle.
type Session struct {
	LoggedIn bool
	Username string
	Role     domain.Role
	Page     Page
}

// New returns a logged-out session.
func New() Session { return Session{Page: LoggedOut} }

// Actor identifies the session's user to the services.
func (s Session) Actor() domain.Actor {
	return domain.Actor{Username: s.Username, Role: s.Role}
}

// Login authenticates and moves to the dashboard. On any failure the
// returned session is still logged out.
func (s Session) Login(ctx context.Context, auth Authenticator, username, password string) (Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return New(), domain.ErrMissingFields
	}
	ok, role, err := auth.Authenticate(ctx, username, password)
	if err != nil {
		return New(), err
	}
	if !ok {
		return New(), domain.ErrInvalidCredentials
	}
	return Session{LoggedIn: true, Username: username, Role: role, Page: Dashboard}, nil
}

// Navigate switches page. The session is returned unchanged on error.
func (s Session) Navigate(p Page) (Session, error) {
	if !s.LoggedIn {
		return s, ErrNotLoggedIn
	}
	switch p {
	case Dashboard, Inventory, Orders, Notifications:
		s.Page = p
		return s, nil
	default:
		return s, fmt.Errorf("%w: %s", ErrInvalidPage, p)
	}
}

// Logout clears the session.
func (s Session) Logout() Session { return New() }
