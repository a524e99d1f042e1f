package auth

import (
	"context"
	"strings"

	"github.com/jask/stockflow/internal/database/repository"
	"github.com/jask/stockflow/internal/domain"
)

// SignupForm is what the sign-up screen collects.
type SignupForm struct {
	Username string
	Password string
	Confirm  string
	Role     string
}

// Validate checks the form and returns the parsed role.
func (f SignupForm) Validate() (domain.Role, error) {
	if strings.TrimSpace(f.Username) == "" || f.Password == "" || f.Confirm == "" || strings.TrimSpace(f.Role) == "" {
		return domain.RoleNone, domain.ErrMissingFields
	}
	if f.Password != f.Confirm {
		return domain.RoleNone, domain.ErrPasswordMismatch
	}
	return domain.ParseRole(f.Role)
}

// Signup validates the form and registers the user.
func (a *Authenticator) Signup(ctx context.Context, f SignupForm) (*repository.User, error) {
	role, err := f.Validate()
	if err != nil {
		return nil, err
	}
	return a.Register(ctx, f.Username, f.Password, role)
}
