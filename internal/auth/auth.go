package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"

	"github.com/jask/stockflow/internal/database"
	"github.com/jask/stockflow/internal/database/repository"
	"github.com/jask/stockflow/internal/domain"
	"github.com/jask/stockflow/internal/logging"
)

// UserStore is the credential store the Authenticator reads and writes.
type UserStore interface {
	Create(ctx context.Context, u repository.User) error
	ByUsername(ctx context.Context, username string) (*repository.User, error)
	Exists(ctx context.Context, username string) (bool, error)
}

// Authenticator registers users and checks their credentials.
type Authenticator struct {
	Users             UserStore
	Passwords         PasswordManager
	MinPasswordLength int
	Log               log.FieldLogger

	dummyOnce sync.Once
	dummyHash string
}

// Register stores a new user with a hashed password.
func (a *Authenticator) Register(ctx context.Context, username, password string, role domain.Role) (*repository.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.ErrMissingFields
	}
	if !role.Valid() {
		return nil, domain.ErrUnknownRole
	}
	if utf8.RuneCountInString(password) < a.MinPasswordLength {
		return nil, fmt.Errorf("%w: need at least %d characters", domain.ErrPasswordTooShort, a.MinPasswordLength)
	}

	taken, err := a.IsUsernameTaken(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return nil, domain.ErrDuplicateUsername
	}

	hash, err := a.Passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := repository.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    database.Now(),
	}
	// Create maps a lost uniqueness race to ErrDuplicateUsername.
	if err := a.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	logging.Or(a.Log).WithFields(log.Fields{"username": username, "role": role.String()}).Info("user registered")
	return &u, nil
}

// Authenticate reports whether the password matches and, if so, the user's role.
// Unknown users and wrong passwords look the same to the caller. The error is
// reserved for storage failures.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (bool, domain.Role, error) {
	u, err := a.Users.ByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return false, domain.RoleNone, fmt.Errorf("lookup user: %w", err)
	}
	if u == nil {
		// keep timing close to the known-user path
		a.Passwords.Check(a.dummy(), password)
		logging.Or(a.Log).WithField("username", username).Warn("login failed")
		return false, domain.RoleNone, nil
	}
	if !a.Passwords.Check(u.PasswordHash, password) {
		logging.Or(a.Log).WithField("username", username).Warn("login failed")
		return false, domain.RoleNone, nil
	}
	return true, u.Role, nil
}

// IsUsernameTaken is a pure lookup.
func (a *Authenticator) IsUsernameTaken(ctx context.Context, username string) (bool, error) {
	return a.Users.Exists(ctx, strings.TrimSpace(username))
}

func (a *Authenticator) dummy() string {
	a.dummyOnce.Do(func() {
		a.dummyHash, _ = a.Passwords.Hash("stockflow-dummy-password")
	})
	return a.dummyHash
}
