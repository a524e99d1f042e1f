package auth

import "golang.org/x/crypto/bcrypt"

// PasswordManager hashes and verifies passwords.
type PasswordManager interface {
	Hash(password string) (string, error)
	Check(hash, password string) bool
}

// BcryptManager is the production PasswordManager. A zero Cost uses bcrypt.DefaultCost.
type BcryptManager struct {
	Cost int
}

func (m BcryptManager) Hash(password string) (string, error) {
	cost := m.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (m BcryptManager) Check(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
