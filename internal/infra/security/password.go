package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var errEmptyPassword = errors.New("empty password")

// BcryptService hashes and checks operator passwords.
type BcryptService struct {
	cost int
}

// NewBcryptService clamps cost into the range bcrypt accepts. Anything
// below the minimum means the default cost.
func NewBcryptService(cost int) *BcryptService {
	switch {
	case cost < bcrypt.MinCost:
		cost = bcrypt.DefaultCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &BcryptService{cost: cost}
}

func (s *BcryptService) Hash(password string) (string, error) {
	if password == "" {
		return "", errEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(hash), nil
}

// Compare fails for an operator that has no hash configured.
func (s *BcryptService) Compare(hash, password string) error {
	if hash == "" {
		return bcrypt.ErrHashTooShort
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// Outdated reports whether hash is unreadable or was made with a lower
// cost than s uses.
func (s *BcryptService) Outdated(hash string) bool {
	cost, err := bcrypt.Cost([]byte(hash))
	return err != nil || cost < s.cost
}
