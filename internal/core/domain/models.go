package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Store-level sentinels. Repositories translate driver errors into these
// so callers never match on pgx internals.
var (
	ErrNotFound            = errors.New("not found")
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrInsufficientCredits = errors.New("insufficient credits")
)

// User is a registered account with a prepaid credit balance.
type User struct {
	ID            uuid.UUID
	Name          string
	Email         string
	PasswordHash  string
	CreditBalance int64
	CreatedAt     time.Time
}

// Transaction records one intended credit purchase. It stays pending
// (Payment false) until the gateway confirms the checkout was paid;
// settlement is a one-way transition taken at most once.
type Transaction struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Plan      string
	Credits   int64
	Amount    int64 // major units; multiplied by 100 on the wire to the gateway
	Payment   bool
	CreatedAt time.Time
}
