package entity

import (
	"regexp"
	"strings"
	"time"
)

// Subscriber represents the subscriber table. Unsubscribing flips is_active
// instead of deleting the row, so a returning address can be reactivated.
type Subscriber struct {
	ID        int       `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// SubscriberFilters are combined with AND; a nil IsActive means "don't filter".
type SubscriberFilters struct {
	Search   string
	IsActive *bool
}

// SubscriberUpdate carries a partial update; nil fields are left untouched.
type SubscriberUpdate struct {
	Email    *string `json:"email"`
	IsActive *bool   `json:"isActive"`
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NormalizeEmail lower-cases and trims an address. Idempotent.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}
