package entity

import (
	"time"

	"github.com/asaskevich/govalidator"
)

// Promo represents the promo table: a time-boxed marketing promotion shown on
// the public site while its window is open.
type Promo struct {
	ID        int       `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	PromoInsert
}

type PromoInsert struct {
	Title    string    `db:"title" json:"title" valid:"required"`
	Body     string    `db:"body" json:"body"`
	StartsAt time.Time `db:"starts_at" json:"startsAt" valid:"required"`
	EndsAt   time.Time `db:"ends_at" json:"endsAt" valid:"required"`
	IsActive bool      `db:"is_active" json:"isActive"`
}

func (pi *PromoInsert) Validate() error {
	_, err := govalidator.ValidateStruct(pi)
	return err
}

// IsRunning reports whether the promotion should be visible right now.
func (p *Promo) IsRunning(now time.Time) bool {
	return p.IsActive && !now.Before(p.StartsAt) && !now.After(p.EndsAt)
}
