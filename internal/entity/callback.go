package entity

import (
	"time"

	"github.com/asaskevich/govalidator"
)

// CallbackRequest represents the callback_request table: "call me back" form
// submissions waiting for a manager.
type CallbackRequest struct {
	ID        int       `db:"id" json:"id"`
	Processed bool      `db:"processed" json:"processed"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	CallbackRequestInsert
}

type CallbackRequestInsert struct {
	Name    string `db:"name" json:"name" valid:"required"`
	Phone   string `db:"phone" json:"phone" valid:"required"`
	Comment string `db:"comment" json:"comment"`
}

func (ci *CallbackRequestInsert) Validate() error {
	_, err := govalidator.ValidateStruct(ci)
	return err
}

// CallbackFilters are combined with AND; nil Processed means "don't filter".
type CallbackFilters struct {
	Search    string
	Processed *bool
}
