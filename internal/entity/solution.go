package entity

import (
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/shopspring/decimal"
)

// Solution represents the solution table: a packaged 1C configuration sold
// as-is ("ready solution").
type Solution struct {
	ID        int       `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	SolutionInsert
}

type SolutionInsert struct {
	Title       string          `db:"title" json:"title" valid:"required"`
	Description string          `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	IsPublished bool            `db:"is_published" json:"isPublished"`
}

func (si *SolutionInsert) Validate() error {
	_, err := govalidator.ValidateStruct(si)
	return err
}

// SolutionOrder represents the solution_order table. Reference is a uuid
// handed back to the visitor so managers can find the order later.
type SolutionOrder struct {
	ID         int       `db:"id" json:"id"`
	Reference  string    `db:"reference" json:"reference"`
	SolutionID int       `db:"solution_id" json:"solutionId"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	SolutionOrderInsert
}

type SolutionOrderInsert struct {
	Name    string `db:"name" json:"name" valid:"required"`
	Email   string `db:"email" json:"email" valid:"required,email"`
	Phone   string `db:"phone" json:"phone"`
	Comment string `db:"comment" json:"comment"`
}

func (oi *SolutionOrderInsert) Validate() error {
	_, err := govalidator.ValidateStruct(oi)
	return err
}
