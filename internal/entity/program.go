package entity

import (
	"fmt"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/shopspring/decimal"
)

type ProgramKind string

const (
	KindProgram ProgramKind = "program"
	KindService ProgramKind = "service"
)

func (k ProgramKind) Valid() bool {
	return k == KindProgram || k == KindService
}

// Program represents the program table: a 1C software product or a service
// offered by the company, distinguished by kind.
type Program struct {
	ID        int       `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
	ProgramInsert
}

type ProgramInsert struct {
	Kind        ProgramKind     `db:"kind" json:"kind" valid:"required"`
	Name        string          `db:"name" json:"name" valid:"required"`
	VendorCode  string          `db:"vendor_code" json:"vendorCode"`
	Description string          `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	IsPublished bool            `db:"is_published" json:"isPublished"`
}

func (pi *ProgramInsert) Validate() error {
	if _, err := govalidator.ValidateStruct(pi); err != nil {
		return err
	}
	if !pi.Kind.Valid() {
		return fmt.Errorf("unknown program kind: %s", pi.Kind)
	}
	return nil
}

type ProgramFilters struct {
	Search string
	Kind   ProgramKind
}
