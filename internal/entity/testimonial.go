package entity

import (
	"time"

	"github.com/asaskevich/govalidator"
)

// Testimonial represents the testimonial table.
type Testimonial struct {
	ID        int       `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	TestimonialInsert
}

type TestimonialInsert struct {
	Author      string `db:"author" json:"author" valid:"required"`
	Company     string `db:"company" json:"company"`
	Body        string `db:"body" json:"body" valid:"required"`
	IsPublished bool   `db:"is_published" json:"isPublished"`
}

func (ti *TestimonialInsert) Validate() error {
	_, err := govalidator.ValidateStruct(ti)
	return err
}
