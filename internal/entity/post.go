package entity

import (
	"time"

	"github.com/asaskevich/govalidator"
)

// Post represents the post table ("company life" section).
type Post struct {
	ID          int        `db:"id" json:"id"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	PublishedAt *time.Time `db:"published_at" json:"publishedAt"`
	PostInsert
}

type PostInsert struct {
	Title       string `db:"title" json:"title" valid:"required"`
	Body        string `db:"body" json:"body" valid:"required"`
	CoverURL    string `db:"cover_url" json:"coverUrl" valid:"url,optional"`
	IsPublished bool   `db:"is_published" json:"isPublished"`
}

func (pi *PostInsert) Validate() error {
	_, err := govalidator.ValidateStruct(pi)
	return err
}

type PostFilters struct {
	Search string
	Dates  DateRange
}
