package entity

import (
	"time"

	"github.com/asaskevich/govalidator"
)

// Event represents the event table: seminars, webinars and open classes the
// company runs for its clients.
type Event struct {
	ID        int       `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	EventInsert
}

type EventInsert struct {
	Title       string    `db:"title" json:"title" valid:"required"`
	Description string    `db:"description" json:"description"`
	Location    string    `db:"location" json:"location"`
	StartsAt    time.Time `db:"starts_at" json:"startsAt" valid:"required"`
	EndsAt      time.Time `db:"ends_at" json:"endsAt"`
	IsPublished bool      `db:"is_published" json:"isPublished"`
}

func (ei *EventInsert) Validate() error {
	_, err := govalidator.ValidateStruct(ei)
	return err
}

type EventFilters struct {
	Search string
	Dates  DateRange
}

// EventRegistration represents the event_registration table.
type EventRegistration struct {
	ID        int       `db:"id" json:"id"`
	EventID   int       `db:"event_id" json:"eventId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	EventRegistrationInsert
}

type EventRegistrationInsert struct {
	Name  string `db:"name" json:"name" valid:"required"`
	Email string `db:"email" json:"email" valid:"required,email"`
	Phone string `db:"phone" json:"phone"`
}

func (ri *EventRegistrationInsert) Validate() error {
	_, err := govalidator.ValidateStruct(ri)
	return err
}
