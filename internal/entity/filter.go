package entity

import "time"

type OrderFactor string

const (
	Ascending  OrderFactor = "ASC"
	Descending OrderFactor = "DESC"
)

func (of OrderFactor) String() string {
	if of == Ascending {
		return "ASC"
	}
	return "DESC"
}

// DateRange is an optional inclusive bound pair on a timestamp column.
// A nil side leaves that bound open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

func (dr DateRange) IsZero() bool {
	return dr.From == nil && dr.To == nil
}
