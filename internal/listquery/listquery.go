// Package listquery translates the query-string vocabulary of list endpoints
// (sort aliases, grid and page pagination) into the limit/offset primitive the
// store layer works with.
package listquery

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/softkom/site-manager/internal/entity"
)

// SortMapping restricts a caller-supplied sort key to a fixed set of columns.
// Unknown keys degrade to Default silently; permissiveness here is deliberate,
// the admin grid sends whatever column the operator last clicked.
type SortMapping struct {
	Aliases map[string]string
	Allowed map[string]bool
	Default string
}

// Field resolves an external sort key to a sortable column name.
func (m SortMapping) Field(raw string) string {
	field := raw
	if mapped, ok := m.Aliases[raw]; ok {
		field = mapped
	}
	if !m.Allowed[field] {
		return m.Default
	}
	return field
}

// Order maps the external order token to an OrderFactor. Only a
// case-insensitive "asc" selects ascending.
func Order(raw string) entity.OrderFactor {
	if strings.EqualFold(raw, "asc") {
		return entity.Ascending
	}
	return entity.Descending
}

const (
	defaultGridPageSize = 30
	maxPageSize         = 100
)

// GridPage parses the admin-grid convention: _start and _end are row indexes,
// skip = start, take = end - start. Absent parameters default; malformed ones
// are an error so the grid fails loudly instead of silently re-paginating. A
// zero-width window is honored as is and yields an empty page.
func GridPage(q url.Values) (limit, offset int, err error) {
	start, err := intParam(q, "_start", 0)
	if err != nil {
		return 0, 0, err
	}
	end, err := intParam(q, "_end", start+defaultGridPageSize)
	if err != nil {
		return 0, 0, err
	}
	if start < 0 || end < start {
		return 0, 0, fmt.Errorf("invalid range: _start=%d _end=%d", start, end)
	}
	limit = end - start
	if limit > maxPageSize {
		limit = defaultGridPageSize
	}
	return limit, start, nil
}

// PageLimit parses the public convention: page number and page size.
func PageLimit(q url.Values) (limit, offset int, err error) {
	page, err := intParam(q, "page", 1)
	if err != nil {
		return 0, 0, err
	}
	limit, err = intParam(q, "limit", defaultGridPageSize)
	if err != nil {
		return 0, 0, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxPageSize {
		limit = defaultGridPageSize
	}
	return limit, (page - 1) * limit, nil
}

func intParam(q url.Values, name string, def int) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, raw)
	}
	return n, nil
}

// DateRangeParam parses optional inclusive bounds. Accepts a bare date or a
// full RFC 3339 timestamp; a bare "to" date covers the whole day.
func DateRangeParam(q url.Values, fromName, toName string) (entity.DateRange, error) {
	var dr entity.DateRange
	if raw := q.Get(fromName); raw != "" {
		t, _, err := parseDate(raw)
		if err != nil {
			return dr, fmt.Errorf("%s: %w", fromName, err)
		}
		dr.From = &t
	}
	if raw := q.Get(toName); raw != "" {
		t, dateOnly, err := parseDate(raw)
		if err != nil {
			return dr, fmt.Errorf("%s: %w", toName, err)
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		dr.To = &t
	}
	return dr, nil
}

func parseDate(raw string) (t time.Time, dateOnly bool, err error) {
	if t, err = time.Parse("2006-01-02", raw); err == nil {
		return t, true, nil
	}
	if t, err = time.Parse(time.RFC3339, raw); err == nil {
		return t, false, nil
	}
	return time.Time{}, false, fmt.Errorf("expected YYYY-MM-DD or RFC 3339 timestamp, got %q", raw)
}

// BoolParam returns nil when the parameter is absent, so "not supplied" stays
// distinguishable from "false".
func BoolParam(q url.Values, name string) (*bool, error) {
	raw := q.Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be a boolean, got %q", name, raw)
	}
	return &v, nil
}
