package core

import (
	"fmt"
	"time"
)

// DefaultReferenceYear anchors month windows when no year is configured.
const DefaultReferenceYear = 2024

// MonthNames lists the accepted month names in calendar order.
var MonthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// MonthWindow is the resolved form of a month name: its 1-based index and the
// half-open UTC range [Start, End) for that month in the reference year.
type MonthWindow struct {
	Index int
	Name  string
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls within [Start, End).
func (w MonthWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// MonthResolver maps month names to windows in a fixed reference year.
type MonthResolver struct {
	Year int
}

// NewMonthResolver returns a resolver for year, falling back to
// DefaultReferenceYear when year is not positive.
func NewMonthResolver(year int) MonthResolver {
	if year <= 0 {
		year = DefaultReferenceYear
	}
	return MonthResolver{Year: year}
}

// MonthIndex returns the 1-based position of name in MonthNames. Matching is
// exact and case-sensitive.
func MonthIndex(name string) (int, error) {
	for i, m := range MonthNames {
		if m == name {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMonth, name)
}

// Resolve validates name and computes its window.
func (r MonthResolver) Resolve(name string) (MonthWindow, error) {
	idx, err := MonthIndex(name)
	if err != nil {
		return MonthWindow{}, err
	}

	year := r.Year
	if year <= 0 {
		year = DefaultReferenceYear
	}

	nextYear, nextMonth := year, idx+1
	if nextMonth > 12 {
		nextYear, nextMonth = year+1, 1
	}

	return MonthWindow{
		Index: idx,
		Name:  name,
		Start: time.Date(year, time.Month(idx), 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(nextYear, time.Month(nextMonth), 1, 0, 0, 0, 0, time.UTC),
	}, nil
}
