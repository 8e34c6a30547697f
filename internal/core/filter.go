package core

import (
	"strings"
	"time"
)

// Filter is the typed predicate stores evaluate. Zero-valued fields do not
// constrain the result.
type Filter struct {
	// Month is a month-of-year (1-12); the year of the sale date is ignored.
	Month int
	// Search is matched as a case-insensitive substring of title or description.
	Search string
	// From and To bound the sale date to [From, To).
	From time.Time
	To   time.Time
	Sold *bool
}

// SearchFilter selects records sold in the window's month of any year whose
// title or description contains search, taken literally.
func SearchFilter(w MonthWindow, search string) Filter {
	return Filter{Month: w.Index, Search: search}
}

// WindowFilter selects records whose sale date falls inside the window.
func WindowFilter(w MonthWindow) Filter {
	return Filter{From: w.Start, To: w.End}
}

// Matches evaluates the filter against a single record.
func (f Filter) Matches(t Transaction) bool {
	d := t.DateOfSale.UTC()
	if f.Month != 0 && int(d.Month()) != f.Month {
		return false
	}
	if !f.From.IsZero() && d.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !d.Before(f.To) {
		return false
	}
	if f.Sold != nil && t.Sold != *f.Sold {
		return false
	}
	if f.Search == "" {
		return true
	}
	needle := strings.ToLower(f.Search)
	return strings.Contains(strings.ToLower(t.Title), needle) ||
		strings.Contains(strings.ToLower(t.Description), needle)
}
