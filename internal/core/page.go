package core

import (
	"math"
	"strconv"
	"strings"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 10
)

// Page selects a slice of an ordered result set. Number is 1-based.
type Page struct {
	Number  int
	PerPage int
}

// ParsePage reads page and per-page values as positive integers. Anything
// else falls back to the defaults instead of failing.
func ParsePage(page, perPage string) Page {
	return Page{
		Number:  positiveOr(page, DefaultPage),
		PerPage: positiveOr(perPage, DefaultPerPage),
	}
}

func positiveOr(v string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return def
	}
	return n
}

// Offset is the number of records preceding the page. It saturates at
// math.MaxInt so pages far past the end stay past the end.
func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	limit := p.Limit()
	if p.Number-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (p.Number - 1) * limit
}

// Limit is the page size, never less than 1.
func (p Page) Limit() int {
	if p.PerPage < 1 {
		return DefaultPerPage
	}
	return p.PerPage
}

// TotalPages is ceil(total / PerPage).
func (p Page) TotalPages(total int) int {
	if total <= 0 {
		return 0
	}
	return (total-1)/p.Limit() + 1
}

// TransactionPage is one page of a filtered listing.
type TransactionPage struct {
	Transactions []Transaction `json:"transactions"`
	TotalPages   int           `json:"totalPages"`
	Page         int           `json:"page"`
	PerPage      int           `json:"perPage"`
	Total        int           `json:"total"`
}
