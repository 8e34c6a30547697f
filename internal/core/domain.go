package core

import (
	"errors"
	"time"
)

type (
	// Transaction is a single sale record of the catalog. Records are only
	// ever created by a bulk load and are read-only afterwards.
	Transaction struct {
		ID          int64     `json:"id"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		Price       float64   `json:"price"`
		DateOfSale  time.Time `json:"dateOfSale"`
		Category    string    `json:"category"`
		Sold        bool      `json:"sold"`
		Image       string    `json:"image,omitempty"`
	}
)

var (
	ErrInvalidMonth     = errors.New("invalid month")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidRecord    = errors.New("invalid record")
	ErrLoadInProgress   = errors.New("load already in progress")
)

// Normalize returns a copy of the transaction with its sale date in UTC.
func (t Transaction) Normalize() Transaction {
	t.DateOfSale = t.DateOfSale.UTC()
	return t
}

// SameContent reports whether two records carry the same data, ignoring the
// store-assigned identity.
func (t Transaction) SameContent(o Transaction) bool {
	return t.Title == o.Title &&
		t.Description == o.Description &&
		t.Price == o.Price &&
		t.DateOfSale.Equal(o.DateOfSale) &&
		t.Category == o.Category &&
		t.Sold == o.Sold &&
		t.Image == o.Image
}
