// Package seed fetches the catalog's source records and turns them into
// validated transactions ready for a bulk load.
package seed

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"salestats/internal/core"
)

// Record is a source document as published upstream. Pointer fields let
// validation tell a missing field apart from a zero value.
type Record struct {
	Title       *string    `json:"title" validate:"required"`
	Description *string    `json:"description" validate:"required"`
	Price       *float64   `json:"price" validate:"required,gte=0"`
	DateOfSale  *time.Time `json:"dateOfSale" validate:"required"`
	Category    *string    `json:"category" validate:"required"`
	Sold        *bool      `json:"sold" validate:"required"`
	Image       string     `json:"image"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func recordValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		// Report JSON field names in errors
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate checks that every required field is present and well-formed.
func (r Record) Validate() error {
	err := recordValidator().Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", core.ErrInvalidRecord, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field()+" ("+fe.Tag()+")")
	}
	return fmt.Errorf("%w: %s", core.ErrInvalidRecord, strings.Join(fields, ", "))
}

// Transaction converts a validated record. Call Validate first.
func (r Record) Transaction() core.Transaction {
	return core.Transaction{
		Title:       *r.Title,
		Description: *r.Description,
		Price:       *r.Price,
		DateOfSale:  *r.DateOfSale,
		Category:    *r.Category,
		Sold:        *r.Sold,
		Image:       r.Image,
	}.Normalize()
}

// ToTransactions validates every record and converts the whole batch. The
// first invalid record fails the batch.
func ToTransactions(records []Record) ([]core.Transaction, error) {
	out := make([]core.Transaction, 0, len(records))
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, r.Transaction())
	}
	return out, nil
}
