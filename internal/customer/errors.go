// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package customer

import (
	"context"
	"errors"
)

var (
	// ErrNotFound signals that no customer exists for the requested id.
	ErrNotFound = errors.New("customer not found")
	// ErrDuplicateEmail is returned by a Repository when the email is taken.
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrMissingID is returned when an update is attempted without an id.
	ErrMissingID = errors.New("cannot update customer without an id")
	// ErrDatabase wraps any failure of the underlying storage engine.
	ErrDatabase = errors.New("database error")
)

// ValidationError carries a message that is safe to return to API clients.
type ValidationError struct {
	Msg string
	Err error
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Unwrap() error { return e.Err }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Repository persists customer records.
type Repository interface {
	// Create stores c and returns it with id and timestamps assigned.
	Create(ctx context.Context, c Customer) (Customer, error)
	// Get returns the customer with the given id or ErrNotFound.
	Get(ctx context.Context, id int64) (Customer, error)
	// Update replaces the stored record for c.ID and bumps LastUpdated.
	// An empty c.Status keeps the stored status.
	Update(ctx context.Context, c Customer) (Customer, error)
	// SetStatus changes only the status of id. LastUpdated moves only when
	// the status actually changes.
	SetStatus(ctx context.Context, id int64, st Status) (Customer, error)
	// Delete removes the customer. Deleting a missing id is not an error.
	Delete(ctx context.Context, id int64) error
	// List returns all customers matching f ordered by id.
	List(ctx context.Context, f Filter) ([]Customer, error)
	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
	// Close releases the backend.
	Close() error
}
