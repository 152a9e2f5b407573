// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package customer holds the customer account record, its validation rules
// and the field filter used to search the customer table.
package customer

import (
	"fmt"
	"time"
)

// Status is the account state of a customer.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

// Statuses lists every valid Status in display order.
var Statuses = []Status{StatusActive, StatusSuspended}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusSuspended:
		return true
	}
	return false
}

// String returns the string representation of Status.
func (s Status) String() string {
	return string(s)
}

// ParseStatus validates raw against the status enumeration.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", &ValidationError{Msg: fmt.Sprintf("Invalid status '%s'. Must be one of: %s, %s", raw, StatusActive, StatusSuspended)}
	}
	return s, nil
}

// Action is a state transition requested through the action endpoint.
type Action string

const (
	ActionActivate Action = "activate"
	ActionSuspend  Action = "suspend"
)

// Target returns the status the action moves a customer to.
func (a Action) Target() Status {
	switch a {
	case ActionActivate:
		return StatusActive
	case ActionSuspend:
		return StatusSuspended
	}
	return ""
}

// ParseAction validates raw against the action enumeration.
func ParseAction(raw string) (Action, error) {
	a := Action(raw)
	if a.Target() == "" {
		return "", &ValidationError{Msg: fmt.Sprintf("Invalid action '%s'. Must be one of: %s, %s", raw, ActionActivate, ActionSuspend)}
	}
	return a, nil
}

// Column size limits. They match the table definition.
const (
	MaxNameLen     = 63
	MaxPasswordLen = 63
	MaxEmailLen    = 255
	MaxAddressLen  = 255
)

// Customer is a single customer account record.
type Customer struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	Password     string    `json:"password"`
	Address      string    `json:"address"`
	Status       Status    `json:"status"`
	CreationDate time.Time `json:"creation_date"`
	LastUpdated  time.Time `json:"last_updated"`
}

// String renders the customer for logs and debugging.
func (c Customer) String() string {
	return fmt.Sprintf("<Customer %s %s id=[%d]>", c.FirstName, c.LastName, c.ID)
}

// Value returns the value of a searchable text field.
func (c Customer) Value(f Field) string {
	switch f {
	case FieldFirstName:
		return c.FirstName
	case FieldLastName:
		return c.LastName
	case FieldEmail:
		return c.Email
	case FieldPassword:
		return c.Password
	case FieldAddress:
		return c.Address
	case FieldStatus:
		return string(c.Status)
	}
	return ""
}
