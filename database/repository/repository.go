// Package repository holds the storage interfaces and the error values
// shared by every backing implementation. Services match these with
// errors.Is and translate them into user-facing responses; storage details
// never cross this boundary.
package repository

import "errors"

var (
	// ErrNotFound is returned when a looked-up record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyAssigned is returned by the accept transaction when the
	// booking is no longer pending or already carries a professional.
	ErrAlreadyAssigned = errors.New("booking already assigned")

	// ErrProfessionalUnavailable is returned by the accept transaction when
	// the professional is offline or already locked to another booking.
	ErrProfessionalUnavailable = errors.New("professional not available")

	// ErrCapabilityMismatch is returned when the professional's
	// specializations do not cover the booking's service category.
	ErrCapabilityMismatch = errors.New("professional lacks required capability")

	// ErrInvalidTransition is returned when a lifecycle operation is applied
	// to a booking in a state it is not legal from.
	ErrInvalidTransition = errors.New("illegal booking state transition")
)
