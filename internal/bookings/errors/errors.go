package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrMemberNotFound = errors.New("member not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrLockHeld = errors.New("slot date is locked by another attempt")

	ErrDuplicateBooking = errors.New("member already holds an active booking this year")

	ErrBookingDisabled = errors.New("booking is currently disabled")
)
