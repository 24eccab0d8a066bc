package model

import "time"

// Pool identifies which slot pool a booking draws from
type Pool string

const (
	PoolSaturday Pool = "saturday"
	PoolSunday   Pool = "sunday"
)

// Booking is one member's claim on a visit date. Cancellation flips Active
// to false instead of deleting, so the cancelled-date guard can keep the
// member from re-booking the same date later.
type Booking struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	MemberID    string    `json:"member_id" bson:"member_id" validate:"required,mongodb"`
	BookingDate time.Time `json:"booking_date" bson:"booking_date" validate:"required"`
	Year        int       `json:"year" bson:"year" validate:"required,min=2000,max=2200"`
	Pool        Pool      `json:"pool" bson:"pool" validate:"required,oneof=saturday sunday"`
	Zone        Zone      `json:"zone" bson:"zone" validate:"required,oneof=A B C"`
	Mahaprasad  bool      `json:"mahaprasad" bson:"mahaprasad"`
	Active      bool      `json:"active" bson:"active"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty" validate:"omitempty"`
	UpdatedBy   string    `json:"updated_by,omitempty" bson:"updated_by,omitempty" validate:"omitempty"`
}

// BookingRequest is the inbound payload for an admission attempt
type BookingRequest struct {
	MemberID    string `json:"member_id" validate:"required,mongodb"`
	BookingDate string `json:"booking_date" validate:"required,datetime=2006-01-02"`
	Mahaprasad  bool   `json:"mahaprasad"`
}

// AdmissionResult is the outcome of an admission attempt. A rejected
// attempt is a normal outcome, not an error; only storage faults surface
// as errors.
type AdmissionResult struct {
	Admitted  bool   `json:"admitted"`
	Reason    string `json:"reason,omitempty"`
	BookingID string `json:"booking_id,omitempty"`
}

// SlotStatus describes one season date in the availability listing
type SlotStatus struct {
	Date      string `json:"date"`
	Pool      Pool   `json:"pool"`
	Booked    int    `json:"booked"`
	Capacity  int    `json:"capacity"`
	Available bool   `json:"available"`
}
