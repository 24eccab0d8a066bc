package validator

import (
	"strings"
	"testing"
	"time"

	"upasana/pkg/logger"
	"upasana/pkg/model"
)

func newTestValidator() *BookingValidator {
	return NewBookingValidator(logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT}))
}

func TestValidateRequest(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name      string
		req       *model.BookingRequest
		wantError string
	}{
		{
			name: "valid request",
			req: &model.BookingRequest{
				MemberID:    "507f1f77bcf86cd799439011",
				BookingDate: "2026-11-14",
			},
		},
		{
			name: "missing member id",
			req: &model.BookingRequest{
				BookingDate: "2026-11-14",
			},
			wantError: "MemberID",
		},
		{
			name: "member id is not an object id",
			req: &model.BookingRequest{
				MemberID:    "not-an-id",
				BookingDate: "2026-11-14",
			},
			wantError: "ObjectID",
		},
		{
			name: "date in wrong format",
			req: &model.BookingRequest{
				MemberID:    "507f1f77bcf86cd799439011",
				BookingDate: "14/11/2026",
			},
			wantError: "YYYY-MM-DD",
		},
		{
			name: "missing date",
			req: &model.BookingRequest{
				MemberID: "507f1f77bcf86cd799439011",
			},
			wantError: "BookingDate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateRequest(tt.req)
			if tt.wantError == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantError) {
				t.Errorf("expected error mentioning %q, got %q", tt.wantError, err.Error())
			}
		})
	}
}

func TestValidateBooking(t *testing.T) {
	v := newTestValidator()

	booking := &model.Booking{
		MemberID:    "507f1f77bcf86cd799439011",
		BookingDate: time.Date(2026, time.November, 14, 0, 0, 0, 0, time.UTC),
		Year:        2026,
		Pool:        model.PoolSaturday,
		Zone:        model.ZoneB,
	}

	if err := v.ValidateBooking(booking); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	booking.Zone = "D"
	if err := v.ValidateBooking(booking); err == nil {
		t.Error("expected error for unknown zone")
	}
}
