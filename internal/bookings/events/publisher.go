// Package events emits booking lifecycle notifications for downstream
// consumers (darshan rosters, mahaprasad kitchen planning). Publishing is
// best effort: an unreachable broker never changes an admission verdict.
package events

import (
	"context"

	"upasana/pkg/kafka"
	"upasana/pkg/logger"
	"upasana/pkg/model"
)

const (
	TopicBookings = "upasana.bookings"

	EventBookingAdmitted  = "booking-admitted"
	EventBookingCancelled = "booking-cancelled"

	sourceService = "bookings"
	schemaVersion = "1"
)

// BookingEvent is the payload published on admission and cancellation
type BookingEvent struct {
	BookingID   string     `json:"booking_id"`
	MemberID    string     `json:"member_id"`
	BookingDate string     `json:"booking_date"`
	Year        int        `json:"year"`
	Pool        model.Pool `json:"pool"`
	Zone        model.Zone `json:"zone"`
	Mahaprasad  bool       `json:"mahaprasad"`
}

type Publisher interface {
	BookingAdmitted(ctx context.Context, booking *model.Booking)
	BookingCancelled(ctx context.Context, booking *model.Booking)
}

type kafkaPublisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

func NewKafkaPublisher(producer *kafka.Producer, log *logger.Logger) Publisher {
	return &kafkaPublisher{producer: producer, log: log}
}

func (p *kafkaPublisher) BookingAdmitted(ctx context.Context, booking *model.Booking) {
	p.publish(ctx, EventBookingAdmitted, booking)
}

func (p *kafkaPublisher) BookingCancelled(ctx context.Context, booking *model.Booking) {
	p.publish(ctx, EventBookingCancelled, booking)
}

func (p *kafkaPublisher) publish(ctx context.Context, eventType string, booking *model.Booking) {
	dateKey := booking.BookingDate.Format("2006-01-02")

	msg := kafka.NewMessage().
		WithKey(dateKey).
		WithEventType(eventType).
		WithSource(sourceService).
		WithHeader(kafka.HeaderSchemaVersion, schemaVersion).
		WithValue(BookingEvent{
			BookingID:   booking.ID,
			MemberID:    booking.MemberID,
			BookingDate: dateKey,
			Year:        booking.Year,
			Pool:        booking.Pool,
			Zone:        booking.Zone,
			Mahaprasad:  booking.Mahaprasad,
		}).
		Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}

// NoopPublisher discards events. Used when Kafka is disabled and in tests.
type NoopPublisher struct{}

func (NoopPublisher) BookingAdmitted(ctx context.Context, booking *model.Booking)  {}
func (NoopPublisher) BookingCancelled(ctx context.Context, booking *model.Booking) {}
