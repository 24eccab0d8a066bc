package main

import (
	"upasana/internal/bookings/events"
	"upasana/internal/bookings/handler"
	"upasana/internal/bookings/repository"
	"upasana/internal/bookings/service"
	"upasana/internal/bookings/validator"
	"upasana/pkg/app"
	"upasana/pkg/config"
	"upasana/pkg/kafka"
	kafka_config "upasana/pkg/kafka/config"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Bookings service")

	publisher := initPublisher(cfg)
	admissionService, bookingService := initServices(cfg, publisher)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewBookingHandler(admissionService, bookingService, cfg.Log),
		handler.NewHealthHandler(cfg),
	)
	serverApp.Run()
}

func initPublisher(cfg *config.Config) events.Publisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, booking events will not be published")
		return events.NoopPublisher{}
	}

	producer, err := kafka.NewProducer(kafka_config.Load(), events.TopicBookings)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	cfg.Log.Info("Kafka producer initialized", "topic", events.TopicBookings)
	return events.NewKafkaPublisher(producer, cfg.Log)
}

func initServices(cfg *config.Config, publisher events.Publisher) (service.AdmissionService, service.BookingService) {
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	lockRepo := repository.NewMongoSlotLockRepository(cfg)
	memberRepo := repository.NewMongoMemberRepository(cfg)

	admissionService := service.NewAdmissionService(
		bookingRepo,
		lockRepo,
		memberRepo,
		bookingValidator,
		publisher,
		cfg,
	)
	bookingService := service.NewBookingService(
		bookingRepo,
		lockRepo,
		publisher,
		cfg,
	)

	cfg.Log.Info("Booking services initialized", "database", cfg.MongoDatabaseName, "booking_year", cfg.BookingYear)
	return admissionService, bookingService
}
