package main

import (
	"bookable/internal/availability/cache"
	availrepo "bookable/internal/availability/repository"
	"bookable/internal/calendar"
	calrepo "bookable/internal/calendar/repository"
	"bookable/internal/reservations/handler"
	resrepo "bookable/internal/reservations/repository"
	resservice "bookable/internal/reservations/service"
	resvalidator "bookable/internal/reservations/validator"
	"bookable/internal/scheduling/busy"
	"bookable/internal/scheduling/rules"
	"bookable/internal/scheduling/slots"
	"bookable/pkg/app"
	"bookable/pkg/config"
	"bookable/pkg/kafka"
	kafka_config "bookable/pkg/kafka/config"
	kafka_middleware "bookable/pkg/kafka/middleware"
	"bookable/pkg/model"

	"github.com/joho/godotenv"
)

const ServiceName = "reservations"

func main() {
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Reservations service")
	reservationHandler := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(reservationHandler)
	serverApp.Run()
}

func initServices(cfg *config.Config) *handler.ReservationHandler {
	reservationValidator := resvalidator.NewReservationValidator(cfg.Log)
	reservationRepo := resrepo.NewMongoReservationRepository(cfg)
	lockRepo := resrepo.NewMongoReservationLockRepository(cfg)
	profileRepo := availrepo.NewMongoAvailabilityRepository(cfg)
	eventTypeRepo := availrepo.NewMongoEventTypeRepository(cfg)
	connectionRepo := calrepo.NewMongoConnectionRepository(cfg)

	// Profile updates invalidate only the availability service's in-process
	// cache, so bookings here may see rules up to this TTL stale. Kept short.
	ruleCache := cache.NewRuleSetCache(cfg.BookingRuleCacheTTL)

	registry := calendar.NewDefaultRegistry(cfg)
	externalBusy := calendar.NewConnectionBusyReader(connectionRepo, registry, cfg.Log)
	internalBusy := resrepo.NewInternalBusyReader(reservationRepo)
	aggregator := busy.NewAggregator(internalBusy, externalBusy, cfg.ExternalCalendarTimeout, cfg.Log)

	ruleResolver := rules.NewResolver(rules.LocationConverter{})
	slotResolver := slots.NewResolver(ruleResolver, aggregator, cfg.MinBookingLeadTime)

	producer := initProducer(cfg)

	reservationService := resservice.NewReservationService(
		reservationRepo,
		lockRepo,
		reservationValidator,
		eventTypeRepo,
		profileRepo,
		ruleCache,
		slotResolver,
		producer,
		cfg,
	)

	cfg.Log.Info("Reservation service initialized", "database", cfg.MongoDatabaseName)
	return handler.NewReservationHandler(reservationService, cfg.Log)
}

// initProducer builds the reservation event producer. A broker that is down
// at startup only disables event fan-out; booking keeps working.
func initProducer(cfg *config.Config) resservice.EventPublisher {
	kafkaCfg := kafka_config.Load()
	producer, err := kafka.NewProducer(kafkaCfg, model.TopicReservationEvents, model.TopicReservationEventsDLQ)
	if err != nil {
		cfg.Log.Error("Failed to initialize Kafka producer, events disabled", "error", err)
		return nil
	}

	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(kafka_middleware.MetricsProducerMiddleware())
	return producer
}
