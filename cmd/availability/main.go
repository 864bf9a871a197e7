package main

import (
	"bookable/internal/availability/cache"
	"bookable/internal/availability/handler"
	availrepo "bookable/internal/availability/repository"
	availservice "bookable/internal/availability/service"
	availvalidator "bookable/internal/availability/validator"
	"bookable/internal/calendar"
	calrepo "bookable/internal/calendar/repository"
	resrepo "bookable/internal/reservations/repository"
	"bookable/internal/scheduling/busy"
	"bookable/internal/scheduling/rules"
	"bookable/internal/scheduling/slots"
	"bookable/pkg/app"
	"bookable/pkg/config"

	"github.com/joho/godotenv"
)

const ServiceName = "availability"

func main() {
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Availability service")
	availabilityHandler := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(availabilityHandler)
	serverApp.Run()
}

func initServices(cfg *config.Config) *handler.AvailabilityHandler {
	availabilityValidator := availvalidator.NewAvailabilityValidator(cfg.Log)
	profileRepo := availrepo.NewMongoAvailabilityRepository(cfg)
	eventTypeRepo := availrepo.NewMongoEventTypeRepository(cfg)
	reservationRepo := resrepo.NewMongoReservationRepository(cfg)
	connectionRepo := calrepo.NewMongoConnectionRepository(cfg)

	ruleCache := cache.NewRuleSetCache(cfg.AvailabilityCacheTTL)

	registry := calendar.NewDefaultRegistry(cfg)
	externalBusy := calendar.NewConnectionBusyReader(connectionRepo, registry, cfg.Log)
	internalBusy := resrepo.NewInternalBusyReader(reservationRepo)
	aggregator := busy.NewAggregator(internalBusy, externalBusy, cfg.ExternalCalendarTimeout, cfg.Log)

	ruleResolver := rules.NewResolver(rules.LocationConverter{})
	slotResolver := slots.NewResolver(ruleResolver, aggregator, cfg.MinBookingLeadTime)

	profileService := availservice.NewAvailabilityService(profileRepo, availabilityValidator, ruleCache, cfg)
	eventTypeService := availservice.NewEventTypeService(eventTypeRepo, availabilityValidator, cfg)
	slotService := availservice.NewSlotService(profileRepo, eventTypeRepo, ruleCache, slotResolver, cfg)

	cfg.Log.Info("Availability service initialized", "database", cfg.MongoDatabaseName)
	return handler.NewAvailabilityHandler(profileService, eventTypeService, slotService, cfg.Log)
}
