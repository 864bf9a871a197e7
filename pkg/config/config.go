package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"bookable/pkg/client"
	"bookable/pkg/logger"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	DefaultSlotDurationMin int
	DefaultSlotStepMin     int
	DefaultBufferBeforeMin int
	DefaultBufferAfterMin  int
	DefaultStartOfDay      string
	DefaultEndOfDay        string
	DefaultTimeZone        string

	DefaultWorkingDaysIsrael []Weekday
	DefaultWorkingDaysUs     []Weekday

	MinBookingLeadTime      time.Duration
	ExternalCalendarTimeout time.Duration
	AvailabilityCacheTTL    time.Duration
	BookingRuleCacheTTL     time.Duration
	ReservationLockTTL      time.Duration

	GoogleClientID     string
	GoogleClientSecret string

	CalDAVEndpoint string
	CalDAVUsername string
	CalDAVPassword string

	ZoomClientID     string
	ZoomClientSecret string

	MSGraphTenantID     string
	MSGraphClientID     string
	MSGraphClientSecret string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		DefaultSlotDurationMin: getEnvNum(EnvDefaultSlotDurationMin, DefaultDefaultSlotDurationMin),
		DefaultSlotStepMin:     getEnvNum(EnvDefaultSlotStepMin, DefaultDefaultSlotStepMin),
		DefaultBufferBeforeMin: getEnvNum(EnvDefaultBufferBeforeMin, DefaultDefaultBufferBeforeMin),
		DefaultBufferAfterMin:  getEnvNum(EnvDefaultBufferAfterMin, DefaultDefaultBufferAfterMin),
		DefaultStartOfDay:      getEnvStr(EnvDefaultStartOfDay, DefaultDefaultStartOfDay),
		DefaultEndOfDay:        getEnvStr(EnvDefaultEndOfDay, DefaultDefaultEndOfDay),
		DefaultTimeZone:        getEnvStr(EnvDefaultTimeZone, DefaultDefaultTimeZone),

		DefaultWorkingDaysIsrael: DefaultWorkingDaysIsrael,
		DefaultWorkingDaysUs:     DefaultWorkingDaysUs,

		MinBookingLeadTime:      getEnvDuration(EnvMinBookingLeadTime, DefaultMinBookingLeadTime),
		ExternalCalendarTimeout: getEnvDuration(EnvExternalCalendarTimeout, DefaultExternalCalendarTimeout),
		AvailabilityCacheTTL:    getEnvDuration(EnvAvailabilityCacheTTL, DefaultAvailabilityCacheTTL),
		BookingRuleCacheTTL:     getEnvDuration(EnvBookingRuleCacheTTL, DefaultBookingRuleCacheTTL),
		ReservationLockTTL:      getEnvDuration(EnvReservationLockTTL, DefaultReservationLockTTL),

		GoogleClientID:     getEnvStr(EnvGoogleClientID, ""),
		GoogleClientSecret: getEnvStr(EnvGoogleClientSecret, ""),

		CalDAVEndpoint: getEnvStr(EnvCalDAVEndpoint, DefaultCalDAVEndpoint),
		CalDAVUsername: getEnvStr(EnvCalDAVUsername, ""),
		CalDAVPassword: getEnvStr(EnvCalDAVPassword, ""),

		ZoomClientID:     getEnvStr(EnvZoomClientID, ""),
		ZoomClientSecret: getEnvStr(EnvZoomClientSecret, ""),

		MSGraphTenantID:     getEnvStr(EnvMSGraphTenantID, ""),
		MSGraphClientID:     getEnvStr(EnvMSGraphClientID, ""),
		MSGraphClientSecret: getEnvStr(EnvMSGraphClientSecret, ""),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	timeRegex := regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	if !timeRegex.MatchString(cfg.DefaultStartOfDay) {
		errors = append(errors, fmt.Sprintf("DefaultStartOfDay must be in HH:MM format (00:00-23:59), got: %s", cfg.DefaultStartOfDay))
	}
	if !timeRegex.MatchString(cfg.DefaultEndOfDay) {
		errors = append(errors, fmt.Sprintf("DefaultEndOfDay must be in HH:MM format (00:00-23:59), got: %s", cfg.DefaultEndOfDay))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", cfg.MongoURI))
	}

	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	if cfg.MongoConnTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}
	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if cfg.DefaultSlotDurationMin <= 0 {
		errors = append(errors, fmt.Sprintf("DefaultSlotDurationMin must be positive, got: %d", cfg.DefaultSlotDurationMin))
	}
	if cfg.DefaultSlotStepMin < 0 {
		errors = append(errors, fmt.Sprintf("DefaultSlotStepMin cannot be negative, got: %d", cfg.DefaultSlotStepMin))
	}
	if cfg.DefaultBufferBeforeMin < 0 {
		errors = append(errors, fmt.Sprintf("DefaultBufferBeforeMin cannot be negative, got: %d", cfg.DefaultBufferBeforeMin))
	}
	if cfg.DefaultBufferAfterMin < 0 {
		errors = append(errors, fmt.Sprintf("DefaultBufferAfterMin cannot be negative, got: %d", cfg.DefaultBufferAfterMin))
	}
	if _, err := time.LoadLocation(cfg.DefaultTimeZone); err != nil {
		errors = append(errors, fmt.Sprintf("DefaultTimeZone must be a valid IANA zone, got: %s", cfg.DefaultTimeZone))
	}

	if cfg.MinBookingLeadTime < 0 {
		errors = append(errors, fmt.Sprintf("MinBookingLeadTime cannot be negative, got: %s", cfg.MinBookingLeadTime))
	}
	if cfg.ExternalCalendarTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ExternalCalendarTimeout must be positive, got: %s", cfg.ExternalCalendarTimeout))
	}
	if cfg.AvailabilityCacheTTL <= 0 {
		errors = append(errors, fmt.Sprintf("AvailabilityCacheTTL must be positive, got: %s", cfg.AvailabilityCacheTTL))
	}
	if cfg.BookingRuleCacheTTL <= 0 {
		errors = append(errors, fmt.Sprintf("BookingRuleCacheTTL must be positive, got: %s", cfg.BookingRuleCacheTTL))
	}
	if cfg.ReservationLockTTL <= 0 {
		errors = append(errors, fmt.Sprintf("ReservationLockTTL must be positive, got: %s", cfg.ReservationLockTTL))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"default_slot_duration_min", cfg.DefaultSlotDurationMin,
		"default_slot_step_min", cfg.DefaultSlotStepMin,
		"default_buffer_before_min", cfg.DefaultBufferBeforeMin,
		"default_buffer_after_min", cfg.DefaultBufferAfterMin,
		"default_start_of_day", cfg.DefaultStartOfDay,
		"default_end_of_day", cfg.DefaultEndOfDay,
		"default_time_zone", cfg.DefaultTimeZone,
		"min_booking_lead_time", cfg.MinBookingLeadTime,
		"external_calendar_timeout", cfg.ExternalCalendarTimeout,
		"availability_cache_ttl", cfg.AvailabilityCacheTTL,
		"booking_rule_cache_ttl", cfg.BookingRuleCacheTTL,
		"reservation_lock_ttl", cfg.ReservationLockTTL,
		"google_credentials_set", cfg.GoogleClientID != "",
		"caldav_credentials_set", cfg.CalDAVUsername != "",
		"zoom_credentials_set", cfg.ZoomClientID != "",
		"msgraph_credentials_set", cfg.MSGraphClientID != "",
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown()
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
