package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		MongoURI:          DefaultMongoURI,
		MongoDatabaseName: DefaultMongoDatabaseName,
		MongoConnTimeout:  DefaultMongoConnTimeout,

		Port: DefaultPort,

		RateLimitRequests: DefaultRateLimitRequests,
		RateLimitWindow:   DefaultRateLimitWindow,

		RequestTimeout: DefaultRequestTimeout,
		IdempotencyTTL: DefaultIdempotencyTTL,
		MaxRequestSize: DefaultMaxRequestSize,

		ReadTimeout:     DefaultReadTimeout,
		WriteTimeout:    DefaultWriteTimeout,
		IdleTimeout:     DefaultIdleTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,

		DefaultSlotDurationMin: DefaultDefaultSlotDurationMin,
		DefaultSlotStepMin:     DefaultDefaultSlotStepMin,
		DefaultStartOfDay:      DefaultDefaultStartOfDay,
		DefaultEndOfDay:        DefaultDefaultEndOfDay,
		DefaultTimeZone:        DefaultDefaultTimeZone,

		ExternalCalendarTimeout: DefaultExternalCalendarTimeout,
		AvailabilityCacheTTL:    DefaultAvailabilityCacheTTL,
		BookingRuleCacheTTL:     DefaultBookingRuleCacheTTL,
		ReservationLockTTL:      DefaultReservationLockTTL,
	}
}

func TestValidateDefaults(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("default configuration must validate: %v", err)
	}
}

func TestValidateRejectsBadDurations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "zero booking rule cache ttl",
			mutate: func(c *Config) { c.BookingRuleCacheTTL = 0 },
			want:   "BookingRuleCacheTTL",
		},
		{
			name:   "zero availability cache ttl",
			mutate: func(c *Config) { c.AvailabilityCacheTTL = 0 },
			want:   "AvailabilityCacheTTL",
		},
		{
			name:   "negative lead time",
			mutate: func(c *Config) { c.MinBookingLeadTime = -time.Minute },
			want:   "MinBookingLeadTime",
		},
		{
			name:   "zero reservation lock ttl",
			mutate: func(c *Config) { c.ReservationLockTTL = 0 },
			want:   "ReservationLockTTL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %s", err, tt.want)
			}
		})
	}
}
