package config

import "time"

// Weekday names are stored as they appear in availability profiles.
type Weekday = string

const (
	Sunday    Weekday = "Sunday"
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
)

// Reservation status values.
const (
	Confirmed = "confirmed"
	Cancelled = "cancelled"
)

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "bookable"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultDefaultSlotDurationMin = 30
	DefaultDefaultSlotStepMin     = 0 // 0 = same as duration
	DefaultDefaultBufferBeforeMin = 0
	DefaultDefaultBufferAfterMin  = 0
	DefaultDefaultStartOfDay      = "09:00"
	DefaultDefaultEndOfDay        = "17:00"
	DefaultDefaultTimeZone        = "UTC"

	DefaultMinBookingLeadTime      = 0 * time.Minute
	DefaultExternalCalendarTimeout = 5 * time.Second
	DefaultAvailabilityCacheTTL    = 5 * time.Minute
	DefaultBookingRuleCacheTTL     = 30 * time.Second
	DefaultReservationLockTTL      = 10 * time.Second

	DefaultCalDAVEndpoint = "https://caldav.icloud.com/"

	DefaultPaginationLimit = 100
)

var (
	DefaultWorkingDaysIsrael = []Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday}
	DefaultWorkingDaysUs     = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}
)
