package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvDefaultSlotDurationMin = "DEFAULT_SLOT_DURATION_MIN"
	EnvDefaultSlotStepMin     = "DEFAULT_SLOT_STEP_MIN"
	EnvDefaultBufferBeforeMin = "DEFAULT_BUFFER_BEFORE_MIN"
	EnvDefaultBufferAfterMin  = "DEFAULT_BUFFER_AFTER_MIN"
	EnvDefaultStartOfDay      = "DEFAULT_START_OF_DAY"
	EnvDefaultEndOfDay        = "DEFAULT_END_OF_DAY"
	EnvDefaultTimeZone        = "DEFAULT_TIME_ZONE"

	EnvMinBookingLeadTime      = "MIN_BOOKING_LEAD_TIME"
	EnvExternalCalendarTimeout = "EXTERNAL_CALENDAR_TIMEOUT"
	EnvAvailabilityCacheTTL    = "AVAILABILITY_CACHE_TTL"
	EnvBookingRuleCacheTTL     = "BOOKING_RULE_CACHE_TTL"
	EnvReservationLockTTL      = "RESERVATION_LOCK_TTL"

	EnvGoogleClientID     = "GOOGLE_CLIENT_ID"
	EnvGoogleClientSecret = "GOOGLE_CLIENT_SECRET"

	EnvCalDAVEndpoint = "CALDAV_ENDPOINT"
	EnvCalDAVUsername = "CALDAV_USERNAME"
	EnvCalDAVPassword = "CALDAV_PASSWORD"

	EnvZoomClientID     = "ZOOM_CLIENT_ID"
	EnvZoomClientSecret = "ZOOM_CLIENT_SECRET"

	EnvMSGraphTenantID     = "MSGRAPH_TENANT_ID"
	EnvMSGraphClientID     = "MSGRAPH_CLIENT_ID"
	EnvMSGraphClientSecret = "MSGRAPH_CLIENT_SECRET"
)
