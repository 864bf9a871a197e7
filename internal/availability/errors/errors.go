package errors

import "errors"

var (
	ErrNotFound = errors.New("availability profile not found")

	ErrInvalidID = errors.New("invalid availability profile ID format")

	ErrProfileExists = errors.New("host already has an availability profile")

	ErrEventTypeNotFound = errors.New("event type not found")
)
