package validator

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"bookable/pkg/logger"
	"bookable/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type AvailabilityValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewAvailabilityValidator(log *logger.Logger) *AvailabilityValidator {
	v := validator.New()

	if err := v.RegisterValidation("valid_time_range", validateWallClock); err != nil {
		log.Fatal("Failed to register 'valid_time_range' validator", "error", err)
	}

	log.Info("Availability validator initialized successfully")

	return &AvailabilityValidator{
		validate: v,
		logger:   log,
	}
}

func validateWallClock(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	if value == "" {
		return true
	}
	_, err := time.Parse("15:04", value)
	return err == nil
}

// Validate checks struct tags plus the semantic invariants tags cannot
// express: ranges within one day must not overlap, and a date may carry at
// most one override.
func (v *AvailabilityValidator) Validate(p *model.AvailabilityProfile) error {
	if err := v.validate.Struct(p); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translate(validationErrs)
		}
		return err
	}

	var semantic ValidationErrors
	semantic = append(semantic, checkRangeOrder(p)...)
	semantic = append(semantic, checkDayOverlaps(p.Weekly)...)
	semantic = append(semantic, checkDuplicateOverrides(p.Overrides)...)
	if len(semantic) > 0 {
		return semantic
	}
	return nil
}

func (v *AvailabilityValidator) ValidateEventType(et *model.EventType) error {
	if err := v.validate.Struct(et); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translate(validationErrs)
		}
		return err
	}
	return nil
}

// checkRangeOrder verifies every range ends after it starts. Ranges never
// cross midnight, so "HH:MM" strings compare correctly as plain strings.
func checkRangeOrder(p *model.AvailabilityProfile) ValidationErrors {
	var errs ValidationErrors

	check := func(field string, ranges []model.TimeRange) {
		for _, tr := range ranges {
			if tr.End <= tr.Start {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("range %s-%s must end after it starts", tr.Start, tr.End),
				})
			}
		}
	}

	for _, rule := range p.Weekly {
		check("weekly", rule.Ranges)
	}
	for _, ov := range p.Overrides {
		check("overrides", ov.Ranges)
	}
	return errs
}

// checkDayOverlaps verifies that the union of ranges declared for each
// weekday is pairwise non-overlapping. "HH:MM" strings compare correctly
// as plain strings.
func checkDayOverlaps(weekly []model.WeeklyRule) ValidationErrors {
	byDay := make(map[string][]model.TimeRange)
	for _, rule := range weekly {
		byDay[rule.DayOfWeek] = append(byDay[rule.DayOfWeek], rule.Ranges...)
	}

	var errs ValidationErrors
	for day, ranges := range byDay {
		sorted := make([]model.TimeRange, len(ranges))
		copy(sorted, ranges)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

		for i := 1; i < len(sorted); i++ {
			if sorted[i].Start < sorted[i-1].End {
				errs = append(errs, ValidationError{
					Field: "weekly",
					Message: fmt.Sprintf("%s ranges %s-%s and %s-%s overlap",
						day, sorted[i-1].Start, sorted[i-1].End, sorted[i].Start, sorted[i].End),
				})
			}
		}
	}
	return errs
}

func checkDuplicateOverrides(overrides []model.DateOverride) ValidationErrors {
	seen := make(map[string]struct{}, len(overrides))
	var errs ValidationErrors
	for _, ov := range overrides {
		if _, dup := seen[ov.Date]; dup {
			errs = append(errs, ValidationError{
				Field:   "overrides",
				Message: fmt.Sprintf("duplicate override for date %s", ov.Date),
			})
			continue
		}
		seen[ov.Date] = struct{}{}
	}
	return errs
}

func (v *AvailabilityValidator) translate(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "valid_time_range":
			message = fmt.Sprintf("%s must be in HH:MM 24-hour format", err.Field())
		case "gtfield":
			message = fmt.Sprintf("%s must be after %s", err.Field(), err.Param())
		case "timezone":
			message = fmt.Sprintf("%s must be a valid IANA timezone", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "datetime":
			message = fmt.Sprintf("%s must be a date in YYYY-MM-DD format", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
