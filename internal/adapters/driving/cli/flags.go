package cli

import (
	"strconv"
	"time"

	"github.com/custodia-labs/geovis/internal/core/domain"
)

func parseID(name, value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(name, "must be a positive integer")
	}
	return id, nil
}

// parseTimeFlag accepts RFC 3339 timestamps or plain dates, read as UTC
// midnight. An empty value is the zero time.
func parseTimeFlag(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	return time.Time{}, domain.NewValidationError(name, "expected RFC 3339 timestamp or YYYY-MM-DD")
}

func parseCategory(value string) (*domain.Category, error) {
	if value == "" {
		return nil, nil
	}
	c := domain.Category(value)
	if !c.IsValid() {
		return nil, domain.NewValidationError("category", "unknown category "+value)
	}
	return &c, nil
}

func parsePriority(value string) (*domain.Priority, error) {
	if value == "" {
		return nil, nil
	}
	p := domain.Priority(value)
	if !p.IsValid() {
		return nil, domain.NewValidationError("priority", "unknown priority "+value)
	}
	return &p, nil
}

// parseTriState reads "", "true" or "false".
func parseTriState(name, value string) (*bool, error) {
	if value == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return nil, domain.NewValidationError(name, "must be true or false")
	}
	return &b, nil
}

// window resolves --from/--to, filling whichever is missing from the
// period's default window.
func window(fromValue, toValue string, period domain.Period) (from, to time.Time, err error) {
	if from, err = parseTimeFlag("from", fromValue); err != nil {
		return from, to, err
	}
	if to, err = parseTimeFlag("to", toValue); err != nil {
		return from, to, err
	}
	defFrom, defTo := period.DefaultWindow(now())
	if from.IsZero() {
		from = defFrom
	}
	if to.IsZero() {
		to = defTo
	}
	return from, to, nil
}
