package model

import "errors"

var (
	// ErrStoreUnavailable aborts a whole tick.
	ErrStoreUnavailable = errors.New("reminder store unavailable")
	// ErrWeatherLookupFailed skips one reminder.
	ErrWeatherLookupFailed = errors.New("weather lookup failed")
	// ErrEmailDeliveryFailed skips one reminder, no retry.
	ErrEmailDeliveryFailed = errors.New("email delivery failed")
	// ErrInvalidReminder rejects a registration before it reaches the store.
	ErrInvalidReminder = errors.New("invalid reminder")
)
