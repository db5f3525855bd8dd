package utils

import "errors"

var (
	// Fatal: these abort an itinerary run.
	ErrMissingAPIKey    = errors.New("recommendation service api key is missing")
	ErrInvalidTripDates = errors.New("trip dates are invalid")
	ErrInvalidInput     = errors.New("invalid input")

	ErrCityNotFound  = errors.New("city not found")
	ErrDatabaseError = errors.New("database error")
)
