package api

import (
	"context"

	"umbrella-reminder/internal/domain/entity"
)

// WeatherGateway defines the interface for weather-related external API calls
type WeatherGateway interface {
	// FetchWeather gets the current weather for a city name without any region qualifier.
	// Every failure wraps model.ErrWeatherLookupFailed.
	FetchWeather(ctx context.Context, city string) (*entity.WeatherSnapshot, error)
}
