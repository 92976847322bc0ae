package api

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"umbrella-reminder/internal/domain/entity"
	"umbrella-reminder/internal/domain/model"
	"umbrella-reminder/internal/domain/model/external"
	"umbrella-reminder/pkg/http"
)

const currentWeatherPath = "/data/2.5/weather"

// weatherGatewayImpl implements the WeatherGateway interface against OpenWeatherMap
type weatherGatewayImpl struct {
	httpClient *http.Client
	apiKey     string
	circuit    *gobreaker.CircuitBreaker
}

// clientFailure carries a 4xx answer through the circuit breaker without counting it as a provider failure
type clientFailure struct {
	status  int
	message string
}

// NewWeatherGateway creates a new instance of WeatherGateway with HTTP client
func NewWeatherGateway(baseUrl string, apiKey string, clientOptions http.ClientOptions) WeatherGateway {
	clientOptions.DefaultQueryParams = map[string]string{
		"appid": apiKey,
		"units": "metric",
	}
	if clientOptions.Logger == nil {
		clientOptions.Logger = http.ZapLogger{Name: "openweather"}
	}

	circuit := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &weatherGatewayImpl{
		httpClient: http.NewHttpClient(baseUrl, clientOptions),
		apiKey:     apiKey,
		circuit:    circuit,
	}
}

// FetchWeather gets the current weather for a city
func (w *weatherGatewayImpl) FetchWeather(ctx context.Context, city string) (*entity.WeatherSnapshot, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, fmt.Errorf("%w: city is required", model.ErrWeatherLookupFailed)
	}
	if w.apiKey == "" {
		return nil, fmt.Errorf("%w: weather api key is not configured", model.ErrWeatherLookupFailed)
	}

	result, err := w.circuit.Execute(func() (interface{}, error) {
		successResp, errResp, status, err := w.httpClient.Request().
			WithContext(ctx).
			WithMethod(http.GET).
			WithPath(currentWeatherPath).
			WithQueryParams(map[string]string{"q": city}).
			WithSuccessResp(&external.OpenWeatherResponse{}).
			WithErrorResp(&external.OpenWeatherErrorResponse{}).
			Execute()

		if err == nil {
			return successResp, nil
		}

		if status >= 400 && status < 500 {
			failure := clientFailure{status: status}
			if errResp != nil {
				failure.message = errResp.(*external.OpenWeatherErrorResponse).Message
			}
			return failure, nil
		}

		return nil, err
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: provider circuit open: %v", model.ErrWeatherLookupFailed, err)
		}
		return nil, fmt.Errorf("%w: %s: %v", model.ErrWeatherLookupFailed, city, err)
	}

	if failure, ok := result.(clientFailure); ok {
		message := failure.message
		if message == "" {
			message = "city not found"
		}
		return nil, fmt.Errorf("%w: %s: %s (status %d)", model.ErrWeatherLookupFailed, city, message, failure.status)
	}

	return toSnapshot(city, result.(*external.OpenWeatherResponse))
}

// toSnapshot converts the provider payload, rejecting payloads missing main.temp or weather[0]
func toSnapshot(city string, response *external.OpenWeatherResponse) (*entity.WeatherSnapshot, error) {
	if response == nil || response.Main == nil || len(response.Weather) == 0 {
		return nil, fmt.Errorf("%w: %s: malformed provider payload", model.ErrWeatherLookupFailed, city)
	}

	snapshot := entity.NewWeatherSnapshot(
		response.Main.Temp,
		response.Weather[0].Main,
		response.Weather[0].Description,
	)
	return &snapshot, nil
}
