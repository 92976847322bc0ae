package controller

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"umbrella-reminder/internal/domain/model"
	"umbrella-reminder/internal/domain/usecase/reminder"
)

type WeatherController struct {
	api     *echo.Group
	useCase reminder.UseCase
}

func NewWeatherController(api *echo.Group, useCase reminder.UseCase) *WeatherController {
	return &WeatherController{api: api, useCase: useCase}
}

// InitWeatherRoutes initializes weather routes
func (controller *WeatherController) InitWeatherRoutes() {
	controller.api.GET("/weather", controller.PreviewWeather)
}

// PreviewWeather returns the current weather for the city query parameter.
// Any lookup failure answers 404 City not found.
func (controller *WeatherController) PreviewWeather(c echo.Context) error {
	city := strings.TrimSpace(c.QueryParam("city"))
	if city == "" {
		return c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "City is required"})
	}

	snapshot, err := controller.useCase.PreviewWeather(c.Request().Context(), city)
	if err != nil {
		return c.JSON(http.StatusNotFound, model.ErrorResponse{Error: "City not found"})
	}
	return c.JSON(http.StatusOK, snapshot)
}
