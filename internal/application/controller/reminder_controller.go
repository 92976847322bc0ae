package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"umbrella-reminder/internal/domain/model"
	"umbrella-reminder/internal/domain/usecase/reminder"
)

type ReminderController struct {
	api     *echo.Group
	useCase reminder.UseCase
}

func NewReminderController(api *echo.Group, useCase reminder.UseCase) *ReminderController {
	return &ReminderController{api: api, useCase: useCase}
}

// InitReminderRoutes initializes reminder routes
func (controller *ReminderController) InitReminderRoutes() {
	controller.api.POST("/reminders", controller.CreateReminder)
}

// CreateReminder registers a daily reminder from an {email, city, time} body
func (controller *ReminderController) CreateReminder(c echo.Context) error {
	var dto model.CreateReminderDTO

	if err := c.Bind(&dto); err != nil {
		return c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request body"})
	}
	if err := c.Validate(&dto); err != nil {
		return c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
	}

	created, err := controller.useCase.CreateReminder(c.Request().Context(), dto)
	if err != nil {
		if errors.Is(err, model.ErrInvalidReminder) {
			return c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{Error: "Reminder could not be saved"})
	}

	return c.JSON(http.StatusCreated, created)
}
