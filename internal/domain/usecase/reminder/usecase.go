package reminder

import (
	"context"

	"umbrella-reminder/internal/domain/entity"
	"umbrella-reminder/internal/domain/model"
)

type UseCase interface {
	// DispatchDue runs one scheduler tick: every reminder whose time equals the current HH:MM
	// gets at most one weather email. It never returns an error; failures are logged and counted.
	DispatchDue(ctx context.Context, requestID string) model.TickReport

	// PreviewWeather looks up the current weather for a city without sending anything
	PreviewWeather(ctx context.Context, city string) (*entity.WeatherSnapshot, error)

	// CreateReminder validates and stores a new reminder
	CreateReminder(ctx context.Context, dto model.CreateReminderDTO) (*entity.Reminder, error)
}
