package reminder

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"umbrella-reminder/internal/domain/entity"
	"umbrella-reminder/internal/domain/gateway/api"
	"umbrella-reminder/internal/domain/gateway/db"
	"umbrella-reminder/internal/domain/gateway/ledger"
	"umbrella-reminder/internal/domain/gateway/mail"
	"umbrella-reminder/internal/domain/model"
	"umbrella-reminder/internal/domain/notification"
	"umbrella-reminder/pkg/log"
	"umbrella-reminder/pkg/msg"
	"umbrella-reminder/pkg/util/timeutils"
)

// Config carries the dispatch settings resolved from application properties
type Config struct {
	// Location is the fixed offset reminder times are expressed in
	Location *time.Location
	// From is the sender address of every email
	From string

	StoreTimeout   time.Duration
	WeatherTimeout time.Duration
	MailTimeout    time.Duration
}

type outcome int

const (
	outcomeSent outcome = iota
	outcomeDuplicate
	outcomeFailed
)

type reminderUseCase struct {
	config          Config
	clock           clockwork.Clock
	reminderGateway db.ReminderGateway
	weatherGateway  api.WeatherGateway
	mailSender      mail.Sender
	dispatchLedger  ledger.DispatchLedger
}

func NewReminderUseCase(config Config, clock clockwork.Clock, reminderGateway db.ReminderGateway, weatherGateway api.WeatherGateway, mailSender mail.Sender, dispatchLedger ledger.DispatchLedger) UseCase {
	if config.Location == nil {
		config.Location = time.UTC
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &reminderUseCase{
		config:          config,
		clock:           clock,
		reminderGateway: reminderGateway,
		weatherGateway:  weatherGateway,
		mailSender:      mailSender,
		dispatchLedger:  dispatchLedger,
	}
}

func (uc *reminderUseCase) DispatchDue(ctx context.Context, requestID string) model.TickReport {
	now := uc.clock.Now().In(uc.config.Location)
	report := model.TickReport{
		RequestID:   requestID,
		StartedAt:   now,
		CurrentTime: timeutils.ClockTime(now),
	}
	minuteKey := timeutils.MinuteKey(now)

	log.Info(msg.GetMessage("scheduler.tick.start", report.CurrentTime), zap.String("request_id", requestID))

	storeCtx, cancel := uc.withTimeout(ctx, uc.config.StoreTimeout)
	reminders, err := uc.reminderGateway.ReadAll(storeCtx)
	cancel()
	if err != nil {
		report.StoreUnavailable = true
		log.Error(msg.GetMessage("dispatch.store-unavailable"), zap.String("request_id", requestID), zap.Error(err))
		return report
	}

	report.Reminders = len(reminders)
	if len(reminders) == 0 {
		log.Info(msg.GetMessage("dispatch.empty"), zap.String("request_id", requestID))
		return report
	}

	for _, reminder := range dueReminders(reminders, report.CurrentTime) {
		if ctx.Err() != nil {
			break
		}

		report.Matched++
		switch uc.dispatch(ctx, requestID, reminder, minuteKey) {
		case outcomeSent:
			report.Sent++
		case outcomeDuplicate:
			report.Duplicates++
		case outcomeFailed:
			report.Failed++
		}
	}

	log.Info(msg.GetMessage("scheduler.tick.end", report.CurrentTime),
		zap.String("request_id", requestID),
		zap.Int("reminders", report.Reminders),
		zap.Int("matched", report.Matched),
		zap.Int("sent", report.Sent),
		zap.Int("duplicates", report.Duplicates),
		zap.Int("failed", report.Failed))

	return report
}

// dueReminders returns the reminders whose time equals currentTime exactly, ordered by ID
func dueReminders(reminders map[string]entity.Reminder, currentTime string) []entity.Reminder {
	due := make([]entity.Reminder, 0)
	for id, reminder := range reminders {
		if reminder.Time != currentTime {
			continue
		}
		if reminder.ID == "" {
			reminder.ID = id
		}
		due = append(due, reminder)
	}

	sort.Slice(due, func(i, j int) bool {
		return due[i].ID < due[j].ID
	})

	return due
}

// dispatch claims the reminder for this minute before any external call, so a claimed
// reminder is attempted exactly once even when its weather lookup or email fails.
func (uc *reminderUseCase) dispatch(ctx context.Context, requestID string, reminder entity.Reminder, minuteKey string) outcome {
	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("reminder_id", reminder.ID),
		zap.String("city", reminder.City),
	}

	claimed, err := uc.dispatchLedger.Claim(ctx, reminder.ID, minuteKey)
	if err != nil {
		log.Error(msg.GetMessage("dispatch.ledger-failed", reminder.ID), append(fields, zap.Error(err))...)
		return outcomeFailed
	}
	if !claimed {
		log.Warn(msg.GetMessage("dispatch.duplicate", reminder.ID, minuteKey), fields...)
		return outcomeDuplicate
	}

	weatherCtx, cancelWeather := uc.withTimeout(ctx, uc.config.WeatherTimeout)
	snapshot, err := uc.weatherGateway.FetchWeather(weatherCtx, lookupCity(reminder.City))
	cancelWeather()
	if err != nil {
		log.Error(msg.GetMessage("dispatch.weather-failed", reminder.ID, reminder.City), append(fields, zap.Error(err))...)
		return outcomeFailed
	}

	message := notification.Compose(reminder.Email, *snapshot, reminder.City)
	message.From = uc.config.From

	mailCtx, cancelMail := uc.withTimeout(ctx, uc.config.MailTimeout)
	err = uc.mailSender.Send(mailCtx, message)
	cancelMail()
	if err != nil {
		log.Error(msg.GetMessage("dispatch.email-failed", reminder.ID), append(fields, zap.Error(err))...)
		return outcomeFailed
	}

	log.Info(msg.GetMessage("dispatch.sent", reminder.Email, reminder.City),
		append(fields, zap.Bool("is_rain", snapshot.IsRain))...)
	return outcomeSent
}

func (uc *reminderUseCase) PreviewWeather(ctx context.Context, city string) (*entity.WeatherSnapshot, error) {
	name := lookupCity(city)
	if name == "" {
		return nil, fmt.Errorf("%w: city is required", model.ErrWeatherLookupFailed)
	}

	weatherCtx, cancel := uc.withTimeout(ctx, uc.config.WeatherTimeout)
	defer cancel()

	return uc.weatherGateway.FetchWeather(weatherCtx, name)
}

func (uc *reminderUseCase) CreateReminder(ctx context.Context, dto model.CreateReminderDTO) (*entity.Reminder, error) {
	clock, err := timeutils.NormalizeClock(dto.Time)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidReminder, err)
	}

	email := strings.TrimSpace(dto.Email)
	city := strings.TrimSpace(dto.City)
	if email == "" || city == "" {
		return nil, fmt.Errorf("%w: email and city are required", model.ErrInvalidReminder)
	}

	storeCtx, cancel := uc.withTimeout(ctx, uc.config.StoreTimeout)
	defer cancel()

	created, err := uc.reminderGateway.Create(storeCtx, entity.Reminder{Email: email, City: city, Time: clock})
	if err != nil {
		log.Error(msg.GetMessage("reminder.create-failed", email), zap.Error(err))
		return nil, err
	}

	log.Info(msg.GetMessage("reminder.created", created.ID, created.Email, created.Time))
	return created, nil
}

func (uc *reminderUseCase) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// lookupCity drops any region qualifier after the first comma ("Paris, FR" becomes "Paris")
func lookupCity(city string) string {
	name, _, _ := strings.Cut(city, ",")
	return strings.TrimSpace(name)
}
