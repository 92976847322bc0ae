package reminder

import (
	"context"
	"fmt"
	"sync"

	"umbrella-reminder/internal/domain/entity"
	"umbrella-reminder/internal/domain/gateway/mail"
	"umbrella-reminder/internal/domain/model"
)

type fakeStore struct {
	reminders map[string]entity.Reminder
	err       error

	mutex   sync.Mutex
	reads   int
	created []entity.Reminder
}

func (store *fakeStore) ReadAll(context.Context) (map[string]entity.Reminder, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	store.reads++

	if store.err != nil {
		return nil, store.err
	}
	return store.reminders, nil
}

func (store *fakeStore) Create(_ context.Context, reminder entity.Reminder) (*entity.Reminder, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	if store.err != nil {
		return nil, store.err
	}
	reminder.ID = fmt.Sprintf("r%d", len(store.created)+1)
	store.created = append(store.created, reminder)
	return &reminder, nil
}

type fakeWeather struct {
	snapshots map[string]entity.WeatherSnapshot

	// entered and release let a test hold a lookup in flight
	entered chan struct{}
	release chan struct{}
	// blockUntilDone makes every lookup wait for its context to end
	blockUntilDone bool

	mutex sync.Mutex
	calls []string
}

func (weather *fakeWeather) FetchWeather(ctx context.Context, city string) (*entity.WeatherSnapshot, error) {
	weather.mutex.Lock()
	weather.calls = append(weather.calls, city)
	weather.mutex.Unlock()

	if weather.entered != nil {
		weather.entered <- struct{}{}
		<-weather.release
	}
	if weather.blockUntilDone {
		<-ctx.Done()
		return nil, fmt.Errorf("%w: %v", model.ErrWeatherLookupFailed, ctx.Err())
	}

	snapshot, ok := weather.snapshots[city]
	if !ok {
		return nil, fmt.Errorf("%w: city not found", model.ErrWeatherLookupFailed)
	}
	return &snapshot, nil
}

func (weather *fakeWeather) Calls() []string {
	weather.mutex.Lock()
	defer weather.mutex.Unlock()
	return append([]string(nil), weather.calls...)
}

type fakeMailer struct {
	failFor map[string]bool

	mutex    sync.Mutex
	attempts int
	sent     []mail.Message
}

func (mailer *fakeMailer) Send(_ context.Context, message mail.Message) error {
	mailer.mutex.Lock()
	defer mailer.mutex.Unlock()
	mailer.attempts++

	if mailer.failFor[message.To] {
		return fmt.Errorf("%w: connection reset", model.ErrEmailDeliveryFailed)
	}
	mailer.sent = append(mailer.sent, message)
	return nil
}

func (mailer *fakeMailer) Sent() []mail.Message {
	mailer.mutex.Lock()
	defer mailer.mutex.Unlock()
	return append([]mail.Message(nil), mailer.sent...)
}

type failingLedger struct{}

func (failingLedger) Claim(context.Context, string, string) (bool, error) {
	return false, fmt.Errorf("redis: connection refused")
}

func (failingLedger) Health() model.ComponentHealthStatus {
	return model.ComponentHealthStatus{Status: model.StatusDown}
}
