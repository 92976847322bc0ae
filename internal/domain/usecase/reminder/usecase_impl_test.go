package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"umbrella-reminder/internal/domain/entity"
	"umbrella-reminder/internal/domain/gateway/ledger"
	"umbrella-reminder/internal/domain/model"
	"umbrella-reminder/internal/domain/notification"
	"umbrella-reminder/pkg/util/timeutils"
)

var (
	rainyParis = entity.WeatherSnapshot{Temperature: 15, Condition: "Rain", Description: "light rain", IsRain: true}
	clearPune  = entity.WeatherSnapshot{Temperature: 31, Condition: "Clear", Description: "clear sky"}
)

type fixture struct {
	clock   *clockwork.FakeClock
	store   *fakeStore
	weather *fakeWeather
	mailer  *fakeMailer
	useCase UseCase
}

// newFixture starts the clock at the given local time in +05:30 on 2025-03-01
func newFixture(t *testing.T, localTime string, reminders map[string]entity.Reminder) *fixture {
	t.Helper()

	location, err := timeutils.ParseOffset("+05:30")
	require.NoError(t, err)

	start, err := time.ParseInLocation("2006-01-02 15:04:05", "2025-03-01 "+localTime+":00", location)
	require.NoError(t, err)

	f := &fixture{
		clock: clockwork.NewFakeClockAt(start.UTC()),
		store: &fakeStore{reminders: reminders},
		weather: &fakeWeather{snapshots: map[string]entity.WeatherSnapshot{
			"Paris": rainyParis,
			"Pune":  clearPune,
		}},
		mailer: &fakeMailer{},
	}
	f.useCase = NewReminderUseCase(Config{
		Location:       location,
		From:           "reminders@example.com",
		StoreTimeout:   time.Second,
		WeatherTimeout: time.Second,
		MailTimeout:    time.Second,
	}, f.clock, f.store, f.weather, f.mailer, ledger.NewMemoryLedger())

	return f
}

func TestDispatchRainyReminderAtMatchingMinute(t *testing.T) {
	f := newFixture(t, "09:00", map[string]entity.Reminder{
		"r1": {Email: "a@x.com", City: "Paris", Time: "09:00"},
	})

	report := f.useCase.DispatchDue(context.Background(), "req-1")

	assert.Equal(t, "09:00", report.CurrentTime)
	assert.Equal(t, 1, report.Matched)
	assert.Equal(t, 1, report.Sent)

	sent := f.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "a@x.com", sent[0].To)
	assert.Equal(t, "reminders@example.com", sent[0].From)
	assert.Equal(t, "☂ Weather Update for Paris", sent[0].Subject)
	assert.Contains(t, sent[0].HTML, notification.RainAlert)
	assert.NotContains(t, sent[0].HTML, notification.SunnyAlert)
}

func TestDispatchSkipsNonMatchingMinute(t *testing.T) {
	f := newFixture(t, "09:01", map[string]entity.Reminder{
		"r1": {Email: "a@x.com", City: "Paris", Time: "09:00"},
	})

	report := f.useCase.DispatchDue(context.Background(), "req-1")

	assert.Equal(t, 1, report.Reminders)
	assert.Zero(t, report.Matched)
	assert.Empty(t, f.weather.Calls())
	assert.Empty(t, f.mailer.Sent())
}

func TestDispatchMatchesOnlyExactTimeStrings(t *testing.T) {
	f := newFixture(t, "09:00", map[string]entity.Reminder{
		"r1": {Email: "a@x.com", City: "Paris", Time: "09:00"},
		"r2": {Email: "b@x.com", City: "Paris", Time: "9:00"},
		"r3": {Email: "c@x.com", City: "Paris", Time: "09:00:00"},
		"r4": {Email: "d@x.com", City: "Paris", Time: "21:00"},
	})

	report := f.useCase.DispatchDue(context.Background(), "req-1")

	assert.Equal(t, 4, report.Reminders)
	assert.Equal(t, 1, report.Matched)
	sent := f.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "a@x.com", sent[0].To)
}

func TestDispatchWeatherFailureIsIsolated(t *testing.T) {
	f := newFixture(t, "09:00", map[string]entity.Reminder{
		"r1": {Email: "a@x.com", City: "Atlantis", Time: "09:00"},
		"r2": {Email: "b@x.com", City: "Pune", Time: "09:00"},
	})

	report := f.useCase.DispatchDue(context.Background(), "req-1")

	assert.Equal(t, 2, report.Matched)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Sent)
	assert.Equal(t, []string{"Atlantis", "Pune"}, f.weather.Calls())

	sent := f.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "b@x.com", sent[0].To)
	assert.Contains(t, sent[0].HTML, notification.SunnyAlert)
}

func TestDispatchEmptyStore(t *testing.T) {
	f := newFixture(t, "09:00", map[string]entity.Reminder{})

	report := f.useCase.DispatchDue(context.Background(), "req-1")

	assert.False(t, report.StoreUnavailable)
	assert.Zero(t, report.Reminders)
	assert.Zero(t, report.Matched)
	assert.Empty(t, f.weather.Calls())
	assert.Zero(t, f.mailer.attempts)
}

func TestDispatchStoreUnavailableEndsTick(t *testing.T) {
	f := newFixture(t, "09:00", nil)
	f.store.err = model.ErrStoreUnavailable

	report := f.useCase.DispatchDue(context.Background(), "req-1")

	assert.True(t, report.StoreUnavailable)
	assert.Zero(t, report.Matched)
	assert.Empty(t, f.weather.Calls())
}

func TestDispatchEmailFailureContinues(t *testing.T) {
	f := newFixture(t, "09:00", map[string]entity.Reminder{
		"r1": {Email: "a@x.com", City: "Paris", Time: "09:00"},
		"r2": {Email: "b@x.com", City: "Pune", Time: "09:00"},
	})
	f.mailer.failFor = map[string]bool{"a@x.com": true}

	report := f.useCase.DispatchDue(context.Background(), "req-1")

	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Sent)
	assert.Equal(t, 2, f.mailer.attempts)
}

func TestDispatchNoBackfillWhenMinuteSkipped(t *testing.T) {
	f := newFixture(t, "08:59", map[string]entity.Reminder{
		"r1": {Email: "a@x.com", City: "Paris", Time: "09:00"},
	})

	first := f.useCase.DispatchDue(context.Background(), "req-1")
	// a delayed tick lands on 09:01, stepping over 09:00
	f.clock.Advance(2 * time.Minute)
	second := f.useCase.DispatchDue(context.Background(), "req-2")

	assert.Equal(t, "08:59", first.CurrentTime)
	assert.Equal(t, "09:01", second.CurrentTime)
	assert.Zero(t, first.Matched+second.Matched)
	assert.Empty(t, f.weather.Calls())
	assert.Empty(t, f.mailer.Sent())
}

func TestDispatchOverlappingTicksSendOnce(t *testing.T) {
	f := newFixture(t, "09:00", map[string]entity.Reminder{
		"r1": {Email: "a@x.com", City: "Paris", Time: "09:00"},
	})
	f.weather.entered = make(chan struct{}, 1)
	f.weather.release = make(chan struct{})

	firstDone := make(chan model.TickReport)
	go func() {
		firstDone <- f.useCase.DispatchDue(context.Background(), "req-1")
	}()

	// the first tick holds its weather lookup while the second tick runs over the same minute
	<-f.weather.entered
	second := f.useCase.DispatchDue(context.Background(), "req-2")
	close(f.weather.release)
	first := <-firstDone

	assert.Equal(t, 1, first.Sent)
	assert.Equal(t, 1, second.Duplicates)
	assert.Zero(t, second.Sent)
	assert.Len(t, f.weather.Calls(), 1)
	assert.Len(t, f.mailer.Sent(), 1)
}

func TestDispatchSameMinuteRepeatedDoesNotResend(t *testing.T) {
	f := newFixture(t, "09:00", map[string]entity.Reminder{
		"r1": {Email: "a@x.com", City: "Paris", Time: "09:00"},
	})

	f.useCase.DispatchDue(context.Background(), "req-1")
	f.clock.Advance(30 * time.Second)
	again := f.useCase.DispatchDue(context.Background(), "req-2")

	assert.Equal(t, 1, again.Duplicates)
	assert.Len(t, f.mailer.Sent(), 1)

	// the next day's 09:00 is a new minute
	f.clock.Advance(24 * time.Hour)
	nextDay := f.useCase.DispatchDue(context.Background(), "req-3")
	assert.Equal(t, 1, nextDay.Sent)
	assert.Len(t, f.mailer.Sent(), 2)
}

func TestDispatchLedgerFailureSkipsReminder(t *testing.T) {
	f := newFixture(t, "09:00", map[string]entity.Reminder{
		"r1": {Email: "a@x.com", City: "Paris", Time: "09:00"},
	})
	f.useCase = NewReminderUseCase(Config{Location: f.useCase.(*reminderUseCase).config.Location},
		f.clock, f.store, f.weather, f.mailer, failingLedger{})

	report := f.useCase.DispatchDue(context.Background(), "req-1")

	assert.Equal(t, 1, report.Failed)
	assert.Empty(t, f.weather.Calls())
	assert.Empty(t, f.mailer.Sent())
}

func TestDispatchSlowLookupIsBoundedByTimeout(t *testing.T) {
	f := newFixture(t, "09:00", map[string]entity.Reminder{
		"r1": {Email: "a@x.com", City: "Paris", Time: "09:00"},
		"r2": {Email: "b@x.com", City: "Pune", Time: "09:00"},
	})
	f.weather.blockUntilDone = true
	f.useCase = NewReminderUseCase(Config{
		Location:       f.useCase.(*reminderUseCase).config.Location,
		WeatherTimeout: 20 * time.Millisecond,
	}, f.clock, f.store, f.weather, f.mailer, ledger.NewMemoryLedger())

	report := f.useCase.DispatchDue(context.Background(), "req-1")

	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, []string{"Paris", "Pune"}, f.weather.Calls())
}

func TestDispatchStripsRegionForLookup(t *testing.T) {
	f := newFixture(t, "09:00", map[string]entity.Reminder{
		"r2": {Email: "b@x.com", City: "Pune, IN", Time: "09:00"},
		"r1": {Email: "a@x.com", City: "Paris, FR", Time: "09:00"},
	})

	report := f.useCase.DispatchDue(context.Background(), "req-1")

	assert.Equal(t, 2, report.Sent)
	assert.Equal(t, []string{"Paris", "Pune"}, f.weather.Calls())
	sent := f.mailer.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "☂ Weather Update for Paris, FR", sent[0].Subject)
	assert.Equal(t, "☂ Weather Update for Pune, IN", sent[1].Subject)
}

func TestDispatchUsesStoreKeyWhenRecordHasNoID(t *testing.T) {
	due := dueReminders(map[string]entity.Reminder{
		"b": {Time: "09:00"},
		"a": {ID: "a", Time: "09:00"},
		"c": {Time: "10:00"},
	}, "09:00")

	require.Len(t, due, 2)
	assert.Equal(t, "a", due[0].ID)
	assert.Equal(t, "b", due[1].ID)
}

func TestPreviewWeather(t *testing.T) {
	f := newFixture(t, "09:00", nil)

	snapshot, err := f.useCase.PreviewWeather(context.Background(), " Paris, FR ")
	require.NoError(t, err)
	assert.Equal(t, rainyParis, *snapshot)

	_, err = f.useCase.PreviewWeather(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, model.ErrWeatherLookupFailed)

	_, err = f.useCase.PreviewWeather(context.Background(), "  ")
	assert.ErrorIs(t, err, model.ErrWeatherLookupFailed)
	assert.Len(t, f.weather.Calls(), 2)
}

func TestCreateReminder(t *testing.T) {
	f := newFixture(t, "09:00", nil)

	created, err := f.useCase.CreateReminder(context.Background(), model.CreateReminderDTO{
		Email: " a@x.com ",
		City:  "Paris, FR",
		Time:  "9:05",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.Reminder{ID: "r1", Email: "a@x.com", City: "Paris, FR", Time: "09:05"}, *created)
	assert.Len(t, f.store.created, 1)
}

func TestCreateReminderRejectsInvalidInput(t *testing.T) {
	f := newFixture(t, "09:00", nil)

	_, err := f.useCase.CreateReminder(context.Background(), model.CreateReminderDTO{Email: "a@x.com", City: "Paris", Time: "25:00"})
	assert.ErrorIs(t, err, model.ErrInvalidReminder)

	_, err = f.useCase.CreateReminder(context.Background(), model.CreateReminderDTO{Email: "a@x.com", City: " ", Time: "09:00"})
	assert.ErrorIs(t, err, model.ErrInvalidReminder)

	assert.Empty(t, f.store.created)
}

func TestCreateReminderStoreFailure(t *testing.T) {
	f := newFixture(t, "09:00", nil)
	f.store.err = errors.Join(model.ErrStoreUnavailable, errors.New("timeout"))

	_, err := f.useCase.CreateReminder(context.Background(), model.CreateReminderDTO{Email: "a@x.com", City: "Paris", Time: "09:00"})

	assert.ErrorIs(t, err, model.ErrStoreUnavailable)
}
