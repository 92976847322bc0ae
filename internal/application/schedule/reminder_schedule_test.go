package schedule

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"umbrella-reminder/internal/domain/entity"
	"umbrella-reminder/internal/domain/model"
)

type blockingUseCase struct {
	entered chan struct{}
	release chan struct{}

	mutex      sync.Mutex
	requestIDs []string
}

func (uc *blockingUseCase) DispatchDue(_ context.Context, requestID string) model.TickReport {
	uc.mutex.Lock()
	uc.requestIDs = append(uc.requestIDs, requestID)
	uc.mutex.Unlock()

	if uc.entered != nil {
		uc.entered <- struct{}{}
		<-uc.release
	}
	return model.TickReport{RequestID: requestID, CurrentTime: "09:00", Matched: 1, Sent: 1}
}

func (uc *blockingUseCase) PreviewWeather(context.Context, string) (*entity.WeatherSnapshot, error) {
	return nil, nil
}

func (uc *blockingUseCase) CreateReminder(context.Context, model.CreateReminderDTO) (*entity.Reminder, error) {
	return nil, nil
}

func TestRunTickSkipsWhileAnotherTickRuns(t *testing.T) {
	useCase := &blockingUseCase{entered: make(chan struct{}, 1), release: make(chan struct{})}
	scheduler, err := NewReminderScheduler(useCase, ReminderSchedulerConfig{Interval: time.Minute}, clockwork.NewFakeClock())
	require.NoError(t, err)

	done := make(chan bool)
	go func() {
		_, ran := scheduler.RunTick(context.Background())
		done <- ran
	}()
	<-useCase.entered

	_, ran := scheduler.RunTick(context.Background())
	assert.False(t, ran)

	close(useCase.release)
	assert.True(t, <-done)

	useCase.entered = nil
	report, ran := scheduler.RunTick(context.Background())
	assert.True(t, ran)
	assert.Equal(t, 1, report.Sent)

	require.Len(t, useCase.requestIDs, 2)
	assert.NotEqual(t, useCase.requestIDs[0], useCase.requestIDs[1])
	assert.Equal(t, 1, scheduler.skipped)
}

func TestSchedulerHealthLifecycle(t *testing.T) {
	useCase := &blockingUseCase{}
	scheduler, err := NewReminderScheduler(useCase, ReminderSchedulerConfig{CronExpression: "* * * * *"}, clockwork.NewFakeClock())
	require.NoError(t, err)

	assert.Equal(t, model.StatusDown, scheduler.Health().Status)

	scheduler.Start()
	health := scheduler.Health()
	assert.Equal(t, model.StatusUnknown, health.Status)
	assert.Equal(t, "cron * * * * *", health.Details["schedule"])

	_, ran := scheduler.RunTick(context.Background())
	require.True(t, ran)
	health = scheduler.Health()
	assert.Equal(t, model.StatusUp, health.Status)
	assert.Equal(t, "1", health.Details["last_sent"])

	require.NoError(t, scheduler.Stop())
	assert.Equal(t, model.StatusDown, scheduler.Health().Status)
}

func TestNewReminderSchedulerRejectsBadCron(t *testing.T) {
	_, err := NewReminderScheduler(&blockingUseCase{}, ReminderSchedulerConfig{CronExpression: "every minute"}, nil)
	assert.Error(t, err)
}
