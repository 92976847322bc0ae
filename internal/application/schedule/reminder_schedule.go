package schedule

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"umbrella-reminder/internal/domain/model"
	"umbrella-reminder/internal/domain/usecase/reminder"
	"umbrella-reminder/pkg/log"
	"umbrella-reminder/pkg/msg"
)

// ReminderSchedulerConfig holds the tick timing. CronExpression wins over Interval when set.
type ReminderSchedulerConfig struct {
	Interval       time.Duration
	CronExpression string
	Location       *time.Location
	StopTimeout    time.Duration
}

// ReminderScheduler fires the dispatch tick and keeps at most one tick running at a time
type ReminderScheduler struct {
	scheduler gocron.Scheduler
	job       gocron.Job
	useCase   reminder.UseCase
	config    ReminderSchedulerConfig

	running sync.Mutex

	statusMutex sync.RWMutex
	started     bool
	lastReport  *model.TickReport
	skipped     int
}

func NewReminderScheduler(useCase reminder.UseCase, config ReminderSchedulerConfig, clock clockwork.Clock) (*ReminderScheduler, error) {
	if config.Interval <= 0 {
		config.Interval = time.Minute
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.StopTimeout <= 0 {
		config.StopTimeout = 30 * time.Second
	}

	options := []gocron.SchedulerOption{
		gocron.WithLocation(config.Location),
		gocron.WithStopTimeout(config.StopTimeout),
		gocron.WithLogger(gocronLogger{}),
	}
	if clock != nil {
		options = append(options, gocron.WithClock(clock))
	}

	scheduler, err := gocron.NewScheduler(options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	s := &ReminderScheduler{
		scheduler: scheduler,
		useCase:   useCase,
		config:    config,
	}

	s.job, err = scheduler.NewJob(
		s.jobDefinition(),
		gocron.NewTask(func(ctx context.Context) {
			s.RunTick(ctx)
		}),
		gocron.WithName("reminder-dispatch"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule reminder dispatch: %w", err)
	}

	return s, nil
}

func (s *ReminderScheduler) jobDefinition() gocron.JobDefinition {
	if s.config.CronExpression != "" {
		return gocron.CronJob(s.config.CronExpression, false)
	}
	return gocron.DurationJob(s.config.Interval)
}

func (s *ReminderScheduler) describe() string {
	if s.config.CronExpression != "" {
		return "cron " + s.config.CronExpression
	}
	return "every " + s.config.Interval.String()
}

// Start begins firing ticks in the background
func (s *ReminderScheduler) Start() {
	s.scheduler.Start()

	s.statusMutex.Lock()
	s.started = true
	s.statusMutex.Unlock()

	log.Info(msg.GetMessage("scheduler.started", s.describe()))
}

// Stop waits for a running tick to finish, bounded by the stop timeout
func (s *ReminderScheduler) Stop() error {
	s.statusMutex.Lock()
	s.started = false
	s.statusMutex.Unlock()

	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop scheduler: %w", err)
	}

	log.Info(msg.GetMessage("scheduler.stopped"))
	return nil
}

// RunTick executes one dispatch pass. It returns false without doing anything
// when another tick is still in progress.
func (s *ReminderScheduler) RunTick(ctx context.Context) (model.TickReport, bool) {
	if !s.running.TryLock() {
		s.statusMutex.Lock()
		s.skipped++
		s.statusMutex.Unlock()

		log.Warn(msg.GetMessage("scheduler.tick.overlap"))
		return model.TickReport{}, false
	}
	defer s.running.Unlock()

	requestID := uuid.New().String()
	report := s.useCase.DispatchDue(ctx, requestID)

	s.statusMutex.Lock()
	s.lastReport = &report
	s.statusMutex.Unlock()

	if report.StoreUnavailable {
		log.Warn(msg.GetMessage("scheduler.tick.aborted", report.CurrentTime), zap.String("request_id", requestID))
	}

	return report, true
}

func (s *ReminderScheduler) Health() model.ComponentHealthStatus {
	s.statusMutex.RLock()
	defer s.statusMutex.RUnlock()

	details := map[string]string{
		"schedule":      s.describe(),
		"skipped_ticks": strconv.Itoa(s.skipped),
	}

	if !s.started {
		details["message"] = "scheduler is not running"
		return model.ComponentHealthStatus{Status: model.StatusDown, Details: details}
	}

	if nextRun, err := s.job.NextRun(); err == nil && !nextRun.IsZero() {
		details["next_run"] = nextRun.In(s.config.Location).Format(time.RFC3339)
	}

	if s.lastReport == nil {
		details["message"] = "no tick completed yet"
		return model.ComponentHealthStatus{Status: model.StatusUnknown, Details: details}
	}

	details["last_tick"] = s.lastReport.StartedAt.Format(time.RFC3339)
	details["last_request_id"] = s.lastReport.RequestID
	details["last_matched"] = strconv.Itoa(s.lastReport.Matched)
	details["last_sent"] = strconv.Itoa(s.lastReport.Sent)
	details["last_failed"] = strconv.Itoa(s.lastReport.Failed)
	details["last_store_unavailable"] = strconv.FormatBool(s.lastReport.StoreUnavailable)

	return model.ComponentHealthStatus{Status: model.StatusUp, Details: details}
}

// gocronLogger routes scheduler internals to the application logger
type gocronLogger struct{}

func (gocronLogger) Debug(message string, args ...any) { log.Debugw(message, args...) }
func (gocronLogger) Info(message string, args ...any)  { log.Infow(message, args...) }
func (gocronLogger) Warn(message string, args ...any)  { log.Warnw(message, args...) }
func (gocronLogger) Error(message string, args ...any) { log.Errorw(message, args...) }
