package main

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"umbrella-reminder/configs"
	"umbrella-reminder/internal/application/controller"
	"umbrella-reminder/internal/application/middleware"
	"umbrella-reminder/internal/application/schedule"
	"umbrella-reminder/internal/domain/gateway/api"
	"umbrella-reminder/internal/domain/gateway/db"
	"umbrella-reminder/internal/domain/gateway/ledger"
	"umbrella-reminder/internal/domain/gateway/mail"
	"umbrella-reminder/internal/domain/model"
	"umbrella-reminder/internal/domain/usecase/health"
	"umbrella-reminder/internal/domain/usecase/reminder"
	awsinfra "umbrella-reminder/internal/infra/aws"
	gormdb "umbrella-reminder/internal/infra/database/gorm"
	"umbrella-reminder/pkg/http"
	"umbrella-reminder/pkg/log"
	"umbrella-reminder/pkg/msg"
	"umbrella-reminder/pkg/redis"
	"umbrella-reminder/pkg/resource"
)

func main() {
	// a missing .env is fine, the environment may already be set
	_ = godotenv.Load()
	defer log.Sync()

	log.Info(msg.GetMessage("app.start"))

	config, err := configs.Load(resource.DefaultPath())
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init gateways
	reminderGateway, storeHealth := newReminderStore(config)
	dispatchLedger, closeLedger := newDispatchLedger(ctx, config)
	mailSender := newMailSender(ctx, config)
	weatherGateway := api.NewWeatherGateway(config.Weather.BaseURL, config.Weather.APIKey, http.ClientOptions{
		ReadTimeout: config.Weather.Timeout,
	})

	// Init UseCase
	clock := clockwork.NewRealClock()
	reminderUseCase := reminder.NewReminderUseCase(reminder.Config{
		Location:       config.Scheduler.Location,
		From:           config.Mail.From,
		StoreTimeout:   config.Scheduler.StoreTimeout,
		WeatherTimeout: config.Weather.Timeout,
		MailTimeout:    config.Mail.Timeout,
	}, clock, reminderGateway, weatherGateway, mailSender, dispatchLedger)

	// Init Schedule
	reminderScheduler, err := schedule.NewReminderScheduler(reminderUseCase, schedule.ReminderSchedulerConfig{
		Interval:       config.Scheduler.Interval,
		CronExpression: config.Scheduler.Cron,
		Location:       config.Scheduler.Location,
		StopTimeout:    config.Scheduler.StopTimeout,
	}, clock)
	if err != nil {
		log.Fatal("Failed to create reminder scheduler", zap.Error(err))
	}

	var schedulerHealth health.SchedulerHealth = reminderScheduler
	if !config.Scheduler.Enabled {
		schedulerHealth = disabledScheduler{}
	}
	healthUseCase := health.NewHealthUseCase(storeHealth, dispatchLedger, schedulerHealth)

	// Init Controller
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	middleware.SetupRequestLogger(e)
	middleware.SetupValidator(e)
	apiGroup := e.Group(config.Server.ContextPath)

	controller.NewHealthController(apiGroup, healthUseCase).InitHealthRoutes()
	controller.NewWeatherController(apiGroup, reminderUseCase).InitWeatherRoutes()
	controller.NewReminderController(apiGroup, reminderUseCase).InitReminderRoutes()

	if config.Scheduler.Enabled {
		reminderScheduler.Start()
	}

	// Start Routes
	go func() {
		log.Info(msg.GetMessage("app.started", config.Server.Port))
		if err := e.Start(fmt.Sprintf(":%d", config.Server.Port)); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			log.Fatal("Failed to start http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info(msg.GetMessage("app.stop"))

	if config.Scheduler.Enabled {
		if err := reminderScheduler.Stop(); err != nil {
			log.Error("Failed to stop reminder scheduler", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shut down http server", zap.Error(err))
	}

	closeLedger()
}

func newReminderStore(config *configs.Config) (db.ReminderGateway, db.HealthDBGateway) {
	switch config.Store.Type {
	case configs.StorePostgres:
		database, err := gormdb.Open(gormdb.DatabaseConfig(config.Store.Database))
		if err != nil {
			log.Fatal("Failed to connect to database", zap.Error(err))
		}
		gateway := db.NewGormReminderGateway(database)
		return gateway, gateway
	default:
		firebase := config.Store.Firebase
		gateway := db.NewFirebaseReminderGateway(firebase.DatabaseURL, firebase.Node, firebase.AuthToken, http.ClientOptions{
			ReadTimeout: config.Scheduler.StoreTimeout,
		})
		return gateway, gateway
	}
}

func newDispatchLedger(ctx context.Context, config *configs.Config) (ledger.DispatchLedger, func()) {
	if config.Ledger.Type != configs.LedgerRedis {
		return ledger.NewMemoryLedger(), func() {}
	}

	client, err := redis.NewClient(redis.NewRedisConfig().
		WithHost(config.Redis.Host).
		WithPort(config.Redis.Port).
		WithPassword(config.Redis.Password).
		WithDatabase(config.Redis.Database).
		WithTimeout(config.Redis.Timeout))
	if err != nil {
		log.Fatal("Failed to create redis client", zap.Error(err))
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err = client.Ping(pingCtx); err != nil {
		log.Warn("Redis is not reachable yet, dispatches will be skipped until it is", zap.Error(err))
	}

	return ledger.NewRedisLedger(client, config.Ledger.Namespace, config.Ledger.TTL), func() {
		_ = client.Close()
	}
}

func newMailSender(ctx context.Context, config *configs.Config) mail.Sender {
	if config.Mail.Transport == configs.TransportSQS {
		awsConfig, err := awsinfra.NewConfig(ctx, awsinfra.CloudConfig(config.Cloud))
		if err != nil {
			log.Fatal("Failed to configure AWS", zap.Error(err))
		}
		return awsinfra.NewSQSMailSender(awsinfra.NewSqsClient(awsConfig, config.Cloud.Endpoint), config.Mail.QueueName)
	}

	smtp := config.Mail.SMTP
	sender, err := mail.NewSMTPSender(mail.SMTPConfig{
		Host:      smtp.Host,
		Port:      smtp.Port,
		Username:  smtp.Username,
		Password:  smtp.Password,
		TLSPolicy: smtp.TLSPolicy,
		SSL:       smtp.SSL,
		Timeout:   config.Mail.Timeout,
	})
	if err != nil {
		log.Fatal("Failed to configure smtp", zap.Error(err))
	}
	return sender
}

type disabledScheduler struct{}

func (disabledScheduler) Health() model.ComponentHealthStatus {
	return model.ComponentHealthStatus{
		Status:  model.StatusUnknown,
		Details: map[string]string{"message": "scheduler disabled by configuration"},
	}
}
