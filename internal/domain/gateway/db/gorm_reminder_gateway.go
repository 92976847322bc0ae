package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"umbrella-reminder/internal/domain/entity"
	"umbrella-reminder/internal/domain/model"
)

// GormReminderGateway keeps reminders in a relational table through GORM
type GormReminderGateway struct {
	DB *gorm.DB
}

var (
	_ ReminderGateway = (*GormReminderGateway)(nil)
	_ HealthDBGateway = (*GormReminderGateway)(nil)
)

func NewGormReminderGateway(db *gorm.DB) *GormReminderGateway {
	return &GormReminderGateway{DB: db}
}

// ReadAll loads the full reminder table
func (gateway *GormReminderGateway) ReadAll(ctx context.Context) (map[string]entity.Reminder, error) {
	var rows []entity.Reminder
	if err := gateway.DB.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}

	reminders := make(map[string]entity.Reminder, len(rows))
	for _, row := range rows {
		reminders[row.ID] = row
	}
	return reminders, nil
}

// Create inserts a reminder under a new UUID
func (gateway *GormReminderGateway) Create(ctx context.Context, reminder entity.Reminder) (*entity.Reminder, error) {
	reminder.ID = uuid.NewString()
	if err := gateway.DB.WithContext(ctx).Create(&reminder).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
	return &reminder, nil
}

func (gateway *GormReminderGateway) Health() model.ComponentHealthStatus {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	sqlDB, err := gateway.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}

	if err != nil {
		return model.ComponentHealthStatus{
			Status: model.StatusDown,
			Details: map[string]string{
				"type":    "postgres",
				"message": err.Error(),
			},
		}
	}

	return model.ComponentHealthStatus{
		Status: model.StatusUp,
		Details: map[string]string{
			"type":    "postgres",
			"message": string(model.StatusUp),
		},
	}
}
