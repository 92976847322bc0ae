package entity

// Reminder is a daily weather email request: at Time (HH:MM, configured offset) Email receives the weather for City.
type Reminder struct {
	ID    string `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Email string `json:"email" gorm:"not null"`
	City  string `json:"city" gorm:"not null"`
	Time  string `json:"time" gorm:"type:char(5);not null;index"`
}

// TableName specifies the table name for the Reminder entity.
func (Reminder) TableName() string {
	return "reminders"
}
