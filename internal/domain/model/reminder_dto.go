package model

// CreateReminderDTO is the body of a reminder registration request
type CreateReminderDTO struct {
	Email string `json:"email" validate:"required,email"`
	City  string `json:"city" validate:"required,max=120"`
	Time  string `json:"time" validate:"required,datetime=15:04"`
}

// ErrorResponse is the body returned on failed requests
type ErrorResponse struct {
	Error string `json:"error"`
}
