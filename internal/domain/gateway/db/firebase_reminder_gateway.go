package db

import (
	"context"
	"fmt"
	"time"

	"umbrella-reminder/internal/domain/entity"
	"umbrella-reminder/internal/domain/model"
	"umbrella-reminder/pkg/http"
)

// FirebaseReminderGateway reads reminders from a Firebase Realtime Database through its REST API
type FirebaseReminderGateway struct {
	httpClient *http.Client
	path       string
}

var (
	_ ReminderGateway = (*FirebaseReminderGateway)(nil)
	_ HealthDBGateway = (*FirebaseReminderGateway)(nil)
)

// firebaseRecord is the document shape written by the registration form
type firebaseRecord struct {
	Email string `json:"email"`
	City  string `json:"city"`
	Time  string `json:"time"`
}

type firebasePushResponse struct {
	Name string `json:"name"`
}

type firebaseErrorResponse struct {
	Error string `json:"error"`
}

// NewFirebaseReminderGateway creates a gateway for databaseURL, storing reminders under the given node.
// authToken is sent as the auth query parameter when present.
func NewFirebaseReminderGateway(databaseURL string, node string, authToken string, clientOptions http.ClientOptions) *FirebaseReminderGateway {
	if authToken != "" {
		clientOptions.DefaultQueryParams = map[string]string{"auth": authToken}
	}
	if clientOptions.Logger == nil {
		clientOptions.Logger = http.ZapLogger{Name: "firebase"}
	}

	return &FirebaseReminderGateway{
		httpClient: http.NewHttpClient(databaseURL, clientOptions),
		path:       "/" + node + ".json",
	}
}

// ReadAll retrieves the whole reminders node
func (gateway *FirebaseReminderGateway) ReadAll(ctx context.Context) (map[string]entity.Reminder, error) {
	records := map[string]firebaseRecord{}

	_, errResp, _, err := gateway.httpClient.Request().
		WithContext(ctx).
		WithMethod(http.GET).
		WithPath(gateway.path).
		WithSuccessResp(&records).
		WithErrorResp(&firebaseErrorResponse{}).
		Execute()

	if err != nil {
		if errResp != nil && errResp.(*firebaseErrorResponse).Error != "" {
			return nil, fmt.Errorf("%w: %s", model.ErrStoreUnavailable, errResp.(*firebaseErrorResponse).Error)
		}
		return nil, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}

	reminders := make(map[string]entity.Reminder, len(records))
	for id, record := range records {
		reminders[id] = entity.Reminder{
			ID:    id,
			Email: record.Email,
			City:  record.City,
			Time:  record.Time,
		}
	}

	return reminders, nil
}

// Create pushes a new reminder; Firebase assigns the ID
func (gateway *FirebaseReminderGateway) Create(ctx context.Context, reminder entity.Reminder) (*entity.Reminder, error) {
	successResp, _, _, err := gateway.httpClient.Request().
		WithContext(ctx).
		WithMethod(http.POST).
		WithPath(gateway.path).
		WithBody(firebaseRecord{Email: reminder.Email, City: reminder.City, Time: reminder.Time}).
		WithSuccessResp(&firebasePushResponse{}).
		Execute()

	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}

	reminder.ID = successResp.(*firebasePushResponse).Name
	return &reminder, nil
}

// Health checks the reminders node is readable using a shallow query
func (gateway *FirebaseReminderGateway) Health() model.ComponentHealthStatus {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, _, status, err := gateway.httpClient.Request().
		WithContext(ctx).
		WithMethod(http.GET).
		WithPath(gateway.path).
		WithQueryParams(map[string]string{"shallow": "true"}).
		Execute()

	if err != nil {
		return model.ComponentHealthStatus{
			Status: model.StatusDown,
			Details: map[string]string{
				"type":    "firebase",
				"message": err.Error(),
			},
		}
	}

	return model.ComponentHealthStatus{
		Status: model.StatusUp,
		Details: map[string]string{
			"type":   "firebase",
			"status": fmt.Sprint(status),
		},
	}
}
