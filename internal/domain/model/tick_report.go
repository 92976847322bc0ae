package model

import "time"

// TickReport summarizes one pass of the dispatch scheduler.
type TickReport struct {
	RequestID   string    `json:"requestId"`
	StartedAt   time.Time `json:"startedAt"`
	CurrentTime string    `json:"currentTime"`
	Reminders   int       `json:"reminders"`
	Matched     int       `json:"matched"`
	Sent        int       `json:"sent"`
	Duplicates  int       `json:"duplicates"`
	Failed      int       `json:"failed"`
	// StoreUnavailable is set when the tick ended early because reminders could not be read
	StoreUnavailable bool `json:"storeUnavailable"`
}
