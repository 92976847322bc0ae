package mail

import "context"

// Message is a single HTML email ready to be handed to a transport
type Message struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type Sender interface {
	// Send delivers one message. Failures wrap model.ErrEmailDeliveryFailed and are never retried.
	Send(ctx context.Context, message Message) error
}
