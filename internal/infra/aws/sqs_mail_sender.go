package aws

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"umbrella-reminder/internal/domain/gateway/mail"
	"umbrella-reminder/internal/domain/model"
	"umbrella-reminder/pkg/log"
	"umbrella-reminder/pkg/sqs"
)

// SQSMailSender hands emails to a queue consumed by a separate mailer
type SQSMailSender struct {
	sqsSender *sqs.Sender
	queueName string
}

var _ mail.Sender = (*SQSMailSender)(nil)

func NewSQSMailSender(sqsClient sqs.SQSClient, queueName string) *SQSMailSender {
	return &SQSMailSender{
		sqsSender: sqs.NewSender(sqsClient),
		queueName: queueName,
	}
}

func (sender *SQSMailSender) Send(ctx context.Context, message mail.Message) error {
	messageID, err := sender.sqsSender.SendMessage(ctx, sender.queueName, message, map[string]string{
		"type":      "weather-email",
		"recipient": message.To,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrEmailDeliveryFailed, err)
	}

	log.Debug("Email enqueued",
		zap.String("queue", sender.queueName),
		zap.String("message_id", messageID))
	return nil
}
