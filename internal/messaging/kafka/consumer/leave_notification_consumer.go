package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"nia-hrms/internal/events"
	"nia-hrms/internal/notification"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	eventTypeLeaveSubmitted     = "leave_submitted"
	eventTypeLeaveStatusChanged = "leave_status_changed"
)

func ConsumeLeaveNotifications(
	ctx context.Context,
	reader *kafkago.Reader,
	mailer notification.Mailer,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.leave_notification")
	log.Info("leave notification consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("leave notification consumer stopped")
				return
			}
			log.Error("fetch leave notification message failed", zap.Error(err))
			continue
		}

		recipients, subject, body, err := renderNotification(msg)
		if err != nil {
			log.Error("decode leave notification failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		// Notifications are best effort; a failed send never blocks the
		// stream or the originating request.
		if err := mailer.Send(recipients, subject, body); err != nil {
			log.Error("send leave notification failed",
				zap.String("subject", subject),
				zap.Error(err),
			)
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit leave notification message failed", zap.Error(err))
		}
	}
}

func renderNotification(msg kafkago.Message) (recipients []string, subject, body string, err error) {
	eventType := headerValue(msg, "event_type")

	switch eventType {
	case eventTypeLeaveStatusChanged:
		var e events.LeaveStatusChangedEvent
		if err = json.Unmarshal(msg.Value, &e); err != nil {
			return nil, "", "", err
		}
		subject = fmt.Sprintf("Leave Application %s", e.NewStatus)
		body = fmt.Sprintf(
			"Leave application #%d (%s, %s to %s) for %s is now %s.\nActioned by: %s\nComment: %s\n",
			e.LeaveID, e.LeaveType, e.FromDate, e.ToDate, e.EmployeeName, e.NewStatus, e.ActedBy, e.Comment,
		)
		return e.Recipients, subject, body, nil
	case eventTypeLeaveSubmitted:
		var e events.LeaveSubmittedEvent
		if err = json.Unmarshal(msg.Value, &e); err != nil {
			return nil, "", "", err
		}
		subject = fmt.Sprintf("New Leave Application from %s", e.EmployeeName)
		body = fmt.Sprintf(
			"%s (%s) has applied for %s from %s to %s (%s days).\nPlease review the pending application.\n",
			e.EmployeeName, e.EmployeeCode, e.LeaveType, e.FromDate, e.ToDate, e.Days,
		)
		return e.Recipients, subject, body, nil
	default:
		return nil, "", "", fmt.Errorf("unknown leave notification event type: %q", eventType)
	}
}

func headerValue(msg kafkago.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
