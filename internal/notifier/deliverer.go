package notifier

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/kal997/file-interest-server/internal/logger"
	"github.com/kal997/file-interest-server/internal/models"
)

// Discard drops every event
type Discard struct{}

// Deliver implements Deliverer
func (Discard) Deliver(context.Context, []models.NotificationEvent) error {
	return nil
}

// Multi fans events out to several deliverers. Every deliverer is tried even
// when an earlier one fails; the failures are joined.
type Multi []Deliverer

// Deliver implements Deliverer
func (m Multi) Deliver(ctx context.Context, events []models.NotificationEvent) error {
	if len(events) == 0 {
		return nil
	}

	var errs []error
	for _, d := range m {
		if d == nil {
			continue
		}
		if err := d.Deliver(ctx, events); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogDeliverer writes one log line per event
type LogDeliverer struct {
	log logrus.FieldLogger
}

// NewLogDeliverer returns a deliverer logging at info level through log
func NewLogDeliverer(log logrus.FieldLogger) *LogDeliverer {
	return &LogDeliverer{log: log}
}

// Deliver implements Deliverer
func (ld *LogDeliverer) Deliver(ctx context.Context, events []models.NotificationEvent) error {
	for _, event := range events {
		ld.log.WithFields(logrus.Fields{
			"filename":        event.Filename,
			"subscription_id": event.SubscriptionID,
			"notified_at":     event.NotifiedAt,
		}).Info("file available")
	}
	return nil
}

// AuditDeliverer appends every event to the notification audit log
type AuditDeliverer struct {
	audit logger.Logger
}

// NewAuditDeliverer returns a deliverer writing to audit
func NewAuditDeliverer(audit logger.Logger) *AuditDeliverer {
	return &AuditDeliverer{audit: audit}
}

// Deliver implements Deliverer
func (ad *AuditDeliverer) Deliver(ctx context.Context, events []models.NotificationEvent) error {
	var errs []error
	for _, event := range events {
		if err := ad.audit.LogEvent(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
