// Package service exposes the file and interest operations behind one façade.
package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/kal997/file-interest-server/internal/interest"
	"github.com/kal997/file-interest-server/internal/logger"
	"github.com/kal997/file-interest-server/internal/models"
	"github.com/kal997/file-interest-server/internal/notifier"
	"github.com/kal997/file-interest-server/internal/storage"
)

// Service coordinates the file store, the interest registry and notification delivery
type Service struct {
	store      storage.Store
	registry   *interest.Registry
	dispatcher *interest.Dispatcher
	deliverer  notifier.Deliverer
	log        logrus.FieldLogger
}

// New wires a Service. A nil deliverer discards events and a nil log discards log lines.
func New(store storage.Store, registry *interest.Registry, deliverer notifier.Deliverer, log logrus.FieldLogger) *Service {
	if deliverer == nil {
		deliverer = notifier.Discard{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		store:      store,
		registry:   registry,
		dispatcher: interest.NewDispatcher(registry),
		deliverer:  deliverer,
		log:        log,
	}
}

// Upload stores content under name, then notifies every active subscriber of name.
// The returned events are the notifications that were produced. A delivery failure
// is logged and does not fail the upload.
func (s *Service) Upload(ctx context.Context, name string, content []byte) ([]models.NotificationEvent, error) {
	if err := models.ValidateFilename(name); err != nil {
		return nil, err
	}

	if err := s.store.Put(ctx, name, content); err != nil {
		s.log.WithError(err).WithField("filename", name).Error("upload failed")
		return nil, err
	}

	events := s.dispatcher.OnUploaded(name)

	entry := s.log.WithFields(logrus.Fields{
		"filename": name,
		"size":     len(content),
	})
	if len(events) == 0 {
		entry.Info("file uploaded")
		return events, nil
	}

	entry.WithFields(logrus.Fields{
		"notified": len(events),
		"state":    models.Fulfilled.String(),
	}).Info("file uploaded, notifying subscribers")

	if err := s.deliverer.Deliver(ctx, events); err != nil {
		entry.WithError(err).Warn("notification delivery failed")
	}
	return events, nil
}

// ListFiles returns the stored file names in lexical order
func (s *Service) ListFiles(ctx context.Context) ([]string, error) {
	return s.store.List(ctx)
}

// Download returns the full content stored under name
func (s *Service) Download(ctx context.Context, name string) (*models.File, error) {
	if err := models.ValidateFilename(name); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, name)
}

// RegisterInterest records that a client wants to hear about name for durationSeconds
func (s *Service) RegisterInterest(ctx context.Context, name string, durationSeconds int64) (models.Subscription, error) {
	if err := models.ValidateFilename(name); err != nil {
		return models.Subscription{}, err
	}
	if err := ctx.Err(); err != nil {
		return models.Subscription{}, err
	}

	sub, err := s.registry.Register(name, durationSeconds)
	if err != nil {
		return models.Subscription{}, err
	}

	s.log.WithFields(logrus.Fields{
		"filename":        name,
		"subscription_id": sub.ID,
		"expires_at":      sub.ExpiresAt,
	}).Debug("interest registered")
	return sub, nil
}

// CancelInterest drops every subscription for name and returns how many were dropped
func (s *Service) CancelInterest(ctx context.Context, name string) (int, error) {
	if err := models.ValidateFilename(name); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	n := s.registry.Cancel(name)
	if n > 0 {
		s.log.WithFields(logrus.Fields{
			"filename":  name,
			"cancelled": n,
			"state":     models.Cancelled.String(),
		}).Debug("interest cancelled")
	}
	return n, nil
}

// PendingInterests returns the number of active subscriptions for name
func (s *Service) PendingInterests(ctx context.Context, name string) (int, error) {
	if err := models.ValidateFilename(name); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.registry.Pending(name), nil
}

// SweepExpired removes expired subscriptions across all filenames
func (s *Service) SweepExpired() int {
	n := s.registry.Sweep()
	if n > 0 {
		s.log.WithFields(logrus.Fields{
			"removed": n,
			"state":   models.Expired.String(),
		}).Debug("expired interests swept")
	}
	return n
}

// HealthCheck reports whether the underlying store is reachable
func (s *Service) HealthCheck(ctx context.Context) error {
	return s.store.HealthCheck(ctx)
}
