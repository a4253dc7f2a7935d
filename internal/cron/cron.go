package cron

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Sweeper drops expired interest registrations
type Sweeper interface {
	SweepExpired() int
}

// Manager manages cron jobs
type Manager struct {
	cron     *cron.Cron
	log      logrus.FieldLogger
	schedule string
	sweeper  Sweeper
}

// NewManager creates a new cron manager running sweeper on schedule
func NewManager(log logrus.FieldLogger, schedule string, sweeper Sweeper) *Manager {
	return &Manager{
		cron:     cron.New(),
		log:      log,
		schedule: schedule,
		sweeper:  sweeper,
	}
}

// Start registers the jobs and starts the scheduler
func (m *Manager) Start() error {
	if _, err := m.cron.AddFunc(m.schedule, m.sweepInterests); err != nil {
		return fmt.Errorf("failed to add interest sweep job: %w", err)
	}

	m.cron.Start()
	m.log.WithField("schedule", m.schedule).Info("Cron manager started")
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (m *Manager) Stop() {
	<-m.cron.Stop().Done()
	m.log.Info("Cron manager stopped")
}

// Run starts the scheduler and blocks until ctx is done
func (m *Manager) Run(ctx context.Context) error {
	if err := m.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	m.Stop()
	return nil
}

// sweepInterests runs the expired interest sweep
func (m *Manager) sweepInterests() {
	removed := m.sweeper.SweepExpired()
	m.log.WithField("removed", removed).Debug("Ran scheduled interest sweep")
}
