package game

import (
	"context"
	"time"

	"github.com/coder/quartz"
	"github.com/sirupsen/logrus"
)

// Supervisor reconciles disconnects on a recurring sweep: sessions with a
// player gone past the timeout are forfeited and torn down. It is owned by
// the service lifecycle; Start at init, Stop at shutdown. The sweep takes
// the same per-session lock as user actions, so it never races them.
type Supervisor struct {
	registry *Registry
	logger   *logrus.Logger
	clock    quartz.Clock
	interval time.Duration
	timeout  time.Duration

	cancel context.CancelFunc
	waiter quartz.Waiter
}

// NewSupervisor builds a supervisor over the registry. interval controls
// the sweep cadence, timeout how long a disconnect may last before the
// session is forfeited.
func NewSupervisor(registry *Registry, logger *logrus.Logger, clock quartz.Clock, interval, timeout time.Duration) *Supervisor {
	return &Supervisor{
		registry: registry,
		logger:   logger,
		clock:    clock,
		interval: interval,
		timeout:  timeout,
	}
}

// Start launches the periodic sweep. It returns immediately.
func (sv *Supervisor) Start(ctx context.Context) {
	ctx, sv.cancel = context.WithCancel(ctx)
	sv.waiter = sv.clock.TickerFunc(ctx, sv.interval, func() error {
		sv.Sweep()
		return nil
	}, "supervisor-sweep")
	sv.logger.WithFields(logrus.Fields{
		"interval": sv.interval,
		"timeout":  sv.timeout,
	}).Info("connection supervisor started")
}

// Stop cancels the sweep and waits for a running pass to finish.
func (sv *Supervisor) Stop() {
	if sv.cancel == nil {
		return
	}
	sv.cancel()
	if sv.waiter != nil {
		_ = sv.waiter.Wait()
	}
	sv.logger.Info("connection supervisor stopped")
}

// Sweep runs a single reconciliation pass. Sessions and players that have
// already been cleaned up are tolerated silently.
func (sv *Supervisor) Sweep() {
	for _, s := range sv.registry.Sessions() {
		if s.ForfeitIfAbandoned(sv.timeout) {
			sv.registry.Remove(s.Code)
			sv.logger.WithField("room", s.Code).Warn("forfeited abandoned session")
		}
	}
}
