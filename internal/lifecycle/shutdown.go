/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0
*/

// Package lifecycle handles graceful shutdown. Evaluation runs mutate
// nodes in ordered batches; cutting one off mid-batch leaves a node
// half-tainted, so shutdown waits for in-flight runs to drain before the
// process exits.
package lifecycle

import (
	"context"
	"time"

	"github.com/go-logr/logr"

	"github.com/marcus-qen/nodeguardian/internal/scheduler"
)

// ShutdownManager drains in-flight evaluation runs when the manager
// stops. It runs as a Runnable so the manager keeps the process alive
// until Start returns.
type ShutdownManager struct {
	tracker *scheduler.RunTracker
	timeout time.Duration
	log     logr.Logger
}

// NewShutdownManager creates a shutdown manager. timeout bounds how long
// shutdown waits before giving up on stuck runs.
func NewShutdownManager(tracker *scheduler.RunTracker, timeout time.Duration, log logr.Logger) *ShutdownManager {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ShutdownManager{
		tracker: tracker,
		timeout: timeout,
		log:     log.WithName("shutdown"),
	}
}

// Start implements manager.Runnable. It blocks until the manager context
// closes, then waits for the tracker to drain.
func (m *ShutdownManager) Start(ctx context.Context) error {
	<-ctx.Done()

	inflight := m.tracker.InFlightCount()
	if inflight == 0 {
		return nil
	}

	m.log.Info("Draining in-flight evaluation runs", "inflight", inflight, "timeout", m.timeout)
	if !m.tracker.Wait(m.timeout) {
		m.log.Info("Drain timed out, exiting with runs in flight",
			"inflight", m.tracker.InFlightCount())
		return nil
	}
	m.log.Info("All in-flight runs drained")
	return nil
}

// NeedLeaderElection implements manager.LeaderElectionRunnable. The
// drain only matters where runs happen, on the leader.
func (m *ShutdownManager) NeedLeaderElection() bool {
	return true
}
