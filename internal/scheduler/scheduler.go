/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0
*/

// Package scheduler drives the evaluation loops. Each registered rule
// gets its own goroutine ticking at the rule's interval or cron
// schedule; every tick resolves the rule's nodes and hands each one to
// the runner, with per-pair mutual exclusion and a cluster-wide
// concurrency cap.
//
// The Scheduler runs as a Runnable in the controller-runtime manager,
// which provides leader election for free.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/marcus-qen/nodeguardian/internal/metrics"
	"github.com/marcus-qen/nodeguardian/internal/registry"
	"github.com/marcus-qen/nodeguardian/internal/selector"
)

// RuleRunner evaluates one rule against one node and prunes the records
// of nodes that left the rule's selection. Implemented by the runner
// package.
type RuleRunner interface {
	RunNode(ctx context.Context, entry *registry.Entry, node string)
	PruneNodes(ctx context.Context, rule string, active []string)
}

// Config configures the scheduler.
type Config struct {
	// MaxConcurrentRuns is the cluster-wide limit on simultaneous
	// evaluation runs. Default: 10.
	MaxConcurrentRuns int

	// StaleRunAge is the age after which an in-flight mark is considered
	// leaked. Default: 10 minutes.
	StaleRunAge time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxConcurrentRuns: 10,
		StaleRunAge:       10 * time.Minute,
	}
}

// Scheduler owns the per-rule evaluation loops.
type Scheduler struct {
	registry *registry.Registry
	resolver *selector.Resolver
	runner   RuleRunner
	tracker  *RunTracker
	log      logr.Logger

	maxConcurrentRuns int
	staleRunAge       time.Duration

	mu      sync.Mutex
	started bool
	baseCtx context.Context
	loops   map[string]chan struct{}
}

// New creates a new Scheduler.
func New(reg *registry.Registry, resolver *selector.Resolver, runner RuleRunner, log logr.Logger, cfg Config) *Scheduler {
	if cfg.MaxConcurrentRuns <= 0 {
		cfg.MaxConcurrentRuns = 10
	}
	if cfg.StaleRunAge <= 0 {
		cfg.StaleRunAge = 10 * time.Minute
	}

	return &Scheduler{
		registry:          reg,
		resolver:          resolver,
		runner:            runner,
		tracker:           NewRunTracker(),
		log:               log.WithName("scheduler"),
		maxConcurrentRuns: cfg.MaxConcurrentRuns,
		staleRunAge:       cfg.StaleRunAge,
		loops:             make(map[string]chan struct{}),
	}
}

// RunTrackerRef returns the concurrency tracker (for shutdown draining).
func (s *Scheduler) RunTrackerRef() *RunTracker {
	return s.tracker
}

// Start implements manager.Runnable. Called by controller-runtime when
// the manager starts (after leader election if HA). Rules registered
// before Start get their loops launched here; later registrations launch
// from Upsert.
func (s *Scheduler) Start(ctx context.Context) error {
	s.log.Info("Scheduler starting", "maxConcurrentRuns", s.maxConcurrentRuns)

	s.mu.Lock()
	s.started = true
	s.baseCtx = ctx
	pending := make([]string, 0, s.registry.Len())
	for _, entry := range s.registry.List() {
		pending = append(pending, entry.Name())
	}
	s.mu.Unlock()

	for _, name := range pending {
		s.Upsert(name)
	}

	<-ctx.Done()
	s.log.Info("Scheduler stopping")

	s.mu.Lock()
	for name, stop := range s.loops {
		close(stop)
		delete(s.loops, name)
	}
	s.mu.Unlock()
	return nil
}

// Upsert starts (or restarts) the evaluation loop for a rule. The new
// loop evaluates immediately, so a fresh rule version takes effect
// without waiting out the old interval.
func (s *Scheduler) Upsert(name string) {
	s.mu.Lock()
	if !s.started {
		// Loops are launched from Start for pre-start registrations.
		s.mu.Unlock()
		return
	}
	if stop, ok := s.loops[name]; ok {
		close(stop)
	}
	stop := make(chan struct{})
	s.loops[name] = stop
	ctx := s.baseCtx
	s.mu.Unlock()

	go s.runLoop(ctx, name, stop)
}

// Remove stops a rule's loop. In-flight node runs finish on their own;
// the tracker drains them.
func (s *Scheduler) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stop, ok := s.loops[name]; ok {
		close(stop)
		delete(s.loops, name)
	}
}

// runLoop ticks one rule until its stop channel or the base context
// closes. The entry is re-read from the registry every iteration so spec
// updates take effect without restarting the loop.
func (s *Scheduler) runLoop(ctx context.Context, name string, stop chan struct{}) {
	s.evaluateRule(ctx, name)

	for {
		entry, ok := s.registry.Get(name)
		if !ok {
			return
		}

		var wait time.Duration
		if entry.Schedule != nil {
			wait = time.Until(entry.Schedule.Next(time.Now()))
		} else {
			wait = entry.Interval
		}
		if wait <= 0 {
			wait = time.Second
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-stop:
			timer.Stop()
			return
		case <-timer.C:
			s.evaluateRule(ctx, name)
		}
	}
}

// evaluateRule runs one tick: resolve the rule's nodes and dispatch each
// one to the runner.
func (s *Scheduler) evaluateRule(ctx context.Context, name string) {
	if cleaned := s.tracker.CleanStale(s.staleRunAge); cleaned > 0 {
		s.log.Info("Cleaned stale in-flight runs", "count", cleaned)
	}

	entry, ok := s.registry.Get(name)
	if !ok {
		return
	}

	nodes, err := s.resolver.Resolve(ctx, entry.Rule.Spec.NodeSelector)
	if err != nil {
		s.log.Error(err, "Failed to resolve nodes", "rule", name)
		return
	}

	// Nodes that left the selection stop being tracked before the tick
	// dispatches, so a departed node cannot keep a stale Triggered phase
	// or cooldown anchor alive.
	s.runner.PruneNodes(ctx, name, nodes)

	if len(nodes) == 0 {
		s.log.Info("No matching nodes, skipping tick", "rule", name)
		return
	}

	for _, node := range nodes {
		s.dispatchNode(entry, node)
	}
}

// dispatchNode hands one (rule, node) pair to the runner in a goroutine,
// respecting per-pair mutual exclusion and the global cap. Overlapping
// ticks are skipped, never queued.
func (s *Scheduler) dispatchNode(entry *registry.Entry, node string) {
	key := pairKey(entry.Name(), node)

	if s.tracker.IsRunning(key) {
		s.log.V(1).Info("Previous run still in flight, skipping",
			"rule", entry.Name(), "node", node)
		metrics.RecordSkippedTick(entry.Name())
		return
	}
	// The cap check happens inside TryStart under the tracker's lock, so
	// two loops racing through here cannot both start past the limit.
	if !s.tracker.TryStart(key, s.maxConcurrentRuns) {
		s.log.V(1).Info("Run not started, skipping",
			"rule", entry.Name(), "node", node,
			"inflight", s.tracker.InFlightCount())
		metrics.RecordSkippedTick(entry.Name())
		return
	}

	metrics.InFlightEvaluations.Inc()
	go func() {
		defer func() {
			s.tracker.Complete(key)
			metrics.InFlightEvaluations.Dec()
		}()

		// Independent of the tick context so shutdown drains runs
		// instead of cancelling them mid-batch.
		s.runner.RunNode(context.Background(), entry, node)
	}()
}

// NeedLeaderElection implements manager.LeaderElectionRunnable. The
// loops must only run on the leader to prevent duplicate firings.
func (s *Scheduler) NeedLeaderElection() bool {
	return true
}

func pairKey(rule, node string) string {
	return fmt.Sprintf("%s/%s", rule, node)
}
