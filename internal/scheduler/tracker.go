/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0
*/

package scheduler

import (
	"sync"
	"time"
)

// RunTracker tracks in-flight evaluation runs keyed by rule/node pair.
// It provides per-pair mutual exclusion and a cluster-wide in-flight
// count for the concurrency cap.
type RunTracker struct {
	mu       sync.Mutex
	inflight map[string]time.Time
}

// NewRunTracker creates an empty tracker.
func NewRunTracker() *RunTracker {
	return &RunTracker{inflight: make(map[string]time.Time)}
}

// TryStart marks key as running. Returns false if it already is, or if
// max > 0 and that many runs are already in flight. Both checks and the
// mark happen under one lock so the cap cannot be raced past.
func (t *RunTracker) TryStart(key string, max int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, running := t.inflight[key]; running {
		return false
	}
	if max > 0 && len(t.inflight) >= max {
		return false
	}
	t.inflight[key] = time.Now()
	return true
}

// Complete clears the in-flight mark for key.
func (t *RunTracker) Complete(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.inflight, key)
}

// IsRunning reports whether key has an in-flight run.
func (t *RunTracker) IsRunning(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, running := t.inflight[key]
	return running
}

// InFlightCount returns the number of runs currently in flight.
func (t *RunTracker) InFlightCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inflight)
}

// CleanStale drops in-flight marks older than maxAge. Covers runs whose
// goroutine died without completing. Returns the number cleaned.
func (t *RunTracker) CleanStale(maxAge time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	cutoff := time.Now().Add(-maxAge)
	cleaned := 0
	for key, started := range t.inflight {
		if started.Before(cutoff) {
			delete(t.inflight, key)
			cleaned++
		}
	}
	return cleaned
}

// Wait blocks until every in-flight run completes or the timeout
// elapses. Used by shutdown to drain gracefully. Returns true when the
// tracker drained.
func (t *RunTracker) Wait(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if t.InFlightCount() == 0 {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(50 * time.Millisecond)
	}
}
