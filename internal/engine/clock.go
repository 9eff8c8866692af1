/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0
*/

package engine

import (
	"sync"
	"time"
)

// ClockKind separates trigger clocks from recovery clocks. A condition at
// the same index can appear in both lists and must not share a clock.
type ClockKind string

const (
	ClockTrigger  ClockKind = "trigger"
	ClockRecovery ClockKind = "recovery"
)

// clockKey identifies one duration clock: a condition index of one kind,
// for one rule, on one node.
type clockKey struct {
	kind ClockKind
	rule string
	node string
	cond int
}

// ClockTracker holds the firstObservedAt timestamps that back duration
// hysteresis. A clock starts when its condition first matches, survives
// across ticks while it keeps matching, and is cleared the moment it does
// not. Clocks live only in memory; a restart starts all holds over.
type ClockTracker struct {
	mu     sync.Mutex
	clocks map[clockKey]time.Time

	// now is replaceable in tests.
	now func() time.Time
}

// NewClockTracker creates an empty tracker.
func NewClockTracker() *ClockTracker {
	return &ClockTracker{
		clocks: make(map[clockKey]time.Time),
		now:    time.Now,
	}
}

// Observe records one comparison outcome and reports whether the condition
// has held for at least hold. A non-matching observation clears the clock
// and returns false. A matching observation with hold <= 0 is satisfied
// immediately.
func (t *ClockTracker) Observe(kind ClockKind, rule, node string, cond int, matched bool, hold time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := clockKey{kind: kind, rule: rule, node: node, cond: cond}
	if !matched {
		delete(t.clocks, key)
		return false
	}
	if hold <= 0 {
		// Instantaneous conditions keep no clock.
		delete(t.clocks, key)
		return true
	}

	now := t.now()
	first, ok := t.clocks[key]
	if !ok {
		t.clocks[key] = now
		return false
	}
	return now.Sub(first) >= hold
}

// ClearNode drops every clock a rule holds for one node, both kinds.
// Called after a trigger or recovery fires so the next firing requires a
// fresh continuous hold.
func (t *ClockTracker) ClearNode(rule, node string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key := range t.clocks {
		if key.rule == rule && key.node == node {
			delete(t.clocks, key)
		}
	}
}

// ClearKind drops the clocks of one kind a rule holds for one node.
func (t *ClockTracker) ClearKind(kind ClockKind, rule, node string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key := range t.clocks {
		if key.kind == kind && key.rule == rule && key.node == node {
			delete(t.clocks, key)
		}
	}
}

// ClearAbsent drops every clock a rule holds for nodes outside keep.
// Called when pruning records for nodes that left the rule's selection,
// including nodes that held a clock without ever triggering.
func (t *ClockTracker) ClearAbsent(rule string, keep map[string]bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key := range t.clocks {
		if key.rule == rule && !keep[key.node] {
			delete(t.clocks, key)
		}
	}
}

// ClearRule drops every clock a rule holds, across all nodes. Called when
// a rule is removed, disabled, or replaced by a new version.
func (t *ClockTracker) ClearRule(rule string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key := range t.clocks {
		if key.rule == rule {
			delete(t.clocks, key)
		}
	}
}

// Len reports how many clocks are currently running.
func (t *ClockTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.clocks)
}
