/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0
*/

// Package cooldown tracks when a rule last fired for a node so that
// repeated firings are suppressed for a configured period. Trigger and
// recovery firings keep independent anchors.
package cooldown

import (
	"sync"
	"time"
)

// Kind distinguishes trigger cooldowns from recovery cooldowns.
type Kind string

const (
	KindTrigger  Kind = "trigger"
	KindRecovery Kind = "recovery"
)

type entryKey struct {
	kind Kind
	rule string
	node string
}

// Ledger is an in-memory map of last-fired timestamps keyed by
// (kind, rule, node). It is rehydrated from rule status records on
// startup so cooldowns survive a restart.
type Ledger struct {
	mu      sync.Mutex
	entries map[entryKey]time.Time

	// now is replaceable in tests.
	now func() time.Time
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		entries: make(map[entryKey]time.Time),
		now:     time.Now,
	}
}

// InCooldown reports whether a firing of the given kind is still
// suppressed. A period <= 0 disables suppression. A node that never fired
// is never in cooldown.
func (l *Ledger) InCooldown(kind Kind, rule, node string, period time.Duration) bool {
	if period <= 0 {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	fired, ok := l.entries[entryKey{kind: kind, rule: rule, node: node}]
	if !ok {
		return false
	}
	return l.now().Sub(fired) < period
}

// MarkFired records a firing at now. Called after the action batch has
// been fully attempted, so partial failures still start the cooldown.
func (l *Ledger) MarkFired(kind Kind, rule, node string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[entryKey{kind: kind, rule: rule, node: node}] = l.now()
}

// Restore seeds an anchor from a persisted timestamp. Zero times are
// ignored.
func (l *Ledger) Restore(kind Kind, rule, node string, fired time.Time) {
	if fired.IsZero() {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[entryKey{kind: kind, rule: rule, node: node}] = fired
}

// LastFired returns the anchor for one (kind, rule, node), if any.
func (l *Ledger) LastFired(kind Kind, rule, node string) (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fired, ok := l.entries[entryKey{kind: kind, rule: rule, node: node}]
	return fired, ok
}

// ForgetRule drops every anchor a rule holds. Called when a rule is
// removed or disabled.
func (l *Ledger) ForgetRule(rule string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key := range l.entries {
		if key.rule == rule {
			delete(l.entries, key)
		}
	}
}

// ForgetNode drops the anchors one rule holds for one node.
func (l *Ledger) ForgetNode(rule, node string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key := range l.entries {
		if key.rule == rule && key.node == node {
			delete(l.entries, key)
		}
	}
}
