/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0
*/

package alert

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/marcus-qen/nodeguardian/internal/metrics"
	"github.com/marcus-qen/nodeguardian/internal/telemetry"
)

// Dispatcher renders a template and fans the result out to named
// channels. Channel failures are isolated: one refusing endpoint never
// blocks the others, and the caller gets every error back.
type Dispatcher struct {
	store    *TemplateStore
	channels map[string]Channel
	fallback Channel
	limiter  *RateLimiter
	log      logr.Logger
}

// NewDispatcher creates a dispatcher. channels maps channel names
// ("email", "slack", ...) to their backends; fallback receives alerts
// whose channel union is empty.
func NewDispatcher(store *TemplateStore, channels map[string]Channel, fallback Channel, limiter *RateLimiter, log logr.Logger) *Dispatcher {
	return &Dispatcher{
		store:    store,
		channels: channels,
		fallback: fallback,
		limiter:  limiter,
		log:      log.WithName("dispatcher"),
	}
}

// Result reports the outcome of one dispatch.
type Result struct {
	Delivered []string
	Errors    []error
}

// Failed reports whether any delivery failed.
func (r Result) Failed() bool { return len(r.Errors) > 0 }

// Dispatch renders templateName against the alert and delivers it to the
// deduplicated union of actionChannels and the template's own channels.
func (d *Dispatcher) Dispatch(ctx context.Context, templateName string, actionChannels []string, a Alert) Result {
	var result Result

	rendered, err := d.store.Render(ctx, templateName, a)
	if err != nil {
		result.Errors = append(result.Errors, err)
		return result
	}

	if d.limiter != nil && !d.limiter.Allow(a.Rule) {
		d.log.Info("alert rate-limited", "rule", a.Rule, "template", templateName)
		return result
	}

	msg := Message{
		Rule:      a.Rule,
		Kind:      a.Kind,
		Severity:  rendered.Severity,
		Subject:   rendered.Subject,
		Body:      rendered.Body,
		Nodes:     nodeNames(a.Nodes),
		Timestamp: a.Timestamp,
	}

	targets := d.resolveChannels(actionChannels, rendered.Channels, &result)
	if len(targets) == 0 && d.fallback != nil {
		targets = []Channel{d.fallback}
	}

	ctx, span := telemetry.StartAlertSpan(ctx, a.Rule, templateName, len(targets))
	defer span.End()

	for _, ch := range targets {
		if err := ch.Send(ctx, msg); err != nil {
			d.log.Error(err, "alert delivery failed", "type", ch.Type(), "rule", a.Rule)
			metrics.RecordNotificationFailure(ch.Type())
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", ch.Type(), err))
			continue
		}
		d.log.Info("alert delivered", "type", ch.Type(), "rule", a.Rule, "severity", msg.Severity)
		result.Delivered = append(result.Delivered, ch.Type())
	}
	return result
}

// resolveChannels builds the deduplicated, order-preserving channel union.
// Action channels come first so an explicit list leads.
func (d *Dispatcher) resolveChannels(actionChannels, templateChannels []string, result *Result) []Channel {
	seen := make(map[string]bool)
	var targets []Channel
	for _, name := range append(append([]string{}, actionChannels...), templateChannels...) {
		if seen[name] {
			continue
		}
		seen[name] = true

		ch, ok := d.channels[name]
		if !ok {
			d.log.Info("unknown alert channel, skipping", "channel", name)
			metrics.RecordNotificationFailure(name)
			result.Errors = append(result.Errors, fmt.Errorf("unknown channel %q", name))
			continue
		}
		targets = append(targets, ch)
	}
	return targets
}

func nodeNames(nodes []NodeContext) []string {
	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		names = append(names, n.Name)
	}
	return names
}

// --- Rate Limiter ---

// RateLimiter limits alerts per rule per hour.
type RateLimiter struct {
	maxPerHour int
	mu         sync.Mutex
	counts     map[string][]time.Time
}

// NewRateLimiter creates a rate limiter with the given max per hour per
// rule.
func NewRateLimiter(maxPerHour int) *RateLimiter {
	return &RateLimiter{
		maxPerHour: maxPerHour,
		counts:     make(map[string][]time.Time),
	}
}

// Allow checks if the rule is within rate limits.
func (rl *RateLimiter) Allow(rule string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-1 * time.Hour)

	// Prune old entries
	recent := make([]time.Time, 0)
	for _, t := range rl.counts[rule] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= rl.maxPerHour {
		return false
	}

	rl.counts[rule] = append(recent, now)
	return true
}
