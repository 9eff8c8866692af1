/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0
*/

// Package runner evaluates one (rule, node) pair per invocation. Idle
// pairs are checked against the trigger conditions; Triggered pairs are
// handed to the recovery engine first and, while they stay Triggered,
// re-checked against the trigger conditions so an expired cooldown fires
// the batch again. The scheduler drives it on each tick.
package runner

import (
	"context"
	"errors"
	"time"

	"github.com/go-logr/logr"

	"github.com/marcus-qen/nodeguardian/internal/action"
	"github.com/marcus-qen/nodeguardian/internal/alert"
	"github.com/marcus-qen/nodeguardian/internal/cooldown"
	"github.com/marcus-qen/nodeguardian/internal/engine"
	"github.com/marcus-qen/nodeguardian/internal/metrics"
	"github.com/marcus-qen/nodeguardian/internal/recovery"
	"github.com/marcus-qen/nodeguardian/internal/registry"
	"github.com/marcus-qen/nodeguardian/internal/state"
	"github.com/marcus-qen/nodeguardian/internal/status"
	"github.com/marcus-qen/nodeguardian/internal/telemetry"
)

// Evaluation outcomes reported to metrics.
const (
	outcomeIdle       = "idle"
	outcomeTriggered  = "triggered"
	outcomeSuppressed = "suppressed"
)

// Runner is the per-pair evaluation entry point the scheduler calls.
type Runner struct {
	evaluator *engine.Evaluator
	store     *state.Store
	ledger    *cooldown.Ledger
	actions   *action.Orchestrator
	recovery  *recovery.Engine
	publisher *status.Publisher
	log       logr.Logger

	now func() time.Time
}

// New creates a runner.
func New(
	evaluator *engine.Evaluator,
	store *state.Store,
	ledger *cooldown.Ledger,
	actions *action.Orchestrator,
	recoveryEngine *recovery.Engine,
	publisher *status.Publisher,
	log logr.Logger,
) *Runner {
	return &Runner{
		evaluator: evaluator,
		store:     store,
		ledger:    ledger,
		actions:   actions,
		recovery:  recoveryEngine,
		publisher: publisher,
		log:       log.WithName("runner"),
		now:       time.Now,
	}
}

// RunNode evaluates one pair. It never returns an error: failures are
// logged, surfaced through rule status, and counted in metrics, and the
// next tick retries.
func (r *Runner) RunNode(ctx context.Context, entry *registry.Entry, node string) {
	started := r.now()
	rule := entry.Rule
	ctx, span := telemetry.StartEvaluationSpan(ctx, rule.Name, node)

	var outcome string
	switch r.store.Phase(rule.Name, node) {
	case state.PhaseTriggered:
		outcome = string(r.recovery.RunNode(ctx, entry, node))
		if outcome != string(recovery.OutcomeRecovered) {
			// Cooldown, not phase, gates re-firing: a pair that stays
			// Triggered with its conditions still met runs the batch
			// again as soon as the trigger cooldown expires.
			if trig := r.runTrigger(ctx, entry, node); trig != outcomeIdle {
				outcome = trig
			}
		}
	default:
		outcome = r.runTrigger(ctx, entry, node)
	}
	telemetry.EndEvaluationSpan(span, outcome)
	metrics.RecordEvaluation(rule.Name, outcome, time.Since(started))
}

// PruneNodes drops every record a rule holds for nodes outside its
// current selection: state, cooldown anchors, and duration clocks. The
// scheduler calls it once per tick with the freshly resolved node list.
// Status is republished when anything was dropped so the persisted
// records cannot rehydrate a node that already left.
func (r *Runner) PruneNodes(ctx context.Context, rule string, active []string) {
	keep := make(map[string]bool, len(active))
	for _, node := range active {
		keep[node] = true
	}

	pruned := 0
	for _, st := range r.store.Snapshot(rule) {
		if keep[st.Node] {
			continue
		}
		r.store.DropNode(rule, st.Node)
		r.ledger.ForgetNode(rule, st.Node)
		pruned++
	}
	r.evaluator.Clocks().ClearAbsent(rule, keep)

	if pruned > 0 {
		r.log.Info("Dropped records for departed nodes", "rule", rule, "count", pruned)
		r.publisher.Publish(ctx, rule)
	}
}

// runTrigger evaluates the trigger conditions for an Idle pair and fires
// the action batch when they are duration-satisfied and out of cooldown.
func (r *Runner) runTrigger(ctx context.Context, entry *registry.Entry, node string) string {
	rule := entry.Rule

	res := r.evaluator.Evaluate(ctx, rule.Name, node,
		rule.Spec.Conditions, rule.Spec.ConditionLogic, engine.ClockTrigger)
	if len(res.FetchErrors) > 0 {
		r.publisher.SetLastError(rule.Name, errors.Join(res.FetchErrors...).Error())
		r.publisher.Publish(ctx, rule.Name)
	}
	if !res.Satisfied {
		return outcomeIdle
	}

	if r.ledger.InCooldown(cooldown.KindTrigger, rule.Name, node, entry.Cooldown) {
		r.log.V(1).Info("Trigger in cooldown, suppressing",
			"rule", rule.Name, "node", node)
		metrics.RecordCooldownSuppression(rule.Name, string(cooldown.KindTrigger))
		return outcomeSuppressed
	}

	r.log.Info("Trigger conditions met, running actions",
		"rule", rule.Name, "node", node)
	batch := r.actions.Run(ctx, rule, rule.Spec.Actions, node, res.Readings, alert.KindTrigger)

	// Cooldown starts once the whole batch has been attempted, even when
	// part of it failed. A partial failure still flips the pair to
	// Triggered; recovery or the operator undoes what did land.
	r.ledger.MarkFired(cooldown.KindTrigger, rule.Name, node)
	r.store.SetTriggered(rule.Name, node, r.now())
	r.evaluator.Clocks().ClearNode(rule.Name, node)
	metrics.RecordTrigger(rule.Name)

	if err := batch.Err(); err != nil {
		r.publisher.SetLastError(rule.Name, err.Error())
	} else if len(res.FetchErrors) == 0 {
		r.publisher.SetLastError(rule.Name, "")
	}
	r.publisher.Publish(ctx, rule.Name)
	return outcomeTriggered
}
