/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0
*/

// Package recovery runs the healthy-again half of the control loop. A
// Triggered node is watched against the rule's recovery conditions; when
// they hold, the recovery actions reverse the trigger's mutations and
// the pair returns to Idle. A rule without recovery conditions never
// auto-recovers.
package recovery

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
	"github.com/marcus-qen/nodeguardian/internal/registry"
	"github.com/marcus-qen/nodeguardian/internal/state"
	"github.com/marcus-qen/nodeguardian/internal/status"
)

// Outcome classifies one recovery evaluation for metrics.
type Outcome string

const (
	OutcomeHolding    Outcome = "holding"
	OutcomeSuppressed Outcome = "recovery_suppressed"
	OutcomeRecovered  Outcome = "recovered"
)

// Engine evaluates and fires recoveries.
type Engine struct {
	evaluator *engine.Evaluator
	store     *state.Store
	ledger    *cooldown.Ledger
	actions   *action.Orchestrator
	publisher *status.Publisher
	log       logr.Logger

	// now is replaceable in tests.
	now func() time.Time
}

// NewEngine creates a recovery engine sharing the runner's collaborators.
func NewEngine(
	evaluator *engine.Evaluator,
	store *state.Store,
	ledger *cooldown.Ledger,
	actions *action.Orchestrator,
	publisher *status.Publisher,
	log logr.Logger,
) *Engine {
	return &Engine{
		evaluator: evaluator,
		store:     store,
		ledger:    ledger,
		actions:   actions,
		publisher: publisher,
		log:       log.WithName("recovery"),
		now:       time.Now,
	}
}

// RunNode evaluates the recovery conditions for one Triggered pair and
// fires the recovery batch when they are duration-satisfied and out of
// cooldown.
func (e *Engine) RunNode(ctx context.Context, entry *registry.Entry, node string) Outcome {
	rule := entry.Rule
	if len(rule.Spec.RecoveryConditions) == 0 {
		return OutcomeHolding
	}

	res := e.evaluator.Evaluate(ctx, rule.Name, node,
		rule.Spec.RecoveryConditions, rule.Spec.RecoveryConditionLogic, engine.ClockRecovery)
	if len(res.FetchErrors) > 0 {
		e.publisher.SetLastError(rule.Name, errors.Join(res.FetchErrors...).Error())
	}
	if !res.Satisfied {
		return OutcomeHolding
	}

	if e.ledger.InCooldown(cooldown.KindRecovery, rule.Name, node, entry.RecoveryCooldown) {
		e.log.V(1).Info("Recovery in cooldown, suppressing",
			"rule", rule.Name, "node", node)
		metrics.RecordCooldownSuppression(rule.Name, string(cooldown.KindRecovery))
		return OutcomeSuppressed
	}

	e.log.Info("Recovery conditions met, running recovery actions",
		"rule", rule.Name, "node", node)
	batch := e.actions.Run(ctx, rule, rule.Spec.RecoveryActions, node, res.Readings, alert.KindRecovery)

	// The pair leaves Triggered even when part of the batch failed;
	// cooldown keeps a flapping node from hammering the remainder.
	e.ledger.MarkFired(cooldown.KindRecovery, rule.Name, node)
	e.store.SetRecovered(rule.Name, node, e.now())
	e.evaluator.Clocks().ClearNode(rule.Name, node)
	metrics.RecordRecovery(rule.Name)

	if err := batch.Err(); err != nil {
		e.publisher.SetLastError(rule.Name, err.Error())
	} else if len(res.FetchErrors) == 0 {
		e.publisher.SetLastError(rule.Name, "")
	}
	e.publisher.Publish(ctx, rule.Name)
	return OutcomeRecovered
}
