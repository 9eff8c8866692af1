/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0
*/

package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	guardianv1alpha1 "github.com/marcus-qen/nodeguardian/api/v1alpha1"
)

// MetricSource supplies one metric reading for one node. The metricsource
// package provides Prometheus and metrics-server backed implementations.
type MetricSource interface {
	Metric(ctx context.Context, node string, kind guardianv1alpha1.MetricKind) (float64, error)
}

// Result is the outcome of evaluating a condition set for one node.
type Result struct {
	// Satisfied is true when the combined condition set, including
	// duration holds, is met.
	Satisfied bool

	// Readings holds the metric values fetched during evaluation, keyed
	// by metric name. Alert templates interpolate these.
	Readings map[string]float64

	// FetchErrors collects per-condition metric failures. A failed fetch
	// counts as a non-match and clears that condition's clock; it never
	// aborts the evaluation of the remaining conditions.
	FetchErrors []error
}

// Evaluator runs condition sets against a metric source, feeding every
// comparison outcome through the clock tracker.
type Evaluator struct {
	source MetricSource
	clocks *ClockTracker
	log    logr.Logger
}

// NewEvaluator creates an evaluator.
func NewEvaluator(source MetricSource, clocks *ClockTracker, log logr.Logger) *Evaluator {
	return &Evaluator{
		source: source,
		clocks: clocks,
		log:    log.WithName("evaluator"),
	}
}

// Clocks returns the shared clock tracker.
func (e *Evaluator) Clocks() *ClockTracker { return e.clocks }

// Evaluate runs one condition set for one node. Every condition is
// evaluated on every call, never short-circuited, so that each clock sees
// the current tick. AND requires all conditions duration-satisfied in the
// same tick; OR requires at least one.
func (e *Evaluator) Evaluate(
	ctx context.Context,
	rule string,
	node string,
	conditions []guardianv1alpha1.RuleCondition,
	logic guardianv1alpha1.ConditionLogic,
	kind ClockKind,
) Result {
	res := Result{Readings: make(map[string]float64, len(conditions))}
	if len(conditions) == 0 {
		return res
	}

	satisfiedCount := 0
	for i, cond := range conditions {
		satisfied := e.evaluateCondition(ctx, rule, node, i, cond, kind, &res)
		if satisfied {
			satisfiedCount++
		}
	}

	switch logic {
	case guardianv1alpha1.ConditionLogicOr:
		res.Satisfied = satisfiedCount > 0
	default:
		res.Satisfied = satisfiedCount == len(conditions)
	}
	return res
}

// evaluateCondition fetches, compares, and advances one condition's clock.
func (e *Evaluator) evaluateCondition(
	ctx context.Context,
	rule string,
	node string,
	idx int,
	cond guardianv1alpha1.RuleCondition,
	kind ClockKind,
	res *Result,
) bool {
	value, err := e.source.Metric(ctx, node, cond.Metric)
	if err != nil {
		// Unavailable metrics never trigger and never hold a clock.
		e.clocks.Observe(kind, rule, node, idx, false, 0)
		res.FetchErrors = append(res.FetchErrors,
			fmt.Errorf("metric %s for node %s: %w", cond.Metric, node, err))
		e.log.V(1).Info("metric fetch failed",
			"rule", rule, "node", node, "metric", cond.Metric, "error", err)
		return false
	}
	res.Readings[string(cond.Metric)] = value

	matched, err := Compare(cond.Operator, value, cond.Value)
	if err != nil {
		// Unknown operators are rejected at registration; reaching this
		// means a rule bypassed validation.
		e.clocks.Observe(kind, rule, node, idx, false, 0)
		res.FetchErrors = append(res.FetchErrors, err)
		return false
	}

	hold := holdDuration(cond.Duration)
	return e.clocks.Observe(kind, rule, node, idx, matched, hold)
}

// holdDuration parses a condition duration, treating empty and malformed
// strings as instantaneous. Registration already validated the format, so
// malformed here only happens for rules admitted before validation existed.
func holdDuration(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0
	}
	return d
}
