/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0
*/

// Package metrics defines Prometheus metrics for the NodeGuardian
// operator.
//
// All metrics are registered with the controller-runtime default registry
// so they are automatically served on the metrics endpoint.
//
// Metric naming follows Prometheus conventions:
//   - nodeguardian_ prefix for all custom metrics
//   - _total suffix for counters
//   - _seconds suffix for duration histograms
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	ctrlmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	// EvaluationsTotal counts rule evaluation cycles by rule and outcome.
	EvaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodeguardian_evaluations_total",
			Help: "Total rule evaluation cycles by rule and outcome.",
		},
		[]string{"rule", "outcome"},
	)

	// EvaluationDurationSeconds is a histogram of evaluation cycle
	// duration by rule.
	EvaluationDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nodeguardian_evaluation_duration_seconds",
			Help:    "Duration of rule evaluation cycles in seconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"rule"},
	)

	// TriggersTotal counts trigger firings by rule.
	TriggersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodeguardian_triggers_total",
			Help: "Total trigger firings by rule.",
		},
		[]string{"rule"},
	)

	// RecoveriesTotal counts recovery firings by rule.
	RecoveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodeguardian_recoveries_total",
			Help: "Total recovery firings by rule.",
		},
		[]string{"rule"},
	)

	// ActionFailuresTotal counts failed actions by rule and action type.
	ActionFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodeguardian_action_failures_total",
			Help: "Total failed actions by rule and action type.",
		},
		[]string{"rule", "action"},
	)

	// NotificationFailuresTotal counts failed alert deliveries by channel.
	NotificationFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodeguardian_notification_failures_total",
			Help: "Total failed alert deliveries by channel type.",
		},
		[]string{"channel"},
	)

	// CooldownSuppressionsTotal counts firings suppressed by cooldown.
	CooldownSuppressionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodeguardian_cooldown_suppressions_total",
			Help: "Total firings suppressed by an active cooldown.",
		},
		[]string{"rule", "kind"},
	)

	// SkippedTicksTotal counts evaluation ticks skipped because the
	// previous run was still in flight.
	SkippedTicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodeguardian_skipped_ticks_total",
			Help: "Total evaluation ticks skipped due to an in-flight run.",
		},
		[]string{"rule"},
	)

	// TriggeredNodes is the number of nodes each rule currently holds
	// Triggered.
	TriggeredNodes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nodeguardian_triggered_nodes",
			Help: "Nodes currently in the Triggered phase, by rule.",
		},
		[]string{"rule"},
	)

	// InFlightEvaluations is the number of evaluation runs currently
	// executing.
	InFlightEvaluations = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "nodeguardian_inflight_evaluations",
			Help: "Evaluation runs currently executing.",
		},
	)
)

func init() {
	ctrlmetrics.Registry.MustRegister(
		EvaluationsTotal,
		EvaluationDurationSeconds,
		TriggersTotal,
		RecoveriesTotal,
		ActionFailuresTotal,
		NotificationFailuresTotal,
		CooldownSuppressionsTotal,
		SkippedTicksTotal,
		TriggeredNodes,
		InFlightEvaluations,
	)
}

// RecordEvaluation records one completed evaluation cycle.
func RecordEvaluation(rule, outcome string, duration time.Duration) {
	EvaluationsTotal.WithLabelValues(rule, outcome).Inc()
	EvaluationDurationSeconds.WithLabelValues(rule).Observe(duration.Seconds())
}

// RecordTrigger records one trigger firing.
func RecordTrigger(rule string) {
	TriggersTotal.WithLabelValues(rule).Inc()
}

// RecordRecovery records one recovery firing.
func RecordRecovery(rule string) {
	RecoveriesTotal.WithLabelValues(rule).Inc()
}

// RecordActionFailure records one failed action.
func RecordActionFailure(rule, action string) {
	ActionFailuresTotal.WithLabelValues(rule, action).Inc()
}

// RecordNotificationFailure records one failed alert delivery.
func RecordNotificationFailure(channel string) {
	NotificationFailuresTotal.WithLabelValues(channel).Inc()
}

// RecordCooldownSuppression records one firing suppressed by cooldown.
func RecordCooldownSuppression(rule, kind string) {
	CooldownSuppressionsTotal.WithLabelValues(rule, kind).Inc()
}

// RecordSkippedTick records one tick skipped due to overlap.
func RecordSkippedTick(rule string) {
	SkippedTicksTotal.WithLabelValues(rule).Inc()
}

// SetTriggeredNodes records the current Triggered node count for a rule.
func SetTriggeredNodes(rule string, count int) {
	TriggeredNodes.WithLabelValues(rule).Set(float64(count))
}

// ForgetRule drops all per-rule series when a rule is removed.
func ForgetRule(rule string) {
	EvaluationsTotal.DeletePartialMatch(prometheus.Labels{"rule": rule})
	EvaluationDurationSeconds.DeletePartialMatch(prometheus.Labels{"rule": rule})
	TriggersTotal.DeletePartialMatch(prometheus.Labels{"rule": rule})
	RecoveriesTotal.DeletePartialMatch(prometheus.Labels{"rule": rule})
	ActionFailuresTotal.DeletePartialMatch(prometheus.Labels{"rule": rule})
	CooldownSuppressionsTotal.DeletePartialMatch(prometheus.Labels{"rule": rule})
	SkippedTicksTotal.DeletePartialMatch(prometheus.Labels{"rule": rule})
	TriggeredNodes.DeletePartialMatch(prometheus.Labels{"rule": rule})
}
