/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0
*/

// Package action executes a rule's action list against one node. The
// action set is closed: dispatch is a single switch over the declared
// type, and an unrecognized type fails that action without guessing.
// Batches are best-effort and ordered; a failed action never stops the
// ones after it.
package action

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	corev1 "k8s.io/api/core/v1"

	guardianv1alpha1 "github.com/marcus-qen/nodeguardian/api/v1alpha1"
	"github.com/marcus-qen/nodeguardian/internal/alert"
	"github.com/marcus-qen/nodeguardian/internal/metrics"
	"github.com/marcus-qen/nodeguardian/internal/nodeops"
	"github.com/marcus-qen/nodeguardian/internal/telemetry"
)

// Defaults applied when an action omits its config block.
const (
	DefaultTaintKey   = "nodeguardian/rule-triggered"
	DefaultTaintValue = "true"

	DefaultEvictMaxPods            = 10
	DefaultEvictGracePeriodSeconds = int64(30)
)

// DefaultEvictExcludedNamespaces are never touched by eviction unless the
// action lists its own exclusions.
func DefaultEvictExcludedNamespaces() []string {
	return []string{"kube-system", "kube-public"}
}

// Failure records one failed action within a batch.
type Failure struct {
	Type guardianv1alpha1.ActionType
	Err  error
}

// BatchResult is the outcome of one action batch.
type BatchResult struct {
	Attempted int
	Failures  []Failure
}

// Err aggregates the batch failures, nil when the batch was clean.
func (r BatchResult) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, fmt.Errorf("%s: %w", f.Type, f.Err))
	}
	return errors.Join(errs...)
}

// Orchestrator runs action batches.
type Orchestrator struct {
	nodes      *nodeops.Client
	dispatcher *alert.Dispatcher
	log        logr.Logger
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(nodes *nodeops.Client, dispatcher *alert.Dispatcher, log logr.Logger) *Orchestrator {
	return &Orchestrator{
		nodes:      nodes,
		dispatcher: dispatcher,
		log:        log.WithName("action"),
	}
}

// Run executes the actions in declared order against node. readings are
// the metric values from the evaluation that fired; alert actions render
// them into templates. kind labels the firing for alert delivery.
func (o *Orchestrator) Run(
	ctx context.Context,
	rule *guardianv1alpha1.NodeGuardianRule,
	actions []guardianv1alpha1.RuleAction,
	node string,
	readings map[string]float64,
	kind alert.Kind,
) BatchResult {
	ctx, span := telemetry.StartActionBatchSpan(ctx, rule.Name, node, len(actions))

	var result BatchResult
	for _, a := range actions {
		result.Attempted++
		if err := o.execute(ctx, rule, a, node, readings, kind); err != nil {
			o.log.Error(err, "action failed",
				"rule", rule.Name, "node", node, "action", a.Type)
			metrics.RecordActionFailure(rule.Name, string(a.Type))
			result.Failures = append(result.Failures, Failure{Type: a.Type, Err: err})
		}
	}
	telemetry.EndActionBatchSpan(span, result.Attempted, len(result.Failures))
	return result
}

// execute dispatches one action over the closed type set.
func (o *Orchestrator) execute(
	ctx context.Context,
	rule *guardianv1alpha1.NodeGuardianRule,
	a guardianv1alpha1.RuleAction,
	node string,
	readings map[string]float64,
	kind alert.Kind,
) error {
	switch a.Type {
	case guardianv1alpha1.ActionTaint:
		key, value, effect := taintDefaults(a.Taint)
		return o.nodes.EnsureTaint(ctx, node, key, value, effect)

	case guardianv1alpha1.ActionUntaint:
		key := DefaultTaintKey
		if a.Untaint != nil && a.Untaint.Key != "" {
			key = a.Untaint.Key
		}
		return o.nodes.RemoveTaint(ctx, node, key)

	case guardianv1alpha1.ActionLabel:
		if a.Label == nil {
			return fmt.Errorf("label action without config")
		}
		return o.nodes.ApplyLabels(ctx, node, a.Label.Labels)

	case guardianv1alpha1.ActionRemoveLabel:
		if a.RemoveLabel == nil {
			return fmt.Errorf("removeLabel action without config")
		}
		return o.nodes.RemoveLabels(ctx, node, a.RemoveLabel.Keys)

	case guardianv1alpha1.ActionAnnotation:
		if a.Annotation == nil {
			return fmt.Errorf("annotation action without config")
		}
		return o.nodes.ApplyAnnotations(ctx, node, a.Annotation.Annotations)

	case guardianv1alpha1.ActionRemoveAnnotation:
		if a.RemoveAnnotation == nil {
			return fmt.Errorf("removeAnnotation action without config")
		}
		return o.nodes.RemoveAnnotations(ctx, node, a.RemoveAnnotation.Keys)

	case guardianv1alpha1.ActionEvict:
		return o.evict(ctx, rule, a.Evict, node)

	case guardianv1alpha1.ActionAlert:
		return o.alert(ctx, rule, a.Alert, node, readings, kind)

	default:
		return fmt.Errorf("unknown action type %q", a.Type)
	}
}

func (o *Orchestrator) evict(ctx context.Context, rule *guardianv1alpha1.NodeGuardianRule, spec *guardianv1alpha1.EvictActionSpec, node string) error {
	maxPods := DefaultEvictMaxPods
	grace := DefaultEvictGracePeriodSeconds
	exclude := DefaultEvictExcludedNamespaces()
	if spec != nil {
		if spec.MaxPods > 0 {
			maxPods = spec.MaxPods
		}
		if spec.GracePeriodSeconds > 0 {
			grace = spec.GracePeriodSeconds
		}
		if spec.ExcludeNamespaces != nil {
			exclude = spec.ExcludeNamespaces
		}
	}

	result, err := o.nodes.EvictPods(ctx, node, maxPods, exclude, grace)
	if err != nil {
		return err
	}
	o.log.Info("eviction batch finished",
		"rule", rule.Name, "node", node,
		"evicted", result.Evicted, "skipped", result.Skipped, "failed", len(result.Errors))
	if len(result.Errors) > 0 {
		return errors.Join(result.Errors...)
	}
	return nil
}

func (o *Orchestrator) alert(
	ctx context.Context,
	rule *guardianv1alpha1.NodeGuardianRule,
	spec *guardianv1alpha1.AlertActionSpec,
	node string,
	readings map[string]float64,
	kind alert.Kind,
) error {
	template := guardianv1alpha1.TemplateDefault
	var channels []string
	if spec != nil {
		if spec.Enabled != nil && !*spec.Enabled {
			return nil
		}
		if spec.Template != "" {
			template = spec.Template
		}
		channels = spec.Channels
	}

	a := alert.Alert{
		Rule:            rule.Name,
		RuleDescription: rule.Spec.Metadata.Description,
		Kind:            kind,
		Timestamp:       time.Now(),
		Nodes:           []alert.NodeContext{{Name: node, Readings: readings}},
	}
	result := o.dispatcher.Dispatch(ctx, template, channels, a)
	if result.Failed() {
		return errors.Join(result.Errors...)
	}
	return nil
}

func taintDefaults(spec *guardianv1alpha1.TaintActionSpec) (string, string, corev1.TaintEffect) {
	key, value := DefaultTaintKey, DefaultTaintValue
	effect := corev1.TaintEffectNoSchedule
	if spec != nil {
		if spec.Key != "" {
			key = spec.Key
		}
		if spec.Value != "" {
			value = spec.Value
		}
		if spec.Effect != "" {
			effect = spec.Effect
		}
	}
	return key, value, effect
}
