/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0
*/

// Package status mirrors the in-memory rule state into the rule's status
// subresource. Publishing is fire-and-forget: a failed update is logged
// and retried implicitly on the next firing, never blocking evaluation.
package status

import (
	"context"
	"sync"

	"github.com/go-logr/logr"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	guardianv1alpha1 "github.com/marcus-qen/nodeguardian/api/v1alpha1"
	"github.com/marcus-qen/nodeguardian/internal/metrics"
	"github.com/marcus-qen/nodeguardian/internal/state"
)

// Publisher writes rule status from the state store. The persisted
// nodeStates records are what the controller rehydrates from after a
// restart.
type Publisher struct {
	client client.Client
	store  *state.Store
	log    logr.Logger

	mu         sync.Mutex
	lastErrors map[string]string
}

// NewPublisher creates a publisher.
func NewPublisher(c client.Client, store *state.Store, log logr.Logger) *Publisher {
	return &Publisher{
		client:     c,
		store:      store,
		log:        log.WithName("status"),
		lastErrors: make(map[string]string),
	}
}

// SetLastError records the most recent evaluation or action error for a
// rule. An empty message marks the last cycle clean.
func (p *Publisher) SetLastError(rule, msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if msg == "" {
		delete(p.lastErrors, rule)
		return
	}
	p.lastErrors[rule] = msg
}

// Forget drops the error cache for a removed rule.
func (p *Publisher) Forget(rule string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.lastErrors, rule)
}

// Publish updates a rule's status subresource from the state store.
// Failures are logged, not returned; status is advisory and the
// in-memory state stays authoritative.
func (p *Publisher) Publish(ctx context.Context, ruleName string) {
	rule := &guardianv1alpha1.NodeGuardianRule{}
	if err := p.client.Get(ctx, client.ObjectKey{Name: ruleName}, rule); err != nil {
		if client.IgnoreNotFound(err) != nil {
			p.log.Error(err, "Failed to get rule for status update", "rule", ruleName)
		}
		return
	}

	rule.Status = p.build(rule)
	if err := p.client.Status().Update(ctx, rule); err != nil {
		p.log.V(1).Info("Failed to update rule status", "rule", ruleName, "error", err)
		return
	}
	metrics.SetTriggeredNodes(ruleName, len(rule.Status.TriggeredNodes))
}

func (p *Publisher) build(rule *guardianv1alpha1.NodeGuardianRule) guardianv1alpha1.NodeGuardianRuleStatus {
	snapshot := p.store.Snapshot(rule.Name)

	status := guardianv1alpha1.NodeGuardianRuleStatus{
		Phase:              guardianv1alpha1.RulePhaseIdle,
		ObservedGeneration: rule.Generation,
	}

	for _, st := range snapshot {
		record := guardianv1alpha1.NodeStateRecord{
			Node:  st.Node,
			Phase: guardianv1alpha1.NodePhase(st.Phase),
		}
		if !st.LastTriggeredAt.IsZero() {
			t := metav1.NewTime(st.LastTriggeredAt)
			record.LastTriggeredAt = &t
			if status.LastTriggered == nil || t.After(status.LastTriggered.Time) {
				status.LastTriggered = &t
			}
		}
		if !st.LastRecoveredAt.IsZero() {
			t := metav1.NewTime(st.LastRecoveredAt)
			record.LastRecoveredAt = &t
			if status.LastRecovered == nil || t.After(status.LastRecovered.Time) {
				status.LastRecovered = &t
			}
		}
		if st.Phase == state.PhaseTriggered {
			status.TriggeredNodes = append(status.TriggeredNodes, st.Node)
			status.Phase = guardianv1alpha1.RulePhaseActive
		}
		status.NodeStates = append(status.NodeStates, record)
	}

	p.mu.Lock()
	status.LastError = p.lastErrors[rule.Name]
	p.mu.Unlock()

	return status
}
