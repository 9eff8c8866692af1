/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0
*/

package recovery

import (
	"context"
	"testing"
	"time"

	"github.com/go-logr/logr"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	k8sfake "k8s.io/client-go/kubernetes/fake"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	guardianv1alpha1 "github.com/marcus-qen/nodeguardian/api/v1alpha1"
	"github.com/marcus-qen/nodeguardian/internal/action"
	"github.com/marcus-qen/nodeguardian/internal/alert"
	"github.com/marcus-qen/nodeguardian/internal/cooldown"
	"github.com/marcus-qen/nodeguardian/internal/engine"
	"github.com/marcus-qen/nodeguardian/internal/metricsource"
	"github.com/marcus-qen/nodeguardian/internal/nodeops"
	"github.com/marcus-qen/nodeguardian/internal/registry"
	"github.com/marcus-qen/nodeguardian/internal/state"
	"github.com/marcus-qen/nodeguardian/internal/status"
)

type nullChannel struct{}

func (nullChannel) Type() string                              { return "log" }
func (nullChannel) Send(_ context.Context, _ alert.Message) error { return nil }

func newEngine(t *testing.T, objs ...client.Object) (*Engine, *metricsource.Static, *state.Store, *cooldown.Ledger) {
	t.Helper()
	scheme := runtime.NewScheme()
	if err := clientgoscheme.AddToScheme(scheme); err != nil {
		t.Fatal(err)
	}
	if err := guardianv1alpha1.AddToScheme(scheme); err != nil {
		t.Fatal(err)
	}
	c := fake.NewClientBuilder().WithScheme(scheme).
		WithStatusSubresource(&guardianv1alpha1.NodeGuardianRule{}).
		WithObjects(objs...).Build()

	source := metricsource.NewStatic()
	evaluator := engine.NewEvaluator(source, engine.NewClockTracker(), logr.Discard())
	store := state.NewStore()
	ledger := cooldown.NewLedger()

	templates, err := alert.NewTemplateStore(c)
	if err != nil {
		t.Fatal(err)
	}
	ch := nullChannel{}
	dispatcher := alert.NewDispatcher(templates, map[string]alert.Channel{"log": ch}, ch, nil, logr.Discard())
	nodes := nodeops.NewClient(c, k8sfake.NewSimpleClientset())
	orchestrator := action.NewOrchestrator(nodes, dispatcher, logr.Discard())
	publisher := status.NewPublisher(c, store, logr.Discard())

	return NewEngine(evaluator, store, ledger, orchestrator, publisher, logr.Discard()),
		source, store, ledger
}

func recoveryRule() *guardianv1alpha1.NodeGuardianRule {
	return &guardianv1alpha1.NodeGuardianRule{
		ObjectMeta: metav1.ObjectMeta{Name: "mem-pressure"},
		Spec: guardianv1alpha1.NodeGuardianRuleSpec{
			RecoveryConditions: []guardianv1alpha1.RuleCondition{{
				Metric:   guardianv1alpha1.MetricMemoryUtilization,
				Operator: guardianv1alpha1.OperatorLessThan,
				Value:    60,
			}},
			RecoveryActions: []guardianv1alpha1.RuleAction{{Type: guardianv1alpha1.ActionUntaint}},
		},
	}
}

func TestRunNodeRecovered(t *testing.T) {
	rule := recoveryRule()
	e, source, store, _ := newEngine(t, rule, &corev1.Node{ObjectMeta: metav1.ObjectMeta{Name: "n1"}})
	store.SetTriggered("mem-pressure", "n1", time.Now().Add(-time.Hour))
	source.Set("n1", guardianv1alpha1.MetricMemoryUtilization, 30)

	entry := &registry.Entry{Rule: rule, Interval: time.Minute}
	if got := e.RunNode(context.Background(), entry, "n1"); got != OutcomeRecovered {
		t.Fatalf("outcome = %v, want recovered", got)
	}
	if got := store.Phase("mem-pressure", "n1"); got != state.PhaseIdle {
		t.Errorf("phase = %v, want Idle", got)
	}
}

func TestRunNodeHoldsAboveThreshold(t *testing.T) {
	rule := recoveryRule()
	e, source, store, _ := newEngine(t, rule, &corev1.Node{ObjectMeta: metav1.ObjectMeta{Name: "n1"}})
	store.SetTriggered("mem-pressure", "n1", time.Now())
	source.Set("n1", guardianv1alpha1.MetricMemoryUtilization, 85)

	entry := &registry.Entry{Rule: rule, Interval: time.Minute}
	if got := e.RunNode(context.Background(), entry, "n1"); got != OutcomeHolding {
		t.Fatalf("outcome = %v, want holding", got)
	}
	if got := store.Phase("mem-pressure", "n1"); got != state.PhaseTriggered {
		t.Errorf("phase = %v, want Triggered", got)
	}
}

func TestRunNodeNoConditionsNeverRecovers(t *testing.T) {
	rule := recoveryRule()
	rule.Spec.RecoveryConditions = nil
	e, source, store, _ := newEngine(t, rule, &corev1.Node{ObjectMeta: metav1.ObjectMeta{Name: "n1"}})
	store.SetTriggered("mem-pressure", "n1", time.Now())
	source.Set("n1", guardianv1alpha1.MetricMemoryUtilization, 0)

	entry := &registry.Entry{Rule: rule, Interval: time.Minute}
	if got := e.RunNode(context.Background(), entry, "n1"); got != OutcomeHolding {
		t.Fatalf("outcome = %v, want holding", got)
	}
}

func TestRunNodeSuppressedByCooldown(t *testing.T) {
	rule := recoveryRule()
	e, source, store, ledger := newEngine(t, rule, &corev1.Node{ObjectMeta: metav1.ObjectMeta{Name: "n1"}})
	store.SetTriggered("mem-pressure", "n1", time.Now())
	source.Set("n1", guardianv1alpha1.MetricMemoryUtilization, 30)
	ledger.MarkFired(cooldown.KindRecovery, "mem-pressure", "n1")

	entry := &registry.Entry{Rule: rule, Interval: time.Minute, RecoveryCooldown: time.Hour}
	if got := e.RunNode(context.Background(), entry, "n1"); got != OutcomeSuppressed {
		t.Fatalf("outcome = %v, want suppressed", got)
	}
	if got := store.Phase("mem-pressure", "n1"); got != state.PhaseTriggered {
		t.Errorf("phase = %v, want Triggered", got)
	}
}
