/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package controller

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/go-logr/logr"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	guardianv1alpha1 "github.com/marcus-qen/nodeguardian/api/v1alpha1"
	"github.com/marcus-qen/nodeguardian/internal/cooldown"
	"github.com/marcus-qen/nodeguardian/internal/engine"
	"github.com/marcus-qen/nodeguardian/internal/registry"
	"github.com/marcus-qen/nodeguardian/internal/state"
	"github.com/marcus-qen/nodeguardian/internal/status"
)

// fakeScheduler records Upsert/Remove calls.
type fakeScheduler struct {
	upserts []string
	removes []string
}

func (f *fakeScheduler) Upsert(name string) { f.upserts = append(f.upserts, name) }
func (f *fakeScheduler) Remove(name string) { f.removes = append(f.removes, name) }

var _ = Describe("NodeGuardianRule Controller", func() {
	const resourceName = "test-rule"

	ctx := context.Background()
	typeNamespacedName := types.NamespacedName{Name: resourceName}

	var (
		reconciler *NodeGuardianRuleReconciler
		sched      *fakeScheduler
		reg        *registry.Registry
		store      *state.Store
		ledger     *cooldown.Ledger
	)

	newRule := func() *guardianv1alpha1.NodeGuardianRule {
		return &guardianv1alpha1.NodeGuardianRule{
			ObjectMeta: metav1.ObjectMeta{Name: resourceName},
			Spec: guardianv1alpha1.NodeGuardianRuleSpec{
				Conditions: []guardianv1alpha1.RuleCondition{{
					Metric:   guardianv1alpha1.MetricCPUUtilization,
					Operator: guardianv1alpha1.OperatorGreaterThan,
					Value:    85,
				}},
				Actions: []guardianv1alpha1.RuleAction{{Type: guardianv1alpha1.ActionTaint}},
			},
		}
	}

	reconcileOnce := func() {
		_, err := reconciler.Reconcile(ctx, reconcile.Request{NamespacedName: typeNamespacedName})
		Expect(err).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		sched = &fakeScheduler{}
		reg = registry.New()
		store = state.NewStore()
		ledger = cooldown.NewLedger()
		reconciler = &NodeGuardianRuleReconciler{
			Client:    k8sClient,
			Scheme:    scheme,
			Registry:  reg,
			Scheduler: sched,
			State:     store,
			Ledger:    ledger,
			Clocks:    engine.NewClockTracker(),
			Publisher: status.NewPublisher(k8sClient, store, logr.Discard()),
		}
	})

	Context("When reconciling a valid rule", func() {
		It("registers the rule and starts its loop", func() {
			Expect(k8sClient.Create(ctx, newRule())).To(Succeed())

			reconcileOnce()

			_, ok := reg.Get(resourceName)
			Expect(ok).To(BeTrue())
			Expect(sched.upserts).To(ConsistOf(resourceName))
		})

		It("rehydrates persisted node states and cooldowns", func() {
			rule := newRule()
			Expect(k8sClient.Create(ctx, rule)).To(Succeed())

			triggered := metav1.NewTime(time.Now().Add(-time.Minute))
			rule.Status.NodeStates = []guardianv1alpha1.NodeStateRecord{{
				Node:            "n1",
				Phase:           guardianv1alpha1.NodePhaseTriggered,
				LastTriggeredAt: &triggered,
			}}
			Expect(k8sClient.Status().Update(ctx, rule)).To(Succeed())

			reconcileOnce()

			Expect(store.Phase(resourceName, "n1")).To(Equal(state.PhaseTriggered))
			Expect(ledger.InCooldown(cooldown.KindTrigger, resourceName, "n1", time.Hour)).To(BeTrue())
		})
	})

	Context("When reconciling an invalid rule", func() {
		It("rejects it and records the error in status", func() {
			rule := newRule()
			rule.Spec.Conditions[0].Operator = "Wat"
			Expect(k8sClient.Create(ctx, rule)).To(Succeed())

			reconcileOnce()

			_, ok := reg.Get(resourceName)
			Expect(ok).To(BeFalse())
			Expect(sched.upserts).To(BeEmpty())

			updated := &guardianv1alpha1.NodeGuardianRule{}
			Expect(k8sClient.Get(ctx, typeNamespacedName, updated)).To(Succeed())
			Expect(updated.Status.LastError).NotTo(BeEmpty())
		})
	})

	Context("When a rule is disabled", func() {
		It("tears down its loop and in-memory state", func() {
			rule := newRule()
			Expect(k8sClient.Create(ctx, rule)).To(Succeed())
			reconcileOnce()
			Expect(sched.upserts).To(ConsistOf(resourceName))

			disabled := false
			rule.Spec.Metadata.Enabled = &disabled
			Expect(k8sClient.Update(ctx, rule)).To(Succeed())
			store.SetTriggered(resourceName, "n1", time.Now())

			reconcileOnce()

			_, ok := reg.Get(resourceName)
			Expect(ok).To(BeFalse())
			Expect(sched.removes).To(ConsistOf(resourceName))
			Expect(store.Phase(resourceName, "n1")).To(Equal(state.PhaseIdle))
		})

		It("clears persisted node states so re-enabling starts fresh", func() {
			rule := newRule()
			Expect(k8sClient.Create(ctx, rule)).To(Succeed())
			reconcileOnce()

			triggered := metav1.NewTime(time.Now().Add(-time.Minute))
			rule.Status.NodeStates = []guardianv1alpha1.NodeStateRecord{{
				Node:            "n1",
				Phase:           guardianv1alpha1.NodePhaseTriggered,
				LastTriggeredAt: &triggered,
			}}
			Expect(k8sClient.Status().Update(ctx, rule)).To(Succeed())

			disabled := false
			rule.Spec.Metadata.Enabled = &disabled
			Expect(k8sClient.Update(ctx, rule)).To(Succeed())
			reconcileOnce()

			updated := &guardianv1alpha1.NodeGuardianRule{}
			Expect(k8sClient.Get(ctx, typeNamespacedName, updated)).To(Succeed())
			Expect(updated.Status.NodeStates).To(BeEmpty())

			enabled := true
			updated.Spec.Metadata.Enabled = &enabled
			Expect(k8sClient.Update(ctx, updated)).To(Succeed())
			reconcileOnce()

			Expect(store.Phase(resourceName, "n1")).To(Equal(state.PhaseIdle))
			Expect(ledger.InCooldown(cooldown.KindTrigger, resourceName, "n1", time.Hour)).To(BeFalse())
		})
	})

	Context("When a rule is deleted", func() {
		It("tears down on the not-found reconcile", func() {
			rule := newRule()
			Expect(k8sClient.Create(ctx, rule)).To(Succeed())
			reconcileOnce()

			Expect(k8sClient.Delete(ctx, rule)).To(Succeed())
			reconcileOnce()

			_, ok := reg.Get(resourceName)
			Expect(ok).To(BeFalse())
			Expect(sched.removes).To(ConsistOf(resourceName))
		})
	})
})

var _ = Describe("AlertTemplate Controller", func() {
	ctx := context.Background()

	It("accepts a well-formed template", func() {
		tpl := &guardianv1alpha1.AlertTemplate{
			ObjectMeta: metav1.ObjectMeta{Name: "custom"},
			Spec: guardianv1alpha1.AlertTemplateSpec{
				Subject: "Alert: {{ .RuleName }}",
				Body:    "{{ range .Nodes }}{{ .Name }}{{ end }}",
			},
		}
		Expect(k8sClient.Create(ctx, tpl)).To(Succeed())

		r := &AlertTemplateReconciler{Client: k8sClient, Scheme: scheme}
		_, err := r.Reconcile(ctx, reconcile.Request{
			NamespacedName: types.NamespacedName{Name: "custom"},
		})
		Expect(err).NotTo(HaveOccurred())
	})

	It("tolerates a template with a parse error", func() {
		tpl := &guardianv1alpha1.AlertTemplate{
			ObjectMeta: metav1.ObjectMeta{Name: "broken"},
			Spec: guardianv1alpha1.AlertTemplateSpec{
				Subject: "{{ .RuleName",
				Body:    "ok",
			},
		}
		Expect(k8sClient.Create(ctx, tpl)).To(Succeed())

		r := &AlertTemplateReconciler{Client: k8sClient, Scheme: scheme}
		_, err := r.Reconcile(ctx, reconcile.Request{
			NamespacedName: types.NamespacedName{Name: "broken"},
		})
		Expect(err).NotTo(HaveOccurred())
	})
})
