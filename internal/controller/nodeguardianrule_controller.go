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
	"sync"

	"k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	logf "sigs.k8s.io/controller-runtime/pkg/log"

	guardianv1alpha1 "github.com/marcus-qen/nodeguardian/api/v1alpha1"
	"github.com/marcus-qen/nodeguardian/internal/cooldown"
	"github.com/marcus-qen/nodeguardian/internal/engine"
	"github.com/marcus-qen/nodeguardian/internal/metrics"
	"github.com/marcus-qen/nodeguardian/internal/registry"
	"github.com/marcus-qen/nodeguardian/internal/state"
	"github.com/marcus-qen/nodeguardian/internal/status"
)

// RuleScheduler is the scheduler surface the reconciler drives.
// Implemented by the scheduler package.
type RuleScheduler interface {
	Upsert(name string)
	Remove(name string)
}

// NodeGuardianRuleReconciler keeps the registry and scheduler in sync
// with the NodeGuardianRule objects in the cluster. A disabled or
// deleted rule is torn down the same way: its loop stops and its
// in-memory state, clocks, and cooldowns are dropped.
type NodeGuardianRuleReconciler struct {
	client.Client
	Scheme *runtime.Scheme

	Registry  *registry.Registry
	Scheduler RuleScheduler
	State     *state.Store
	Ledger    *cooldown.Ledger
	Clocks    *engine.ClockTracker
	Publisher *status.Publisher

	// rehydrated tracks which rules have had their persisted node states
	// loaded, so a status update does not re-import stale records over
	// live ones.
	mu         sync.Mutex
	rehydrated map[string]bool
}

// +kubebuilder:rbac:groups=nodeguardian.k8s.io,resources=nodeguardianrules,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups=nodeguardian.k8s.io,resources=nodeguardianrules/status,verbs=get;update;patch
// +kubebuilder:rbac:groups="",resources=nodes,verbs=get;list;watch;update;patch
// +kubebuilder:rbac:groups="",resources=pods,verbs=get;list;watch
// +kubebuilder:rbac:groups="",resources=pods/eviction,verbs=create

// Reconcile handles NodeGuardianRule create/update/delete events.
func (r *NodeGuardianRuleReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	log := logf.FromContext(ctx)

	rule := &guardianv1alpha1.NodeGuardianRule{}
	if err := r.Get(ctx, req.NamespacedName, rule); err != nil {
		if errors.IsNotFound(err) {
			log.Info("NodeGuardianRule deleted, tearing down", "rule", req.Name)
			r.tearDown(ctx, req.Name)
			return ctrl.Result{}, nil
		}
		return ctrl.Result{}, err
	}

	if !rule.DeletionTimestamp.IsZero() {
		r.tearDown(ctx, rule.Name)
		return ctrl.Result{}, nil
	}

	if !rule.Enabled() {
		log.Info("NodeGuardianRule disabled, tearing down", "rule", rule.Name)
		r.tearDown(ctx, rule.Name)
		return ctrl.Result{}, nil
	}

	r.rehydrate(rule)

	if _, err := r.Registry.Register(rule); err != nil {
		// Invalid specs are surfaced through status; requeueing cannot
		// fix them. A prior valid version, if any, keeps running.
		log.Error(err, "Rejected NodeGuardianRule", "rule", rule.Name)
		r.Publisher.SetLastError(rule.Name, err.Error())
		r.Publisher.Publish(ctx, rule.Name)
		return ctrl.Result{}, nil
	}

	log.Info("Reconciling NodeGuardianRule",
		"rule", rule.Name,
		"conditions", len(rule.Spec.Conditions),
		"actions", len(rule.Spec.Actions),
		"priority", rule.Spec.Metadata.Priority,
	)
	r.Scheduler.Upsert(rule.Name)
	return ctrl.Result{}, nil
}

// rehydrate imports persisted node states into the in-memory store and
// cooldown ledger, once per rule. Timestamps restored into the ledger
// keep cooldown suppression working across a restart.
func (r *NodeGuardianRuleReconciler) rehydrate(rule *guardianv1alpha1.NodeGuardianRule) {
	r.mu.Lock()
	if r.rehydrated == nil {
		r.rehydrated = make(map[string]bool)
	}
	if r.rehydrated[rule.Name] {
		r.mu.Unlock()
		return
	}
	r.rehydrated[rule.Name] = true
	r.mu.Unlock()

	for _, rec := range rule.Status.NodeStates {
		st := state.NodeState{
			Node:  rec.Node,
			Phase: state.Phase(rec.Phase),
		}
		if rec.LastTriggeredAt != nil {
			st.LastTriggeredAt = rec.LastTriggeredAt.Time
			r.Ledger.Restore(cooldown.KindTrigger, rule.Name, rec.Node, rec.LastTriggeredAt.Time)
		}
		if rec.LastRecoveredAt != nil {
			st.LastRecoveredAt = rec.LastRecoveredAt.Time
			r.Ledger.Restore(cooldown.KindRecovery, rule.Name, rec.Node, rec.LastRecoveredAt.Time)
		}
		r.State.Restore(rule.Name, st)
	}
}

// tearDown stops the rule's loop and drops everything held for it, in
// memory and in the persisted status records. Node mutations already
// applied stay until recovery or an operator reverses them.
func (r *NodeGuardianRuleReconciler) tearDown(ctx context.Context, name string) {
	r.Scheduler.Remove(name)
	r.Registry.Unregister(name)
	r.State.DropRule(name)
	r.Ledger.ForgetRule(name)
	r.Clocks.ClearRule(name)
	r.Publisher.Forget(name)
	metrics.ForgetRule(name)

	r.mu.Lock()
	delete(r.rehydrated, name)
	r.mu.Unlock()

	// The state store is empty for this rule now, so publishing writes
	// empty nodeStates. Without this a disabled rule keeps its persisted
	// records and re-enabling rehydrates Triggered phases and cooldowns
	// no evaluation produced. A no-op when the object is already gone.
	r.Publisher.Publish(ctx, name)
}

// SetupWithManager sets up the controller with the Manager.
func (r *NodeGuardianRuleReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&guardianv1alpha1.NodeGuardianRule{}).
		Named("nodeguardianrule").
		Complete(r)
}
