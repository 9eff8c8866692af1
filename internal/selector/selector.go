/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0
*/

// Package selector resolves a rule's node selector to the current set of
// node names. Explicit nodeNames win over label selection; label and
// expression selectors are combined into one label query.
package selector

import (
	"context"
	"fmt"
	"sort"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	guardianv1alpha1 "github.com/marcus-qen/nodeguardian/api/v1alpha1"
)

// Resolver lists the nodes a rule watches.
type Resolver struct {
	client client.Client
}

// NewResolver creates a resolver backed by the manager's cached client.
func NewResolver(c client.Client) *Resolver {
	return &Resolver{client: c}
}

// Resolve returns the sorted names of the nodes the selector matches
// right now. An empty selector matches every node. Named nodes that do
// not exist are silently dropped; a fully empty result is the caller's
// signal to skip the tick.
func (r *Resolver) Resolve(ctx context.Context, sel guardianv1alpha1.NodeSelectorSpec) ([]string, error) {
	if len(sel.NodeNames) > 0 {
		return r.resolveNamed(ctx, sel.NodeNames)
	}
	return r.resolveByLabels(ctx, sel)
}

func (r *Resolver) resolveNamed(ctx context.Context, names []string) ([]string, error) {
	existing := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true

		node := &corev1.Node{}
		if err := r.client.Get(ctx, client.ObjectKey{Name: name}, node); err != nil {
			if client.IgnoreNotFound(err) == nil {
				continue
			}
			return nil, fmt.Errorf("get node %s: %w", name, err)
		}
		existing = append(existing, name)
	}
	sort.Strings(existing)
	return existing, nil
}

func (r *Resolver) resolveByLabels(ctx context.Context, sel guardianv1alpha1.NodeSelectorSpec) ([]string, error) {
	labelSel, err := metav1.LabelSelectorAsSelector(&metav1.LabelSelector{
		MatchLabels:      sel.MatchLabels,
		MatchExpressions: sel.MatchExpressions,
	})
	if err != nil {
		return nil, fmt.Errorf("build label selector: %w", err)
	}

	nodeList := &corev1.NodeList{}
	if err := r.client.List(ctx, nodeList, client.MatchingLabelsSelector{Selector: labelSel}); err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}

	names := make([]string, 0, len(nodeList.Items))
	for i := range nodeList.Items {
		names = append(names, nodeList.Items[i].Name)
	}
	sort.Strings(names)
	return names, nil
}
