/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0
*/

// Package nodeops applies mutations to Node objects and evicts pods.
// Taint, label, and annotation writes are idempotent upserts; removal of
// absent keys is a no-op. Eviction goes through the policy/v1 Eviction
// API so PodDisruptionBudgets are honored.
package nodeops

import (
	"context"
	"fmt"
	"sort"

	corev1 "k8s.io/api/core/v1"
	policyv1 "k8s.io/api/policy/v1"
	"k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// Client performs node mutations. The controller-runtime client handles
// Node updates; the typed clientset handles pod listing and eviction.
type Client struct {
	client    client.Client
	clientset kubernetes.Interface
}

// NewClient creates a node operations client.
func NewClient(c client.Client, clientset kubernetes.Interface) *Client {
	return &Client{client: c, clientset: clientset}
}

// EnsureTaint adds a taint if no taint with the same key and effect
// exists. An existing taint with a different value is overwritten.
func (c *Client) EnsureTaint(ctx context.Context, nodeName, key, value string, effect corev1.TaintEffect) error {
	node := &corev1.Node{}
	if err := c.client.Get(ctx, client.ObjectKey{Name: nodeName}, node); err != nil {
		return fmt.Errorf("get node %s: %w", nodeName, err)
	}

	desired := corev1.Taint{Key: key, Value: value, Effect: effect}
	for i, t := range node.Spec.Taints {
		if t.Key == key && t.Effect == effect {
			if t.Value == value {
				return nil
			}
			node.Spec.Taints[i] = desired
			return c.update(ctx, node)
		}
	}
	node.Spec.Taints = append(node.Spec.Taints, desired)
	return c.update(ctx, node)
}

// RemoveTaint removes every taint with the given key. Absent keys are a
// no-op.
func (c *Client) RemoveTaint(ctx context.Context, nodeName, key string) error {
	node := &corev1.Node{}
	if err := c.client.Get(ctx, client.ObjectKey{Name: nodeName}, node); err != nil {
		return fmt.Errorf("get node %s: %w", nodeName, err)
	}

	kept := node.Spec.Taints[:0]
	removed := false
	for _, t := range node.Spec.Taints {
		if t.Key == key {
			removed = true
			continue
		}
		kept = append(kept, t)
	}
	if !removed {
		return nil
	}
	node.Spec.Taints = kept
	return c.update(ctx, node)
}

// ApplyLabels upserts labels on the node.
func (c *Client) ApplyLabels(ctx context.Context, nodeName string, labels map[string]string) error {
	return c.mutate(ctx, nodeName, func(node *corev1.Node) bool {
		changed := false
		if node.Labels == nil {
			node.Labels = make(map[string]string, len(labels))
		}
		for k, v := range labels {
			if node.Labels[k] != v {
				node.Labels[k] = v
				changed = true
			}
		}
		return changed
	})
}

// RemoveLabels strips labels by key.
func (c *Client) RemoveLabels(ctx context.Context, nodeName string, keys []string) error {
	return c.mutate(ctx, nodeName, func(node *corev1.Node) bool {
		changed := false
		for _, k := range keys {
			if _, ok := node.Labels[k]; ok {
				delete(node.Labels, k)
				changed = true
			}
		}
		return changed
	})
}

// ApplyAnnotations upserts annotations on the node.
func (c *Client) ApplyAnnotations(ctx context.Context, nodeName string, annotations map[string]string) error {
	return c.mutate(ctx, nodeName, func(node *corev1.Node) bool {
		changed := false
		if node.Annotations == nil {
			node.Annotations = make(map[string]string, len(annotations))
		}
		for k, v := range annotations {
			if node.Annotations[k] != v {
				node.Annotations[k] = v
				changed = true
			}
		}
		return changed
	})
}

// RemoveAnnotations strips annotations by key.
func (c *Client) RemoveAnnotations(ctx context.Context, nodeName string, keys []string) error {
	return c.mutate(ctx, nodeName, func(node *corev1.Node) bool {
		changed := false
		for _, k := range keys {
			if _, ok := node.Annotations[k]; ok {
				delete(node.Annotations, k)
				changed = true
			}
		}
		return changed
	})
}

// EvictResult summarizes one eviction batch.
type EvictResult struct {
	Evicted int
	Skipped int
	Errors  []error
}

// EvictPods evicts up to maxPods pods from the node, skipping the
// excluded namespaces. Pods blocked by a PodDisruptionBudget count as
// errors but do not stop the batch. Pods are taken in name order so a
// repeated firing works through the node deterministically.
func (c *Client) EvictPods(ctx context.Context, nodeName string, maxPods int, excludeNamespaces []string, gracePeriodSeconds int64) (EvictResult, error) {
	var result EvictResult

	podList, err := c.clientset.CoreV1().Pods(metav1.NamespaceAll).List(ctx, metav1.ListOptions{
		FieldSelector: "spec.nodeName=" + nodeName,
	})
	if err != nil {
		return result, fmt.Errorf("list pods on %s: %w", nodeName, err)
	}

	excluded := make(map[string]bool, len(excludeNamespaces))
	for _, ns := range excludeNamespaces {
		excluded[ns] = true
	}

	candidates := make([]corev1.Pod, 0, len(podList.Items))
	for _, pod := range podList.Items {
		if pod.Spec.NodeName != nodeName {
			// Field selectors are advisory with some clients.
			continue
		}
		if excluded[pod.Namespace] {
			result.Skipped++
			continue
		}
		candidates = append(candidates, pod)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Namespace != candidates[j].Namespace {
			return candidates[i].Namespace < candidates[j].Namespace
		}
		return candidates[i].Name < candidates[j].Name
	})

	for _, pod := range candidates {
		if result.Evicted >= maxPods {
			break
		}
		eviction := &policyv1.Eviction{
			ObjectMeta: metav1.ObjectMeta{Name: pod.Name, Namespace: pod.Namespace},
			DeleteOptions: &metav1.DeleteOptions{
				GracePeriodSeconds: &gracePeriodSeconds,
			},
		}
		err := c.clientset.PolicyV1().Evictions(pod.Namespace).Evict(ctx, eviction)
		switch {
		case err == nil:
			result.Evicted++
		case errors.IsNotFound(err):
			// Already gone.
		default:
			result.Errors = append(result.Errors,
				fmt.Errorf("evict %s/%s: %w", pod.Namespace, pod.Name, err))
		}
	}
	return result, nil
}

// mutate applies fn to the node and writes it back only when fn reports a
// change.
func (c *Client) mutate(ctx context.Context, nodeName string, fn func(*corev1.Node) bool) error {
	node := &corev1.Node{}
	if err := c.client.Get(ctx, client.ObjectKey{Name: nodeName}, node); err != nil {
		return fmt.Errorf("get node %s: %w", nodeName, err)
	}
	if !fn(node) {
		return nil
	}
	return c.update(ctx, node)
}

func (c *Client) update(ctx context.Context, node *corev1.Node) error {
	if err := c.client.Update(ctx, node); err != nil {
		return fmt.Errorf("update node %s: %w", node.Name, err)
	}
	return nil
}
