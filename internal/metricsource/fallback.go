/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0
*/

package metricsource

import (
	"context"
	"encoding/json"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/kubernetes"
	"sigs.k8s.io/controller-runtime/pkg/client"

	guardianv1alpha1 "github.com/marcus-qen/nodeguardian/api/v1alpha1"
)

// nodeMetrics is the slice of the metrics.k8s.io NodeMetrics object the
// fallback needs. ResourceList fields decode resource quantities.
type nodeMetrics struct {
	Usage corev1.ResourceList `json:"usage"`
}

// FallbackGateway derives metrics when Prometheus is unreachable. CPU and
// memory come from the metrics.k8s.io API divided by node capacity. Disk
// has no usage API, so the DiskPressure node condition maps to a high
// fixed reading. Load ratio is approximated from CPU utilization.
type FallbackGateway struct {
	clientset kubernetes.Interface
	reader    client.Reader

	// diskPressureReading is reported for nodes under DiskPressure.
	diskPressureReading float64
}

// NewFallbackGateway creates the fallback gateway.
func NewFallbackGateway(clientset kubernetes.Interface, reader client.Reader) *FallbackGateway {
	return &FallbackGateway{
		clientset:           clientset,
		reader:              reader,
		diskPressureReading: 90,
	}
}

func (f *FallbackGateway) Name() string { return "metrics-server" }

func (f *FallbackGateway) Metric(ctx context.Context, node string, kind guardianv1alpha1.MetricKind) (float64, error) {
	switch kind {
	case guardianv1alpha1.MetricCPUUtilization:
		return f.utilization(ctx, node, corev1.ResourceCPU)
	case guardianv1alpha1.MetricMemoryUtilization:
		return f.utilization(ctx, node, corev1.ResourceMemory)
	case guardianv1alpha1.MetricDiskUtilization:
		return f.diskFromConditions(ctx, node)
	case guardianv1alpha1.MetricCPULoadRatio:
		util, err := f.utilization(ctx, node, corev1.ResourceCPU)
		if err != nil {
			return 0, err
		}
		return util / 100, nil
	default:
		return 0, fmt.Errorf("unknown metric kind %q", kind)
	}
}

// utilization is usage from metrics.k8s.io over capacity from the Node
// object, as a percentage.
func (f *FallbackGateway) utilization(ctx context.Context, node string, resource corev1.ResourceName) (float64, error) {
	raw, err := f.clientset.Discovery().RESTClient().
		Get().
		AbsPath("/apis/metrics.k8s.io/v1beta1/nodes/" + node).
		DoRaw(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: node metrics for %s: %v", ErrUnavailable, node, err)
	}

	var nm nodeMetrics
	if err := json.Unmarshal(raw, &nm); err != nil {
		return 0, fmt.Errorf("decode node metrics: %w", err)
	}
	usage, ok := nm.Usage[resource]
	if !ok {
		return 0, fmt.Errorf("%w: no %s usage for %s", ErrUnavailable, resource, node)
	}

	nodeObj := &corev1.Node{}
	if err := f.reader.Get(ctx, client.ObjectKey{Name: node}, nodeObj); err != nil {
		return 0, fmt.Errorf("get node %s: %w", node, err)
	}
	capacity, ok := nodeObj.Status.Capacity[resource]
	if !ok || capacity.IsZero() {
		return 0, fmt.Errorf("%w: no %s capacity for %s", ErrUnavailable, resource, node)
	}

	return usage.AsApproximateFloat64() / capacity.AsApproximateFloat64() * 100, nil
}

// diskFromConditions maps DiskPressure to a fixed high reading, and its
// absence to zero. Coarse, but enough to drive threshold rules when no
// filesystem metrics exist.
func (f *FallbackGateway) diskFromConditions(ctx context.Context, node string) (float64, error) {
	nodeObj := &corev1.Node{}
	if err := f.reader.Get(ctx, client.ObjectKey{Name: node}, nodeObj); err != nil {
		return 0, fmt.Errorf("get node %s: %w", node, err)
	}
	for _, cond := range nodeObj.Status.Conditions {
		if cond.Type == corev1.NodeDiskPressure && cond.Status == corev1.ConditionTrue {
			return f.diskPressureReading, nil
		}
	}
	return 0, nil
}
