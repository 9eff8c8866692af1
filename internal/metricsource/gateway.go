/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0
*/

// Package metricsource fetches node metrics. The primary gateway queries
// the Prometheus HTTP API; a fallback derives the same metrics from the
// metrics.k8s.io API and node conditions. A chain tries each gateway in
// order and returns the first reading.
package metricsource

import (
	"context"
	"errors"
	"fmt"

	guardianv1alpha1 "github.com/marcus-qen/nodeguardian/api/v1alpha1"
	"github.com/marcus-qen/nodeguardian/internal/telemetry"
)

// ErrUnavailable marks a metric the gateway could not produce. Callers
// treat it as a non-match, never as a zero reading.
var ErrUnavailable = errors.New("metric unavailable")

// Gateway supplies one metric reading for one node.
type Gateway interface {
	// Metric returns the current value of kind for node.
	Metric(ctx context.Context, node string, kind guardianv1alpha1.MetricKind) (float64, error)

	// Name identifies the gateway in logs.
	Name() string
}

// Chain tries gateways in order, returning the first successful reading.
type Chain struct {
	gateways []Gateway
}

// NewChain builds a chain. At least one gateway is required.
func NewChain(gateways ...Gateway) *Chain {
	return &Chain{gateways: gateways}
}

func (c *Chain) Name() string { return "chain" }

// Metric returns the first reading any gateway produces. When all fail,
// the errors are joined so logs show every attempt.
func (c *Chain) Metric(ctx context.Context, node string, kind guardianv1alpha1.MetricKind) (float64, error) {
	var errs []error
	for _, gw := range c.gateways {
		gwCtx, span := telemetry.StartMetricFetchSpan(ctx, node, string(kind), gw.Name())
		value, err := gw.Metric(gwCtx, node, kind)
		span.End()
		if err == nil {
			return value, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", gw.Name(), err))
	}
	if len(errs) == 0 {
		return 0, ErrUnavailable
	}
	return 0, errors.Join(errs...)
}
