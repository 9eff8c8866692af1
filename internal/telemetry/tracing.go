/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0
*/

// Package telemetry configures OpenTelemetry tracing for the NodeGuardian
// operator. One parent span covers a (rule, node) evaluation; children
// cover the metric fetches, the action batch, and alert delivery.
//
// Custom span attributes use the `nodeguardian.` prefix.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName = "nodeguardian.k8s.io/controller"
)

// Tracer returns the package-level tracer.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// InitTraceProvider initialises the OTel trace provider with an OTLP gRPC exporter.
// If endpoint is empty, tracing is disabled (noop provider is used).
// Returns a shutdown function that must be called on application exit.
func InitTraceProvider(ctx context.Context, endpoint string, version string) (func(context.Context) error, error) {
	if endpoint == "" {
		// No-op: tracing disabled
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(), // TLS configurable via env (OTEL_EXPORTER_OTLP_INSECURE)
	)
	if err != nil {
		return nil, fmt.Errorf("create OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithHost(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String("nodeguardian-controller"),
			semconv.ServiceVersionKey.String(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

// --- Span helpers ---

// StartEvaluationSpan creates the parent span for one (rule, node)
// evaluation run.
func StartEvaluationSpan(ctx context.Context, rule, node string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "rule.evaluate",
		trace.WithAttributes(
			attribute.String("nodeguardian.rule", rule),
			attribute.String("nodeguardian.node", node),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndEvaluationSpan enriches the evaluation span with its outcome.
func EndEvaluationSpan(span trace.Span, outcome string) {
	span.SetAttributes(attribute.String("nodeguardian.outcome", outcome))
	span.End()
}

// StartMetricFetchSpan creates a child span for one metric lookup.
func StartMetricFetchSpan(ctx context.Context, node, metric, gateway string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "metric.fetch",
		trace.WithAttributes(
			attribute.String("nodeguardian.node", node),
			attribute.String("nodeguardian.metric", metric),
			attribute.String("nodeguardian.gateway", gateway),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// StartActionBatchSpan creates a child span for an action batch.
func StartActionBatchSpan(ctx context.Context, rule, node string, actions int) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "rule.actions",
		trace.WithAttributes(
			attribute.String("nodeguardian.rule", rule),
			attribute.String("nodeguardian.node", node),
			attribute.Int("nodeguardian.action_count", actions),
		),
	)
}

// EndActionBatchSpan enriches the batch span with result data.
func EndActionBatchSpan(span trace.Span, attempted, failed int) {
	span.SetAttributes(
		attribute.Int("nodeguardian.actions_attempted", attempted),
		attribute.Int("nodeguardian.actions_failed", failed),
	)
	span.End()
}

// StartAlertSpan creates a child span for alert delivery.
func StartAlertSpan(ctx context.Context, rule, template string, channels int) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "alert.dispatch",
		trace.WithAttributes(
			attribute.String("nodeguardian.rule", rule),
			attribute.String("nodeguardian.template", template),
			attribute.Int("nodeguardian.channel_count", channels),
		),
	)
}
