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
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/common/model"

	guardianv1alpha1 "github.com/marcus-qen/nodeguardian/api/v1alpha1"
)

// PrometheusGateway queries the Prometheus HTTP API for node-exporter
// derived metrics. Node names are matched against the exporter's instance
// label with a substring regex, since instance is typically host:port.
type PrometheusGateway struct {
	baseURL string
	client  *http.Client
}

// NewPrometheusGateway creates a gateway against baseURL, e.g.
// "http://prometheus.monitoring:9090".
func NewPrometheusGateway(baseURL string) *PrometheusGateway {
	return &PrometheusGateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *PrometheusGateway) Name() string { return "prometheus" }

func (p *PrometheusGateway) Metric(ctx context.Context, node string, kind guardianv1alpha1.MetricKind) (float64, error) {
	query, err := queryFor(node, kind)
	if err != nil {
		return 0, err
	}
	return p.query(ctx, query)
}

// queryFor builds the instant query for one metric kind.
func queryFor(node string, kind guardianv1alpha1.MetricKind) (string, error) {
	instance := fmt.Sprintf(`instance=~".*%s.*"`, node)
	switch kind {
	case guardianv1alpha1.MetricCPUUtilization:
		return fmt.Sprintf(`100 - (avg by (instance) (irate(node_cpu_seconds_total{mode="idle",%s}[5m])) * 100)`, instance), nil
	case guardianv1alpha1.MetricMemoryUtilization:
		return fmt.Sprintf(`(1 - (node_memory_MemAvailable_bytes{%s} / node_memory_MemTotal_bytes{%s})) * 100`, instance, instance), nil
	case guardianv1alpha1.MetricDiskUtilization:
		return fmt.Sprintf(`(1 - (node_filesystem_avail_bytes{%s,mountpoint="/"} / node_filesystem_size_bytes{%s,mountpoint="/"})) * 100`, instance, instance), nil
	case guardianv1alpha1.MetricCPULoadRatio:
		return fmt.Sprintf(`node_load1{%s} / on(instance) count by (instance) (node_cpu_seconds_total{mode="idle",%s})`, instance, instance), nil
	default:
		return "", fmt.Errorf("unknown metric kind %q", kind)
	}
}

// apiResponse is the Prometheus query API envelope.
type apiResponse struct {
	Status string `json:"status"`
	Data   struct {
		ResultType model.ValueType `json:"resultType"`
		Result     json.RawMessage `json:"result"`
	} `json:"data"`
	Error string `json:"error"`
}

// query runs an instant query and returns the first sample value.
func (p *PrometheusGateway) query(ctx context.Context, expr string) (float64, error) {
	u := fmt.Sprintf("%s/api/v1/query?query=%s", p.baseURL, url.QueryEscape(expr))
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return 0, fmt.Errorf("prometheus request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("prometheus query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("prometheus returned %d: %s", resp.StatusCode, string(body))
	}

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return 0, fmt.Errorf("decode prometheus response: %w", err)
	}
	if envelope.Status != "success" {
		return 0, fmt.Errorf("prometheus error: %s", envelope.Error)
	}
	if envelope.Data.ResultType != model.ValVector {
		return 0, fmt.Errorf("unexpected result type %s", envelope.Data.ResultType)
	}

	var vector model.Vector
	if err := json.Unmarshal(envelope.Data.Result, &vector); err != nil {
		return 0, fmt.Errorf("decode result vector: %w", err)
	}
	if len(vector) == 0 {
		return 0, fmt.Errorf("%w: empty result", ErrUnavailable)
	}
	return float64(vector[0].Value), nil
}
