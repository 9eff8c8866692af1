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
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	guardianv1alpha1 "github.com/marcus-qen/nodeguardian/api/v1alpha1"
)

func promServer(t *testing.T, handler func(query string) string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/query" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, handler(r.URL.Query().Get("query")))
	}))
}

func vectorResponse(value float64) string {
	return fmt.Sprintf(`{
		"status": "success",
		"data": {
			"resultType": "vector",
			"result": [
				{"metric": {"instance": "worker-1:9100"}, "value": [1767000000, "%g"]}
			]
		}
	}`, value)
}

func TestPrometheusGatewayParsesVector(t *testing.T) {
	srv := promServer(t, func(query string) string {
		if !strings.Contains(query, `node_cpu_seconds_total`) {
			t.Errorf("unexpected query: %s", query)
		}
		if !strings.Contains(query, "worker-1") {
			t.Errorf("query missing node name: %s", query)
		}
		return vectorResponse(87.5)
	})
	defer srv.Close()

	gw := NewPrometheusGateway(srv.URL)
	value, err := gw.Metric(context.Background(), "worker-1", guardianv1alpha1.MetricCPUUtilization)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != 87.5 {
		t.Errorf("value = %v, want 87.5", value)
	}
}

func TestPrometheusGatewayQueriesPerKind(t *testing.T) {
	wantFragments := map[guardianv1alpha1.MetricKind]string{
		guardianv1alpha1.MetricCPUUtilization:    "node_cpu_seconds_total",
		guardianv1alpha1.MetricMemoryUtilization: "node_memory_MemAvailable_bytes",
		guardianv1alpha1.MetricDiskUtilization:   "node_filesystem_avail_bytes",
		guardianv1alpha1.MetricCPULoadRatio:      "node_load1",
	}

	var lastQuery string
	srv := promServer(t, func(query string) string {
		lastQuery = query
		return vectorResponse(1)
	})
	defer srv.Close()

	gw := NewPrometheusGateway(srv.URL)
	for kind, fragment := range wantFragments {
		if _, err := gw.Metric(context.Background(), "n1", kind); err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		if !strings.Contains(lastQuery, fragment) {
			t.Errorf("%s query %q missing %q", kind, lastQuery, fragment)
		}
	}
}

func TestPrometheusGatewayEmptyResult(t *testing.T) {
	srv := promServer(t, func(string) string {
		return `{"status":"success","data":{"resultType":"vector","result":[]}}`
	})
	defer srv.Close()

	gw := NewPrometheusGateway(srv.URL)
	_, err := gw.Metric(context.Background(), "n1", guardianv1alpha1.MetricCPUUtilization)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestPrometheusGatewayAPIError(t *testing.T) {
	srv := promServer(t, func(string) string {
		return `{"status":"error","error":"query timed out"}`
	})
	defer srv.Close()

	gw := NewPrometheusGateway(srv.URL)
	_, err := gw.Metric(context.Background(), "n1", guardianv1alpha1.MetricCPUUtilization)
	if err == nil || !strings.Contains(err.Error(), "query timed out") {
		t.Errorf("expected API error surfaced, got %v", err)
	}
}

func TestPrometheusGatewayUnknownKind(t *testing.T) {
	gw := NewPrometheusGateway("http://unused")
	if _, err := gw.Metric(context.Background(), "n1", "bogus"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestChainFallsThrough(t *testing.T) {
	broken := NewStatic() // no readings, always fails
	working := NewStatic()
	working.Set("n1", guardianv1alpha1.MetricCPUUtilization, 42)

	chain := NewChain(broken, working)
	value, err := chain.Metric(context.Background(), "n1", guardianv1alpha1.MetricCPUUtilization)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != 42 {
		t.Errorf("value = %v, want 42", value)
	}
}

func TestChainAllFail(t *testing.T) {
	chain := NewChain(NewStatic(), NewStatic())
	_, err := chain.Metric(context.Background(), "n1", guardianv1alpha1.MetricCPUUtilization)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable in joined error, got %v", err)
	}
}

func TestStaticClear(t *testing.T) {
	s := NewStatic()
	s.Set("n1", guardianv1alpha1.MetricMemoryUtilization, 55)
	if _, err := s.Metric(context.Background(), "n1", guardianv1alpha1.MetricMemoryUtilization); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.Clear("n1", guardianv1alpha1.MetricMemoryUtilization)
	if _, err := s.Metric(context.Background(), "n1", guardianv1alpha1.MetricMemoryUtilization); err == nil {
		t.Error("cleared reading should fail")
	}
}
