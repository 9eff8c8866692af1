/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0
*/

package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	guardianv1alpha1 "github.com/marcus-qen/nodeguardian/api/v1alpha1"
)

func testScheme(t *testing.T) *runtime.Scheme {
	t.Helper()
	scheme := runtime.NewScheme()
	if err := guardianv1alpha1.AddToScheme(scheme); err != nil {
		t.Fatal(err)
	}
	return scheme
}

func testAlert() Alert {
	return Alert{
		Rule:            "high-cpu",
		RuleDescription: "cpu above 90 for 5m",
		Kind:            KindTrigger,
		Timestamp:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Nodes: []NodeContext{{
			Name: "worker-1",
			Readings: map[string]float64{
				"cpuUtilizationPercent":    95.2,
				"memoryUtilizationPercent": 41.0,
			},
		}},
	}
}

func newStore(t *testing.T, objs ...*guardianv1alpha1.AlertTemplate) *TemplateStore {
	t.Helper()
	builder := fake.NewClientBuilder().WithScheme(testScheme(t))
	for _, o := range objs {
		builder = builder.WithObjects(o)
	}
	store, err := NewTemplateStore(builder.Build())
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestRenderBuiltinDefault(t *testing.T) {
	store := newStore(t)

	rendered, err := store.Render(context.Background(), "default", testAlert())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rendered.Subject, "high-cpu") {
		t.Errorf("subject missing rule name: %q", rendered.Subject)
	}
	if !strings.Contains(rendered.Body, "worker-1") {
		t.Errorf("body missing node name: %q", rendered.Body)
	}
	if !strings.Contains(rendered.Body, "95.2") {
		t.Errorf("body missing cpu reading: %q", rendered.Body)
	}
	if rendered.Severity != guardianv1alpha1.AlertSeverityWarning {
		t.Errorf("severity = %s", rendered.Severity)
	}
}

func TestRenderUnknownFallsBackToDefault(t *testing.T) {
	store := newStore(t)

	rendered, err := store.Render(context.Background(), "no-such-template", testAlert())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rendered.Subject, "Node alert") {
		t.Errorf("expected default subject, got %q", rendered.Subject)
	}
}

func TestRenderCRShadowsBuiltin(t *testing.T) {
	store := newStore(t, &guardianv1alpha1.AlertTemplate{
		ObjectMeta: metav1.ObjectMeta{Name: "default"},
		Spec: guardianv1alpha1.AlertTemplateSpec{
			Subject:  "custom {{ .RuleName }}",
			Body:     "nodes: {{ range .Nodes }}{{ .Name }} {{ end }}",
			Severity: guardianv1alpha1.AlertSeverityCritical,
			Channels: []string{"slack"},
		},
	})

	rendered, err := store.Render(context.Background(), "default", testAlert())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rendered.Subject != "custom high-cpu" {
		t.Errorf("subject = %q", rendered.Subject)
	}
	if rendered.Severity != guardianv1alpha1.AlertSeverityCritical {
		t.Errorf("severity = %s", rendered.Severity)
	}
}

func TestRenderAllBuiltins(t *testing.T) {
	store := newStore(t)
	for _, name := range []string{"default", "high-load-alert", "emergency-alert", "recovery-alert"} {
		if _, err := store.Render(context.Background(), name, testAlert()); err != nil {
			t.Errorf("builtin %s: %v", name, err)
		}
	}
}

func TestSlackChannel(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ch := NewSlackChannel(server.URL, "#alerts")
	err := ch.Send(context.Background(), Message{
		Rule:      "high-cpu",
		Severity:  guardianv1alpha1.AlertSeverityCritical,
		Subject:   "node alert",
		Body:      "cpu at 95%",
		Timestamp: time.Now(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if received["text"] != "node alert" {
		t.Errorf("text = %v", received["text"])
	}
	if received["channel"] != "#alerts" {
		t.Errorf("channel = %v", received["channel"])
	}
	attachments := received["attachments"].([]interface{})
	first := attachments[0].(map[string]interface{})
	if first["color"] != "danger" {
		t.Errorf("critical should map to danger, got %v", first["color"])
	}
}

func TestWebhookChannel(t *testing.T) {
	var received map[string]interface{}
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	ch := NewWebhookChannel(server.URL, map[string]string{"Authorization": "Bearer tok"})
	err := ch.Send(context.Background(), Message{
		Rule:    "high-cpu",
		Kind:    KindTrigger,
		Subject: "node alert",
		Nodes:   []string{"worker-1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("auth header = %q", gotAuth)
	}
	payload := received["alert"].(map[string]interface{})
	if payload["rule"] != "high-cpu" {
		t.Errorf("rule = %v", payload["rule"])
	}
}

func TestWebhookChannelErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	ch := NewWebhookChannel(server.URL, nil)
	if err := ch.Send(context.Background(), Message{}); err == nil {
		t.Error("expected error for 403")
	}
}

// failingChannel always fails, for isolation tests.
type failingChannel struct{}

func (failingChannel) Type() string                        { return "failing" }
func (failingChannel) Send(context.Context, Message) error { return fmt.Errorf("boom") }

// recordingChannel captures delivered messages.
type recordingChannel struct {
	name string
	msgs []Message
}

func (r *recordingChannel) Type() string { return r.name }
func (r *recordingChannel) Send(_ context.Context, msg Message) error {
	r.msgs = append(r.msgs, msg)
	return nil
}

func TestDispatchUnionDedup(t *testing.T) {
	store := newStore(t, &guardianv1alpha1.AlertTemplate{
		ObjectMeta: metav1.ObjectMeta{Name: "tpl"},
		Spec: guardianv1alpha1.AlertTemplateSpec{
			Subject:  "s",
			Body:     "b",
			Channels: []string{"slack", "email"},
		},
	})

	slack := &recordingChannel{name: "slack"}
	email := &recordingChannel{name: "email"}
	d := NewDispatcher(store, map[string]Channel{"slack": slack, "email": email}, nil, nil, logr.Discard())

	result := d.Dispatch(context.Background(), "tpl", []string{"slack"}, testAlert())
	if result.Failed() {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(slack.msgs) != 1 {
		t.Errorf("slack deliveries = %d, want 1 (deduplicated)", len(slack.msgs))
	}
	if len(email.msgs) != 1 {
		t.Errorf("email deliveries = %d, want 1", len(email.msgs))
	}
}

func TestDispatchFailureIsolation(t *testing.T) {
	store := newStore(t, &guardianv1alpha1.AlertTemplate{
		ObjectMeta: metav1.ObjectMeta{Name: "tpl"},
		Spec:       guardianv1alpha1.AlertTemplateSpec{Subject: "s", Body: "b"},
	})

	good := &recordingChannel{name: "good"}
	d := NewDispatcher(store, map[string]Channel{
		"failing": failingChannel{},
		"good":    good,
	}, nil, nil, logr.Discard())

	result := d.Dispatch(context.Background(), "tpl", []string{"failing", "good"}, testAlert())
	if !result.Failed() {
		t.Error("expected failure recorded")
	}
	if len(good.msgs) != 1 {
		t.Error("failure of one channel must not block the other")
	}
}

func TestDispatchUnknownChannel(t *testing.T) {
	store := newStore(t)
	good := &recordingChannel{name: "good"}
	d := NewDispatcher(store, map[string]Channel{"good": good}, nil, nil, logr.Discard())

	result := d.Dispatch(context.Background(), "default", []string{"bogus", "good"}, testAlert())
	if len(result.Errors) == 0 {
		t.Error("unknown channel should be reported")
	}
	if len(good.msgs) != 1 {
		t.Error("known channel should still deliver")
	}
}

func TestDispatchFallback(t *testing.T) {
	store := newStore(t, &guardianv1alpha1.AlertTemplate{
		ObjectMeta: metav1.ObjectMeta{Name: "quiet"},
		Spec:       guardianv1alpha1.AlertTemplateSpec{Subject: "s", Body: "b"},
	})

	fallback := &recordingChannel{name: "log"}
	d := NewDispatcher(store, map[string]Channel{}, fallback, nil, logr.Discard())

	d.Dispatch(context.Background(), "quiet", nil, testAlert())
	if len(fallback.msgs) != 1 {
		t.Error("empty channel union should use the fallback")
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2)
	if !rl.Allow("r1") || !rl.Allow("r1") {
		t.Fatal("first two should be allowed")
	}
	if rl.Allow("r1") {
		t.Error("third within the hour should be blocked")
	}
	if !rl.Allow("r2") {
		t.Error("other rules are tracked independently")
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "channels.yaml")
	content := `
maxAlertsPerHour: 5
slack:
  webhookURL: https://hooks.slack.example/T000
  channel: "#ops"
email:
  host: smtp.example.com
  port: 587
  from: guardian@example.com
  to: [ops@example.com]
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxAlertsPerHour != 5 {
		t.Errorf("maxAlertsPerHour = %d", cfg.MaxAlertsPerHour)
	}

	channels := BuildChannels(cfg, logr.Discard())
	for _, want := range []string{"log", "slack", "email"} {
		if _, ok := channels[want]; !ok {
			t.Errorf("missing channel %s", want)
		}
	}
	if _, ok := channels["telegram"]; ok {
		t.Error("unconfigured telegram channel should be absent")
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	channels := BuildChannels(cfg, logr.Discard())
	if len(channels) != 1 {
		t.Errorf("expected only the log channel, got %d", len(channels))
	}
}
