/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0
*/

package alert

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/yaml"

	guardianv1alpha1 "github.com/marcus-qen/nodeguardian/api/v1alpha1"
)

//go:embed templates/builtin.yaml
var builtinYAML []byte

// builtinEntry mirrors one entry of the embedded template file.
type builtinEntry struct {
	Name string                            `json:"name"`
	Spec guardianv1alpha1.AlertTemplateSpec `json:"spec"`
}

// Rendered is a template applied to an alert.
type Rendered struct {
	Subject  string
	Body     string
	Severity guardianv1alpha1.AlertSeverity
	Channels []string
}

// TemplateStore resolves template names to rendered alerts. An
// AlertTemplate CR shadows a builtin of the same name; an unknown name
// falls back to the builtin default template.
type TemplateStore struct {
	reader client.Reader

	mu       sync.Mutex
	builtins map[string]guardianv1alpha1.AlertTemplateSpec
}

// NewTemplateStore creates a store over the manager's cached client.
func NewTemplateStore(reader client.Reader) (*TemplateStore, error) {
	var entries []builtinEntry
	if err := yaml.Unmarshal(builtinYAML, &entries); err != nil {
		return nil, fmt.Errorf("parse builtin templates: %w", err)
	}

	builtins := make(map[string]guardianv1alpha1.AlertTemplateSpec, len(entries))
	for _, e := range entries {
		builtins[e.Name] = e.Spec
	}
	if _, ok := builtins[guardianv1alpha1.TemplateDefault]; !ok {
		return nil, fmt.Errorf("builtin templates missing %q", guardianv1alpha1.TemplateDefault)
	}
	return &TemplateStore{reader: reader, builtins: builtins}, nil
}

// Render resolves name and renders it against the alert. Resolution order:
// AlertTemplate CR, builtin, builtin default.
func (s *TemplateStore) Render(ctx context.Context, name string, a Alert) (Rendered, error) {
	if name == "" {
		name = guardianv1alpha1.TemplateDefault
	}
	spec := s.resolve(ctx, name)

	dot := contextFor(a)
	subject, err := renderOne("subject", spec.Subject, dot)
	if err != nil {
		return Rendered{}, fmt.Errorf("template %s: %w", name, err)
	}
	body, err := renderOne("body", spec.Body, dot)
	if err != nil {
		return Rendered{}, fmt.Errorf("template %s: %w", name, err)
	}

	severity := spec.Severity
	if severity == "" {
		severity = guardianv1alpha1.AlertSeverityWarning
	}
	return Rendered{
		Subject:  strings.TrimSpace(subject),
		Body:     body,
		Severity: severity,
		Channels: spec.Channels,
	}, nil
}

func (s *TemplateStore) resolve(ctx context.Context, name string) guardianv1alpha1.AlertTemplateSpec {
	cr := &guardianv1alpha1.AlertTemplate{}
	if err := s.reader.Get(ctx, client.ObjectKey{Name: name}, cr); err == nil {
		return cr.Spec
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if spec, ok := s.builtins[name]; ok {
		return spec
	}
	return s.builtins[guardianv1alpha1.TemplateDefault]
}

func renderOne(what, text string, dot Context) (string, error) {
	tmpl, err := template.New(what).Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", what, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, dot); err != nil {
		return "", fmt.Errorf("render %s: %w", what, err)
	}
	return buf.String(), nil
}
