/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0
*/

package selector

import (
	"context"
	"testing"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	guardianv1alpha1 "github.com/marcus-qen/nodeguardian/api/v1alpha1"
)

func testScheme(t *testing.T) *runtime.Scheme {
	t.Helper()
	scheme := runtime.NewScheme()
	if err := clientgoscheme.AddToScheme(scheme); err != nil {
		t.Fatal(err)
	}
	return scheme
}

func node(name string, nodeLabels map[string]string) *corev1.Node {
	return &corev1.Node{
		ObjectMeta: metav1.ObjectMeta{Name: name, Labels: nodeLabels},
	}
}

func TestResolveNamed(t *testing.T) {
	c := fake.NewClientBuilder().
		WithScheme(testScheme(t)).
		WithObjects(node("worker-1", nil), node("worker-2", nil)).
		Build()
	r := NewResolver(c)

	got, err := r.Resolve(context.Background(), guardianv1alpha1.NodeSelectorSpec{
		NodeNames: []string{"worker-2", "worker-1", "gone", "worker-1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"worker-1", "worker-2"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestResolveByLabels(t *testing.T) {
	c := fake.NewClientBuilder().
		WithScheme(testScheme(t)).
		WithObjects(
			node("gpu-1", map[string]string{"pool": "gpu", "zone": "a"}),
			node("gpu-2", map[string]string{"pool": "gpu", "zone": "b"}),
			node("cpu-1", map[string]string{"pool": "cpu", "zone": "a"}),
		).
		Build()
	r := NewResolver(c)

	got, err := r.Resolve(context.Background(), guardianv1alpha1.NodeSelectorSpec{
		MatchLabels: map[string]string{"pool": "gpu"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "gpu-1" || got[1] != "gpu-2" {
		t.Fatalf("got %v", got)
	}
}

func TestResolveByExpressions(t *testing.T) {
	c := fake.NewClientBuilder().
		WithScheme(testScheme(t)).
		WithObjects(
			node("a", map[string]string{"zone": "us-east"}),
			node("b", map[string]string{"zone": "us-west"}),
			node("c", map[string]string{"zone": "eu-central"}),
		).
		Build()
	r := NewResolver(c)

	got, err := r.Resolve(context.Background(), guardianv1alpha1.NodeSelectorSpec{
		MatchExpressions: []metav1.LabelSelectorRequirement{{
			Key:      "zone",
			Operator: metav1.LabelSelectorOpIn,
			Values:   []string{"us-east", "us-west"},
		}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("got %v", got)
	}
}

func TestResolveEmptySelectorMatchesAll(t *testing.T) {
	c := fake.NewClientBuilder().
		WithScheme(testScheme(t)).
		WithObjects(node("n1", nil), node("n2", nil)).
		Build()
	r := NewResolver(c)

	got, err := r.Resolve(context.Background(), guardianv1alpha1.NodeSelectorSpec{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("empty selector should match all nodes, got %v", got)
	}
}

func TestNodeNamesWinOverLabels(t *testing.T) {
	c := fake.NewClientBuilder().
		WithScheme(testScheme(t)).
		WithObjects(
			node("pinned", map[string]string{"pool": "cpu"}),
			node("labeled", map[string]string{"pool": "gpu"}),
		).
		Build()
	r := NewResolver(c)

	got, err := r.Resolve(context.Background(), guardianv1alpha1.NodeSelectorSpec{
		NodeNames:   []string{"pinned"},
		MatchLabels: map[string]string{"pool": "gpu"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != "pinned" {
		t.Fatalf("nodeNames should win, got %v", got)
	}
}
