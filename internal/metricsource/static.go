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
	"fmt"
	"sync"

	guardianv1alpha1 "github.com/marcus-qen/nodeguardian/api/v1alpha1"
)

// Static serves fixed readings from memory. Test fixture for everything
// above the gateway layer.
type Static struct {
	mu       sync.Mutex
	readings map[string]float64
}

// NewStatic creates an empty static gateway.
func NewStatic() *Static {
	return &Static{readings: make(map[string]float64)}
}

func (s *Static) Name() string { return "static" }

// Set stores a reading for (node, kind).
func (s *Static) Set(node string, kind guardianv1alpha1.MetricKind, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings[staticKey(node, kind)] = value
}

// Clear removes a reading so subsequent fetches fail.
func (s *Static) Clear(node string, kind guardianv1alpha1.MetricKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.readings, staticKey(node, kind))
}

func (s *Static) Metric(_ context.Context, node string, kind guardianv1alpha1.MetricKind) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.readings[staticKey(node, kind)]
	if !ok {
		return 0, fmt.Errorf("%w: no reading for %s/%s", ErrUnavailable, node, kind)
	}
	return value, nil
}

func staticKey(node string, kind guardianv1alpha1.MetricKind) string {
	return node + "/" + string(kind)
}
