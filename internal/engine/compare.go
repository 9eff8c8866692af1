/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0
*/

// Package engine evaluates rule conditions against live node metrics.
// It owns the comparison operators, the per-condition duration clocks
// that implement hysteresis, and the evaluator that combines condition
// outcomes under AND/OR logic.
package engine

import (
	"fmt"

	guardianv1alpha1 "github.com/marcus-qen/nodeguardian/api/v1alpha1"
)

// floatTolerance absorbs floating-point noise in equality comparisons.
// Metric values arrive as percentages or small ratios, so an absolute
// epsilon is adequate.
const floatTolerance = 1e-9

// Compare applies op between a metric value and a threshold.
// An unknown operator is an error, never a silent false.
func Compare(op guardianv1alpha1.CompareOperator, value, threshold float64) (bool, error) {
	switch op {
	case guardianv1alpha1.OperatorGreaterThan:
		return value > threshold, nil
	case guardianv1alpha1.OperatorLessThan:
		return value < threshold, nil
	case guardianv1alpha1.OperatorEqualTo:
		return equalWithin(value, threshold), nil
	case guardianv1alpha1.OperatorNotEqualTo:
		return !equalWithin(value, threshold), nil
	case guardianv1alpha1.OperatorGreaterThanOrEqual:
		return value > threshold || equalWithin(value, threshold), nil
	case guardianv1alpha1.OperatorLessThanOrEqual:
		return value < threshold || equalWithin(value, threshold), nil
	default:
		return false, fmt.Errorf("unknown operator %q", op)
	}
}

func equalWithin(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff <= floatTolerance
}
