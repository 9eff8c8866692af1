/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0
*/

// Package registry admits rules into the active set. Registration
// validates the whole rule; an invalid update is rejected and the prior
// valid version stays active. The registry holds parsed timing so the
// scheduler never re-parses durations per tick.
package registry

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	guardianv1alpha1 "github.com/marcus-qen/nodeguardian/api/v1alpha1"
)

// Defaults applied when the rule's monitoring block leaves them unset.
const (
	DefaultCheckInterval  = 30 * time.Second
	DefaultCooldownPeriod = 5 * time.Minute
)

// ConfigError reports a rule that failed validation. The rule's prior
// version, if any, remains registered.
type ConfigError struct {
	Rule   string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("rule %s rejected: %s", e.Rule, e.Reason)
}

// Entry is an admitted rule plus its parsed timing.
type Entry struct {
	Rule *guardianv1alpha1.NodeGuardianRule

	// Interval is the evaluation period. Ignored when Schedule is set.
	Interval time.Duration

	// Schedule is the parsed cron schedule, nil when the rule uses a
	// plain interval.
	Schedule cron.Schedule

	Cooldown         time.Duration
	RecoveryCooldown time.Duration
}

// Name returns the rule name.
func (e *Entry) Name() string { return e.Rule.Name }

// Priority returns the rule's ordering priority.
func (e *Entry) Priority() int32 { return e.Rule.Spec.Metadata.Priority }

// Registry is the active rule set.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*Entry
}

// cronParser accepts standard five-field cron expressions.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// New creates an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

// Register validates and admits a rule, replacing any prior version. On a
// validation failure it returns a *ConfigError and leaves the prior
// version in place.
func (r *Registry) Register(rule *guardianv1alpha1.NodeGuardianRule) (*Entry, error) {
	entry, err := buildEntry(rule)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[rule.Name] = entry
	return entry, nil
}

// Unregister drops a rule from the active set. Unknown names are a no-op.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, name)
}

// Get returns the admitted entry for a rule name.
func (r *Registry) Get(name string) (*Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[name]
	return entry, ok
}

// List returns the active entries ordered by priority (lower first), then
// name for a stable order among equals.
func (r *Registry) List() []*Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := make([]*Entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Priority() != entries[j].Priority() {
			return entries[i].Priority() < entries[j].Priority()
		}
		return entries[i].Name() < entries[j].Name()
	})
	return entries
}

// Len reports the number of admitted rules.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// buildEntry validates the rule and parses its timing.
func buildEntry(rule *guardianv1alpha1.NodeGuardianRule) (*Entry, error) {
	reject := func(format string, args ...interface{}) (*Entry, error) {
		return nil, &ConfigError{Rule: rule.Name, Reason: fmt.Sprintf(format, args...)}
	}

	if len(rule.Spec.Conditions) == 0 {
		return reject("at least one condition is required")
	}
	if err := validateConditions("conditions", rule.Spec.Conditions); err != nil {
		return reject("%v", err)
	}
	if err := validateConditions("recoveryConditions", rule.Spec.RecoveryConditions); err != nil {
		return reject("%v", err)
	}
	if err := validateLogic(rule.Spec.ConditionLogic); err != nil {
		return reject("conditionLogic: %v", err)
	}
	if err := validateLogic(rule.Spec.RecoveryConditionLogic); err != nil {
		return reject("recoveryConditionLogic: %v", err)
	}
	if err := validateActions("actions", rule.Spec.Actions); err != nil {
		return reject("%v", err)
	}
	if err := validateActions("recoveryActions", rule.Spec.RecoveryActions); err != nil {
		return reject("%v", err)
	}

	entry := &Entry{Rule: rule.DeepCopy()}

	interval, err := parsePeriod(rule.Spec.Monitoring.CheckInterval, DefaultCheckInterval)
	if err != nil {
		return reject("checkInterval: %v", err)
	}
	entry.Interval = interval

	if expr := rule.Spec.Monitoring.CheckSchedule; expr != "" {
		schedule, err := cronParser.Parse(expr)
		if err != nil {
			return reject("checkSchedule %q: %v", expr, err)
		}
		entry.Schedule = schedule
	}

	entry.Cooldown, err = parsePeriod(rule.Spec.Monitoring.CooldownPeriod, DefaultCooldownPeriod)
	if err != nil {
		return reject("cooldownPeriod: %v", err)
	}
	entry.RecoveryCooldown, err = parsePeriod(rule.Spec.Monitoring.RecoveryCooldownPeriod, DefaultCooldownPeriod)
	if err != nil {
		return reject("recoveryCooldownPeriod: %v", err)
	}

	return entry, nil
}

func validateConditions(field string, conditions []guardianv1alpha1.RuleCondition) error {
	for i, cond := range conditions {
		switch cond.Metric {
		case guardianv1alpha1.MetricCPUUtilization,
			guardianv1alpha1.MetricMemoryUtilization,
			guardianv1alpha1.MetricDiskUtilization,
			guardianv1alpha1.MetricCPULoadRatio:
		default:
			return fmt.Errorf("%s[%d]: unknown metric %q", field, i, cond.Metric)
		}

		switch cond.Operator {
		case guardianv1alpha1.OperatorGreaterThan,
			guardianv1alpha1.OperatorLessThan,
			guardianv1alpha1.OperatorEqualTo,
			guardianv1alpha1.OperatorNotEqualTo,
			guardianv1alpha1.OperatorGreaterThanOrEqual,
			guardianv1alpha1.OperatorLessThanOrEqual:
		default:
			return fmt.Errorf("%s[%d]: unknown operator %q", field, i, cond.Operator)
		}

		if cond.Duration != "" {
			d, err := time.ParseDuration(cond.Duration)
			if err != nil {
				return fmt.Errorf("%s[%d]: duration %q: %v", field, i, cond.Duration, err)
			}
			if d < 0 {
				return fmt.Errorf("%s[%d]: duration must not be negative", field, i)
			}
		}
	}
	return nil
}

func validateLogic(logic guardianv1alpha1.ConditionLogic) error {
	switch logic {
	case "", guardianv1alpha1.ConditionLogicAnd, guardianv1alpha1.ConditionLogicOr:
		return nil
	default:
		return fmt.Errorf("unknown logic %q", logic)
	}
}

func validateActions(field string, actions []guardianv1alpha1.RuleAction) error {
	for i, action := range actions {
		switch action.Type {
		case guardianv1alpha1.ActionTaint,
			guardianv1alpha1.ActionUntaint,
			guardianv1alpha1.ActionAlert:
			// Config optional, defaults cover everything.
		case guardianv1alpha1.ActionLabel:
			if action.Label == nil || len(action.Label.Labels) == 0 {
				return fmt.Errorf("%s[%d]: label action requires labels", field, i)
			}
		case guardianv1alpha1.ActionRemoveLabel:
			if action.RemoveLabel == nil || len(action.RemoveLabel.Keys) == 0 {
				return fmt.Errorf("%s[%d]: removeLabel action requires keys", field, i)
			}
		case guardianv1alpha1.ActionAnnotation:
			if action.Annotation == nil || len(action.Annotation.Annotations) == 0 {
				return fmt.Errorf("%s[%d]: annotation action requires annotations", field, i)
			}
		case guardianv1alpha1.ActionRemoveAnnotation:
			if action.RemoveAnnotation == nil || len(action.RemoveAnnotation.Keys) == 0 {
				return fmt.Errorf("%s[%d]: removeAnnotation action requires keys", field, i)
			}
		case guardianv1alpha1.ActionEvict:
			if action.Evict != nil && action.Evict.MaxPods < 0 {
				return fmt.Errorf("%s[%d]: maxPods must not be negative", field, i)
			}
		default:
			return fmt.Errorf("%s[%d]: unknown action type %q", field, i, action.Type)
		}
	}
	return nil
}

// parsePeriod parses a duration string, substituting a default for empty
// input.
func parsePeriod(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("must not be negative")
	}
	return d, nil
}
