/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0
*/

// Package alert renders alert templates and delivers them to external
// channels. Templates are AlertTemplate CRs layered over a builtin set;
// delivery fans out to email, Slack, Telegram, or generic webhooks with
// per-channel failure isolation.
package alert

import (
	"time"
)

// Kind says whether an alert announces a trigger or a recovery.
type Kind string

const (
	KindTrigger  Kind = "trigger"
	KindRecovery Kind = "recovery"
)

// NodeContext is the per-node data available to templates.
type NodeContext struct {
	// Name is the node name.
	Name string

	// Readings are the metric values captured during the evaluation that
	// fired, keyed by metric name.
	Readings map[string]float64
}

// Alert is one firing to announce.
type Alert struct {
	Rule            string
	RuleDescription string
	Kind            Kind
	Nodes           []NodeContext
	Timestamp       time.Time
}

// Context is the dot passed to subject and body templates.
type Context struct {
	RuleName        string
	RuleDescription string
	Kind            string
	Timestamp       string
	Nodes           []NodeContext
}

// contextFor builds the template dot for an alert.
func contextFor(a Alert) Context {
	return Context{
		RuleName:        a.Rule,
		RuleDescription: a.RuleDescription,
		Kind:            string(a.Kind),
		Timestamp:       a.Timestamp.Format(time.RFC3339),
		Nodes:           a.Nodes,
	}
}
