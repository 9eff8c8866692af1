/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package v1alpha1

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// MetricKind identifies a node metric consumed from the metrics gateway.
// +kubebuilder:validation:Enum=cpuUtilizationPercent;memoryUtilizationPercent;diskUtilizationPercent;cpuLoadRatio
type MetricKind string

const (
	MetricCPUUtilization    MetricKind = "cpuUtilizationPercent"
	MetricMemoryUtilization MetricKind = "memoryUtilizationPercent"
	MetricDiskUtilization   MetricKind = "diskUtilizationPercent"
	MetricCPULoadRatio      MetricKind = "cpuLoadRatio"
)

// CompareOperator is the comparison applied between a metric value and a threshold.
// +kubebuilder:validation:Enum=GreaterThan;LessThan;EqualTo;NotEqualTo;GreaterThanOrEqual;LessThanOrEqual
type CompareOperator string

const (
	OperatorGreaterThan        CompareOperator = "GreaterThan"
	OperatorLessThan           CompareOperator = "LessThan"
	OperatorEqualTo            CompareOperator = "EqualTo"
	OperatorNotEqualTo         CompareOperator = "NotEqualTo"
	OperatorGreaterThanOrEqual CompareOperator = "GreaterThanOrEqual"
	OperatorLessThanOrEqual    CompareOperator = "LessThanOrEqual"
)

// ConditionLogic combines multiple conditions.
// +kubebuilder:validation:Enum=AND;OR
type ConditionLogic string

const (
	ConditionLogicAnd ConditionLogic = "AND"
	ConditionLogicOr  ConditionLogic = "OR"
)

// ActionType enumerates the closed set of node actions.
// +kubebuilder:validation:Enum=taint;untaint;label;removeLabel;annotation;removeAnnotation;evict;alert
type ActionType string

const (
	ActionTaint            ActionType = "taint"
	ActionUntaint          ActionType = "untaint"
	ActionLabel            ActionType = "label"
	ActionRemoveLabel      ActionType = "removeLabel"
	ActionAnnotation       ActionType = "annotation"
	ActionRemoveAnnotation ActionType = "removeAnnotation"
	ActionEvict            ActionType = "evict"
	ActionAlert            ActionType = "alert"
)

// --- Sub-types ---

// RuleCondition is a single threshold comparison with a minimum hold duration.
type RuleCondition struct {
	// metric is the node metric to compare.
	// +required
	Metric MetricKind `json:"metric"`

	// operator is the comparison operator.
	// +required
	Operator CompareOperator `json:"operator"`

	// value is the numeric threshold.
	// Stored as a float; CRD generation requires allowDangerousTypes.
	// +required
	Value float64 `json:"value"`

	// duration is how long the comparison must hold continuously before the
	// condition is considered satisfied (e.g. "5m"). "0s" means instantaneous.
	// +optional
	// +kubebuilder:default="0s"
	Duration string `json:"duration,omitempty"`

	// description is a free-form operator note.
	// +optional
	Description string `json:"description,omitempty"`
}

// NodeSelectorSpec selects the nodes a rule watches. nodeNames wins when set;
// otherwise matchLabels and matchExpressions are combined.
type NodeSelectorSpec struct {
	// nodeNames pins the rule to an explicit node list.
	// +optional
	NodeNames []string `json:"nodeNames,omitempty"`

	// matchLabels selects nodes by exact label match.
	// +optional
	MatchLabels map[string]string `json:"matchLabels,omitempty"`

	// matchExpressions selects nodes by label set expressions.
	// +optional
	MatchExpressions []metav1.LabelSelectorRequirement `json:"matchExpressions,omitempty"`
}

// TaintActionSpec adds a taint to triggered nodes.
type TaintActionSpec struct {
	// key is the taint key.
	// +optional
	// +kubebuilder:default="nodeguardian/rule-triggered"
	Key string `json:"key,omitempty"`

	// value is the taint value.
	// +optional
	// +kubebuilder:default="true"
	Value string `json:"value,omitempty"`

	// effect is the taint effect.
	// +optional
	// +kubebuilder:default=NoSchedule
	Effect corev1.TaintEffect `json:"effect,omitempty"`
}

// UntaintActionSpec removes a taint by key from recovered nodes.
type UntaintActionSpec struct {
	// key is the taint key to remove.
	// +optional
	// +kubebuilder:default="nodeguardian/rule-triggered"
	Key string `json:"key,omitempty"`
}

// LabelActionSpec upserts labels on triggered nodes.
type LabelActionSpec struct {
	// labels are applied as an idempotent upsert.
	// +required
	Labels map[string]string `json:"labels"`
}

// RemoveLabelActionSpec strips labels by key from recovered nodes.
type RemoveLabelActionSpec struct {
	// keys are the label keys to remove.
	// +required
	Keys []string `json:"keys"`
}

// AnnotationActionSpec upserts annotations on triggered nodes.
type AnnotationActionSpec struct {
	// annotations are applied as an idempotent upsert.
	// +required
	Annotations map[string]string `json:"annotations"`
}

// RemoveAnnotationActionSpec strips annotations by key from recovered nodes.
type RemoveAnnotationActionSpec struct {
	// keys are the annotation keys to remove.
	// +required
	Keys []string `json:"keys"`
}

// EvictActionSpec evicts a bounded batch of pods from a triggered node.
// Eviction is not idempotent: each firing evicts a fresh batch, bounded per
// invocation by maxPods.
type EvictActionSpec struct {
	// maxPods caps how many pods one firing may evict.
	// +optional
	// +kubebuilder:default=10
	MaxPods int `json:"maxPods,omitempty"`

	// excludeNamespaces are never touched by eviction.
	// +optional
	ExcludeNamespaces []string `json:"excludeNamespaces,omitempty"`

	// gracePeriodSeconds is passed to the eviction call.
	// +optional
	// +kubebuilder:default=30
	GracePeriodSeconds int64 `json:"gracePeriodSeconds,omitempty"`
}

// AlertActionSpec renders an alert template and fans it out to channels.
type AlertActionSpec struct {
	// template names the AlertTemplate to render. Missing or unknown names
	// fall back to the builtin default template.
	// +optional
	// +kubebuilder:default="default"
	Template string `json:"template,omitempty"`

	// channels to deliver to, merged (deduplicated) with the template's own
	// channel list.
	// +optional
	Channels []string `json:"channels,omitempty"`

	// enabled allows muting the alert without removing the action.
	// +optional
	// +kubebuilder:default=true
	Enabled *bool `json:"enabled,omitempty"`
}

// RuleAction is a tagged union over the closed action set. Exactly the field
// matching type is consulted; the others are ignored.
type RuleAction struct {
	// type selects the action kind.
	// +required
	Type ActionType `json:"type"`

	// +optional
	Taint *TaintActionSpec `json:"taint,omitempty"`
	// +optional
	Untaint *UntaintActionSpec `json:"untaint,omitempty"`
	// +optional
	Label *LabelActionSpec `json:"label,omitempty"`
	// +optional
	RemoveLabel *RemoveLabelActionSpec `json:"removeLabel,omitempty"`
	// +optional
	Annotation *AnnotationActionSpec `json:"annotation,omitempty"`
	// +optional
	RemoveAnnotation *RemoveAnnotationActionSpec `json:"removeAnnotation,omitempty"`
	// +optional
	Evict *EvictActionSpec `json:"evict,omitempty"`
	// +optional
	Alert *AlertActionSpec `json:"alert,omitempty"`
}

// MonitoringSpec holds the rule's timing knobs.
type MonitoringSpec struct {
	// checkInterval is how often the rule is evaluated (e.g. "30s").
	// +optional
	// +kubebuilder:default="30s"
	CheckInterval string `json:"checkInterval,omitempty"`

	// checkSchedule is an optional cron expression that replaces
	// checkInterval when set (e.g. "*/2 * * * *").
	// +optional
	CheckSchedule string `json:"checkSchedule,omitempty"`

	// cooldownPeriod is the minimum time between two trigger firings for the
	// same node.
	// +optional
	// +kubebuilder:default="5m"
	CooldownPeriod string `json:"cooldownPeriod,omitempty"`

	// recoveryCooldownPeriod is the minimum time between two recovery
	// firings for the same node.
	// +optional
	// +kubebuilder:default="5m"
	RecoveryCooldownPeriod string `json:"recoveryCooldownPeriod,omitempty"`
}

// RuleMetadata carries operator-facing rule metadata.
type RuleMetadata struct {
	// enabled gates the whole rule. A disabled rule is treated as removed:
	// its per-node state and cooldown records are dropped.
	// +optional
	// +kubebuilder:default=true
	Enabled *bool `json:"enabled,omitempty"`

	// priority orders rules; lower numbers sort first.
	// +optional
	Priority int32 `json:"priority,omitempty"`

	// description is a free-form rule summary, available to alert templates.
	// +optional
	Description string `json:"description,omitempty"`
}

// NodeGuardianRuleSpec defines the desired state of NodeGuardianRule.
// A rule is an immutable value per version: updates replace the whole spec,
// never patch a field.
type NodeGuardianRuleSpec struct {
	// conditions that trigger the rule.
	// +required
	// +kubebuilder:validation:MinItems=1
	Conditions []RuleCondition `json:"conditions"`

	// conditionLogic combines the trigger conditions.
	// +optional
	// +kubebuilder:default=AND
	ConditionLogic ConditionLogic `json:"conditionLogic,omitempty"`

	// nodeSelector picks the nodes this rule watches.
	// +optional
	NodeSelector NodeSelectorSpec `json:"nodeSelector,omitempty"`

	// actions run in declared order when the rule triggers.
	// +optional
	Actions []RuleAction `json:"actions,omitempty"`

	// recoveryConditions detect that a triggered node is healthy again.
	// Empty means the rule never auto-recovers.
	// +optional
	RecoveryConditions []RuleCondition `json:"recoveryConditions,omitempty"`

	// recoveryConditionLogic combines the recovery conditions.
	// +optional
	// +kubebuilder:default=AND
	RecoveryConditionLogic ConditionLogic `json:"recoveryConditionLogic,omitempty"`

	// recoveryActions run in declared order when a node recovers.
	// +optional
	RecoveryActions []RuleAction `json:"recoveryActions,omitempty"`

	// monitoring holds interval and cooldown configuration.
	// +optional
	Monitoring MonitoringSpec `json:"monitoring,omitempty"`

	// metadata holds enablement, priority, and description.
	// +optional
	Metadata RuleMetadata `json:"metadata,omitempty"`
}

// NodePhase is the lifecycle phase of one (rule, node) pair.
// +kubebuilder:validation:Enum=Idle;Triggered
type NodePhase string

const (
	NodePhaseIdle      NodePhase = "Idle"
	NodePhaseTriggered NodePhase = "Triggered"
)

// RulePhase aggregates the per-node phases of a rule.
// +kubebuilder:validation:Enum=Idle;Active
type RulePhase string

const (
	RulePhaseIdle   RulePhase = "Idle"
	RulePhaseActive RulePhase = "Active"
)

// NodeStateRecord is the durable per-node state of a rule. It is what
// survives a restart: the in-memory state map and cooldown ledger are
// rehydrated from these records.
type NodeStateRecord struct {
	// node is the node name.
	// +required
	Node string `json:"node"`

	// phase is Idle or Triggered.
	// +optional
	Phase NodePhase `json:"phase,omitempty"`

	// lastTriggeredAt is when the last trigger action batch completed. It
	// doubles as the trigger cooldown anchor.
	// +optional
	LastTriggeredAt *metav1.Time `json:"lastTriggeredAt,omitempty"`

	// lastRecoveredAt is when the last recovery action batch completed. It
	// doubles as the recovery cooldown anchor.
	// +optional
	LastRecoveredAt *metav1.Time `json:"lastRecoveredAt,omitempty"`
}

// NodeGuardianRuleStatus defines the observed state of NodeGuardianRule.
type NodeGuardianRuleStatus struct {
	// phase is Active while at least one node is Triggered.
	// +optional
	Phase RulePhase `json:"phase,omitempty"`

	// triggeredNodes lists nodes currently in phase Triggered.
	// +optional
	TriggeredNodes []string `json:"triggeredNodes,omitempty"`

	// lastTriggered is the most recent trigger time across all nodes.
	// +optional
	LastTriggered *metav1.Time `json:"lastTriggered,omitempty"`

	// lastRecovered is the most recent recovery time across all nodes.
	// +optional
	LastRecovered *metav1.Time `json:"lastRecovered,omitempty"`

	// lastError is the most recent evaluation or action error, empty when
	// the last cycle was clean.
	// +optional
	LastError string `json:"lastError,omitempty"`

	// nodeStates are the durable per-node records.
	// +listType=map
	// +listMapKey=node
	// +optional
	NodeStates []NodeStateRecord `json:"nodeStates,omitempty"`

	// observedGeneration is the spec generation this status reflects.
	// +optional
	ObservedGeneration int64 `json:"observedGeneration,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:scope=Cluster,shortName=ngr
// +kubebuilder:printcolumn:name="Phase",type="string",JSONPath=".status.phase"
// +kubebuilder:printcolumn:name="Priority",type="integer",JSONPath=".spec.metadata.priority"
// +kubebuilder:printcolumn:name="Interval",type="string",JSONPath=".spec.monitoring.checkInterval"
// +kubebuilder:printcolumn:name="Last Triggered",type="date",JSONPath=".status.lastTriggered"
// +kubebuilder:printcolumn:name="Age",type="date",JSONPath=".metadata.creationTimestamp"

// NodeGuardianRule is the Schema for the nodeguardianrules API.
// It binds threshold conditions on node metrics to mitigating actions,
// with symmetric recovery conditions that reverse them.
type NodeGuardianRule struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	// +required
	Spec   NodeGuardianRuleSpec   `json:"spec"`
	Status NodeGuardianRuleStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// NodeGuardianRuleList contains a list of NodeGuardianRule.
type NodeGuardianRuleList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []NodeGuardianRule `json:"items"`
}

// Enabled reports whether the rule is enabled (default true).
func (r *NodeGuardianRule) Enabled() bool {
	if r.Spec.Metadata.Enabled == nil {
		return true
	}
	return *r.Spec.Metadata.Enabled
}

func init() {
	SchemeBuilder.Register(&NodeGuardianRule{}, &NodeGuardianRuleList{})
}
