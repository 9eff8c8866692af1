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
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// AlertSeverity classifies an alert.
// +kubebuilder:validation:Enum=info;warning;critical
type AlertSeverity string

const (
	AlertSeverityInfo     AlertSeverity = "info"
	AlertSeverityWarning  AlertSeverity = "warning"
	AlertSeverityCritical AlertSeverity = "critical"
)

// TemplateDefault is the builtin template used when an alert action names
// no template, or names one that does not exist.
const TemplateDefault = "default"

// AlertTemplateSpec defines the desired state of AlertTemplate.
// Subject and body are Go text/template strings evaluated against the alert
// context (rule name, description, triggered nodes with their metrics).
type AlertTemplateSpec struct {
	// subject is the rendered alert title.
	// +required
	Subject string `json:"subject"`

	// body is the rendered alert description.
	// +required
	Body string `json:"body"`

	// severity is attached to the rendered message.
	// +optional
	// +kubebuilder:default=warning
	Severity AlertSeverity `json:"severity,omitempty"`

	// channels this template declares for delivery. The dispatcher merges
	// them with the triggering action's channel list.
	// +optional
	Channels []string `json:"channels,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:resource:scope=Cluster
// +kubebuilder:printcolumn:name="Severity",type="string",JSONPath=".spec.severity"
// +kubebuilder:printcolumn:name="Age",type="date",JSONPath=".metadata.creationTimestamp"

// AlertTemplate is the Schema for the alerttemplates API.
type AlertTemplate struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	// +required
	Spec AlertTemplateSpec `json:"spec"`
}

// +kubebuilder:object:root=true

// AlertTemplateList contains a list of AlertTemplate.
type AlertTemplateList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []AlertTemplate `json:"items"`
}

func init() {
	SchemeBuilder.Register(&AlertTemplate{}, &AlertTemplateList{})
}
