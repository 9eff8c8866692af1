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

package controller

import (
	"context"
	"text/template"

	"k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	logf "sigs.k8s.io/controller-runtime/pkg/log"

	guardianv1alpha1 "github.com/marcus-qen/nodeguardian/api/v1alpha1"
)

// AlertTemplateReconciler validates AlertTemplate objects as they change.
// Templates are read live at render time, so there is nothing to cache;
// this controller exists to surface parse errors at write time instead
// of at the first alert.
type AlertTemplateReconciler struct {
	client.Client
	Scheme *runtime.Scheme
}

// +kubebuilder:rbac:groups=nodeguardian.k8s.io,resources=alerttemplates,verbs=get;list;watch

// Reconcile checks that an AlertTemplate's subject and body parse.
func (r *AlertTemplateReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	log := logf.FromContext(ctx)

	tpl := &guardianv1alpha1.AlertTemplate{}
	if err := r.Get(ctx, req.NamespacedName, tpl); err != nil {
		if errors.IsNotFound(err) {
			return ctrl.Result{}, nil
		}
		return ctrl.Result{}, err
	}

	if _, err := template.New("subject").Parse(tpl.Spec.Subject); err != nil {
		log.Error(err, "AlertTemplate subject does not parse", "template", tpl.Name)
		return ctrl.Result{}, nil
	}
	if _, err := template.New("body").Parse(tpl.Spec.Body); err != nil {
		log.Error(err, "AlertTemplate body does not parse", "template", tpl.Name)
		return ctrl.Result{}, nil
	}

	log.Info("AlertTemplate validated",
		"template", tpl.Name,
		"severity", tpl.Spec.Severity,
		"channels", tpl.Spec.Channels,
	)
	return ctrl.Result{}, nil
}

// SetupWithManager sets up the controller with the Manager.
func (r *AlertTemplateReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&guardianv1alpha1.AlertTemplate{}).
		Named("alerttemplate").
		Complete(r)
}
