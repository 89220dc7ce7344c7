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

package reconciler

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	eventsv1 "k8s.io/api/events/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/54b3r/exposedapp-operator/api/v1alpha1"
)

// deploymentReference and serviceReference build the "related" object
// reference an emitted event carries, pointing at the child the event
// describes.
func deploymentReference(dep *appsv1.Deployment) *corev1.ObjectReference {
	return &corev1.ObjectReference{
		Kind:            "Deployment",
		APIVersion:      "apps/v1",
		Name:            dep.Name,
		Namespace:       dep.Namespace,
		UID:             dep.UID,
		ResourceVersion: dep.ResourceVersion,
	}
}

func serviceReference(svc *corev1.Service) *corev1.ObjectReference {
	return &corev1.ObjectReference{
		Kind:            "Service",
		APIVersion:      "v1",
		Name:            svc.Name,
		Namespace:       svc.Namespace,
		UID:             svc.UID,
		ResourceVersion: svc.ResourceVersion,
	}
}

const eventNameSuffixLen = 10

// eventNameSuffix returns a 10-character lowercase alphanumeric suffix
// derived from a random UUID, avoiding event name collisions without
// hand-rolling a random string generator.
func eventNameSuffix() string {
	id := uuid.New().String()
	hex := ""
	for _, r := range id {
		if r != '-' {
			hex += string(r)
		}
	}
	if len(hex) > eventNameSuffixLen {
		hex = hex[:eventNameSuffixLen]
	}
	return hex
}

func (r *Reconciler) emitEvent(ctx context.Context, app *v1alpha1.ExposedApp, reason, action, note string, related *corev1.ObjectReference) error {
	name := fmt.Sprintf("%s-%s", app.Name, eventNameSuffix())
	ev := &eventsv1.Event{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: app.Namespace,
		},
		EventTime: metav1.NewMicroTime(timeNow()),
		Regarding: corev1.ObjectReference{
			Kind:       v1alpha1.Kind,
			APIVersion: v1alpha1.GroupVersion.String(),
			Name:       app.Name,
			Namespace:  app.Namespace,
			UID:        app.UID,
		},
		Reason:              reason,
		Action:              action,
		Note:                note,
		Type:                corev1.EventTypeNormal,
		ReportingController: reportingController,
		ReportingInstance:   r.PodName,
	}
	if related != nil {
		ev.Related = related
	}
	_, err := r.Client.PostEvent(ctx, ev)
	return err
}
