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
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"

	"github.com/54b3r/exposedapp-operator/api/v1alpha1"
)

// ownerReference builds the single owner reference every child carries:
// controller=true, blockOwnerDeletion=true, delegating cleanup to the API
// server's owner-reference garbage collection rather than an explicit
// finalizer.
func ownerReference(app *v1alpha1.ExposedApp) metav1.OwnerReference {
	isController := true
	blockDeletion := true
	return metav1.OwnerReference{
		APIVersion:         v1alpha1.GroupVersion.String(),
		Kind:               v1alpha1.Kind,
		Name:               app.Name,
		UID:                app.UID,
		Controller:         &isController,
		BlockOwnerDeletion: &blockDeletion,
	}
}

// desiredDeployment builds the Deployment the ExposedApp's
// image/replicas/containerPort dictate: one container named "main".
func desiredDeployment(app *v1alpha1.ExposedApp) *appsv1.Deployment {
	name := deploymentName(app.Name)
	labels := labelsFor(name)
	replicas := app.Spec.Replicas

	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{
			Name:            name,
			Namespace:       app.Namespace,
			OwnerReferences: []metav1.OwnerReference{ownerReference(app)},
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: &replicas,
			Selector: &metav1.LabelSelector{MatchLabels: labels},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: labels},
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{
						{
							Name:  "main",
							Image: app.Spec.Image,
							Ports: []corev1.ContainerPort{
								{ContainerPort: app.Spec.ContainerPort},
							},
						},
					},
				},
			},
		},
	}
}

// desiredService builds the Service the ExposedApp's port/containerPort/
// protocol/nodePort/serviceType dictate. nodePort and serviceType are
// omitted on the Service when unset on the ExposedApp.
func desiredService(app *v1alpha1.ExposedApp) *corev1.Service {
	name := serviceName(app.Name)
	labels := labelsFor(deploymentName(app.Name))

	port := corev1.ServicePort{
		Protocol:   corev1.Protocol(app.Spec.Protocol),
		Port:       app.Spec.Port,
		TargetPort: intstr.FromInt32(app.Spec.ContainerPort),
	}
	if app.Spec.NodePort != nil {
		port.NodePort = *app.Spec.NodePort
	}

	svc := &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{
			Name:            name,
			Namespace:       app.Namespace,
			OwnerReferences: []metav1.OwnerReference{ownerReference(app)},
		},
		Spec: corev1.ServiceSpec{
			Selector: labels,
			Ports:    []corev1.ServicePort{port},
		},
	}
	if app.Spec.ServiceType != "" {
		svc.Spec.Type = corev1.ServiceType(app.Spec.ServiceType)
	}
	return svc
}
