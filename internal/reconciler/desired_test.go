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
	"testing"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"

	"github.com/54b3r/exposedapp-operator/api/v1alpha1"
)

func testApp() *v1alpha1.ExposedApp {
	return &v1alpha1.ExposedApp{
		ObjectMeta: metav1.ObjectMeta{Name: "web", Namespace: "demo", UID: "abc-123"},
		Spec: v1alpha1.ExposedAppSpec{
			Image:         "nginx:1.25",
			Replicas:      2,
			Port:          80,
			ContainerPort: 8080,
			Protocol:      "TCP",
		},
	}
}

func TestDesiredDeploymentNamingAndShape(t *testing.T) {
	app := testApp()
	dep := desiredDeployment(app)

	if dep.Name != "web-deployment" {
		t.Errorf("deployment name = %q, want web-deployment", dep.Name)
	}
	if *dep.Spec.Replicas != 2 {
		t.Errorf("replicas = %d, want 2", *dep.Spec.Replicas)
	}
	if len(dep.Spec.Template.Spec.Containers) != 1 {
		t.Fatalf("expected exactly one container, got %d", len(dep.Spec.Template.Spec.Containers))
	}
	c := dep.Spec.Template.Spec.Containers[0]
	if c.Name != "main" || c.Image != "nginx:1.25" {
		t.Errorf("container = %+v, want name=main image=nginx:1.25", c)
	}
	if c.Ports[0].ContainerPort != 8080 {
		t.Errorf("containerPort = %d, want 8080", c.Ports[0].ContainerPort)
	}
	owner := dep.OwnerReferences[0]
	if !*owner.Controller || !*owner.BlockOwnerDeletion || owner.Kind != "ExposedApp" {
		t.Errorf("owner reference = %+v, want controller+blockOwnerDeletion ExposedApp owner", owner)
	}
}

func TestDesiredDeploymentZeroReplicasAccepted(t *testing.T) {
	app := testApp()
	app.Spec.Replicas = 0
	dep := desiredDeployment(app)
	if *dep.Spec.Replicas != 0 {
		t.Errorf("replicas = %d, want 0", *dep.Spec.Replicas)
	}
}

func TestDesiredServiceOmitsNodePortAndTypeWhenUnset(t *testing.T) {
	app := testApp()
	svc := desiredService(app)

	if svc.Name != "web-service" {
		t.Errorf("service name = %q, want web-service", svc.Name)
	}
	if svc.Spec.Type != "" {
		t.Errorf("serviceType = %q, want empty", svc.Spec.Type)
	}
	port := svc.Spec.Ports[0]
	if port.NodePort != 0 {
		t.Errorf("nodePort = %d, want 0 (unset)", port.NodePort)
	}
	if port.Port != 80 || port.TargetPort != intstr.FromInt32(8080) || port.Protocol != corev1.ProtocolTCP {
		t.Errorf("port wiring = %+v, want port=80 targetPort=8080 protocol=TCP", port)
	}
}

func TestDesiredServiceIncludesNodePortAndTypeWhenSet(t *testing.T) {
	app := testApp()
	np := int32(30080)
	app.Spec.NodePort = &np
	app.Spec.ServiceType = "NodePort"

	svc := desiredService(app)
	if svc.Spec.Type != corev1.ServiceTypeNodePort {
		t.Errorf("serviceType = %q, want NodePort", svc.Spec.Type)
	}
	if svc.Spec.Ports[0].NodePort != 30080 {
		t.Errorf("nodePort = %d, want 30080", svc.Spec.Ports[0].NodePort)
	}
}

func TestDesiredServiceAndDeploymentShareLabelSelector(t *testing.T) {
	app := testApp()
	dep := desiredDeployment(app)
	svc := desiredService(app)

	if dep.Spec.Selector.MatchLabels["app.kubernetes.io/instance"] != "web-deployment" {
		t.Errorf("deployment selector label = %v", dep.Spec.Selector.MatchLabels)
	}
	if svc.Spec.Selector["app.kubernetes.io/instance"] != "web-deployment" {
		t.Errorf("service selector label = %v", svc.Spec.Selector)
	}
}
