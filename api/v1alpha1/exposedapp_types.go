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

// Package v1alpha1 contains the ExposedApp API schema.
package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// GroupName is the API group ExposedApp is registered under.
const GroupName = "stable.no-library.com"

// GroupVersion is the group-version this package implements.
var GroupVersion = schema.GroupVersion{Group: GroupName, Version: "v1"}

// SchemeBuilder collects the types in this package for scheme registration.
var SchemeBuilder = runtime.NewSchemeBuilder(addKnownTypes)

// AddToScheme registers the types in this package against a scheme.
var AddToScheme = SchemeBuilder.AddToScheme

func addKnownTypes(scheme *runtime.Scheme) error {
	scheme.AddKnownTypes(GroupVersion,
		&ExposedApp{},
		&ExposedAppList{},
	)
	metav1.AddToGroupVersion(scheme, GroupVersion)
	return nil
}

// ExposedAppSpec defines the desired state of an ExposedApp.
// All fields represent intent — the operator reconciles the cluster toward
// this state.
type ExposedAppSpec struct {
	// Image is the container image to run, including tag.
	// Example: "nginx:1.25"
	Image string `json:"image"`

	// Replicas is the desired number of running pod replicas. Zero is valid.
	Replicas int32 `json:"replicas"`

	// Port is the Service-visible port.
	Port int32 `json:"port"`

	// ContainerPort is the pod-visible port the container listens on.
	ContainerPort int32 `json:"containerPort"`

	// Protocol is the transport protocol for the Service port, typically
	// "TCP" or "UDP".
	Protocol string `json:"protocol"`

	// NodePort is the optional explicit node port to request on the Service.
	// +optional
	NodePort *int32 `json:"nodePort,omitempty"`

	// ServiceType selects the Service's type: ClusterIP, NodePort, or
	// LoadBalancer. Defaults to the API server's own Service default when
	// unset.
	// +optional
	ServiceType string `json:"serviceType,omitempty"`
}

// ExposedAppStatus defines the observed state of an ExposedApp.
// Populated exclusively by the controller — never set these from Spec.
type ExposedAppStatus struct {
	// DeploymentName is the name of the Deployment this ExposedApp owns.
	// +optional
	DeploymentName string `json:"deploymentName,omitempty"`

	// ServiceName is the name of the Service this ExposedApp owns.
	// +optional
	ServiceName string `json:"serviceName,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status

// ExposedApp is the Schema for the exposedapps API. It represents a
// containerized workload that the operator exposes inside the cluster via a
// managed Deployment and Service pair.
type ExposedApp struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   ExposedAppSpec   `json:"spec,omitempty"`
	Status ExposedAppStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// ExposedAppList contains a list of ExposedApp.
type ExposedAppList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []ExposedApp `json:"items"`
}

// DeepCopyObject implements runtime.Object.
func (a *ExposedApp) DeepCopyObject() runtime.Object {
	return a.DeepCopy()
}

// DeepCopy returns a deep copy of this ExposedApp.
func (a *ExposedApp) DeepCopy() *ExposedApp {
	if a == nil {
		return nil
	}
	out := new(ExposedApp)
	out.TypeMeta = a.TypeMeta
	a.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	out.Spec = a.Spec
	if a.Spec.NodePort != nil {
		np := *a.Spec.NodePort
		out.Spec.NodePort = &np
	}
	out.Status = a.Status
	return out
}

// DeepCopyObject implements runtime.Object.
func (l *ExposedAppList) DeepCopyObject() runtime.Object {
	return l.DeepCopy()
}

// DeepCopy returns a deep copy of this ExposedAppList.
func (l *ExposedAppList) DeepCopy() *ExposedAppList {
	if l == nil {
		return nil
	}
	out := new(ExposedAppList)
	out.TypeMeta = l.TypeMeta
	l.ListMeta.DeepCopyInto(&out.ListMeta)
	if l.Items != nil {
		out.Items = make([]ExposedApp, len(l.Items))
		for i := range l.Items {
			l.Items[i].DeepCopyInto(&out.Items[i])
		}
	}
	return out
}

// DeepCopyInto copies this ExposedApp into out.
func (a *ExposedApp) DeepCopyInto(out *ExposedApp) {
	*out = *a
	out.TypeMeta = a.TypeMeta
	a.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	out.Spec = a.Spec
	if a.Spec.NodePort != nil {
		np := *a.Spec.NodePort
		out.Spec.NodePort = &np
	}
	out.Status = a.Status
}

// Kind is the literal TypeMeta.Kind used for ExposedApp objects and for
// matching owner references on children.
const Kind = "ExposedApp"
