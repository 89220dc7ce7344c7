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

package k8sclient

import (
	"fmt"

	"github.com/54b3r/exposedapp-operator/api/v1alpha1"
)

// GroupVersion is re-exported here for path construction convenience.
var GroupVersion = v1alpha1.GroupVersion

// Path builders for every API endpoint the operator touches. Kept as plain
// functions rather than a templating library: each is a one-line
// fmt.Sprintf and there is no shared structure worth abstracting.

func exposedAppsPath(ns string) string {
	return fmt.Sprintf("/apis/%s/namespaces/%s/exposedapps", GroupVersion, ns)
}

func exposedAppPath(ns, name string) string {
	return fmt.Sprintf("/apis/%s/namespaces/%s/exposedapps/%s", GroupVersion, ns, name)
}

func exposedAppStatusPath(ns, name string) string {
	return fmt.Sprintf("/apis/%s/namespaces/%s/exposedapps/%s/status", GroupVersion, ns, name)
}

func deploymentsNamespacedPath(ns string) string {
	return fmt.Sprintf("/apis/apps/v1/namespaces/%s/deployments", ns)
}

func deploymentPath(ns, name string) string {
	return fmt.Sprintf("/apis/apps/v1/namespaces/%s/deployments/%s", ns, name)
}

const deploymentsClusterPath = "/apis/apps/v1/deployments"

func servicePath(ns, name string) string {
	return fmt.Sprintf("/api/v1/namespaces/%s/services/%s", ns, name)
}

const servicesClusterPath = "/api/v1/services"

func leasePath(ns, name string) string {
	return fmt.Sprintf("/apis/coordination.k8s.io/v1/namespaces/%s/leases/%s", ns, name)
}

func eventsPath(ns string) string {
	return fmt.Sprintf("/apis/events.k8s.io/v1/namespaces/%s/events", ns)
}

func withWatch(path, resourceVersion string) string {
	if resourceVersion == "" {
		return fmt.Sprintf("%s?watch=1", path)
	}
	return fmt.Sprintf("%s?watch=1&resourceVersion=%s", path, resourceVersion)
}
