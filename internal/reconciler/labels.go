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

// deploymentName and serviceName follow the naming rule from the
// operator's design: "{name}-deployment" and "{name}-service".
func deploymentName(appName string) string { return appName + "-deployment" }
func serviceName(appName string) string    { return appName + "-service" }

// labelsFor returns the label set applied to the Deployment's selector,
// its pod template, and the Service's selector, keyed off the deployment
// name so each ExposedApp's pods are uniquely addressable.
func labelsFor(depName string) map[string]string {
	return map[string]string{
		"app.kubernetes.io/instance": depName,
	}
}
