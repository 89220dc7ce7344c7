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
	"context"

	"github.com/54b3r/exposedapp-operator/api/v1alpha1"
)

// ListExposedApps returns every ExposedApp in ns plus the collection's
// resourceVersion, the baseline a subsequent watch resumes from.
func (c *Client) ListExposedApps(ctx context.Context, ns string) (*v1alpha1.ExposedAppList, error) {
	var list v1alpha1.ExposedAppList
	if err := c.get(ctx, exposedAppsPath(ns), &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetExposedApp fetches a single ExposedApp. A 404 is returned as an
// *APIError with Kind == KindNotFound (see IsNotFound).
func (c *Client) GetExposedApp(ctx context.Context, ns, name string) (*v1alpha1.ExposedApp, error) {
	var app v1alpha1.ExposedApp
	if err := c.get(ctx, exposedAppPath(ns, name), &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// WatchExposedApps streams Added/Modified/Deleted events for ExposedApps in
// ns starting from resourceVersion. The returned channel closes on
// disconnect; the caller is expected to re-list and re-watch.
func (c *Client) WatchExposedApps(ctx context.Context, ns, resourceVersion string) (<-chan RawEvent, error) {
	return c.watchStream(ctx, withWatch(exposedAppsPath(ns), resourceVersion))
}

// PatchStatus writes app.Status to the ExposedApp's /status subresource and
// returns the updated object (including its new resourceVersion).
func (c *Client) PatchStatus(ctx context.Context, app *v1alpha1.ExposedApp) (*v1alpha1.ExposedApp, error) {
	var updated v1alpha1.ExposedApp
	if err := c.put(ctx, exposedAppStatusPath(app.Namespace, app.Name), app, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
