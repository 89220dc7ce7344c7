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

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ListAndWatch is the generic list-then-watch primitive the owned-kind
// watch loops use: listPath and watchPath name the same cluster-wide
// collection; into is
// populated by the list call and its resourceVersion is then used as the
// watch's resume point, so the watch never misses an event that landed
// between the list and the watch opening.
func (c *Client) ListAndWatch(ctx context.Context, listPath, watchPath string, into metav1.ListInterface) (<-chan RawEvent, error) {
	if err := c.get(ctx, listPath, into); err != nil {
		return nil, err
	}
	return c.watchStream(ctx, withWatch(watchPath, into.GetResourceVersion()))
}

// ListAndWatchDeployments is the owned Deployment loop's entry point: list
// the cluster-wide collection, then open a watch from the collection's
// resourceVersion, built on the generic ListAndWatch primitive.
func (c *Client) ListAndWatchDeployments(ctx context.Context) (*appsv1.DeploymentList, <-chan RawEvent, error) {
	var list appsv1.DeploymentList
	events, err := c.ListAndWatch(ctx, deploymentsClusterPath, deploymentsClusterPath, &list)
	if err != nil {
		return nil, nil, err
	}
	return &list, events, nil
}

// ListAndWatchServices is the owned Service loop's entry point, the Service
// analogue of ListAndWatchDeployments.
func (c *Client) ListAndWatchServices(ctx context.Context) (*corev1.ServiceList, <-chan RawEvent, error) {
	var list corev1.ServiceList
	events, err := c.ListAndWatch(ctx, servicesClusterPath, servicesClusterPath, &list)
	if err != nil {
		return nil, nil, err
	}
	return &list, events, nil
}

// SaveDeployment creates obj if it does not exist, falling back to a PUT
// against the named resource when the POST reports a Conflict (already
// exists). Callers get create-or-update semantics either way.
func (c *Client) SaveDeployment(ctx context.Context, obj *appsv1.Deployment) (*appsv1.Deployment, error) {
	var created appsv1.Deployment
	err := c.post(ctx, deploymentsNamespacedPath(obj.Namespace), obj, &created)
	if err == nil {
		return &created, nil
	}
	if !IsConflict(err) {
		return nil, err
	}
	var updated appsv1.Deployment
	if err := c.put(ctx, deploymentPath(obj.Namespace, obj.Name), obj, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// PutService creates-or-updates obj with a direct PUT: the API server
// treats PUT on a Service path as create-or-update correctly, so no
// POST/fallback dance is required (unlike Deployments).
func (c *Client) PutService(ctx context.Context, obj *corev1.Service) (*corev1.Service, error) {
	var updated corev1.Service
	if err := c.put(ctx, servicePath(obj.Namespace, obj.Name), obj, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
