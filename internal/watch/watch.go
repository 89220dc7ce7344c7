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

// Package watch implements the operator's Watch Multiplexer: one loop per
// watched kind, each performing an infinite list-then-watch, deduplicating
// via the Version Cache, and enqueuing reconcile requests keyed by the
// parent ExposedApp's (namespace, name).
package watch

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-logr/logr"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/54b3r/exposedapp-operator/api/v1alpha1"
	"github.com/54b3r/exposedapp-operator/internal/cache"
	"github.com/54b3r/exposedapp-operator/internal/k8sclient"
)

const restartDelay = 2 * time.Second

// EnqueueFunc submits a reconcile request for key. It must not block
// indefinitely longer than the bounded channel's capacity allows;
// backpressure here is intentional.
type EnqueueFunc func(key cache.Key)

// Multiplexer runs the three watch loops described in the operator's
// design against a single namespace (the primary loop) and the
// cluster-wide owned-kind endpoints.
type Multiplexer struct {
	Client    *k8sclient.Client
	Cache     *cache.Store
	Namespace string
	Enqueue   EnqueueFunc
	Log       logr.Logger
}

// RunExposedApps is the primary loop: every listed ExposedApp is enqueued
// unconditionally; every watched Added or Modified event is enqueued unless
// the Version Cache says it is redundant. Deleted events are skipped.
func (m *Multiplexer) RunExposedApps(ctx context.Context) {
	for {
		if err := m.runExposedAppsOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			m.Log.Error(err, "exposedapps watch loop failed, restarting")
		}
		if sleepOrDone(ctx, restartDelay) {
			return
		}
	}
}

func (m *Multiplexer) runExposedAppsOnce(ctx context.Context) error {
	list, err := m.Client.ListExposedApps(ctx, m.Namespace)
	if err != nil {
		return err
	}
	for i := range list.Items {
		app := &list.Items[i]
		m.Enqueue(cache.Key{Namespace: app.Namespace, Name: app.Name})
	}

	events, err := m.Client.WatchExposedApps(ctx, m.Namespace, list.ResourceVersion)
	if err != nil {
		return err
	}
	for ev := range events {
		if ev.Type == k8sclient.Deleted {
			continue
		}
		var app v1alpha1.ExposedApp
		if err := json.Unmarshal(ev.Object, &app); err != nil {
			m.Log.Error(err, "decoding exposedapp watch event")
			continue
		}
		key := cache.Key{Namespace: app.Namespace, Name: app.Name}
		gen := app.Generation
		if m.Cache.IsRedundant(key, app.ResourceVersion, &gen) {
			continue
		}
		m.Enqueue(key)
	}
	return nil
}

// RunOwnedDeployments watches Deployments cluster-wide and enqueues the
// owning ExposedApp for any non-redundant change.
func (m *Multiplexer) RunOwnedDeployments(ctx context.Context) {
	for {
		if err := m.runOwnedOnce(ctx, ownedDeployments{client: m.Client}); err != nil {
			if ctx.Err() != nil {
				return
			}
			m.Log.Error(err, "deployments watch loop failed, restarting")
		}
		if sleepOrDone(ctx, restartDelay) {
			return
		}
	}
}

// RunOwnedServices watches Services cluster-wide and enqueues the owning
// ExposedApp for any non-redundant change.
func (m *Multiplexer) RunOwnedServices(ctx context.Context) {
	for {
		if err := m.runOwnedOnce(ctx, ownedServices{client: m.Client}); err != nil {
			if ctx.Err() != nil {
				return
			}
			m.Log.Error(err, "services watch loop failed, restarting")
		}
		if sleepOrDone(ctx, restartDelay) {
			return
		}
	}
}

// ownedKind abstracts the two owned-resource loops (Deployment, Service)
// over the bits that differ: how to list-and-watch, and how to read owner
// metadata and a dedup generation from a decoded event.
type ownedKind interface {
	listAndWatch(ctx context.Context) (<-chan k8sclient.RawEvent, error)
	decode(raw []byte) (meta metav1.Object, generation *int64, err error)
}

func (m *Multiplexer) runOwnedOnce(ctx context.Context, kind ownedKind) error {
	events, err := kind.listAndWatch(ctx)
	if err != nil {
		return err
	}
	for ev := range events {
		obj, generation, err := kind.decode(ev.Object)
		if err != nil {
			m.Log.Error(err, "decoding owned watch event")
			continue
		}
		key := cache.Key{Namespace: obj.GetNamespace(), Name: obj.GetName()}
		if m.Cache.IsRedundant(key, obj.GetResourceVersion(), generation) {
			continue
		}

		ownerName, ok := exposedAppOwner(obj.GetOwnerReferences())
		if !ok {
			continue
		}
		parentKey := cache.Key{Namespace: obj.GetNamespace(), Name: ownerName}
		if _, err := m.Client.GetExposedApp(ctx, parentKey.Namespace, parentKey.Name); err != nil {
			if k8sclient.IsNotFound(err) {
				// Parent was deleted; this event is the child's cascading
				// death via owner-reference garbage collection.
				continue
			}
			m.Log.Error(err, "fetching owner for owned-resource event", "key", parentKey)
			continue
		}
		m.Enqueue(parentKey)
	}
	return nil
}

func exposedAppOwner(refs []metav1.OwnerReference) (name string, ok bool) {
	for _, ref := range refs {
		if ref.Kind == v1alpha1.Kind {
			return ref.Name, true
		}
	}
	return "", false
}

type ownedDeployments struct{ client *k8sclient.Client }

func (o ownedDeployments) listAndWatch(ctx context.Context) (<-chan k8sclient.RawEvent, error) {
	_, events, err := o.client.ListAndWatchDeployments(ctx)
	return events, err
}

func (o ownedDeployments) decode(raw []byte) (metav1.Object, *int64, error) {
	var dep appsv1.Deployment
	if err := json.Unmarshal(raw, &dep); err != nil {
		return nil, nil, err
	}
	gen := dep.Generation
	return &dep.ObjectMeta, &gen, nil
}

type ownedServices struct{ client *k8sclient.Client }

func (o ownedServices) listAndWatch(ctx context.Context) (<-chan k8sclient.RawEvent, error) {
	_, events, err := o.client.ListAndWatchServices(ctx)
	return events, err
}

func (o ownedServices) decode(raw []byte) (metav1.Object, *int64, error) {
	var svc corev1.Service
	if err := json.Unmarshal(raw, &svc); err != nil {
		return nil, nil, err
	}
	// Service generation is deliberately not tracked: the API server does
	// not increment it meaningfully for Services, per the operator's design.
	return &svc.ObjectMeta, nil, nil
}

func sleepOrDone(ctx context.Context, d time.Duration) (done bool) {
	select {
	case <-ctx.Done():
		return true
	case <-time.After(d):
		return false
	}
}
