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

// Package reconciler implements the operator's convergent, idempotent
// materializer: given a parent ExposedApp key, it builds and writes the
// desired Deployment and Service, patches status, emits events, and
// records the Version Cache entries for every successful write.
package reconciler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/54b3r/exposedapp-operator/internal/cache"
	"github.com/54b3r/exposedapp-operator/internal/k8sclient"
)

const reportingController = "no-library"

// timeNow is indirected so tests can control event timestamps.
var timeNow = time.Now

// Reconciler holds the dependencies a single Reconcile call needs. A new
// Client is not cloned per reconcile; the caller (cmd/operator) owns a
// single cloned Client for the reconcile queue's consumer goroutine, per
// the concurrency design's "one Client per task" rule.
type Reconciler struct {
	Client  *k8sclient.Client
	Cache   *cache.Store
	PodName string
	Log     logr.Logger
}

// Reconcile implements the ten-step algorithm from the operator's design.
// It is idempotent: repeated calls with an unchanged parent spec produce
// the same cluster state, modulo additional Event records.
func (r *Reconciler) Reconcile(ctx context.Context, key cache.Key) error {
	app, err := r.Client.GetExposedApp(ctx, key.Namespace, key.Name)
	if err != nil {
		if k8sclient.IsNotFound(err) {
			// The parent is gone; owner-reference garbage collection will
			// clean up its children. Nothing left to do.
			r.Cache.Evict(key)
			return nil
		}
		return fmt.Errorf("getting exposedapp %s: %w", key, err)
	}

	desiredDep := desiredDeployment(app)
	savedDep, err := r.Client.SaveDeployment(ctx, desiredDep)
	if err != nil {
		return fmt.Errorf("saving deployment for %s: %w", key, err)
	}
	r.Cache.Record(cache.Key{Namespace: savedDep.Namespace, Name: savedDep.Name}, savedDep.ResourceVersion, ptrInt64(savedDep.Generation))

	note := fmt.Sprintf("requested %d replica(s) of %s", app.Spec.Replicas, app.Spec.Image)
	if err := r.emitEvent(ctx, app, "ProvisioningRequested", "DeploymentProvisioned", note, deploymentReference(savedDep)); err != nil {
		r.Log.Error(err, "emitting deployment event", "key", key)
	}

	desiredSvc := desiredService(app)
	savedSvc, err := r.Client.PutService(ctx, desiredSvc)
	if err != nil {
		return fmt.Errorf("saving service for %s: %w", key, err)
	}
	r.Cache.Record(cache.Key{Namespace: savedSvc.Namespace, Name: savedSvc.Name}, savedSvc.ResourceVersion, nil)

	if err := r.emitEvent(ctx, app, "ProvisioningRequested", "ServiceProvisioned", fmt.Sprintf("service %s provisioned", savedSvc.Name), serviceReference(savedSvc)); err != nil {
		r.Log.Error(err, "emitting service event", "key", key)
	}

	app.Status.DeploymentName = savedDep.Name
	app.Status.ServiceName = savedSvc.Name
	updated, err := r.Client.PatchStatus(ctx, app)
	if err != nil {
		return fmt.Errorf("patching status for %s: %w", key, err)
	}
	r.Cache.Record(key, updated.ResourceVersion, ptrInt64(updated.Generation))

	return nil
}

func ptrInt64(v int64) *int64 { return &v }
