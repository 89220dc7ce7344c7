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
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/go-logr/logr"

	"github.com/54b3r/exposedapp-operator/internal/cache"
	"github.com/54b3r/exposedapp-operator/internal/k8sclient"
)

const appsPath = "/apis/stable.no-library.com/v1/namespaces/demo/exposedapps/web"

// fakeServer plays the role of the API server for the reconciler's
// cold-start path: one Deployment write, one Deployment event, one Service
// write, one Service event, one status patch.
func fakeServer(t *testing.T) (*httptest.Server, *int32) {
	t.Helper()
	var writes int32
	mux := http.NewServeMux()

	mux.HandleFunc(appsPath, func(w http.ResponseWriter, r *http.Request) {
		app := testApp()
		fmt.Fprintf(w, `{"metadata":{"name":%q,"namespace":%q},"spec":{"image":%q,"replicas":%d,"port":%d,"containerPort":%d,"protocol":%q}}`,
			app.Name, app.Namespace, app.Spec.Image, app.Spec.Replicas, app.Spec.Port, app.Spec.ContainerPort, app.Spec.Protocol)
	})
	mux.HandleFunc("/apis/apps/v1/namespaces/demo/deployments", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&writes, 1)
		fmt.Fprint(w, `{"metadata":{"name":"web-deployment","namespace":"demo","resourceVersion":"10","generation":1}}`)
	})
	mux.HandleFunc("/api/v1/namespaces/demo/services/web-service", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&writes, 1)
		fmt.Fprint(w, `{"metadata":{"name":"web-service","namespace":"demo","resourceVersion":"11"}}`)
	})
	mux.HandleFunc("/apis/events.k8s.io/v1/namespaces/demo/events", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&writes, 1)
		fmt.Fprint(w, `{}`)
	})
	mux.HandleFunc("/apis/stable.no-library.com/v1/namespaces/demo/exposedapps/web/status", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&writes, 1)
		fmt.Fprint(w, `{"metadata":{"name":"web","namespace":"demo","resourceVersion":"12","generation":1},"status":{"deploymentName":"web-deployment","serviceName":"web-service"}}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &writes
}

func TestReconcileColdStartWritesChildrenEventsAndStatus(t *testing.T) {
	srv, writes := fakeServer(t)

	client := k8sclient.NewForTesting(srv.URL, "tok", srv.Client())
	r := &Reconciler{
		Client:  client,
		Cache:   cache.New(),
		PodName: "operator-0",
		Log:     logr.Discard(),
	}

	if err := r.Reconcile(context.Background(), cache.Key{Namespace: "demo", Name: "web"}); err != nil {
		t.Fatalf("Reconcile() error: %v", err)
	}

	// One Deployment write, one Deployment event, one Service write, one
	// Service event, one status patch: five writes total.
	if got := atomic.LoadInt32(writes); got != 5 {
		t.Errorf("writes = %d, want 5", got)
	}
}

func TestReconcileNotFoundParentIsBenign(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(appsPath, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := k8sclient.NewForTesting(srv.URL, "tok", srv.Client())
	c := cache.New()
	key := cache.Key{Namespace: "demo", Name: "web"}
	c.Record(key, "1", nil)

	r := &Reconciler{Client: client, Cache: c, PodName: "operator-0", Log: logr.Discard()}
	if err := r.Reconcile(context.Background(), key); err != nil {
		t.Fatalf("Reconcile() error: %v, want nil for a deleted parent", err)
	}
	if c.IsRedundant(key, "1", nil) {
		t.Error("expected the cache entry to be evicted after a NotFound parent")
	}
}
