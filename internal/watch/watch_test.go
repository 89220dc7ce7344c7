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

package watch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-logr/logr"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/54b3r/exposedapp-operator/internal/cache"
	"github.com/54b3r/exposedapp-operator/internal/k8sclient"
)

func TestExposedAppOwner(t *testing.T) {
	truthy := true
	refs := []metav1.OwnerReference{
		{Kind: "ConfigMap", Name: "irrelevant"},
		{Kind: "ExposedApp", Name: "web", Controller: &truthy},
	}
	name, ok := exposedAppOwner(refs)
	if !ok || name != "web" {
		t.Fatalf("exposedAppOwner() = (%q, %v), want (\"web\", true)", name, ok)
	}

	_, ok = exposedAppOwner([]metav1.OwnerReference{{Kind: "ConfigMap", Name: "x"}})
	if ok {
		t.Fatal("expected no ExposedApp owner to be found")
	}
}

func newMultiplexerAgainst(t *testing.T, handler http.Handler, store *cache.Store, enqueue EnqueueFunc) *Multiplexer {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &Multiplexer{
		Client:    k8sclient.NewForTesting(srv.URL, "tok", srv.Client()),
		Cache:     store,
		Namespace: "demo",
		Enqueue:   enqueue,
		Log:       logr.Discard(),
	}
}

// TestPrimaryLoopEnqueuesListThenNonRedundantEvents drives one
// list-then-watch pass of the primary loop: every listed ExposedApp is
// enqueued unconditionally, then a watched event is enqueued only when the
// Version Cache does not already hold its resourceVersion.
func TestPrimaryLoopEnqueuesListThenNonRedundantEvents(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/apis/stable.no-library.com/v1/namespaces/demo/exposedapps", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("watch") != "1" {
			_, _ = w.Write([]byte(`{"metadata":{"resourceVersion":"5"},"items":[
				{"metadata":{"name":"web","namespace":"demo","resourceVersion":"3"}},
				{"metadata":{"name":"api","namespace":"demo","resourceVersion":"4"}}]}`))
			return
		}
		if got := r.URL.Query().Get("resourceVersion"); got != "5" {
			t.Errorf("watch resumed from resourceVersion %q, want 5 (the list's)", got)
		}
		_, _ = w.Write([]byte(`{"type":"MODIFIED","object":{"metadata":{"name":"web","namespace":"demo","resourceVersion":"6","generation":2}}}
{"type":"MODIFIED","object":{"metadata":{"name":"api","namespace":"demo","resourceVersion":"7","generation":1}}}
`))
	})

	store := cache.New()
	// api's latest write is already recorded, so its watch echo is redundant.
	gen := int64(1)
	store.Record(cache.Key{Namespace: "demo", Name: "api"}, "7", &gen)

	var enqueued []cache.Key
	m := newMultiplexerAgainst(t, mux, store, func(k cache.Key) { enqueued = append(enqueued, k) })

	if err := m.runExposedAppsOnce(context.Background()); err != nil {
		t.Fatalf("runExposedAppsOnce() error: %v", err)
	}

	want := []cache.Key{
		{Namespace: "demo", Name: "web"},
		{Namespace: "demo", Name: "api"},
		{Namespace: "demo", Name: "web"},
	}
	if len(enqueued) != len(want) {
		t.Fatalf("enqueued %v, want %v", enqueued, want)
	}
	for i := range want {
		if enqueued[i] != want[i] {
			t.Errorf("enqueued[%d] = %v, want %v", i, enqueued[i], want[i])
		}
	}
}

// TestOwnedLoopEnqueuesParentAndDropsDeletedOrForeign covers the owned
// Deployment loop's three cases: an event whose ExposedApp parent exists is
// translated into a reconcile request for that parent; one whose parent is
// gone (404) is silently dropped; one with no ExposedApp owner at all is
// ignored.
func TestOwnedLoopEnqueuesParentAndDropsDeletedOrForeign(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/apis/apps/v1/deployments", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("watch") != "1" {
			_, _ = w.Write([]byte(`{"metadata":{"resourceVersion":"9"},"items":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"type":"MODIFIED","object":{"metadata":{"name":"web-deployment","namespace":"demo","resourceVersion":"10","generation":1,"ownerReferences":[{"kind":"ExposedApp","name":"web"}]}}}
{"type":"MODIFIED","object":{"metadata":{"name":"gone-deployment","namespace":"demo","resourceVersion":"11","generation":1,"ownerReferences":[{"kind":"ExposedApp","name":"gone"}]}}}
{"type":"MODIFIED","object":{"metadata":{"name":"other","namespace":"demo","resourceVersion":"12","generation":1,"ownerReferences":[{"kind":"StatefulSet","name":"db"}]}}}
`))
	})
	mux.HandleFunc("/apis/stable.no-library.com/v1/namespaces/demo/exposedapps/web", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"metadata":{"name":"web","namespace":"demo","resourceVersion":"3"}}`))
	})
	mux.HandleFunc("/apis/stable.no-library.com/v1/namespaces/demo/exposedapps/gone", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	var enqueued []cache.Key
	m := newMultiplexerAgainst(t, mux, cache.New(), func(k cache.Key) { enqueued = append(enqueued, k) })

	if err := m.runOwnedOnce(context.Background(), ownedDeployments{client: m.Client}); err != nil {
		t.Fatalf("runOwnedOnce() error: %v", err)
	}

	if len(enqueued) != 1 || (enqueued[0] != cache.Key{Namespace: "demo", Name: "web"}) {
		t.Fatalf("enqueued = %v, want exactly demo/web", enqueued)
	}
}

// TestOwnedLoopSkipsRedundantSelfEcho checks that an owned-resource event
// carrying the resourceVersion the reconciler just recorded produces no
// reconcile request and no parent fetch.
func TestOwnedLoopSkipsRedundantSelfEcho(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/apis/apps/v1/deployments", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("watch") != "1" {
			_, _ = w.Write([]byte(`{"metadata":{"resourceVersion":"9"},"items":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"type":"MODIFIED","object":{"metadata":{"name":"web-deployment","namespace":"demo","resourceVersion":"100","generation":3,"ownerReferences":[{"kind":"ExposedApp","name":"web"}]}}}
`))
	})
	mux.HandleFunc("/apis/stable.no-library.com/v1/namespaces/demo/exposedapps/web", func(w http.ResponseWriter, r *http.Request) {
		t.Error("parent was fetched for a redundant event")
	})

	store := cache.New()
	gen := int64(3)
	store.Record(cache.Key{Namespace: "demo", Name: "web-deployment"}, "100", &gen)

	var enqueued []cache.Key
	m := newMultiplexerAgainst(t, mux, store, func(k cache.Key) { enqueued = append(enqueued, k) })

	if err := m.runOwnedOnce(context.Background(), ownedDeployments{client: m.Client}); err != nil {
		t.Fatalf("runOwnedOnce() error: %v", err)
	}
	if len(enqueued) != 0 {
		t.Fatalf("enqueued = %v, want none for a self-echo", enqueued)
	}
}
