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

// Package cache implements the operator's process-local Version Cache: a
// mapping from a reconciled object's (namespace, name) to the last observed
// resourceVersion and generation, used to suppress redundant reconcile work
// triggered by the operator's own writes.
package cache

import (
	"fmt"
	"sync"
)

// Key identifies a namespaced object.
type Key struct {
	Namespace string
	Name      string
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s", k.Namespace, k.Name)
}

// Entry is the last resourceVersion (and, when meaningful, generation)
// observed for a key.
type Entry struct {
	ResourceVersion string
	// Generation is nil for kinds (e.g. Service) where the API server does
	// not increment generation meaningfully; dedup for those kinds relies
	// on ResourceVersion alone, per the operator's design.
	Generation *int64
}

// Store is the mutex-guarded, process-wide Version Cache. It is not
// persisted: a restart rebuilds it naturally as the initial list of every
// watched kind produces reconcile requests for every parent.
type Store struct {
	mu      sync.Mutex
	entries map[Key]Entry
}

// New returns an empty Store.
func New() *Store {
	return &Store{entries: make(map[Key]Entry)}
}

// IsRedundant reports whether an incoming watch event for key, carrying
// resourceVersion and optionally generation, is redundant with the last
// recorded write for that key. An event is redundant if either the cached
// generation equals the event's generation (a status-only self-echo) or the
// cached resourceVersion equals the event's resourceVersion.
func (s *Store) IsRedundant(key Key, resourceVersion string, generation *int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		return false
	}
	if entry.Generation != nil && generation != nil && *entry.Generation == *generation {
		return true
	}
	return entry.ResourceVersion == resourceVersion
}

// Record stores the resourceVersion (and, when provided, generation)
// observed for key. Callers must only call Record after a successful API
// write for that key (or after concluding a watched event required no
// further action), keeping the cache write atomic with respect to the
// write it describes.
func (s *Store) Record(key Key, resourceVersion string, generation *int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = Entry{ResourceVersion: resourceVersion, Generation: generation}
}

// Evict drops any cached entry for key. Eviction on parent deletion is
// optional per the operator's design; this is provided for callers that
// choose to call it.
func (s *Store) Evict(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}
