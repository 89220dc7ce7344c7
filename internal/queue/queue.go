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

// Package queue implements the operator's Reconcile Queue: a delay queue of
// (key, delay) entries consuming reconcile requests and retrying failed
// keys with exponential backoff, per the operator's design.
package queue

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/54b3r/exposedapp-operator/internal/cache"
)

const (
	initialBackoff = 2 * time.Second
	maxBackoff     = 128 * time.Second
	drainBatch     = 10
	tick           = 100 * time.Millisecond
)

// NextBackoff implements the operator's backoff law:
// delay' = max(2s, min(128s, 2*delay)).
func NextBackoff(delay time.Duration) time.Duration {
	next := delay * 2
	if next > maxBackoff {
		next = maxBackoff
	}
	if next < initialBackoff {
		next = initialBackoff
	}
	return next
}

// ReconcileFunc processes a single key, returning an error to trigger a
// backoff retry.
type ReconcileFunc func(ctx context.Context, key cache.Key) error

type item struct {
	key     cache.Key
	readyAt time.Time
	delay   time.Duration
	index   int
}

// delayHeap is a container/heap.Interface ordering items by readiness time,
// the standard stdlib shape for a delay queue (the same role client-go's
// workqueue.DelayingInterface plays, reproduced here since client-go is not
// imported by this repo).
type delayHeap []*item

func (h delayHeap) Len() int           { return len(h) }
func (h delayHeap) Less(i, j int) bool { return h[i].readyAt.Before(h[j].readyAt) }
func (h delayHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }

func (h *delayHeap) Push(x interface{}) {
	it := x.(*item)
	it.index = len(*h)
	*h = append(*h, it)
}
func (h *delayHeap) Pop() interface{} {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*h = old[:n-1]
	return it
}

// Queue is the Reconcile Queue. Requests arrive on a bounded (capacity 64,
// per the concurrency design) input channel fed by the watch loops; Run
// drains them, waits out each key's backoff, and invokes the reconciler.
type Queue struct {
	Requests chan cache.Key

	log     logr.Logger
	mu      sync.Mutex
	pending *delayHeap
}

// New returns a ready-to-run Queue. capacity bounds the input channel;
// spec's concurrency design calls for 64.
func New(capacity int, log logr.Logger) *Queue {
	h := &delayHeap{}
	heap.Init(h)
	return &Queue{
		Requests: make(chan cache.Key, capacity),
		log:      log,
		pending:  h,
	}
}

// Enqueue submits key for reconciliation by sending it on the bounded
// Requests channel; Run moves it onto the delay heap with zero delay on its
// next drain. The send blocks when Requests is full. That backpressure is
// intended: a stalled reconciler slows watch consumption rather than
// letting queued work grow without bound.
func (q *Queue) Enqueue(key cache.Key) {
	q.Requests <- key
}

// push inserts key onto the delay heap with zero delay, ready for the next
// processExpired pass.
func (q *Queue) push(key cache.Key) {
	q.mu.Lock()
	defer q.mu.Unlock()
	heap.Push(q.pending, &item{key: key, readyAt: time.Now()})
}

func (q *Queue) reinsert(key cache.Key, delay time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()
	heap.Push(q.pending, &item{key: key, readyAt: time.Now().Add(delay), delay: delay})
}

// Run drives the queue until ctx is canceled. On each tick it first drains
// up to 10 pending input requests with zero delay, then pops every expired
// heap entry and invokes reconcile. A successful
// reconcile resets backoff for that key; a failure re-inserts it with
// NextBackoff(previous delay).
func (q *Queue) Run(ctx context.Context, reconcile ReconcileFunc) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			q.drainInput()
			q.processExpired(ctx, reconcile)
		}
	}
}

func (q *Queue) drainInput() {
	for i := 0; i < drainBatch; i++ {
		select {
		case key := <-q.Requests:
			q.push(key)
		default:
			return
		}
	}
}

func (q *Queue) processExpired(ctx context.Context, reconcile ReconcileFunc) {
	now := time.Now()
	var ready []*item
	q.mu.Lock()
	for q.pending.Len() > 0 && (*q.pending)[0].readyAt.Before(now) {
		ready = append(ready, heap.Pop(q.pending).(*item))
	}
	q.mu.Unlock()

	for _, it := range ready {
		if err := reconcile(ctx, it.key); err != nil {
			delay := NextBackoff(it.delay)
			q.log.Error(err, "reconcile failed, retrying with backoff", "key", it.key, "delay", delay)
			q.reinsert(it.key, delay)
			continue
		}
	}
}
