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

// Package leaderelection implements the operator's two-phase leader
// election protocol layered on a coordination.k8s.io Lease, per the
// operator's design: acquire when unclaimed or expired, then renew at half
// the lease duration until a renewal loses a conflict, at which point this
// implementation terminates (see DESIGN.md for why terminate was chosen
// over demote-to-candidate).
package leaderelection

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/54b3r/exposedapp-operator/internal/k8sclient"
)

// timeNow is indirected so tests can exercise canAcquire without real sleeps.
var timeNow = time.Now

// Elector runs the acquire/renew protocol for a single named Lease.
type Elector struct {
	Client        *k8sclient.Client
	Identity      string
	LeaseNS       string
	LeaseName     string
	LeaseDuration time.Duration
	Log           logr.Logger

	leadingOnce sync.Once
	leading     chan struct{}
}

// DefaultLeaseNamespace and DefaultLeaseName are the operator's bootstrap
// Lease coordinates.
const (
	DefaultLeaseNamespace = "no-library"
	DefaultLeaseName      = "no-library"
)

// New constructs an Elector. The Lease named leaseNS/leaseName must already
// exist; bootstrapping it is the deployment manifest's job, not ours.
func New(client *k8sclient.Client, identity, leaseNS, leaseName string, leaseDuration time.Duration, log logr.Logger) *Elector {
	return &Elector{
		Client:        client,
		Identity:      identity,
		LeaseNS:       leaseNS,
		LeaseName:     leaseName,
		LeaseDuration: leaseDuration,
		Log:           log,
		leading:       make(chan struct{}),
	}
}

// Leading returns a channel that is closed exactly once, the first time
// this Elector becomes leader. Downstream tasks (the watch multiplexer)
// should block on it before starting.
func (e *Elector) Leading() <-chan struct{} {
	return e.leading
}

func (e *Elector) fireLeading() {
	e.leadingOnce.Do(func() { close(e.leading) })
}

// canAcquire reports whether a Lease with the given acquireTime (possibly
// unset) and duration is acquirable at time now: true iff now is after
// acquireTime+duration, or acquireTime was never set.
func canAcquire(acquireTime *metav1.MicroTime, duration time.Duration, now time.Time) bool {
	if acquireTime == nil || acquireTime.IsZero() {
		return true
	}
	return now.After(acquireTime.Time.Add(duration))
}

// Run executes Phase A (Acquire) until this instance becomes leader, then
// Phase B (Renew) until a renewal is rejected with Conflict, at which point
// Run returns an error. Per the top-level supervision design, the caller
// should treat that error like any other supervised-task failure: exit the
// process and let the orchestrator restart it.
func (e *Elector) Run(ctx context.Context) error {
	if err := e.acquire(ctx); err != nil {
		return err
	}
	return e.renewUntilLost(ctx)
}

func (e *Elector) acquire(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lease, err := e.Client.GetLease(ctx, e.LeaseNS, e.LeaseName)
		if err != nil {
			e.Log.Error(err, "acquire: getting lease failed")
			if err := sleepCtx(ctx, e.LeaseDuration); err != nil {
				return err
			}
			continue
		}

		if canAcquire(lease.Spec.AcquireTime, e.LeaseDuration, timeNow()) {
			_, err := e.Client.PatchLease(ctx, e.LeaseNS, e.LeaseName, lease.ResourceVersion, e.Identity, nowMicro())
			if err == nil {
				e.Log.Info("acquired leadership", "identity", e.Identity)
				e.fireLeading()
				return nil
			}
			if !k8sclient.IsConflict(err) {
				e.Log.Error(err, "acquire: patching lease failed")
			} else {
				e.Log.V(1).Info("acquire: lost race to another holder")
			}
		}

		if err := sleepCtx(ctx, e.LeaseDuration); err != nil {
			return err
		}
	}
}

func (e *Elector) renewUntilLost(ctx context.Context) error {
	half := e.LeaseDuration / 2
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lease, err := e.Client.GetLease(ctx, e.LeaseNS, e.LeaseName)
		if err != nil {
			e.Log.Error(err, "renew: getting lease failed")
			if err := sleepCtx(ctx, half); err != nil {
				return err
			}
			continue
		}

		if _, err := e.Client.PatchLease(ctx, e.LeaseNS, e.LeaseName, lease.ResourceVersion, e.Identity, nowMicro()); err != nil {
			if k8sclient.IsConflict(err) {
				return fmt.Errorf("leadership lost: lease held by another instance: %w", err)
			}
			e.Log.Error(err, "renew: patching lease failed")
		}

		if err := sleepCtx(ctx, half); err != nil {
			return err
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
