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

// Command operator is the entrypoint for the ExposedApp controller: it
// wires together the API client, leader elector, watch multiplexer,
// reconcile queue, and health server, and supervises them as described in
// the operator's concurrency design: if any of the three top-level tasks
// returns, the whole process exits so the container orchestrator can
// restart it.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/54b3r/exposedapp-operator/internal/cache"
	"github.com/54b3r/exposedapp-operator/internal/config"
	"github.com/54b3r/exposedapp-operator/internal/health"
	"github.com/54b3r/exposedapp-operator/internal/k8sclient"
	"github.com/54b3r/exposedapp-operator/internal/leaderelection"
	"github.com/54b3r/exposedapp-operator/internal/logging"
	"github.com/54b3r/exposedapp-operator/internal/queue"
	"github.com/54b3r/exposedapp-operator/internal/reconciler"
	"github.com/54b3r/exposedapp-operator/internal/watch"
)

const (
	leaseDuration  = 15 * time.Second
	reconcileQueue = 64
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	log, flush, err := logging.New()
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer flush()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	baseClient, err := k8sclient.New(k8sclient.Config{
		Host: cfg.KubernetesServiceHost,
		Port: cfg.KubernetesServicePort,
		Log:  log,
	})
	if err != nil {
		return fmt.Errorf("constructing k8s client: %w", err)
	}

	elector := leaderelection.New(
		baseClient.Clone(),
		cfg.PodName,
		leaderelection.DefaultLeaseNamespace,
		leaderelection.DefaultLeaseName,
		leaseDuration,
		log.WithName("leaderelection"),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return health.New(":"+cfg.Port, elector.Leading()).Run(ctx)
	})

	group.Go(func() error {
		return elector.Run(ctx)
	})

	group.Go(func() error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-elector.Leading():
		}
		return runReconciliationPipeline(ctx, baseClient, cfg, log)
	})

	return group.Wait()
}

// runReconciliationPipeline starts the watch multiplexer and the reconcile
// queue consumer. Callers must not invoke it before the leader signal has
// fired; only the active leader reconciles.
func runReconciliationPipeline(ctx context.Context, baseClient *k8sclient.Client, cfg config.Config, log logr.Logger) error {
	versionCache := cache.New()

	q := queue.New(reconcileQueue, log.WithName("queue"))

	recon := &reconciler.Reconciler{
		Client:  baseClient.Clone(),
		Cache:   versionCache,
		PodName: cfg.PodName,
		Log:     log.WithName("reconciler"),
	}

	mux := &watch.Multiplexer{
		Client:    baseClient.Clone(),
		Cache:     versionCache,
		Namespace: cfg.Namespace,
		Enqueue:   q.Enqueue,
		Log:       log.WithName("watch"),
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error { mux.RunExposedApps(ctx); return ctx.Err() })
	group.Go(func() error { mux.RunOwnedDeployments(ctx); return ctx.Err() })
	group.Go(func() error { mux.RunOwnedServices(ctx); return ctx.Err() })
	group.Go(func() error { q.Run(ctx, recon.Reconcile); return ctx.Err() })
	return group.Wait()
}
