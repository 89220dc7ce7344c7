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

// Package health serves the operator's /healthz and /readyz endpoints.
// Readiness is derived solely from the leader-election Leading channel;
// the HTTP surface itself is mechanical.
package health

import (
	"context"
	"errors"
	"net/http"
)

// Server serves /healthz (always 200) and /readyz (200 once leading has
// fired at least once, 503 otherwise).
type Server struct {
	addr    string
	leading <-chan struct{}
}

// New constructs a Server listening on addr (e.g. ":3000"). leading should
// be the channel returned by leaderelection.Elector.Leading.
func New(addr string, leading <-chan struct{}) *Server {
	return &Server{addr: addr, leading: leading}
}

// Run serves until ctx is canceled, then shuts down gracefully and returns
// ctx.Err(). A listen failure is returned as-is. Under the top-level
// supervision design either non-nil return stops every other supervised
// task, so the process exits.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		select {
		case <-s.leading:
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	})

	srv := &http.Server{Addr: s.addr, Handler: mux}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		_ = srv.Shutdown(context.Background())
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
