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

// Package k8sclient is a hand-written HTTPS client for the subset of the
// Kubernetes API this operator needs. It deliberately does not depend on
// k8s.io/client-go's REST client or sigs.k8s.io/controller-runtime: per the
// operator's design, the transport itself is mechanical and owned by this
// package, while k8s.io/api and k8s.io/apimachinery are reused purely as
// wire-format type definitions.
package k8sclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-logr/logr"
)

const (
	serviceAccountDir  = "/var/run/secrets/kubernetes.io/serviceaccount"
	tokenRetryAttempts = 3
)

// tokenRetryDelay is indirected so tests can shorten it; production always
// uses a fixed 10-second delay between 401 retries.
var tokenRetryDelay = 10 * time.Second

// Client issues typed verbs against the Kubernetes API server over HTTPS
// with bearer-token auth. Per the operator's concurrency design, each
// supervised task clones a Client (Clone) so that token refreshes in one
// task never race another's; the underlying *http.Client and its
// connection pool are shared and are safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string

	mu         sync.Mutex
	token      string
	tokenPath  string
	caCertPath string

	log logr.Logger
}

// Config describes how to reach the API server and load credentials.
type Config struct {
	// Host and Port override the API server address. When Host is empty,
	// New falls back to KUBERNETES_SERVICE_HOST/KUBERNETES_SERVICE_PORT and
	// then to the in-cluster default.
	Host string
	Port string

	TokenPath  string
	CACertPath string

	Log logr.Logger
}

// New constructs a Client, loading the bearer token and root CA from the
// configured serviceaccount paths and deriving the server address from
// KUBERNETES_SERVICE_HOST/KUBERNETES_SERVICE_PORT when Host is unset.
func New(cfg Config) (*Client, error) {
	tokenPath := cfg.TokenPath
	if tokenPath == "" {
		tokenPath = serviceAccountDir + "/token"
	}
	caCertPath := cfg.CACertPath
	if caCertPath == "" {
		caCertPath = serviceAccountDir + "/ca.crt"
	}

	token, err := os.ReadFile(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("reading serviceaccount token: %w", err)
	}

	tlsConfig := &tls.Config{}
	if caPEM, err := os.ReadFile(caCertPath); err == nil {
		pool := x509.NewCertPool()
		if pool.AppendCertsFromPEM(caPEM) {
			tlsConfig.RootCAs = pool
		}
	}

	host := cfg.Host
	port := cfg.Port
	if host == "" {
		host = os.Getenv("KUBERNETES_SERVICE_HOST")
		port = os.Getenv("KUBERNETES_SERVICE_PORT")
	}

	baseURL := "https://kubernetes.default.svc"
	if host != "" {
		if port != "" {
			baseURL = fmt.Sprintf("https://%s:%s", host, port)
		} else {
			baseURL = fmt.Sprintf("https://%s", host)
		}
	}

	return &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{TLSClientConfig: tlsConfig},
		},
		baseURL:    baseURL,
		token:      string(bytes.TrimSpace(token)),
		tokenPath:  tokenPath,
		caCertPath: caCertPath,
		log:        cfg.Log,
	}, nil
}

// NewForTesting builds a Client pointed directly at baseURL (typically an
// httptest.Server's URL) using httpClient and token, bypassing the
// serviceaccount-file loading New performs. It exists so tests in this
// module can exercise the client's retry and verb behavior against a fake
// API server without touching the filesystem.
func NewForTesting(baseURL, token string, httpClient *http.Client) *Client {
	return &Client{httpClient: httpClient, baseURL: baseURL, token: token}
}

// Clone returns a Client sharing this Client's HTTP transport (and thus its
// connection pool) but holding independent, separately-refreshable token
// state, matching the "API Client is cloned per task" rule in the
// concurrency design.
func (c *Client) Clone() *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &Client{
		httpClient: c.httpClient,
		baseURL:    c.baseURL,
		token:      c.token,
		tokenPath:  c.tokenPath,
		caCertPath: c.caCertPath,
		log:        c.log,
	}
}

func (c *Client) currentToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Client) refreshToken() error {
	data, err := os.ReadFile(c.tokenPath)
	if err != nil {
		return fmt.Errorf("refreshing serviceaccount token: %w", err)
	}
	c.mu.Lock()
	c.token = string(bytes.TrimSpace(data))
	c.mu.Unlock()
	return nil
}

// do executes a single HTTP request, retrying up to tokenRetryAttempts times
// on 401 with a fixed tokenRetryDelay between attempts and a token refresh
// before each retry. All other non-2xx statuses are returned as an
// *APIError without implicit retry; higher layers decide whether and how
// to retry those.
func (c *Client) do(ctx context.Context, method, path string, body []byte, contentType string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= tokenRetryAttempts; attempt++ {
		respBody, status, err := c.doOnce(ctx, method, path, body, contentType)
		if err != nil {
			return nil, err
		}
		if status >= 200 && status < 300 {
			return respBody, nil
		}
		apiErr := newAPIError(status, string(respBody))
		if apiErr.Kind != KindUnauthorized || attempt == tokenRetryAttempts {
			return nil, apiErr
		}
		lastErr = apiErr
		c.log.Info("refreshing token after 401", "path", path, "attempt", attempt+1)
		if err := c.refreshToken(); err != nil {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(tokenRetryDelay):
		}
	}
	return nil, lastErr
}

func (c *Client) doOnce(ctx context.Context, method, path string, body []byte, contentType string) ([]byte, int, error) {
	url := c.baseURL + path
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+c.currentToken())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s: reading response: %w", method, path, err)
	}
	c.log.V(1).Info("api call", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))
	return respBody, resp.StatusCode, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	body, err := c.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

func (c *Client) post(ctx context.Context, path string, in, out interface{}) error {
	return c.send(ctx, http.MethodPost, path, in, out)
}

func (c *Client) put(ctx context.Context, path string, in, out interface{}) error {
	return c.send(ctx, http.MethodPut, path, in, out)
}

func (c *Client) send(ctx context.Context, method, path string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding request body: %w", err)
	}
	body, err := c.do(ctx, method, path, payload, "application/json")
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}
