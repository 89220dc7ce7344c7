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

// Package config loads the operator's process configuration from
// environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds the operator's runtime configuration.
type Config struct {
	// Port is the health HTTP server's listen port.
	Port string
	// PodName identifies this instance; used as the Lease holderIdentity
	// and the Event reportingInstance. Required.
	PodName string
	// KubernetesServiceHost/Port override the API server address; when
	// both are empty, the client falls back to the in-cluster default.
	KubernetesServiceHost string
	KubernetesServicePort string
	// Namespace is the ExposedApp namespace the primary watch loop
	// follows. It is read from the serviceaccount namespace file (the
	// same in-cluster convention client-go's rest.InClusterConfig uses),
	// falling back to "default" outside a cluster.
	Namespace string
}

const (
	defaultPort      = "3000"
	namespaceFile    = "/var/run/secrets/kubernetes.io/serviceaccount/namespace"
	defaultNamespace = "default"
)

// Load reads Config from the environment. A missing POD_NAME is a fatal
// configuration error, not something to retry.
func Load() (Config, error) {
	podName := os.Getenv("POD_NAME")
	if podName == "" {
		return Config{}, fmt.Errorf("POD_NAME must be set")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	return Config{
		Port:                  port,
		PodName:               podName,
		KubernetesServiceHost: os.Getenv("KUBERNETES_SERVICE_HOST"),
		KubernetesServicePort: os.Getenv("KUBERNETES_SERVICE_PORT"),
		Namespace:             readNamespace(),
	}, nil
}

func readNamespace() string {
	data, err := os.ReadFile(namespaceFile)
	if err != nil {
		return defaultNamespace
	}
	ns := strings.TrimSpace(string(data))
	if ns == "" {
		return defaultNamespace
	}
	return ns
}
