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

package k8sclient

import "fmt"

// Kind classifies an API error by the policy the caller should apply,
// per the error table in the operator's design: NotFound is benign,
// Conflict means "someone else already holds or wrote this", Unauthorized
// is handled by the transport's token refresh, and Other is opaque.
type Kind int

const (
	// KindOther covers any non-2xx status not otherwise classified.
	KindOther Kind = iota
	KindNotFound
	KindConflict
	KindUnauthorized
)

// APIError wraps a non-2xx response from the Kubernetes API.
type APIError struct {
	Kind   Kind
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("k8s api: status %d: %s", e.Status, e.Body)
}

func newAPIError(status int, body string) *APIError {
	kind := KindOther
	switch status {
	case 404:
		kind = KindNotFound
	case 409:
		kind = KindConflict
	case 401:
		kind = KindUnauthorized
	}
	return &APIError{Kind: kind, Status: status, Body: body}
}

// IsNotFound reports whether err is an APIError for HTTP 404.
func IsNotFound(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Kind == KindNotFound
}

// IsConflict reports whether err is an APIError for HTTP 409.
func IsConflict(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Kind == KindConflict
}

// IsUnauthorized reports whether err is an APIError for HTTP 401.
func IsUnauthorized(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Kind == KindUnauthorized
}
