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

import (
	"context"
	"encoding/json"
	"net/http"

	coordinationv1 "k8s.io/api/coordination/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	jsonpatch "gomodules.xyz/jsonpatch/v2"
)

// GetLease fetches the named Lease.
func (c *Client) GetLease(ctx context.Context, ns, name string) (*coordinationv1.Lease, error) {
	var lease coordinationv1.Lease
	if err := c.get(ctx, leasePath(ns, name), &lease); err != nil {
		return nil, err
	}
	return &lease, nil
}

// PatchLease attempts an atomic "update-if-resourceVersion-equals-rv" write
// on the named Lease, expressed as a JSON-patch with a leading `test`
// operation on /metadata/resourceVersion followed by `add` operations on
// holderIdentity and acquireTime. A precondition mismatch is surfaced as
// KindConflict, exactly like any other write race.
func (c *Client) PatchLease(ctx context.Context, ns, name, resourceVersion, holder string, acquireTime metav1.MicroTime) (*coordinationv1.Lease, error) {
	ops := []jsonpatch.Operation{
		{
			Operation: "test",
			Path:      "/metadata/resourceVersion",
			Value:     resourceVersion,
		},
		{
			Operation: "add",
			Path:      "/spec/holderIdentity",
			Value:     holder,
		},
		{
			Operation: "add",
			Path:      "/spec/acquireTime",
			Value:     acquireTime,
		},
	}
	payload, err := json.Marshal(ops)
	if err != nil {
		return nil, err
	}

	body, err := c.do(ctx, http.MethodPatch, leasePath(ns, name), payload, "application/json-patch+json")
	if err != nil {
		return nil, err
	}
	var lease coordinationv1.Lease
	if err := json.Unmarshal(body, &lease); err != nil {
		return nil, err
	}
	return &lease, nil
}
