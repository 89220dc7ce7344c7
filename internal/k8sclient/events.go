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

	eventsv1 "k8s.io/api/events/v1"
)

// PostEvent creates an Event object in the events.k8s.io/v1 API group.
func (c *Client) PostEvent(ctx context.Context, ev *eventsv1.Event) (*eventsv1.Event, error) {
	var created eventsv1.Event
	if err := c.post(ctx, eventsPath(ev.Namespace), ev, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
