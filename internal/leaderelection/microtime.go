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

package leaderelection

import metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

// nowMicro returns the current time as a metav1.MicroTime, the
// microsecond-precision ISO-8601 encoding the Lease's acquireTime field
// uses. Reusing apimachinery's own type keeps encode/decode lossless
// through the same marshaling path the API server itself uses, rather
// than hand-rolling a parser.
func nowMicro() metav1.MicroTime {
	return metav1.NewMicroTime(timeNow())
}
