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

package cache_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/54b3r/exposedapp-operator/internal/cache"
)

func int64p(v int64) *int64 { return &v }

var _ = Describe("Store", func() {
	var store *cache.Store
	key := cache.Key{Namespace: "demo", Name: "web"}

	BeforeEach(func() {
		store = cache.New()
	})

	It("treats an unseen key as not redundant", func() {
		Expect(store.IsRedundant(key, "100", int64p(1))).To(BeFalse())
	})

	It("is redundant when the resourceVersion matches the recorded write", func() {
		store.Record(key, "100", int64p(1))
		Expect(store.IsRedundant(key, "100", int64p(2))).To(BeTrue())
	})

	It("is redundant when the generation matches even with a different resourceVersion", func() {
		store.Record(key, "100", int64p(1))
		Expect(store.IsRedundant(key, "101", int64p(1))).To(BeTrue())
	})

	It("is not redundant when both resourceVersion and generation differ", func() {
		store.Record(key, "100", int64p(1))
		Expect(store.IsRedundant(key, "101", int64p(2))).To(BeFalse())
	})

	It("dedups Services on resourceVersion alone, since generation is unused", func() {
		store.Record(key, "100", nil)
		Expect(store.IsRedundant(key, "100", nil)).To(BeTrue())
		Expect(store.IsRedundant(key, "101", nil)).To(BeFalse())
	})

	It("forgets a key after Evict", func() {
		store.Record(key, "100", int64p(1))
		store.Evict(key)
		Expect(store.IsRedundant(key, "100", int64p(1))).To(BeFalse())
	})

	It("keeps entries for distinct keys independent", func() {
		other := cache.Key{Namespace: "demo", Name: "api"}
		store.Record(key, "100", int64p(1))
		store.Record(other, "200", int64p(5))
		Expect(store.IsRedundant(key, "100", nil)).To(BeTrue())
		Expect(store.IsRedundant(other, "100", nil)).To(BeFalse())
	})
})
