// Copyright 2024 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package swiss

// Option configures a Map while it is being created.
type Option[K comparable, V any] interface {
	apply(m *Map[K, V])
}

type optionFunc[K comparable, V any] func(m *Map[K, V])

func (f optionFunc[K, V]) apply(m *Map[K, V]) { f(m) }

// WithHash replaces the maphash based default hash. The table takes both the
// probe start and the control byte from the low bits of the returned value,
// so those are the bits that have to vary across keys.
func WithHash[K comparable, V any](hash func(key K, seed uintptr) uintptr) Option[K, V] {
	return optionFunc[K, V](func(m *Map[K, V]) {
		m.hash = hash
	})
}

// WithProbeStats makes every Put add its probe work to stats.
func WithProbeStats[K comparable, V any](stats *ProbeStats) Option[K, V] {
	return optionFunc[K, V](func(m *Map[K, V]) {
		m.stats = stats
	})
}

// WithAllocator sets the Allocator used for the slot and control arrays.
func WithAllocator[K comparable, V any](a Allocator[K, V]) Option[K, V] {
	return optionFunc[K, V](func(m *Map[K, V]) {
		m.allocator = a
	})
}

// Allocator supplies the slot and control arrays of a Map. The default uses
// make and leaves reclamation to the GC. An Allocator that recycles memory
// needs Map.Close to be called so that the last arrays are handed back.
type Allocator[K comparable, V any] interface {
	// AllocSlots returns n zeroed slots.
	AllocSlots(n int) []Slot[K, V]
	// AllocControls returns n control bytes. Their contents are overwritten.
	AllocControls(n int) []uint8
	// FreeSlots takes back a slice returned by AllocSlots.
	FreeSlots(s []Slot[K, V])
	// FreeControls takes back a slice returned by AllocControls.
	FreeControls(c []uint8)
}

type makeAllocator[K comparable, V any] struct{}

func (makeAllocator[K, V]) AllocSlots(n int) []Slot[K, V] { return make([]Slot[K, V], n) }
func (makeAllocator[K, V]) AllocControls(n int) []uint8   { return make([]uint8, n) }
func (makeAllocator[K, V]) FreeSlots([]Slot[K, V])        {}
func (makeAllocator[K, V]) FreeControls([]uint8)          {}
