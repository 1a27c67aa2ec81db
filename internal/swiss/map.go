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

// Package swiss is an open-addressing hash table in the style of Abseil's
// Swiss Tables (https://abseil.io/about/design/swisstables), reduced to a
// single table and extended with what the hashskew benchmark needs: capacity
// reservation, a Clear that keeps the allocated arrays, and optional probe
// statistics.
//
// # Layout
//
// A table has N-1 slots, N a power of two, and N-1+groupSize control bytes.
// The byte at index N-1 is a sentinel that reads as non-empty but never holds
// an entry. The groupSize-1 bytes after it mirror the first groupSize-1
// bytes, so a group can be loaded from any slot index without wrapping.
//
// A control byte is empty, deleted, the sentinel, or full. A full control
// byte holds the low 7 bits of the key's hash (h2). The bits above them (h1)
// pick the first group to probe. Groups are loaded 8 bytes at a time and
// matched with SWAR arithmetic.
//
// # Low-order bits
//
// Both the probe start and the control byte come from the low bits of the
// hash. When the low 32 bits are the same for every key, every probe starts at
// the same group and every control byte holds the same h2, so each Put walks
// and compares against the entries before it. ProbeStats counts that work.
package swiss

import (
	"fmt"
	"math/bits"
	"strings"
)

const (
	debug = false

	groupSize       = 8
	maxAvgGroupLoad = 7
)

// emptyGroup backs every table without capacity. Probing it finds no match
// and an empty byte at once, and nothing ever writes to it.
var emptyGroup = []uint8{
	ctrlEmpty, ctrlEmpty, ctrlEmpty, ctrlEmpty,
	ctrlEmpty, ctrlEmpty, ctrlEmpty, ctrlEmpty,
}

// Slot holds a key and value.
type Slot[K comparable, V any] struct {
	key   K
	value V
}

// Map is an unordered map from keys to values. Keys are hashed with
// hash/maphash unless WithHash supplies another function.
//
// A Map is NOT goroutine-safe.
type Map[K comparable, V any] struct {
	hash      hashFunc[K]
	seed      uintptr
	allocator Allocator[K, V]
	// ctrls has capacity+groupSize bytes, or is emptyGroup.
	ctrls []uint8
	// slots has capacity entries.
	slots []Slot[K, V]
	// capacity is 0 or 2^N-1. It doubles as the index mask.
	capacity uintptr
	used     int
	// growthLeft is the number of empty slots that can still be filled
	// before a rehash. Deleted slots are not counted.
	growthLeft int
	stats      *ProbeStats
}

// New returns a Map that can hold initialCapacity entries without a rehash.
func New[K comparable, V any](initialCapacity int, options ...Option[K, V]) *Map[K, V] {
	m := &Map[K, V]{
		hash:      defaultHash[K](),
		seed:      newSeed(),
		allocator: makeAllocator[K, V]{},
		ctrls:     emptyGroup,
	}
	for _, o := range options {
		o.apply(m)
	}
	m.Reserve(initialCapacity)
	m.checkInvariants()
	return m
}

// Reserve grows the table so that it holds n entries in total without a
// rehash. It never shrinks the table.
func (m *Map[K, V]) Reserve(n int) {
	if n <= 0 {
		return
	}
	c := uintptr(1)<<bits.Len(uint(n)) - 1
	for maxGrowth(c) < n {
		c = 2*c + 1
	}
	if c > m.capacity {
		m.resize(c)
	}
}

// maxGrowth is the number of entries a table with the given capacity holds
// at its maximum load: 7/8, or capacity-1 for a table smaller than a group
// since probing needs an empty byte to stop.
func maxGrowth(capacity uintptr) int {
	switch {
	case capacity == 0:
		return 0
	case capacity < groupSize:
		return int(capacity - 1)
	default:
		return int(capacity * maxAvgGroupLoad / groupSize)
	}
}

// Close hands the arrays back to the Allocator. The Map must not be used
// afterwards. Closing twice is harmless.
func (m *Map[K, V]) Close() {
	if m.capacity > 0 {
		m.allocator.FreeSlots(m.slots)
		m.allocator.FreeControls(m.ctrls)
	}
	m.capacity, m.used, m.growthLeft = 0, 0, 0
	m.ctrls, m.slots = nil, nil
	m.allocator = nil
}

// find returns the index of key, counting the work in stats when it is not
// nil.
func (m *Map[K, V]) find(key K, h uintptr, stats *ProbeStats) (uintptr, bool) {
	p := newProbe(h1(h), m.capacity)
	if debug {
		fmt.Printf("find(%v): h2=%02x %s\n", key, h2(h), p)
	}
	for {
		g := loadGroup(m.ctrls, p.pos)
		if stats != nil {
			stats.Groups++
		}
		for match := g.matchH2(h2(h)); match != 0; match = match.dropFirst() {
			i := p.slot(match.first())
			if stats != nil {
				stats.Compares++
			}
			if m.slots[i].key == key {
				return i, true
			}
		}
		// An empty byte ends the sequence: an insert would have stopped here.
		if g.matchEmpty() != 0 {
			return 0, false
		}
		p.advance()
	}
}

// Put inserts key or overwrites its value.
func (m *Map[K, V]) Put(key K, value V) {
	h := m.hash(key, m.seed)
	if m.stats != nil {
		m.stats.Puts++
	}
	if i, ok := m.find(key, h, m.stats); ok {
		m.slots[i].value = value
		m.checkInvariants()
		return
	}
	if m.growthLeft == 0 {
		m.rehash()
	}
	m.insert(h, key, value)
	m.used++
	m.checkInvariants()
}

// Get returns the value stored for key.
func (m *Map[K, V]) Get(key K) (value V, ok bool) {
	i, ok := m.find(key, m.hash(key, m.seed), nil)
	if !ok {
		return value, false
	}
	return m.slots[i].value, true
}

// Delete removes key. Deleting a missing key does nothing.
func (m *Map[K, V]) Delete(key K) {
	i, ok := m.find(key, m.hash(key, m.seed), nil)
	if !ok {
		return
	}
	m.slots[i] = Slot[K, V]{}
	m.used--
	// A slot whose neighbourhood never formed a full group cannot have made
	// a probe continue past it, so it may become empty again. Otherwise it
	// becomes a tombstone.
	if m.wasNeverFull(i) {
		m.setCtrl(i, ctrlEmpty)
		m.growthLeft++
	} else {
		m.setCtrl(i, ctrlDeleted)
	}
	if debug {
		fmt.Printf("delete(%v): index=%d used=%d growth-left=%d\n", key, i, m.used, m.growthLeft)
	}
	m.checkInvariants()
}

// Clear removes every entry and keeps the arrays, so refilling the map to
// its previous size does not allocate.
func (m *Map[K, V]) Clear() {
	if m.capacity == 0 {
		return
	}
	m.resetCtrls()
	clear(m.slots)
	m.used = 0
	m.growthLeft = maxGrowth(m.capacity)
	m.checkInvariants()
}

// All calls yield for every entry until yield returns false. The map may be
// mutated during iteration; such mutations may or may not be observed.
func (m *Map[K, V]) All(yield func(key K, value V) bool) {
	ctrls, slots := m.ctrls, m.slots
	for i := range slots {
		if isFull(ctrls[i]) && !yield(slots[i].key, slots[i].value) {
			return
		}
	}
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	return m.used
}

// Capacity returns the number of slots.
func (m *Map[K, V]) Capacity() int {
	return int(m.capacity)
}

func (m *Map[K, V]) resetCtrls() {
	for i := range m.ctrls {
		m.ctrls[i] = ctrlEmpty
	}
	m.ctrls[m.capacity] = ctrlSentinel
}

// mirror returns the index of the tail copy of control byte i. For i at or
// past groupSize-1 that is i itself.
func (m *Map[K, V]) mirror(i uintptr) uintptr {
	return ((i - (groupSize - 1)) & m.capacity) + (groupSize - 1)
}

func (m *Map[K, V]) setCtrl(i uintptr, c uint8) {
	m.ctrls[i] = c
	m.ctrls[m.mirror(i)] = c
}

// wasNeverFull reports whether no group window covering i was ever full.
// That holds when the non-empty runs to either side of i add up to less than
// a group.
func (m *Map[K, V]) wasNeverFull(i uintptr) bool {
	if m.capacity < groupSize {
		return true
	}
	after := loadGroup(m.ctrls, i).matchEmpty()
	before := loadGroup(m.ctrls, (i-groupSize)&m.capacity).matchEmpty()
	return after != 0 && before != 0 &&
		after.leadingMisses()+before.trailingMisses() < groupSize
}

// insert places a key known to be absent into the first empty or deleted
// slot of its probe sequence.
func (m *Map[K, V]) insert(h uintptr, key K, value V) {
	p := newProbe(h1(h), m.capacity)
	for {
		if match := loadGroup(m.ctrls, p.pos).matchEmptyOrDeleted(); match != 0 {
			i := p.slot(match.first())
			m.slots[i] = Slot[K, V]{key: key, value: value}
			if m.ctrls[i] == ctrlEmpty {
				m.growthLeft--
			}
			m.setCtrl(i, h2(h))
			if debug {
				fmt.Printf("insert(%v): index=%d growth-left=%d\n", key, i, m.growthLeft)
			}
			return
		}
		p.advance()
	}
}

// rehash makes room for one more entry. Dropping tombstones in place is
// preferred when that frees at least a third of the table.
func (m *Map[K, V]) rehash() {
	recoverable := maxGrowth(m.capacity) - m.used
	if m.capacity > groupSize && uintptr(recoverable) >= m.capacity/3 {
		m.rehashInPlace()
		return
	}
	m.resize(2*m.capacity + 1)
}

// resize moves every entry into new arrays of the given capacity.
func (m *Map[K, V]) resize(capacity uintptr) {
	if capacity < groupSize-1 {
		capacity = groupSize - 1
	}
	if debug {
		fmt.Printf("resize: capacity=%d->%d\n", m.capacity, capacity)
	}

	oldCap, oldCtrls, oldSlots := m.capacity, m.ctrls, m.slots
	m.capacity = capacity
	m.slots = m.allocator.AllocSlots(int(capacity))
	m.ctrls = m.allocator.AllocControls(int(capacity + groupSize))
	m.resetCtrls()
	m.growthLeft = maxGrowth(capacity)

	for i := range oldSlots {
		if isFull(oldCtrls[i]) {
			s := &oldSlots[i]
			m.insert(m.hash(s.key, m.seed), s.key, s.value)
		}
	}
	if oldCap > 0 {
		m.allocator.FreeSlots(oldSlots)
		m.allocator.FreeControls(oldCtrls)
	}
	m.checkInvariants()
}

// rehashInPlace clears all tombstones without allocating.
func (m *Map[K, V]) rehashInPlace() {
	if m.capacity == 0 {
		return
	}
	if debug {
		fmt.Printf("rehash: used=%d capacity=%d\n", m.used, m.capacity)
	}

	// Full becomes deleted, everything else empty. From here on deleted
	// marks an entry that still has to be placed.
	for i := uintptr(0); i < m.capacity; i += groupSize {
		loadGroup(m.ctrls, i).tombstoneFull().store(m.ctrls, i)
	}
	for i := uintptr(0); i < groupSize-1; i++ {
		m.ctrls[m.mirror(i)] = m.ctrls[i]
	}
	m.ctrls[m.capacity] = ctrlSentinel

	// No slot before i is deleted.
	for i := uintptr(0); i < m.capacity; i++ {
		if m.ctrls[i] != ctrlDeleted {
			continue
		}
		s := &m.slots[i]
		h := m.hash(s.key, m.seed)
		p := newProbe(h1(h), m.capacity)
		var target uintptr
		for {
			if match := loadGroup(m.ctrls, p.pos).matchEmptyOrDeleted(); match != 0 {
				target = p.slot(match.first())
				break
			}
			p.advance()
		}

		if i == target || p.distance(i) == p.distance(target) {
			// Already within its first reachable group.
			m.setCtrl(i, h2(h))
			continue
		}

		switch m.ctrls[target] {
		case ctrlEmpty:
			m.setCtrl(target, h2(h))
			m.slots[target] = *s
			*s = Slot[K, V]{}
			m.setCtrl(i, ctrlEmpty)
		case ctrlDeleted:
			// Swap with the pending entry at target and look at i again.
			m.setCtrl(target, h2(h))
			m.slots[target], *s = *s, m.slots[target]
			i--
		default:
			panic(fmt.Sprintf("ctrl at position %d (%02x) should be empty or deleted",
				target, m.ctrls[target]))
		}
	}

	m.growthLeft = maxGrowth(m.capacity) - m.used
	m.checkInvariants()
}

func (m *Map[K, V]) checkInvariants() {
	if !invariants {
		return
	}
	if m.capacity > 0 {
		for i := uintptr(0); i < groupSize-1; i++ {
			if j := m.mirror(i); m.ctrls[i] != m.ctrls[j] {
				panic(fmt.Sprintf("invariant failed: ctrl(%d)=%02x != ctrl(%d)=%02x\n%s",
					i, m.ctrls[i], j, m.ctrls[j], m.debugString()))
			}
		}
		if c := m.ctrls[m.capacity]; c != ctrlSentinel {
			panic(fmt.Sprintf("invariant failed: ctrl(%d)=%02x is not the sentinel\n%s",
				m.capacity, c, m.debugString()))
		}
	}

	var used, deleted int
	for i := range m.slots {
		switch c := m.ctrls[i]; {
		case c == ctrlDeleted:
			deleted++
		case c == ctrlEmpty:
		case c == ctrlSentinel:
			panic(fmt.Sprintf("invariant failed: ctrl(%d): unexpected sentinel", i))
		default:
			if _, ok := m.Get(m.slots[i].key); !ok {
				panic(fmt.Sprintf("invariant failed: slot(%d): %v not found\n%s",
					i, m.slots[i].key, m.debugString()))
			}
			used++
		}
	}
	if used != m.used {
		panic(fmt.Sprintf("invariant failed: %d full slots, used is %d\n%s",
			used, m.used, m.debugString()))
	}
	if want := maxGrowth(m.capacity) - m.used - deleted; want != m.growthLeft {
		panic(fmt.Sprintf("invariant failed: growth-left is %d, expected %d\n%s",
			m.growthLeft, want, m.debugString()))
	}
}

func (m *Map[K, V]) debugString() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "capacity=%d used=%d growth-left=%d\n", m.capacity, m.used, m.growthLeft)
	for i, c := range m.ctrls {
		switch {
		case c == ctrlEmpty:
			fmt.Fprintf(&buf, "  %4d: empty\n", i)
		case c == ctrlDeleted:
			fmt.Fprintf(&buf, "  %4d: deleted\n", i)
		case c == ctrlSentinel:
			fmt.Fprintf(&buf, "  %4d: sentinel\n", i)
		case i < len(m.slots):
			k := m.slots[i].key
			fmt.Fprintf(&buf, "  %4d: %v [ctrl=%02x h2=%02x]\n", i, k, c, h2(m.hash(k, m.seed)))
		default:
			fmt.Fprintf(&buf, "  %4d: [ctrl=%02x]\n", i, c)
		}
	}
	return buf.String()
}
