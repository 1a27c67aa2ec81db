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

package hashskew

import (
	"fmt"
	"hash/maphash"
	"strings"

	"github.com/aristanetworks/gomap"

	"github.com/cockroachdb/hashskew/internal/swiss"
)

// Table is the capability the benchmark needs from a hash table mapping Key
// to a small counter.
type Table interface {
	// Reserve makes room for n entries so that filling the table to n does
	// not grow it.
	Reserve(n int)
	// Put inserts or overwrites the value for key.
	Put(key Key, value uint8)
	// Clear removes every entry and keeps the allocated capacity.
	Clear()
	// Len returns the number of entries.
	Len() int
}

// ProbeSummary describes how much probing Put needed on average.
type ProbeSummary struct {
	Puts           uint64
	GroupsPerPut   float64
	ComparesPerPut float64
}

// Prober is implemented by tables that can report their probe work. Probes
// inserts keys into a separate, instrumented table reserved for n entries, so
// the table that is timed never pays for the counting.
type Prober interface {
	Probes(keys []Key, n int) ProbeSummary
}

// Impl is a named Table constructor.
type Impl struct {
	Name string
	// UsesHasher is false for tables that ignore the supplied Hasher.
	UsesHasher bool
	New        func(h Hasher) Table
}

func (i Impl) String() string {
	return i.Name
}

var impls = []Impl{
	{Name: "swiss", UsesHasher: true, New: newSwissTable},
	{Name: "gomap", UsesHasher: true, New: newGoMapTable},
	{Name: "builtin", UsesHasher: false, New: newBuiltinTable},
}

// Impls returns all table implementations.
func Impls() []Impl {
	return append([]Impl(nil), impls...)
}

// ImplByName returns the implementation with the given name.
func ImplByName(name string) (Impl, error) {
	for _, i := range impls {
		if strings.EqualFold(i.Name, name) {
			return i, nil
		}
	}
	return Impl{}, fmt.Errorf("%w: unknown table implementation %q", ErrInvalidConfig, name)
}

// swissTable is an open-addressing table. Probe start and control byte both
// come from the low bits of the hash.
type swissTable struct {
	hasher Hasher
	m      *swiss.Map[Key, uint8]
}

func newSwissTable(h Hasher) Table {
	return &swissTable{hasher: h, m: newSwissMap(h)}
}

func newSwissMap(h Hasher, opts ...swiss.Option[Key, uint8]) *swiss.Map[Key, uint8] {
	hash := swiss.WithHash[Key, uint8](func(k Key, _ uintptr) uintptr {
		return uintptr(h.Hash(&k))
	})
	return swiss.New[Key, uint8](0, append(opts, hash)...)
}

func (t *swissTable) Reserve(n int)            { t.m.Reserve(n) }
func (t *swissTable) Put(key Key, value uint8) { t.m.Put(key, value) }
func (t *swissTable) Clear()                   { t.m.Clear() }
func (t *swissTable) Len() int                 { return t.m.Len() }

func (t *swissTable) Probes(keys []Key, n int) ProbeSummary {
	var stats swiss.ProbeStats
	m := newSwissMap(t.hasher, swiss.WithProbeStats[Key, uint8](&stats))
	m.Reserve(n)
	for i := range keys {
		m.Put(keys[i], uint8(i))
	}
	return ProbeSummary{
		Puts:           stats.Puts,
		GroupsPerPut:   stats.GroupsPerPut(),
		ComparesPerPut: stats.ComparesPerPut(),
	}
}

// goMapTable is a chained-bucket table built like the Go runtime's classic
// map: the low bits of the hash select one of 2^B buckets of 8 entries, and
// full buckets chain overflow buckets.
type goMapTable struct {
	hasher   Hasher
	reserved int
	m        *gomap.Map[Key, uint8]
}

func newGoMapTable(h Hasher) Table {
	t := &goMapTable{hasher: h}
	t.m = gomap.New[Key, uint8](keyEqual, t.hash)
	return t
}

// hash ignores the per-map seed: the Hasher output is the experiment.
func (t *goMapTable) hash(_ maphash.Seed, k Key) uint64 {
	return t.hasher.Hash(&k)
}

// Reserve rebuilds the map with a size hint, since gomap only sizes its
// bucket array at construction.
func (t *goMapTable) Reserve(n int) {
	if n <= t.reserved {
		return
	}
	m := gomap.NewHint[Key, uint8](n, keyEqual, t.hash)
	for k, v := range t.m.All() {
		m.Set(k, v)
	}
	t.m, t.reserved = m, n
}

func (t *goMapTable) Put(key Key, value uint8) { t.m.Set(key, value) }
func (t *goMapTable) Clear()                   { t.m.Clear() }
func (t *goMapTable) Len() int                 { return t.m.Len() }

// builtinTable is Go's own map. It hashes with the runtime's seeded hash and
// never sees the Hasher, which makes it a control for the other two.
type builtinTable struct {
	reserved int
	m        map[Key]uint8
}

func newBuiltinTable(Hasher) Table {
	return &builtinTable{m: make(map[Key]uint8)}
}

func (t *builtinTable) Reserve(n int) {
	if n <= t.reserved {
		return
	}
	m := make(map[Key]uint8, n)
	for k, v := range t.m {
		m[k] = v
	}
	t.m, t.reserved = m, n
}

func (t *builtinTable) Put(key Key, value uint8) { t.m[key] = value }
func (t *builtinTable) Clear()                   { clear(t.m) }
func (t *builtinTable) Len() int                 { return len(t.m) }
