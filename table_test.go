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
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTables(t *testing.T) {
	for _, impl := range Impls() {
		for _, s := range Strategies {
			t.Run(impl.Name+"/"+s.String(), func(t *testing.T) {
				tab := impl.New(NewHasher(s, DefaultTextHash))
				require.Zero(t, tab.Len())

				tab.Reserve(100)
				require.Zero(t, tab.Len())
				for i := 0; i < 100; i++ {
					tab.Put(Key{Datum: uint32(i), Text: DefaultText}, uint8(i))
				}
				require.Equal(t, 100, tab.Len())

				// Overwrite keeps the count; a different text is a different key.
				tab.Put(Key{Datum: 7, Text: DefaultText}, 1)
				require.Equal(t, 100, tab.Len())
				tab.Put(Key{Datum: 7, Text: "other"}, 1)
				require.Equal(t, 101, tab.Len())

				tab.Clear()
				require.Zero(t, tab.Len())

				// Reserving after entries exist keeps them.
				tab.Put(Key{Datum: 1, Text: DefaultText}, 1)
				tab.Reserve(1000)
				require.Equal(t, 1, tab.Len())
				tab.Put(Key{Datum: 1, Text: DefaultText}, 2)
				require.Equal(t, 1, tab.Len())
			})
		}
	}
}

func TestBuiltinTableValues(t *testing.T) {
	tab := newBuiltinTable(Hasher{}).(*builtinTable)
	tab.Reserve(10)
	tab.Put(Key{Datum: 3, Text: "a"}, 9)
	tab.Reserve(20)
	require.EqualValues(t, 9, tab.m[Key{Datum: 3, Text: "a"}])
}

func TestGoMapTableValues(t *testing.T) {
	tab := newGoMapTable(NewHasher(NumericHigh, DefaultTextHash)).(*goMapTable)
	for i := 0; i < 50; i++ {
		tab.Put(Key{Datum: uint32(i), Text: "a"}, uint8(i))
	}
	tab.Reserve(500)
	for i := 0; i < 50; i++ {
		v, ok := tab.m.Get(Key{Datum: uint32(i), Text: "a"})
		require.True(t, ok)
		require.EqualValues(t, i, v)
	}
}

func TestSwissTableProbes(t *testing.T) {
	const n = 2000
	keys := GenerateKeys(NewRand(DefaultSeed), n, DefaultText)

	probes := func(s Strategy) ProbeSummary {
		tab := newSwissTable(NewHasher(s, DefaultTextHash))
		tab.Reserve(n)
		for round := 0; round < 2; round++ {
			for i := range keys {
				tab.Put(keys[i], uint8(i))
			}
		}
		p := tab.(Prober).Probes(keys, n)
		// Counting runs on its own table: earlier Puts are not included and
		// the measured table is left alone.
		require.EqualValues(t, n, p.Puts)
		require.Equal(t, n, tab.Len())
		return p
	}

	low := probes(NumericLow)
	high := probes(NumericHigh)
	require.Less(t, low.GroupsPerPut, 2.0)
	require.Greater(t, high.GroupsPerPut, 10.0)
	require.Greater(t, high.ComparesPerPut, 10*low.ComparesPerPut+1)

	empty := newSwissTable(NewHasher(NumericLow, DefaultTextHash)).(Prober).Probes(nil, 0)
	require.Zero(t, empty.Puts)
	require.Zero(t, empty.GroupsPerPut)
}

// TestTablesClearKeepsCapacity refills each table after Clear and checks
// that no memory is allocated: Clear keeps the bucket or slot arrays.
func TestTablesClearKeepsCapacity(t *testing.T) {
	const n = 100
	keys := GenerateKeys(NewRand(DefaultSeed), n, DefaultText)
	for _, impl := range Impls() {
		t.Run(impl.Name, func(t *testing.T) {
			tab := impl.New(NewHasher(NumericLow, DefaultTextHash))
			tab.Reserve(10 * n)
			fill := func() {
				for i := range keys {
					tab.Put(keys[i], uint8(i))
				}
			}
			fill()
			tab.Clear()
			require.Zero(t, tab.Len())

			allocs := testing.AllocsPerRun(10, func() {
				fill()
				tab.Clear()
			})
			require.Zero(t, allocs)
		})
	}
}

func TestImplByName(t *testing.T) {
	for _, name := range []string{"swiss", "gomap", "builtin", "Swiss"} {
		impl, err := ImplByName(name)
		require.NoError(t, err)
		require.NotNil(t, impl.New)
	}
	_, err := ImplByName("btree")
	require.True(t, errors.Is(err, ErrInvalidConfig))

	builtin, _ := ImplByName("builtin")
	require.False(t, builtin.UsesHasher)
}
