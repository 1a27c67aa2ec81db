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

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func indexes(m matches) []uintptr {
	var r []uintptr
	for ; m != 0; m = m.dropFirst() {
		r = append(r, m.first())
	}
	return r
}

func TestProbe(t *testing.T) {
	positions := func(h1, mask uintptr, n int) []uintptr {
		p := newProbe(h1, mask)
		r := make([]uintptr, n)
		for i := range r {
			r[i] = p.pos
			p.advance()
		}
		return r
	}

	// 16 groups of 8.
	expected := []uintptr{0, 8, 24, 48, 80, 120, 40, 96, 32, 104, 56, 16, 112, 88, 72, 64}
	require.Equal(t, expected, positions(0, 127, 16))
	require.Equal(t, expected, positions(128, 127, 16))

	for start := uintptr(0); start < groupSize; start++ {
		got := positions(start, 127, 16)
		slices.Sort(got)
		for j, pos := range got {
			require.EqualValues(t, uintptr(j)*groupSize+start, pos)
		}
	}

	p := newProbe(5, 127)
	require.EqualValues(t, 7, p.slot(2))
	require.EqualValues(t, 0, p.distance(5))
	p.advance()
	require.EqualValues(t, 13, p.pos)
	require.EqualValues(t, 1, p.distance(p.pos))
	require.EqualValues(t, 0, newProbe(127, 127).slot(1))
}

func TestHashSplit(t *testing.T) {
	require.EqualValues(t, 0x7f, h2(0xffff))
	require.EqualValues(t, 0x1ff, h1(0xffff))
	require.EqualValues(t, 0, h2(0x80))
	require.EqualValues(t, 1, h1(0x80))
}

func TestGroupMatch(t *testing.T) {
	testCases := []struct {
		ctrls          []uint8
		h2             uint8
		h2Match        []uintptr
		empty          []uintptr
		emptyOrDeleted []uintptr
	}{
		{
			ctrls:   []uint8{0x1, 0x2, 0x3, 0x4, 0x6, 0x6, 0x7, 0x8},
			h2:      0x4,
			h2Match: []uintptr{3},
		},
		{
			ctrls:          []uint8{0x1, 0x2, 0x3, ctrlEmpty, 0x5, ctrlDeleted, 0x7, ctrlSentinel},
			h2:             0x7,
			h2Match:        []uintptr{6},
			empty:          []uintptr{3},
			emptyOrDeleted: []uintptr{3, 5},
		},
		{
			ctrls:          []uint8{0x9, ctrlEmpty, 0x9, ctrlEmpty, 0x5, 0x6, ctrlEmpty, 0x9},
			h2:             0x9,
			h2Match:        []uintptr{0, 2, 7},
			empty:          []uintptr{1, 3, 6},
			emptyOrDeleted: []uintptr{1, 3, 6},
		},
		{
			ctrls:          []uint8{ctrlSentinel, ctrlDeleted, ctrlDeleted, 0, 0, 0, 0, 0},
			h2:             0x7f,
			emptyOrDeleted: []uintptr{1, 2},
		},
	}
	for _, c := range testCases {
		t.Run("", func(t *testing.T) {
			g := loadGroup(c.ctrls, 0)
			require.Equal(t, c.h2Match, indexes(g.matchH2(c.h2)))
			require.Equal(t, c.empty, indexes(g.matchEmpty()))
			require.Equal(t, c.emptyOrDeleted, indexes(g.matchEmptyOrDeleted()))
		})
	}
}

func TestGroupStore(t *testing.T) {
	ctrls := make([]uint8, 2*groupSize)
	g := loadGroup([]uint8{1, 2, 3, 4, 5, 6, 7, 8}, 0)
	g.store(ctrls, 3)
	require.Equal(t, []uint8{0, 0, 0, 1, 2, 3, 4, 5, 6, 7, 8, 0, 0, 0, 0, 0}, ctrls)
	require.Equal(t, g, loadGroup(ctrls, 3))
}

func TestTombstoneFull(t *testing.T) {
	ctrls := make([]uint8, groupSize)
	expected := make([]uint8, groupSize)
	for i := 0; i < 100; i++ {
		for j := range ctrls {
			switch rand.IntN(4) {
			case 0:
				ctrls[j], expected[j] = ctrlEmpty, ctrlEmpty
			case 1:
				ctrls[j], expected[j] = ctrlDeleted, ctrlEmpty
			case 2:
				ctrls[j], expected[j] = ctrlSentinel, ctrlEmpty
			default:
				ctrls[j], expected[j] = uint8(rand.IntN(128)), ctrlDeleted
			}
		}
		loadGroup(ctrls, 0).tombstoneFull().store(ctrls, 0)
		require.Equal(t, expected, ctrls)
	}
}

func TestMatchesRuns(t *testing.T) {
	g := loadGroup([]uint8{0x1, 0x2, ctrlEmpty, 0x4, ctrlEmpty, 0x6, 0x7, 0x8}, 0)
	m := g.matchEmpty()
	require.Equal(t, "00101000", m.String())
	require.Equal(t, 2, m.leadingMisses())
	require.Equal(t, 3, m.trailingMisses())
	require.EqualValues(t, 2, m.first())
	require.EqualValues(t, 4, m.dropFirst().first())
}

func TestMatchH2FalsePositive(t *testing.T) {
	// h+1 right after h is reported too; find filters it with the key
	// comparison.
	e := ctrlEmpty
	g := loadGroup([]uint8{0x4, 0x5, e, e, e, e, e, e}, 0)
	require.Equal(t, []uintptr{0, 1}, indexes(g.matchH2(0x4)))
	require.Equal(t, []uintptr{1}, indexes(g.matchH2(0x5)))
}
