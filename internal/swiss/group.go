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
	"encoding/binary"
	"math/bits"
	"strings"
)

// Control byte states:
//
//	   empty: 1 0 0 0 0 0 0 0
//	 deleted: 1 1 1 1 1 1 1 0
//	    full: 0 h h h h h h h  // h2(hash)
//	sentinel: 1 1 1 1 1 1 1 1
const (
	ctrlEmpty    uint8 = 0b10000000
	ctrlDeleted  uint8 = 0b11111110
	ctrlSentinel uint8 = 0b11111111

	lsbs = 0x0101010101010101
	msbs = 0x8080808080808080
)

// isFull reports whether c holds an entry.
func isFull(c uint8) bool {
	return c&ctrlEmpty == 0
}

// group is groupSize control bytes read as one little-endian word, so byte i
// of the group is bits [8i, 8i+8).
type group uint64

func loadGroup(ctrls []uint8, i uintptr) group {
	return group(binary.LittleEndian.Uint64(ctrls[i : i+groupSize]))
}

func (g group) store(ctrls []uint8, i uintptr) {
	binary.LittleEndian.PutUint64(ctrls[i:i+groupSize], uint64(g))
}

// matchH2 returns the bytes of g equal to h.
//
// A byte equal to h+1 directly after a byte equal to h can be reported as
// well. That never happens on a non-full byte, and the key comparison that
// follows a match discards it.
func (g group) matchH2(h uint8) matches {
	v := uint64(g) ^ (lsbs * uint64(h))
	return matches(((v - lsbs) &^ v) & msbs)
}

// matchEmpty returns the empty bytes of g: the only state with bit 7 set and
// bit 1 clear.
func (g group) matchEmpty() matches {
	v := uint64(g)
	return matches((v &^ (v << 6)) & msbs)
}

// matchEmptyOrDeleted returns the empty and deleted bytes of g: the only
// states with bit 7 set and bit 0 clear.
func (g group) matchEmptyOrDeleted() matches {
	v := uint64(g)
	return matches((v &^ (v << 7)) & msbs)
}

// tombstoneFull turns every full byte of g into deleted and every other byte
// into empty. With m the high bit of a byte, (^m + m>>7) &^ 1 maps 0x80 to
// 0x80 and 0x00 to 0xfe.
func (g group) tombstoneFull() group {
	v := uint64(g) & msbs
	return group((^v + (v >> 7)) &^ lsbs)
}

// matches has the high bit set in every byte of a group that matched.
type matches uint64

// first returns the index within the group of the lowest matching byte.
func (m matches) first() uintptr {
	return uintptr(bits.TrailingZeros64(uint64(m)) / 8)
}

// dropFirst removes the lowest matching byte.
func (m matches) dropFirst() matches {
	return m & (m - 1)
}

// leadingMisses is the number of unmatched bytes at the start of the group.
func (m matches) leadingMisses() int {
	return bits.TrailingZeros64(uint64(m)) / 8
}

// trailingMisses is the number of unmatched bytes at the end of the group.
func (m matches) trailingMisses() int {
	return bits.LeadingZeros64(uint64(m)) / 8
}

func (m matches) String() string {
	var buf strings.Builder
	buf.Grow(groupSize)
	for i := 0; i < groupSize; i++ {
		if m&(matches(0x80)<<(8*i)) != 0 {
			buf.WriteByte('1')
		} else {
			buf.WriteByte('0')
		}
	}
	return buf.String()
}
