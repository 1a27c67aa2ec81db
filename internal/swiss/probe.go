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

import "fmt"

// probe walks the groups of a table in triangular order:
//
//	pos(i) = (h1 + groupSize*(i*i+i)/2) & mask
//
// The stride grows by groupSize each step, so two probes of one sequence
// never read overlapping bytes. Groups are unaligned: the mirrored control
// bytes past the sentinel let a group straddle the end of the array, and slot
// wraps indices back into range. (i*i+i)/2 is a bijection modulo a power of
// two, so the sequence visits every group before repeating.
type probe struct {
	mask   uintptr
	start  uintptr
	pos    uintptr
	stride uintptr
}

func newProbe(h1, mask uintptr) probe {
	return probe{mask: mask, start: h1 & mask, pos: h1 & mask}
}

func (p *probe) advance() {
	p.stride += groupSize
	p.pos = (p.pos + p.stride) & p.mask
}

// slot returns the table index of byte i of the current group.
func (p probe) slot(i uintptr) uintptr {
	return (p.pos + i) & p.mask
}

// distance returns the number of whole groups between the start of the
// sequence and index i.
func (p probe) distance(i uintptr) uintptr {
	return ((i - p.start) & p.mask) / groupSize
}

func (p probe) String() string {
	return fmt.Sprintf("mask=%d pos=%d stride=%d", p.mask, p.pos, p.stride)
}

// h1 selects the first group to probe: everything above the low 7 bits.
func h1(h uintptr) uintptr {
	return h >> 7
}

// h2 is what a full control byte stores: the low 7 bits.
func h2(h uintptr) uint8 {
	return uint8(h & 0x7f)
}
