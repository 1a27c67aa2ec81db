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

import "math/bits"

// Skew describes how a set of hashes spreads over 2^Bits buckets selected by
// the low Bits bits of each hash, the reduction used by power-of-two tables.
type Skew struct {
	Bits    uint
	Keys    int
	Used    int
	MaxLoad int
}

// Buckets returns the number of buckets, 2^Bits.
func (s Skew) Buckets() int {
	return 1 << s.Bits
}

// MeanLoad returns the average number of keys in a used bucket.
func (s Skew) MeanLoad() float64 {
	if s.Used == 0 {
		return 0
	}
	return float64(s.Keys) / float64(s.Used)
}

// BucketBits returns the number of low bits a power-of-two table sized for n
// entries would use.
func BucketBits(n int) uint {
	if n <= 1 {
		return 1
	}
	return uint(bits.Len(uint(n - 1)))
}

// AnalyzeSkew hashes keys with h and counts how they fall into buckets
// selected by the low bucketBits bits.
func AnalyzeSkew(h Hasher, keys []Key, bucketBits uint) Skew {
	mask := uint64(1)<<bucketBits - 1
	loads := make(map[uint64]int)
	s := Skew{Bits: bucketBits, Keys: len(keys)}
	for i := range keys {
		b := h.Hash(&keys[i]) & mask
		loads[b]++
		if l := loads[b]; l > s.MaxLoad {
			s.MaxLoad = l
		}
	}
	s.Used = len(loads)
	return s
}
