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

import "math/rand/v2"

// DefaultSeed seeds the key generator when no seed is configured. It is the
// default seed of the Mersenne Twister engine.
const DefaultSeed uint64 = 5489

// NewRand returns a generator seeded with seed. Two generators built from
// the same seed produce the same keys.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// Populate inserts n keys into t. Each key has a Datum drawn uniformly from
// the full 32-bit range and the shared text; the i-th key maps to i%256. A
// repeated Datum overwrites the earlier entry, so t may end up with fewer
// than n entries.
func Populate(rng *rand.Rand, n int, text string, t Table) {
	for i := 0; i < n; i++ {
		t.Put(Key{Datum: rng.Uint32(), Text: text}, uint8(i%256))
	}
}

// GenerateKeys returns the n keys Populate would insert with rng.
func GenerateKeys(rng *rand.Rand, n int, text string) []Key {
	keys := make([]Key, n)
	for i := range keys {
		keys[i] = Key{Datum: rng.Uint32(), Text: text}
	}
	return keys
}
