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
	"hash/maphash"
	"math/rand/v2"
)

// hashFunc computes the hash of a key. seed is per-Map and changes on every
// Map, so a hash that mixes it in spreads differently across maps.
type hashFunc[K comparable] func(key K, seed uintptr) uintptr

// defaultHash hashes comparable values the way the builtin map does.
func defaultHash[K comparable]() hashFunc[K] {
	s := maphash.MakeSeed()
	return func(key K, seed uintptr) uintptr {
		return uintptr(maphash.Comparable(s, key)) ^ seed
	}
}

func newSeed() uintptr {
	return uintptr(rand.Uint64())
}
