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
	"hash/fnv"
	"hash/maphash"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/twmb/murmur3"
)

// TextHash is a named 64-bit string hash. It plays the role of the platform
// string hash in the Strategies and must be deterministic within a process.
type TextHash struct {
	Name string
	Sum  func(s string) uint64
}

func (h TextHash) String() string {
	return h.Name
}

var processSeed = maphash.MakeSeed()

func fnv64a(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

var textHashes = []TextHash{
	{Name: "xxhash", Sum: xxhash.Sum64String},
	{Name: "murmur3", Sum: murmur3.StringSum64},
	{Name: "maphash", Sum: func(s string) uint64 { return maphash.String(processSeed, s) }},
	{Name: "fnv", Sum: fnv64a},
}

// DefaultTextHash is the text hash used when none is configured.
var DefaultTextHash = textHashes[0]

// TextHashes returns all available text hashes.
func TextHashes() []TextHash {
	return append([]TextHash(nil), textHashes...)
}

// TextHashByName returns the text hash with the given name.
func TextHashByName(name string) (TextHash, error) {
	for _, h := range textHashes {
		if strings.EqualFold(h.Name, name) {
			return h, nil
		}
	}
	return TextHash{}, fmt.Errorf("%w: unknown text hash %q", ErrInvalidConfig, name)
}
