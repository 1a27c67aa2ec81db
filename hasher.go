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

import "fmt"

const (
	lowMask  = 0x00000000FFFFFFFF
	highMask = 0xFFFFFFFF00000000
)

// Strategy is a way of concatenating the text hash and the Datum into a
// single 64-bit hash.
type Strategy int

const (
	// NumericLow keeps the high half of the text hash and puts the Datum in
	// the low 32 bits:
	//
	//	textHash&0xFFFFFFFF00000000 | Datum
	NumericLow Strategy = iota
	// NumericHigh puts the Datum in the high 32 bits and keeps the low half
	// of the text hash:
	//
	//	Datum<<32 | textHash&0xFFFFFFFF
	//
	// With a shared Text the low 32 bits are the same for every key.
	NumericHigh
)

// Strategies lists the strategies in reporting order.
var Strategies = []Strategy{NumericLow, NumericHigh}

// Combine returns the hash of a key whose text hashes to textHash.
func (s Strategy) Combine(textHash uint64, datum uint32) uint64 {
	switch s {
	case NumericLow:
		return textHash&highMask | uint64(datum)
	case NumericHigh:
		return uint64(datum)<<32 | textHash&lowMask
	default:
		panic(fmt.Sprintf("unknown strategy %d", int(s)))
	}
}

func (s Strategy) String() string {
	switch s {
	case NumericLow:
		return "numeric-low"
	case NumericHigh:
		return "numeric-high"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// Label is the short name used in reports: HasherA or HasherB.
func (s Strategy) Label() string {
	switch s {
	case NumericLow:
		return "HasherA"
	case NumericHigh:
		return "HasherB"
	default:
		return s.String()
	}
}

// Hasher binds a Strategy to a TextHash.
type Hasher struct {
	Strategy Strategy
	Text     TextHash
}

// NewHasher returns a Hasher using s over text.
func NewHasher(s Strategy, text TextHash) Hasher {
	return Hasher{Strategy: s, Text: text}
}

// Hash returns the 64-bit hash of k.
func (h Hasher) Hash(k *Key) uint64 {
	return h.Strategy.Combine(h.Text.Sum(k.Text), k.Datum)
}

func (h Hasher) String() string {
	return fmt.Sprintf("%s(%s)", h.Strategy, h.Text)
}
