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

// Package hashskew measures what happens to hash tables when the low-order
// bits of a hash carry no information.
//
// A Key pairs a random 32-bit Datum with a Text that every key in a run
// shares. Two Strategies build a 64-bit hash by concatenating the Datum with
// a hash of the Text. The values are unique per key either way, but only
// NumericLow puts the varying half where tables look for it: tables that
// pick a bucket (or probe start) from the low bits send every NumericHigh
// key to the same place.
//
// Run times Populate+Clear cycles against a Table; an Experiment runs every
// Strategy against every configured table implementation and reports the
// runtime ratios.
package hashskew

// Key is a composite hash table key. Equality is structural.
type Key struct {
	Datum uint32
	Text  string
}

func keyEqual(a, b Key) bool {
	return a == b
}
