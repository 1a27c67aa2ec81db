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

// ProbeStats counts the work done by Put. The counters are cumulative until
// Reset is called.
type ProbeStats struct {
	// Puts is the number of Put calls.
	Puts uint64
	// Groups is the number of control groups Put examined.
	Groups uint64
	// Compares is the number of key comparisons Put performed after an h2
	// match.
	Compares uint64
}

// Reset zeroes the counters.
func (s *ProbeStats) Reset() {
	*s = ProbeStats{}
}

// GroupsPerPut returns the mean number of groups probed per Put.
func (s *ProbeStats) GroupsPerPut() float64 {
	return s.perPut(s.Groups)
}

// ComparesPerPut returns the mean number of key comparisons per Put.
func (s *ProbeStats) ComparesPerPut() float64 {
	return s.perPut(s.Compares)
}

func (s *ProbeStats) perPut(n uint64) float64 {
	if s.Puts == 0 {
		return 0
	}
	return float64(n) / float64(s.Puts)
}
