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

// Package perfcount samples CPU cycle and instruction counts for the calling
// goroutine, so a benchmark iteration can be described by more than its wall
// clock time.
package perfcount

import "errors"

// ErrUnsupported is returned by Open on platforms without perf events.
var ErrUnsupported = errors.New("perfcount: hardware counters not supported on this platform")

// Sample is a reading of the counters. Values are cumulative since Open.
type Sample struct {
	Cycles       uint64
	Instructions uint64
}

// Sub returns the counts accumulated between prev and s.
func (s Sample) Sub(prev Sample) Sample {
	return Sample{
		Cycles:       s.Cycles - prev.Cycles,
		Instructions: s.Instructions - prev.Instructions,
	}
}

// IPC returns instructions per cycle, or 0 if no cycles were counted.
func (s Sample) IPC() float64 {
	if s.Cycles == 0 {
		return 0
	}
	return float64(s.Instructions) / float64(s.Cycles)
}
