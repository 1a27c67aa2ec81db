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

//go:build linux

package perfcount

import (
	"fmt"

	"github.com/aclements/go-perfevent/events"
	"github.com/aclements/go-perfevent/perf"
)

// Counter is an open group of cycle and instruction counters pinned to the
// goroutine that called Open. Close must be called from the same goroutine.
type Counter struct {
	c   *perf.Counter
	buf [2]perf.Count
}

// Open starts counting cycles and instructions on the calling goroutine. The
// goroutine is locked to its OS thread until Close.
func Open() (*Counter, error) {
	c, err := perf.OpenCounter(perf.TargetThisGoroutine, events.EventCPUCycles, events.EventInstructions)
	if err != nil {
		return nil, fmt.Errorf("perfcount: opening counters: %w", err)
	}
	c.Start()
	return &Counter{c: c}, nil
}

// Read returns the current counts.
func (c *Counter) Read() (Sample, error) {
	if err := c.c.ReadGroup(c.buf[:]); err != nil {
		return Sample{}, fmt.Errorf("perfcount: reading counters: %w", err)
	}
	return Sample{
		Cycles:       c.buf[0].Value(),
		Instructions: c.buf[1].Value(),
	}, nil
}

// Close stops the counters and unlocks the goroutine from its OS thread.
func (c *Counter) Close() {
	c.c.Stop()
	c.c.Close()
}
