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
	"io"
	"time"

	"github.com/cockroachdb/hashskew/internal/perfcount"
)

// RunConfig configures a single Run.
type RunConfig struct {
	Iterations int
	Elements   int
	Seed       uint64
	Text       string
	// Counters samples CPU cycles and instructions per iteration. If the
	// platform refuses, Run notes it on Out and continues without them.
	Counters bool
	Out      io.Writer
}

// Sample is the measurement of one populate+clear iteration.
type Sample struct {
	Duration time.Duration
	// Counts is valid when Counted is set: counters were enabled and both
	// readings around the iteration succeeded.
	Counts  perfcount.Sample
	Counted bool
}

// Result is the outcome of a Run.
type Result struct {
	Samples []Sample
	// Total is the sum of the sample durations.
	Total time.Duration
	// Probes is set for tables that implement Prober.
	Probes *ProbeSummary
}

// Seconds returns Total in seconds.
func (r Result) Seconds() float64 {
	return r.Total.Seconds()
}

// Mean returns the average iteration time in seconds.
func (r Result) Mean() float64 {
	if len(r.Samples) == 0 {
		return 0
	}
	return r.Total.Seconds() / float64(len(r.Samples))
}

// Run reserves cfg.Elements entries in t and then times cfg.Iterations
// cycles of Populate followed by Clear. Every iteration starts a fresh
// generator from cfg.Seed, so all iterations insert the same keys.
func Run(cfg RunConfig, t Table) Result {
	out := cfg.Out
	if out == nil {
		out = io.Discard
	}

	var counter sampler
	if cfg.Counters {
		c, err := perfcount.Open()
		if err != nil {
			fmt.Fprintf(out, "Hardware counters unavailable: %v\n", err)
		} else {
			counter = c
			defer c.Close()
		}
	}

	t.Reserve(cfg.Elements)

	r := Result{Samples: make([]Sample, 0, cfg.Iterations)}
	for i := 0; i < cfg.Iterations; i++ {
		fmt.Fprintf(out, "Iteration %d started... ", i)

		s := measure(counter, func() {
			Populate(NewRand(cfg.Seed), cfg.Elements, cfg.Text, t)
			t.Clear()
		})
		r.Samples = append(r.Samples, s)
		r.Total += s.Duration

		fmt.Fprintf(out, "ended. Duration: %.3f", float64(s.Duration.Milliseconds())/1000)
		if s.Counted {
			fmt.Fprintf(out, " cycles: %d instructions: %d IPC: %.2f",
				s.Counts.Cycles, s.Counts.Instructions, s.Counts.IPC())
		}
		fmt.Fprintln(out)
	}

	// Counting probes slows Put down, so it happens after the timed
	// iterations on a separate table fed the same keys.
	if prober, ok := t.(Prober); ok {
		keys := GenerateKeys(NewRand(cfg.Seed), cfg.Elements, cfg.Text)
		p := prober.Probes(keys, cfg.Elements)
		r.Probes = &p
	}

	fmt.Fprintf(out, "Total duration: %g; Average duration: %g\n", r.Seconds(), r.Mean())
	return r
}

type sampler interface {
	Read() (perfcount.Sample, error)
}

// measure times fn. When c is not nil and both counter readings succeed the
// counter delta is recorded too.
func measure(c sampler, fn func()) Sample {
	var before perfcount.Sample
	var err error
	if c != nil {
		before, err = c.Read()
	}
	start := time.Now()
	fn()
	s := Sample{Duration: time.Since(start)}
	if c == nil || err != nil {
		return s
	}
	if after, err := c.Read(); err == nil {
		s.Counts, s.Counted = after.Sub(before), true
	}
	return s
}
