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
)

// Experiment runs every Strategy against every configured table
// implementation, one run at a time.
type Experiment struct {
	cfg   Config
	text  TextHash
	impls []Impl
}

// NewExperiment validates cfg and resolves the names it refers to.
func NewExperiment(cfg Config) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	text, err := TextHashByName(cfg.TextHash)
	if err != nil {
		return nil, err
	}
	e := &Experiment{cfg: cfg, text: text}
	for _, name := range cfg.Impls {
		impl, err := ImplByName(name)
		if err != nil {
			return nil, err
		}
		e.impls = append(e.impls, impl)
	}
	return e, nil
}

// ImplResult is the Result of one table implementation.
type ImplResult struct {
	Impl   Impl
	Result Result
}

// StrategyReport holds the runs of every implementation for one Strategy.
type StrategyReport struct {
	Strategy Strategy
	Hasher   Hasher
	Results  []ImplResult
	// Skew is set when Config.Skew is enabled.
	Skew *Skew
}

// Result returns the result for the named implementation.
func (sr StrategyReport) Result(impl string) (Result, bool) {
	for _, r := range sr.Results {
		if r.Impl.Name == impl {
			return r.Result, true
		}
	}
	return Result{}, false
}

// Ratio returns the runtime of the first implementation divided by the
// runtime of the second. It returns 0 if the second took no measurable time.
func (sr StrategyReport) Ratio() float64 {
	if len(sr.Results) < 2 {
		return 0
	}
	num, den := sr.Results[0].Result.Seconds(), sr.Results[1].Result.Seconds()
	if den == 0 {
		return 0
	}
	return num / den
}

// Report is the outcome of an Experiment.
type Report struct {
	Iterations int
	Elements   int
	TextHash   string
	Strategies []StrategyReport
}

// Run executes the experiment. Progress lines go to Config.Out as each run
// proceeds.
func (e *Experiment) Run() *Report {
	out := e.cfg.out()
	rep := &Report{
		Iterations: e.cfg.Iterations,
		Elements:   e.cfg.Elements,
		TextHash:   e.text.Name,
	}
	runCfg := RunConfig{
		Iterations: e.cfg.Iterations,
		Elements:   e.cfg.Elements,
		Seed:       e.cfg.seed(),
		Text:       e.cfg.Text,
		Counters:   e.cfg.Counters,
		Out:        out,
	}

	for _, s := range Strategies {
		h := NewHasher(s, e.text)
		sr := StrategyReport{Strategy: s, Hasher: h}
		for _, impl := range e.impls {
			fmt.Fprintf(out, "Running %s with %s %s\n", impl.Name, s.Label(), h)
			t := impl.New(h)
			sr.Results = append(sr.Results, ImplResult{Impl: impl, Result: Run(runCfg, t)})
		}
		if e.cfg.Skew {
			keys := GenerateKeys(NewRand(runCfg.Seed), e.cfg.Elements, e.cfg.Text)
			skew := AnalyzeSkew(h, keys, BucketBits(e.cfg.Elements))
			sr.Skew = &skew
		}
		rep.Strategies = append(rep.Strategies, sr)
	}
	return rep
}

// Print writes the summary block: the runtime of every implementation for
// each strategy and the ratio of the first two.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintf(w, "Number of iterations %d\n", r.Iterations)
	fmt.Fprintf(w, "Number of elements handled per iteration %d\n", r.Elements)
	fmt.Fprintf(w, "Text hash %s\n", r.TextHash)
	for _, sr := range r.Strategies {
		// Runtimes are listed with the ratio denominator first.
		order := make([]ImplResult, 0, len(sr.Results))
		if len(sr.Results) >= 2 {
			order = append(order, sr.Results[1], sr.Results[0])
			order = append(order, sr.Results[2:]...)
		} else {
			order = append(order, sr.Results...)
		}
		for _, ir := range order {
			fmt.Fprintf(w, "%s runtime - %s: %g\n", ir.Impl.Name, sr.Strategy.Label(), ir.Result.Seconds())
		}
		if len(sr.Results) >= 2 {
			fmt.Fprintf(w, "Ratio (%s/%s): %g\n",
				sr.Results[0].Impl.Name, sr.Results[1].Impl.Name, sr.Ratio())
		}
		for _, ir := range sr.Results {
			if p := ir.Result.Probes; p != nil {
				fmt.Fprintf(w, "%s probes per put - %s: groups %.2f compares %.2f\n",
					ir.Impl.Name, sr.Strategy.Label(), p.GroupsPerPut, p.ComparesPerPut)
			}
		}
		if s := sr.Skew; s != nil {
			fmt.Fprintf(w, "%s (%s) low %d bits: %d of %d buckets used, max load %d, mean load %.2f\n",
				sr.Strategy.Label(), sr.Strategy, s.Bits, s.Used, s.Buckets(), s.MaxLoad, s.MeanLoad())
		}
	}
}
