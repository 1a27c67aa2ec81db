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

// Command hashskew times two hash layouts against two hash table
// implementations and prints how much slower each table gets when the low
// bits of the hash stop varying. Without flags it runs the reference
// experiment: 5 iterations of 20000 elements, swiss table against gomap.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/hashskew"
)

func main() {
	cfg := hashskew.DefaultConfig()
	impls := strings.Join(cfg.Impls, ",")

	flag.IntVar(&cfg.Iterations, "iterations", cfg.Iterations, "populate+clear cycles per run")
	flag.IntVar(&cfg.Elements, "elements", cfg.Elements, "keys inserted per cycle")
	flag.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "key generator seed (0 selects the default)")
	flag.StringVar(&cfg.Text, "text", cfg.Text, "text shared by every key")
	flag.StringVar(&cfg.TextHash, "text-hash", cfg.TextHash, "string hash: "+textHashNames())
	flag.StringVar(&impls, "impls", impls, "comma separated table implementations, ratio is first/second: "+implNames())
	flag.BoolVar(&cfg.Counters, "counters", cfg.Counters, "sample CPU cycles and instructions per iteration")
	flag.BoolVar(&cfg.Skew, "skew", cfg.Skew, "report the low-bit bucket spread of each hasher")
	flag.Parse()

	cfg.Impls = splitList(impls)
	cfg.Out = os.Stdout

	e, err := hashskew.NewExperiment(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hashskew: %v\n", err)
		if errors.Is(err, hashskew.ErrInvalidConfig) {
			flag.Usage()
		}
		os.Exit(2)
	}
	e.Run().Print(os.Stdout)
}

func splitList(s string) []string {
	var r []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			r = append(r, f)
		}
	}
	return r
}

func textHashNames() string {
	var names []string
	for _, h := range hashskew.TextHashes() {
		names = append(names, h.Name)
	}
	return strings.Join(names, ", ")
}

func implNames() string {
	var names []string
	for _, i := range hashskew.Impls() {
		names = append(names, i.Name)
	}
	return strings.Join(names, ", ")
}
