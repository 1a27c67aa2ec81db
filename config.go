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
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrInvalidConfig is wrapped by every configuration error.
var ErrInvalidConfig = errors.New("invalid config")

// DefaultText is the text every key shares.
const DefaultText = "all elements share the same text"

// Config configures an Experiment.
type Config struct {
	// Iterations is the number of populate+clear cycles per run.
	Iterations int
	// Elements is the number of keys inserted per cycle.
	Elements int
	// Seed seeds the key generator. Zero selects DefaultSeed.
	Seed uint64
	// Text is shared by every key.
	Text string
	// TextHash names the string hash fed to the strategies.
	TextHash string
	// Impls names the table implementations to run, in order. The ratio
	// reported for each strategy is Impls[0] runtime over Impls[1] runtime.
	Impls []string
	// Counters samples CPU cycles and instructions per iteration.
	Counters bool
	// Skew adds the low-bit bucket spread of each strategy to the report.
	Skew bool
	// Out receives progress lines. Nil means os.Stdout.
	Out io.Writer
}

// DefaultConfig returns the configuration of the reference experiment: 5
// iterations of 20000 elements, swiss table against gomap.
func DefaultConfig() Config {
	return Config{
		Iterations: 5,
		Elements:   20000,
		Seed:       DefaultSeed,
		Text:       DefaultText,
		TextHash:   DefaultTextHash.Name,
		Impls:      []string{"swiss", "gomap"},
		Skew:       true,
		Out:        os.Stdout,
	}
}

// Validate checks the configuration. The returned error wraps
// ErrInvalidConfig.
func (c Config) Validate() error {
	if c.Iterations <= 0 {
		return fmt.Errorf("%w: iterations must be positive, got %d", ErrInvalidConfig, c.Iterations)
	}
	if c.Elements < 0 {
		return fmt.Errorf("%w: elements must not be negative, got %d", ErrInvalidConfig, c.Elements)
	}
	if _, err := TextHashByName(c.TextHash); err != nil {
		return err
	}
	if len(c.Impls) < 2 {
		return fmt.Errorf("%w: need two table implementations to compare, got %d", ErrInvalidConfig, len(c.Impls))
	}
	seen := make(map[string]bool, len(c.Impls))
	for _, name := range c.Impls {
		impl, err := ImplByName(name)
		if err != nil {
			return err
		}
		if seen[impl.Name] {
			return fmt.Errorf("%w: table implementation %q listed twice", ErrInvalidConfig, impl.Name)
		}
		seen[impl.Name] = true
	}
	return nil
}

func (c Config) seed() uint64 {
	if c.Seed == 0 {
		return DefaultSeed
	}
	return c.Seed
}

func (c Config) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}
