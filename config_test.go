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
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 5, cfg.Iterations)
	require.Equal(t, 20000, cfg.Elements)
	require.Equal(t, DefaultSeed, cfg.seed())
	require.Equal(t, DefaultText, cfg.Text)
	require.Equal(t, []string{"swiss", "gomap"}, cfg.Impls)
	require.Equal(t, os.Stdout, cfg.out())
}

func TestConfigSeed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 0
	require.Equal(t, DefaultSeed, cfg.seed())
	cfg.Seed = 99
	require.EqualValues(t, 99, cfg.seed())
}

func TestConfigValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero-iterations", func(c *Config) { c.Iterations = 0 }},
		{"negative-elements", func(c *Config) { c.Elements = -1 }},
		{"unknown-text-hash", func(c *Config) { c.TextHash = "sha1" }},
		{"one-impl", func(c *Config) { c.Impls = []string{"swiss"} }},
		{"unknown-impl", func(c *Config) { c.Impls = []string{"swiss", "btree"} }},
		{"duplicate-impl", func(c *Config) { c.Impls = []string{"swiss", "SWISS"} }},
	}
	for _, c := range testCases {
		t.Run(c.name, func(t *testing.T) {
			cfg := DefaultConfig()
			c.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrInvalidConfig), "%v", err)
		})
	}

	cfg := DefaultConfig()
	cfg.Elements = 0
	cfg.Impls = []string{"gomap", "builtin", "swiss"}
	require.NoError(t, cfg.Validate())
}
