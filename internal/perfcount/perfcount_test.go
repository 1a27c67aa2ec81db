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

package perfcount

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSampleSub(t *testing.T) {
	a := Sample{Cycles: 1000, Instructions: 2500}
	b := Sample{Cycles: 400, Instructions: 500}
	d := a.Sub(b)
	require.EqualValues(t, 600, d.Cycles)
	require.EqualValues(t, 2000, d.Instructions)
	require.InDelta(t, 2000.0/600.0, d.IPC(), 1e-12)
	require.Zero(t, Sample{}.IPC())
}

func TestOpen(t *testing.T) {
	c, err := Open()
	if err != nil {
		// Containers and CI machines commonly forbid perf_event_open.
		if errors.Is(err, ErrUnsupported) {
			t.Skip(err)
		}
		t.Skipf("counters unavailable: %v", err)
	}
	defer c.Close()

	before, err := c.Read()
	require.NoError(t, err)
	var x uint64
	for i := uint64(0); i < 1_000_000; i++ {
		x += i * i
	}
	after, err := c.Read()
	require.NoError(t, err)
	require.NotZero(t, x)
	require.GreaterOrEqual(t, after.Instructions, before.Instructions)
	require.GreaterOrEqual(t, after.Cycles, before.Cycles)
}
