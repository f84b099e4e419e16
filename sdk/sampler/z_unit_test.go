// Copyright 2025 Zintix Labs
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

package sampler

import (
	"math"
	"testing"

	"github.com/zintix-labs/dicelab/sdk/core"
)

// -----------------------------------------------------------------------------
// Helper Functions
// -----------------------------------------------------------------------------

func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("%s should panic", name)
		}
	}()
	fn()
}

func sampleDist(at *AliasTable, n int) []int {
	c := core.New(core.Default().New(12345))
	counts := make([]int, at.Size)
	for i := 0; i < n; i++ {
		counts[at.Pick(c)]++
	}
	return counts
}

// -----------------------------------------------------------------------------
// Tests
// -----------------------------------------------------------------------------

func TestBuildAliasTableInvariants(t *testing.T) {
	weights := []int{1, 3, 6}
	at := BuildAliasTable(weights)

	if at.Size != 3 || at.Total != 10 {
		t.Fatalf("unexpected table: size=%d total=%d", at.Size, at.Total)
	}
	// 每槽的自留機率落在 [0, total]，別名索引落在表內
	for i, p := range at.Prob {
		if p < 0 || p > at.Total {
			t.Fatalf("slot %d prob %d out of [0, %d]", i, p, at.Total)
		}
		if at.Aliases[i] < 0 || at.Aliases[i] >= at.Size {
			t.Fatalf("slot %d alias %d out of range", i, at.Aliases[i])
		}
	}
}

func TestBuildAliasTableRejectsBadWeights(t *testing.T) {
	mustPanic(t, "negative weight", func() { BuildAliasTable([]int{1, -1}) })
	mustPanic(t, "all zero", func() { BuildAliasTable([]int{0, 0, 0}) })
	mustPanic(t, "overflow", func() { BuildAliasTable([]int{math.MaxInt / 2, math.MaxInt / 2}) })
}

func TestBuildAliasTableEmpty(t *testing.T) {
	at := BuildAliasTable(nil)
	if at.Size != 0 {
		t.Fatalf("empty table size should be 0")
	}
	c := core.New(core.Default().New(1))
	if at.Pick(c) != -1 {
		t.Fatalf("pick on empty table should return -1")
	}
}

func TestPickMatchesWeights(t *testing.T) {
	weights := []int{1, 2, 7}
	at := BuildAliasTable(weights)

	n := 200000
	counts := sampleDist(at, n)

	for i, w := range weights {
		want := float64(w) / 10.0
		got := float64(counts[i]) / float64(n)
		if math.Abs(got-want) > 0.01 {
			t.Fatalf("slot %d frequency %.4f, want ~%.4f", i, got, want)
		}
	}
}

func TestPickZeroWeightNeverDrawn(t *testing.T) {
	at := BuildAliasTable([]int{5, 0, 5})
	counts := sampleDist(at, 50000)
	if counts[1] != 0 {
		t.Fatalf("zero-weight slot drawn %d times", counts[1])
	}
}

func TestPickSingleSlot(t *testing.T) {
	at := BuildAliasTable([]int{42})
	c := core.New(core.Default().New(7))
	for i := 0; i < 100; i++ {
		if at.Pick(c) != 0 {
			t.Fatalf("single slot table must always return 0")
		}
	}
}
