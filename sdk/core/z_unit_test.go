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

package core

import (
	"math"
	"slices"
	"testing"
)

func TestCoreDeterminism(t *testing.T) {
	c1 := New(Default().New(7))
	c2 := New(Default().New(7))
	for i := 0; i < 5; i++ {
		if c1.Uint64() != c2.Uint64() {
			t.Fatalf("Uint64 mismatch at %d", i)
		}
	}

	c3 := New(Default().New(8))
	same := true
	for i := 0; i < 5; i++ {
		if c1.Uint64() != c3.Uint64() {
			same = false
		}
	}
	if same {
		t.Fatalf("different seeds should diverge")
	}
}

func TestBoundedSampling(t *testing.T) {
	c := New(Default().New(42))

	for i := 0; i < 1000; i++ {
		if v := c.IntN(10); v < 0 || v >= 10 {
			t.Fatalf("IntN out of range: %d", v)
		}
		if v := c.UintN(10); v >= 10 {
			t.Fatalf("UintN out of range: %d", v)
		}
		if f := c.Float64(); f < 0 || f >= 1 {
			t.Fatalf("Float64 out of range: %v", f)
		}
	}

	if c.IntN(0) != -1 || c.IntN(-5) != -1 {
		t.Fatalf("IntN with max <= 0 should return -1")
	}
	if c.UintN(0) != 0 {
		t.Fatalf("UintN with max == 0 should return 0")
	}
}

func TestRollFace(t *testing.T) {
	c := New(Default().New(1))
	seen := make(map[int]bool)
	for i := 0; i < 2000; i++ {
		v := c.RollFace(6)
		if v < 1 || v > 6 {
			t.Fatalf("RollFace out of range: %d", v)
		}
		seen[v] = true
	}
	for f := 1; f <= 6; f++ {
		if !seen[f] {
			t.Fatalf("face %d never rolled", f)
		}
	}
	if c.RollFace(0) != 1 {
		t.Fatalf("RollFace with faces < 1 should fail closed to 1")
	}
}

func TestPickAndShuffle(t *testing.T) {
	c := New(Default().New(3))

	if c.Pick(nil) != -1 {
		t.Fatalf("Pick on empty slice should return -1")
	}
	src := []int{10, 20, 30}
	for i := 0; i < 100; i++ {
		if v := c.Pick(src); v != 10 && v != 20 && v != 30 {
			t.Fatalf("Pick returned a value outside the list: %d", v)
		}
	}

	xs := []int{1, 2, 3, 4, 5, 6, 7, 8}
	want := slices.Clone(xs)
	c.ShuffleInts(xs)
	slices.Sort(xs)
	if !slices.Equal(xs, want) {
		t.Fatalf("shuffle must be a permutation: %v", xs)
	}
}

func TestSnapshotRestoreReplaysSequence(t *testing.T) {
	rng := Default().New(99)
	c := New(rng)

	// 先消耗一些狀態
	for i := 0; i < 10; i++ {
		c.Uint64()
	}

	snap, err := rng.Snapshot()
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}

	first := make([]uint64, 8)
	for i := range first {
		first[i] = c.Uint64()
	}

	if err := rng.Restore(snap); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	for i := range first {
		if got := c.Uint64(); got != first[i] {
			t.Fatalf("replay mismatch at %d: got %d want %d", i, got, first[i])
		}
	}
}

func TestFloat64Distribution(t *testing.T) {
	c := New(Default().New(5))
	sum := 0.0
	n := 100000
	for i := 0; i < n; i++ {
		sum += c.Float64()
	}
	mean := sum / float64(n)
	if math.Abs(mean-0.5) > 0.01 {
		t.Fatalf("Float64 mean too far from 0.5: %v", mean)
	}
}
