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

package match

import (
	"errors"
	"testing"

	"github.com/zintix-labs/dicelab/sdk/grid"
)

func placeRow(g *grid.Grid, y int, dice ...grid.Die) {
	for x, d := range dice {
		g.SetDie(grid.Pos{X: x, Y: y}, d)
	}
}

func die(v int) grid.Die { return grid.Die{Faces: 6, Value: v} }
func wild() grid.Die     { return grid.Die{Faces: 6, Wild: true} }
func joiner() grid.Die   { return grid.Die{Faces: 6, Joiner: true} }

func TestDetectHorizontalRun(t *testing.T) {
	g := grid.New(5, 5)
	placeRow(g, 0, die(4), die(4), die(4), die(2), die(2))

	groups := NewDetector().Detect(g, 3)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	gr := groups[0]
	if gr.Size() != 3 || gr.FaceValue != 4 {
		t.Fatalf("unexpected group: size=%d face=%d", gr.Size(), gr.FaceValue)
	}
}

func TestDetectNoDiagonal(t *testing.T) {
	g := grid.New(3, 3)
	// 對角線三顆同值：不相連
	g.SetDie(grid.Pos{X: 0, Y: 0}, die(5))
	g.SetDie(grid.Pos{X: 1, Y: 1}, die(5))
	g.SetDie(grid.Pos{X: 2, Y: 2}, die(5))

	if groups := NewDetector().Detect(g, 3); len(groups) != 0 {
		t.Fatalf("diagonal neighbors must not match, got %d groups", len(groups))
	}
}

func TestDetectWildBridges(t *testing.T) {
	g := grid.New(3, 1)
	placeRow(g, 0, die(2), wild(), die(2))

	groups := NewDetector().Detect(g, 3)
	if len(groups) != 1 {
		t.Fatalf("wild should bridge equal faces, got %d groups", len(groups))
	}
	if groups[0].FaceValue != 2 {
		t.Fatalf("representative face should skip wild, got %d", groups[0].FaceValue)
	}
}

func TestDetectWildBridgesUnequalFaces(t *testing.T) {
	// wild 與兩側各自相連，flood fill 把 2-W-5 收進同一成份
	g := grid.New(3, 1)
	placeRow(g, 0, die(2), wild(), die(5))

	groups := NewDetector().Detect(g, 3)
	if len(groups) != 1 {
		t.Fatalf("wild links both neighbors, got %d groups", len(groups))
	}
}

func TestDetectJoinerDoesNotMergeSides(t *testing.T) {
	// joiner 放寬自身鄰接：2-J-5 成為一個成份，
	// 但代表面值取掃描順序第一顆非特殊骰
	g := grid.New(3, 1)
	placeRow(g, 0, die(2), joiner(), die(5))

	groups := NewDetector().Detect(g, 3)
	if len(groups) != 1 {
		t.Fatalf("joiner adjacency should form one component, got %d", len(groups))
	}
	if groups[0].FaceValue != 2 {
		t.Fatalf("representative face should be first non-special die, got %d", groups[0].FaceValue)
	}
}

func TestDetectAllWildGroup(t *testing.T) {
	g := grid.New(3, 1)
	placeRow(g, 0, wild(), wild(), wild())

	groups := NewDetector().Detect(g, 3)
	if len(groups) != 1 {
		t.Fatalf("all-wild run should match, got %d groups", len(groups))
	}
	if groups[0].FaceValue != 0 {
		t.Fatalf("all-wild group has no representative face, got %d", groups[0].FaceValue)
	}
}

func TestDetectMinMatchBoundary(t *testing.T) {
	g := grid.New(4, 1)
	placeRow(g, 0, die(3), die(3))

	d := NewDetector()
	if groups := d.Detect(g, 3); len(groups) != 0 {
		t.Fatalf("pair below min match must not emit")
	}
	if groups := d.Detect(g, 2); len(groups) != 1 {
		t.Fatalf("pair should match with minMatch=2")
	}
	// minMatch <= 0 退化成預設 3
	if groups := d.Detect(g, 0); len(groups) != 0 {
		t.Fatalf("default min match should reject the pair")
	}
}

func TestDetectScanOrderStable(t *testing.T) {
	g := grid.New(5, 2)
	// 兩個群：面值 1 在左下，面值 6 在上排
	placeRow(g, 0, die(1), die(1), die(1))
	placeRow(g, 1, die(6), die(6), die(6), die(6))

	d := NewDetector()
	g1 := d.Detect(g, 3)
	g2 := d.Detect(g, 3)
	if len(g1) != len(g2) {
		t.Fatalf("repeated detect should agree: %d vs %d", len(g1), len(g2))
	}
	for i := range g1 {
		if g1[i].Size() != g2[i].Size() || g1[i].FaceValue != g2[i].FaceValue {
			t.Fatalf("detect output not deterministic at group %d", i)
		}
		for j := 1; j < len(g1[i].Positions); j++ {
			a, b := g1[i].Positions[j-1], g1[i].Positions[j]
			if scanKey(g.Cols(), a) >= scanKey(g.Cols(), b) {
				t.Fatalf("positions not in scan order: %+v before %+v", a, b)
			}
		}
	}
}

func TestDetectDoesNotMutateGrid(t *testing.T) {
	g := grid.New(4, 4)
	placeRow(g, 0, die(2), die(2), die(2), die(3))
	before := g.OccupiedCount()

	NewDetector().Detect(g, 3)
	if g.OccupiedCount() != before {
		t.Fatalf("detect must not mutate the grid")
	}
}

// fakeArea 記錄轉換 hook 被呼叫的位置。
type fakeArea struct {
	g     *grid.Grid
	calls []grid.Pos
}

func (f *fakeArea) GetCell(p grid.Pos) grid.Cell      { return f.g.GetCell(p) }
func (f *fakeArea) LockCell(p grid.Pos, d grid.Die)   { f.g.SetDie(p, d) }
func (f *fakeArea) IsValidPosition(x int, y int) bool { return f.g.IsValidPosition(x, y) }

func TestDetectWithConversion(t *testing.T) {
	g := grid.New(3, 1)
	placeRow(g, 0, die(4), joiner(), die(4))

	area := &fakeArea{g: g}
	fn := func(ad AreaAdapter, at grid.Pos, j grid.Die) error {
		area.calls = append(area.calls, at)
		return nil
	}

	groups := NewDetector().DetectWithConversion(g, 3, area, fn, nil)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	if len(area.calls) != 1 || area.calls[0] != (grid.Pos{X: 1, Y: 0}) {
		t.Fatalf("conversion should run once on the joiner, got %v", area.calls)
	}
}

func TestDetectWithConversionSurvivesHookFailure(t *testing.T) {
	g := grid.New(3, 1)
	placeRow(g, 0, joiner(), joiner(), joiner())

	area := &fakeArea{g: g}
	n := 0
	fn := func(ad AreaAdapter, at grid.Pos, j grid.Die) error {
		n++
		if n == 1 {
			return errors.New("boom")
		}
		if n == 2 {
			panic("boom")
		}
		return nil
	}

	groups := NewDetector().DetectWithConversion(g, 3, area, fn, nil)
	if len(groups) != 1 {
		t.Fatalf("hook failures must not drop groups")
	}
	if n != 3 {
		t.Fatalf("hook should run for every joiner, got %d calls", n)
	}
}
