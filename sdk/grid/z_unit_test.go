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

package grid

import (
	"math"
	"testing"
)

func TestArrayRowSelfInverse(t *testing.T) {
	rows := 7
	for y := 0; y < rows; y++ {
		if got := ArrayRow(rows, ArrayRow(rows, y)); got != y {
			t.Fatalf("ArrayRow not self-inverse at y=%d: got %d", y, got)
		}
	}
	if ArrayRow(7, 0) != 6 {
		t.Fatalf("logical bottom should map to last array row")
	}
}

func TestIndexPosOfBijection(t *testing.T) {
	cols, rows := 5, 6
	seen := make(map[int]bool, cols*rows)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			p := Pos{X: x, Y: y}
			idx := Index(cols, rows, p)
			if idx < 0 || idx >= cols*rows {
				t.Fatalf("index out of range: %d for %+v", idx, p)
			}
			if seen[idx] {
				t.Fatalf("duplicate index %d for %+v", idx, p)
			}
			seen[idx] = true
			if back := PosOf(cols, rows, idx); back != p {
				t.Fatalf("PosOf(Index(%+v)) = %+v", p, back)
			}
		}
	}
}

func TestGridFailClosed(t *testing.T) {
	g := New(3, 3)

	// 非法寫入不應 panic 也不應生效
	g.SetDie(Pos{X: -1, Y: 0}, Die{Value: 1})
	g.SetDie(Pos{X: 0, Y: 3}, Die{Value: 1})
	if g.OccupiedCount() != 0 {
		t.Fatalf("out of range write should be ignored")
	}

	if c := g.GetCell(Pos{X: 9, Y: 9}); c.Occupied {
		t.Fatalf("out of range read should return empty cell")
	}
	if g.IsEmpty(-1, 0) {
		t.Fatalf("out of range IsEmpty should be false")
	}
	if c := g.CellAtIndex(99); c.Occupied {
		t.Fatalf("out of range CellAtIndex should return empty cell")
	}
}

func TestGridSetGetClear(t *testing.T) {
	g := New(4, 4)
	d := Die{ID: 1, Faces: 6, Value: 3, Color: 2}
	p := Pos{X: 2, Y: 0}

	g.SetDie(p, d)
	c := g.GetCell(p)
	if !c.Occupied || c.Die != d {
		t.Fatalf("get after set mismatch: %+v", c)
	}
	if g.IsEmpty(p.X, p.Y) {
		t.Fatalf("occupied cell reported empty")
	}

	g.ClearCell(p)
	if g.GetCell(p).Occupied {
		t.Fatalf("clear did not empty the cell")
	}
}

func TestGridBatchAndCopy(t *testing.T) {
	g := New(3, 3)
	g.AddDiceAt([]Placement{
		{Pos: Pos{X: 0, Y: 0}, Die: Die{Value: 1}},
		{Pos: Pos{X: 5, Y: 5}, Die: Die{Value: 2}}, // 非法，逐筆跳過
		{Pos: Pos{X: 2, Y: 2}, Die: Die{Value: 3}},
	})
	if g.OccupiedCount() != 2 {
		t.Fatalf("expected 2 occupied, got %d", g.OccupiedCount())
	}

	dst := New(3, 3)
	if !dst.CopyFrom(g) {
		t.Fatalf("same size CopyFrom should succeed")
	}
	if dst.OccupiedCount() != 2 {
		t.Fatalf("copy lost dice")
	}

	other := New(2, 3)
	if other.CopyFrom(g) {
		t.Fatalf("size mismatch CopyFrom should fail")
	}

	g.Reset()
	if g.OccupiedCount() != 0 {
		t.Fatalf("reset should empty the grid")
	}
	if dst.OccupiedCount() != 2 {
		t.Fatalf("reset of source should not affect copy")
	}
}

func TestPixelMapRoundTrip(t *testing.T) {
	m := &PixelMap{OriginX: 10, OriginY: 20, CellW: 64, CellH: 64, Cols: 5, Rows: 6}

	for y := 0; y < m.Rows; y++ {
		for x := 0; x < m.Cols; x++ {
			p := Pos{X: x, Y: y}
			px, py := m.ToPixel(p)
			back, ok := m.FromPixel(px, py)
			if !ok || back != p {
				t.Fatalf("pixel round trip failed at %+v: got %+v ok=%v", p, back, ok)
			}
		}
	}

	// 螢幕 y 往下：邏輯底部的 py 應該比頂部大
	_, pyBottom := m.ToPixel(Pos{X: 0, Y: 0})
	_, pyTop := m.ToPixel(Pos{X: 0, Y: m.Rows - 1})
	if pyBottom <= pyTop {
		t.Fatalf("bottom py %v should be below top py %v", pyBottom, pyTop)
	}

	if _, ok := m.FromPixel(9, 20); ok {
		t.Fatalf("point left of board should miss")
	}
	if _, ok := m.FromPixel(10+64*5+1, 20); ok {
		t.Fatalf("point right of board should miss")
	}
	if _, ok := m.FromPixel(math.Inf(1), math.Inf(1)); ok {
		t.Fatalf("infinite point should miss")
	}
	if _, ok := m.FromPixel(math.Inf(-1), 20); ok {
		t.Fatalf("negative infinite point should miss")
	}
	if _, ok := m.FromPixel(math.NaN(), math.NaN()); ok {
		t.Fatalf("NaN point should miss")
	}
}
