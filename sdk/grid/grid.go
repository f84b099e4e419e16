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

// Grid 是 Cell 儲存的唯一擁有者；所有座標驗證都在這裡做。
//
// 合約：
//   - 非法座標一律 fail-closed：讀回空值/false，寫入靜默忽略，不回傳 error。
//   - 骰子以值複製進出，沒有共享可變狀態。
//   - 本身沒有鎖：一個 cascade 進行中時，唯一的寫入者必須是驅動它的
//     orchestrator；外部讀取者應等 invocation 結束再讀。
type Grid struct {
	cols  int
	rows  int
	cells []Cell
}

// Placement 是批次擺放的一筆 (位置, 骰子)。
type Placement struct {
	Pos Pos
	Die Die
}

// New 建立 cols x rows 的空盤。尺寸需為正（由 spec 設定層保證）。
func New(cols int, rows int) *Grid {
	return &Grid{
		cols:  cols,
		rows:  rows,
		cells: make([]Cell, cols*rows),
	}
}

func (g *Grid) Cols() int { return g.cols }
func (g *Grid) Rows() int { return g.rows }
func (g *Grid) Size() int { return len(g.cells) }

// IsValidPosition 回報 (x,y) 是否落在盤面內。
func (g *Grid) IsValidPosition(x int, y int) bool {
	return x >= 0 && x < g.cols && y >= 0 && y < g.rows
}

// IsEmpty 回報 (x,y) 是否為空格；非法座標回 false（fail-closed）。
func (g *Grid) IsEmpty(x int, y int) bool {
	if !g.IsValidPosition(x, y) {
		return false
	}
	return !g.cells[g.idx(x, y)].Occupied
}

// GetCell 回傳位置上的 Cell；非法座標回空 Cell。
func (g *Grid) GetCell(p Pos) Cell {
	if !g.IsValidPosition(p.X, p.Y) {
		return EmptyCell
	}
	return g.cells[g.idx(p.X, p.Y)]
}

// SetCell 寫入位置；非法座標為 no-op（靜默忽略）。
func (g *Grid) SetCell(p Pos, c Cell) {
	if !g.IsValidPosition(p.X, p.Y) {
		return
	}
	g.cells[g.idx(p.X, p.Y)] = c
}

// SetDie 在位置放一顆骰子；非法座標為 no-op。
func (g *Grid) SetDie(p Pos, d Die) {
	g.SetCell(p, CellOf(d))
}

// ClearCell 清空單一位置；非法座標為 no-op。
func (g *Grid) ClearCell(p Pos) {
	g.SetCell(p, EmptyCell)
}

// AddDiceAt 批次擺放：合法的逐筆寫入，非法的逐筆跳過，不中斷整批。
func (g *Grid) AddDiceAt(entries []Placement) {
	for _, e := range entries {
		g.SetDie(e.Pos, e.Die)
	}
}

// ClearCells 把列表中每個合法位置設為空格。
func (g *Grid) ClearCells(ps []Pos) {
	for _, p := range ps {
		g.ClearCell(p)
	}
}

// OccupiedPositions 全盤掃描回傳所有佔用位置。
// 只給診斷/測試用，不在熱路徑上。
func (g *Grid) OccupiedPositions() []Pos {
	out := make([]Pos, 0, len(g.cells))
	for y := 0; y < g.rows; y++ {
		for x := 0; x < g.cols; x++ {
			if g.cells[g.idx(x, y)].Occupied {
				out = append(out, Pos{X: x, Y: y})
			}
		}
	}
	return out
}

// OccupiedCount 回傳佔用格數（守恆檢查用）。
func (g *Grid) OccupiedCount() int {
	n := 0
	for i := range g.cells {
		if g.cells[i].Occupied {
			n++
		}
	}
	return n
}

// Reset 清空整個盤面，保留已配置的儲存。
func (g *Grid) Reset() {
	for i := range g.cells {
		g.cells[i] = EmptyCell
	}
}

// CopyFrom 以另一個同尺寸盤面覆蓋自身內容；尺寸不符為 no-op 並回 false。
func (g *Grid) CopyFrom(src *Grid) bool {
	if src == nil || src.cols != g.cols || src.rows != g.rows {
		return false
	}
	copy(g.cells, src.cells)
	return true
}

// Cells 回傳底層儲存的唯讀視圖（row 0 在最上）。
// 呼叫端不得修改；熱路徑元件（ops/match）靠它避免逐格呼叫開銷。
func (g *Grid) Cells() []Cell {
	return g.cells
}

// CellAtIndex 以儲存索引直接取格；越界回空 Cell。
func (g *Grid) CellAtIndex(idx int) Cell {
	if idx < 0 || idx >= len(g.cells) {
		return EmptyCell
	}
	return g.cells[idx]
}

func (g *Grid) idx(x int, y int) int {
	return Index(g.cols, g.rows, Pos{X: x, Y: y})
}
