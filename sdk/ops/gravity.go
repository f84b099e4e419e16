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

package ops

import "github.com/zintix-labs/dicelab/sdk/grid"

// 重力只在「同一行（column）內」搬動骰子，而且不改變行內相對順序。
// 兩個操作都回報是否有任何格子被移動（跨行取 OR）。

// Compact 對每一行做完整壓縮（原地壓縮演算法）：
// 自邏輯底部往上掃描，維護一個從底部開始的寫入游標，
// 每遇到佔用格就寫到下一個可寫位，讀寫位置不同才搬動並清掉舊位。
// 已壓縮完成的行零寫入、回報無變化。
func Compact(g *grid.Grid) bool {
	cols, rows := g.Cols(), g.Rows()
	changed := false

	for x := 0; x < cols; x++ {
		wy := 0 // Write cursor（邏輯底部開始）
		for y := 0; y < rows; y++ {
			c := g.GetCell(grid.Pos{X: x, Y: y})
			if !c.Occupied {
				continue
			}
			if y != wy {
				g.SetCell(grid.Pos{X: x, Y: wy}, c)
				g.ClearCell(grid.Pos{X: x, Y: y})
				changed = true
			}
			wy++
		}
	}
	return changed
}

// Step 單步重力：凡是「正下方（y-1）為空」的佔用格，往下移正好一格。
// 所有移動都依照「呼叫前」的盤面狀態獨立判定，單次呼叫內不連鎖多步。
func Step(g *grid.Grid) bool {
	cols, rows := g.Cols(), g.Rows()

	// 呼叫前的佔用快照；判定只看它，不看搬動後的盤面。
	occ := make([]bool, cols*rows)
	for x := 0; x < cols; x++ {
		for y := 0; y < rows; y++ {
			occ[x*rows+y] = g.GetCell(grid.Pos{X: x, Y: y}).Occupied
		}
	}

	changed := false
	for x := 0; x < cols; x++ {
		for y := 1; y < rows; y++ {
			if occ[x*rows+y] && !occ[x*rows+y-1] {
				c := g.GetCell(grid.Pos{X: x, Y: y})
				g.SetCell(grid.Pos{X: x, Y: y - 1}, c)
				g.ClearCell(grid.Pos{X: x, Y: y})
				changed = true
			}
		}
	}
	return changed
}
