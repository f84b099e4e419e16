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

// 座標系約定：
//
//   - 邏輯座標：y=0 在盤面最底，往上遞增（遊戲邏輯視角）。
//   - 儲存座標：row 0 在最上，row-major 連續存放（盤面陣列視角）。
//
// 兩者透過 ArrayRow 互換；該函數是自反的（self-inverse）：
// ArrayRow(h, ArrayRow(h, y)) == y，對所有 0 <= y < h 成立。
// 超出範圍的輸入行為未定義，呼叫端要先驗證。

// ArrayRow 把邏輯 y 換成儲存列（或反向，同一條公式）。
func ArrayRow(rows int, logicalY int) int {
	return rows - 1 - logicalY
}

// Pos 是一個邏輯座標位置。
type Pos struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Index 回傳邏輯座標對應的儲存索引：ArrayRow(y)*cols + x。
func Index(cols int, rows int, p Pos) int {
	return ArrayRow(rows, p.Y)*cols + p.X
}

// PosOf 由儲存索引還原邏輯座標（Index 的反函數）。
func PosOf(cols int, rows int, idx int) Pos {
	return Pos{X: idx % cols, Y: ArrayRow(rows, idx/cols)}
}
