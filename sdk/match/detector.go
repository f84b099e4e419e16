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
	"sort"

	"github.com/zintix-labs/dicelab/sdk/grid"
)

// DefaultMinMatch 為未指定時的最小連線數。
const DefaultMinMatch int = 3

// Detector 在 Grid 快照上做 BFS flood fill，找出所有成立的連通群。
//
// 內部持有可重用的 BFS 緩衝（queue / hits / visited arena），
// 避免每次偵測都重新配置。緩衝只屬於單一偵測呼叫，呼叫間不殘留
// 任何可觀測狀態，因此 Detector 本身是「邏輯上無狀態」的；
// 但不是並行安全的：同一個 Detector 只能在單一 goroutine 使用。
type Detector struct {
	cols, rows int
	n          int

	// BFS 佇列與當前群命中位置（邏輯座標的掃描鍵）
	q    []int
	hits []int

	// visited 是顯式的布林盤面（arena）：一次偵測內每個格子
	// （含空格）恰好被檢查一次。
	visited []bool
}

// NewDetector 建立一個可重用的 Detector。
func NewDetector() *Detector {
	return &Detector{}
}

// resetSizes 只調整容量，不清內容
func (d *Detector) resetSizes(cols int, rows int) {
	d.cols, d.rows = cols, rows
	d.n = cols * rows
	needN := d.n

	if cap(d.visited) < needN {
		d.visited = make([]bool, needN)
	} else {
		d.visited = d.visited[:needN]
	}
	if cap(d.q) < needN {
		d.q = make([]int, 0, needN)
	}
	if cap(d.hits) < needN {
		d.hits = make([]int, 0, needN)
	}
}

// linked 回報兩顆相鄰骰子是否相連。
//
// 規則（任一成立即相連）：
//  1. 面值相等
//  2. 任一顆是 wild（wild 先判，雙旗骰行為同 wild）
//  3. 任一顆是 joiner（黑骰只放寬自身鄰接，不讓兩側面值互認）
func linked(a grid.Die, b grid.Die) bool {
	if a.Wild || b.Wild {
		return true
	}
	if a.Joiner || b.Joiner {
		return true
	}
	return a.Value == b.Value
}

// scanKey 把邏輯座標壓成掃描順序鍵：由下而上、由左而右遞增。
func scanKey(cols int, p grid.Pos) int {
	return p.Y*cols + p.X
}

// Detect 掃描整個盤面並回傳所有大小 >= minMatch 的連通群。
// minMatch <= 0 時用預設值 3。
//
// 掃描順序固定：邏輯座標由下而上、由左而右。每個未訪格子若被佔用
// 就以它為種子做 4-connected BFS；空格也會標記 visited，確保全盤
// 每格恰好檢查一次。小於 minMatch 的連通成份維持 visited 但不產出群
// （孤立的一對永遠不成立）。
func (d *Detector) Detect(g *grid.Grid, minMatch int) []Group {
	if g == nil {
		return nil
	}
	if minMatch <= 0 {
		minMatch = DefaultMinMatch
	}
	cols, rows := g.Cols(), g.Rows()
	d.resetSizes(cols, rows)

	// 重置 visited（range loop clear 會被編譯器優化成 memclr）
	for i := range d.visited {
		d.visited[i] = false
	}

	var groups []Group

	// 由下而上、由左而右
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			key := y*cols + x
			if d.visited[key] {
				continue
			}
			d.visited[key] = true

			seed := grid.Pos{X: x, Y: y}
			if !g.GetCell(seed).Occupied {
				// 空格：標記後跳過，不展開
				continue
			}

			// --- 以 seed 展開一個新的連通成份 ---
			d.q = d.q[:0]
			d.hits = d.hits[:0]
			d.q = append(d.q, key)
			d.hits = append(d.hits, key)

			head := 0
			for head < len(d.q) {
				curr := d.q[head]
				head++

				cp := grid.Pos{X: curr % cols, Y: curr / cols}
				cd := g.GetCell(cp).Die

				// 4-connected 鄰居（上下左右，無對角）
				d.expand(g, cd, grid.Pos{X: cp.X - 1, Y: cp.Y})
				d.expand(g, cd, grid.Pos{X: cp.X + 1, Y: cp.Y})
				d.expand(g, cd, grid.Pos{X: cp.X, Y: cp.Y - 1})
				d.expand(g, cd, grid.Pos{X: cp.X, Y: cp.Y + 1})
			}

			if len(d.hits) < minMatch {
				// 不成立：格子維持 visited，不產出群
				continue
			}

			groups = append(groups, d.emit(g, cols))
		}
	}
	return groups
}

// expand 檢查一個鄰居是否併入當前成份。
func (d *Detector) expand(g *grid.Grid, from grid.Die, np grid.Pos) {
	if np.X < 0 || np.X >= d.cols || np.Y < 0 || np.Y >= d.rows {
		return
	}
	key := np.Y*d.cols + np.X
	if d.visited[key] {
		return
	}
	nc := g.GetCell(np)
	if !nc.Occupied {
		return
	}
	if !linked(from, nc.Die) {
		return
	}
	d.visited[key] = true
	d.q = append(d.q, key)
	d.hits = append(d.hits, key)
}

// emit 把當前 hits 轉成 Group：位置按掃描順序排序、
// 選代表面值、統計顏色。
func (d *Detector) emit(g *grid.Grid, cols int) Group {
	sort.Ints(d.hits)

	gr := Group{
		Positions:  make([]grid.Pos, 0, len(d.hits)),
		ColorCount: make(map[grid.Color]int, 4),
	}
	for _, key := range d.hits {
		p := grid.Pos{X: key % cols, Y: key / cols}
		gr.Positions = append(gr.Positions, p)

		die := g.GetCell(p).Die
		gr.ColorCount[die.Color]++

		// 代表面值：掃描順序中第一顆非 wild、非 joiner
		if gr.FaceValue == 0 && !die.Wild && !die.Joiner {
			gr.FaceValue = die.Value
		}
	}
	return gr
}
