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

package spawn

import (
	"github.com/zintix-labs/dicelab/sdk/core"
	"github.com/zintix-labs/dicelab/sdk/grid"
	"github.com/zintix-labs/dicelab/sdk/sampler"
	"github.com/zintix-labs/dicelab/spec"
)

// JoinerColor 是黑骰（joiner）固定的顏色標籤，落在一般色盤之外。
const JoinerColor grid.Color = -1

// DieSpawner 依 spec.DiceSetting 的權重產生隨機骰子。
//
// 只服務模擬器與 dev 工具：正式遊戲的落子由表現層/輸入層決定，
// 引擎核心不會自己生骰。
//
// 抽樣結構建表一次、逐顆 O(1) 抽樣；同一個 DieSpawner
// 只能在單一 goroutine 使用（內含遞增的 id 計數與共用 Core）。
type DieSpawner struct {
	core       *core.Core
	ds         *spec.DiceSetting
	kinds      *sampler.AliasTable // 顏色各一槽 + wild 槽 + joiner 槽
	colorCount int
	nextID     int64
}

// NewDieSpawner 建立生成器並完成建表。
func NewDieSpawner(c *core.Core, ds *spec.DiceSetting) *DieSpawner {
	weights := make([]int, 0, ds.ColorCount+2)
	weights = append(weights, ds.ColorWeights...)
	weights = append(weights, ds.WildWeight, ds.JoinerWeight)

	return &DieSpawner{
		core:       c,
		ds:         ds,
		kinds:      sampler.BuildAliasTable(weights),
		colorCount: ds.ColorCount,
	}
}

// Roll 產生下一顆骰子：先抽種類（顏色 / wild / joiner），再擲面值。
func (s *DieSpawner) Roll() grid.Die {
	s.nextID++
	d := grid.Die{
		ID:    s.nextID,
		Faces: s.ds.Faces,
		Value: s.core.RollFace(s.ds.Faces),
	}

	kind := s.kinds.Pick(s.core)
	switch {
	case kind == s.colorCount: // wild 槽
		d.Wild = true
		d.Color = grid.Color(s.core.IntN(s.colorCount))
	case kind == s.colorCount+1: // joiner 槽
		d.Joiner = true
		d.Color = JoinerColor
	default:
		d.Color = grid.Color(kind)
	}
	return d
}

// FillBoard 把盤面上所有空格補滿隨機骰（dev/demo 用）。
// 回傳補了幾顆。
func (s *DieSpawner) FillBoard(g *grid.Grid) int {
	n := 0
	for y := 0; y < g.Rows(); y++ {
		for x := 0; x < g.Cols(); x++ {
			if g.IsEmpty(x, y) {
				g.SetDie(grid.Pos{X: x, Y: y}, s.Roll())
				n++
			}
		}
	}
	return n
}

// DropColumn 找到指定行最低的空格並回傳；整行滿了回 ok=false。
// 模擬器用它決定一顆落下骰子的停點。
func DropColumn(g *grid.Grid, x int) (p grid.Pos, ok bool) {
	if x < 0 || x >= g.Cols() {
		return grid.Pos{}, false
	}
	for y := 0; y < g.Rows(); y++ {
		if g.IsEmpty(x, y) {
			return grid.Pos{X: x, Y: y}, true
		}
	}
	return grid.Pos{}, false
}
