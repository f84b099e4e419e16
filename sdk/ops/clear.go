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

// Clear 清除列表位置上的骰子（改為空格）。
// 非法位置由 Grid 靜默忽略；回傳實際清掉的格數。
func Clear(g *grid.Grid, ps []grid.Pos) int {
	n := 0
	for _, p := range ps {
		if g.GetCell(p).Occupied {
			g.ClearCell(p)
			n++
		}
	}
	return n
}
