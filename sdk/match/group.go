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

import "github.com/zintix-labs/dicelab/sdk/grid"

// Group 是一個成立的連通群（match group）。
//
//   - Positions: 群內所有邏輯位置，不重複，已按掃描順序
//     （由下而上、由左而右）排序；len(Positions) 即群大小，
//     永遠 >= 產生它時用的 minMatch。
//   - FaceValue: 代表面值 = 掃描順序中第一顆非 wild、非 joiner 骰的面值；
//     整群都是 wild/joiner 時為 0（未定）。這個掃描順序相依是刻意的
//     tie-break，測試期望依賴它，不要隨手改。
//   - ColorCount: 群內各顏色的骰數。
type Group struct {
	Positions  []grid.Pos         `json:"positions"`
	FaceValue  int                `json:"face_value"`
	ColorCount map[grid.Color]int `json:"color_count"`
}

// Size 回傳群大小。
func (g *Group) Size() int { return len(g.Positions) }

// TotalCleared 回傳一批群的總格數（cascade 守恆檢查用）。
func TotalCleared(groups []Group) int {
	n := 0
	for i := range groups {
		n += groups[i].Size()
	}
	return n
}
