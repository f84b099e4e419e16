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

// Color 是骰子的顏色標籤（索引對應 spec.DiceSetting.Colors）。
type Color int8

// Die 是一顆已定面值的骰子。放進 Grid 後視為不可變值：
// 任何異動都是整顆替換，不做部分更新。
//
//   - Wild: 與任何面值相連。
//   - Joiner: 黑骰；只放寬「自己與鄰居」的相連判定，
//     不會讓被它橋接的兩側面值互相視為相等。
type Die struct {
	ID     int64 `json:"id"`
	Faces  int   `json:"faces"`
	Value  int   `json:"value"`
	Color  Color `json:"color"`
	Wild   bool  `json:"wild,omitempty"`
	Joiner bool  `json:"joiner,omitempty"`
}

// Cell 要嘛是空格，要嘛裝一顆骰子，不會堆疊。
type Cell struct {
	Die      Die  `json:"die"`
	Occupied bool `json:"occupied"`
}

// EmptyCell 是空格的零值快捷。
var EmptyCell = Cell{}

// CellOf 把一顆骰子包成佔用中的 Cell。
func CellOf(d Die) Cell {
	return Cell{Die: d, Occupied: true}
}
