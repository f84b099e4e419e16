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

package spec

import "github.com/zintix-labs/dicelab/errs"

// DefaultFaces 為未設定時的骰面數。
const DefaultFaces int = 6

// DiceSetting 描述骰子本身與生成權重的設定。
//
// Fields:
//   - Faces: 每顆骰子的面數，面值範圍 1..Faces。
//   - Colors: 顏色標籤列表；索引即為引擎內部的 color id。
//   - ColorWeights: 生成時各顏色的權重（與 Colors 對齊；留空代表均一）。
//   - WildWeight: 生成 wild 骰的權重（相對於一般骰總權重）。
//   - JoinerWeight: 生成 joiner（黑骰）的權重。
//
// 生成（spawn）只服務模擬器與 dev 工具；對外遊戲的落子由表現層決定。
type DiceSetting struct {
	Faces        int      `yaml:"faces"         json:"faces"`
	Colors       []string `yaml:"colors"        json:"colors"`
	ColorWeights []int    `yaml:"color_weights" json:"color_weights"`
	WildWeight   int      `yaml:"wild_weight"   json:"wild_weight"`
	JoinerWeight int      `yaml:"joiner_weight" json:"joiner_weight"`
	ColorCount   int      `yaml:"-"             json:"-"`
	initFlag     bool
}

// Init 檢查設定並賦值
func (ds *DiceSetting) Init() error {
	if ds.initFlag {
		return nil
	}
	if ds.Faces == 0 {
		ds.Faces = DefaultFaces
	}
	if ds.Faces < 2 {
		return errs.Fatalf("invalid dice faces: %d", ds.Faces)
	}
	if len(ds.Colors) == 0 {
		return errs.NewFatal("empty dice colors")
	}
	if ds.ColorWeights == nil {
		ds.ColorWeights = make([]int, len(ds.Colors))
		for i := range ds.ColorWeights {
			ds.ColorWeights[i] = 1
		}
	}
	if len(ds.ColorWeights) != len(ds.Colors) {
		return errs.NewFatal("len(color_weights) != len(colors)")
	}
	for i, w := range ds.ColorWeights {
		if w <= 0 {
			return errs.Fatalf("invalid color weight: color=%s weight=%d", ds.Colors[i], w)
		}
	}
	if ds.WildWeight < 0 || ds.JoinerWeight < 0 {
		return errs.NewFatal("negative special dice weight")
	}
	ds.ColorCount = len(ds.Colors)
	ds.initFlag = true
	return nil
}
