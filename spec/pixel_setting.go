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

// PixelSetting 描述盤面的像素度量，給座標↔像素換算用。
//
// 這是表現層相鄰（presentation-adjacent）的設定：引擎核心不依賴它，
// 只有 sdk/grid 的 PixelMap 會讀。全部為 0 代表不啟用。
type PixelSetting struct {
	OriginX  float64 `yaml:"origin_x" json:"origin_x"`
	OriginY  float64 `yaml:"origin_y" json:"origin_y"`
	CellW    float64 `yaml:"cell_w"   json:"cell_w"`
	CellH    float64 `yaml:"cell_h"   json:"cell_h"`
	initFlag bool
}

// Enabled 回報是否有設定像素度量。
func (ps *PixelSetting) Enabled() bool {
	return ps.CellW > 0 && ps.CellH > 0
}

// Init 檢查不合法的設定
func (ps *PixelSetting) Init() error {
	if ps.initFlag {
		return nil
	}
	if (ps.CellW < 0) || (ps.CellH < 0) {
		return errs.Fatalf("invalid cell size: w=%v h=%v", ps.CellW, ps.CellH)
	}
	// 只設了其中一邊視為設定錯誤
	if (ps.CellW > 0) != (ps.CellH > 0) {
		return errs.NewFatal("cell_w and cell_h must be set together")
	}
	ps.initFlag = true
	return nil
}
