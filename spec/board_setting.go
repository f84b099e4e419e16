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

// BoardSetting 描述盤面尺寸的設定。
//
// Fields:
//   - Columns: 盤面寬度（x 軸）
//   - Rows: 盤面高度（y 軸）
//   - BoardSize: Columns x Rows（Init 時計算）
//
// 盤面尺寸在建構後不再改變。
type BoardSetting struct {
	Columns   int `yaml:"columns" json:"columns"`
	Rows      int `yaml:"rows"    json:"rows"`
	BoardSize int `yaml:"-"       json:"-"`
	initFlag  bool
}

// Init 檢查不合法的設定
func (bs *BoardSetting) Init() error {
	if bs.initFlag {
		return nil
	}
	if bs.Columns <= 0 || bs.Rows <= 0 {
		return errs.Fatalf("invalid board dimensions: cols=%d rows=%d", bs.Columns, bs.Rows)
	}
	bs.BoardSize = bs.Rows * bs.Columns
	bs.initFlag = true
	return nil
}
