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
	"log/slog"

	"github.com/zintix-labs/dicelab/sdk/grid"
)

// AreaAdapter 是 joiner（黑骰）區域轉換效果需要的能力介面。
// 由想要這個效果的表現層實作；核心只依賴這三個方法，
// 不依賴任何具體盤面型別。
type AreaAdapter interface {
	GetCell(p grid.Pos) grid.Cell
	LockCell(p grid.Pos, d grid.Die)
	IsValidPosition(x int, y int) bool
}

// ConvertFunc 是對單顆 joiner 骰執行的區域轉換 hook。
type ConvertFunc func(ad AreaAdapter, at grid.Pos, joiner grid.Die) error

// DetectWithConversion 與 Detect 相同，另外對「已成立的群」內
// 每一顆 joiner 骰呼叫一次轉換 hook。
//
// 轉換是 best-effort：hook 回傳 error 或 panic 都逐顆攔下並記 log，
// 不中斷偵測、不影響回傳的群列表。ad 或 fn 為 nil 時退化成純偵測。
func (d *Detector) DetectWithConversion(g *grid.Grid, minMatch int, ad AreaAdapter, fn ConvertFunc, log *slog.Logger) []Group {
	groups := d.Detect(g, minMatch)
	if ad == nil || fn == nil {
		return groups
	}
	if log == nil {
		log = slog.Default()
	}

	for gi := range groups {
		for _, p := range groups[gi].Positions {
			c := g.GetCell(p)
			if !c.Occupied || !c.Die.Joiner {
				continue
			}
			convertOne(ad, p, c.Die, fn, log)
		}
	}
	return groups
}

// convertOne 單顆骰的轉換，panic 與 error 都收斂在這裡。
func convertOne(ad AreaAdapter, p grid.Pos, die grid.Die, fn ConvertFunc, log *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("area conversion panicked",
				"x", p.X, "y", p.Y, "die_id", die.ID, "panic", r)
		}
	}()
	if err := fn(ad, p, die); err != nil {
		log.Warn("area conversion failed",
			"x", p.X, "y", p.Y, "die_id", die.ID, "err", err)
	}
}
