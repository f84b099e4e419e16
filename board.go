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

package dicelab

import (
	"github.com/zintix-labs/dicelab/sdk/buf"
	"github.com/zintix-labs/dicelab/sdk/grid"
	"github.com/zintix-labs/dicelab/sdk/match"
	"github.com/zintix-labs/dicelab/sdk/ops"
)

// GameBoard 是 盤面 + 偵測 + 重力 的組合門面，
// 給表現層走「落一顆骰、解一輪 match」的簡單路徑用；
// 完整連鎖請走 CascadeOrchestrator。
//
// 不做內部鎖：同一個 GameBoard 不應被多 goroutine 同時操作。
// GameBoard 同時滿足 match.AreaAdapter，可直接當區域轉換的目標。
type GameBoard struct {
	g      *grid.Grid
	det    *match.Detector
	result *buf.LockResult // 可重用結果 buffer，每次 LockAt/FinalizeLocks 覆寫
}

// NewGameBoard 建立指定尺寸的空盤面門面。
func NewGameBoard(cols int, rows int) *GameBoard {
	return &GameBoard{
		g:      grid.New(cols, rows),
		det:    match.NewDetector(),
		result: buf.NewLockResult(),
	}
}

// Grid 回傳底層盤面（連鎖驅動器與模擬器共用同一份）。
func (b *GameBoard) Grid() *grid.Grid { return b.g }

// LockAt 在 p 放入 d，接著跑一輪 detect→clear→compact 並回報發生了什麼。
//
// 這不是完整連鎖：清格後若又形成新的 match，不會在這次呼叫內處理。
// p 非法時不動盤面，回傳 Locked=false 的 no-op 結果。
// 回傳值是內部可重用 buffer，只保證到下一次 Lock 呼叫前有效。
func (b *GameBoard) LockAt(p grid.Pos, d grid.Die, minMatch int) *buf.LockResult {
	r := b.result
	r.Reset()
	if !b.g.IsValidPosition(p.X, p.Y) {
		return r
	}
	b.g.SetDie(p, d)
	r.Locked = true
	b.resolveOnce(r, minMatch)
	return r
}

// LockCell 只放骰、不觸發偵測；搭配 FinalizeLocks 做批次落子。
// p 非法時靜默忽略。
func (b *GameBoard) LockCell(p grid.Pos, d grid.Die) {
	b.g.SetDie(p, d)
}

// FinalizeLocks 對整批 LockCell 的結果跑一輪 detect→clear→compact。
func (b *GameBoard) FinalizeLocks(minMatch int) *buf.LockResult {
	r := b.result
	r.Reset()
	r.Locked = true
	b.resolveOnce(r, minMatch)
	return r
}

func (b *GameBoard) resolveOnce(r *buf.LockResult, minMatch int) {
	groups := b.det.Detect(b.g, minMatch)
	if len(groups) == 0 {
		return
	}
	r.Matches = append(r.Matches, groups...)
	for gi := range groups {
		r.ClearedPos = append(r.ClearedPos, groups[gi].Positions...)
	}
	ops.Clear(b.g, r.ClearedPos)
	r.GravityApplied = ops.Compact(b.g)
}

// 以下為 Grid 的直通操作。

func (b *GameBoard) AddDiceAt(entries []grid.Placement) { b.g.AddDiceAt(entries) }

func (b *GameBoard) ClearCells(ps []grid.Pos) { b.g.ClearCells(ps) }

func (b *GameBoard) OccupiedPositions() []grid.Pos { return b.g.OccupiedPositions() }

func (b *GameBoard) GetCell(p grid.Pos) grid.Cell { return b.g.GetCell(p) }

func (b *GameBoard) IsValidPosition(x int, y int) bool { return b.g.IsValidPosition(x, y) }

func (b *GameBoard) IsEmpty(x int, y int) bool { return b.g.IsEmpty(x, y) }
