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
	"context"
	"crypto/rand"
	"math"
	"math/big"
	"sync"

	"github.com/zintix-labs/dicelab/dto"
	"github.com/zintix-labs/dicelab/errs"
	"github.com/zintix-labs/dicelab/sdk/buf"
	"github.com/zintix-labs/dicelab/sdk/core"
	"github.com/zintix-labs/dicelab/sdk/grid"
	"github.com/zintix-labs/dicelab/sdk/score"
	"github.com/zintix-labs/dicelab/sdk/spawn"
	"github.com/zintix-labs/dicelab/spec"
)

// Session 封裝一個「可對外服務」的盤面實例。
//
// 對外：提供 Lock（落一顆骰、結算一輪）與 Resolve（載入盤面、跑完整連鎖）。
// 對內：持有 RNG（Core）、盤面門面（GameBoard）、連鎖驅動器與骰子產生器。
//
// 並發語意：
//   - Session 不是 lock-free 結構；它內含可重用的 request/result buffer（熱路徑），
//     同一個 Session 不應被多 goroutine 同時操作，對外入口以 mu 保護。
//   - 要併發模擬，由更高層建立多個 Session 分散到不同 worker。
//
// Buffer 語意：
//   - 內部結果 buffer 每次呼叫會被覆寫；對外入口回傳前都已轉成 DTO（深拷貝）。
//
// initseed 記錄出生時的 seed（追溯/重現的基礎資訊）；完整審計以 Core 的
// Snapshot/Restore 合約為準。
type Session struct {
	gameName string
	gameId   spec.GID
	gs       *spec.GameSetting
	core     *core.Core
	board    *GameBoard
	orch     *CascadeOrchestrator
	mult     *Multiplier
	spawner  *spawn.DieSpawner
	mu       sync.Mutex
	initseed int64
	nextID   int64 // 外部請求帶入骰子的流水號
}

// newSession 以「隨機 seed」建立 Session。
//
// 這裡使用 crypto/rand 產生 seed 是為了在對外服務情境避免可預測 RNG，
// 同時保留可追溯性（seed 會被記錄在 Session.initseed）。
func newSession(gs *spec.GameSetting, reg *score.Registry, cf core.PRNGFactory) (*Session, error) {
	seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return nil, errs.Wrap(err, "new crypto seed error in go std lib")
	}
	return newSessionWithSeed(gs, reg, cf, seed.Int64())
}

// newSessionWithSeed 以指定 seed 建立 Session。
//
// 這是最常用的「可重現」入口：同一份 GameSetting + 同一個 seed，
// 應能得到一致的隨機序列（取決於 Core 實作）。
//
// 建立流程：
//  1. core.New(cf.New(seed)) 建出 RNG 核心
//  2. 依 BoardSetting 建出 GameBoard
//  3. 透過 score.Registry 依 LogicKey 建出計分協作者
//  4. 組出 CascadeOrchestrator（與 GameBoard 共用同一個 Grid）
func newSessionWithSeed(gs *spec.GameSetting, reg *score.Registry, cf core.PRNGFactory, seed int64) (*Session, error) {
	if gs == nil {
		return nil, errs.NewFatal("game setting required")
	}
	if reg == nil {
		return nil, errs.NewFatal("score registry required")
	}
	if cf == nil {
		return nil, errs.NewFatal("core factory required")
	}
	proc, err := reg.Build(gs.LogicKey, gs)
	if err != nil {
		return nil, err
	}

	s := &Session{
		gameName: gs.GameName,
		gameId:   gs.GameID,
		gs:       gs,
		core:     core.New(cf.New(seed)),
		board:    NewGameBoard(gs.BoardSetting.Columns, gs.BoardSetting.Rows),
		mult:     NewMultiplier(),
		initseed: seed,
	}
	s.orch = NewCascadeOrchestrator(s.board.Grid(), proc, s.mult, &gs.CascadeSetting, gs.MatchSetting.MinMatch, nil)
	s.spawner = spawn.NewDieSpawner(s.core, &gs.DiceSetting)
	return s, nil
}

// Lock 為「落一顆骰、結算一輪」的公開入口：驗證請求、放骰、
// 跑一輪 detect→clear→compact 並回傳 DTO。
func (s *Session) Lock(r *buf.LockRequest) (dto.LockResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.valid(r.GameId); err != nil {
		return dto.LockResult{}, err
	}
	minMatch := s.gs.MatchSetting.MinMatch
	if r.MinMatch > 0 {
		minMatch = max(2, r.MinMatch)
	}

	s.nextID++
	d := r.Die.ToDie(s.nextID, s.gs.DiceSetting.Faces)
	lr := s.board.LockAt(grid.Pos{X: r.X, Y: r.Y}, d, minMatch)
	return dto.NewLockResultDTO(s.gameName, s.gameId, lr, s.board.Grid())
}

// Resolve 為「載入整個盤面、跑完整連鎖」的公開入口。
//
// 盤面會先清空再依 Placements 填入（非法位置逐筆忽略），倍率重置為 1，
// 然後觸發連鎖。協作者失敗不是 error：它是零結果（reason=processing_error）。
func (s *Session) Resolve(ctx context.Context, r *buf.ResolveRequest) (dto.ResolveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.valid(r.GameId); err != nil {
		return dto.ResolveResult{}, err
	}

	startsnap, err := s.SnapshotCore()
	if err != nil {
		return dto.ResolveResult{}, errs.NewFatal("before snapshot error " + err.Error())
	}

	g := s.board.Grid()
	g.Reset()
	for _, p := range r.Placements {
		s.nextID++
		g.SetDie(grid.Pos{X: p.X, Y: p.Y}, p.Die.ToDie(s.nextID, s.gs.DiceSetting.Faces))
	}
	s.mult.Reset()

	cr := s.orch.Resolve(ctx)

	aftersnap, err := s.SnapshotCore()
	if err != nil {
		return dto.ResolveResult{}, errs.NewWarn("after snapshot error " + err.Error())
	}
	return dto.NewResolveResultDTO(s.gameName, s.gameId, cr, g, startsnap, aftersnap)
}

// DropInternal 直接在隨機欄位落一顆隨機骰並跑完整連鎖；常用於模擬器或測試。
//
// 請勿在正式環境使用：此行為跳過所有檢查，回傳內部可重用 buffer。
// 骰子落不下去（整欄皆滿）時會換欄重試；整個盤面全滿時先清空盤面。
func (s *Session) DropInternal(ctx context.Context) *buf.CascadeResult {
	g := s.board.Grid()
	if g.OccupiedCount() == g.Size() {
		g.Reset()
	}
	for {
		x := s.core.IntN(g.Cols())
		p, ok := spawn.DropColumn(g, x)
		if !ok {
			continue
		}
		g.SetDie(p, s.spawner.Roll())
		break
	}
	return s.orch.Resolve(ctx)
}

func (s *Session) valid(gid spec.GID) error {
	if s.gameId != gid {
		return errs.NewWarn("game id is not matched")
	}
	return nil
}

// Board 回傳盤面門面（單執行緒情境下的直接操作入口）。
func (s *Session) Board() *GameBoard { return s.board }

// Orchestrator 回傳連鎖驅動器（觀測 / ForceStop 入口）。
func (s *Session) Orchestrator() *CascadeOrchestrator { return s.orch }

// SnapshotCore 取得 Core 狀態暫存。
func (s *Session) SnapshotCore() ([]byte, error) {
	return s.core.Snapshot()
}

// RestoreCore 恢復 Core 狀態暫存。
func (s *Session) RestoreCore(src []byte) error {
	return s.core.Restore(src)
}
