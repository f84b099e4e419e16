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
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/dicelab/dto"
	"github.com/zintix-labs/dicelab/errs"
	"github.com/zintix-labs/dicelab/sdk/buf"
	"github.com/zintix-labs/dicelab/sdk/core"
	"github.com/zintix-labs/dicelab/sdk/score"
	"github.com/zintix-labs/dicelab/spec"
)

// SessionPool 專門管理「某一款盤面設定」的所有 Session 實例。
// 它透過兩個通道管理生命週期：
//  1. pool：健康且可用的 Session，供 Resolve/Lock 借出 / 歸還。
//  2. broken：運作過程中發生錯誤或 panic 的壞 Session，送往此通道以便後續檢查或丟棄。
//
// 若某個 Session 執行期間發生 panic 或 fatal error，它會被送至 broken，
// 並立即補上一個新 Session 以維持容量。
type SessionPool struct {
	gameName      string
	gameId        spec.GID
	gs            *spec.GameSetting
	logic         *score.Registry
	cf            core.PRNGFactory
	initSeed      int64
	seedMaker     *seedMaker
	pool          chan *Session // 可用 Session 的通道，用於取得和歸還
	broken        chan *Session // 壞掉 Session 的通道，用於送修或丟棄
	done          chan struct{} // 關閉訊號：關閉後不再允許借出/歸還/補充
	closeOnce     sync.Once
	poolsize      int
	rebuild       atomic.Int32 // 重建次數
	inflight      atomic.Int32 // 使用中
	panics        atomic.Int32 // panic 次數
	fatals        atomic.Int32 // fatal 次數（Session 狀態不可信）
	closeReason   atomic.Value // string: 關閉原因
	closeInflight atomic.Int32 // 關閉當下 inflight（快照）
	closeAvail    atomic.Int32 // 關閉當下 pool 可用數量（len(pool) 快照）
	closeBroken   atomic.Int32 // 關閉當下 broken backlog（len(broken) 快照）
}

// newSessionPool 建立指定盤面設定的 Session 池。
//   - n: Session 數量（至少為 1）
//
// 初始化內容包含建立 pool 與 broken 兩個 channel，
// 並預先建立 n 個 Session 放入 pool 以便立即提供服務。
func newSessionPool(n int, gs *spec.GameSetting, reg *score.Registry, cf core.PRNGFactory, seed int64) (*SessionPool, error) {
	n = max(1, n)
	p := &SessionPool{
		gameName:  gs.GameName,
		gameId:    gs.GameID,
		gs:        gs,
		logic:     reg,
		cf:        cf,
		initSeed:  seed,
		seedMaker: newSeedMaker(seed),
		pool:      make(chan *Session, n),
		broken:    make(chan *Session, 100),
		done:      make(chan struct{}),
		poolsize:  n,
	}

	p.closeReason.Store("")
	p.closeInflight.Store(-1)
	p.closeAvail.Store(-1)
	p.closeBroken.Store(-1)

	for i := 0; i < n; i++ {
		s, err := newSessionWithSeed(gs, reg, cf, p.seedMaker.next())
		if err != nil {
			return nil, err
		}
		p.pool <- s
	}
	return p, nil
}

// Close 進入關閉狀態：之後所有借出請求直接回 error。
func (p *SessionPool) Close() {
	p.closeWithReason("closed")
}

// Closed 回報池是否已進入關閉狀態。
func (p *SessionPool) Closed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// closeWithReason 進入關閉狀態並記錄原因（thread-safe，reason 只會被寫入一次）。
func (p *SessionPool) closeWithReason(reason string) {
	p.closeOnce.Do(func() {
		if reason == "" {
			reason = "closed"
		}
		p.closeReason.Store(reason)
		// 進入關閉狀態的瞬間做一次快照，方便外部觀測與故障排查。
		p.closeInflight.Store(p.inflight.Load())
		p.closeAvail.Store(int32(len(p.pool)))
		p.closeBroken.Store(int32(len(p.broken)))
		close(p.done)
	})
}

// isFatalErr 判斷本次錯誤是否代表「Session 狀態不可信」需要淘汰/補充。
//
// 原則：
//   - panic 一律視為 broken（由 caller 端的 defer/recover 處理）
//   - 一般的 request/validation 類錯誤不應淘汰 Session
//   - 只有錯誤型別本身明確宣告 fatal 時才視為 broken
func isFatalErr(err error) bool {
	if err == nil {
		return false
	}
	if e, ok := err.(*errs.E); ok {
		if e.ErrLv == errs.Fatal {
			return true
		}
	}
	return false
}

// Resolve 借出一個 Session 執行完整連鎖，結束後歸還（或送修補充）。
func (p *SessionPool) Resolve(ctx context.Context, req *buf.ResolveRequest) (d dto.ResolveResult, err error) {
	err = p.withSession(ctx, func(s *Session) error {
		var e error
		d, e = s.Resolve(ctx, req)
		return e
	})
	return
}

// Lock 借出一個 Session 執行「落一顆骰、結算一輪」。
//
// 注意：池內 Session 的盤面狀態在請求之間不保證連續（每次借到的
// 不一定是同一個），要玩連續落子請走 Runtime 的 dev 模式。
func (p *SessionPool) Lock(ctx context.Context, req *buf.LockRequest) (d dto.LockResult, err error) {
	err = p.withSession(ctx, func(s *Session) error {
		var e error
		d, e = s.Lock(req)
		return e
	})
	return
}

// withSession 是借出/歸還的共同骨架：panic 與 fatal error 會把該 Session
// 送入 broken 並補建新 Session；一般錯誤則把健康的 Session 歸還 pool。
func (p *SessionPool) withSession(ctx context.Context, fn func(s *Session) error) (err error) {
	var s *Session
	borrowed := false
	select {
	case <-p.done:
		// 先觀察是否已關閉：關閉直接回失敗，不阻塞
		return errs.NewFatal("session pool closed: " + p.ClosedReason())
	case <-ctx.Done():
		return errs.NewWarn("request canceled/timeout: " + ctx.Err().Error())
	case s = <-p.pool:
		borrowed = true
		p.inflight.Add(1)
	}

	// 理論上不會拿到 nil；若發生代表 pool 有嚴重問題。
	if s == nil {
		return errs.NewFatal("session pool got nil session")
	}

	var isPanic bool

	defer func() {
		if borrowed {
			// 有借有還 再借不難
			p.inflight.Add(-1)
		}
		if r := recover(); r != nil {
			isPanic = true
			p.panics.Add(1)
			err = errs.NewFatal(fmt.Sprintf("session %s panic : %v", p.gameName, r))
		}

		// 若已關閉，直接丟棄 Session（不歸還、不補充），避免 send 到已停止的系統。
		if p.Closed() {
			return
		}

		// 若發生 panic 或致命錯誤，表示 Session 狀態不可信，需要送修並補充。
		if isPanic || isFatalErr(err) {
			if !isPanic && isFatalErr(err) {
				p.fatals.Add(1)
			}
			// 1) 壞 Session 送入 broken（避免阻塞）
			select {
			case p.broken <- s:
			default:
				// broken 通道滿代表系統可能正在連續故障：進入關閉狀態讓上層接管維護。
				p.closeWithReason("overwhelmed_by_failures")
				if err == nil {
					err = errs.NewFatal("session pool overwhelmed by failures")
				}
				return
			}

			// 2) 補一個新 Session（維持容量）
			fresh, buildErr := newSessionWithSeed(p.gs, p.logic, p.cf, p.seedMaker.next())
			p.rebuild.Add(1)
			if buildErr != nil {
				err = errs.NewFatal(fmt.Sprintf("session %s can not build", p.gameName))
				p.closeWithReason("rebuild_failed")
				return
			}

			// 補充前再看一次是否已關閉（避免並行 Close 後 send / block）
			select {
			case <-p.done:
				return
			case p.pool <- fresh:
			}
			return
		}

		// 有錯誤但非致命（多半是 request/validation 類），Session 仍然健康：
		// 歸還 pool 並把 err 原樣回傳，此處不改寫 err。
		select {
		case <-p.done:
			return
		case p.pool <- s:
		}
	}()

	err = fn(s)
	return
}

func (p *SessionPool) PoolSize() int {
	return p.poolsize
}

func (p *SessionPool) Inflight() int {
	return int(p.inflight.Load())
}

func (p *SessionPool) ReBuild() int {
	return int(p.rebuild.Load())
}

func (p *SessionPool) ClosedReason() string {
	if v := p.closeReason.Load(); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func (p *SessionPool) Panics() int {
	return int(p.panics.Load())
}

func (p *SessionPool) Fatals() int {
	return int(p.fatals.Load())
}

// SessionPoolMetrics 是「拉取式（pull）」觀測快照。
//
// 設計原則：
//   - 不綁任何 metrics/telemetry SDK，由上層自己決定如何輸出。
//   - Available/BrokenBacklog 來自 len(chan)，在高併發下是近似值但足夠營運觀測。
//   - 關閉瞬間的快照只會在 Close 時寫入一次，用於事後排查。
type SessionPoolMetrics struct {
	GameName string   `json:"game_name"`
	GameID   spec.GID `json:"game_id"`

	PoolSize      int    `json:"pool_size"`      // 目標容量（初始化指定）
	Available     int    `json:"available"`      // 當下可借出的 Session 數（len(pool)）
	Inflight      int    `json:"inflight"`       // 使用中（借出未歸還）
	BrokenBacklog int    `json:"broken_backlog"` // broken channel 當下 backlog
	Rebuild       int    `json:"rebuild"`        // 補建次數
	Panics        int    `json:"panics"`         // panic 次數
	Fatals        int    `json:"fatals"`         // fatal 次數
	Closed        bool   `json:"closed"`         // 是否已關閉
	CloseReason   string `json:"close_reason"`   // 關閉原因

	CloseInflight int `json:"close_inflight"` // Close() 當下 inflight（-1 表示尚未關閉）
	CloseAvail    int `json:"close_avail"`    // Close() 當下 available（-1 表示尚未關閉）
	CloseBroken   int `json:"close_broken"`   // Close() 當下 broken backlog（-1 表示尚未關閉）
}

// Metrics 回傳觀測快照；上層可用於 log、/stat、或餵給自家 exporter。
func (p *SessionPool) Metrics() SessionPoolMetrics {
	return SessionPoolMetrics{
		GameName:      p.gameName,
		GameID:        p.gameId,
		PoolSize:      p.poolsize,
		Available:     len(p.pool),
		Inflight:      int(p.inflight.Load()),
		BrokenBacklog: len(p.broken),
		Rebuild:       int(p.rebuild.Load()),
		Panics:        int(p.panics.Load()),
		Fatals:        int(p.fatals.Load()),
		Closed:        p.Closed(),
		CloseReason:   p.ClosedReason(),
		CloseInflight: int(p.closeInflight.Load()),
		CloseAvail:    int(p.closeAvail.Load()),
		CloseBroken:   int(p.closeBroken.Load()),
	}
}

// Available 回傳當下 pool 可用 Session 數（len(pool)）。在高併發下為近似值。
func (p *SessionPool) Available() int {
	return len(p.pool)
}
