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
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/zintix-labs/dicelab/sdk/buf"
	"github.com/zintix-labs/dicelab/sdk/grid"
	"github.com/zintix-labs/dicelab/sdk/match"
	"github.com/zintix-labs/dicelab/sdk/ops"
	"github.com/zintix-labs/dicelab/sdk/score"
	"github.com/zintix-labs/dicelab/spec"
)

// CascadeStats 是 orchestrator 的累計統計快照。
//
// 這些值只增不減（ForceStop 與失敗的觸發不會回捲已計入的輪次），
// 透過 Stats() 讀取當下快照。
type CascadeStats struct {
	TotalCascadesProcessed int64   `json:"total_cascades_processed"` // 歷來處理過的總輪數
	TotalChainScore        int64   `json:"total_chain_score"`        // 歷來累計的連鎖分數
	AverageChainMultiplier float64 `json:"average_chain_multiplier"` // 每輪結算倍率的平均（無輪次時為 0）
	MaxCascadeLimit        int     `json:"max_cascade_limit"`        // 目前生效的單次觸發輪數上限
}

// CascadeOrchestrator 依序驅動 偵測 → 計分協作者 → 壓縮重力 的連鎖迴圈。
//
// 狀態機：Idle → Processing → 以 buf.StopReason 收束回 Idle。
//
// 並發語意：
//   - 同一個 orchestrator 預期由單一邏輯擁有者驅動。Resolve 進行中再呼叫
//     Resolve 不是錯誤，會直接回「零結果」（count 0 / score 0），不排隊不合併。
//   - 迴圈內唯一的暫停點是 Processor.ProcessMatches；兩個暫停點之間的
//     盤面讀寫對 orchestrator 而言是同步完成的。
//   - ForceStop 是合作式的：當前迭代仍會把協作者呼叫跑完，迴圈在下一次
//     檢查時才收束。
//
// 失敗模式全部轉成結果值，不會有 error 穿出這層邊界。
type CascadeOrchestrator struct {
	g    *grid.Grid
	det  *match.Detector
	proc score.Processor
	mult *Multiplier
	log  *slog.Logger

	minMatch    int
	maxCascades atomic.Int32
	expiry      time.Duration // 倍率逾時；0 代表不啟用

	processing atomic.Bool
	forced     atomic.Bool
	current    atomic.Int32 // Processing 期間的即時輪數；Idle 時恆為 0

	// 累計統計（只增不減）
	totalCascades atomic.Int64
	totalScore    atomic.Int64
	multSum       atomic.Int64 // 每輪結算倍率的總和，用於平均

	result   *buf.CascadeResult // 可重用結果 buffer，每次 Resolve 覆寫
	clearBuf []grid.Pos         // 可重用的清格位置 buffer
}

// NewCascadeOrchestrator 組出一個連鎖驅動器。
//
// g 是它在連鎖期間獨佔寫入的盤面；proc 是外部計分協作者；
// mult 可為 nil（會自建一個值為 1 的倍率）。
func NewCascadeOrchestrator(g *grid.Grid, proc score.Processor, mult *Multiplier, cs *spec.CascadeSetting, minMatch int, log *slog.Logger) *CascadeOrchestrator {
	if mult == nil {
		mult = NewMultiplier()
	}
	if log == nil {
		log = slog.Default()
	}
	o := &CascadeOrchestrator{
		g:        g,
		det:      match.NewDetector(),
		proc:     proc,
		mult:     mult,
		log:      log,
		minMatch: max(2, minMatch),
		result:   buf.NewCascadeResult(),
		clearBuf: make([]grid.Pos, 0, 64),
	}
	limit := spec.DefaultMaxCascades
	if cs != nil {
		limit = cs.MaxCascades
		o.expiry = time.Duration(cs.MultiplierExpiryMs) * time.Millisecond
	}
	o.maxCascades.Store(int32(spec.ClampCascadeLimit(limit)))
	return o
}

// SetMaxCascades 設定單次觸發的輪數上限，超出 [1,50] 一律夾限、不拒絕。
func (o *CascadeOrchestrator) SetMaxCascades(n int) {
	o.maxCascades.Store(int32(spec.ClampCascadeLimit(n)))
}

// MaxCascades 回傳目前生效的輪數上限。
func (o *CascadeOrchestrator) MaxCascades() int {
	return int(o.maxCascades.Load())
}

// IsProcessing 回報是否有連鎖觸發在進行中。
func (o *CascadeOrchestrator) IsProcessing() bool {
	return o.processing.Load()
}

// CascadeCount 回傳進行中的即時輪數；Idle 時恆為 0。
func (o *CascadeOrchestrator) CascadeCount() int {
	if !o.processing.Load() {
		return 0
	}
	return int(o.current.Load())
}

// ForceStop 要求收束進行中的連鎖，並同步把觀測狀態撥回 Idle。
//
// 進行中的那一輪仍會完成協作者呼叫；迴圈在下一次檢查看到 forced 才停。
// 已計入的統計不受影響。Idle 時呼叫是 no-op。
//
// 觸發端假設單一擁有者：在舊的 Resolve 迴圈收束完成前，不要從其他
// goroutine 發起新的 Resolve，否則兩者會共用同一份結果 buffer 與盤面。
// Session 與 SessionPool 都遵守這個約定（一個 session 只有一個持有者）。
func (o *CascadeOrchestrator) ForceStop() {
	if !o.processing.Load() {
		return
	}
	o.forced.Store(true)
	o.current.Store(0)
	o.processing.Store(false)
}

// Multiplier 回傳 orchestrator 持有的倍率（讀值 / 輪詢逾時用）。
func (o *CascadeOrchestrator) Multiplier() *Multiplier {
	return o.mult
}

// Resolve 觸發一段完整的連鎖：最多 maxCascades 輪
// detect → ProcessMatches → clear → compact。
//
// 回傳值是內部可重用的 buffer，內容只保證到下一次 Resolve 之前有效；
// 要跨觸發保留請先轉 DTO 或自行複製。
//
// 零結果（count 0 / score 0）出現在三種情況：重入、協作者失敗、
// 第一輪就沒有任何 match（此時 Reason 是 matches_exhausted，屬正常收束）。
func (o *CascadeOrchestrator) Resolve(ctx context.Context) *buf.CascadeResult {
	if !o.processing.CompareAndSwap(false, true) {
		// 重入：定義好的零結果，不動用共享 buffer（它正被進行中的觸發持有）。
		rejected := buf.NewCascadeResult()
		rejected.Zero(buf.ReasonNone)
		return rejected
	}
	o.forced.Store(false)
	o.current.Store(0)
	defer func() {
		o.current.Store(0)
		o.processing.Store(false)
		o.forced.Store(false)
	}()

	r := o.result
	r.Reset()

	limit := int(o.maxCascades.Load())
	for i := 0; i < limit; i++ {
		if o.forced.Load() {
			r.Reason = buf.ReasonForcedStop
			return r
		}

		groups := o.det.Detect(o.g, o.minMatch)
		if len(groups) == 0 {
			r.Reason = buf.ReasonMatchesExhausted
			return r
		}

		// 唯一暫停點：協作者失敗 → 整段作廢成零結果，錯誤不外傳。
		outcome, err := o.proc.ProcessMatches(ctx, groups)
		if err != nil {
			o.log.Warn("cascade aborted: match processing failed",
				"cascade", i,
				"groups", len(groups),
				"err", err,
			)
			r.Zero(buf.ReasonProcessingError)
			return r
		}

		if o.expiry > 0 {
			o.mult.CheckExpiry()
		}
		m := o.mult.Value()

		cleared := o.clearMatched(groups)
		moved := ops.Compact(o.g)

		r.AppendStep(buf.CascadeStep{
			Groups:       groups,
			ScoreDelta:   outcome.TotalScore * m,
			ClearedDice:  cleared,
			GravityMoved: moved,
			Multiplier:   m,
		})
		o.current.Store(int32(r.CascadeCount))

		o.totalCascades.Add(1)
		o.totalScore.Add(int64(outcome.TotalScore * m))
		o.multSum.Add(int64(m))

		o.mult.Increment()
		if o.expiry > 0 {
			o.mult.StartExpiry(o.expiry)
		}
	}

	r.Reason = buf.ReasonMaxCascadesReached
	return r
}

// clearMatched 清掉所有成立群的格子，回傳清掉顆數。
func (o *CascadeOrchestrator) clearMatched(groups []match.Group) int {
	o.clearBuf = o.clearBuf[:0]
	for gi := range groups {
		o.clearBuf = append(o.clearBuf, groups[gi].Positions...)
	}
	return ops.Clear(o.g, o.clearBuf)
}

// Stats 回傳累計統計快照。
func (o *CascadeOrchestrator) Stats() CascadeStats {
	total := o.totalCascades.Load()
	s := CascadeStats{
		TotalCascadesProcessed: total,
		TotalChainScore:        o.totalScore.Load(),
		MaxCascadeLimit:        int(o.maxCascades.Load()),
	}
	if total > 0 {
		s.AverageChainMultiplier = float64(o.multSum.Load()) / float64(total)
	}
	return s
}
