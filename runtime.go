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
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/dicelab/dto"
	"github.com/zintix-labs/dicelab/errs"
	"github.com/zintix-labs/dicelab/sdk/buf"
	"github.com/zintix-labs/dicelab/spec"
)

// DiceRuntime 是對外服務的執行層：每個已註冊的盤面設定一個 SessionPool。
type DiceRuntime struct {
	// build-time 來源（只讀引用）
	lab *Dicelab // 方便取 catalog/registry/corefactory 與共用 helper

	// data-plane：關鍵主池（每款設定一個 pool）
	pools map[spec.GID]*SessionPool
	ids   []spec.GID // 固定順序，用於觀測/列舉（來自 cat.IDs()）

	// lifecycle
	done      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	reason    atomic.Value // string

	poolSize int // 每款設定的池大小
}

// Resolve 路由到對應 GID 的池，執行完整連鎖。
func (rt *DiceRuntime) Resolve(ctx context.Context, req *buf.ResolveRequest) (dto.ResolveResult, error) {
	if err := rt.gate(ctx); err != nil {
		return dto.ResolveResult{}, err
	}
	sp, ok := rt.pools[req.GameId]
	if !ok {
		return dto.ResolveResult{}, errs.NewWarn("game id not found")
	}
	// pool 自己會處理 done / close / rebuild / metrics
	return sp.Resolve(ctx, req)
}

// Lock 路由到對應 GID 的池，執行「落一顆骰、結算一輪」。
func (rt *DiceRuntime) Lock(ctx context.Context, req *buf.LockRequest) (dto.LockResult, error) {
	if err := rt.gate(ctx); err != nil {
		return dto.LockResult{}, err
	}
	sp, ok := rt.pools[req.GameId]
	if !ok {
		return dto.LockResult{}, errs.NewWarn("game id not found")
	}
	return sp.Lock(ctx, req)
}

func (rt *DiceRuntime) gate(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return errs.NewWarn("request canceled/timeout: " + ctx.Err().Error())
	case <-rt.done:
		// done is the source of truth; keep a fast boolean for cheap reads/telemetry.
		rt.closed.Store(true)
		return errs.NewFatal("dice runtime closed: " + rt.ClosedReason())
	default:
		return nil
	}
}

// IDs 回傳固定順序的已註冊 GID 列表。
func (rt *DiceRuntime) IDs() []spec.GID {
	return rt.ids
}

// PoolMetrics 回傳每個池的觀測快照，順序依 IDs()。
func (rt *DiceRuntime) PoolMetrics() []SessionPoolMetrics {
	out := make([]SessionPoolMetrics, 0, len(rt.ids))
	for _, id := range rt.ids {
		out = append(out, rt.pools[id].Metrics())
	}
	return out
}

// Close transitions the runtime into a closed state. It is safe to call multiple times.
func (rt *DiceRuntime) Close() {
	rt.closeWithReason("closed")
}

// closeWithReason closes the runtime and records the reason (written once).
func (rt *DiceRuntime) closeWithReason(reason string) {
	rt.closeOnce.Do(func() {
		if reason == "" {
			reason = "closed"
		}
		rt.reason.Store(reason)
		rt.closed.Store(true)
		close(rt.done)
		for _, sp := range rt.pools {
			sp.Close()
		}
	})
}

// Closed reports whether the runtime has been closed.
func (rt *DiceRuntime) Closed() bool {
	return rt.closed.Load()
}

func (rt *DiceRuntime) ClosedReason() string {
	if v := rt.reason.Load(); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
