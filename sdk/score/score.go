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

package score

import (
	"context"

	"github.com/zintix-labs/dicelab/sdk/match"
)

// Outcome 是計分協作者對一批 match group 的處理結果。
type Outcome struct {
	MatchesFound   int      `json:"matches_found"`
	TotalScore     int      `json:"total_score"`
	ClearedDice    int      `json:"cleared_dice"`
	BoosterEffects []string `json:"booster_effects,omitempty"`
}

// Processor is the match-processing collaborator contract.
// Implementations should be fast and allocation-free on the hot path.
//
// ProcessMatches 是連鎖迴圈中唯一的暫停點（suspension point）：
// orchestrator 會 await 它的結果才繼續。回傳 error 代表整段連鎖作廢
// （orchestrator 會轉成零結果，不會把 error 丟給呼叫端）。
//
// ProcessMatches 不應該自己改盤面：清格與重力由 orchestrator 排程。
type Processor interface {
	ProcessMatches(ctx context.Context, groups []match.Group) (Outcome, error)
}

// ProcessorFunc 讓單一函數滿足 Processor。
type ProcessorFunc func(ctx context.Context, groups []match.Group) (Outcome, error)

func (f ProcessorFunc) ProcessMatches(ctx context.Context, groups []match.Group) (Outcome, error) {
	return f(ctx, groups)
}
