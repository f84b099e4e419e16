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

package demo_logic

import (
	"context"
	"log"

	"github.com/zintix-labs/dicelab/errs"
	"github.com/zintix-labs/dicelab/sdk/match"
	"github.com/zintix-labs/dicelab/sdk/score"
	"github.com/zintix-labs/dicelab/spec"
)

// Reg 收納所有 demo 計分邏輯，給 dicelab.Logics(...) 使用。
var Reg = score.NewRegistry()

// ============================================================
// ** 註冊 **
// ============================================================

func init() {
	if err := score.RegisterDefault(Reg); err != nil {
		log.Fatalf("face_sum register failed: %v", err)
	}
	logic := "demo_color_rush"
	if err := Reg.Register(spec.LogicKey(logic), buildColorRush); err != nil {
		log.Fatalf("%s register failed: %v", logic, err)
	}
}

// ============================================================
// ** 此遊戲 Fixed 設定宣告 **
// ============================================================

type colorRushFixed struct {
	ColorBonus    []int `yaml:"color_bonus"`
	BigGroup      int   `yaml:"big_group"`
	BigGroupBonus int   `yaml:"big_group_bonus"`
}

// ============================================================
// ** 計分邏輯實作 **
// ============================================================

// colorRush 在 face_sum 的基礎上加上顏色加成：
// 群內每顆骰依其顏色加固定分，群大小達 big_group 再加一筆整群加成。
type colorRush struct {
	fixed *colorRushFixed
}

func buildColorRush(gs *spec.GameSetting) (score.Processor, error) {
	g := &colorRush{fixed: new(colorRushFixed)}
	if err := spec.DecodeFixed(gs, g.fixed); err != nil {
		return nil, err
	}
	if len(g.fixed.ColorBonus) != gs.DiceSetting.ColorCount {
		return nil, errs.NewFatal("len(color_bonus) != len(colors)")
	}
	return g, nil
}

func (g *colorRush) ProcessMatches(ctx context.Context, groups []match.Group) (score.Outcome, error) {
	out := score.Outcome{MatchesFound: len(groups)}
	for i := range groups {
		gr := &groups[i]
		size := gr.Size()
		out.ClearedDice += size

		base := size
		if gr.FaceValue > 0 {
			base = gr.FaceValue * size
		}

		bonus := 0
		for c, n := range gr.ColorCount {
			if int(c) < len(g.fixed.ColorBonus) {
				bonus += g.fixed.ColorBonus[int(c)] * n
			}
		}
		if g.fixed.BigGroup > 0 && size >= g.fixed.BigGroup {
			bonus += g.fixed.BigGroupBonus
			out.BoosterEffects = append(out.BoosterEffects, "big_group")
		}

		out.TotalScore += base + bonus
	}
	return out, nil
}
