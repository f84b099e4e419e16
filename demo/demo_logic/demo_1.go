package demo_logic

import (
	"context"
	"log"

	"github.com/zintix-labs/dicelab/sdk/match"
	"github.com/zintix-labs/dicelab/sdk/score"
	"github.com/zintix-labs/dicelab/spec"
)

// ============================================================
// ** 註冊 **
// ============================================================

func init() {
	logic := "demo_wild_fever"
	if err := Reg.Register(spec.LogicKey(logic), buildWildFever); err != nil {
		log.Fatalf("%s register failed: %v", logic, err)
	}
}

// ============================================================
// ** 計分邏輯實作 **
// ============================================================

// wildFever 偏好全百搭群：FaceValue 為 0 代表整群都是 wild/joiner，
// 這種群以 size * faces 計分（取面值上限當作獎勵）。
type wildFever struct {
	faces int
}

func buildWildFever(gs *spec.GameSetting) (score.Processor, error) {
	return &wildFever{faces: gs.DiceSetting.Faces}, nil
}

func (g *wildFever) ProcessMatches(ctx context.Context, groups []match.Group) (score.Outcome, error) {
	out := score.Outcome{MatchesFound: len(groups)}
	for i := range groups {
		gr := &groups[i]
		size := gr.Size()
		out.ClearedDice += size

		if gr.FaceValue == 0 {
			out.TotalScore += size * g.faces
			out.BoosterEffects = append(out.BoosterEffects, "wild_fever")
			continue
		}
		out.TotalScore += gr.FaceValue * size
	}
	return out, nil
}
