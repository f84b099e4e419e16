package score

import (
	"context"

	"github.com/zintix-labs/dicelab/sdk/match"
	"github.com/zintix-labs/dicelab/spec"
)

// FaceSumKey 是預設計分邏輯的 LogicKey。
const FaceSumKey spec.LogicKey = "face_sum"

// FaceSum 是預設計分邏輯：每群得分 = 代表面值 × 群大小；
// 整群 wild/joiner（代表面值未定）時以群大小計分。
//
// 只是一個合理的 baseline：正式遊戲的計分/加成（booster）
// 由表現層註冊自己的 Processor 取代。
type FaceSum struct{}

// NewFaceSum 是 FaceSum 的 Builder。
func NewFaceSum(gs *spec.GameSetting) (Processor, error) {
	return &FaceSum{}, nil
}

// RegisterDefault 把預設邏輯掛進 registry。
func RegisterDefault(r *Registry) error {
	return r.Register(FaceSumKey, NewFaceSum)
}

func (f *FaceSum) ProcessMatches(ctx context.Context, groups []match.Group) (Outcome, error) {
	out := Outcome{MatchesFound: len(groups)}
	for i := range groups {
		g := &groups[i]
		out.ClearedDice += g.Size()
		if g.FaceValue > 0 {
			out.TotalScore += g.FaceValue * g.Size()
		} else {
			out.TotalScore += g.Size()
		}
	}
	return out, nil
}
