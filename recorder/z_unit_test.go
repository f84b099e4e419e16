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

package recorder_test

import (
	"math"
	"testing"

	"github.com/zintix-labs/dicelab/recorder"
	"github.com/zintix-labs/dicelab/sdk/buf"
	"github.com/zintix-labs/dicelab/spec"
)

// dropResult fabricates one drop outcome: n cascades, given total score.
func dropResult(cascades int, score int, reason buf.StopReason) *buf.CascadeResult {
	cr := buf.NewCascadeResult()
	perStep := 0
	if cascades > 0 {
		perStep = score / cascades
	}
	for i := 0; i < cascades; i++ {
		sc := perStep
		if i == cascades-1 {
			sc = score - perStep*(cascades-1)
		}
		cr.AppendStep(buf.CascadeStep{
			ScoreDelta:  sc,
			ClearedDice: 3,
			Multiplier:  i + 1,
		})
	}
	cr.Reason = reason
	return cr
}

func TestNewDropRecorderValid(t *testing.T) {
	if _, err := recorder.NewDropRecorder("", spec.GID(1)); err == nil {
		t.Fatalf("empty game name must be rejected")
	}
	r, err := recorder.NewDropRecorder("dice", spec.GID(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Chain.ChainCollect) != spec.MaxCascadeLimit+1 {
		t.Fatalf("chain collect length got %d want %d", len(r.Chain.ChainCollect), spec.MaxCascadeLimit+1)
	}
}

func TestRecordAccumulates(t *testing.T) {
	r, err := recorder.NewDropRecorder("dice", spec.GID(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r.Record(dropResult(2, 30, buf.ReasonMatchesExhausted))
	r.Record(dropResult(0, 0, buf.ReasonMatchesExhausted))
	r.Record(dropResult(3, 90, buf.ReasonMaxCascadesReached))
	r.Record(dropResult(0, 0, buf.ReasonProcessingError))

	b := r.Basic
	if b.Rounds != 4 {
		t.Fatalf("rounds got %d want 4", b.Rounds)
	}
	if b.TotalScore != 120 {
		t.Fatalf("total score got %d want 120", b.TotalScore)
	}
	if b.ScoreSqSum != 30*30+90*90 {
		t.Fatalf("score sq sum got %d want %d", b.ScoreSqSum, 30*30+90*90)
	}
	if b.NoMatchRounds != 2 {
		t.Fatalf("no-match rounds got %d want 2", b.NoMatchRounds)
	}
	if b.CapHits != 1 {
		t.Fatalf("cap hits got %d want 1", b.CapHits)
	}
	if b.ProcErrors != 1 {
		t.Fatalf("proc errors got %d want 1", b.ProcErrors)
	}
	if b.TotalCascades != 5 {
		t.Fatalf("total cascades got %d want 5", b.TotalCascades)
	}
	if b.MaxChain != 3 {
		t.Fatalf("max chain got %d want 3", b.MaxChain)
	}
	if b.ClearedDice != 15 {
		t.Fatalf("cleared dice got %d want 15", b.ClearedDice)
	}
	if r.Chain.ChainCollect[0] != 2 || r.Chain.ChainCollect[2] != 1 || r.Chain.ChainCollect[3] != 1 {
		t.Fatalf("chain collect got %v", r.Chain.ChainCollect)
	}
}

func TestRecordChainClamped(t *testing.T) {
	r, err := recorder.NewDropRecorder("dice", spec.GID(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r.Record(dropResult(spec.MaxCascadeLimit+5, 100, buf.ReasonMaxCascadesReached))
	if r.Chain.ChainCollect[spec.MaxCascadeLimit] != 1 {
		t.Fatalf("over-limit chain must clamp into last slot, got %v", r.Chain.ChainCollect)
	}
}

func TestDoneReportMath(t *testing.T) {
	r, err := recorder.NewDropRecorder("dice", spec.GID(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r.Record(dropResult(1, 10, buf.ReasonMatchesExhausted))
	r.Record(dropResult(1, 20, buf.ReasonMatchesExhausted))
	r.Record(dropResult(0, 0, buf.ReasonMatchesExhausted))

	rep := r.Done()
	rep.Done()
	if rep.Summary.Rounds != 3 || rep.Summary.TotalScore != 30 {
		t.Fatalf("summary got rounds %d score %d", rep.Summary.Rounds, rep.Summary.TotalScore)
	}
	wantAvg := 10.0
	if rep.Summary.AvgScore != wantAvg {
		t.Fatalf("avg score got %f want %f", rep.Summary.AvgScore, wantAvg)
	}
	wantHit := 2.0 / 3.0
	if math.Abs(rep.Summary.HitRate-wantHit) > 1e-9 {
		t.Fatalf("hit rate got %f want %f", rep.Summary.HitRate, wantHit)
	}
	if len(rep.Dist.ScoreCollect) != len(rep.Dist.ScoreBucket) {
		t.Fatalf("dist length mismatch")
	}
}

func TestMergeDropRecorder(t *testing.T) {
	a, _ := recorder.NewDropRecorder("dice", spec.GID(1))
	b, _ := recorder.NewDropRecorder("dice", spec.GID(1))
	a.Record(dropResult(2, 40, buf.ReasonMatchesExhausted))
	b.Record(dropResult(4, 60, buf.ReasonMaxCascadesReached))
	b.Record(dropResult(0, 0, buf.ReasonMatchesExhausted))

	m, err := recorder.MergeDropRecorder([]*recorder.DropRecorder{a, b})
	if err != nil {
		t.Fatalf("merge error: %v", err)
	}
	if m.Basic.Rounds != 3 || m.Basic.TotalScore != 100 {
		t.Fatalf("merged rounds %d score %d", m.Basic.Rounds, m.Basic.TotalScore)
	}
	if m.Basic.MaxChain != 4 {
		t.Fatalf("merged max chain got %d want 4", m.Basic.MaxChain)
	}
	if m.Basic.CapHits != 1 {
		t.Fatalf("merged cap hits got %d want 1", m.Basic.CapHits)
	}
	if m.Chain.ChainCollect[2] != 1 || m.Chain.ChainCollect[4] != 1 {
		t.Fatalf("merged chain collect %v", m.Chain.ChainCollect)
	}

	if _, err := recorder.MergeDropRecorder(nil); err == nil {
		t.Fatalf("empty merge input must be rejected")
	}

	c, _ := recorder.NewDropRecorder("other", spec.GID(2))
	if _, err := recorder.MergeDropRecorder([]*recorder.DropRecorder{a, c}); err == nil {
		t.Fatalf("mixed games must be rejected")
	}
}
