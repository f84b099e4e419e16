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

package recorder

import (
	"fmt"

	"github.com/zintix-labs/dicelab/errs"
	"github.com/zintix-labs/dicelab/sdk/buf"
	"github.com/zintix-labs/dicelab/spec"
	"github.com/zintix-labs/dicelab/stats"
)

// DropRecorder 遊戲紀錄員
//
// DropRecorder 以一次落骰（含整段連鎖）為單位紀錄結果，
// 並透過Done輸出統計報表
type DropRecorder struct {
	GameName string
	GameId   spec.GID
	Basic    *BasicRecord
	Dist     *DistRecord
	Chain    *ChainRecord
}

// BasicRecord 基本遊戲資料紀錄
type BasicRecord struct {
	TotalScore    int
	ScoreSqSum    int // 平方和
	Rounds        int
	NoMatchRounds int
	CapHits       int
	ProcErrors    int
	TotalCascades int
	MaxChain      int
	ClearedDice   int
}

// DistRecord 分數區間落點統計
//
// 紀錄時紀錄int資訊
type DistRecord struct {
	Bucket       *stats.ScoreBuckets
	ScoreCollect []int
}

// ChainRecord 連鎖長度落點統計
//
// ChainCollect[n] = 連鎖長度恰為 n 的落骰次數
type ChainRecord struct {
	ChainCollect []int
}

func NewDropRecorder(name string, id spec.GID) (*DropRecorder, error) {
	s := new(DropRecorder)

	if name == "" {
		return s, errs.NewFatal("game name must not be empty")
	}

	// 通過valid
	s.GameName = name
	s.GameId = id
	s.Basic = new(BasicRecord)
	s.Dist = newDistRecord()
	s.Chain = newChainRecord()

	return s, nil
}

func MergeDropRecorder(r []*DropRecorder) (*DropRecorder, error) {
	if len(r) == 0 {
		return nil, errs.NewFatal("merge drop record err : empty input")
	}
	r0 := r[0]
	s, err := NewDropRecorder(r0.GameName, r0.GameId)
	if err != nil {
		return s, err
	}
	for _, v := range r {
		if v.GameName != r0.GameName {
			return s, errs.NewFatal("merge drop record err : different game name")
		}
		if v.GameId != r0.GameId {
			return s, errs.NewFatal(fmt.Sprintf("merge drop record err : different game id %d", v.GameId))
		}
		s.Basic.TotalScore += v.Basic.TotalScore
		s.Basic.ScoreSqSum += v.Basic.ScoreSqSum
		s.Basic.Rounds += v.Basic.Rounds
		s.Basic.NoMatchRounds += v.Basic.NoMatchRounds
		s.Basic.CapHits += v.Basic.CapHits
		s.Basic.ProcErrors += v.Basic.ProcErrors
		s.Basic.TotalCascades += v.Basic.TotalCascades
		s.Basic.ClearedDice += v.Basic.ClearedDice
		if v.Basic.MaxChain > s.Basic.MaxChain {
			s.Basic.MaxChain = v.Basic.MaxChain
		}

		// 整合Dist
		for i := range len(v.Dist.ScoreCollect) {
			s.Dist.ScoreCollect[i] += v.Dist.ScoreCollect[i]
		}
		for i := range len(v.Chain.ChainCollect) {
			s.Chain.ChainCollect[i] += v.Chain.ChainCollect[i]
		}
	}
	return s, nil
}

// Record 以單次 CascadeResult 更新統計
func (s *DropRecorder) Record(cr *buf.CascadeResult) {
	s.recordBasic(cr) // Basic
	s.recordDist(cr)  // Dist
	s.recordChain(cr) // Chain
}

func (s *DropRecorder) Done() *stats.StatReport {
	report := &stats.StatReport{
		Summary: &stats.SummaryReport{
			GameName:      s.GameName,
			GameId:        s.GameId,
			Rounds:        s.Basic.Rounds,
			TotalScore:    s.Basic.TotalScore,
			NoMatchRounds: s.Basic.NoMatchRounds,
			CapHits:       s.Basic.CapHits,
			ProcErrors:    s.Basic.ProcErrors,
			TotalCascades: s.Basic.TotalCascades,
			MaxChain:      s.Basic.MaxChain,
			ClearedDice:   s.Basic.ClearedDice,
		},
		Chain: &stats.ChainReport{
			ChainCollect: s.Chain.ChainCollect,
			ScoreSqSum:   s.Basic.ScoreSqSum,
		},
		Dist: &stats.DistReport{
			ScoreBucket:  s.Dist.Bucket.Labels(),
			ScoreCollect: s.Dist.ScoreCollect,
			ScoreDist:    nil,
		},
	}

	return report
}

func (s *DropRecorder) recordBasic(cr *buf.CascadeResult) {
	sc := cr.TotalScore

	// Basic
	s.Basic.TotalScore += sc
	s.Basic.ScoreSqSum += sc * sc
	s.Basic.Rounds++
	s.Basic.TotalCascades += cr.CascadeCount

	if cr.CascadeCount == 0 {
		s.Basic.NoMatchRounds++
	}
	if cr.CascadeCount > s.Basic.MaxChain {
		s.Basic.MaxChain = cr.CascadeCount
	}
	switch cr.Reason {
	case buf.ReasonMaxCascadesReached:
		s.Basic.CapHits++
	case buf.ReasonProcessingError:
		s.Basic.ProcErrors++
	}
	for i := range cr.Steps {
		s.Basic.ClearedDice += cr.Steps[i].ClearedDice
	}
}

func (s *DropRecorder) recordDist(cr *buf.CascadeResult) {
	d := s.Dist
	d.ScoreCollect[d.Bucket.Index(cr.TotalScore)]++
}

func (s *DropRecorder) recordChain(cr *buf.CascadeResult) {
	n := cr.CascadeCount
	if n > spec.MaxCascadeLimit {
		n = spec.MaxCascadeLimit
	}
	s.Chain.ChainCollect[n]++
}

func newDistRecord() *DistRecord {
	d := new(DistRecord)
	d.Bucket = stats.NewScoreBuckets()
	d.ScoreCollect = make([]int, d.Bucket.Size())
	return d
}

func newChainRecord() *ChainRecord {
	c := new(ChainRecord)
	c.ChainCollect = make([]int, spec.MaxCascadeLimit+1)
	return c
}
