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

	"github.com/zintix-labs/dicelab/corefmt"
	"github.com/zintix-labs/dicelab/dto"
	"github.com/zintix-labs/dicelab/errs"
	"github.com/zintix-labs/dicelab/stats"
)

// DevSession
//
// 只提供給Dev模式使用的模擬器，單線(不併發)，重點在可審計、可重現
type DevSession struct {
	sim      *Simulator // 只開放Sim功能
	s        *Session   // 同步seed
	before   []byte
	after    []byte
	before64 string
	after64  string
}

type DevDropReport struct {
	Before        string              `json:"start_b64u"`
	After         string              `json:"after_b64u"`
	Round         int                 `json:"round"`
	TotalScore    int                 `json:"total_score"`
	AvgScore      float64             `json:"avg_score"`
	TotalCascades int                 `json:"total_cascades"`
	MaxChain      int                 `json:"max_chain"`
	Results       []dto.ResolveResult `json:"results"`
}

// dropOne 落一顆隨機骰並完整連鎖，附帶前後 Core 快照以便逐步審計。
func (d *DevSession) dropOne(ctx context.Context) (dto.ResolveResult, error) {
	be, err := d.s.SnapshotCore()
	if err != nil {
		return dto.ResolveResult{}, errs.Wrap(err, "before snapshot failed")
	}
	cr := d.s.DropInternal(ctx)
	af, err := d.s.SnapshotCore()
	if err != nil {
		return dto.ResolveResult{}, errs.Wrap(err, "after snapshot failed")
	}
	return dto.NewResolveResultDTO(d.s.gameName, d.s.gameId, cr, d.s.board.Grid(), be, af)
}

func (d *DevSession) Drops(round int) (DevDropReport, error) {
	// 限制檢查
	if round < 1 || round > 5000 {
		return DevDropReport{}, errs.NewWarn("round must be between 1 and 5,000")
	}

	// drop
	ctx := context.Background()
	ds := make([]dto.ResolveResult, 0, round)
	for range round {
		result, err := d.dropOne(ctx)
		if err != nil {
			return DevDropReport{}, errs.Wrap(err, "drop error")
		}
		ds = append(ds, result)
	}
	// 統計
	score, cascades, maxChain := 0, 0, 0
	for _, r := range ds {
		score += r.TotalScore
		cascades += r.CascadeCount
		if r.CascadeCount > maxChain {
			maxChain = r.CascadeCount
		}
	}

	de := DevDropReport{
		Before:        ds[0].State.StartCoreSnapB64U,
		After:         ds[len(ds)-1].State.AfterCoreSnapB64U,
		Round:         len(ds),
		TotalScore:    score,
		AvgScore:      float64(score) / float64(len(ds)),
		TotalCascades: cascades,
		MaxChain:      maxChain,
		Results:       ds,
	}
	return de, nil
}

func (d *DevSession) RestoreDrops(be64 string, round int) (DevDropReport, error) {
	// 限制檢查
	if round < 1 || round > 5000 {
		return DevDropReport{}, errs.NewWarn("round must be between 1 and 5,000")
	}
	// 解析seed
	be, err := corefmt.DecodeBase64URL(be64)
	if err != nil {
		return DevDropReport{}, errs.NewWarn("decode seed failed" + err.Error())
	}
	// restore
	if err := d.s.RestoreCore(be); err != nil {
		return DevDropReport{}, errs.NewWarn("session restore failed")
	}
	return d.Drops(round)
}

type DevSimReport struct {
	Before string            `json:"before"`
	After  string            `json:"after"`
	Stat   *stats.StatReport `json:"statistic"`
}

func (d *DevSession) Sim(round int) (DevSimReport, error) {
	// 先存 before 快照
	m := d.sim.sBuf[0]
	be, err := m.SnapshotCore()
	if err != nil {
		return DevSimReport{}, err
	}
	be64 := corefmt.EncodeBase64URL(be)
	d.before = be
	d.before64 = be64

	// Drop
	if round < 1 || round > 3_000_000 {
		return DevSimReport{}, errs.NewWarn("round must be between 1 and 3,000,000")
	}
	stat, _, err := d.sim.Sim(round, false)
	if err != nil {
		return DevSimReport{}, errs.Wrap(err, "sim failed")
	}

	// 再存 after 快照
	af, err := m.SnapshotCore()
	if err != nil {
		return DevSimReport{}, err
	}
	af64 := corefmt.EncodeBase64URL(af)
	d.after = af
	d.after64 = af64

	return DevSimReport{
		Before: be64,
		After:  af64,
		Stat:   stat,
	}, nil
}

func (d *DevSession) RestoreSim(be64 string, round int) (DevSimReport, error) {
	// 反解析 string -> []byte
	be, err := corefmt.DecodeBase64URL(be64)
	if err != nil {
		return DevSimReport{}, errs.Wrap(err, "decode seed failed")
	}
	d.before = be
	d.before64 = be64

	// restore
	if err := d.sim.sBuf[0].RestoreCore(be); err != nil {
		return DevSimReport{}, errs.Wrap(err, "restore simulator failed")
	}

	return d.Sim(round)
}
