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

// Package dto 定義對外輸出的序列化結構。
//
// 引擎內部（sdk/buf）的結果是可重用 buffer，每次呼叫會被覆寫；
// 要離開臨界區、進入 HTTP / 日誌 / 存檔，就先轉成這裡的 DTO（深拷貝）。
package dto

import (
	"sort"

	"github.com/zintix-labs/dicelab/corefmt"
	"github.com/zintix-labs/dicelab/errs"
	"github.com/zintix-labs/dicelab/sdk/buf"
	"github.com/zintix-labs/dicelab/sdk/grid"
	"github.com/zintix-labs/dicelab/sdk/match"
	"github.com/zintix-labs/dicelab/spec"
)

type PosDTO struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type DieDTO struct {
	ID     int64 `json:"id"`
	Value  int   `json:"value"`
	Color  int   `json:"color"`
	Wild   bool  `json:"wild,omitempty"`
	Joiner bool  `json:"joiner,omitempty"`
}

// CellDTO 是盤面上一顆已佔用的骰子（空格不輸出）。
type CellDTO struct {
	X   int    `json:"x"`
	Y   int    `json:"y"`
	Die DieDTO `json:"die"`
}

// BoardDTO 輸出盤面快照：只列已佔用格，依掃描序（由下而上、由左而右）。
type BoardDTO struct {
	Cols  int       `json:"cols"`
	Rows  int       `json:"rows"`
	Cells []CellDTO `json:"cells,omitempty"`
}

type MatchGroupDTO struct {
	Positions  []PosDTO `json:"positions"`
	Size       int      `json:"size"`
	FaceValue  int      `json:"face_value"` // 0 代表整群都是 wild/joiner
	ColorCount [][2]int `json:"color_count,omitempty"`
}

// LockResult 是「落一顆骰、結算一輪」的對外結果。
type LockResult struct {
	GameName       string          `json:"game"`
	GameID         spec.GID        `json:"gameid"`
	Locked         bool            `json:"locked"`
	Matches        []MatchGroupDTO `json:"matches,omitempty"`
	Cleared        []PosDTO        `json:"cleared,omitempty"`
	GravityApplied bool            `json:"gravity_applied"`
	Board          BoardDTO        `json:"board"`
}

type CascadeStepDTO struct {
	Cascade      int             `json:"cascade"` // 第幾輪（從 1 起算）
	Score        int             `json:"score"`
	ClearedDice  int             `json:"cleared_dice"`
	GravityMoved bool            `json:"gravity_moved"`
	Multiplier   int             `json:"multiplier"`
	Groups       []MatchGroupDTO `json:"groups,omitempty"`
}

// ResolveState 帶回觸發前後的 RNG 快照（base64url），供追溯與重現。
type ResolveState struct {
	StartCoreSnapB64U string `json:"start_b64u"`
	AfterCoreSnapB64U string `json:"after_b64u"`
}

// ResolveResult 是一次完整連鎖觸發的對外結果。
type ResolveResult struct {
	GameName     string           `json:"game"`
	GameID       spec.GID         `json:"gameid"`
	CascadeCount int              `json:"cascade_count"`
	TotalScore   int              `json:"total_score"`
	Reason       string           `json:"reason"`
	Steps        []CascadeStepDTO `json:"steps,omitempty"`
	Board        BoardDTO         `json:"board"`
	State        ResolveState     `json:"state"`
}

// NewBoardDTO 深拷貝盤面快照。
func NewBoardDTO(g *grid.Grid) BoardDTO {
	b := BoardDTO{
		Cols: g.Cols(),
		Rows: g.Rows(),
	}
	for _, p := range g.OccupiedPositions() {
		c := g.GetCell(p)
		b.Cells = append(b.Cells, CellDTO{
			X: p.X,
			Y: p.Y,
			Die: DieDTO{
				ID:     c.Die.ID,
				Value:  c.Die.Value,
				Color:  int(c.Die.Color),
				Wild:   c.Die.Wild,
				Joiner: c.Die.Joiner,
			},
		})
	}
	return b
}

func newMatchGroupDTO(g *match.Group) MatchGroupDTO {
	d := MatchGroupDTO{
		Positions: make([]PosDTO, len(g.Positions)),
		Size:      g.Size(),
		FaceValue: g.FaceValue,
	}
	for i, p := range g.Positions {
		d.Positions[i] = PosDTO{X: p.X, Y: p.Y}
	}
	for color, n := range g.ColorCount {
		d.ColorCount = append(d.ColorCount, [2]int{int(color), n})
	}
	sort.Slice(d.ColorCount, func(i, j int) bool { return d.ColorCount[i][0] < d.ColorCount[j][0] })
	return d
}

func newMatchGroupDTOs(groups []match.Group) []MatchGroupDTO {
	if len(groups) == 0 {
		return nil
	}
	out := make([]MatchGroupDTO, len(groups))
	for i := range groups {
		out[i] = newMatchGroupDTO(&groups[i])
	}
	return out
}

// NewLockResultDTO 把可重用的 LockResult buffer 轉成對外 DTO。
func NewLockResultDTO(name string, id spec.GID, lr *buf.LockResult, g *grid.Grid) (LockResult, error) {
	if lr == nil {
		return LockResult{}, errs.NewWarn("lock result is nil")
	}
	d := LockResult{
		GameName:       name,
		GameID:         id,
		Locked:         lr.Locked,
		Matches:        newMatchGroupDTOs(lr.Matches),
		GravityApplied: lr.GravityApplied,
		Board:          NewBoardDTO(g),
	}
	if len(lr.ClearedPos) > 0 {
		d.Cleared = make([]PosDTO, len(lr.ClearedPos))
		for i, p := range lr.ClearedPos {
			d.Cleared[i] = PosDTO{X: p.X, Y: p.Y}
		}
	}
	return d, nil
}

// NewResolveResultDTO 把可重用的 CascadeResult buffer 轉成對外 DTO。
func NewResolveResultDTO(name string, id spec.GID, cr *buf.CascadeResult, g *grid.Grid, startSnap []byte, afterSnap []byte) (ResolveResult, error) {
	if cr == nil {
		return ResolveResult{}, errs.NewWarn("cascade result is nil")
	}
	d := ResolveResult{
		GameName:     name,
		GameID:       id,
		CascadeCount: cr.CascadeCount,
		TotalScore:   cr.TotalScore,
		Reason:       cr.Reason.String(),
		Board:        NewBoardDTO(g),
		State: ResolveState{
			StartCoreSnapB64U: corefmt.EncodeBase64URL(startSnap),
			AfterCoreSnapB64U: corefmt.EncodeBase64URL(afterSnap),
		},
	}
	if len(cr.Steps) > 0 {
		d.Steps = make([]CascadeStepDTO, len(cr.Steps))
		for i, s := range cr.Steps {
			d.Steps[i] = CascadeStepDTO{
				Cascade:      i + 1,
				Score:        s.ScoreDelta,
				ClearedDice:  s.ClearedDice,
				GravityMoved: s.GravityMoved,
				Multiplier:   s.Multiplier,
				Groups:       newMatchGroupDTOs(s.Groups),
			}
		}
	}
	return d, nil
}
