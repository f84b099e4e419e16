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

package dto_test

import (
	"testing"

	"github.com/zintix-labs/dicelab/dto"
	"github.com/zintix-labs/dicelab/sdk/buf"
	"github.com/zintix-labs/dicelab/sdk/grid"
	"github.com/zintix-labs/dicelab/sdk/match"
	"github.com/zintix-labs/dicelab/spec"
)

func testGrid() *grid.Grid {
	g := grid.New(3, 3)
	g.SetDie(grid.Pos{X: 0, Y: 0}, grid.Die{ID: 1, Faces: 6, Value: 4, Color: 0})
	g.SetDie(grid.Pos{X: 2, Y: 1}, grid.Die{ID: 2, Faces: 6, Value: 2, Color: 1, Wild: true})
	return g
}

func TestNewBoardDTO(t *testing.T) {
	b := dto.NewBoardDTO(testGrid())
	if b.Cols != 3 || b.Rows != 3 {
		t.Fatalf("dims got %dx%d", b.Cols, b.Rows)
	}
	if len(b.Cells) != 2 {
		t.Fatalf("cells got %d want 2", len(b.Cells))
	}
	// 掃描序：由下而上、由左而右
	if b.Cells[0].X != 0 || b.Cells[0].Y != 0 {
		t.Fatalf("first cell got (%d,%d)", b.Cells[0].X, b.Cells[0].Y)
	}
	if b.Cells[1].Die.ID != 2 || !b.Cells[1].Die.Wild {
		t.Fatalf("second cell die got %+v", b.Cells[1].Die)
	}
}

func TestNewLockResultDTO(t *testing.T) {
	g := testGrid()
	lr := buf.NewLockResult()
	lr.Locked = true
	lr.GravityApplied = true
	lr.Matches = append(lr.Matches, match.Group{
		Positions: []grid.Pos{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}},
		FaceValue: 4,
		ColorCount: map[grid.Color]int{
			1: 1,
			0: 2,
		},
	})
	lr.ClearedPos = append(lr.ClearedPos, grid.Pos{X: 0, Y: 0})

	d, err := dto.NewLockResultDTO("dice", spec.GID(1), lr, g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.GameName != "dice" || !d.Locked || !d.GravityApplied {
		t.Fatalf("dto header got %+v", d)
	}
	if len(d.Matches) != 1 || d.Matches[0].Size != 3 || d.Matches[0].FaceValue != 4 {
		t.Fatalf("matches got %+v", d.Matches)
	}
	// color count 依 color id 穩定排序
	cc := d.Matches[0].ColorCount
	if len(cc) != 2 || cc[0] != [2]int{0, 2} || cc[1] != [2]int{1, 1} {
		t.Fatalf("color count got %v", cc)
	}
	if len(d.Cleared) != 1 || d.Cleared[0].X != 0 {
		t.Fatalf("cleared got %v", d.Cleared)
	}

	if _, err := dto.NewLockResultDTO("dice", spec.GID(1), nil, g); err == nil {
		t.Fatalf("nil lock result must be rejected")
	}
}

func TestNewResolveResultDTO(t *testing.T) {
	g := testGrid()
	cr := buf.NewCascadeResult()
	cr.AppendStep(buf.CascadeStep{ScoreDelta: 12, ClearedDice: 3, GravityMoved: true, Multiplier: 1})
	cr.AppendStep(buf.CascadeStep{ScoreDelta: 20, ClearedDice: 4, Multiplier: 2})
	cr.Reason = buf.ReasonMatchesExhausted

	d, err := dto.NewResolveResultDTO("dice", spec.GID(1), cr, g, []byte{1, 2}, []byte{3, 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.CascadeCount != 2 || d.TotalScore != 32 {
		t.Fatalf("totals got count %d score %d", d.CascadeCount, d.TotalScore)
	}
	if d.Reason != "matches_exhausted" {
		t.Fatalf("reason got %q", d.Reason)
	}
	if len(d.Steps) != 2 {
		t.Fatalf("steps got %d want 2", len(d.Steps))
	}
	if d.Steps[0].Cascade != 1 || d.Steps[1].Cascade != 2 {
		t.Fatalf("cascade numbering got %d %d", d.Steps[0].Cascade, d.Steps[1].Cascade)
	}
	if d.Steps[1].Score != 20 || d.Steps[1].Multiplier != 2 {
		t.Fatalf("step 2 got %+v", d.Steps[1])
	}
	if d.State.StartCoreSnapB64U == "" || d.State.AfterCoreSnapB64U == "" {
		t.Fatalf("state snapshots must be present")
	}

	if _, err := dto.NewResolveResultDTO("dice", spec.GID(1), nil, g, nil, nil); err == nil {
		t.Fatalf("nil cascade result must be rejected")
	}
}
