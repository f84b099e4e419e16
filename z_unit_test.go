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
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zintix-labs/dicelab/sdk/buf"
	"github.com/zintix-labs/dicelab/sdk/core"
	"github.com/zintix-labs/dicelab/sdk/grid"
	"github.com/zintix-labs/dicelab/sdk/match"
	"github.com/zintix-labs/dicelab/sdk/score"
	"github.com/zintix-labs/dicelab/spec"
)

const testGameYAML = `
game_name: testgame
game_id: 7
logic_key: face_sum
board_setting:
  columns: 5
  rows: 5
match_setting:
  min_match: 3
cascade_setting:
  max_cascades: 10
dice_setting:
  faces: 6
  colors: [red, blue]
  wild_weight: 1
  joiner_weight: 1
`

func testSetting(t *testing.T) *spec.GameSetting {
	t.Helper()
	gs, err := spec.GetGameSettingByYAML([]byte(testGameYAML))
	require.NoError(t, err)
	return gs
}

func testRegistry(t *testing.T) *score.Registry {
	t.Helper()
	reg := score.NewRegistry()
	require.NoError(t, score.RegisterDefault(reg))
	return reg
}

func testSession(t *testing.T, seed int64) *Session {
	t.Helper()
	s, err := newSessionWithSeed(testSetting(t), testRegistry(t), core.Default(), seed)
	require.NoError(t, err)
	return s
}

// placeRun 在盤面底排連續放 n 顆同面值骰。
func placeRun(g *grid.Grid, value int, n int) {
	for x := 0; x < n; x++ {
		g.SetDie(grid.Pos{X: x, Y: 0}, grid.Die{ID: int64(x + 1), Faces: 6, Value: value})
	}
}

// ---------------------------------------------------------------------------
// Multiplier
// ---------------------------------------------------------------------------

func TestMultiplierLifecycle(t *testing.T) {
	m := NewMultiplier()
	require.Equal(t, 1, m.Value())

	m.Increment()
	m.Increment()
	require.Equal(t, 3, m.Value())

	m.Reset()
	require.Equal(t, 1, m.Value())
}

func TestMultiplierExpiryPolling(t *testing.T) {
	m := NewMultiplier()
	m.Increment()

	// 沒有設定期限時永遠不逾時
	require.False(t, m.CheckExpiryAt(time.Now().Add(time.Hour)))
	require.Equal(t, 2, m.Value())

	now := time.Now()
	m.StartExpiry(100 * time.Millisecond)
	require.False(t, m.CheckExpiryAt(now.Add(50*time.Millisecond)))
	require.Equal(t, 2, m.Value())

	require.True(t, m.CheckExpiryAt(now.Add(200*time.Millisecond)))
	require.Equal(t, 1, m.Value())

	// Reset 後期限被清除
	m.Increment()
	m.StartExpiry(0)
	m.Reset()
	require.False(t, m.CheckExpiryAt(time.Now().Add(time.Hour)))
}

// ---------------------------------------------------------------------------
// CascadeOrchestrator
// ---------------------------------------------------------------------------

func TestCascadeLimitClamped(t *testing.T) {
	s := testSession(t, 1)
	o := s.Orchestrator()

	require.Equal(t, 10, o.MaxCascades())

	o.SetMaxCascades(-1)
	require.Equal(t, 1, o.MaxCascades())

	o.SetMaxCascades(100)
	require.Equal(t, 50, o.MaxCascades())

	o.SetMaxCascades(0)
	require.Equal(t, 1, o.MaxCascades())
}

func TestResolveEmptyBoard(t *testing.T) {
	s := testSession(t, 2)
	r := s.Orchestrator().Resolve(context.Background())

	require.Equal(t, 0, r.CascadeCount)
	require.Equal(t, 0, r.TotalScore)
	require.Equal(t, buf.ReasonMatchesExhausted, r.Reason)
}

func TestResolveSingleCascade(t *testing.T) {
	s := testSession(t, 3)
	placeRun(s.Board().Grid(), 4, 3)

	r := s.Orchestrator().Resolve(context.Background())
	require.Equal(t, 1, r.CascadeCount)
	require.Equal(t, 12, r.TotalScore) // 4 * 3 顆 * 倍率1
	require.Equal(t, buf.ReasonMatchesExhausted, r.Reason)
	require.Len(t, r.Steps, 1)
	require.Equal(t, 3, r.Steps[0].ClearedDice)
	require.Equal(t, 1, r.Steps[0].Multiplier)
	require.Equal(t, 0, s.Board().Grid().OccupiedCount())

	// 每輪結算後倍率遞增
	require.Equal(t, 2, s.Orchestrator().Multiplier().Value())
}

func TestResolveCapReached(t *testing.T) {
	s := testSession(t, 4)
	s.Orchestrator().SetMaxCascades(1)
	placeRun(s.Board().Grid(), 5, 3)

	r := s.Orchestrator().Resolve(context.Background())
	require.Equal(t, 1, r.CascadeCount)
	require.Equal(t, buf.ReasonMaxCascadesReached, r.Reason)
}

func TestResolveProcessingError(t *testing.T) {
	g := grid.New(3, 3)
	for x := 0; x < 3; x++ {
		g.SetDie(grid.Pos{X: x, Y: 0}, grid.Die{Faces: 6, Value: 2})
	}
	failing := score.ProcessorFunc(func(ctx context.Context, groups []match.Group) (score.Outcome, error) {
		return score.Outcome{}, errors.New("scorer down")
	})
	o := NewCascadeOrchestrator(g, failing, nil, nil, 3, nil)

	r := o.Resolve(context.Background())
	require.Equal(t, 0, r.CascadeCount)
	require.Equal(t, 0, r.TotalScore)
	require.Equal(t, buf.ReasonProcessingError, r.Reason)
	require.False(t, o.IsProcessing())
}

func TestResolveReentrancyRejected(t *testing.T) {
	g := grid.New(3, 3)
	for x := 0; x < 3; x++ {
		g.SetDie(grid.Pos{X: x, Y: 0}, grid.Die{Faces: 6, Value: 3})
	}

	var o *CascadeOrchestrator
	var inner *buf.CascadeResult
	proc := score.ProcessorFunc(func(ctx context.Context, groups []match.Group) (score.Outcome, error) {
		inner = o.Resolve(ctx) // 暫停點上重入
		return score.Outcome{TotalScore: 9, ClearedDice: 3, MatchesFound: len(groups)}, nil
	})
	o = NewCascadeOrchestrator(g, proc, nil, nil, 3, nil)

	outer := o.Resolve(context.Background())
	require.NotNil(t, inner)
	require.Equal(t, 0, inner.CascadeCount)
	require.Equal(t, 0, inner.TotalScore)
	require.Equal(t, buf.ReasonNone, inner.Reason)

	require.Equal(t, 1, outer.CascadeCount)
	require.Equal(t, 9, outer.TotalScore)
}

func TestResolveForceStop(t *testing.T) {
	g := grid.New(3, 3)
	for x := 0; x < 3; x++ {
		g.SetDie(grid.Pos{X: x, Y: 0}, grid.Die{Faces: 6, Value: 6})
	}

	var o *CascadeOrchestrator
	proc := score.ProcessorFunc(func(ctx context.Context, groups []match.Group) (score.Outcome, error) {
		o.ForceStop()
		return score.Outcome{TotalScore: 18}, nil
	})
	o = NewCascadeOrchestrator(g, proc, nil, nil, 3, nil)

	r := o.Resolve(context.Background())
	// 進行中那一輪仍會完成，下一輪檢查才收束
	require.Equal(t, 1, r.CascadeCount)
	require.Equal(t, buf.ReasonForcedStop, r.Reason)
	require.False(t, o.IsProcessing())
	require.Equal(t, 0, o.CascadeCount())
}

func TestCascadeStatsAccumulate(t *testing.T) {
	s := testSession(t, 5)
	placeRun(s.Board().Grid(), 4, 3)
	s.Orchestrator().Resolve(context.Background())

	st := s.Orchestrator().Stats()
	require.Equal(t, int64(1), st.TotalCascadesProcessed)
	require.Equal(t, int64(12), st.TotalChainScore)
	require.Equal(t, 1.0, st.AverageChainMultiplier)
	require.Equal(t, 10, st.MaxCascadeLimit)
}

// ---------------------------------------------------------------------------
// GameBoard
// ---------------------------------------------------------------------------

func TestLockAtInvalidPosition(t *testing.T) {
	b := NewGameBoard(3, 3)
	r := b.LockAt(grid.Pos{X: 9, Y: 9}, grid.Die{Faces: 6, Value: 1}, 3)
	require.False(t, r.Locked)
	require.Equal(t, 0, b.Grid().OccupiedCount())
}

func TestLockAtResolvesOnce(t *testing.T) {
	b := NewGameBoard(3, 3)
	b.LockCell(grid.Pos{X: 0, Y: 0}, grid.Die{Faces: 6, Value: 2})
	b.LockCell(grid.Pos{X: 1, Y: 0}, grid.Die{Faces: 6, Value: 2})

	r := b.LockAt(grid.Pos{X: 2, Y: 0}, grid.Die{Faces: 6, Value: 2}, 3)
	require.True(t, r.Locked)
	require.Len(t, r.Matches, 1)
	require.Len(t, r.ClearedPos, 3)
	require.Equal(t, 0, b.Grid().OccupiedCount())
}

// ---------------------------------------------------------------------------
// Session
// ---------------------------------------------------------------------------

func TestSessionLockGidMismatch(t *testing.T) {
	s := testSession(t, 6)
	_, err := s.Lock(&buf.LockRequest{GameId: 999})
	require.Error(t, err)
}

func TestSessionResolveScoring(t *testing.T) {
	s := testSession(t, 7)
	req := &buf.ResolveRequest{
		GameId: 7,
		Placements: []buf.PlacementSpec{
			{X: 0, Y: 0, Die: buf.DieSpec{Value: 5, Color: 0}},
			{X: 1, Y: 0, Die: buf.DieSpec{Value: 5, Color: 1}},
			{X: 2, Y: 0, Die: buf.DieSpec{Value: 5, Color: 0}},
			{X: 4, Y: 0, Die: buf.DieSpec{Value: 2, Color: 1}},
		},
	}
	d, err := s.Resolve(context.Background(), req)
	require.NoError(t, err)

	require.Equal(t, "testgame", d.GameName)
	require.Equal(t, 1, d.CascadeCount)
	require.Equal(t, 15, d.TotalScore)
	require.Equal(t, "matches_exhausted", d.Reason)
	require.Len(t, d.Board.Cells, 1) // 剩那顆 2
	require.NotEmpty(t, d.State.StartCoreSnapB64U)
}

func TestSessionResolveDeterminism(t *testing.T) {
	req := &buf.ResolveRequest{
		GameId: 7,
		Placements: []buf.PlacementSpec{
			{X: 0, Y: 0, Die: buf.DieSpec{Value: 3}},
			{X: 1, Y: 0, Die: buf.DieSpec{Value: 3}},
			{X: 2, Y: 0, Die: buf.DieSpec{Value: 3}},
		},
	}

	d1, err := testSession(t, 42).Resolve(context.Background(), req)
	require.NoError(t, err)
	d2, err := testSession(t, 42).Resolve(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, d1, d2)
}

func TestSessionDropDeterminism(t *testing.T) {
	s1 := testSession(t, 99)
	s2 := testSession(t, 99)
	ctx := context.Background()

	for i := 0; i < 200; i++ {
		r1 := s1.DropInternal(ctx)
		r2 := s2.DropInternal(ctx)
		require.Equal(t, r1.TotalScore, r2.TotalScore, "round %d", i)
		require.Equal(t, r1.CascadeCount, r2.CascadeCount, "round %d", i)
	}
}

func TestSessionSnapshotRestore(t *testing.T) {
	s := testSession(t, 13)

	snap, err := s.SnapshotCore()
	require.NoError(t, err)

	first := make([]int, 16)
	for i := range first {
		first[i] = s.core.IntN(1000)
	}

	require.NoError(t, s.RestoreCore(snap))
	for i := range first {
		require.Equal(t, first[i], s.core.IntN(1000), "draw %d", i)
	}
}

// ---------------------------------------------------------------------------
// SessionPool / Runtime
// ---------------------------------------------------------------------------

func TestSessionPoolBorrowReturn(t *testing.T) {
	p, err := newSessionPool(2, testSetting(t), testRegistry(t), core.Default(), 1)
	require.NoError(t, err)
	require.Equal(t, 2, p.Available())

	// 非致命錯誤（gid 不符）：Session 要歸還
	_, err = p.Lock(context.Background(), &buf.LockRequest{GameId: 999})
	require.Error(t, err)
	require.Equal(t, 2, p.Available())
	require.Equal(t, 0, p.ReBuild())

	d, err := p.Lock(context.Background(), &buf.LockRequest{
		GameId: 7, X: 0, Y: 0, Die: buf.DieSpec{Value: 1},
	})
	require.NoError(t, err)
	require.True(t, d.Locked)
	require.Equal(t, 2, p.Available())

	p.Close()
	require.True(t, p.Closed())
	_, err = p.Lock(context.Background(), &buf.LockRequest{GameId: 7})
	require.Error(t, err)
}

func TestSessionPoolContextCanceled(t *testing.T) {
	p, err := newSessionPool(1, testSetting(t), testRegistry(t), core.Default(), 1)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Resolve(ctx, &buf.ResolveRequest{GameId: 7})
	require.Error(t, err)
	require.Equal(t, 1, p.Available())
}

func testLab(t *testing.T) *Dicelab {
	t.Helper()
	cfgFS := fstest.MapFS{
		"testgame.yaml": &fstest.MapFile{Data: []byte(testGameYAML)},
	}
	lab, err := NewAuto(core.Default(), Configs(cfgFS), Logics(testRegistry(t)))
	require.NoError(t, err)
	return lab
}

func TestRuntimeRouting(t *testing.T) {
	lab := testLab(t)
	rt, err := lab.BuildRuntime(1)
	require.NoError(t, err)

	_, err = rt.Lock(context.Background(), &buf.LockRequest{GameId: 404})
	require.Error(t, err)

	d, err := rt.Resolve(context.Background(), &buf.ResolveRequest{
		GameId: 7,
		Placements: []buf.PlacementSpec{
			{X: 0, Y: 0, Die: buf.DieSpec{Value: 6}},
			{X: 1, Y: 0, Die: buf.DieSpec{Value: 6}},
			{X: 2, Y: 0, Die: buf.DieSpec{Value: 6}},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 18, d.TotalScore)

	metrics := rt.PoolMetrics()
	require.Len(t, metrics, 1)
	require.Equal(t, spec.GID(7), metrics[0].GameID)

	rt.Close()
	require.True(t, rt.Closed())
	_, err = rt.Resolve(context.Background(), &buf.ResolveRequest{GameId: 7})
	require.Error(t, err)
}

func TestDicelabSummary(t *testing.T) {
	lab := testLab(t)
	sum, err := lab.Summary()
	require.NoError(t, err)
	require.Len(t, sum, 1)
	require.Equal(t, "testgame", sum[0].Name)
	require.Equal(t, 5, sum[0].Columns)
	require.Equal(t, 10, sum[0].MaxCascades)
}

func TestSimulatorSim(t *testing.T) {
	lab := testLab(t)
	sim, err := lab.NewSimulatorWithSeed(7, 17)
	require.NoError(t, err)

	st, used, err := sim.Sim(500, false)
	require.NoError(t, err)
	require.Equal(t, 500, st.Summary.Rounds)
	require.GreaterOrEqual(t, st.Summary.TotalScore, 0)
	require.Greater(t, used, time.Duration(0))
}

// ---------------------------------------------------------------------------
// seedMaker
// ---------------------------------------------------------------------------

func TestSeedMakerUniqueNonNegative(t *testing.T) {
	sm := newSeedMaker(1)
	seen := make(map[int64]bool, 10000)
	for i := 0; i < 10000; i++ {
		v := sm.next()
		require.GreaterOrEqual(t, v, int64(0))
		require.False(t, seen[v], "duplicate seed %d", v)
		seen[v] = true
	}
}

func TestSeedMakerDeterministic(t *testing.T) {
	a := newSeedMaker(5)
	b := newSeedMaker(5)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.next(), b.next())
	}
}
