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
	"crypto/rand"
	"io"
	"math"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/dicelab/errs"
	"github.com/zintix-labs/dicelab/recorder"
	"github.com/zintix-labs/dicelab/sdk/core"
	"github.com/zintix-labs/dicelab/sdk/score"
	"github.com/zintix-labs/dicelab/spec"
	"github.com/zintix-labs/dicelab/stats"
)

const capPrepare int = 100

// Simulator 用於模擬遊戲行為，可建立多個 Session 並平行紀錄統計。
//
// 一個 round = 一次落骰（隨機欄位、隨機骰面）+ 一段完整連鎖觸發。
type Simulator struct {
	GameName  string                   // 遊戲名稱
	GameId    spec.GID                 // 遊戲名稱enum
	gs        *spec.GameSetting        // 方便重用建立DropRecorder
	logic     *score.Registry          // 計分邏輯註冊表
	cf        core.PRNGFactory         // 亂數生成器
	initSeed  int64                    // 初始下的種子
	seedmaker *seedMaker               // 種子生成器
	sBuf      []*Session               // 併發執行Session實例
	rBuf      []*recorder.DropRecorder // 併發遊戲紀錄員
	stBuf     []*stats.StatReport      // 併發統計結果報表(僅Sessions需要)
}

func newSimulator(gs *spec.GameSetting, reg *score.Registry, cf core.PRNGFactory) (*Simulator, error) {
	seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(gs, reg, cf, seed.Int64())
}

func newSimulatorWithSeed(gs *spec.GameSetting, reg *score.Registry, cf core.PRNGFactory, seed int64) (*Simulator, error) {
	s := &Simulator{
		GameName:  gs.GameName,
		GameId:    gs.GameID,
		gs:        gs,
		logic:     reg,
		cf:        cf,
		initSeed:  seed,
		seedmaker: newSeedMaker(seed),
		sBuf:      make([]*Session, 1, capPrepare),
		rBuf:      make([]*recorder.DropRecorder, 0, capPrepare),
		stBuf:     make([]*stats.StatReport, 0, capPrepare),
	}
	m, err := newSessionWithSeed(gs, reg, cf, s.initSeed)
	if err != nil {
		return nil, err
	}
	s.sBuf[0] = m
	return s, nil
}

// Sim 單線模擬器：以一個 Session 連續跑指定 round 並回傳統計結果與用時
func (s *Simulator) Sim(round int, showpb bool) (*stats.StatReport, time.Duration, error) {
	defer s.reset()
	if round < 1 {
		return nil, 0, errs.NewWarn("round must > 0")
	}
	if len(s.rBuf) == 0 {
		r, err := recorder.NewDropRecorder(s.GameName, s.GameId)
		if err != nil {
			return nil, 0, err
		}
		s.rBuf = append(s.rBuf, r)
	}
	r := s.rBuf[0]
	m := s.sBuf[0]
	ctx := context.Background()

	bar := pb.StartNew(round)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	for i := 0; i < round; i++ {
		cr := m.DropInternal(ctx)
		r.Record(cr)
		bar.Increment()
	}
	used := time.Since(bar.StartTime())
	bar.Finish()
	result := r.Done()
	result.Done()

	return result, used, nil
}

// SimMP 平行執行多個 Session，總計 rounds*mp 次落骰，合併統計結果後 回傳統計結果與用時
func (s *Simulator) SimMP(rounds int, mp int, showpb bool) (*stats.StatReport, time.Duration, error) {
	defer s.reset()
	if mp <= 0 {
		return nil, 0, errs.NewWarn("workers must > 0")
	}
	if rounds < 1 {
		return nil, 0, errs.NewWarn("round must > 0")
	}
	for len(s.sBuf) < mp {
		m, err := newSessionWithSeed(s.gs, s.logic, s.cf, s.seedmaker.next())
		if err != nil {
			return nil, 0, err
		}
		s.sBuf = append(s.sBuf, m)
	}

	for len(s.rBuf) < mp {
		r, err := recorder.NewDropRecorder(s.GameName, s.GameId)
		if err != nil {
			return nil, 0, err
		}
		s.rBuf = append(s.rBuf, r)
	}

	wg := new(sync.WaitGroup)
	wg.Add(mp)
	bar := pb.StartNew(rounds * mp)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	for i := 0; i < mp; i++ {
		go func(i int) {
			defer wg.Done()
			ctx := context.Background()
			g := s.sBuf[i]
			st := s.rBuf[i]
			for r := 0; r < rounds; r++ {
				cr := g.DropInternal(ctx)
				st.Record(cr)
				bar.Increment()
			}
		}(i)
	}
	wg.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()

	st, err := recorder.MergeDropRecorder(s.rBuf)
	if err != nil {
		return nil, 0, err
	}
	result := st.Done()
	result.Done()

	return result, used, nil
}

// SimSessions 模擬多個玩家各自的遊戲歷程，並產出整體報表與玩家局段報表。
//
// 每位玩家各自獨立累積 rounds 次落骰的統計，用於觀察個別體驗的離散程度。
func (s *Simulator) SimSessions(mp int, players int, rounds int, showpb bool) (*stats.StatReport, *stats.EstimatorSessions, time.Duration, error) {
	defer s.reset()
	if players < 1 || rounds < 1 || mp < 1 {
		return nil, nil, 0, errs.NewWarn("invalid param")
	}

	// 	準備並行Session
	for len(s.sBuf) < mp {
		m, err := newSessionWithSeed(s.gs, s.logic, s.cf, s.seedmaker.next())
		if err != nil {
			return nil, nil, 0, err
		}
		s.sBuf = append(s.sBuf, m)
	}

	// 準備玩家
	s.stBuf = make([]*stats.StatReport, players)
	for len(s.rBuf) < players {
		r, err := recorder.NewDropRecorder(s.GameName, s.GameId)
		if err != nil {
			return nil, nil, 0, err
		}
		s.rBuf = append(s.rBuf, r)
	}
	// 作一個2048大小的緩衝channel 使player依序處理
	jobs := make(chan *recorder.DropRecorder, 2048)

	wg := new(sync.WaitGroup)
	wg.Add(mp) // 併發Session

	bar := pb.StartNew(players)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	// 併發執行
	for w := 0; w < mp; w++ {
		go sim(wg, s.sBuf[w], jobs, rounds, bar)
	}
	// 此時併發已經完成，但由於所有workers都無法從jobs當中取出j(還沒塞進去) 所以不會結束

	// 塞進玩家，開始模擬
	for _, j := range s.rBuf {
		jobs <- j
	}
	close(jobs) // 玩家送完處理完畢關閉通道 通知所有Session不會再有新資料
	wg.Wait()   // 等待Session都執行完任務
	used := time.Since(bar.StartTime())
	bar.Finish()

	// 整體基準報表
	record, err := recorder.MergeDropRecorder(s.rBuf)
	if err != nil {
		return nil, nil, 0, err
	}
	st := record.Done()
	st.Done()

	// 玩家分析報表
	for i, r := range s.rBuf {
		s.stBuf[i] = r.Done()
		s.stBuf[i].Done()
	}
	est := stats.EstimatorSessionExp(s.stBuf)
	return st, est, used, nil
}

func sim(wg *sync.WaitGroup, m *Session, jobs chan *recorder.DropRecorder, rounds int, bar *pb.ProgressBar) {
	defer wg.Done()
	ctx := context.Background()
	for j := range jobs { // j := <- jobs
		for range rounds {
			cr := m.DropInternal(ctx)
			j.Record(cr)
		}
		j.Done()
		bar.Increment()
	}
}

func (s *Simulator) reset() {
	s.rBuf = s.rBuf[:0]
	s.stBuf = s.stBuf[:0]
}

const mask63 = uint64(1<<63) - 1

type seedMaker struct {
	state atomic.Uint64 // always in [0, 2^63)
}

func newSeedMaker(seed int64) *seedMaker {
	s := &seedMaker{}
	s.state.Store(uint64(seed) & mask63)
	return s
}

// state 走全週期（不重複），再用可逆 mix63 打散
//
// 注意：此方法可能在併發環境下被多 goroutines 同時呼叫（例如 SimMP / SimSessions）。
// 因此 state 的推進必須是原子的：
//   - 使用 CAS（Compare-And-Swap）迴圈確保每次呼叫都會取得唯一的下一個 state。
//   - 回傳值使用推進後的 state 經 mix63 打散後的結果。
func (s *seedMaker) next() int64 {
	for {
		old := s.state.Load()                                            // always masked
		next := (old*6364136223846793005 + 1442695040888963407) & mask63 // full-period LCG mod 2^63
		if s.state.CompareAndSwap(old, next) {
			return int64(mix63(next)) // 一定非負
		}
	}
}

// mix63：只用「可逆」的 bit 操作 + 乘奇數（mod 2^63）
func mix63(x uint64) uint64 {
	x &= mask63
	x ^= x >> 30
	x = (x * 0xBF58476D1CE4E5B9) & mask63 // 乘奇數 ⇒ mod 2^63 可逆
	x ^= x >> 27
	x = (x * 0x94D049BB133111EB) & mask63
	x ^= x >> 31
	return x & mask63
}
