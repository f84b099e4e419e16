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

package stats

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// ============================================================
// ** 結構宣告 **
// ============================================================

// 玩家局段體驗評估
type EstimatorSessions struct {
	ScoreStat ScoreStat
	EventStat EventStat
	ChainStat ChainStat
}

// 得分敘事
type ScoreStat struct {
	ExpMedian PointStat // 描述體驗的中位數（平均每次落骰得分）
	ExpPerc   ExpPerc   // 描述玩家的分布(對應平均得分)
	ScorePerc ScorePerc // 描述平均得分的分布(對應多少比例的玩家)
}

// 用玩家體驗分位數視角看: 最差10％玩家的平均得分 最差33%玩家的平均得分 ...
type ExpPerc struct {
	ExpP10 PointStat
	ExpP33 PointStat
	ExpP67 PointStat
	ExpP90 PointStat
}

// 用平均得分視角看玩家: 有多少玩家平均每骰拿不到 1 分 拿不到 3 分 ...
type ScorePerc struct {
	Score1  PointStat
	Score3  PointStat
	Score5  PointStat
	Score10 PointStat
}

// PointStat 點估計 回傳 估計值 以及信賴區間
type PointStat struct {
	Hat float64
	CI  CI
}

// 事件敘事
type EventStat struct {
	CapHit EventCount
	Bucket BucketEvent
}

// 事件點估計
type EventCount struct {
	Zero PointStat
	One  PointStat
	Two  PointStat
	More PointStat
}

// 對應分桶的統計
type BucketEvent struct {
	BucketLable []string     // 分桶標籤
	BucketCount []EventCount // 分桶事件點估計
}

// 連鎖敘事
type ChainStat struct {
	Chain3 PointStat // 最長連鎖 >= 3
	Chain5 PointStat // 最長連鎖 >= 5
	ChainX PointStat // 連鎖曾打到上限
}

// ============================================================
// ** 對外 : 玩家局段體驗評估 **
// ============================================================

// EstimatorSessionExp 玩家局段體驗評估
//
// 1. Score 敘事 : 描述玩家大致的平均得分分布
//
// 2. Event 敘事 : 描述玩家遇到某些事件(連鎖打到上限、單骰中過某個分數級距的機率)
//
// 3. Chain 敘事 : 描述玩家在局段內見過的最長連鎖
func EstimatorSessionExp(sts []*StatReport) *EstimatorSessions {
	// 0. 防禦：空輸入
	n := len(sts)
	out := &EstimatorSessions{}
	if n == 0 {
		return out
	}

	// ------------------------------------------------------------
	// 1) Score 敘事：收集每位玩家平均得分並做分位/CI
	// ------------------------------------------------------------
	avg := make([]float64, n)
	for i, s := range sts {
		avg[i] = s.AvgScore()
	}

	// 中位數 (點估計 + 95% CI)
	medHat := quantilePoint(avg, 0.5)
	medLo, medHi := quantileCI(avg, 0.5, 0.95)

	// P10, P33, P67, P90 (點估計 + 95% CI)
	p10Hat := quantilePoint(avg, 0.10)
	p10Lo, p10Hi := quantileCI(avg, 0.10, 0.95)

	p33Hat := quantilePoint(avg, 1.0/3.0)
	p33Lo, p33Hi := quantileCI(avg, 1.0/3.0, 0.95)

	p67Hat := quantilePoint(avg, 2.0/3.0)
	p67Lo, p67Hi := quantileCI(avg, 2.0/3.0, 0.95)

	p90Hat := quantilePoint(avg, 0.90)
	p90Lo, p90Hi := quantileCI(avg, 0.90, 0.95)

	// 平均得分對標：≤ 1/3/5/10 分的玩家比例（CP 95% CI）
	s1Hat, s1CI := percentileCIForValue(avg, 1.0, 0.95)
	s3Hat, s3CI := percentileCIForValue(avg, 3.0, 0.95)
	s5Hat, s5CI := percentileCIForValue(avg, 5.0, 0.95)
	s10Hat, s10CI := percentileCIForValue(avg, 10.0, 0.95)

	out.ScoreStat = ScoreStat{
		ExpMedian: PointStat{Hat: medHat, CI: CI{Lo: medLo, Hi: medHi}},
		ExpPerc: ExpPerc{
			ExpP10: PointStat{Hat: p10Hat, CI: CI{Lo: p10Lo, Hi: p10Hi}},
			ExpP33: PointStat{Hat: p33Hat, CI: CI{Lo: p33Lo, Hi: p33Hi}},
			ExpP67: PointStat{Hat: p67Hat, CI: CI{Lo: p67Lo, Hi: p67Hi}},
			ExpP90: PointStat{Hat: p90Hat, CI: CI{Lo: p90Lo, Hi: p90Hi}},
		},
		ScorePerc: ScorePerc{
			Score1:  PointStat{Hat: s1Hat, CI: s1CI},
			Score3:  PointStat{Hat: s3Hat, CI: s3CI},
			Score5:  PointStat{Hat: s5Hat, CI: s5CI},
			Score10: PointStat{Hat: s10Hat, CI: s10CI},
		},
	}

	// ------------------------------------------------------------
	// 2) Event 敘事：CapHit 次數分布 + 各桶次數分布（0/1/2/3+）
	// ------------------------------------------------------------
	// 2.1 CapHit（0/1/2/3+）
	var c0, c1, c2, c3p int
	for _, s := range sts {
		t := s.Summary.CapHits
		switch {
		case t == 0:
			c0++
		case t == 1:
			c1++
		case t == 2:
			c2++
		default:
			c3p++
		}
	}
	_, ci0 := proportionCICP(c0, n, 0.95)
	_, ci1 := proportionCICP(c1, n, 0.95)
	_, ci2 := proportionCICP(c2, n, 0.95)
	_, ci3 := proportionCICP(c3p, n, 0.95)

	out.EventStat.CapHit = EventCount{
		Zero: PointStat{Hat: float64(c0) / float64(n), CI: ci0},
		One:  PointStat{Hat: float64(c1) / float64(n), CI: ci1},
		Two:  PointStat{Hat: float64(c2) / float64(n), CI: ci2},
		More: PointStat{Hat: float64(c3p) / float64(n), CI: ci3},
	}

	// 2.2 分桶
	labels := NewScoreBuckets().Labels() // 長度 = len(scoreBucket)+1
	L := len(labels)
	out.EventStat.Bucket = BucketEvent{BucketLable: labels, BucketCount: make([]EventCount, L)}

	// 對每個桶，統計玩家中 0/1/2/3+ 次數比例
	for bi := 0; bi < L; bi++ {
		var b0, b1, b2, b3p int
		for _, s := range sts {
			cnt := 0
			if bi < len(s.Dist.ScoreCollect) {
				cnt = s.Dist.ScoreCollect[bi]
			}
			switch {
			case cnt == 0:
				b0++
			case cnt == 1:
				b1++
			case cnt == 2:
				b2++
			default:
				b3p++
			}
		}
		_, ciB0 := proportionCICP(b0, n, 0.95)
		_, ciB1 := proportionCICP(b1, n, 0.95)
		_, ciB2 := proportionCICP(b2, n, 0.95)
		_, ciB3 := proportionCICP(b3p, n, 0.95)

		out.EventStat.Bucket.BucketCount[bi] = EventCount{
			Zero: PointStat{Hat: float64(b0) / float64(n), CI: ciB0},
			One:  PointStat{Hat: float64(b1) / float64(n), CI: ciB1},
			Two:  PointStat{Hat: float64(b2) / float64(n), CI: ciB2},
			More: PointStat{Hat: float64(b3p) / float64(n), CI: ciB3},
		}
	}

	// ------------------------------------------------------------
	// 3) Chain 敘事：最長連鎖 >=3 / >=5 / 打到上限 的比例 + CP 95% CI
	// ------------------------------------------------------------
	var c3K, c5K, cxK int
	for _, s := range sts {
		if s.Summary.MaxChain >= 3 {
			c3K++
		}
		if s.Summary.MaxChain >= 5 {
			c5K++
		}
		if s.Summary.CapHits > 0 {
			cxK++
		}
	}

	c3Hat, c3CI := proportionCICP(c3K, n, 0.95)
	c5Hat, c5CI := proportionCICP(c5K, n, 0.95)
	cxHat, cxCI := proportionCICP(cxK, n, 0.95)

	out.ChainStat = ChainStat{
		Chain3: PointStat{Hat: c3Hat, CI: c3CI},
		Chain5: PointStat{Hat: c5Hat, CI: c5CI},
		ChainX: PointStat{Hat: cxHat, CI: cxCI},
	}

	return out
}

// ============================================================
// ** 內部統計函數 **
// ============================================================

// Clopper–Pearson exact CI for binomial proportion (k successes out of n)
func proportionCICP(k int, n int, confidence float64) (pHat float64, ci CI) {
	if n == 0 {
		return 0, CI{0, 1}
	}
	alpha := 1 - confidence
	pHat = float64(k) / float64(n)

	// Beta PPF 映射，處理邊界
	if k == 0 {
		ci.Lo = 0
	} else {
		b := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}
		ci.Lo = b.Quantile(alpha / 2)
	}
	if k == n {
		ci.Hi = 1
	} else {
		b := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}
		ci.Hi = b.Quantile(1 - alpha/2)
	}
	return
}

// 問題：給定樣本 data 與門檻 x0，估計 p = P(X ≤ x0) 的點估計與 CI 區間
// 回傳 (pHat, CI)
func percentileCIForValue(data []float64, x0 float64, confidence float64) (pHat float64, ci CI) {
	n := len(data)
	if n == 0 {
		return 0, CI{Lo: 0, Hi: 0}
	}
	// k = 數到 <= x0 的個數
	k := 0
	for _, v := range data {
		if v <= x0 {
			k++
		}
	}
	return proportionCICP(k, n, confidence)
}

// 想估「第 q 分位」的上下界。做法：把 order statistic 的秩視為二項→Beta 反推 p 範圍，再把 p 轉回樣本索引。
// 回傳 (loValue, hiValue)
func quantileCI(data []float64, q, confidence float64) (float64, float64) {
	n := len(data)
	if n == 0 {
		return 0, 0
	}
	cp := make([]float64, n)
	copy(cp, data)
	sort.Float64s(cp)

	alpha := 1 - confidence
	k := int(q * float64(n))
	if k < 1 {
		k = 1
	} else if k > n-1 {
		k = n - 1
	}

	// 以 CP 思想反推 p 範圍
	bLo := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}
	bHi := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}
	pLo := bLo.Quantile(alpha / 2)
	pHi := bHi.Quantile(1 - alpha/2)

	li := int(pLo * float64(n))
	ui := int(pHi * float64(n))
	if ui > 0 {
		ui -= 1
	}
	if li < 0 {
		li = 0
	}
	if li > n-1 {
		li = n - 1
	}
	if ui < 0 {
		ui = 0
	}
	if ui > n-1 {
		ui = n - 1
	}
	return cp[li], cp[ui]
}

// quantilePoint returns the empirical quantile point estimate at q.
func quantilePoint(data []float64, q float64) float64 {
	n := len(data)
	if n == 0 {
		return 0
	}
	cp := make([]float64, n)
	copy(cp, data)
	sort.Float64s(cp)
	// 最近秩法
	idx := int(q * float64(n))
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return cp[idx]
}

// ============================================================
// ** 輸出函數 **
// ============================================================

func (est *EstimatorSessions) Out() {
	// 1) Score (Player Experience)
	fmt.Println("=== Avg Score (Player Experience) ===")
	scoreKeys := []string{
		"Median Avg Score",
		"P10 Avg Score",
		"P33 Avg Score",
		"P67 Avg Score",
		"P90 Avg Score",
		"≤1 avg (players)",
		"≤3 avg (players)",
		"≤5 avg (players)",
		"≤10 avg (players)",
	}
	scoreMsg := map[string]string{
		"Median Avg Score":  fmtHatCI(est.ScoreStat.ExpMedian.Hat, est.ScoreStat.ExpMedian.CI),
		"P10 Avg Score":     fmtHatCI(est.ScoreStat.ExpPerc.ExpP10.Hat, est.ScoreStat.ExpPerc.ExpP10.CI),
		"P33 Avg Score":     fmtHatCI(est.ScoreStat.ExpPerc.ExpP33.Hat, est.ScoreStat.ExpPerc.ExpP33.CI),
		"P67 Avg Score":     fmtHatCI(est.ScoreStat.ExpPerc.ExpP67.Hat, est.ScoreStat.ExpPerc.ExpP67.CI),
		"P90 Avg Score":     fmtHatCI(est.ScoreStat.ExpPerc.ExpP90.Hat, est.ScoreStat.ExpPerc.ExpP90.CI),
		"≤1 avg (players)":  fmtHatCIpct01(est.ScoreStat.ScorePerc.Score1.Hat, est.ScoreStat.ScorePerc.Score1.CI),
		"≤3 avg (players)":  fmtHatCIpct01(est.ScoreStat.ScorePerc.Score3.Hat, est.ScoreStat.ScorePerc.Score3.CI),
		"≤5 avg (players)":  fmtHatCIpct01(est.ScoreStat.ScorePerc.Score5.Hat, est.ScoreStat.ScorePerc.Score5.CI),
		"≤10 avg (players)": fmtHatCIpct01(est.ScoreStat.ScorePerc.Score10.Hat, est.ScoreStat.ScorePerc.Score10.CI),
	}
	printTable("Avg Score (Player Experience)", scoreKeys, scoreMsg)

	// 2) Events: Cap hits per player
	fmt.Println("\n=== Events: Cap hits per player ===")
	capKeys := []string{"0 times", "1 time", "2 times", "3+ times"}
	capMsg := map[string]string{
		"0 times":  fmtHatCIpct01(est.EventStat.CapHit.Zero.Hat, est.EventStat.CapHit.Zero.CI),
		"1 time":   fmtHatCIpct01(est.EventStat.CapHit.One.Hat, est.EventStat.CapHit.One.CI),
		"2 times":  fmtHatCIpct01(est.EventStat.CapHit.Two.Hat, est.EventStat.CapHit.Two.CI),
		"3+ times": fmtHatCIpct01(est.EventStat.CapHit.More.Hat, est.EventStat.CapHit.More.CI),
	}
	printTable("Events: Cap hits per player", capKeys, capMsg)

	// 3) Events: Buckets (per player hits in bucket)
	fmt.Println("\n=== Events: Score buckets (per player hits in bucket) ===")
	for i, label := range est.EventStat.Bucket.BucketLable {
		ec := est.EventStat.Bucket.BucketCount[i]
		fmt.Printf("%-20s : %s\n", label, fmtEventCount(ec))
	}

	// 4) Chain Outcome
	fmt.Println("\n=== Chain Outcome ===")
	chainKeys := []string{"Chain >= 3", "Chain >= 5", "Hit cap"}
	chainMsg := map[string]string{
		"Chain >= 3": fmtHatCIpct01(est.ChainStat.Chain3.Hat, est.ChainStat.Chain3.CI),
		"Chain >= 5": fmtHatCIpct01(est.ChainStat.Chain5.Hat, est.ChainStat.Chain5.CI),
		"Hit cap":    fmtHatCIpct01(est.ChainStat.ChainX.Hat, est.ChainStat.ChainX.CI),
	}
	printTable("Chain Outcome", chainKeys, chainMsg)
}

func printTable(title string, keys []string, msg map[string]string) {
	fmt.Println(title)
	maxKeyLen := 0
	for _, k := range keys {
		if len(k) > maxKeyLen {
			maxKeyLen = len(k)
		}
	}
	for _, k := range keys {
		fmt.Printf("  %-*s : %s\n", maxKeyLen, k, msg[k])
	}
}

func fmtPct01(x float64) string {
	return fmt.Sprintf("%.2f%%", x*100)
}

func fmtHatCIpct01(hat float64, ci CI) string {
	return fmt.Sprintf("%s [%s, %s]", fmtPct01(hat), fmtPct01(ci.Lo), fmtPct01(ci.Hi))
}

func fmtHatCI(hat float64, ci CI) string {
	return fmt.Sprintf("%.3f [%.3f, %.3f]", hat, ci.Lo, ci.Hi)
}

func fmtEventCount(ec EventCount) string {
	return fmt.Sprintf("0x: %s | 1x: %s | 2x: %s | 3+x: %s",
		fmtHatCIpct01(ec.Zero.Hat, ec.Zero.CI),
		fmtHatCIpct01(ec.One.Hat, ec.One.CI),
		fmtHatCIpct01(ec.Two.Hat, ec.Two.CI),
		fmtHatCIpct01(ec.More.Hat, ec.More.CI),
	)
}
