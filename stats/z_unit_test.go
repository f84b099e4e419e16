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

package stats_test

import (
	"math"
	"testing"

	"github.com/zintix-labs/dicelab/spec"
	"github.com/zintix-labs/dicelab/stats"
)

// buildStatReport constructs a StatReport from a list of per-drop scores.
// Chain length is 1 for scoring drops and 0 for zero-score drops.
func buildStatReport(scores []int) *stats.StatReport {
	bucket := stats.NewScoreBuckets()
	L := bucket.Size()
	collect := make([]int, L)
	chain := make([]int, spec.MaxCascadeLimit+1)

	var total, sqSum, noMatch, cascades, maxChain int
	for _, sc := range scores {
		collect[bucket.Index(sc)]++
		total += sc
		sqSum += sc * sc
		if sc == 0 {
			noMatch++
			chain[0]++
			continue
		}
		cascades++
		chain[1]++
		maxChain = 1
	}

	report := &stats.StatReport{
		Summary: &stats.SummaryReport{
			GameName:      "TestGame",
			GameId:        spec.GID(0),
			Rounds:        len(scores),
			TotalScore:    total,
			NoMatchRounds: noMatch,
			TotalCascades: cascades,
			MaxChain:      maxChain,
		},
		Chain: &stats.ChainReport{
			ChainCollect: chain,
			ScoreSqSum:   sqSum,
		},
		Dist: &stats.DistReport{
			ScoreBucket:  bucket.Labels(),
			ScoreCollect: collect,
		},
	}
	report.Done()
	return report
}

func TestStatReportCoreMetrics(t *testing.T) {
	rep := buildStatReport([]int{10, 20, 0})

	wantAvg := float64(10+20) / 3.0
	if got := rep.AvgScore(); math.Abs(got-wantAvg) > 1e-12 {
		t.Fatalf("AvgScore got %.12f want %.12f", got, wantAvg)
	}

	sum := float64(30)
	sqSum := float64(10*10 + 20*20)
	variance := (sqSum - sum*sum/3.0) / (3.0 - 1.0)
	wantStd := math.Sqrt(variance)
	if got := rep.Std(); math.Abs(got-wantStd) > 1e-12 {
		t.Fatalf("Std got %.12f want %.12f", got, wantStd)
	}

	wantCV := wantStd / wantAvg
	if got := rep.Cv(); math.Abs(got-wantCV) > 1e-12 {
		t.Fatalf("CV got %.12f want %.12f", got, wantCV)
	}

	wantHit := 1.0 - 1.0/3.0
	if math.Abs(rep.Summary.HitRate-wantHit) > 1e-12 {
		t.Fatalf("HitRate got %.12f want %.12f", rep.Summary.HitRate, wantHit)
	}

	// Distribution lengths and sums
	if len(rep.Dist.ScoreCollect) != len(rep.Dist.ScoreBucket) {
		t.Fatalf("score buckets length mismatch")
	}
	totalRounds := 0
	for _, c := range rep.Dist.ScoreCollect {
		totalRounds += c
	}
	if totalRounds != rep.Summary.Rounds {
		t.Fatalf("distribution total %d != rounds %d", totalRounds, rep.Summary.Rounds)
	}
	distSum := 0.0
	for _, d := range rep.Dist.ScoreDist {
		distSum += d
	}
	if math.Abs(distSum-1.0) > 1e-12 {
		t.Fatalf("score dist sums to %.12f want 1", distSum)
	}

	rep.Done() // idempotent
	if rep.Summary.AvgScore != wantAvg {
		t.Fatalf("AvgScore changed after second Done")
	}
}

func TestStatReportDegenerate(t *testing.T) {
	empty := &stats.StatReport{
		Summary: &stats.SummaryReport{},
		Chain:   &stats.ChainReport{},
		Dist:    &stats.DistReport{},
	}
	empty.Done()
	if empty.AvgScore() != 0 || empty.Std() != 0 || empty.Cv() != 0 {
		t.Fatalf("zero-round report must yield zero metrics")
	}

	one := buildStatReport([]int{7})
	if one.Std() != 0 {
		t.Fatalf("single round Std got %f want 0", one.Std())
	}
	ci := one.Ci()
	if ci.Lo != 7 || ci.Hi != 7 {
		t.Fatalf("single round CI got [%f,%f] want [7,7]", ci.Lo, ci.Hi)
	}
}

func TestScoreBucketsIndex(t *testing.T) {
	sb := stats.NewScoreBuckets()

	cases := []struct {
		score int
		want  int
	}{
		{-5, 0}, // clamped
		{0, 0},
		{1, 1},
		{5, 1},
		{6, 2},
		{10, 2},
		{11, 3},
		{2000, 9},
		{2001, 10},
		{999999, 10},
	}
	for _, c := range cases {
		if got := sb.Index(c.score); got != c.want {
			t.Fatalf("Index(%d) got %d want %d", c.score, got, c.want)
		}
	}

	labels := sb.Labels()
	if len(labels) != sb.Size() {
		t.Fatalf("labels length %d != size %d", len(labels), sb.Size())
	}
	if labels[0] != "0" {
		t.Fatalf("first label got %q want \"0\"", labels[0])
	}
	if labels[len(labels)-1] != "2001+" {
		t.Fatalf("last label got %q want \"2001+\"", labels[len(labels)-1])
	}
}

func TestEstimatorScoreAndChain(t *testing.T) {
	// Build 100 reports with avg score from 0.00 to 9.90
	reports := make([]*stats.StatReport, 0, 100)
	for i := 0; i < 100; i++ {
		reports = append(reports, buildStatReport([]int{i, 0, 0, 0, 0, 0, 0, 0, 0, 0}))
	}

	est := stats.EstimatorSessionExp(reports)
	if math.Abs(est.ScoreStat.ExpMedian.Hat-5.0) > 0.5 {
		t.Fatalf("median avg score expected ~5.0, got %.3f", est.ScoreStat.ExpMedian.Hat)
	}
	if math.Abs(est.ScoreStat.ExpPerc.ExpP90.Hat-9.0) > 0.5 {
		t.Fatalf("P90 avg score expected ~9.0, got %.3f", est.ScoreStat.ExpPerc.ExpP90.Hat)
	}
	// avg <= 5 holds for i in [0,50] -> 51 of 100 players
	if math.Abs(est.ScoreStat.ScorePerc.Score5.Hat-0.51) > 1e-12 {
		t.Fatalf("P(avg<=5) got %.3f want 0.51", est.ScoreStat.ScorePerc.Score5.Hat)
	}

	// Chain outcome: 3 sessions with MaxChain 5, 2 with MaxChain 3, 5 with cap hits
	sessions := make([]*stats.StatReport, 10)
	for i := 0; i < 10; i++ {
		r := buildStatReport([]int{1})
		switch {
		case i < 3:
			r.Summary.MaxChain = 5
		case i < 5:
			r.Summary.MaxChain = 3
		default:
			r.Summary.CapHits = 1
		}
		sessions[i] = r
	}
	est2 := stats.EstimatorSessionExp(sessions)
	if est2.ChainStat.Chain3.Hat != 0.5 {
		t.Fatalf("Chain>=3 rate got %.2f want 0.50", est2.ChainStat.Chain3.Hat)
	}
	if est2.ChainStat.Chain5.Hat != 0.3 {
		t.Fatalf("Chain>=5 rate got %.2f want 0.30", est2.ChainStat.Chain5.Hat)
	}
	if est2.ChainStat.ChainX.Hat != 0.5 {
		t.Fatalf("cap-hit rate got %.2f want 0.50", est2.ChainStat.ChainX.Hat)
	}
	if est2.EventStat.CapHit.Zero.Hat != 0.5 {
		t.Fatalf("0-cap-hit rate got %.2f want 0.50", est2.EventStat.CapHit.Zero.Hat)
	}
	if est2.EventStat.CapHit.One.Hat != 0.5 {
		t.Fatalf("1-cap-hit rate got %.2f want 0.50", est2.EventStat.CapHit.One.Hat)
	}

	// CI bounds must bracket the point estimate
	ci := est2.ChainStat.Chain3.CI
	if ci.Lo > 0.5 || ci.Hi < 0.5 {
		t.Fatalf("Chain>=3 CI [%.3f,%.3f] does not bracket 0.50", ci.Lo, ci.Hi)
	}
}

func TestEstimatorEmptyInput(t *testing.T) {
	est := stats.EstimatorSessionExp(nil)
	if est == nil {
		t.Fatalf("estimator must not return nil on empty input")
	}
	if est.ScoreStat.ExpMedian.Hat != 0 {
		t.Fatalf("empty input median got %f want 0", est.ScoreStat.ExpMedian.Hat)
	}
}
