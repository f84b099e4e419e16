package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/zintix-labs/dicelab/spec"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var lang language.Tag = language.English

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo"`
	Hi float64 `json:"Hi"`
}

// StatReport 模擬統計報告。
//
// 一個 round = 一次落骰 + 一段完整連鎖觸發。
type StatReport struct {
	Summary *SummaryReport `json:"Summary"`
	Chain   *ChainReport   `json:"Chain"`
	Dist    *DistReport    `json:"Dist"`
	isDone  bool
}

type SummaryReport struct {
	GameName      string   `json:"GameName"`
	GameId        spec.GID `json:"GameId"`
	Rounds        int      `json:"Rounds"`
	TotalScore    int      `json:"TotalScore"`
	AvgScore      float64  `json:"AvgScore"` // 平均每次落骰得分
	AvgScoreCI    CI       `json:"AvgScoreCI"`
	Std           float64  `json:"Std"`
	Cv            float64  `json:"Cv"`
	NoMatchRounds int      `json:"NoMatchRounds"` // 落骰後一輪 match 都沒有的次數
	HitRate       float64  `json:"HitRate"`       // 1 - NoMatchRounds/Rounds
	CapHits       int      `json:"CapHits"`       // 連鎖打到上限被截斷的次數
	CapHitRate    float64  `json:"CapHitRate"`
	ProcErrors    int      `json:"ProcErrors"` // 計分協作者失敗次數
	TotalCascades int      `json:"TotalCascades"`
	AvgCascades   float64  `json:"AvgCascades"` // 平均每次落骰的連鎖長度
	MaxChain      int      `json:"MaxChain"`    // 觀測到的最長連鎖
	ClearedDice   int      `json:"ClearedDice"` // 清掉的總骰數
}

// ChainReport 連鎖長度落點統計。
//
// ChainCollect[n] = 連鎖長度恰為 n 的 round 數（n 上限為 spec.MaxCascadeLimit）。
// 紀錄時只處理 int，Done() 後才換算分布。
type ChainReport struct {
	ChainCollect []int     `json:"ChainCollect"`
	ChainDist    []float64 `json:"ChainDist"`
	ScoreSqSum   int       `json:"ScoreSqSum"` // 平方和（Std 用）
}

// DistReport 得分區間落點統計。
type DistReport struct {
	ScoreBucket  []string  `json:"ScoreBucket"`
	ScoreCollect []int     `json:"ScoreCollect"`
	ScoreDist    []float64 `json:"ScoreDist"`
}

// ============================================================
// ** 公開方法 **
// ============================================================

// Done 將累積計數轉換為最終統計結果並鎖定 isDone 標記。
//
// 所有紀錄過程因為性能原因只處理 int 計數，統計完成後
// 請使用 Done 來一次性計算衍生統計結果。
func (s *StatReport) Done() {
	if s.isDone {
		return
	}
	rounds := s.Summary.Rounds

	s.Summary.AvgScore = s.AvgScore()
	s.Summary.AvgScoreCI = s.Ci()
	s.Summary.Std = s.Std()
	s.Summary.Cv = s.Cv()
	if rounds > 0 {
		s.Summary.HitRate = 1.0 - float64(s.Summary.NoMatchRounds)/float64(rounds)
		s.Summary.CapHitRate = float64(s.Summary.CapHits) / float64(rounds)
		s.Summary.AvgCascades = float64(s.Summary.TotalCascades) / float64(rounds)
	}

	if rounds > 0 {
		rf := float64(rounds)
		s.Chain.ChainDist = make([]float64, len(s.Chain.ChainCollect))
		for i, c := range s.Chain.ChainCollect {
			s.Chain.ChainDist[i] = float64(c) / rf
		}
		s.Dist.ScoreDist = make([]float64, len(s.Dist.ScoreCollect))
		for i, c := range s.Dist.ScoreCollect {
			s.Dist.ScoreDist[i] = float64(c) / rf
		}
	}

	s.isDone = true
}

// AvgScore 回傳平均每次落骰得分。
func (s *StatReport) AvgScore() float64 {
	if s.Summary.Rounds == 0 {
		return 0
	}
	return float64(s.Summary.TotalScore) / float64(s.Summary.Rounds)
}

// Std 回傳單次落骰得分的標準差。
func (s *StatReport) Std() float64 {
	if s.Summary.Rounds < 2 {
		return 0
	}
	rounds := float64(s.Summary.Rounds)
	sum := float64(s.Summary.TotalScore)

	variance := (float64(s.Chain.ScoreSqSum) - sum*sum/rounds) / (rounds - 1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// Cv 回傳單次落骰得分的變異係數。
func (s *StatReport) Cv() float64 {
	avg := s.AvgScore()
	std := s.Std()
	if avg <= 0 {
		return 0
	}
	return std / avg
}

// Ci 回傳平均得分的 95% 信賴區間。
func (s *StatReport) Ci() CI {
	avg := s.AvgScore()
	std := s.Std()
	se := float64(0)
	if s.Summary.Rounds > 1 {
		se = std / math.Sqrt(float64(s.Summary.Rounds))
	}
	return CI{
		Lo: max(avg-1.96*se, 0.0),
		Hi: avg + 1.96*se,
	}
}

func (s *StatReport) WriteWith(w io.Writer, rep StatReportRender) error {
	s.Done()
	return rep.Write(w, s)
}

func (s *StatReport) StdOut(ut time.Duration) {
	formatDuration(ut, s.Summary.Rounds)
	sk, sm := s.fmtBasic()
	str := fmtTable(s.Summary.GameName, sk, sm)
	fmt.Println(str)
}

// ============================================================
// ** 內部方法 **
// ============================================================

func formatDuration(d time.Duration, drops int) {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	dps := int(float64(drops) / sec)
	if sec < 60.0 {
		p.Printf("used: %.2f seconds\ndps : %d drops/sec\n", sec, dps)
		return
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		s = s % 60
		p.Printf("used: %dm %ds\ndps : %d drops/sec\n", m, s, dps)
		return
	}
	p.Printf("used: %dh:%dm:%ds\ndps : %d drops/sec\n", h, m, s, dps)
}

// StdOut

func (s *StatReport) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	basic := map[string]string{
		"Game Name":      p.Sprintf("%s", s.Summary.GameName),
		"Game ID":        fmt.Sprintf("%d", s.Summary.GameId),
		"Total Rounds":   p.Sprintf("%d", s.Summary.Rounds),
		"Total Score":    p.Sprintf("%d", s.Summary.TotalScore),
		"Avg Score":      p.Sprintf("%.3f", s.Summary.AvgScore),
		"Score 95% CI":   p.Sprintf("[%.3f,%.3f]", s.Summary.AvgScoreCI.Lo, s.Summary.AvgScoreCI.Hi),
		"Hit Rate":       p.Sprintf("%.2f %%", 100.0*s.Summary.HitRate),
		"NoMatch Rounds": p.Sprintf("%d", s.Summary.NoMatchRounds),
		"Cap Hits":       p.Sprintf("%d", s.Summary.CapHits),
		"Total Cascades": p.Sprintf("%d", s.Summary.TotalCascades),
		"Avg Cascades":   p.Sprintf("%.3f", s.Summary.AvgCascades),
		"Max Chain":      p.Sprintf("%d", s.Summary.MaxChain),
		"Cleared Dice":   p.Sprintf("%d", s.Summary.ClearedDice),
		"STD":            p.Sprintf("%.3f", s.Summary.Std),
		"CV":             p.Sprintf("%.3f", s.Summary.Cv),
	}
	keys := []string{"Game Name", "Game ID", "Total Rounds", "Total Score", "Avg Score", "Score 95% CI", "Hit Rate", "NoMatch Rounds", "Cap Hits", "Total Cascades", "Avg Cascades", "Max Chain", "Cleared Dice", "STD", "CV"}
	return keys, basic
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	fmtStr := top
	fmtStr += p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right))
	fmtStr += divider
	for _, k := range keys {
		fmtStr += p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k])))
	}
	fmtStr += divider

	return fmtStr
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
