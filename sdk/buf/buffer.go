package buf

import (
	"github.com/zintix-labs/dicelab/sdk/grid"
	"github.com/zintix-labs/dicelab/sdk/match"
)

const capStepGrow int = 16

// StopReason 是一段連鎖（cascade sequence）結束的原因。
type StopReason uint8

const (
	// ReasonNone : 尚未結束（或尚未開始）。
	ReasonNone StopReason = iota
	// ReasonMatchesExhausted : 盤面上找不到 match，正常收束（不是錯誤）。
	ReasonMatchesExhausted
	// ReasonMaxCascadesReached : 迭代數達到上限被截斷。
	ReasonMaxCascadesReached
	// ReasonForcedStop : 被 ForceStop 中止。
	ReasonForcedStop
	// ReasonProcessingError : 計分協作者失敗，整段作廢。
	ReasonProcessingError
)

var stopReasonStr = map[StopReason]string{
	ReasonNone:               "",
	ReasonMatchesExhausted:   "matches_exhausted",
	ReasonMaxCascadesReached: "max_cascades_reached",
	ReasonForcedStop:         "forced_stop",
	ReasonProcessingError:    "processing_error",
}

func (r StopReason) String() string { return stopReasonStr[r] }

// CascadeStep 紀錄一次 detect→process→compact 迭代。
type CascadeStep struct {
	Groups       []match.Group // 本輪偵測到的群
	ScoreDelta   int           // 計分協作者回報的分數增量
	ClearedDice  int           // 本輪清掉的骰數
	GravityMoved bool          // 壓縮重力是否有搬動
	Multiplier   int           // 本輪結算時的連鎖倍率
}

// CascadeResult 保存一次完整連鎖觸發（invocation）的結果。
//
// 可重用 buffer：每次觸發會覆寫內容。需要跨觸發保留就先轉 DTO。
type CascadeResult struct {
	CascadeCount int           // 本次觸發實際跑了幾輪
	TotalScore   int           // 本次觸發累計分數
	Reason       StopReason    // 結束原因
	Steps        []CascadeStep // 每輪軌跡
}

// NewCascadeResult 建立 CascadeResult 實體，並預先配置基本容量。
func NewCascadeResult() *CascadeResult {
	return &CascadeResult{
		Steps: make([]CascadeStep, 0, capStepGrow),
	}
}

// AppendStep 累積一輪結果。
func (r *CascadeResult) AppendStep(s CascadeStep) {
	r.CascadeCount++
	r.TotalScore += s.ScoreDelta
	r.Steps = append(r.Steps, s)
}

// Reset 重置累積資料，保留已配置的內部切片容量。
func (r *CascadeResult) Reset() {
	r.CascadeCount = 0
	r.TotalScore = 0
	r.Reason = ReasonNone
	r.Steps = r.Steps[:0]
}

// Zero 把結果設成「定義好的零結果」：拒絕重入與處理失敗都回它。
func (r *CascadeResult) Zero(reason StopReason) {
	r.Reset()
	r.Reason = reason
}

// LockResult 保存一次「落子 + 單輪 detect→clear→compact」的結果。
type LockResult struct {
	Locked         bool          // 位置非法時為 false（no-op 結果）
	Matches        []match.Group // 本輪成立的群
	ClearedPos     []grid.Pos    // 被清掉的位置
	GravityApplied bool          // 壓縮重力是否有搬動
}

// NewLockResult 建立 LockResult 實體。
func NewLockResult() *LockResult {
	return &LockResult{
		Matches:    make([]match.Group, 0, 4),
		ClearedPos: make([]grid.Pos, 0, 32),
	}
}

// Reset 重置內容，保留容量。
func (r *LockResult) Reset() {
	r.Locked = false
	r.Matches = r.Matches[:0]
	r.ClearedPos = r.ClearedPos[:0]
	r.GravityApplied = false
}
