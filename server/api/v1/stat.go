package v1

import (
	"encoding/json"
	"net/http"

	"github.com/zintix-labs/dicelab/recorder"
	"github.com/zintix-labs/dicelab/sdk/buf"
	"github.com/zintix-labs/dicelab/spec"
)

type DistStat struct {
	// 遊戲識別
	GameName string   `json:"game_name"`
	GameId   spec.GID `json:"game_id"`
	// 每個 round 一筆的流水資料
	Scores   []int `json:"scores"`
	Cascades []int `json:"cascades"`
	Cleared  []int `json:"cleared"`
	Capped   []int `json:"capped"`
}

// Stat 以外部提供的流水資料重建統計報表。
//
// 用途：其他系統（或離線紀錄）跑完的結果想借用本服務的報表格式。
func Stat(w http.ResponseWriter, r *http.Request) {
	// Post方法限定
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	// 嘗試解析
	dst := new(DistStat)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// 對齊局數
	round := min(len(dst.Scores), len(dst.Cascades), len(dst.Cleared), len(dst.Capped))
	if round < 1 {
		http.Error(w, "round must > 0", http.StatusBadRequest)
		return
	}

	rec, err := recorder.NewDropRecorder(dst.GameName, dst.GameId)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// 重建 CascadeResult，逐筆回放進紀錄員
	cr := &buf.CascadeResult{
		Steps: make([]buf.CascadeStep, 0, 1),
	}
	for i := 0; i < round; i++ {
		cr.TotalScore = dst.Scores[i]
		cr.CascadeCount = dst.Cascades[i]
		cr.Reason = buf.ReasonMatchesExhausted
		if dst.Capped[i] > 0 {
			cr.Reason = buf.ReasonMaxCascadesReached
		}
		// 清除數以單一合成 step 表示
		cr.Steps = append(cr.Steps, buf.CascadeStep{ClearedDice: dst.Cleared[i]})
		// 紀錄
		rec.Record(cr)
		// 重置cr
		cr.Steps = cr.Steps[:0] // 清空長度
	}
	st := rec.Done()
	st.Done()
	if err := json.NewEncoder(w).Encode(st); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
}
