package stats

import "fmt"

// scoreBucket 單次落骰得分的分布區間上緣。
// 區間為 (prev, cur]，0 自成一格，最後一格為 2000+。
var scoreBucket = []int{0, 5, 10, 20, 50, 100, 200, 500, 1000, 2000}

var scoreBucketStr = func() []string {
	s := make([]string, 0, len(scoreBucket)+1)
	prev := 0
	for i, b := range scoreBucket {
		if i == 0 {
			s = append(s, "0")
			prev = b
			continue
		}
		s = append(s, fmt.Sprintf("%d-%d", prev+1, b))
		prev = b
	}
	s = append(s, fmt.Sprintf("%d+", scoreBucket[len(scoreBucket)-1]+1))
	return s
}()

// ScoreBuckets 以查表方式將得分對映到分布區間 index。
// lutMax 以下直接查表，超過者線性掃描尾端區間。
type ScoreBuckets struct {
	lut    []uint8
	lutMax int
}

func NewScoreBuckets() *ScoreBuckets {
	lutMax := scoreBucket[len(scoreBucket)-1]
	lut := make([]uint8, lutMax+1)
	bi := 0
	for v := 0; v <= lutMax; v++ {
		for bi < len(scoreBucket) && v > scoreBucket[bi] {
			bi++
		}
		lut[v] = uint8(bi)
	}
	return &ScoreBuckets{lut: lut, lutMax: lutMax}
}

// Index 回傳 score 所屬的區間 index。
func (sb *ScoreBuckets) Index(score int) int {
	if score < 0 {
		score = 0
	}
	if score <= sb.lutMax {
		return int(sb.lut[score])
	}
	return len(scoreBucket)
}

// Labels 回傳與分布陣列對齊的區間標籤。
func (sb *ScoreBuckets) Labels() []string {
	out := make([]string, len(scoreBucketStr))
	copy(out, scoreBucketStr)
	return out
}

// Size 回傳分布陣列需要的長度。
func (sb *ScoreBuckets) Size() int {
	return len(scoreBucket) + 1
}
