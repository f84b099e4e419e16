package buf

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/zintix-labs/dicelab/errs"
	"github.com/zintix-labs/dicelab/sdk/grid"
	"github.com/zintix-labs/dicelab/spec"
)

// DieSpec 是請求內描述一顆骰子的外部形狀。
type DieSpec struct {
	Value  int  `json:"value"`
	Color  int  `json:"color"`
	Wild   bool `json:"wild,omitempty"`
	Joiner bool `json:"joiner,omitempty"`
}

// ToDie 轉成引擎骰子；id 由呼叫端決定。
func (d DieSpec) ToDie(id int64, faces int) grid.Die {
	return grid.Die{
		ID:     id,
		Faces:  faces,
		Value:  d.Value,
		Color:  grid.Color(d.Color),
		Wild:   d.Wild,
		Joiner: d.Joiner,
	}
}

// PlacementSpec 是請求內的一筆 (位置, 骰子)。
type PlacementSpec struct {
	X   int     `json:"x"`
	Y   int     `json:"y"`
	Die DieSpec `json:"die"`
}

// LockRequest 是「放一顆骰子並結算一輪」的請求。
type LockRequest struct {
	GameId   spec.GID `json:"gid"`       // 盤面變體編號
	X        int      `json:"x"`         // 落點（邏輯座標）
	Y        int      `json:"y"`         //
	Die      DieSpec  `json:"die"`       // 要放的骰子
	MinMatch int      `json:"min_match"` // 0 代表用設定值
}

// ResolveRequest 是「載入整個盤面並跑完整連鎖」的請求。
type ResolveRequest struct {
	GameId     spec.GID        `json:"gid"`
	Placements []PlacementSpec `json:"placements"`
}

// DecodeLockRequest 會把 HTTP 請求解碼成 LockRequest。
//
// 支援：
//   - GET：從 query string 讀取參數（gid/x/y/value/color/wild/joiner/min_match）。
//   - POST：從 JSON body 反序列化。
//
// 注意：
//   - 這裡只負責「解碼（decode）」與基本型別轉換，不做任何遊戲合法性校驗；
//     合法性（例如該 GID 是否存在、落點是否為空）由上層（Session/Runtime）決定。
//   - 為避免過大 body 影響服務，POST 會對 body 做大小限制（預設 1MiB）。
func DecodeLockRequest(r *http.Request) (*LockRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}

	req := new(LockRequest)

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()

		if s := q.Get("gid"); s != "" {
			u, err := strconv.ParseUint(s, 10, 0)
			if err != nil {
				return nil, errs.Warnf("invalid gid: %v", err)
			}
			req.GameId = spec.GID(u)
		}

		for _, f := range []struct {
			key string
			dst *int
		}{
			{"x", &req.X},
			{"y", &req.Y},
			{"value", &req.Die.Value},
			{"color", &req.Die.Color},
			{"min_match", &req.MinMatch},
		} {
			if s := q.Get(f.key); s != "" {
				v, err := strconv.Atoi(s)
				if err != nil {
					return nil, errs.Warnf("invalid %s: %v", f.key, err)
				}
				*f.dst = v
			}
		}

		if s := q.Get("wild"); s != "" {
			v, err := strconv.ParseBool(s)
			if err != nil {
				return nil, errs.Warnf("invalid wild: %v", err)
			}
			req.Die.Wild = v
		}
		if s := q.Get("joiner"); s != "" {
			v, err := strconv.ParseBool(s)
			if err != nil {
				return nil, errs.Warnf("invalid joiner: %v", err)
			}
			req.Die.Joiner = v
		}

		return req, nil

	case http.MethodPost:
		// 防止 body 過大（預設 1MiB）
		const maxBody = 1 << 20
		body := io.LimitReader(r.Body, maxBody)
		dec := json.NewDecoder(body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(req); err != nil {
			return nil, fmt.Errorf("invalid json: %w", err)
		}
		return req, nil

	default:
		return nil, fmt.Errorf("method not allowed")
	}
}

// DecodeResolveRequest 把 HTTP 請求解碼成 ResolveRequest（僅 POST JSON）。
func DecodeResolveRequest(r *http.Request) (*ResolveRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	if r.Method != http.MethodPost {
		return nil, fmt.Errorf("method not allowed")
	}
	const maxBody = 1 << 20
	body := io.LimitReader(r.Body, maxBody)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	req := new(ResolveRequest)
	if err := dec.Decode(req); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	return req, nil
}
