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

package buf

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDecodeLockRequestGET(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/lock?gid=7&x=2&y=0&value=5&color=1&wild=true&min_match=4", nil)
	req, err := DecodeLockRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.GameId != 7 || req.X != 2 || req.Y != 0 {
		t.Fatalf("unexpected request: %+v", req)
	}
	if req.Die.Value != 5 || req.Die.Color != 1 || !req.Die.Wild || req.Die.Joiner {
		t.Fatalf("unexpected die spec: %+v", req.Die)
	}
	if req.MinMatch != 4 {
		t.Fatalf("unexpected min_match: %d", req.MinMatch)
	}
}

func TestDecodeLockRequestGETInvalid(t *testing.T) {
	for _, url := range []string{
		"/lock?gid=abc",
		"/lock?x=abc",
		"/lock?wild=notabool",
	} {
		r := httptest.NewRequest(http.MethodGet, url, nil)
		if _, err := DecodeLockRequest(r); err == nil {
			t.Fatalf("expected error for %s", url)
		}
	}
}

func TestDecodeLockRequestPOST(t *testing.T) {
	body := `{"gid":3,"x":1,"y":2,"die":{"value":6,"color":0,"joiner":true},"min_match":0}`
	r := httptest.NewRequest(http.MethodPost, "/lock", bytes.NewBufferString(body))
	req, err := DecodeLockRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.GameId != 3 || req.X != 1 || req.Y != 2 || !req.Die.Joiner {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestDecodeLockRequestPOSTUnknownField(t *testing.T) {
	body := `{"gid":3,"bogus":1}`
	r := httptest.NewRequest(http.MethodPost, "/lock", bytes.NewBufferString(body))
	if _, err := DecodeLockRequest(r); err == nil {
		t.Fatalf("unknown field should be rejected")
	}
}

func TestDecodeLockRequestMethodNotAllowed(t *testing.T) {
	r := httptest.NewRequest(http.MethodDelete, "/lock", nil)
	if _, err := DecodeLockRequest(r); err == nil {
		t.Fatalf("expected method error")
	}
	if _, err := DecodeLockRequest(nil); err == nil {
		t.Fatalf("nil request should error")
	}
}

func TestDecodeResolveRequest(t *testing.T) {
	body := `{"gid":9,"placements":[{"x":0,"y":0,"die":{"value":2,"color":1}},{"x":1,"y":0,"die":{"value":2,"color":2}}]}`
	r := httptest.NewRequest(http.MethodPost, "/resolve", bytes.NewBufferString(body))
	req, err := DecodeResolveRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.GameId != 9 || len(req.Placements) != 2 {
		t.Fatalf("unexpected request: %+v", req)
	}
	if req.Placements[1].Die.Color != 2 {
		t.Fatalf("placement decode mismatch: %+v", req.Placements[1])
	}

	get := httptest.NewRequest(http.MethodGet, "/resolve", nil)
	if _, err := DecodeResolveRequest(get); err == nil {
		t.Fatalf("resolve should be POST only")
	}
}

func TestDieSpecToDie(t *testing.T) {
	d := DieSpec{Value: 4, Color: 2, Wild: true}.ToDie(99, 6)
	if d.ID != 99 || d.Faces != 6 || d.Value != 4 || int(d.Color) != 2 || !d.Wild {
		t.Fatalf("unexpected die: %+v", d)
	}
}

func TestCascadeResultLifecycle(t *testing.T) {
	cr := NewCascadeResult()
	cr.AppendStep(CascadeStep{ScoreDelta: 10, ClearedDice: 3, Multiplier: 1})
	cr.AppendStep(CascadeStep{ScoreDelta: 24, ClearedDice: 4, Multiplier: 2})

	if cr.CascadeCount != 2 || cr.TotalScore != 34 || len(cr.Steps) != 2 {
		t.Fatalf("unexpected accumulation: %+v", cr)
	}

	cr.Reason = ReasonMatchesExhausted
	cr.Reset()
	if cr.CascadeCount != 0 || cr.TotalScore != 0 || cr.Reason != ReasonNone || len(cr.Steps) != 0 {
		t.Fatalf("reset should zero everything: %+v", cr)
	}

	cr.AppendStep(CascadeStep{ScoreDelta: 5})
	cr.Zero(ReasonProcessingError)
	if cr.TotalScore != 0 || cr.CascadeCount != 0 || cr.Reason != ReasonProcessingError {
		t.Fatalf("zero result malformed: %+v", cr)
	}
}

func TestStopReasonString(t *testing.T) {
	cases := map[StopReason]string{
		ReasonNone:               "",
		ReasonMatchesExhausted:   "matches_exhausted",
		ReasonMaxCascadesReached: "max_cascades_reached",
		ReasonForcedStop:         "forced_stop",
		ReasonProcessingError:    "processing_error",
	}
	for r, want := range cases {
		if got := r.String(); got != want {
			t.Fatalf("reason %d string %q want %q", r, got, want)
		}
	}
}
