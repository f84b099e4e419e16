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

package spec_test

import (
	"strings"
	"testing"

	"github.com/zintix-labs/dicelab/spec"
)

const validYAML = `
game_name: testgame
game_id: 9
logic_key: face_sum
board_setting:
  columns: 7
  rows: 6
dice_setting:
  colors: [red, blue, green]
  color_weights: [3, 2, 1]
  wild_weight: 1
cascade_setting:
  max_cascades: 999
  multiplier_expiry_ms: -50
fixed:
  bonus: 12
`

func TestGetGameSettingByYAML(t *testing.T) {
	gs, err := spec.GetGameSettingByYAML([]byte(validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gs.GameName != "testgame" || gs.GameID != spec.GID(9) {
		t.Fatalf("identity got %s/%d", gs.GameName, gs.GameID)
	}
	if gs.BoardSetting.BoardSize != 42 {
		t.Fatalf("board size got %d want 42", gs.BoardSetting.BoardSize)
	}

	// 預設值補齊
	if gs.MatchSetting.MinMatch != 3 {
		t.Fatalf("min match default got %d want 3", gs.MatchSetting.MinMatch)
	}
	if gs.DiceSetting.Faces != 6 {
		t.Fatalf("faces default got %d want 6", gs.DiceSetting.Faces)
	}
	if gs.DiceSetting.ColorCount != 3 {
		t.Fatalf("color count got %d want 3", gs.DiceSetting.ColorCount)
	}

	// 超界設定夾限而非拒絕
	if gs.CascadeSetting.MaxCascades != 50 {
		t.Fatalf("max cascades got %d want 50", gs.CascadeSetting.MaxCascades)
	}
	if gs.CascadeSetting.MultiplierExpiryMs != 0 {
		t.Fatalf("expiry got %d want 0", gs.CascadeSetting.MultiplierExpiryMs)
	}
}

func TestGetGameSettingByJSON(t *testing.T) {
	raw := []byte(`{
		"game_name": "jsongame",
		"game_id": 3,
		"logic_key": "face_sum",
		"board_setting": {"columns": 4, "rows": 4},
		"dice_setting": {"colors": ["red"]}
	}`)
	gs, err := spec.GetGameSettingByJSON(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gs.BoardSetting.BoardSize != 16 {
		t.Fatalf("board size got %d want 16", gs.BoardSetting.BoardSize)
	}
	// 沒給權重時均一
	if len(gs.DiceSetting.ColorWeights) != 1 || gs.DiceSetting.ColorWeights[0] != 1 {
		t.Fatalf("default weights got %v", gs.DiceSetting.ColorWeights)
	}
}

func TestGameSettingRejects(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"missing name", strings.Replace(validYAML, "game_name: testgame", "game_name: \"\"", 1)},
		{"missing logic", strings.Replace(validYAML, "logic_key: face_sum", "logic_key: \"\"", 1)},
		{"zero columns", strings.Replace(validYAML, "columns: 7", "columns: 0", 1)},
		{"no colors", strings.Replace(validYAML, "colors: [red, blue, green]", "colors: []", 1)},
		{"weight mismatch", strings.Replace(validYAML, "color_weights: [3, 2, 1]", "color_weights: [3, 2]", 1)},
		{"zero weight", strings.Replace(validYAML, "color_weights: [3, 2, 1]", "color_weights: [3, 0, 1]", 1)},
		{"negative wild", strings.Replace(validYAML, "wild_weight: 1", "wild_weight: -1", 1)},
	}
	for _, c := range cases {
		if _, err := spec.GetGameSettingByYAML([]byte(c.yaml)); err == nil {
			t.Fatalf("%s: expected error", c.name)
		}
	}
}

func TestClampCascadeLimit(t *testing.T) {
	cases := []struct{ in, want int }{
		{-10, 1}, {0, 1}, {1, 1}, {25, 25}, {50, 50}, {51, 50},
	}
	for _, c := range cases {
		if got := spec.ClampCascadeLimit(c.in); got != c.want {
			t.Fatalf("ClampCascadeLimit(%d) got %d want %d", c.in, got, c.want)
		}
	}
}

func TestPixelSettingInit(t *testing.T) {
	ok := spec.PixelSetting{CellW: 64, CellH: 48}
	if err := ok.Init(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok.Enabled() {
		t.Fatalf("pixel metrics should be enabled")
	}

	off := spec.PixelSetting{}
	if err := off.Init(); err != nil {
		t.Fatalf("all-zero pixel setting must pass: %v", err)
	}
	if off.Enabled() {
		t.Fatalf("all-zero pixel setting must be disabled")
	}

	half := spec.PixelSetting{CellW: 64}
	if err := half.Init(); err == nil {
		t.Fatalf("one-sided cell size must be rejected")
	}
	neg := spec.PixelSetting{CellW: -1, CellH: 10}
	if err := neg.Init(); err == nil {
		t.Fatalf("negative cell size must be rejected")
	}
}

func TestDecodeFixed(t *testing.T) {
	gs, err := spec.GetGameSettingByYAML([]byte(validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var cfg struct {
		Bonus int `yaml:"bonus"`
	}
	if err := spec.DecodeFixed(gs, &cfg); err != nil {
		t.Fatalf("decode fixed error: %v", err)
	}
	if cfg.Bonus != 12 {
		t.Fatalf("bonus got %d want 12", cfg.Bonus)
	}

	// 多寫/拼錯的欄位要被拒絕
	var strict struct {
		Other int `yaml:"other"`
	}
	if err := spec.DecodeFixed(gs, &strict); err == nil {
		t.Fatalf("unknown fixed field must be rejected")
	}
}
