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

package spec

import (
	"fmt"

	"github.com/zintix-labs/dicelab/errs"
)

// GID 是遊戲（盤面變體）在 catalog 內的唯一編號。
type GID uint

// LogicKey 對應計分邏輯（score logic）註冊表的鍵。
type LogicKey string

// GameSetting 包含啟動一個骰子盤面（board variant）所需的所有高階設定。
type GameSetting struct {
	GameName       string         `yaml:"game_name"       json:"game_name"`
	GameID         GID            `yaml:"game_id"         json:"game_id"`
	LogicKey       LogicKey       `yaml:"logic_key"       json:"logic_key"`
	BoardSetting   BoardSetting   `yaml:"board_setting"   json:"board_setting"`
	MatchSetting   MatchSetting   `yaml:"match_setting"   json:"match_setting"`
	CascadeSetting CascadeSetting `yaml:"cascade_setting" json:"cascade_setting"`
	DiceSetting    DiceSetting    `yaml:"dice_setting"    json:"dice_setting"`
	PixelSetting   PixelSetting   `yaml:"pixel_setting"   json:"pixel_setting"`
	Fixed          map[string]any `yaml:"fixed"           json:"fixed"`
}

// init
func (gs *GameSetting) init() error {
	if err := gs.BoardSetting.Init(); err != nil {
		return err
	}
	if err := gs.MatchSetting.Init(); err != nil {
		return err
	}
	if err := gs.CascadeSetting.Init(); err != nil {
		return err
	}
	if err := gs.DiceSetting.Init(); err != nil {
		return err
	}
	if err := gs.PixelSetting.Init(); err != nil {
		return err
	}
	return gs.valid()
}

// valid 執行最基本的設定檔檢查，如需更多驗證可在此擴充。
func (gs *GameSetting) valid() error {
	if gs.GameName == "" {
		return errs.NewFatal("empty game_name")
	}
	if gs.LogicKey == "" {
		return errs.NewFatal(fmt.Sprintf("game_name: %s err:empty logic_key", gs.GameName))
	}
	return nil
}
