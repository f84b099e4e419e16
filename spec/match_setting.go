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

// DefaultMinMatch 為未設定時的最小連線數。
const DefaultMinMatch int = 3

// MatchSetting 描述連線判定的設定。
//
//   - MinMatch: 連通群最小顆數，低於此數不成立 match；0 代表用預設值 3。
type MatchSetting struct {
	MinMatch int `yaml:"min_match" json:"min_match"`
	initFlag bool
}

// Init 補預設值並夾限範圍（永不拒絕，與 max_cascades 同一原則）。
func (ms *MatchSetting) Init() error {
	if ms.initFlag {
		return nil
	}
	if ms.MinMatch == 0 {
		ms.MinMatch = DefaultMinMatch
	}
	ms.MinMatch = max(2, ms.MinMatch)
	ms.initFlag = true
	return nil
}
