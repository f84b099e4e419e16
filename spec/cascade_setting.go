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

const (
	// DefaultMaxCascades 為未設定時的連鎖上限。
	DefaultMaxCascades int = 10
	// MinCascadeLimit / MaxCascadeLimit 為連鎖上限的合法區間，超出者直接夾限。
	MinCascadeLimit int = 1
	MaxCascadeLimit int = 50
)

// CascadeSetting 描述連鎖（cascade）迴圈的設定。
//
//   - MaxCascades: 單次觸發最多跑幾輪 detect→process→compact；夾限在 [1,50]。
//   - MultiplierExpiryMs: 連鎖倍率的逾時毫秒數（0 代表不啟用逾時）。
type CascadeSetting struct {
	MaxCascades        int   `yaml:"max_cascades"         json:"max_cascades"`
	MultiplierExpiryMs int64 `yaml:"multiplier_expiry_ms" json:"multiplier_expiry_ms"`
	initFlag           bool
}

// ClampCascadeLimit 把任意值夾限進合法區間。設定錯誤不視為 error，一律夾限。
func ClampCascadeLimit(n int) int {
	return min(MaxCascadeLimit, max(MinCascadeLimit, n))
}

// Init 補預設值並夾限範圍。
func (cs *CascadeSetting) Init() error {
	if cs.initFlag {
		return nil
	}
	if cs.MaxCascades == 0 {
		cs.MaxCascades = DefaultMaxCascades
	}
	cs.MaxCascades = ClampCascadeLimit(cs.MaxCascades)
	cs.MultiplierExpiryMs = max(0, cs.MultiplierExpiryMs)
	cs.initFlag = true
	return nil
}
