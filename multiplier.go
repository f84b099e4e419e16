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

package dicelab

import "time"

// Multiplier 是連鎖計分倍率。
//
// 語意：
//   - 值永遠 >= 1；Increment 每次加 1，Reset 回到 1 並清掉逾時。
//   - 逾時是「合作式輪詢」：StartExpiry 只記錄絕對期限，沒有任何背景 timer。
//     不呼叫 CheckExpiry 的話倍率永遠不會自己掉回 1。
//
// 擁有者是跑連鎖的那個元件（Session），不做內部鎖。
type Multiplier struct {
	value    int
	deadline time.Time // 零值代表沒有待生效的逾時
}

// NewMultiplier 建立值為 1 的倍率。
func NewMultiplier() *Multiplier {
	return &Multiplier{value: 1}
}

// Value 回傳目前倍率（>= 1）。
func (m *Multiplier) Value() int {
	if m.value < 1 {
		return 1
	}
	return m.value
}

// Increment 倍率加 1。
func (m *Multiplier) Increment() {
	if m.value < 1 {
		m.value = 1
	}
	m.value++
}

// Reset 倍率回到 1，同時清除待生效的逾時期限。
func (m *Multiplier) Reset() {
	m.value = 1
	m.deadline = time.Time{}
}

// StartExpiry 記錄絕對期限 = now + max(0, delay)。
// 負的 delay 視為 0，也就是下一次 CheckExpiry 就會重置。
func (m *Multiplier) StartExpiry(delay time.Duration) {
	if delay < 0 {
		delay = 0
	}
	m.deadline = time.Now().Add(delay)
}

// CheckExpiry 輪詢逾時：期限已到就 Reset 並回傳 true。
// 沒有設定期限時永遠回傳 false。
func (m *Multiplier) CheckExpiry() bool {
	return m.CheckExpiryAt(time.Now())
}

// CheckExpiryAt 與 CheckExpiry 相同，但以呼叫端指定的 now 判斷（測試用）。
func (m *Multiplier) CheckExpiryAt(now time.Time) bool {
	if m.deadline.IsZero() {
		return false
	}
	if now.Before(m.deadline) {
		return false
	}
	m.Reset()
	return true
}
