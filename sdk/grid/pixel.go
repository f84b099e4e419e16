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

package grid

import "math"

// PixelMap 做邏輯座標 ↔ 像素座標的換算。
//
// 表現層相鄰的薄元件：引擎核心不依賴它，只有渲染/觸控側會用。
// 像素座標採螢幕慣例（y 往下），所以換算時會走 ArrayRow。
type PixelMap struct {
	OriginX float64 // 盤面矩形左上角 x
	OriginY float64 // 盤面矩形左上角 y
	CellW   float64
	CellH   float64
	Cols    int
	Rows    int
}

// ToPixel 回傳邏輯位置的像素中心點。
func (m *PixelMap) ToPixel(p Pos) (px float64, py float64) {
	px = m.OriginX + (float64(p.X)+0.5)*m.CellW
	py = m.OriginY + (float64(ArrayRow(m.Rows, p.Y))+0.5)*m.CellH
	return
}

// FromPixel 把像素點換回邏輯位置；點落在盤面矩形外回 ok=false。
func (m *PixelMap) FromPixel(px float64, py float64) (p Pos, ok bool) {
	if m.CellW <= 0 || m.CellH <= 0 {
		return Pos{}, false
	}
	fx := (px - m.OriginX) / m.CellW
	fy := (py - m.OriginY) / m.CellH
	// 上界在轉 int 之前就用浮點檢查，NaN 與 ±Inf 也一併落在界外
	if !(fx >= 0 && fx < float64(m.Cols) && fy >= 0 && fy < float64(m.Rows)) {
		return Pos{}, false
	}
	x := int(math.Floor(fx))
	ar := int(math.Floor(fy))
	return Pos{X: x, Y: ArrayRow(m.Rows, ar)}, true
}
