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

// Package dicelab 提供骰子連鎖引擎的「組裝入口（assembler）」與「運行入口（runtime entry）」。
//
// 你可以把 Dicelab 視為一個「可被後端/模擬器使用的 runtime」，它負責把下列三個必需的地基組裝在一起，並提供建立 Session 的入口：
//  1. Catalog：盤面目錄（Single Source of Truth / SSOT），定義有哪些盤面設定、各自對應的設定檔名稱（ConfigName）。
//  2. score.Registry：計分邏輯註冊表，提供「如何依據設定（LogicKey）建出計分協作者」的 builders。
//  3. PRNGFactory：亂數核心工廠，保證可重現（reproducible）與可審計（auditable）。
//
// 設計重點：
//   - Dicelab 本身不綁定任何「檔案路徑」概念：設定檔來源一律以 fs.FS 的形式注入。
//   - Session 是對外提供 Lock/Resolve 的最小單位；引擎核心（偵測、重力、連鎖）在 sdk 與根套件內。
//
// 典型使用情境：
//   - 後端服務（HTTP）：由 Dicelab 建 Runtime，Runtime 以 SessionPool 對外提供 Resolve/Lock。
//   - 模擬器（sim）：由 Dicelab 建立多個 Session 進行大量模擬。
package dicelab

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io/fs"
	"math"
	"math/big"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zintix-labs/dicelab/catalog"
	"github.com/zintix-labs/dicelab/errs"
	"github.com/zintix-labs/dicelab/sdk/core"
	"github.com/zintix-labs/dicelab/sdk/score"
	"github.com/zintix-labs/dicelab/spec"
)

// Configs 用來把一或多個設定檔來源（fs.FS）打包成 New() 需要的參數。
//
// 為什麼是 fs.FS：
//   - 你可以用 go:embed 把 configs 直接編進 binary（部署最穩定，不依賴工作目錄）。
//   - 也可以用 os.DirFS 在本機開發時讀取目錄。
//
// Dicelab 不解析「路徑」：它只依賴 fs.FS + ConfigName（檔名）來取得設定內容。
func Configs(cfgs ...fs.FS) []fs.FS {
	return cfgs
}

// Logics 用來把一或多個計分邏輯註冊表打包成 New() 需要的參數。
//
// 一個 Registry 代表「一個邏輯模組」提供的 builders 集合。
// New() 會把多個 registries 合併成單一 registry；若出現重複 LogicKey，
// 會以 error 直接失敗（避免行為不確定）。
func Logics(regs ...*score.Registry) []*score.Registry {
	return regs
}

// Dicelab 是「組裝器（assembler）」與「運行入口（runtime entry）」。
//
// 使用流程通常分成兩階段：
//   - 註冊/組裝階段（registration/build）：建立 catalog、合併 registries、檢查重複與缺漏。
//   - 執行階段（runtime）：依據盤面 ID 產生 Session，並在 Session 上執行 Lock/Resolve。
//
// 重要設計原則：
//   - Catalog 的 ID 唯一性只保證在「同一個 Dicelab instance」內。
//   - runtime 一旦開始（已建立 Session 並對外服務），不建議再變更 Catalog/Registry。
type Dicelab struct {
	cat *catalog.Catalog
	reg *score.Registry
	cf  core.PRNGFactory
	sum []catalog.Summary
}

// New 建立一個 Dicelab instance。
//
// 這是「組裝階段」的入口：
//   - 會建立 Catalog（同時做檔名存在性/重複性檢查，避免 runtime 才爆）。
//   - 會合併多個 Registry 成為單一 registry（重複 LogicKey 直接視為錯誤）。
//   - 會保存 PRNGFactory，確保由這個 Dicelab 建出來的 Session 在 RNG 行為上具有一致性。
//
// 參數要求（是合約的一部分）：
//   - cf 不能為 nil：沒有 RNG 工廠就無法建立可重現/可審計的核心。
//   - cfgs 至少一個：沒有設定檔來源，Catalog 無法解析 GameSetting。
//   - logics 至少一個：沒有計分 builders，就算解析出設定也無法建出可執行的協作者。
func New(cf core.PRNGFactory, cfgs []fs.FS, logics []*score.Registry) (*Dicelab, error) {
	if cf == nil {
		return nil, errs.NewFatal("core factory required")
	}
	if len(cfgs) == 0 {
		return nil, errs.NewFatal("configs required")
	}
	if len(logics) == 0 {
		return nil, errs.NewFatal("logic registry required")
	}
	cata, err := catalog.New(cfgs...)
	if err != nil {
		return nil, err
	}
	reg, err := score.Merge(logics...)
	if err != nil {
		return nil, err
	}
	lab := &Dicelab{
		cat: cata,
		reg: reg,
		cf:  cf,
	}
	return lab, nil
}

// NewAuto 建立一個直接進入執行階段的 Dicelab instance：
// 掃描並註冊所有設定檔後立刻 Freeze。
func NewAuto(cf core.PRNGFactory, cfgs []fs.FS, logics []*score.Registry) (*Dicelab, error) {
	lab, err := New(cf, cfgs, logics)
	if err != nil {
		return nil, err
	}
	if err := lab.RegisterAll(); err != nil {
		return nil, err
	}
	lab.Freeze()
	return lab, nil
}

func (l *Dicelab) Register(ents ...catalog.Entry) error {
	return l.cat.Register(ents...)
}

// RegisterAll
//
// 會掃描 catalog 持有的設定檔來源（fs.FS），把所有可辨識的設定檔（.yaml/.yml/.json）嘗試解析成
// *spec.GameSetting，並用設定檔內宣告的 GameID/GameName 產生對應的 catalog.Entry 來批次註冊。
//
// 行為特性（重要）：
//  1. Fail-fast：任何一個檔案讀取/解析/基本檢查失敗，都會立刻回傳 error（不會忽略、也不會繼續掃完）。
//  2. 原子性：只有當「全部檔案」都成功解析並通過基本檢查時，才會呼叫 Register(...) 一次性寫入。
//     因此不會出現只註冊了一半、導致 catalog 處於半完成狀態的情況。
//  3. 穩定性：會依檔名排序後再處理，確保行為 determinism（方便重現與除錯）。
//
// 注意：
//   - RegisterAll 只負責「把設定檔宣告的盤面資訊放進 Catalog」。
//
// 計分邏輯（Builder / Registry）是否支援該 LogicKey，屬於後續組裝/建 Session 時的責任。
func (l *Dicelab) RegisterAll() error {
	cfgs := l.cat.Cfg()
	sources := cfgs.Sources()
	if len(sources) == 0 {
		return errs.NewFatal("configs required")
	}

	entries := make([]catalog.Entry, 0, 64)
	seenID := map[spec.GID]string{}
	seenName := map[string]string{}

	for _, src := range sources {
		names := make([]string, 0, 64)
		walkErr := fs.WalkDir(src, ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path == "." {
					return nil
				}
				return errs.NewFatal(fmt.Sprintf("configs must be flat (no subdir): %q", path))
			}

			base := filepath.Base(path)
			if strings.Contains(path, "/") && path != base {
				return errs.NewFatal(fmt.Sprintf("configs must be flat (nested path): %q", path))
			}
			if strings.HasPrefix(base, ".") {
				return nil
			}

			ext := strings.ToLower(filepath.Ext(base))
			if ext != ".yaml" && ext != ".yml" && ext != ".json" {
				return nil
			}
			names = append(names, base)
			return nil
		})
		if walkErr != nil {
			return walkErr
		}
		sort.Strings(names)

		for _, base := range names {
			raw, rerr := fs.ReadFile(src, base)
			if rerr != nil {
				return errs.NewFatal(fmt.Sprintf("read config failed: %s", base))
			}

			var (
				gs   *spec.GameSetting
				gerr error
			)
			switch strings.ToLower(filepath.Ext(base)) {
			case ".yaml", ".yml":
				gs, gerr = spec.GetGameSettingByYAML(raw)
			case ".json":
				gs, gerr = spec.GetGameSettingByJSON(raw)
			default:
				return errs.NewFatal(fmt.Sprintf("unsupported config format: %q", base))
			}
			if gerr != nil {
				return errs.NewFatal(fmt.Sprintf("parse gamesetting failed: %s", base))
			}

			name := strings.TrimSpace(gs.GameName)
			if name == "" {
				return errs.NewFatal(fmt.Sprintf("game name required: %s", base))
			}

			id := gs.GameID
			if prev, ok := seenID[id]; ok {
				return errs.NewFatal(fmt.Sprintf("duplicate game id: %d (config=%s and %s)", id, prev, base))
			}
			if _, ok := l.cat.GetByID(id); ok {
				return errs.NewFatal(fmt.Sprintf("game id already registered: %d (config=%s)", id, base))
			}
			seenID[id] = base

			nameKey := strings.ToLower(name)
			if prev, ok := seenName[nameKey]; ok {
				return errs.NewFatal(fmt.Sprintf("duplicate game name: %s (config=%s and %s)", nameKey, prev, base))
			}
			if _, ok := l.cat.GetByName(name); ok {
				return errs.NewFatal(fmt.Sprintf("game name already registered: %s (config=%s)", name, base))
			}
			seenName[nameKey] = base

			if gs.LogicKey == "" {
				return errs.NewFatal(fmt.Sprintf("logic key required: %s", base))
			}
			if !l.reg.IsExist(gs.LogicKey) {
				return errs.NewFatal(fmt.Sprintf("logic not registered: logic_key=%s (config=%s)", gs.LogicKey, base))
			}

			entries = append(entries, catalog.Entry{
				GID:        id,
				Name:       name,
				ConfigName: base,
			})
		}
	}

	if len(entries) == 0 {
		return errs.NewFatal("no config files found to register")
	}

	return l.cat.Register(entries...)
}

func (l *Dicelab) Freeze() {
	l.cat.Freeze()
}

func (l *Dicelab) EntryById(id spec.GID) (catalog.Entry, bool) {
	return l.cat.GetByID(id)
}

func (l *Dicelab) EntryByName(name string) (catalog.Entry, bool) {
	return l.cat.GetByName(name)
}

func (l *Dicelab) IDs() []spec.GID {
	return l.cat.IDs()
}

func (l *Dicelab) All() []catalog.Entry {
	return l.cat.All()
}

func (l *Dicelab) Summary() ([]catalog.Summary, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	if l.sum != nil {
		return l.sum, nil
	}
	ids := l.cat.IDs()
	cs := make([]catalog.Summary, 0, len(ids))
	for _, id := range ids {
		gs, err := l.cat.GameSettingById(id)
		if err != nil {
			return nil, errs.NewFatal("parse game setting failed")
		}
		s := catalog.Summary{
			GID:         id,
			Name:        gs.GameName,
			Logic:       gs.LogicKey,
			Columns:     gs.BoardSetting.Columns,
			Rows:        gs.BoardSetting.Rows,
			MinMatch:    gs.MatchSetting.MinMatch,
			MaxCascades: gs.CascadeSetting.MaxCascades,
		}
		cs = append(cs, s)
	}
	l.sum = cs
	return l.sum, nil
}

// NewSession 依據 Catalog 內的盤面 ID 建立一個 Session。
//
// 行為：
//  1. 由 Catalog 取得對應的 GameSetting（通常來自 fs.FS 內的 YAML/JSON）。
//  2. 以 PRNGFactory 產生 RNG 核心（seed 由 crypto/rand 產生）。
//  3. 透過 Registry 依據 GameSetting 內的 LogicKey 建出計分協作者。
//
// 注意：seed 會被記錄在 Session 內（initseed），用於追溯/重現；
// 真正的可審計能力以 Core 的 Snapshot/Restore 合約為準。
func (l *Dicelab) NewSession(id spec.GID) (*Session, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	gs, err := l.cat.GameSettingById(id)
	if err != nil {
		return nil, err
	}
	return newSession(gs, l.reg, l.cf)
}

// NewSessionWithSeed 與 NewSession 相同，但由呼叫端指定初始 seed。
//
// 使用情境：
//   - 可重現的測試：同一份設定 + 同一個 seed，應產生一致的隨機序列（取決於 Core 實作）。
//
// 注意：seed 只是「出生入口」。若要在任意時間點完整重現，
// 請使用 Core 的 Snapshot/Restore（以 []byte 交換狀態）。
func (l *Dicelab) NewSessionWithSeed(id spec.GID, seed int64) (*Session, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	gs, err := l.cat.GameSettingById(id)
	if err != nil {
		return nil, err
	}
	return newSessionWithSeed(gs, l.reg, l.cf, seed)
}

func (l *Dicelab) NewSessionByJSON(raw []byte, seed int64) (*Session, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	cfg, err := spec.GetGameSettingByJSON(raw)
	if err != nil {
		return nil, err
	}
	if err := l.validCfg(cfg); err != nil {
		return nil, err
	}
	return newSessionWithSeed(cfg, l.reg, l.cf, seed)
}

func (l *Dicelab) NewSessionByYAML(raw []byte, seed int64) (*Session, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	cfg, err := spec.GetGameSettingByYAML(raw)
	if err != nil {
		return nil, err
	}
	if err := l.validCfg(cfg); err != nil {
		return nil, err
	}
	return newSessionWithSeed(cfg, l.reg, l.cf, seed)
}

func (l *Dicelab) validCfg(cfg *spec.GameSetting) error {
	ent, ok := l.cat.GetByID(cfg.GameID)
	if !ok {
		return errs.NewWarn("gid not exist")
	}
	ent2, ok := l.cat.GetByName(cfg.GameName)
	if !ok {
		return errs.NewWarn("game name not exist")
	}
	if ent.GID != ent2.GID {
		return errs.NewWarn("game id is not matched game name")
	}
	if !l.reg.IsExist(cfg.LogicKey) {
		return errs.NewWarn("game logic not exist")
	}
	return nil
}

func (l *Dicelab) NewSimulator(id spec.GID) (*Simulator, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	gs, err := l.cat.GameSettingById(id)
	if err != nil {
		return nil, err
	}
	return newSimulator(gs, l.reg, l.cf)
}

func (l *Dicelab) NewSimulatorWithSeed(id spec.GID, seed int64) (*Simulator, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	gs, err := l.cat.GameSettingById(id)
	if err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(gs, l.reg, l.cf, seed)
}

func (l *Dicelab) NewSimulatorByJSON(raw []byte, seed int64) (*Simulator, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	cfg, err := spec.GetGameSettingByJSON(raw)
	if err != nil {
		return nil, err
	}
	if err := l.validCfg(cfg); err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(cfg, l.reg, l.cf, seed)
}

func (l *Dicelab) NewSimulatorByYAML(raw []byte, seed int64) (*Simulator, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	cfg, err := spec.GetGameSettingByYAML(raw)
	if err != nil {
		return nil, err
	}
	if err := l.validCfg(cfg); err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(cfg, l.reg, l.cf, seed)
}

// BuildRuntime 為每個已註冊的盤面設定建立 SessionPool，進入執行階段。
func (l *Dicelab) BuildRuntime(poolSize int) (*DiceRuntime, error) {
	// 1. 進入 runtime 前，catalog 必須 Freeze
	l.Freeze()

	ids := l.cat.IDs()
	if len(ids) == 0 {
		return nil, errs.NewFatal("no games registered")
	}

	rt := &DiceRuntime{
		lab:      l,
		pools:    make(map[spec.GID]*SessionPool, len(ids)),
		ids:      ids,
		done:     make(chan struct{}),
		poolSize: max(1, poolSize),
	}
	rt.reason.Store("")

	// 2. 先全建好（fail-fast + cleanup）
	for _, id := range ids {
		gs, err := l.cat.GameSettingById(id)
		if err != nil {
			return nil, err
		}

		seed, _ := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
		sp, err := newSessionPool(rt.poolSize, gs, l.reg, l.cf, seed.Int64())
		if err != nil {
			return nil, err
		}
		rt.pools[id] = sp
	}
	return rt, nil
}

// NewDevSession
//
// 只提供給 Dev 模式使用：同一個 seed 建一個 Session 與一個 Simulator，
// 並驗證兩者出生時的 Core 狀態一致，以保證單機重現性。
func (l *Dicelab) NewDevSession(gid spec.GID, seed int64) (*DevSession, error) {
	sim, err := l.NewSimulatorWithSeed(gid, seed)
	if err != nil {
		return nil, err
	}
	s, err := l.NewSessionWithSeed(gid, seed)
	if err != nil {
		return nil, err
	}
	simBe, err := sim.sBuf[0].SnapshotCore()
	if err != nil {
		return nil, err
	}
	sBe, err := s.SnapshotCore()
	if err != nil {
		return nil, err
	}
	simBe64 := base64.StdEncoding.EncodeToString(simBe)
	sBe64 := base64.StdEncoding.EncodeToString(sBe)
	if sBe64 != simBe64 {
		return nil, errs.NewFatal("seeds are not equal")
	}
	dev := &DevSession{
		sim:      sim,
		s:        s,
		before:   sBe,
		before64: sBe64,
	}
	return dev, nil
}
