package score

import (
	"fmt"

	"github.com/zintix-labs/dicelab/errs"
	"github.com/zintix-labs/dicelab/spec"
)

// Builder builds a Processor bound to a specific game setting
// (per-session instance). It is invoked during session initialization.
type Builder func(gs *spec.GameSetting) (Processor, error)

// Registry 以 LogicKey 對應計分邏輯的建構器。
// 建表階段單執行緒使用；建完視為唯讀。
type Registry struct {
	builders map[spec.LogicKey]Builder
}

func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[spec.LogicKey]Builder, 16),
	}
}

func (r *Registry) Register(lkey spec.LogicKey, b Builder) error {
	if b == nil {
		return errs.NewFatal("nil score builder")
	}
	if _, ok := r.builders[lkey]; ok {
		return errs.NewFatal("duplicate score builder")
	}
	r.builders[lkey] = b
	return nil
}

// IsExist 回報該 LogicKey 是否已註冊。
func (r *Registry) IsExist(lkey spec.LogicKey) bool {
	_, ok := r.builders[lkey]
	return ok
}

// Merge 把多個 Registry 合併成一個新表；鍵衝突視為 Fatal。
func Merge(regs ...*Registry) (*Registry, error) {
	if len(regs) == 0 {
		return nil, errs.NewFatal("no score registry provided")
	}
	out := NewRegistry()
	for _, src := range regs {
		if src == nil {
			return nil, errs.NewFatal("nil score registry")
		}
		for k, b := range src.builders {
			if err := out.Register(k, b); err != nil {
				return nil, errs.Wrap(err, fmt.Sprintf("merge score registry failed: lkey=%q", k))
			}
		}
	}
	return out, nil
}

// Build 依 LogicKey 建出該遊戲的 Processor。
func (r *Registry) Build(lkey spec.LogicKey, gs *spec.GameSetting) (Processor, error) {
	b, ok := r.builders[lkey]
	if !ok {
		return nil, errs.NewFatal(fmt.Sprintf("score builder not found: lkey=%q", lkey))
	}
	p, err := b(gs)
	if err != nil {
		return nil, errs.Wrap(err, fmt.Sprintf("build score logic failed: lkey=%q", lkey))
	}
	return p, nil
}

// Keys 列出已註冊的 LogicKey（觀測用）。
func (r *Registry) Keys() []spec.LogicKey {
	out := make([]spec.LogicKey, 0, len(r.builders))
	for k := range r.builders {
		out = append(out, k)
	}
	return out
}
