package catalog_test

import (
	"testing"
	"testing/fstest"

	"github.com/zintix-labs/dicelab/catalog"
	"github.com/zintix-labs/dicelab/spec"
)

const cfgYAML = `
game_name: alpha
game_id: 1
logic_key: face_sum
board_setting:
  columns: 5
  rows: 5
dice_setting:
  colors: [red, blue]
`

func newTestFS() fstest.MapFS {
	return fstest.MapFS{
		"alpha.yaml": &fstest.MapFile{Data: []byte(cfgYAML)},
		"beta.yaml":  &fstest.MapFile{Data: []byte(cfgYAML)},
		"notes.txt":  &fstest.MapFile{Data: []byte("ignored")},
	}
}

func TestRegisterAndLookup(t *testing.T) {
	c, err := catalog.New(newTestFS())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = c.Register(
		catalog.Entry{GID: spec.GID(1), Name: "Alpha ", ConfigName: "alpha.yaml"},
		catalog.Entry{GID: spec.GID(2), Name: "beta", ConfigName: "beta.yaml"},
	)
	if err != nil {
		t.Fatalf("register error: %v", err)
	}

	// 名稱正規化：trim + lower
	e, ok := c.GetByName("  ALPHA ")
	if !ok || e.GID != spec.GID(1) {
		t.Fatalf("lookup by normalized name failed: %+v ok=%v", e, ok)
	}
	if e.Name != "alpha" {
		t.Fatalf("stored entry must keep the normalized name, got %q", e.Name)
	}
	if _, ok := c.GetByID(spec.GID(3)); ok {
		t.Fatalf("unknown id must miss")
	}

	ids := c.IDs()
	if len(ids) != 2 || ids[0] != spec.GID(1) || ids[1] != spec.GID(2) {
		t.Fatalf("ids got %v", ids)
	}
	if got := len(c.All()); got != 2 {
		t.Fatalf("all got %d entries want 2", got)
	}
}

func TestRegisterRejects(t *testing.T) {
	newCat := func() *catalog.Catalog {
		c, err := catalog.New(newTestFS())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return c
	}

	cases := []struct {
		name string
		ents []catalog.Entry
	}{
		{"empty name", []catalog.Entry{{GID: 1, Name: "", ConfigName: "alpha.yaml"}}},
		{"missing config", []catalog.Entry{{GID: 1, Name: "a", ConfigName: "missing.yaml"}}},
		{"path in config name", []catalog.Entry{{GID: 1, Name: "a", ConfigName: "sub/alpha.yaml"}}},
		{"bad extension", []catalog.Entry{{GID: 1, Name: "a", ConfigName: "notes.txt"}}},
		{"dup id in batch", []catalog.Entry{
			{GID: 1, Name: "a", ConfigName: "alpha.yaml"},
			{GID: 1, Name: "b", ConfigName: "beta.yaml"},
		}},
		{"dup name in batch", []catalog.Entry{
			{GID: 1, Name: "a", ConfigName: "alpha.yaml"},
			{GID: 2, Name: "A", ConfigName: "beta.yaml"},
		}},
		{"dup config in batch", []catalog.Entry{
			{GID: 1, Name: "a", ConfigName: "alpha.yaml"},
			{GID: 2, Name: "b", ConfigName: "alpha.yaml"},
		}},
	}
	for _, cse := range cases {
		if err := newCat().Register(cse.ents...); err == nil {
			t.Fatalf("%s: expected error", cse.name)
		}
	}

	// 跨批次重複
	c := newCat()
	if err := c.Register(catalog.Entry{GID: 1, Name: "a", ConfigName: "alpha.yaml"}); err != nil {
		t.Fatalf("first register error: %v", err)
	}
	if err := c.Register(catalog.Entry{GID: 1, Name: "z", ConfigName: "beta.yaml"}); err == nil {
		t.Fatalf("duplicate id across batches must be rejected")
	}
	if err := c.Register(catalog.Entry{GID: 9, Name: "a", ConfigName: "beta.yaml"}); err == nil {
		t.Fatalf("duplicate name across batches must be rejected")
	}
}

func TestFreezeBlocksRegister(t *testing.T) {
	c, err := catalog.New(newTestFS())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Freeze()
	if !c.IsFrozen() {
		t.Fatalf("catalog must report frozen")
	}
	if err := c.Register(catalog.Entry{GID: 1, Name: "a", ConfigName: "alpha.yaml"}); err == nil {
		t.Fatalf("register after freeze must fail")
	}
}

func TestGameSettingById(t *testing.T) {
	c, err := catalog.New(newTestFS())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Register(catalog.Entry{GID: 1, Name: "alpha", ConfigName: "alpha.yaml"}); err != nil {
		t.Fatalf("register error: %v", err)
	}

	gs, err := c.GameSettingById(spec.GID(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gs.GameName != "alpha" || gs.BoardSetting.BoardSize != 25 {
		t.Fatalf("setting got %s size %d", gs.GameName, gs.BoardSetting.BoardSize)
	}

	gs2, err := c.GameSettingByName("ALPHA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gs2.GameID != gs.GameID {
		t.Fatalf("by-name lookup mismatch")
	}

	if _, err := c.GameSettingById(spec.GID(404)); err == nil {
		t.Fatalf("unknown id must fail")
	}
}

func TestMultiFSRejects(t *testing.T) {
	// 子目錄
	nested := fstest.MapFS{
		"sub/alpha.yaml": &fstest.MapFile{Data: []byte(cfgYAML)},
	}
	if _, err := catalog.New(nested); err == nil {
		t.Fatalf("nested config FS must be rejected")
	}

	// 跨來源同名
	a := fstest.MapFS{"alpha.yaml": &fstest.MapFile{Data: []byte(cfgYAML)}}
	b := fstest.MapFS{"alpha.yaml": &fstest.MapFile{Data: []byte(cfgYAML)}}
	if _, err := catalog.New(a, b); err == nil {
		t.Fatalf("duplicate config across FS must be rejected")
	}

	if _, err := catalog.New(); err == nil {
		t.Fatalf("no FS must be rejected")
	}
}
