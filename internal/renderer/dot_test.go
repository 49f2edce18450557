package renderer

import (
	"strings"
	"testing"

	"sql-to-er/internal/ermodel"
)

func TestDotRender(t *testing.T) {
	out := NewDotRenderer("Shop").Render(sampleEntities(), sampleRelationships())

	for _, want := range []string{
		"digraph Shop {",
		"rankdir=TB;",
		"subgraph cluster_users {",
		`"users" [shape=box`,
		// 实体有注释时展示名用注释
		`label="用户表"`,
		// 主键属性高亮并带 PK 标记
		`"users_id" [shape=ellipse, style=filled, fillcolor=lightyellow, fontcolor=red, penwidth=2, label="id\n[PK]"];`,
		`"users" -> "users_id" [dir=none];`,
		`"rel_0" [shape=diamond`,
		`"orders" -> "rel_0" [dir=none, label="user_id"];`,
		`"rel_0" -> "users" [dir=none, label="→id"];`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dot output missing %q\n%s", want, out)
		}
	}
}

func TestDotRendererDefaultName(t *testing.T) {
	out := NewDotRenderer("").Render(map[string]*ermodel.Entity{}, nil)
	if !strings.HasPrefix(out, "digraph ER_Diagram {") {
		t.Errorf("empty name should fall back to ER_Diagram, got:\n%s", out)
	}
}

func TestEscapeDot(t *testing.T) {
	if got := escapeDot(`say "hi"`); got != `say \"hi\"` {
		t.Errorf("escapeDot = %q", got)
	}
}
