package renderer

import (
	"strings"
	"testing"

	"sql-to-er/internal/ermodel"
)

func sampleEntities() map[string]*ermodel.Entity {
	users := &ermodel.Entity{Name: "users", Comment: "用户表"}
	users.AddAttribute(&ermodel.Attribute{Name: "id", DataType: "INT", IsPK: true, DisplayName: "id"})
	users.AddAttribute(&ermodel.Attribute{Name: "name", DataType: "VARCHAR(50)", Comment: "姓名", DisplayName: "姓名"})

	orders := &ermodel.Entity{Name: "orders"}
	orders.AddAttribute(&ermodel.Attribute{Name: "id", DataType: "INT", IsPK: true, DisplayName: "id"})
	orders.AddAttribute(&ermodel.Attribute{Name: "user_id", DataType: "INT", IsFK: true, DisplayName: "user_id"})

	return map[string]*ermodel.Entity{"users": users, "orders": orders}
}

func sampleRelationships() []*ermodel.Relationship {
	return []*ermodel.Relationship{
		{
			FromEntity:    "orders",
			ToEntity:      "users",
			FromAttribute: "user_id",
			ToAttribute:   "id",
			Name:          "orders_to_users",
			RelType:       ermodel.RelOneToMany,
		},
	}
}

func TestMermaidRender(t *testing.T) {
	out := NewMermaidRenderer().Render(sampleEntities(), sampleRelationships())

	for _, want := range []string{
		"erDiagram",
		"users {",
		"orders {",
		"INT id PK",
		"INT user_id FK",
		`VARCHAR name "姓名"`,
		`users ||--o{ orders : "orders_to_users"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("mermaid output missing %q\n%s", want, out)
		}
	}

	// 类型长度不能进 mermaid
	if strings.Contains(out, "VARCHAR(50)") {
		t.Error("mermaid output should strip type length")
	}
}

func TestMermaidConnectors(t *testing.T) {
	tests := []struct {
		relType   string
		connector string
	}{
		{ermodel.RelOneToOne, "||--||"},
		{ermodel.RelOneToMany, "||--o{"},
		{ermodel.RelManyToMany, "}o--o{"},
	}

	for _, tt := range tests {
		t.Run(tt.relType, func(t *testing.T) {
			rels := []*ermodel.Relationship{{
				FromEntity: "a", ToEntity: "b", Name: "a_to_b", RelType: tt.relType,
			}}
			out := NewMermaidRenderer().Render(map[string]*ermodel.Entity{}, rels)
			want := "b " + tt.connector + " a"
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q for rel type %s\n%s", want, tt.relType, out)
			}
		})
	}
}

func TestMermaidDeterministicOrder(t *testing.T) {
	first := NewMermaidRenderer().Render(sampleEntities(), sampleRelationships())
	for i := 0; i < 10; i++ {
		if again := NewMermaidRenderer().Render(sampleEntities(), sampleRelationships()); again != first {
			t.Fatal("mermaid output differs between runs")
		}
	}

	// 实体按名字排序输出
	if strings.Index(first, "orders {") > strings.Index(first, "users {") {
		t.Error("entities should be rendered in sorted order")
	}
}

func TestBaseTypeName(t *testing.T) {
	tests := []struct {
		dataType string
		expected string
	}{
		{"VARCHAR(50)", "VARCHAR"},
		{"DECIMAL(10,2)", "DECIMAL"},
		{"INT", "INT"},
		{"", "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := baseTypeName(tt.dataType); got != tt.expected {
			t.Errorf("baseTypeName(%q) = %q, want %q", tt.dataType, got, tt.expected)
		}
	}
}
