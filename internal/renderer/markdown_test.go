package renderer

import (
	"strings"
	"testing"

	"sql-to-er/internal/sqlparser"
)

func TestMarkdownRender(t *testing.T) {
	tables := map[string]*sqlparser.TableMeta{
		"users": {
			Comment: "用户表",
			Columns: []sqlparser.Column{
				{Name: "id", Type: "INT", PK: true, Nullable: true},
				{Name: "name", Type: "VARCHAR(50)", Comment: "姓名"},
				{Name: "status", Type: "VARCHAR(10)", Default: "active", Nullable: true},
			},
			PrimaryKeys: []string{"id"},
		},
		"orders": {
			Columns: []sqlparser.Column{
				{Name: "id", Type: "INT", PK: true},
				{Name: "user_id", Type: "INT"},
			},
			PrimaryKeys: []string{"id"},
			ForeignKeys: []sqlparser.ForeignKey{
				{Column: "user_id", Ref: sqlparser.FKRef{Table: "users", Column: "id"}, Comment: "fk_user"},
			},
		},
	}

	out := NewMarkdownRenderer().Render(tables)

	for _, want := range []string{
		"# 数据库结构文档",
		"## users（用户表）",
		"## orders",
		"| 列名 | 类型 | 长度 | 可空 | 主键 | 默认值 | 注释 |",
		"| id | INT | - | 是 | ✓ | - |  |",
		"| name | VARCHAR | 50 | 否 |  | - | 姓名 |",
		"| status | VARCHAR | 10 | 是 |  | active |  |",
		"### 外键",
		"- `orders.user_id` → `users.id`（fk_user）",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q\n%s", want, out)
		}
	}

	// 表按名字排序输出
	if strings.Index(out, "## orders") > strings.Index(out, "## users") {
		t.Error("tables should be rendered in sorted order")
	}
}

func TestSplitTypeAndLength(t *testing.T) {
	tests := []struct {
		fullType   string
		wantType   string
		wantLength string
	}{
		{"VARCHAR(50)", "VARCHAR", "50"},
		{"varchar(50)", "VARCHAR", "50"},
		{"DECIMAL(10,2)", "DECIMAL", "10,2"},
		{"INT", "INT", "-"},
		{"CHAR(2)", "VARCHAR", "2"},
		{"INTEGER", "INT", "-"},
		{"NUMERIC(8,2)", "DECIMAL", "8,2"},
		{"LONGTEXT", "TEXT", "-"},
		{"TIMESTAMP", "DATETIME", "-"},
		{"", "UNKNOWN", "-"},
	}

	for _, tt := range tests {
		t.Run(tt.fullType, func(t *testing.T) {
			gotType, gotLength := splitTypeAndLength(tt.fullType)
			if gotType != tt.wantType || gotLength != tt.wantLength {
				t.Errorf("splitTypeAndLength(%q) = (%q, %q), want (%q, %q)",
					tt.fullType, gotType, gotLength, tt.wantType, tt.wantLength)
			}
		})
	}
}
