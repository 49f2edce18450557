package renderer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"sql-to-er/internal/sqlparser"
)

// MarkdownRenderer Markdown 数据字典渲染器。
// 直接消费解析器的原始表元数据，不走实体图。
type MarkdownRenderer struct{}

// NewMarkdownRenderer 创建渲染器
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

var reTypeLength = regexp.MustCompile(`^(\w+)(?:\(([^)]+)\))?`)

// Render 渲染为 Markdown 数据字典
func (m *MarkdownRenderer) Render(tables map[string]*sqlparser.TableMeta) string {
	var sb strings.Builder

	sb.WriteString("# 数据库结构文档\n\n")

	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		table := tables[name]

		if table.Comment != "" {
			sb.WriteString(fmt.Sprintf("## %s（%s）\n\n", name, table.Comment))
		} else {
			sb.WriteString(fmt.Sprintf("## %s\n\n", name))
		}

		sb.WriteString("| 列名 | 类型 | 长度 | 可空 | 主键 | 默认值 | 注释 |\n")
		sb.WriteString("|------|------|------|------|------|--------|------|\n")

		for _, col := range table.Columns {
			dataType, length := splitTypeAndLength(col.Type)
			nullable := "否"
			if col.Nullable {
				nullable = "是"
			}
			pk := ""
			if col.PK {
				pk = "✓"
			}
			def := col.Default
			if def == "" {
				def = "-"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s |\n",
				col.Name, dataType, length, nullable, pk, def, col.Comment))
		}
		sb.WriteString("\n")

		if len(table.ForeignKeys) > 0 {
			sb.WriteString("### 外键\n\n")
			for _, fk := range table.ForeignKeys {
				sb.WriteString(fmt.Sprintf("- `%s.%s` → `%s.%s`", name, fk.Column, fk.Ref.Table, fk.Ref.Column))
				if fk.Comment != "" {
					sb.WriteString(fmt.Sprintf("（%s）", fk.Comment))
				}
				sb.WriteString("\n")
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// splitTypeAndLength 把 VARCHAR(50) 拆成类型和长度，同义类型归一化。
// INT -> (INT, -)，DECIMAL(10,2) -> (DECIMAL, 10,2)
func splitTypeAndLength(fullType string) (string, string) {
	if fullType == "" {
		return "UNKNOWN", "-"
	}

	m := reTypeLength.FindStringSubmatch(strings.ToUpper(fullType))
	if m == nil {
		return strings.ToUpper(fullType), "-"
	}

	dataType := m[1]
	length := m[2]
	if length == "" {
		length = "-"
	}

	switch dataType {
	case "CHAR":
		dataType = "VARCHAR"
	case "INTEGER":
		dataType = "INT"
	case "NUMERIC":
		dataType = "DECIMAL"
	case "LONGTEXT":
		dataType = "TEXT"
	case "TIMESTAMP":
		dataType = "DATETIME"
	}

	return dataType, length
}
