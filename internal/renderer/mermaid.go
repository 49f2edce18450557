package renderer

import (
	"fmt"
	"sort"
	"strings"

	"sql-to-er/internal/ermodel"
)

// MermaidRenderer Mermaid ER 图渲染器
type MermaidRenderer struct{}

// NewMermaidRenderer 创建渲染器
func NewMermaidRenderer() *MermaidRenderer {
	return &MermaidRenderer{}
}

// Render 渲染为 Mermaid erDiagram 格式
func (m *MermaidRenderer) Render(entities map[string]*ermodel.Entity, relationships []*ermodel.Relationship) string {
	var sb strings.Builder

	sb.WriteString("erDiagram\n")

	names := make([]string, 0, len(entities))
	for name := range entities {
		names = append(names, name)
	}
	sort.Strings(names)

	// 输出表定义
	for _, name := range names {
		entity := entities[name]
		sb.WriteString(fmt.Sprintf("    %s {\n", entity.Name))
		for _, attr := range entity.Attributes {
			keys := ""
			if attr.IsPK {
				keys += " PK"
			}
			if attr.IsFK {
				keys += " FK"
			}
			comment := ""
			if attr.GetDisplayName() != attr.Name {
				comment = fmt.Sprintf(" %q", attr.GetDisplayName())
			}
			// Mermaid 的类型字段不接受括号，只保留类型名
			sb.WriteString(fmt.Sprintf("        %s %s%s%s\n", baseTypeName(attr.DataType), attr.Name, keys, comment))
		}
		sb.WriteString("    }\n")
	}

	sb.WriteString("\n")

	// 渲染关系，外键所在表是“多”方
	for _, rel := range relationships {
		var connector string
		switch rel.RelType {
		case ermodel.RelOneToOne:
			connector = "||--||"
		case ermodel.RelManyToMany:
			connector = "}o--o{"
		default:
			connector = "||--o{"
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s : %q\n",
			rel.ToEntity, connector, rel.FromEntity, rel.GetDisplayName()))
	}

	return sb.String()
}

// baseTypeName 去掉类型后面的长度部分，VARCHAR(50) -> VARCHAR
func baseTypeName(dataType string) string {
	if dataType == "" {
		return "UNKNOWN"
	}
	if i := strings.Index(dataType, "("); i > 0 {
		return dataType[:i]
	}
	return dataType
}
