package renderer

import (
	"fmt"
	"sort"
	"strings"

	"sql-to-er/internal/ermodel"
)

// DotRenderer Graphviz DOT 渲染器。
// 只生成图形描述文本，出图交给外部的 dot 命令，服务进程不依赖 graphviz。
type DotRenderer struct {
	name string
}

// NewDotRenderer 创建渲染器，name 作为 digraph 名称
func NewDotRenderer(name string) *DotRenderer {
	if name == "" {
		name = "ER_Diagram"
	}
	return &DotRenderer{name: name}
}

// Render 渲染实体-属性-关系三类节点：
// 实体是矩形，属性是椭圆（主键高亮），关系是菱形。
func (d *DotRenderer) Render(entities map[string]*ermodel.Entity, relationships []*ermodel.Relationship) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("digraph %s {\n", d.name))
	sb.WriteString("    rankdir=TB;\n")
	sb.WriteString("    node [fontname=\"Arial\", fontsize=10];\n")
	sb.WriteString("    edge [arrowsize=0.7, penwidth=1.2];\n\n")

	names := make([]string, 0, len(entities))
	for name := range entities {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		entity := entities[name]

		// 每个实体一个不可见 cluster，把它和属性聚在一起
		sb.WriteString(fmt.Sprintf("    subgraph cluster_%s {\n", entity.Name))
		sb.WriteString("        label=\"\"; style=invis;\n")
		sb.WriteString(fmt.Sprintf("        \"%s\" [shape=box, style=filled, fillcolor=lightblue, label=\"%s\"];\n",
			entity.Name, escapeDot(entity.GetDisplayName())))

		for _, attr := range entity.Attributes {
			attrID := entity.Name + "_" + attr.Name
			if attr.IsPK {
				sb.WriteString(fmt.Sprintf("        \"%s\" [shape=ellipse, style=filled, fillcolor=lightyellow, fontcolor=red, penwidth=2, label=\"%s\\n[PK]\"];\n",
					attrID, escapeDot(attr.GetDisplayName())))
			} else {
				sb.WriteString(fmt.Sprintf("        \"%s\" [shape=ellipse, style=filled, fillcolor=white, label=\"%s\"];\n",
					attrID, escapeDot(attr.GetDisplayName())))
			}
			sb.WriteString(fmt.Sprintf("        \"%s\" -> \"%s\" [dir=none];\n", entity.Name, attrID))
		}
		sb.WriteString("    }\n\n")
	}

	for i, rel := range relationships {
		relNode := fmt.Sprintf("rel_%d", i)
		sb.WriteString(fmt.Sprintf("    \"%s\" [shape=diamond, style=filled, fillcolor=lightgreen, fontsize=9, width=0.8, height=0.6, label=\"%s\"];\n",
			relNode, escapeDot(rel.GetDisplayName())))
		sb.WriteString(fmt.Sprintf("    \"%s\" -> \"%s\" [dir=none, label=\"%s\"];\n",
			rel.FromEntity, relNode, escapeDot(rel.FromAttribute)))
		sb.WriteString(fmt.Sprintf("    \"%s\" -> \"%s\" [dir=none, label=\"→%s\"];\n",
			relNode, rel.ToEntity, escapeDot(rel.ToAttribute)))
	}

	sb.WriteString("}\n")
	return sb.String()
}

func escapeDot(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
