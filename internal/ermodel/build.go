package ermodel

import (
	"sort"

	"sql-to-er/internal/sqlparser"
)

// Build 把解析出的表元数据转换为实体/关系图。
// 纯函数：不做 I/O，不持有跨调用状态，返回值归调用方独占，
// 翻译层可以放心原地改写。表按名字排序遍历，保证输出确定。
func Build(tables map[string]*sqlparser.TableMeta) (map[string]*Entity, []*Relationship) {
	entities := make(map[string]*Entity, len(tables))
	var relationships []*Relationship

	names := sortedTableNames(tables)

	for _, tableName := range names {
		table := tables[tableName]
		entity := &Entity{Name: tableName, Comment: table.Comment}

		fkColumns := make(map[string]bool, len(table.ForeignKeys))
		for _, fk := range table.ForeignKeys {
			fkColumns[fk.Column] = true
		}

		// 所有列都进属性列表，外键列不隐藏，用 IsFK 标出来让渲染层区分样式
		for _, col := range table.Columns {
			displayName := col.Comment
			if displayName == "" {
				displayName = col.Name
			}
			entity.AddAttribute(&Attribute{
				Name:        col.Name,
				DataType:    col.Type,
				IsPK:        col.PK,
				IsFK:        fkColumns[col.Name],
				Comment:     col.Comment,
				DisplayName: displayName,
				Nullable:    col.Nullable,
				Default:     col.Default,
			})
		}
		entities[tableName] = entity
	}

	for _, tableName := range names {
		table := tables[tableName]
		for _, fk := range table.ForeignKeys {
			relationships = append(relationships, buildRelationship(tableName, table, fk))
		}
	}

	return entities, relationships
}

// buildRelationship 为单个外键生成关系边并推断基数
func buildRelationship(tableName string, table *sqlparser.TableMeta, fk sqlparser.ForeignKey) *Relationship {
	relType := RelOneToMany

	// 外键列同时是主键或带唯一标记 → 1:1。
	// 解析器目前不会回填 Unique，这个分支留作前向兼容。
	for _, col := range table.Columns {
		if col.Name == fk.Column && (col.PK || col.Unique) {
			relType = RelOneToOne
			break
		}
	}

	// 中间表判定：外键数 >=2 且复合主键（主键列数 >=2）→ M:N
	if len(table.ForeignKeys) >= 2 {
		pkCount := 0
		for _, col := range table.Columns {
			if col.PK {
				pkCount++
			}
		}
		if pkCount >= 2 {
			relType = RelManyToMany
		}
	}

	toAttribute := fk.Ref.Column
	if toAttribute == "" {
		toAttribute = "id"
	}

	return &Relationship{
		FromEntity:    tableName,
		ToEntity:      fk.Ref.Table,
		FromAttribute: fk.Column,
		ToAttribute:   toAttribute,
		Name:          tableName + "_to_" + fk.Ref.Table,
		RelType:       relType,
		Comment:       fk.Comment,
	}
}

func sortedTableNames(tables map[string]*sqlparser.TableMeta) []string {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
