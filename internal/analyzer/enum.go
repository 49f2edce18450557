package analyzer

import (
	"sort"
	"strings"

	"sql-to-er/internal/sqlparser"
)

// EnumDetector 枚举/码表检测器。
// 没有在线库可查行数，只凭结构特征判断：列少、有 code/name 型的列组合、
// 被其他表外键引用会加分。
type EnumDetector struct{}

// NewEnumDetector 创建检测器
func NewEnumDetector() *EnumDetector {
	return &EnumDetector{}
}

// EnumTable 枚举表
type EnumTable struct {
	Name         string   `json:"name"`
	KeyColumn    string   `json:"key_column"`
	ValueColumn  string   `json:"value_column"`
	Confidence   float64  `json:"confidence"`
	ReferencedBy []string `json:"referenced_by,omitempty"` // 被哪些表引用
}

// DetectEnumTables 检测枚举表
func (e *EnumDetector) DetectEnumTables(tables map[string]*sqlparser.TableMeta) []EnumTable {
	// 先算出每张表被哪些表的外键引用
	referencedBy := make(map[string][]string)
	for name, table := range tables {
		for _, fk := range table.ForeignKeys {
			referencedBy[fk.Ref.Table] = append(referencedBy[fk.Ref.Table], name)
		}
	}

	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	var enumTables []EnumTable
	for _, name := range names {
		table := tables[name]

		// 枚举表特征：列数少
		if len(table.Columns) > 5 {
			continue
		}

		keyCol, valueCol := findEnumColumns(table.Columns)
		if keyCol == "" {
			continue
		}

		confidence := calculateEnumConfidence(table, keyCol, valueCol, referencedBy[name])
		if confidence > 0.6 {
			refs := referencedBy[name]
			sort.Strings(refs)
			enumTables = append(enumTables, EnumTable{
				Name:         name,
				KeyColumn:    keyCol,
				ValueColumn:  valueCol,
				Confidence:   confidence,
				ReferencedBy: refs,
			})
		}
	}

	return enumTables
}

// findEnumColumns 查找枚举列
func findEnumColumns(columns []sqlparser.Column) (keyCol, valueCol string) {
	keyPatterns := []string{"code", "id", "key", "type"}
	valuePatterns := []string{"name", "label", "desc", "description", "value"}

	for _, col := range columns {
		colLower := strings.ToLower(col.Name)

		// 查找 key 列
		if keyCol == "" {
			for _, pattern := range keyPatterns {
				if strings.Contains(colLower, pattern) {
					keyCol = col.Name
					break
				}
			}
		}

		// 查找 value 列
		if valueCol == "" {
			for _, pattern := range valuePatterns {
				if strings.Contains(colLower, pattern) {
					valueCol = col.Name
					break
				}
			}
		}
	}

	return
}

// calculateEnumConfidence 计算枚举表置信度
func calculateEnumConfidence(table *sqlparser.TableMeta, keyCol, valueCol string, refs []string) float64 {
	score := 0.0

	// 有 key 和 value 列加分
	if keyCol != "" && valueCol != "" {
		score += 0.4
	} else if keyCol != "" {
		score += 0.2
	}

	// 列数少加分（典型枚举表列数 2-3）
	if len(table.Columns) <= 3 {
		score += 0.2
	} else {
		score += 0.1
	}

	// key 列是主键加分
	if table.HasPrimaryKey(keyCol) {
		score += 0.1
	}

	// 被其他表引用加分
	if len(refs) > 0 {
		score += 0.2
	}

	return score
}
