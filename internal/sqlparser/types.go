package sqlparser

// Column 列定义
type Column struct {
	Name          string `json:"name"`
	Type          string `json:"type"`
	PK            bool   `json:"pk"`
	Nullable      bool   `json:"nullable"`
	Default       string `json:"default,omitempty"`
	Comment       string `json:"comment,omitempty"`
	AutoIncrement bool   `json:"auto_increment,omitempty"`
	// Unique 预留字段：UNIQUE 约束行目前只识别不回填
	Unique bool `json:"unique,omitempty"`
}

// FKRef 外键引用目标
type FKRef struct {
	Table  string `json:"table"`
	Column string `json:"column"`
}

// ForeignKey 外键定义
type ForeignKey struct {
	Column  string `json:"column"`
	Ref     FKRef  `json:"ref"`
	Comment string `json:"comment,omitempty"`
}

// TableMeta 表元数据，列顺序保持声明顺序
type TableMeta struct {
	Columns     []Column     `json:"columns"`
	PrimaryKeys []string     `json:"primary_keys"`
	ForeignKeys []ForeignKey `json:"foreign_keys"`
	Comment     string       `json:"comment,omitempty"`
}

// HasPrimaryKey 判断列名是否在主键列表中
func (t *TableMeta) HasPrimaryKey(column string) bool {
	for _, pk := range t.PrimaryKeys {
		if pk == column {
			return true
		}
	}
	return false
}
