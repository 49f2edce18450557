package ermodel

import "encoding/json"

// 关系基数
const (
	RelOneToOne   = "1:1"
	RelOneToMany  = "1:N"
	RelManyToMany = "M:N"
)

// Entity 实体（对应一张表）
type Entity struct {
	Name       string       `json:"name"`
	Comment    string       `json:"comment,omitempty"`
	Attributes []*Attribute `json:"attributes"`
}

// GetDisplayName 有注释用注释，否则用表名。
// 翻译层会在构建之后原地覆写 Comment，所以这里每次取值都重新判断。
func (e *Entity) GetDisplayName() string {
	if e.Comment != "" {
		return e.Comment
	}
	return e.Name
}

// AddAttribute 追加属性，保持列声明顺序
func (e *Entity) AddAttribute(attr *Attribute) {
	e.Attributes = append(e.Attributes, attr)
}

// Attribute 属性（对应一列），IsFK 是构建时派生的标记
type Attribute struct {
	Name        string `json:"name"`
	DataType    string `json:"type"`
	IsPK        bool   `json:"isPK"`
	IsFK        bool   `json:"isFK"`
	Comment     string `json:"comment,omitempty"`
	DisplayName string `json:"displayName"`
	Nullable    bool   `json:"nullable"`
	Default     string `json:"default,omitempty"`
}

// GetDisplayName 返回展示名，翻译层可能已覆写 DisplayName
func (a *Attribute) GetDisplayName() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Name
}

// Relationship 关系边，每个外键对应一条
type Relationship struct {
	FromEntity    string `json:"from_entity"`
	ToEntity      string `json:"to_entity"`
	FromAttribute string `json:"from_attribute"`
	ToAttribute   string `json:"to_attribute"`
	Name          string `json:"name"`
	RelType       string `json:"rel_type"`
	Comment       string `json:"comment,omitempty"`
}

// GetDisplayName 有注释用注释，否则用生成的关系名
func (r *Relationship) GetDisplayName() string {
	if r.Comment != "" {
		return r.Comment
	}
	return r.Name
}

// Model 实体和关系的组合，方便整体序列化给前端
type Model struct {
	Entities      map[string]*Entity `json:"entities"`
	Relationships []*Relationship    `json:"relationships"`
}

// ToJSON 导出为 JSON
func (m *Model) ToJSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}
