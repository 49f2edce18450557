package analyzer

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"

	"sql-to-er/internal/ermodel"
	"sql-to-er/internal/sqlparser"
)

// Inferer 关系推断器。
// DDL 里没有声明外键的表很常见，这里按命名相似度和类型兼容性
// 猜测隐含的外键关系，结果带置信度，由调用方决定是否采纳。
type Inferer struct {
	threshold float64
}

// NewInferer 创建推断器，默认置信度阈值 0.5
func NewInferer() *Inferer {
	return &Inferer{threshold: 0.5}
}

// Candidate 推断出的候选关系
type Candidate struct {
	Relationship *ermodel.Relationship `json:"relationship"`
	Confidence   float64               `json:"confidence"`
	Evidence     []Evidence            `json:"evidence"`
}

// Evidence 证据
type Evidence struct {
	Type    string  `json:"type"`
	Score   float64 `json:"score"`
	Details string  `json:"details"`
}

// InferRelations 推断表间的隐含关系。
// 只考察没有被声明外键覆盖的非主键列，与其他表的主键列两两比对。
func (inf *Inferer) InferRelations(tables map[string]*sqlparser.TableMeta) []Candidate {
	var candidates []Candidate

	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	// 已声明的外键列不再推断
	declared := make(map[string]bool)
	for name, table := range tables {
		for _, fk := range table.ForeignKeys {
			declared[name+"."+fk.Column] = true
		}
	}

	for _, fromName := range names {
		fromTable := tables[fromName]
		for _, fromCol := range fromTable.Columns {
			if fromCol.PK || declared[fromName+"."+fromCol.Name] {
				continue
			}

			for _, toName := range names {
				if toName == fromName {
					continue
				}
				for _, toCol := range tables[toName].Columns {
					if !toCol.PK {
						continue
					}
					if c := inf.score(fromName, fromCol, toName, toCol); c != nil {
						candidates = append(candidates, *c)
					}
				}
			}
		}
	}

	return candidates
}

// score 计算单个 (列, 目标主键) 对的置信度
func (inf *Inferer) score(fromTable string, fromCol sqlparser.Column, toTable string, toCol sqlparser.Column) *Candidate {
	var evidences []Evidence
	totalScore := 0.0

	// 1. 命名相似度 (权重 0.6)
	nameScore := calculateNameSimilarity(fromCol.Name, toTable, toCol.Name)
	if nameScore > 0.3 {
		evidences = append(evidences, Evidence{
			Type:    "naming_similarity",
			Score:   nameScore,
			Details: fmt.Sprintf("%s ↔ %s.%s (%.2f)", fromCol.Name, toTable, toCol.Name, nameScore),
		})
		totalScore += nameScore * 0.6
	}

	// 2. 类型匹配 (权重 0.4)
	typeScore := calculateTypeMatch(fromCol.Type, toCol.Type)
	if typeScore > 0 {
		evidences = append(evidences, Evidence{
			Type:    "type_match",
			Score:   typeScore,
			Details: fmt.Sprintf("%s ↔ %s", fromCol.Type, toCol.Type),
		})
		totalScore += typeScore * 0.4
	}

	if len(evidences) == 0 || totalScore < inf.threshold {
		return nil
	}

	return &Candidate{
		Relationship: &ermodel.Relationship{
			FromEntity:    fromTable,
			ToEntity:      toTable,
			FromAttribute: fromCol.Name,
			ToAttribute:   toCol.Name,
			Name:          fromTable + "_to_" + toTable,
			RelType:       ermodel.RelOneToMany,
		},
		Confidence: totalScore,
		Evidence:   evidences,
	}
}

// calculateNameSimilarity 计算列名与目标表主键的命名相似度。
// user_id 引用 users.id 这类惯例靠「表名_主键名」的候选形式覆盖。
func calculateNameSimilarity(colName, refTable, refCol string) float64 {
	n1 := strings.ToLower(colName)

	targets := []string{
		strings.ToLower(refCol),
		strings.ToLower(refTable + "_" + refCol),
		strings.ToLower(strings.TrimSuffix(refTable, "s") + "_" + refCol),
	}

	best := 0.0
	for _, n2 := range targets {
		score := similarity(n1, n2)
		if score > best {
			best = score
		}
	}
	return best
}

func similarity(n1, n2 string) float64 {
	// 完全匹配
	if n1 == n2 {
		return 1.0
	}

	// 包含关系
	if strings.Contains(n1, n2) || strings.Contains(n2, n1) {
		return 0.8
	}

	// Levenshtein 距离
	maxLen := math.Max(float64(len(n1)), float64(len(n2)))
	if maxLen == 0 {
		return 0
	}

	distance := levenshtein.DistanceForStrings([]rune(n1), []rune(n2), levenshtein.DefaultOptions)
	sim := 1.0 - float64(distance)/maxLen

	if sim > 0.7 {
		return sim
	}
	return 0
}

// calculateTypeMatch 计算类型匹配度
func calculateTypeMatch(type1, type2 string) float64 {
	if !isTypeCompatible(type1, type2) {
		return 0
	}
	if strings.EqualFold(type1, type2) {
		return 1.0
	}
	return 0.6 // 类型兼容但长度或同义类型不一致
}

// isTypeCompatible 判断类型是否兼容，按基础类型分组
func isTypeCompatible(type1, type2 string) bool {
	t1 := baseType(type1)
	t2 := baseType(type2)

	if t1 == t2 {
		return true
	}

	// 字符串类型组
	stringTypes := map[string]bool{
		"varchar": true, "nvarchar": true, "char": true, "nchar": true, "text": true,
	}
	if stringTypes[t1] && stringTypes[t2] {
		return true
	}

	// 整数类型组
	intTypes := map[string]bool{
		"int": true, "bigint": true, "smallint": true, "tinyint": true, "integer": true,
	}
	if intTypes[t1] && intTypes[t2] {
		return true
	}

	return false
}

// baseType 提取小写基础类型名，VARCHAR(50) -> varchar
func baseType(dataType string) string {
	t := strings.ToLower(strings.TrimSpace(dataType))
	if i := strings.Index(t, "("); i > 0 {
		t = t[:i]
	}
	return t
}
