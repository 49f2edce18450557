package sqlparser

import (
	"fmt"
	"regexp"
	"runtime/debug"
	"strings"
)

// ErrNoTables 没有找到任何 CREATE TABLE 时返回的提示，属于正常结果而非异常
const ErrNoTables = "No CREATE TABLE statements found in the SQL."

var (
	reCreateHeader   = regexp.MustCompile("(?i)CREATE\\s+TABLE\\s+(?:IF\\s+NOT\\s+EXISTS\\s+)?[`\"]?(\\w+)[`\"]?\\s*\\(")
	reTableComment   = regexp.MustCompile(`(?i)COMMENT\s*=?\s*['"]([^'"]*)['"]\s*(?:;|$)`)
	rePKClause       = regexp.MustCompile("(?i)^\\s*(?:CONSTRAINT\\s+[`\"]?\\w+[`\"]?\\s+)?PRIMARY\\s+KEY")
	rePKColumns      = regexp.MustCompile(`(?i)PRIMARY\s+KEY\s*\(([^)]+)\)`)
	reFKClause       = regexp.MustCompile("(?i)^\\s*(?:CONSTRAINT\\s+[`\"]?\\w+[`\"]?\\s+)?FOREIGN\\s+KEY")
	reFKDef          = regexp.MustCompile("(?i)FOREIGN\\s+KEY\\s*\\(([^)]+)\\)\\s*REFERENCES\\s+[`\"]?(\\w+)[`\"]?\\s*\\(([^)]+)\\)")
	reUniqueClause   = regexp.MustCompile("(?i)^\\s*(?:CONSTRAINT\\s+[`\"]?\\w+[`\"]?\\s+)?UNIQUE(?:\\s+KEY)?")
	reIndexClause    = regexp.MustCompile(`(?i)^\s*(?:KEY|INDEX)\s+`)
	reColumnDef      = regexp.MustCompile("(?i)^[`\"]?(\\w+)[`\"]?\\s+(\\w+(?:\\([^)]+\\))?)")
	reDefaultValue   = regexp.MustCompile(`(?i)DEFAULT\s+([^\s,]+)`)
	reCommentText    = regexp.MustCompile(`(?i)COMMENT\s+['"]([^'"]*)['"]`)
	reConstraintName = regexp.MustCompile("(?i)CONSTRAINT\\s+[`\"]?(\\w+)[`\"]?")
	reAlterTable     = regexp.MustCompile("(?is)ALTER\\s+TABLE\\s+[`\"]?(\\w+)[`\"]?\\s+(.*?)(?:;|$)")

	reAlterFKDefs = []*regexp.Regexp{
		regexp.MustCompile("(?i)ADD\\s+CONSTRAINT\\s+[`\"]?\\w+[`\"]?\\s+FOREIGN\\s+KEY\\s*\\(([^)]+)\\)\\s*REFERENCES\\s+[`\"]?(\\w+)[`\"]?\\s*\\(([^)]+)\\)"),
		regexp.MustCompile("(?i)ADD\\s+FOREIGN\\s+KEY\\s*\\(([^)]+)\\)\\s*REFERENCES\\s+[`\"]?(\\w+)[`\"]?\\s*\\(([^)]+)\\)"),
	}
)

// Parse 解析 SQL 文本，提取 CREATE TABLE 与 ALTER TABLE ... ADD FOREIGN KEY 的结构信息。
// 错误一律以字符串返回，任何内部 panic 都在这里兜住，不会穿出公共边界。
func Parse(sql string) (tables map[string]*TableMeta, errMsg string) {
	defer func() {
		if r := recover(); r != nil {
			tables = map[string]*TableMeta{}
			errMsg = fmt.Sprintf("解析错误: %v (%T)\n%s", r, r, debug.Stack())
		}
	}()

	sql = preprocess(sql)
	tables = make(map[string]*TableMeta)

	// 第一遍：扫描所有 CREATE TABLE
	upper := strings.ToUpper(sql)
	pos := 0
	for pos < len(sql) {
		createPos := indexFrom(upper, "CREATE TABLE", pos)
		if createPos < 0 {
			// 容忍双空格写法
			createPos = indexFrom(upper, "CREATE  TABLE", pos)
		}
		if createPos < 0 {
			break
		}

		loc := reCreateHeader.FindStringSubmatchIndex(sql[createPos:])
		if loc == nil {
			pos = createPos + 1
			continue
		}
		tableName := sql[createPos+loc[2] : createPos+loc[3]]
		startParen := createPos + loc[1] - 1

		end, ok := scanBalancedParens(sql, startParen)
		if ok {
			body := sql[startParen+1 : end-1]

			// 完整语句含表体之后的尾部子句（COMMENT=、ENGINE= 等），只用于提取表注释
			tail := sql[end:]
			if semi := strings.Index(tail, ";"); semi >= 0 {
				tail = tail[:semi+1]
			} else {
				tail = ""
			}
			tableComment := ""
			if m := reTableComment.FindStringSubmatch(tail); m != nil {
				tableComment = m[1]
			}

			meta := &TableMeta{Comment: tableComment}
			parseTableBody(meta, body)
			tables[tableName] = meta
		}
		// 表体残缺时不产出该表，跳过表名长度继续找下一个 CREATE TABLE
		pos = createPos + len(tableName) + 10
	}

	// 第二遍：扫描 ALTER TABLE 补充外键，目标表不存在时静默忽略
	for _, loc := range reAlterTable.FindAllStringSubmatchIndex(sql, -1) {
		tableName := sql[loc[2]:loc[3]]
		alterContent := sql[loc[4]:loc[5]]

		meta, exists := tables[tableName]
		if !exists {
			continue
		}
		for _, re := range reAlterFKDefs {
			for _, fkLoc := range re.FindAllStringSubmatchIndex(alterContent, -1) {
				meta.ForeignKeys = append(meta.ForeignKeys, extractForeignKeys(alterContent, fkLoc)...)
			}
		}
	}

	if len(tables) == 0 {
		return map[string]*TableMeta{}, ErrNoTables
	}
	return tables, ""
}

// indexFrom 从 from 位置起查找子串，返回在原串中的下标
func indexFrom(s, substr string, from int) int {
	if from >= len(s) {
		return -1
	}
	idx := strings.Index(s[from:], substr)
	if idx < 0 {
		return -1
	}
	return from + idx
}

// parseTableBody 解析表体：拆子句、按优先级分类、最后做主键回标
func parseTableBody(meta *TableMeta, body string) {
	for _, part := range smartSplit(body) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		switch {
		case rePKClause.MatchString(part):
			if m := rePKColumns.FindStringSubmatch(part); m != nil {
				meta.PrimaryKeys = append(meta.PrimaryKeys, splitColumnList(m[1])...)
			}
		case reFKClause.MatchString(part):
			if loc := reFKDef.FindStringSubmatchIndex(part); loc != nil {
				meta.ForeignKeys = append(meta.ForeignKeys, extractForeignKeys(part, loc)...)
			}
		case reUniqueClause.MatchString(part):
			// UNIQUE 约束只识别不入列，列上的 unique 标记暂不回填
		case reIndexClause.MatchString(part):
			// 普通索引声明，跳过
		default:
			if m := reColumnDef.FindStringSubmatch(part); m != nil {
				col := extractColumn(part, m[1], strings.ToUpper(m[2]))
				meta.Columns = append(meta.Columns, col)
				if col.PK {
					meta.PrimaryKeys = append(meta.PrimaryKeys, col.Name)
				}
			}
		}
	}

	// 回标：列在单独的 PRIMARY KEY (...) 约束里声明时补上 pk 标记
	for i := range meta.Columns {
		if meta.HasPrimaryKey(meta.Columns[i].Name) {
			meta.Columns[i].PK = true
		}
	}
	meta.PrimaryKeys = dedup(meta.PrimaryKeys)
}

// extractColumn 从列定义子句提取列属性
func extractColumn(part, name, colType string) Column {
	upperPart := strings.ToUpper(part)

	comment := ""
	if m := reCommentText.FindStringSubmatch(part); m != nil {
		comment = m[1]
	}

	return Column{
		Name:          name,
		Type:          colType,
		PK:            strings.Contains(upperPart, "PRIMARY KEY"),
		Nullable:      !strings.Contains(upperPart, "NOT NULL"),
		Default:       extractDefault(part),
		Comment:       comment,
		AutoIncrement: strings.Contains(upperPart, "AUTO_INCREMENT"),
	}
}

// extractDefault 提取默认值，NULL 字面量视为无默认值
func extractDefault(part string) string {
	m := reDefaultValue.FindStringSubmatch(part)
	if m == nil {
		return ""
	}
	value := strings.Trim(m[1], `'"`)
	if strings.EqualFold(value, "NULL") {
		return ""
	}
	return value
}

// extractForeignKeys 从 FOREIGN KEY ... REFERENCES ... 的匹配位置提取外键。
// loc 是 content 上的子匹配下标；本地列与引用列按位置配对，
// 引用列不够时回退为本地列名。约束名作为注释，后续 COMMENT 文本可覆盖。
func extractForeignKeys(content string, loc []int) []ForeignKey {
	localCols := splitColumnList(content[loc[2]:loc[3]])
	refTable := content[loc[4]:loc[5]]
	refCols := splitColumnList(content[loc[6]:loc[7]])

	comment := ""
	if m := reConstraintName.FindStringSubmatch(content[:loc[0]]); m != nil {
		comment = m[1]
	}
	if m := reCommentText.FindStringSubmatch(content[loc[0]:]); m != nil {
		comment = m[1]
	}

	fks := make([]ForeignKey, 0, len(localCols))
	for i, localCol := range localCols {
		refCol := localCol
		if i < len(refCols) {
			refCol = refCols[i]
		}
		fks = append(fks, ForeignKey{
			Column:  localCol,
			Ref:     FKRef{Table: refTable, Column: refCol},
			Comment: comment,
		})
	}
	return fks
}

// splitColumnList 拆列名列表并去掉反引号/双引号
func splitColumnList(list string) []string {
	raw := strings.Split(list, ",")
	cols := make([]string, 0, len(raw))
	for _, c := range raw {
		cols = append(cols, strings.Trim(strings.TrimSpace(c), "`\""))
	}
	return cols
}

// dedup 去重并保持首次出现的顺序
func dedup(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}
