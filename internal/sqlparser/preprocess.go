package sqlparser

import (
	"regexp"
	"strings"
)

var (
	reLineComment    = regexp.MustCompile(`--.*`)
	reCreateDatabase = regexp.MustCompile(`(?i)CREATE\s+DATABASE[^;]*;`)
	reUseStatement   = regexp.MustCompile(`(?i)USE\s+[^;]*;`)
)

// preprocess 解析前的文本清理，顺序不能变：
// 先归一化引号，再删注释，最后剔除 CREATE DATABASE / USE 语句。
func preprocess(sql string) string {
	sql = normalizeQuotes(sql)
	sql = stripLineComments(sql)
	sql = stripBlockComments(sql)
	sql = reCreateDatabase.ReplaceAllString(sql, "")
	sql = reUseStatement.ReplaceAllString(sql, "")
	return sql
}

// normalizeQuotes 把中文/弯引号替换为 ASCII 引号
func normalizeQuotes(sql string) string {
	replacer := strings.NewReplacer(
		"‘", "'", // ‘
		"’", "'", // ’
		"“", `"`, // “
		"”", `"`, // ”
	)
	return replacer.Replace(sql)
}

// stripLineComments 删除 -- 行注释。
// 含 COMMENT 关键字的行整行保留，避免把列注释删掉；
// 代价是这种行上的 -- 注释也会留下来，属于已接受的取舍。
func stripLineComments(sql string) string {
	lines := strings.Split(sql, "\n")
	for i, line := range lines {
		if strings.Contains(strings.ToUpper(line), "COMMENT") {
			continue
		}
		lines[i] = reLineComment.ReplaceAllString(line, "")
	}
	return strings.Join(lines, "\n")
}

// stripBlockComments 删除 /* ... */ 块注释，非贪婪匹配。
// 与行注释同样的保留启发式：/* 之后的剩余文本里出现 COMMENT 时不删。
// Go 正则不支持负向先行断言，这里手动扫描等价实现。
func stripBlockComments(sql string) string {
	var b strings.Builder
	for {
		i := strings.Index(sql, "/*")
		if i < 0 {
			b.WriteString(sql)
			break
		}
		if strings.Contains(sql[i+2:], "COMMENT") {
			b.WriteString(sql[:i+2])
			sql = sql[i+2:]
			continue
		}
		j := strings.Index(sql[i+2:], "*/")
		if j < 0 {
			b.WriteString(sql)
			break
		}
		b.WriteString(sql[:i])
		sql = sql[i+2+j+2:]
	}
	return b.String()
}
