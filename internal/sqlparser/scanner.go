package sqlparser

import "strings"

// quoteState 引号状态
type quoteState int

const (
	quoteNone quoteState = iota
	quoteSingle
	quoteDouble
)

// scanner 按字符扫描 SQL 文本，维护括号深度和引号状态。
// 正则无法匹配嵌套括号，必须手动扫描。
type scanner struct {
	src   string
	depth int
	state quoteState
}

// step 处理位置 i 处的字符的引号状态切换，反斜杠转义的引号不切换
func (s *scanner) step(i int) {
	ch := s.src[i]
	if ch != '\'' && ch != '"' {
		return
	}
	if i > 0 && s.src[i-1] == '\\' {
		return
	}
	switch s.state {
	case quoteNone:
		if ch == '\'' {
			s.state = quoteSingle
		} else {
			s.state = quoteDouble
		}
	case quoteSingle:
		if ch == '\'' {
			s.state = quoteNone
		}
	case quoteDouble:
		if ch == '"' {
			s.state = quoteNone
		}
	}
}

// inQuote 当前是否处于字符串内
func (s *scanner) inQuote() bool {
	return s.state != quoteNone
}

// scanBalancedParens 从 start 处的 '(' 开始扫描，返回匹配的右括号之后的位置。
// 引号内的括号不参与计数。深度未归零说明语句残缺，ok 返回 false。
func scanBalancedParens(src string, start int) (end int, ok bool) {
	s := &scanner{src: src, depth: 1}
	i := start + 1
	for i < len(src) && s.depth > 0 {
		s.step(i)
		if !s.inQuote() {
			switch src[i] {
			case '(':
				s.depth++
			case ')':
				s.depth--
			}
		}
		i++
	}
	return i, s.depth == 0
}

// smartSplit 把表体按顶层逗号拆成列/约束子句。
// DECIMAL(10,2) 或内联 FOREIGN KEY (a,b) 的内部逗号不会导致误拆，
// 引号内的逗号同样保持原样。
func smartSplit(content string) []string {
	var parts []string
	var current strings.Builder
	s := &scanner{src: content}

	for i := 0; i < len(content); i++ {
		s.step(i)
		if !s.inQuote() {
			switch content[i] {
			case '(':
				s.depth++
			case ')':
				s.depth--
			case ',':
				if s.depth == 0 {
					parts = append(parts, strings.TrimSpace(current.String()))
					current.Reset()
					continue
				}
			}
		}
		current.WriteByte(content[i])
	}

	if last := strings.TrimSpace(current.String()); last != "" {
		parts = append(parts, last)
	}
	return parts
}
