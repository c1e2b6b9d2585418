package dialect

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"dbmap/errors"
)

// Named SQL 文本中的一个命名参数引用
type Named struct {
	Marker byte   // ':' 或 '@'
	Name   string // 不含标记
	Start  int    // 标记所在的字节偏移
	End    int    // 名称结束后的字节偏移
}

// Token 返回带标记的原始写法，如 ":Title"
func (n Named) Token() string {
	return string(n.Marker) + n.Name
}

// ScanNamed 按出现顺序返回 query 中的命名参数引用（可重复）。
//
// 识别 :name 与 @name，名称以字母或下划线开头；以下内容被跳过：
//   - 单引号、双引号、反引号包围的文本
//   - -- 行注释与 /* */ 块注释
//   - Postgres 的 $tag$...$tag$ 块与 :: 类型转换
//   - SQL Server 的 @@ 系统变量
//
// 未闭合的引号或注释视为延伸到文本末尾。
func ScanNamed(query string) []Named {
	var out []Named
	walk(query, func(i int) int {
		c := query[i]
		if c != ':' && c != '@' {
			return 0
		}
		if i+1 < len(query) && query[i+1] == c {
			// :: 与 @@ 连同其后的标识符一起跳过
			_, end := parseIdent(query, i+2, false)
			return end - i
		}
		name, end := parseIdent(query, i+1, true)
		if name == "" {
			return 0
		}
		out = append(out, Named{Marker: c, Name: name, Start: i, End: end})
		return end - i
	})
	return out
}

// BindNamed 将命名参数改写为方言的位置占位符并按顺序收集参数值。
//
// lookup 按参数名（不含标记）返回值；任一引用找不到值时返回 PARAMETER_MISMATCH，
// 详情 missing_in_command 列出缺失的名称。
// $n 与 @pN 风格下同名参数复用同一序号，其余风格每次引用各占一个位置。
func (d Dialect) BindNamed(query string, lookup func(name string) (any, bool)) (string, []any, error) {
	refs := ScanNamed(query)
	if len(refs) == 0 {
		return query, nil, nil
	}

	reuse := d.Placeholder() == PlaceholderDollar || d.Placeholder() == PlaceholderAtP
	ordinals := make(map[string]int, len(refs))

	var (
		sb      strings.Builder
		args    = make([]any, 0, len(refs))
		missing []string
		last    int
	)
	sb.Grow(len(query))

	for _, ref := range refs {
		sb.WriteString(query[last:ref.Start])
		last = ref.End

		key := strings.ToLower(ref.Name)
		if reuse {
			if n, ok := ordinals[key]; ok {
				sb.WriteString(d.placeholder(n))
				continue
			}
		}

		value, ok := lookup(ref.Name)
		if !ok {
			if _, seen := ordinals[key]; !seen {
				missing = append(missing, ref.Name)
			}
			ordinals[key] = 0
			continue
		}

		args = append(args, value)
		ordinals[key] = len(args)
		sb.WriteString(d.placeholder(len(args)))
	}
	sb.WriteString(query[last:])

	if len(missing) > 0 {
		return "", nil, errors.NewError(errors.ErrCodeParameterMismatch,
			fmt.Sprintf("no value bound for sql parameter(s): %s", strings.Join(missing, ", "))).
			WithContext(errors.DetailMissingInCommand, missing)
	}
	return sb.String(), args, nil
}

// walk 遍历 query 中位于引号、注释之外的每个字节位置。
// visit 返回消费的字节数；返回 0 表示未处理，继续下一个字符。
func walk(query string, visit func(i int) int) {
	i := 0
	for i < len(query) {
		switch c := query[i]; c {
		case '\'', '"', '`':
			i = skipQuoted(query, i+1, c)
			continue
		case '-':
			if strings.HasPrefix(query[i:], "--") {
				i = skipLineComment(query, i+2)
				continue
			}
		case '/':
			if strings.HasPrefix(query[i:], "/*") {
				i = skipBlockComment(query, i+2)
				continue
			}
		case '$':
			if j, ok := skipDollarQuoted(query, i); ok {
				i = j
				continue
			}
		}

		if n := visit(i); n > 0 {
			i += n
			continue
		}
		_, w := utf8.DecodeRuneInString(query[i:])
		i += w
	}
}

// skipQuoted 跳到 closing 之后；连续两个 closing 视为转义
func skipQuoted(s string, i int, closing byte) int {
	for i < len(s) {
		if s[i] == closing {
			if i+1 < len(s) && s[i+1] == closing {
				i += 2
				continue
			}
			return i + 1
		}
		i++
	}
	return len(s)
}

func skipLineComment(s string, i int) int {
	if j := strings.IndexByte(s[i:], '\n'); j >= 0 {
		return i + j + 1
	}
	return len(s)
}

func skipBlockComment(s string, i int) int {
	if j := strings.Index(s[i:], "*/"); j >= 0 {
		return i + j + 2
	}
	return len(s)
}

// skipDollarQuoted 处理 $$...$$ 与 $tag$...$tag$
func skipDollarQuoted(s string, i int) (int, bool) {
	j := i + 1
	for j < len(s) && s[j] != '$' && isTagChar(rune(s[j])) {
		j++
	}
	if j >= len(s) || s[j] != '$' {
		return 0, false
	}
	// $1 这类位置占位符不是 dollar-quote
	if j > i+1 && unicode.IsDigit(rune(s[i+1])) {
		return 0, false
	}
	tag := s[i : j+1]
	k := j + 1
	if idx := strings.Index(s[k:], tag); idx >= 0 {
		return k + idx + len(tag), true
	}
	return len(s), true
}

func isTagChar(r rune) bool { return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) }

// parseIdent 从 i 开始读取标识符；strict 时首字符必须是字母或下划线
func parseIdent(s string, i int, strict bool) (string, int) {
	start := i
	for i < len(s) {
		r, w := utf8.DecodeRuneInString(s[i:])
		ok := r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
		if i == start && strict && unicode.IsDigit(r) {
			ok = false
		}
		if !ok {
			break
		}
		i += w
	}
	if i == start {
		return "", i
	}
	return s[start:i], i
}
