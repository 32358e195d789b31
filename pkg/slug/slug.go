package slug

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MaxLen 课程 slug 列宽
const MaxLen = 100

var (
	reNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)
	reHyphen   = regexp.MustCompile(`-+`)
)

// Make 将任意文本转换为 [a-z0-9-] 形式的 slug
// 去除变音符号，连续分隔符合并为一个 "-"，首尾 "-" 去掉；结果为空时返回 "course"
func Make(parts ...string) string {
	s := strings.ToLower(strings.TrimSpace(strings.Join(parts, " ")))

	var buf []rune
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		buf = append(buf, r)
	}
	s = string(buf)

	s = reNonAlnum.ReplaceAllString(s, "-")
	s = reHyphen.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if utf8.RuneCountInString(s) > MaxLen {
		s = strings.Trim(string([]rune(s)[:MaxLen]), "-")
	}
	if s == "" {
		s = "course"
	}
	return s
}
