// Package utils 提供通用字符串工具
package utils

import (
	"strings"
	"unicode/utf8"
)

// TruncateRunes 按字符数截断
func TruncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	n := 0
	for i := range s {
		if n == maxRunes {
			return s[:i]
		}
		n++
	}
	return s
}

// Excerpt 截取前 maxRunes 个字符，超长时追加省略号
func Excerpt(s string, maxRunes int) string {
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	return TruncateRunes(s, maxRunes) + "..."
}

// FirstNonBlank 返回第一个非空白字符串（已去除首尾空白）
func FirstNonBlank(values ...string) string {
	for _, v := range values {
		if t := strings.TrimSpace(v); t != "" {
			return t
		}
	}
	return ""
}
