package cache

import (
	"regexp"
	"strings"
)

var (
	entityPattern  = regexp.MustCompile(`&#?[0-9a-zA-Z]+;`)
	invalidPattern = regexp.MustCompile(`[^a-z0-9\s-]`)
	spacePattern   = regexp.MustCompile(`\s+`)
	hyphenPattern  = regexp.MustCompile(`-{2,}`)
)

// Slug 从缓存键派生确定性的、文件系统安全的标识符，用作文件缓存的文件名。
//
// 转换规则依次为：转小写、去除 HTML 字符引用、去除非字母数字字符
// （保留空格与连字符）、空格替换为连字符、折叠连续连字符、去除首尾连字符。
//
// 示例：
//
//	Slug("Weather: London & Paris") // "weather-london-paris"
func Slug(key string) string {
	s := strings.ToLower(key)
	s = entityPattern.ReplaceAllString(s, "")
	s = invalidPattern.ReplaceAllString(s, "")
	s = spacePattern.ReplaceAllString(s, "-")
	s = hyphenPattern.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
