package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSlug 缓存键到文件名的转换
func TestSlug(t *testing.T) {
	cases := []struct {
		name string
		key  string
		want string
	}{
		{"lowercase", "Weather:London", "weatherlondon"},
		{"spaces to hyphens", "weather report london", "weather-report-london"},
		{"collapse whitespace", "a  \t b", "a-b"},
		{"strip html entities", "a&amp;b &#39;c", "ab-c"},
		{"keep digits and hyphens", "top-10 results", "top-10-results"},
		{"strip punctuation", "user@example.com/profile?x=1", "userexamplecomprofilex1"},
		{"collapse hyphens", "a--b---c", "a-b-c"},
		{"trim hyphens", "  -hello-  ", "hello"},
		{"only symbols becomes empty", "!!!///:::", ""},
		{"empty input", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Slug(tc.key))
		})
	}
}

// TestValidateRejectsEmptySlug 配置了文件目录时键必须能转成合法文件名
func TestValidateRejectsEmptySlug(t *testing.T) {
	cfg := &Config{Key: "???", Dir: t.TempDir()}
	assert.ErrorIs(t, cfg.validate(), ErrSlugEmpty)

	// 没有文件层时允许任意键
	cfg = &Config{Key: "???"}
	assert.NoError(t, cfg.validate())
}
