package utils

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var reSpaces = regexp.MustCompile(`[ \t]+`)

// StripTags 去掉用户提交文本中的 HTML 标记，只保留文本内容
func StripTags(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	doc.Find("script,style").Remove()
	return strings.TrimSpace(doc.Text())
}

// CleanLine 单行字段：去标记并合并空白
func CleanLine(s string) string {
	s = StripTags(s)
	s = strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
	return reSpaces.ReplaceAllString(s, " ")
}
