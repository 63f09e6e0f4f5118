package sanitize

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// 评论/私信内容只允许纯文本，入库前统一过策略
var policy = bluemonday.StrictPolicy()

var mentionPattern = regexp.MustCompile(`@([A-Za-z0-9_]{3,30})`)

// Clean 去除所有标记并整理空白，返回可安全存储和原样渲染的纯文本
func Clean(raw string) string {
	cleaned := policy.Sanitize(raw)
	return strings.TrimSpace(cleaned)
}

// Mentions 从已清洗文本中提取 @用户名，去重并保持出现顺序
func Mentions(content string) []string {
	matches := mentionPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	usernames := make([]string, 0, len(matches))
	for _, m := range matches {
		name := m[1]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		usernames = append(usernames, name)
	}
	return usernames
}

// Preview 生成通知摘要，按 rune 截断避免拦腰砍断多字节字符
func Preview(content string, maxRunes int) string {
	runes := []rune(content)
	if len(runes) <= maxRunes {
		return content
	}
	return string(runes[:maxRunes])
}
