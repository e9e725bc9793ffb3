/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-06-23 15:48:20
 * @LastEditTime: 2025-08-19 09:36:11
 * @LastEditors: 安知鱼
 */
package post

import (
	"strings"
	"unicode"
)

const maxSlugLength = 200

// Slugify 把任意标题正规化为 URL 友好的别名：
// 小写化，字母、数字和中文原样保留，其余字符折叠为单个连字符。
// 结果可能为空字符串，由调用方决定兜底策略。
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var sb strings.Builder
	lastHyphen := true // 抑制前导连字符
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', unicode.Is(unicode.Han, r):
			sb.WriteRune(r)
			lastHyphen = false
		case r == '-' || r == '_' || r == '.':
			sb.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				sb.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	slug := strings.Trim(sb.String(), "-")
	if runes := []rune(slug); len(runes) > maxSlugLength {
		slug = strings.Trim(string(runes[:maxSlugLength]), "-")
	}
	return slug
}
