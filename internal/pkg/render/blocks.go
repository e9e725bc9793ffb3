/*
 * @Description: 结构化内容块到 HTML 的渲染
 * @Author: 安知鱼
 * @Date: 2025-08-09 10:21:17
 * @LastEditTime: 2025-09-20 16:42:05
 * @LastEditors: 安知鱼
 */
package render

import (
	"fmt"
	"html"
	"log"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/model"
)

var stripTagsPolicy *bluemonday.Policy

func init() {
	// StripTagsPolicy 会移除所有的HTML标签
	stripTagsPolicy = bluemonday.StripTagsPolicy()
}

// StripHTML 接受一个HTML字符串，返回一个去除了所有标签的纯文本字符串。
func StripHTML(htmlContent string) string {
	return stripTagsPolicy.Sanitize(htmlContent)
}

// BlocksToHTML 把结构化内容块渲染为一段安全的 HTML。
// 段落和引用块按 Markdown 处理，其余块类型按语义包装；
// 渲染失败的块降级为转义后的纯文本，绝不中断整篇渲染。
func BlocksToHTML(blocks []model.ContentBlock) string {
	var sb strings.Builder
	for i, block := range blocks {
		switch block.Type {
		case "paragraph":
			sb.WriteString(renderMarkdownBlock(i, stringData(block.Data, "content")))
		case "quote":
			inner := renderMarkdownBlock(i, stringData(block.Data, "content"))
			sb.WriteString("<blockquote>" + inner + "</blockquote>\n")
			if caption := stringData(block.Data, "caption"); caption != "" {
				sb.WriteString("<cite>" + html.EscapeString(caption) + "</cite>\n")
			}
		case "heading":
			level := intData(block.Data, "level", 2)
			if level < 1 || level > 6 {
				level = 2
			}
			sb.WriteString(fmt.Sprintf("<h%d>%s</h%d>\n", level, html.EscapeString(stringData(block.Data, "content")), level))
		case "code":
			lang := stringData(block.Data, "language")
			class := ""
			if lang != "" {
				class = fmt.Sprintf(" class=\"language-%s\"", html.EscapeString(lang))
			}
			sb.WriteString(fmt.Sprintf("<pre><code%s>%s</code></pre>\n", class, html.EscapeString(stringData(block.Data, "content"))))
		case "image":
			src := stringData(block.Data, "url")
			alt := stringData(block.Data, "alt")
			sb.WriteString(fmt.Sprintf("<figure><img src=%q alt=%q /></figure>\n", src, alt))
		case "video":
			sb.WriteString(fmt.Sprintf("<video src=%q controls></video>\n", stringData(block.Data, "url")))
		case "list":
			sb.WriteString(renderList(block.Data))
		default:
			// 未知块类型只输出纯文本内容，避免丢内容
			if content := stringData(block.Data, "content"); content != "" {
				sb.WriteString("<p>" + html.EscapeString(content) + "</p>\n")
			}
		}
	}
	return policy.Sanitize(sb.String())
}

func renderMarkdownBlock(index int, content string) string {
	rendered, err := MarkdownToHTML(content)
	if err != nil {
		log.Printf("[BlocksToHTML] 第 %d 个内容块渲染失败，降级为纯文本: %v", index, err)
		return "<p>" + html.EscapeString(content) + "</p>\n"
	}
	return rendered
}

func renderList(data map[string]any) string {
	tag := "ul"
	if stringData(data, "style") == "ordered" {
		tag = "ol"
	}
	var sb strings.Builder
	sb.WriteString("<" + tag + ">")
	switch items := data["items"].(type) {
	case []string:
		for _, item := range items {
			sb.WriteString("<li>" + html.EscapeString(item) + "</li>")
		}
	case []any:
		for _, item := range items {
			if s, ok := item.(string); ok {
				sb.WriteString("<li>" + html.EscapeString(s) + "</li>")
			}
		}
	}
	sb.WriteString("</" + tag + ">\n")
	return sb.String()
}

func stringData(data map[string]any, key string) string {
	if data == nil {
		return ""
	}
	s, _ := data[key].(string)
	return s
}

func intData(data map[string]any, key string, fallback int) int {
	if data == nil {
		return fallback
	}
	switch v := data[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return fallback
}
