package render

import (
	"strings"
	"testing"

	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/model"
)

func TestBlocksToHTML(t *testing.T) {
	t.Run("段落块按 Markdown 渲染", func(t *testing.T) {
		blocks := []model.ContentBlock{
			{Type: "paragraph", Data: map[string]any{"content": "带 **加粗** 的段落"}},
		}
		got := BlocksToHTML(blocks)
		if !strings.Contains(got, "<strong>加粗</strong>") {
			t.Errorf("段落中的 Markdown 应被渲染, 实际输出: %q", got)
		}
	})

	t.Run("标题块层级越界时回落到 h2", func(t *testing.T) {
		blocks := []model.ContentBlock{
			{Type: "heading", Data: map[string]any{"content": "标题", "level": 9}},
		}
		got := BlocksToHTML(blocks)
		if !strings.Contains(got, "<h2>标题</h2>") {
			t.Errorf("非法层级应回落为 h2, 实际输出: %q", got)
		}
	})

	t.Run("标题块接受表单解码产生的浮点层级", func(t *testing.T) {
		blocks := []model.ContentBlock{
			{Type: "heading", Data: map[string]any{"content": "三级", "level": float64(3)}},
		}
		got := BlocksToHTML(blocks)
		if !strings.Contains(got, "<h3>三级</h3>") {
			t.Errorf("float64 层级应被识别, 实际输出: %q", got)
		}
	})

	t.Run("代码块内容被转义且不执行", func(t *testing.T) {
		blocks := []model.ContentBlock{
			{Type: "code", Data: map[string]any{"content": "<script>alert(1)</script>", "language": "go"}},
		}
		got := BlocksToHTML(blocks)
		if strings.Contains(got, "<script>") {
			t.Errorf("代码内容不应出现未转义的 script 标签: %q", got)
		}
		if !strings.Contains(got, "language-go") {
			t.Errorf("语言 class 应保留: %q", got)
		}
	})

	t.Run("有序列表使用 ol 标签", func(t *testing.T) {
		blocks := []model.ContentBlock{
			{Type: "list", Data: map[string]any{"style": "ordered", "items": []any{"一", "二"}}},
		}
		got := BlocksToHTML(blocks)
		if !strings.Contains(got, "<ol>") || !strings.Contains(got, "<li>一</li>") {
			t.Errorf("有序列表渲染不正确: %q", got)
		}
	})

	t.Run("未知块类型降级为转义纯文本", func(t *testing.T) {
		blocks := []model.ContentBlock{
			{Type: "widget", Data: map[string]any{"content": "a < b"}},
		}
		got := BlocksToHTML(blocks)
		if !strings.Contains(got, "a &lt; b") {
			t.Errorf("未知块内容应被转义输出: %q", got)
		}
	})
}

func TestStripHTML(t *testing.T) {
	got := StripHTML("<p>正文 <strong>加粗</strong></p>")
	if got != "正文 加粗" {
		t.Errorf("StripHTML 应只保留纯文本, 实际 %q", got)
	}
}
