package formdecode

import (
	"net/url"
	"reflect"
	"testing"

	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/model"
)

func TestDecodeTags(t *testing.T) {
	tests := []struct {
		name     string
		fields   url.Values
		expected []string
	}{
		{
			name:     "无标签",
			fields:   url.Values{},
			expected: nil,
		},
		{
			name:     "单个标签",
			fields:   url.Values{"tags[]": {"go"}},
			expected: []string{"go"},
		},
		{
			name:     "重复标签去重且保留首次出现顺序",
			fields:   url.Values{"tags[]": {"a", "b", "a"}},
			expected: []string{"a", "b"},
		},
		{
			name:     "大小写与首尾空白归一化",
			fields:   url.Values{"tags[]": {"Go", " Web ", "go"}},
			expected: []string{"go", "web"},
		},
		{
			name:     "归一化后为空的标签丢弃",
			fields:   url.Values{"tags[]": {"   ", "cms"}},
			expected: []string{"cms"},
		},
		{
			name:     "JSON 形式同样归一化",
			fields:   url.Values{"tags": {`["Go"," Web "]`}},
			expected: []string{"go", "web"},
		},
		{
			name:     "预序列化的 JSON 数组",
			fields:   url.Values{"tags": {`["go","web"]`}},
			expected: []string{"go", "web"},
		},
		{
			name:     "JSON 解析失败时忽略",
			fields:   url.Values{"tags": {`not-json`}},
			expected: nil,
		},
		{
			name:     "括号形式优先于 JSON 字段",
			fields:   url.Values{"tags[]": {"x"}, "tags": {`["y"]`}},
			expected: []string{"x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Decode(tt.fields)
			if !reflect.DeepEqual(doc.Tags, tt.expected) {
				t.Errorf("Tags = %v, 期望 %v", doc.Tags, tt.expected)
			}
		})
	}
}

func TestDecodeBlocks(t *testing.T) {
	fields := url.Values{
		"blocks[0][type]":       {"heading"},
		"blocks[0][data][text]": {"Hi"},
		"blocks[0][data][level]": {
			"2",
		},
		"blocks[1][type]":          {"paragraph"},
		"blocks[1][data][content]": {"Body"},
	}

	doc := Decode(fields)
	if len(doc.Blocks) != 2 {
		t.Fatalf("期望 2 个内容块, 实际 %d", len(doc.Blocks))
	}

	first := doc.Blocks[0]
	if first.Type != "heading" || first.Order != 0 {
		t.Errorf("第一个块 type=%q order=%d", first.Type, first.Order)
	}
	if first.Data["content"] != "Hi" {
		t.Errorf("text 应重命名为 content, 实际 data=%v", first.Data)
	}
	if _, ok := first.Data["text"]; ok {
		t.Error("重命名后 text 字段应被删除")
	}
	if first.Data["level"] != 2 {
		t.Errorf("level 应转为整数 2, 实际 %v", first.Data["level"])
	}

	second := doc.Blocks[1]
	if second.Type != "paragraph" || second.Order != 1 || second.Data["content"] != "Body" {
		t.Errorf("第二个块不符合预期: %+v", second)
	}
}

func TestDecodeBlocksNumericOrdering(t *testing.T) {
	fields := url.Values{
		"blocks[10][type]": {"paragraph"},
		"blocks[9][type]":  {"heading"},
		"blocks[2][type]":  {"image"},
	}

	doc := Decode(fields)
	got := []string{}
	for _, b := range doc.Blocks {
		got = append(got, b.Type)
	}
	// 索引按数值排序，9 在 10 之前
	expected := []string{"image", "heading", "paragraph"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("块顺序 = %v, 期望 %v", got, expected)
	}
}

func TestDecodeBlocksSparseIndices(t *testing.T) {
	fields := url.Values{
		"blocks[0][type]": {"paragraph"},
		"blocks[2][type]": {"quote"},
	}

	doc := Decode(fields)
	if len(doc.Blocks) != 2 {
		t.Fatalf("稀疏索引应保留实际存在的块, 实际 %d 个", len(doc.Blocks))
	}
	if doc.Blocks[0].Order != 0 || doc.Blocks[1].Order != 2 {
		t.Errorf("稀疏索引不应被重编号: order=[%d, %d]", doc.Blocks[0].Order, doc.Blocks[1].Order)
	}
}

func TestDecodeBlockArrayField(t *testing.T) {
	fields := url.Values{
		"blocks[0][type]":          {"list"},
		"blocks[0][data][items][]": {"one", "two", "three"},
	}

	doc := Decode(fields)
	if len(doc.Blocks) != 1 {
		t.Fatalf("期望 1 个内容块, 实际 %d", len(doc.Blocks))
	}
	items, ok := doc.Blocks[0].Data["items"].([]string)
	if !ok || !reflect.DeepEqual(items, []string{"one", "two", "three"}) {
		t.Errorf("items = %v", doc.Blocks[0].Data["items"])
	}
}

func TestDecodeBlockOrderField(t *testing.T) {
	fields := url.Values{
		"blocks[0][type]":  {"paragraph"},
		"blocks[0][order]": {"5"},
		"blocks[1][type]":  {"paragraph"},
		"blocks[1][order]": {"abc"},
	}

	doc := Decode(fields)
	if doc.Blocks[0].Order != 5 {
		t.Errorf("显式 order 应生效, 实际 %d", doc.Blocks[0].Order)
	}
	if doc.Blocks[1].Order != 1 {
		t.Errorf("无法解析的 order 应回退到索引, 实际 %d", doc.Blocks[1].Order)
	}
}

func TestDecodeBlocksMissingType(t *testing.T) {
	fields := url.Values{
		"blocks[0][data][content]": {"无类型的块"},
	}

	doc := Decode(fields)
	if len(doc.Blocks) != 1 {
		t.Fatalf("期望 1 个内容块, 实际 %d", len(doc.Blocks))
	}
	// 缺失 type 默认空字符串，由校验器而非解码器拒绝
	if doc.Blocks[0].Type != "" {
		t.Errorf("缺失 type 应为空字符串, 实际 %q", doc.Blocks[0].Type)
	}
}

func TestDecodeJSONBlocks(t *testing.T) {
	fields := url.Values{
		"blocks": {`[{"type":"paragraph","data":{"content":"Body"},"order":0}]`},
	}

	doc := Decode(fields)
	if len(doc.Blocks) != 1 || doc.Blocks[0].Type != "paragraph" {
		t.Fatalf("JSON 形式的 blocks 应被解析: %+v", doc.Blocks)
	}
	if doc.Blocks[0].Data["content"] != "Body" {
		t.Errorf("content = %v", doc.Blocks[0].Data["content"])
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	blocks := []model.ContentBlock{
		{Type: "paragraph", Data: map[string]any{"text": "hello"}},
		{Type: "code", Data: map[string]any{"code": "x := 1", "content": "已有内容"}},
	}

	normalizeBlocks(blocks)
	normalizeBlocks(blocks)

	if blocks[0].Data["content"] != "hello" {
		t.Errorf("text 应重命名为 content: %v", blocks[0].Data)
	}
	// content 已存在时不得二次重命名
	if blocks[1].Data["content"] != "已有内容" {
		t.Errorf("content 已存在时不应被 code 覆盖: %v", blocks[1].Data)
	}
	if blocks[1].Data["code"] != "x := 1" {
		t.Errorf("未重命名的 code 字段应保留: %v", blocks[1].Data)
	}
}

func TestDecodeFaqs(t *testing.T) {
	fields := url.Values{
		"faqs[1][question]": {"第二个问题"},
		"faqs[1][answer]":   {"第二个回答"},
		"faqs[1][isActive]": {"false"},
		"faqs[0][question]": {"第一个问题"},
		"faqs[0][answer]":   {"第一个回答"},
		"faqs[0][order]":    {"7"},
	}

	doc := Decode(fields)
	if len(doc.Faqs) != 2 {
		t.Fatalf("期望 2 条 FAQ, 实际 %d", len(doc.Faqs))
	}
	first := doc.Faqs[0]
	if first.Question != "第一个问题" || first.Order != 7 || !first.IsActive {
		t.Errorf("第一条 FAQ 不符合预期: %+v", first)
	}
	second := doc.Faqs[1]
	if second.Question != "第二个问题" || second.Order != 1 || second.IsActive {
		t.Errorf("第二条 FAQ 不符合预期: %+v", second)
	}
}

func TestDecodeSEO(t *testing.T) {
	tests := []struct {
		name     string
		fields   url.Values
		expected *model.PostSEO
	}{
		{
			name:     "无 SEO 字段",
			fields:   url.Values{},
			expected: nil,
		},
		{
			name: "逐字段括号形式",
			fields: url.Values{
				"seo[title]":       {"标题"},
				"seo[description]": {"描述"},
				"seo[keywords]":    {`["go","cms"]`},
			},
			expected: &model.PostSEO{Title: "标题", Description: "描述", Keywords: []string{"go", "cms"}},
		},
		{
			name: "keywords 非 JSON 时包装为单元素列表",
			fields: url.Values{
				"seo[keywords]": {"golang"},
			},
			expected: &model.PostSEO{Keywords: []string{"golang"}},
		},
		{
			name: "整体 JSON 字段",
			fields: url.Values{
				"seo": {`{"title":"T","keywords":["k"]}`},
			},
			expected: &model.PostSEO{Title: "T", Keywords: []string{"k"}},
		},
		{
			name: "括号字段覆盖 JSON 字段",
			fields: url.Values{
				"seo":        {`{"title":"旧标题","description":"保留"}`},
				"seo[title]": {"新标题"},
			},
			expected: &model.PostSEO{Title: "新标题", Description: "保留"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Decode(tt.fields)
			if !reflect.DeepEqual(doc.SEO, tt.expected) {
				t.Errorf("SEO = %+v, 期望 %+v", doc.SEO, tt.expected)
			}
		})
	}
}
