package search

import (
	"reflect"
	"testing"

	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/model"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "空字符串",
			input:    "",
			expected: []string{},
		},
		{
			name:     "纯空格",
			input:    "   \t\n  ",
			expected: []string{},
		},
		{
			name:     "纯英文",
			input:    "Hello World",
			expected: []string{"hello", "world"},
		},
		{
			name:     "纯中文",
			input:    "你好世界",
			expected: []string{"你", "好", "世", "界", "你好", "好世", "世界"},
		},
		{
			name:     "中英文混合",
			input:    "Hello 世界 World",
			expected: []string{"hello", "world", "世", "界", "世界"},
		},
		{
			name:     "包含标点符号",
			input:    "Hello, World! 你好，世界？",
			expected: []string{"hello", "world", "你", "好", "世", "界", "你好", "世界"},
		},
		{
			name:     "大小写混合去重",
			input:    "Hello WORLD hElLo",
			expected: []string{"hello", "world"},
		},
		{
			name:     "版本号作为整体词条",
			input:    "升级到 go1.18 版本",
			expected: []string{"go1.18", "升", "级", "到", "版", "本", "升级", "级到", "版本"},
		},
		{
			name:     "重复词",
			input:    "Hello Hello World World",
			expected: []string{"hello", "world"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenize(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("tokenize(%q) = %v, 期望 %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestBlockText(t *testing.T) {
	blocks := []model.ContentBlock{
		{Type: "heading", Data: map[string]any{"content": "标题", "level": 2}},
		{Type: "paragraph", Data: map[string]any{"content": "正文内容"}},
		{Type: "list", Data: map[string]any{"items": []string{"第一项", "第二项"}}},
		{Type: "image", Data: map[string]any{"url": "/uploads/a.png"}},
	}

	got := BlockText(blocks)
	expected := "标题 正文内容 第一项 第二项"
	if got != expected {
		t.Errorf("BlockText = %q, 期望 %q", got, expected)
	}
}

func TestBlockTextJSONItems(t *testing.T) {
	// JSON 反序列化得到的 items 是 []any
	blocks := []model.ContentBlock{
		{Type: "list", Data: map[string]any{"items": []any{"a", "b"}}},
	}
	if got := BlockText(blocks); got != "a b" {
		t.Errorf("BlockText = %q", got)
	}
}

func TestSearchServiceDegraded(t *testing.T) {
	svc := NewSearchService(nil)
	if svc.Enabled() {
		t.Fatal("无 Redis 客户端时应处于降级模式")
	}
	// 降级模式下索引操作静默跳过，不影响主流程
	if err := svc.IndexPost(nil, &model.Post{ID: 1}); err != nil {
		t.Errorf("降级模式下 IndexPost 应返回 nil, 实际 %v", err)
	}
	if err := svc.DeletePost(nil, 1); err != nil {
		t.Errorf("降级模式下 DeletePost 应返回 nil, 实际 %v", err)
	}
	if _, err := svc.RankedIDs(nil, "x"); err == nil {
		t.Error("降级模式下 RankedIDs 应返回错误")
	}
}
