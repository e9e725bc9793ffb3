package formdecode

import (
	"errors"
	"testing"

	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/model"
)

func TestValidateBlocks(t *testing.T) {
	tests := []struct {
		name    string
		blocks  []model.ContentBlock
		wantErr bool
		index   int
	}{
		{
			name: "合法的段落块",
			blocks: []model.ContentBlock{
				{Type: "paragraph", Data: map[string]any{"content": "正文"}},
			},
		},
		{
			name: "段落缺少 content",
			blocks: []model.ContentBlock{
				{Type: "paragraph", Data: map[string]any{}},
			},
			wantErr: true,
			index:   0,
		},
		{
			name: "标题 level 越界",
			blocks: []model.ContentBlock{
				{Type: "paragraph", Data: map[string]any{"content": "正文"}},
				{Type: "heading", Data: map[string]any{"content": "标题", "level": 9}},
			},
			wantErr: true,
			index:   1,
		},
		{
			name: "标题 level 缺省时合法",
			blocks: []model.ContentBlock{
				{Type: "heading", Data: map[string]any{"content": "标题"}},
			},
		},
		{
			name: "代码块允许空内容",
			blocks: []model.ContentBlock{
				{Type: "code", Data: map[string]any{"content": ""}},
			},
		},
		{
			name: "列表 items 为空",
			blocks: []model.ContentBlock{
				{Type: "list", Data: map[string]any{"items": []string{}}},
			},
			wantErr: true,
			index:   0,
		},
		{
			name: "列表 items 非空",
			blocks: []model.ContentBlock{
				{Type: "list", Data: map[string]any{"items": []string{"a"}}},
			},
		},
		{
			name: "图片缺少 url",
			blocks: []model.ContentBlock{
				{Type: "image", Data: map[string]any{}},
			},
			wantErr: true,
			index:   0,
		},
		{
			name: "未知类型直接放行",
			blocks: []model.ContentBlock{
				{Type: "embed-3d-model", Data: map[string]any{}},
			},
		},
		{
			name: "缺失类型被拒绝",
			blocks: []model.ContentBlock{
				{Type: "", Data: map[string]any{}},
			},
			wantErr: true,
			index:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBlocks(tt.blocks)
			if tt.wantErr {
				var ve *BlockValidationError
				if !errors.As(err, &ve) {
					t.Fatalf("期望 BlockValidationError, 实际 %v", err)
				}
				if ve.Index != tt.index {
					t.Errorf("错误索引 = %d, 期望 %d", ve.Index, tt.index)
				}
			} else if err != nil {
				t.Errorf("期望通过校验, 实际 %v", err)
			}
		})
	}
}
