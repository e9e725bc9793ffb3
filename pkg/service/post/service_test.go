/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-08-19 10:02:45
 * @LastEditTime: 2025-09-21 18:10:33
 * @LastEditors: 安知鱼
 */
package post

import (
	"testing"
	"time"

	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/model"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"英文标题折叠空白", "Hello World  Again", "hello-world-again"},
		{"大写转小写", "Go-Lang_1.18", "go-lang_1.18"},
		{"中文原样保留", "你好 世界", "你好-世界"},
		{"特殊字符折叠为单个连字符", "a!!!b???c", "a-b-c"},
		{"首尾连字符被裁剪", "  ---hello---  ", "hello"},
		{"全部非法字符得到空串", "!!!???", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.want {
				t.Errorf("Slugify(%q) = %q, 期望 %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCalculatePostStats(t *testing.T) {
	blocks := []model.ContentBlock{
		{Type: "paragraph", Data: map[string]any{"content": "one two three"}},
		{Type: "list", Data: map[string]any{"items": []string{"four", "five"}}},
	}
	wordCount, readTime := calculatePostStats("标题", "excerpt words", blocks)
	// 2 个汉字 + 7 个英文单词
	if wordCount != 9 {
		t.Errorf("wordCount = %d, 期望 9", wordCount)
	}
	if readTime != 1 {
		t.Errorf("readTime = %d, 期望 1", readTime)
	}

	wordCount, readTime = calculatePostStats("", "", nil)
	if wordCount != 0 || readTime != 0 {
		t.Errorf("空内容应得到零值，实际 wordCount=%d readTime=%d", wordCount, readTime)
	}
}

func TestSortByRank(t *testing.T) {
	posts := []*model.Post{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}
	// 名次表：3 最相关，1 次之；2 和 4 未命中，应稳定地排在末尾
	sortByRank(posts, []uint{3, 1})

	wantOrder := []uint{3, 1, 2, 4}
	for i, want := range wantOrder {
		if posts[i].ID != want {
			t.Fatalf("位置 %d 的文章 ID = %d, 期望 %d", i, posts[i].ID, want)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		wantOK bool
		want   time.Time
	}{
		{"RFC3339", "2025-08-30T10:00:00Z", true, time.Date(2025, 8, 30, 10, 0, 0, 0, time.UTC)},
		{"仅日期", "2025-08-30", true, time.Date(2025, 8, 30, 0, 0, 0, 0, time.UTC)},
		{"空字符串", "", false, time.Time{}},
		{"非法格式", "30/08/2025", false, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseTimestamp(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("parseTimestamp(%q) ok = %v, 期望 %v", tt.input, ok, tt.wantOK)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("parseTimestamp(%q) = %v, 期望 %v", tt.input, got, tt.want)
			}
		})
	}
}
