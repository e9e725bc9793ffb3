/*
 * @Description: 内容块校验器
 * @Author: 安知鱼
 * @Date: 2025-07-08 16:20:33
 * @LastEditTime: 2025-09-14 10:31:12
 * @LastEditors: 安知鱼
 */
package formdecode

import (
	"fmt"

	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/model"
)

// BlockValidationError 描述未通过校验的内容块：位置与违反的规则。
// 它是写请求中唯一会以 4xx 暴露给调用方的解码类错误。
type BlockValidationError struct {
	Index int
	Rule  string
}

func (e *BlockValidationError) Error() string {
	return fmt.Sprintf("第 %d 个内容块无效: %s", e.Index, e.Rule)
}

// blockChecks 按块类型给出 data 的校验规则。
// 未收录的类型直接放行，以兼容前端先行引入的新块类型。
var blockChecks = map[string]func(data map[string]any) string{
	"paragraph": requireText("content"),
	"heading":   checkHeading,
	"image":     requireKey("url"),
	"list":      checkList,
	"quote":     requireText("content"),
	"code":      requireKey("content"),
	"video":     requireKey("url"),
}

// ValidateBlocks 依次校验每个内容块，返回第一个失败项。
func ValidateBlocks(blocks []model.ContentBlock) error {
	for i, block := range blocks {
		if block.Type == "" {
			return &BlockValidationError{Index: i, Rule: "缺少块类型"}
		}
		check, ok := blockChecks[block.Type]
		if !ok {
			continue
		}
		if rule := check(block.Data); rule != "" {
			return &BlockValidationError{Index: i, Rule: rule}
		}
	}
	return nil
}

// requireText 要求字段存在且为非空字符串
func requireText(field string) func(map[string]any) string {
	return func(data map[string]any) string {
		s, ok := data[field].(string)
		if !ok || s == "" {
			return fmt.Sprintf("缺少必填字段 %s", field)
		}
		return ""
	}
}

// requireKey 要求字段存在，允许为空字符串
func requireKey(field string) func(map[string]any) string {
	return func(data map[string]any) string {
		if _, ok := data[field]; !ok {
			return fmt.Sprintf("缺少必填字段 %s", field)
		}
		return ""
	}
}

func checkHeading(data map[string]any) string {
	if rule := requireText("content")(data); rule != "" {
		return rule
	}
	if raw, ok := data["level"]; ok {
		level, isInt := raw.(int)
		if !isInt {
			if f, isFloat := raw.(float64); isFloat {
				level, isInt = int(f), true
			}
		}
		if !isInt || level < 1 || level > 6 {
			return "level 必须在 1 到 6 之间"
		}
	}
	return ""
}

func checkList(data map[string]any) string {
	switch items := data["items"].(type) {
	case []string:
		if len(items) > 0 {
			return ""
		}
	case []any:
		if len(items) > 0 {
			return ""
		}
	}
	return "items 必须是非空列表"
}
