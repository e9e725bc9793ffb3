/*
 * @Description: 查询规格到 SQL 的编译工具
 * @Author: 安知鱼
 * @Date: 2025-07-14 10:08:26
 * @LastEditTime: 2025-09-14 16:02:51
 * @LastEditors: 安知鱼
 */
package sqldb

import (
	"fmt"
	"strings"

	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/model"
)

// condBuilder 收集 WHERE 片段及其参数，所有条件取 AND。
type condBuilder struct {
	conds []string
	args  []any
}

func (b *condBuilder) add(cond string, args ...any) {
	b.conds = append(b.conds, cond)
	b.args = append(b.args, args...)
}

// addIn 生成 col IN (?,...) 片段；空集合生成恒假条件以表示"明确无匹配"。
func (b *condBuilder) addIn(col string, ids []uint) {
	if len(ids) == 0 {
		b.conds = append(b.conds, "1 = 0")
		return
	}
	placeholders := strings.Repeat("?,", len(ids))
	b.conds = append(b.conds, fmt.Sprintf("%s IN (%s)", col, placeholders[:len(placeholders)-1]))
	for _, id := range ids {
		b.args = append(b.args, id)
	}
}

// addTagsAnyOf 生成标签的 "任一命中" 条件。
// 标签列以逗号包裹形式存储（例如 ",go,web,"），用 LIKE 做成员匹配。
func (b *condBuilder) addTagsAnyOf(col string, tags []string) {
	if len(tags) == 0 {
		return
	}
	parts := make([]string, len(tags))
	for i, tag := range tags {
		parts[i] = col + " LIKE ?" + likeEscape
		b.args = append(b.args, "%,"+escapeLike(tag)+",%")
	}
	b.conds = append(b.conds, "("+strings.Join(parts, " OR ")+")")
}

// where 返回完整的 WHERE 子句（含前导空格），没有条件时返回空串。
func (b *condBuilder) where() (string, []any) {
	if len(b.conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(b.conds, " AND "), b.args
}

// likeEscape 是与 escapeLike 配套的 ESCAPE 子句。
// SQLite 的 LIKE 没有默认转义字符，必须显式声明；
// 转义字符选 '!' 而非反斜杠，三种方言对字符串字面量里的反斜杠处理不一致。
const likeEscape = " ESCAPE '!'"

// escapeLike 转义 LIKE 模式中的通配符，产出的模式须配合 likeEscape 使用
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "!", "!!")
	s = strings.ReplaceAll(s, "%", "!%")
	return strings.ReplaceAll(s, "_", "!_")
}

// orderBy 把排序序列编译为 ORDER BY 子句。
// 列名必须在白名单内，白名单把 API 字段名映射为真实列名；
// 未收录的字段（包括检索相关度的 score）直接跳过，由上层处理。
func orderBy(sort []model.SortField, allowed map[string]string) string {
	var parts []string
	for _, s := range sort {
		col, ok := allowed[s.Field]
		if !ok {
			continue
		}
		dir := "ASC"
		if s.Direction == model.SortDesc {
			dir = "DESC"
		}
		parts = append(parts, col+" "+dir)
	}
	if len(parts) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

// rebind 在 postgres 方言下把 ? 占位符重写为 $1..$n，其余方言原样返回。
func rebind(dialect, query string) string {
	if dialect != "postgres" {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&sb, "$%d", n)
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// wrapTags 把标签切片编码为逗号包裹的存储形式，空切片存为空串。
func wrapTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return "," + strings.Join(tags, ",") + ","
}

// unwrapTags 是 wrapTags 的逆操作
func unwrapTags(s string) []string {
	s = strings.Trim(s, ",")
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
