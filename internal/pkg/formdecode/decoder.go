/*
 * @Description: 表单解码器，将括号索引记法的扁平字段还原为类型化的文档结构
 * @Author: 安知鱼
 * @Date: 2025-07-08 15:42:19
 * @LastEditTime: 2025-09-14 10:26:47
 * @LastEditors: 安知鱼
 */
package formdecode

import (
	"encoding/json"
	"log"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/model"
)

// 三类括号记法的键模式。
// blocks 允许可选的 data 子字段和可选的数组后缀 []；
// 索引必须是十进制数字，排序时按数值比较而非字典序。
var (
	blockKeyRe = regexp.MustCompile(`^blocks\[(\d+)\]\[([^\]]+)\](?:\[([^\]]+)\])?(\[\])?$`)
	faqKeyRe   = regexp.MustCompile(`^faqs\[(\d+)\]\[([^\]]+)\]$`)
	seoKeyRe   = regexp.MustCompile(`^seo\[([^\]]+)\]$`)
)

// Decode 将一次写请求的扁平表单字段解码为规范化的文档。
// 解码是纯函数且永不失败：无法识别的值按原样保留或回退到默认值，
// 合法性检查由 Validate 在写入前单独执行。
func Decode(fields url.Values) *model.DecodedDocument {
	doc := &model.DecodedDocument{
		Tags:   decodeTags(fields),
		Blocks: decodeBlocks(fields),
		Faqs:   decodeFaqs(fields),
		SEO:    decodeSEO(fields),
	}
	normalizeBlocks(doc.Blocks)
	return doc
}

// decodeTags 收集 tags[] 的所有出现，归一化为小写去空白的集合
// （去重保留首次出现顺序，与分类过滤端的标签比较口径一致）。
// 没有括号形式时，尝试把 tags 字段按预序列化的 JSON 数组解析。
func decodeTags(fields url.Values) []string {
	raw := fields["tags[]"]
	if len(raw) == 0 {
		if s := fields.Get("tags"); s != "" {
			var parsed []string
			if err := json.Unmarshal([]byte(s), &parsed); err != nil {
				log.Printf("[FormDecoder.Decode] 无法将 tags 解析为 JSON: %q", s)
				return nil
			}
			raw = parsed
		}
	}
	if len(raw) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(raw))
	tags := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	return tags
}

// decodeBlocks 是两趟算法：先把括号键扫描进以数字索引为键的中间映射，
// 再按索引数值升序物化为有序的内容块序列。
// 索引允许稀疏（blocks[0]、blocks[2]），缺口不补齐也不重编号。
func decodeBlocks(fields url.Values) []model.ContentBlock {
	accum := make(map[int]*model.ContentBlock)

	for key, values := range fields {
		m := blockKeyRe.FindStringSubmatch(key)
		if m == nil || len(values) == 0 {
			continue
		}
		index, _ := strconv.Atoi(m[1])
		field, subfield, isArray := m[2], m[3], m[4] != ""

		block, ok := accum[index]
		if !ok {
			block = &model.ContentBlock{Data: map[string]any{}, Order: index}
			accum[index] = block
		}

		switch field {
		case "type":
			block.Type = values[0]
		case "order":
			if n, err := strconv.Atoi(values[0]); err == nil {
				block.Order = n
			}
		case "data":
			if subfield == "" {
				continue
			}
			if isArray {
				// 数组形式整体赋值，重复提交时以最后一次完整写入为准
				block.Data[subfield] = append([]string(nil), values...)
			} else {
				block.Data[subfield] = values[0]
			}
		}
	}

	if len(accum) == 0 {
		return decodeJSONBlocks(fields)
	}

	indices := make([]int, 0, len(accum))
	for i := range accum {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	blocks := make([]model.ContentBlock, 0, len(indices))
	for _, i := range indices {
		blocks = append(blocks, *accum[i])
	}
	return blocks
}

// decodeJSONBlocks 处理把整个块数组预序列化为 JSON 字符串提交的旧客户端
func decodeJSONBlocks(fields url.Values) []model.ContentBlock {
	s := fields.Get("blocks")
	if s == "" {
		return nil
	}
	var blocks []model.ContentBlock
	if err := json.Unmarshal([]byte(s), &blocks); err != nil {
		log.Printf("[FormDecoder.Decode] 无法将 blocks 解析为 JSON: %q", s)
		return nil
	}
	for i := range blocks {
		if blocks[i].Data == nil {
			blocks[i].Data = map[string]any{}
		}
	}
	return blocks
}

func decodeFaqs(fields url.Values) []model.FaqEntry {
	accum := make(map[int]map[string]string)

	for key, values := range fields {
		m := faqKeyRe.FindStringSubmatch(key)
		if m == nil || len(values) == 0 {
			continue
		}
		index, _ := strconv.Atoi(m[1])
		if accum[index] == nil {
			accum[index] = make(map[string]string)
		}
		accum[index][m[2]] = values[0]
	}

	if len(accum) == 0 {
		return nil
	}

	indices := make([]int, 0, len(accum))
	for i := range accum {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	faqs := make([]model.FaqEntry, 0, len(indices))
	for _, i := range indices {
		raw := accum[i]
		entry := model.FaqEntry{
			Question: raw["question"],
			Answer:   raw["answer"],
			Order:    i,
			IsActive: true,
		}
		if n, err := strconv.Atoi(raw["order"]); err == nil {
			entry.Order = n
		}
		if v, ok := raw["isActive"]; ok && (v == "false" || v == "0") {
			entry.IsActive = false
		}
		faqs = append(faqs, entry)
	}
	return faqs
}

// decodeSEO 先尝试整体的 seo JSON 字段，再用 seo[field] 逐字段覆盖。
// keywords 优先按 JSON 数组解析；解析失败时把原始字符串包装成
// 单元素关键词列表，保持与其它关键词类字段一致的集合语义。
func decodeSEO(fields url.Values) *model.PostSEO {
	var seo *model.PostSEO

	if s := fields.Get("seo"); s != "" {
		var parsed model.PostSEO
		if err := json.Unmarshal([]byte(s), &parsed); err != nil {
			log.Printf("[FormDecoder.Decode] 无法将 seo 解析为 JSON: %q", s)
		} else {
			seo = &parsed
		}
	}

	for key, values := range fields {
		m := seoKeyRe.FindStringSubmatch(key)
		if m == nil || len(values) == 0 {
			continue
		}
		if seo == nil {
			seo = &model.PostSEO{}
		}
		value := values[0]
		switch m[1] {
		case "title":
			seo.Title = value
		case "description":
			seo.Description = value
		case "keywords":
			var keywords []string
			if err := json.Unmarshal([]byte(value), &keywords); err != nil {
				keywords = []string{value}
			}
			seo.Keywords = keywords
		}
	}

	return seo
}

// normalizeBlocks 统一两代前端的块字段命名：text/code 重命名为 content
// （仅当 content 尚不存在，保证重复应用不改变结果），文本形式的 level
// 在能够解析时转为整数。
func normalizeBlocks(blocks []model.ContentBlock) {
	for i := range blocks {
		data := blocks[i].Data
		if data == nil {
			continue
		}
		if _, hasContent := data["content"]; !hasContent {
			if text, ok := data["text"]; ok {
				data["content"] = text
				delete(data, "text")
			}
		}
		if _, hasContent := data["content"]; !hasContent {
			if code, ok := data["code"]; ok {
				data["content"] = code
				delete(data, "code")
			}
		}
		if level, ok := data["level"].(string); ok {
			if n, err := strconv.Atoi(level); err == nil {
				data["level"] = n
			}
		}
	}
}
