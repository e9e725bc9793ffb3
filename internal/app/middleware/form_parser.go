/*
 * @Description: 多部分表单解码中间件
 * @Author: 安知鱼
 * @Date: 2025-07-11 09:15:02
 * @LastEditTime: 2025-09-14 13:22:40
 * @LastEditors: 安知鱼
 */
package middleware

import (
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/anheyu-cms/internal/pkg/formdecode"
	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/model"
)

// DocumentKey 是解码后的文档在 gin.Context 中的存储键
const DocumentKey = "decoded_document"

// maxMultipartMemory 解析多部分表单时的内存上限（超出部分落临时文件）
const maxMultipartMemory = 32 << 20

// ParseDocumentForm 在文章写入请求进入处理器之前运行表单解码器，
// 把括号索引记法的扁平字段还原为结构化文档并挂到上下文。
// 解码永不失败，非表单请求直接放行。
func ParseDocumentForm() gin.HandlerFunc {
	return func(c *gin.Context) {
		form, err := c.MultipartForm()
		if err != nil {
			// 不是 multipart 请求，尝试普通表单
			if err := c.Request.ParseForm(); err != nil || len(c.Request.PostForm) == 0 {
				c.Next()
				return
			}
			c.Set(DocumentKey, formdecode.Decode(c.Request.PostForm))
			c.Next()
			return
		}

		c.Set(DocumentKey, formdecode.Decode(url.Values(form.Value)))
		c.Next()
	}
}

// DocumentFromContext 取出表单解码器的输出，没有经过解码中间件时返回空文档。
func DocumentFromContext(c *gin.Context) *model.DecodedDocument {
	if v, exists := c.Get(DocumentKey); exists {
		if doc, ok := v.(*model.DecodedDocument); ok {
			return doc
		}
	}
	return &model.DecodedDocument{}
}
