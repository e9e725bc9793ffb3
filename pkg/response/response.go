/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-06-15 12:16:18
 * @LastEditTime: 2025-08-20 14:41:36
 * @LastEditors: 安知鱼
 */
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/model"
)

// Response 是统一的API返回结构体
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: message,
		Data:    data,
	})
}

// Fail 失败响应
func Fail(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

// SuccessWithStatus 成功响应，但允许自定义 HTTP 状态码。
// 这对于返回 201 Created 或 202 Accepted 等状态非常有用。
func SuccessWithStatus(c *gin.Context, code int, data interface{}, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// ListResult 是列表端点的统一返回结构，携带分页元信息。
type ListResult struct {
	Success    bool             `json:"success"`
	Count      int              `json:"count"`
	Total      int64            `json:"total"`
	Pagination model.Pagination `json:"pagination"`
	Data       interface{}      `json:"data"`
}

// List 列表响应：count 为本页条数，total 为满足过滤条件的总数，
// pagination 的上一页/下一页由 skip/limit/total 推导。
func List(c *gin.Context, data interface{}, count int, total int64, pagination model.Pagination) {
	c.JSON(http.StatusOK, ListResult{
		Success:    true,
		Count:      count,
		Total:      total,
		Pagination: pagination,
		Data:       data,
	})
}
