/*
 * @Description: 业务错误到 HTTP 状态码的统一翻译
 * @Author: 安知鱼
 * @Date: 2025-08-20 14:50:12
 * @LastEditTime: 2025-09-21 11:14:37
 * @LastEditors: 安知鱼
 */
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/anheyu-cms/pkg/constant"
)

// FailWithError 把业务层错误翻译为对应的 HTTP 状态码并返回。
// 未识别的错误一律按 500 处理，避免把内部细节泄露到响应里。
func FailWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, constant.ErrNotFound):
		Fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, constant.ErrBadRequest),
		errors.Is(err, constant.ErrInvalidPublicID),
		errors.Is(err, constant.ErrSlugTaken),
		errors.Is(err, constant.ErrCategoryInUse):
		Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, constant.ErrUnauthorized), errors.Is(err, constant.ErrInvalidToken):
		Fail(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, constant.ErrForbidden):
		Fail(c, http.StatusForbidden, err.Error())
	case errors.Is(err, constant.ErrConflict):
		Fail(c, http.StatusConflict, err.Error())
	default:
		Fail(c, http.StatusInternalServerError, "服务器内部错误")
	}
}
