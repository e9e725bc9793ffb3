/*
 * @Description: 定义了封面图片存储驱动需要遵守的接口和公共结构
 * @Author: 安知鱼
 * @Date: 2025-06-28 00:21:55
 * @LastEditTime: 2025-09-20 11:02:17
 * @LastEditors: 安知鱼
 */
package storage

import (
	"context"
	"errors"
	"io"
)

// UploadResult 封装了上传操作成功后的文件信息。
type UploadResult struct {
	// PublicID 是存储层分配的文件标识，删除时以它定位物理文件
	PublicID string
	// URL 是可直接访问的文件地址
	URL  string
	Size int64
}

// 允许上传的图片扩展名
var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".avif": true,
	".svg":  true,
}

var ErrUnsupportedFileType = errors.New("不支持的文件类型")

// Provider 定义了封面图片存储提供者必须实现的接口。
type Provider interface {
	// Upload 将文件流写入存储，originalFilename 仅用于推断扩展名。
	Upload(ctx context.Context, file io.Reader, originalFilename string) (*UploadResult, error)
	// Delete 根据 PublicID 删除物理文件，文件不存在时不报错。
	Delete(ctx context.Context, publicID string) error
}
