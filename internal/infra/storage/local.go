/*
 * @Description: 本机磁盘存储驱动
 * @Author: 安知鱼
 * @Date: 2025-06-28 00:21:55
 * @LastEditTime: 2025-09-20 11:20:43
 * @LastEditors: 安知鱼
 */
package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalProvider 实现了 Provider 接口，把封面图片写入本机磁盘。
// 文件按 年/月 归档，文件名使用 UUID，PublicID 即相对于根目录的路径。
type LocalProvider struct {
	baseDir string
	baseURL string
}

// NewLocalProvider 是 LocalProvider 的构造函数。
// baseDir 是磁盘根目录，baseURL 是对外暴露的 URL 前缀。
func NewLocalProvider(baseDir, baseURL string) (*LocalProvider, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("创建上传目录 '%s' 失败: %w", baseDir, err)
	}
	return &LocalProvider{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Upload 将文件流写入磁盘并返回访问信息。
func (p *LocalProvider) Upload(ctx context.Context, file io.Reader, originalFilename string) (*UploadResult, error) {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	if !allowedImageExts[ext] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, ext)
	}

	now := time.Now()
	relDir := fmt.Sprintf("%d/%02d", now.Year(), now.Month())
	physicalDir := filepath.Join(p.baseDir, relDir)
	if err := os.MkdirAll(physicalDir, 0755); err != nil {
		return nil, fmt.Errorf("创建目录 '%s' 失败: %w", physicalDir, err)
	}

	filename := uuid.New().String() + ext
	physicalPath := filepath.Join(physicalDir, filename)

	dest, err := os.Create(physicalPath)
	if err != nil {
		return nil, fmt.Errorf("创建文件 '%s' 失败: %w", physicalPath, err)
	}
	defer dest.Close()

	size, err := io.Copy(dest, file)
	if err != nil {
		os.Remove(physicalPath)
		return nil, fmt.Errorf("写入文件内容失败: %w", err)
	}
	if err := dest.Sync(); err != nil {
		return nil, fmt.Errorf("同步文件到磁盘失败: %w", err)
	}

	publicID := path.Join(relDir, filename)
	return &UploadResult{
		PublicID: publicID,
		URL:      p.baseURL + "/" + publicID,
		Size:     size,
	}, nil
}

// Delete 根据 PublicID 删除物理文件。
func (p *LocalProvider) Delete(ctx context.Context, publicID string) error {
	// PublicID 来自数据库，仍然拒绝任何越出根目录的路径
	cleaned := path.Clean("/" + publicID)
	physicalPath := filepath.Join(p.baseDir, filepath.FromSlash(cleaned))

	if err := os.Remove(physicalPath); err != nil {
		if os.IsNotExist(err) {
			log.Printf("[LocalProvider.Delete] 物理文件已不存在，跳过: %s", physicalPath)
			return nil
		}
		return fmt.Errorf("删除文件 '%s' 失败: %w", physicalPath, err)
	}
	return nil
}
