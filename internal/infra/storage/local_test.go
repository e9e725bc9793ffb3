package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalProviderUpload(t *testing.T) {
	p, err := NewLocalProvider(t.TempDir(), "/uploads/")
	if err != nil {
		t.Fatalf("NewLocalProvider: %v", err)
	}

	t.Run("图片写入磁盘并返回访问信息", func(t *testing.T) {
		content := "fake-png-bytes"
		result, err := p.Upload(context.Background(), strings.NewReader(content), "cover.PNG")
		if err != nil {
			t.Fatalf("Upload: %v", err)
		}
		if result.Size != int64(len(content)) {
			t.Errorf("Size = %d, 期望 %d", result.Size, len(content))
		}
		if !strings.HasPrefix(result.URL, "/uploads/") {
			t.Errorf("URL 应以 baseURL 开头: %q", result.URL)
		}
		if !strings.HasSuffix(result.PublicID, ".png") {
			t.Errorf("扩展名应被小写保留: %q", result.PublicID)
		}

		physical := filepath.Join(p.baseDir, filepath.FromSlash(result.PublicID))
		data, err := os.ReadFile(physical)
		if err != nil {
			t.Fatalf("读取写入的文件失败: %v", err)
		}
		if string(data) != content {
			t.Errorf("文件内容不一致: %q", data)
		}
	})

	t.Run("不支持的扩展名被拒绝", func(t *testing.T) {
		_, err := p.Upload(context.Background(), strings.NewReader("x"), "malware.exe")
		if !errors.Is(err, ErrUnsupportedFileType) {
			t.Errorf("期望 ErrUnsupportedFileType, 实际 %v", err)
		}
	})
}

func TestLocalProviderDelete(t *testing.T) {
	p, err := NewLocalProvider(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("NewLocalProvider: %v", err)
	}

	t.Run("删除已上传的文件", func(t *testing.T) {
		result, err := p.Upload(context.Background(), strings.NewReader("abc"), "a.jpg")
		if err != nil {
			t.Fatalf("Upload: %v", err)
		}
		if err := p.Delete(context.Background(), result.PublicID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		physical := filepath.Join(p.baseDir, filepath.FromSlash(result.PublicID))
		if _, err := os.Stat(physical); !os.IsNotExist(err) {
			t.Errorf("文件应已被删除: %v", err)
		}
	})

	t.Run("文件不存在时静默成功", func(t *testing.T) {
		if err := p.Delete(context.Background(), "2025/01/missing.png"); err != nil {
			t.Errorf("缺失文件的删除应返回 nil, 实际 %v", err)
		}
	})

	t.Run("越出根目录的路径被收敛在根目录内", func(t *testing.T) {
		outside := filepath.Join(filepath.Dir(p.baseDir), "victim.txt")
		if err := os.WriteFile(outside, []byte("keep"), 0644); err != nil {
			t.Fatalf("准备目录外文件失败: %v", err)
		}
		_ = p.Delete(context.Background(), "../victim.txt")
		if _, err := os.Stat(outside); err != nil {
			t.Errorf("根目录外的文件不应被删除: %v", err)
		}
	})
}
