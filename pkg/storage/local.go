package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local 本地磁盘存储，开发环境使用；文件由 router 以静态目录对外提供
type Local struct {
	basePath      string
	publicBaseURL string
}

// NewLocal 创建本地存储并确保根目录存在
func NewLocal(basePath, publicBaseURL string) (*Local, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("创建存储目录失败: %w", err)
	}
	return &Local{basePath: basePath, publicBaseURL: publicBaseURL}, nil
}

// BasePath 返回存储根目录
func (s *Local) BasePath() string { return s.basePath }

func (s *Local) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("非法存储键 %q", key)
	}
	return filepath.Join(s.basePath, clean), nil
}

func (s *Local) Save(ctx context.Context, key string, r io.Reader, _ string) (*Object, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return nil, fmt.Errorf("创建文件目录失败: %w", err)
	}

	dst, err := os.Create(p)
	if err != nil {
		return nil, fmt.Errorf("创建目标文件失败: %w", err)
	}
	if _, err := io.Copy(dst, r); err != nil {
		_ = dst.Close()
		_ = os.Remove(p)
		return nil, fmt.Errorf("写入文件失败: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(p)
		return nil, fmt.Errorf("关闭文件失败: %w", err)
	}

	return &Object{Key: key, URL: publicURL(s.publicBaseURL, key)}, nil
}

func (s *Local) Delete(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("删除文件失败: %w", err)
	}
	return nil
}
