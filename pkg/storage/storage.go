package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/SanghaLM/Code-to-Give-Team10-sub000/config"
)

// Object 已保存的录音文件
type Object struct {
	Key string // 存储内部键，用于删除
	URL string // 对外引用，写入 childAudioUrl / parentAudioUrl
}

// Storage 录音文件存储；调用方不解析文件内容
type Storage interface {
	Save(ctx context.Context, key string, r io.Reader, contentType string) (*Object, error)
	Delete(ctx context.Context, key string) error
}

// New 根据配置选择存储实现
func New(ctx context.Context, cfg *config.StorageConfig) (Storage, error) {
	switch cfg.Driver {
	case "local":
		return NewLocal(cfg.LocalPath, cfg.PublicBaseURL)
	case "gcs":
		return NewGCS(ctx, cfg.GCSBucket, cfg.PublicBaseURL)
	default:
		return nil, fmt.Errorf("不支持的存储驱动 %q", cfg.Driver)
	}
}

func publicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
