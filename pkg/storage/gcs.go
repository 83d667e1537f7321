package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCS Google Cloud Storage 存储
type GCS struct {
	client        *gcs.Client
	bucket        string
	publicBaseURL string
}

// NewGCS 使用应用默认凭据创建 GCS 客户端
func NewGCS(ctx context.Context, bucket, publicBaseURL string) (*GCS, error) {
	client, err := gcs.NewClient(ctx, option.WithScopes(gcs.ScopeReadWrite))
	if err != nil {
		return nil, fmt.Errorf("创建 GCS 客户端失败: %w", err)
	}
	if publicBaseURL == "" || publicBaseURL[0] == '/' {
		publicBaseURL = "https://storage.googleapis.com/" + bucket
	}
	return &GCS{client: client, bucket: bucket, publicBaseURL: publicBaseURL}, nil
}

func (s *GCS) Save(ctx context.Context, key string, r io.Reader, contentType string) (*Object, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("写入 GCS 失败: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("关闭 GCS writer 失败: %w", err)
	}

	return &Object{Key: key, URL: publicURL(s.publicBaseURL, key)}, nil
}

func (s *GCS) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("删除 GCS 对象 %q 失败: %w", key, err)
	}
	return nil
}

// Close 关闭 GCS 客户端
func (s *GCS) Close() error {
	return s.client.Close()
}
