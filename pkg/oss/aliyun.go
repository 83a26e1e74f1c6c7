// Package oss 对象存储，用于归档报表文件
package oss

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

// Store 对象存储接口
type Store interface {
	Put(ctx context.Context, objectKey, contentType string, reader io.Reader) (string, error)
	SignedURL(objectKey string, expires time.Duration) (string, error)
}

// AliyunConfig 阿里云 OSS 配置
type AliyunConfig struct {
	Endpoint        string
	AccessKeyID     string
	AccessKeySecret string
	BucketName      string
	Domain          string // 自定义域名（可选）
	BasePath        string // 基础路径，如 "reports/"
}

// AliyunStore 阿里云 OSS 存储
type AliyunStore struct {
	bucket *oss.Bucket
	config *AliyunConfig
}

// NewAliyunStore 创建阿里云 OSS 存储
func NewAliyunStore(config *AliyunConfig) (*AliyunStore, error) {
	client, err := oss.New(config.Endpoint, config.AccessKeyID, config.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("create oss client: %w", err)
	}

	bucket, err := client.Bucket(config.BucketName)
	if err != nil {
		return nil, fmt.Errorf("open bucket %s: %w", config.BucketName, err)
	}

	return &AliyunStore{bucket: bucket, config: config}, nil
}

// Put 上传对象并返回访问地址
func (s *AliyunStore) Put(ctx context.Context, objectKey, contentType string, reader io.Reader) (string, error) {
	fullKey := FullKey(s.config.BasePath, objectKey)
	opts := []oss.Option{oss.WithContext(ctx)}
	if contentType != "" {
		opts = append(opts, oss.ContentType(contentType))
	}
	if err := s.bucket.PutObject(fullKey, reader, opts...); err != nil {
		return "", fmt.Errorf("put object %s: %w", fullKey, err)
	}
	return s.url(fullKey), nil
}

// SignedURL 带签名的临时下载地址
func (s *AliyunStore) SignedURL(objectKey string, expires time.Duration) (string, error) {
	return s.bucket.SignURL(FullKey(s.config.BasePath, objectKey), oss.HTTPGet, int64(expires.Seconds()))
}

func (s *AliyunStore) url(fullKey string) string {
	if s.config.Domain != "" {
		return fmt.Sprintf("%s/%s", strings.TrimSuffix(s.config.Domain, "/"), fullKey)
	}
	return fmt.Sprintf("https://%s.%s/%s", s.config.BucketName, s.config.Endpoint, fullKey)
}

// FullKey 拼接基础路径
func FullKey(basePath, objectKey string) string {
	if basePath == "" {
		return objectKey
	}
	return path.Join(basePath, objectKey)
}

// ReportKey 报表归档对象键，如 payments/2026/10/pagos-2026-10-18.csv
func ReportKey(kind string, day time.Time) string {
	return fmt.Sprintf("%s/%s/%s-%s.csv", kind, day.Format("2006/01"), reportPrefix(kind), day.Format("2006-01-02"))
}

func reportPrefix(kind string) string {
	switch kind {
	case "payments":
		return "pagos"
	case "history":
		return "historial"
	default:
		return kind
	}
}

// MemoryStore 内存存储（开发与测试）
type MemoryStore struct {
	mu    sync.Mutex
	Files map[string][]byte
	Types map[string]string
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{Files: make(map[string][]byte), Types: make(map[string]string)}
}

// Put 保存对象
func (s *MemoryStore) Put(_ context.Context, objectKey, contentType string, reader io.Reader) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Files[objectKey] = buf.Bytes()
	s.Types[objectKey] = contentType
	return "memory://" + objectKey, nil
}

// SignedURL 模拟签名地址
func (s *MemoryStore) SignedURL(objectKey string, expires time.Duration) (string, error) {
	return fmt.Sprintf("memory://%s?expires=%d", objectKey, int64(expires.Seconds())), nil
}

// Get 读取对象
func (s *MemoryStore) Get(objectKey string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.Files[objectKey]
	return b, ok
}
