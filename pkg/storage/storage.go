package storage

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"YourTube/pkg/logger"
	"YourTube/pkg/media"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

type Kind string

const (
	KindVideo Kind = "videos"
	KindImage Kind = "images"
)

// UploadResult 媒体托管返回的结果，视频会额外带上时长
type UploadResult struct {
	URL       string
	ObjectKey string
	Duration  float64
}

// MediaHost 媒体托管：给一个本地文件路径，返回可访问的URL；本地临时文件在调用后尽量删除
type MediaHost interface {
	Upload(ctx context.Context, localPath string, kind Kind) (*UploadResult, error)
	Remove(ctx context.Context, objectKey string) error
}

type minioHost struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
	probe         func(string) (float64, error)
}

func NewMinioHost(endpoint, accessKey, secretKey string, useSSL bool, bucket, publicBaseURL string) (MediaHost, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, errors.WithMessage(err, "create minio client")
	}
	logger.Log.WithField("endpoint", endpoint).Info("MinIO客户端初始化成功")
	return &minioHost{
		client:        client,
		bucket:        bucket,
		publicBaseURL: publicBaseURL,
		probe:         media.ProbeDuration,
	}, nil
}

// 检查存储桶是否存在，不存在则创建
func (h *minioHost) ensureBucket(ctx context.Context) error {
	exists, err := h.client.BucketExists(ctx, h.bucket)
	if err != nil {
		return errors.WithMessage(err, "check bucket")
	}
	if exists {
		return nil
	}
	if err := h.client.MakeBucket(ctx, h.bucket, minio.MakeBucketOptions{Region: "us-east-1"}); err != nil {
		return errors.WithMessage(err, "create bucket")
	}
	return nil
}

// Upload 上传本地文件：1、视频先用ffprobe取时长 2、确保存储桶 3、FPutObject上传 4、不论成功失败都删掉本地临时文件
func (h *minioHost) Upload(ctx context.Context, localPath string, kind Kind) (*UploadResult, error) {
	defer removeLocal(localPath)

	if localPath == "" {
		return nil, errors.New("empty local path")
	}

	result := &UploadResult{}
	if kind == KindVideo {
		d, err := h.probe(localPath)
		if err != nil {
			return nil, err
		}
		result.Duration = d
	}

	if err := h.ensureBucket(ctx); err != nil {
		return nil, err
	}

	result.ObjectKey = ObjectKey(kind, localPath)
	_, err := h.client.FPutObject(ctx, h.bucket, result.ObjectKey, localPath, minio.PutObjectOptions{
		ContentType: ContentType(localPath),
	})
	if err != nil {
		return nil, errors.WithMessagef(err, "upload %s", result.ObjectKey)
	}
	result.URL = PublicURL(h.publicBaseURL, h.bucket, result.ObjectKey)
	return result, nil
}

func (h *minioHost) Remove(ctx context.Context, objectKey string) error {
	if objectKey == "" {
		return nil
	}
	if err := h.client.RemoveObject(ctx, h.bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return errors.WithMessagef(err, "remove %s", objectKey)
	}
	return nil
}

// ObjectKey 形如 videos/<uuid>.mp4
func ObjectKey(kind Kind, localPath string) string {
	return fmt.Sprintf("%s/%s%s", kind, uuid.NewString(), strings.ToLower(filepath.Ext(localPath)))
}

func ContentType(localPath string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(localPath))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func PublicURL(base, bucket, objectKey string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(base, "/"), bucket, objectKey)
}

func removeLocal(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Log.WithError(err).WithField("path", path).Warn("删除本地临时文件失败")
	}
}
