package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"hn-digest/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	log "github.com/sirupsen/logrus"
)

// presignExpiry 预签名URL有效期
const presignExpiry = 7 * 24 * time.Hour

// objectAPI 是用到的 minio.Client 方法子集
type objectAPI interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

// MinioClient 是MinIO存储客户端的封装
type MinioClient struct {
	client     objectAPI
	bucketName string
	publicURL  string
}

// NewMinioClient 创建一个新的MinIO客户端
func NewMinioClient(cfg *config.MinIOConfig) (*MinioClient, error) {
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("解析MinIO endpoint失败: %w", err)
	}

	secure := u.Scheme == "https"
	endpoint := u.Host
	if endpoint == "" {
		endpoint = "localhost:9000"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	// 确保bucket存在
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("检查bucket是否存在失败: %w", err)
	}
	if !exists {
		log.Printf("Bucket %s 不存在，正在创建...", cfg.BucketName)
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("创建bucket失败: %w", err)
		}
		log.Printf("Bucket %s 创建成功", cfg.BucketName)
	}

	return &MinioClient{
		client:     client,
		bucketName: cfg.BucketName,
		publicURL:  strings.TrimRight(cfg.PublicURL, "/"),
	}, nil
}

// Upload 上传本地音频文件并返回访问URL，无论成功与否都会删除本地文件
func (c *MinioClient) Upload(ctx context.Context, localPath string) (string, error) {
	defer func() {
		if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
			log.Warnf("删除临时文件 %s 失败: %v", localPath, err)
		}
	}()

	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("打开文件失败: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("读取文件信息失败: %w", err)
	}

	objectName := filepath.Base(localPath)
	info, err := c.client.PutObject(ctx, c.bucketName, objectName, f, stat.Size(), minio.PutObjectOptions{
		ContentType: contentType(objectName),
	})
	if err != nil {
		return "", fmt.Errorf("上传文件失败: %w", err)
	}
	log.Printf("文件 %s 上传成功，大小: %d", objectName, info.Size)

	return c.ObjectURL(ctx, objectName)
}

// ObjectURL 有公开地址时拼接公开URL，否则生成预签名URL
func (c *MinioClient) ObjectURL(ctx context.Context, objectName string) (string, error) {
	if c.publicURL != "" {
		return c.publicURL + "/" + objectName, nil
	}

	presigned, err := c.client.PresignedGetObject(ctx, c.bucketName, objectName, presignExpiry, nil)
	if err != nil {
		return "", fmt.Errorf("生成预签名URL失败: %w", err)
	}
	return presigned.String(), nil
}

// DeleteFile 从MinIO删除文件
func (c *MinioClient) DeleteFile(ctx context.Context, objectName string) error {
	if err := c.client.RemoveObject(ctx, c.bucketName, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("删除对象 %s 失败: %w", objectName, err)
	}
	return nil
}

// ListFiles 列出指定前缀的所有文件
func (c *MinioClient) ListFiles(ctx context.Context, prefix string) ([]string, error) {
	objectCh := c.client.ListObjects(ctx, c.bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	var objects []string
	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("列出对象失败: %w", object.Err)
		}
		objects = append(objects, object.Key)
	}
	return objects, nil
}

// ObjectExists 检查对象是否存在
func (c *MinioClient) ObjectExists(ctx context.Context, objectName string) (bool, error) {
	_, err := c.client.StatObject(ctx, c.bucketName, objectName, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return false, nil
	}
	return false, fmt.Errorf("获取对象信息失败: %w", err)
}

// ObjectNameFromURL 从公开URL或预签名URL中取出对象名
func ObjectNameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" {
		return raw
	}
	return path.Base(u.Path)
}

func contentType(objectName string) string {
	switch strings.ToLower(filepath.Ext(objectName)) {
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	default:
		return "application/octet-stream"
	}
}
