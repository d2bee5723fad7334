package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const s3OpTimeout = 30 * time.Second

// S3Config 描述 S3 後端；Bucket 為空表示不啟用。
type S3Config struct {
	Bucket          string
	Key             string
	Region          string
	Endpoint        string // 自建 S3 相容服務（MinIO 等）時填寫
	AccessKeyID     string
	SecretAccessKey string
}

func (c S3Config) Enabled() bool { return c.Bucket != "" }

// S3Blob 以單一 S3 物件保存資料集。
type S3Blob struct {
	client *s3.Client
	bucket string
	key    string
}

// NewS3Blob 依 S3Config 建立 client。未提供金鑰時走 AWS 預設憑證鏈。
func NewS3Blob(ctx context.Context, c S3Config) (*S3Blob, error) {
	if c.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	if c.Key == "" {
		c.Key = "stake.json"
	}
	opts := []func(*config.LoadOptions) error{}
	if c.Region != "" {
		opts = append(opts, config.WithRegion(c.Region))
	}
	if c.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     c.AccessKeyID,
				SecretAccessKey: c.SecretAccessKey,
			}, nil
		})))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Blob{client: client, bucket: c.Bucket, key: c.Key}, nil
}

func (b *S3Blob) Get(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s3OpTimeout)
	defer cancel()

	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		var nf *types.NotFound
		if errors.As(err, &nsk) || errors.As(err, &nf) {
			return nil, errors.Join(ErrNotExist, err)
		}
		return nil, err
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

func (b *S3Blob) Put(ctx context.Context, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, s3OpTimeout)
	defer cancel()

	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(b.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	return err
}

func (b *S3Blob) Name() string { return "s3://" + b.bucket + "/" + b.key }
