// Package s3 предоставляет функционал для скачивания треков из Amazon S3
package s3

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// Scheme - схема ссылок на объекты S3
const Scheme = "s3"

// Config содержит настройки для S3
type Config struct {
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string
}

// DownloadAPI - часть s3manager.Downloader, которой мы пользуемся
type DownloadAPI interface {
	DownloadWithContext(ctx aws.Context, w io.WriterAt, input *s3.GetObjectInput, options ...func(*s3manager.Downloader)) (int64, error)
}

// HeadAPI - часть клиента S3 для чтения заголовков объекта
type HeadAPI interface {
	HeadObjectWithContext(ctx aws.Context, input *s3.HeadObjectInput, opts ...request.Option) (*s3.HeadObjectOutput, error)
}

// Object описывает объект в бакете
type Object struct {
	Bucket      string
	Key         string
	ContentType string
	Size        int64
}

// Downloader обертка для S3 downloader
type Downloader struct {
	s3Downloader DownloadAPI
	s3Client     HeadAPI
}

// NewDownloader создает новый S3 downloader
func NewDownloader(config *Config) (*Downloader, error) {
	awsConfig := &aws.Config{
		Region: aws.String(config.Region),
		Credentials: credentials.NewStaticCredentials(
			config.AccessKey,
			config.SecretKey,
			"",
		),
	}

	// Если указан endpoint, добавляем его
	if config.Endpoint != "" {
		awsConfig.Endpoint = aws.String(config.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания AWS сессии: %w", err)
	}

	return NewDownloaderWithAPI(s3manager.NewDownloader(sess), s3.New(sess)), nil
}

// NewDownloaderWithAPI собирает downloader из готовых клиентов
func NewDownloaderWithAPI(downloader DownloadAPI, client HeadAPI) *Downloader {
	return &Downloader{
		s3Downloader: downloader,
		s3Client:     client,
	}
}

// ParseURL разбирает ссылку вида s3://bucket/key
func ParseURL(raw string) (bucket, key string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("ошибка разбора ссылки: %w", err)
	}
	if u.Scheme != Scheme {
		return "", "", fmt.Errorf("ожидалась ссылка s3://, получено: %s", raw)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", fmt.Errorf("в ссылке должны быть бакет и ключ: %s", raw)
	}
	return u.Host, key, nil
}

// Head возвращает тип и размер объекта
func (d *Downloader) Head(ctx context.Context, bucket, key string) (Object, error) {
	out, err := d.s3Client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return Object{}, fmt.Errorf("ошибка получения информации об объекте: %w", err)
	}

	return Object{
		Bucket:      bucket,
		Key:         key,
		ContentType: aws.StringValue(out.ContentType),
		Size:        aws.Int64Value(out.ContentLength),
	}, nil
}

// Download скачивает объект в w и возвращает число записанных байт
func (d *Downloader) Download(ctx context.Context, bucket, key string, w io.WriterAt) (int64, error) {
	n, err := d.s3Downloader.DownloadWithContext(ctx, w, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, fmt.Errorf("ошибка скачивания: %w", err)
	}
	return n, nil
}
