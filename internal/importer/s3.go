package importer

import (
	"context"
	"fmt"
	"log"
	"path"

	"github.com/hazadus/go-playlist/internal/metadata"
	"github.com/hazadus/go-playlist/internal/s3"
)

// S3 скачивает объекты по ссылкам s3://bucket/key в библиотеку
type S3 struct {
	Library    *Library
	Downloader *s3.Downloader
}

// NewS3 создает импортер из S3
func NewS3(library *Library, downloader *s3.Downloader) *S3 {
	return &S3{Library: library, Downloader: downloader}
}

// Import скачивает объект и сохраняет его в библиотеку
func (i *S3) Import(ctx context.Context, source string) (Result, error) {
	bucket, key, err := s3.ParseURL(source)
	if err != nil {
		return Result{}, err
	}

	obj, err := i.Downloader.Head(ctx, bucket, key)
	if err != nil {
		return Result{}, err
	}
	if !isGeneric(obj.ContentType) && !metadata.IsAudio(obj.ContentType) {
		return Result{ContentType: obj.ContentType}, ErrNotAudio
	}

	name := path.Base(key)
	file, err := i.Library.create(name, obj.ContentType)
	if err != nil {
		return Result{}, err
	}
	ref := file.Name()

	size, err := i.Downloader.Download(ctx, bucket, key, file)
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("ошибка записи файла: %w", closeErr)
	}
	if err != nil {
		discard(ref)
		return Result{}, err
	}

	contentType := obj.ContentType
	if isGeneric(contentType) {
		contentType, err = i.Library.extractor.DetectFileContentType(ref)
		if err != nil || !metadata.IsAudio(contentType) {
			discard(ref)
			return Result{ContentType: contentType}, ErrNotAudio
		}
	}
	ref = i.Library.ensureExtension(ref, contentType)

	log.Printf("Скачан объект %s -> %s (%d байт)", source, ref, size)
	return i.Library.describe(ref, name, contentType, size), nil
}
