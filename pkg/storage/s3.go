package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/JaimeStill/intake/pkg/lifecycle"
)

const s3NoSuchKey = "NoSuchKey"

type s3 struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

func newS3(cfg *Config, logger *slog.Logger) (*s3, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	return &s3{
		client: client,
		bucket: cfg.ContainerName,
		logger: logger,
	}, nil
}

func (s *s3) Start(lc *lifecycle.Coordinator) error {
	s.logger.Info("starting storage system")

	lc.OnStartup(func() {
		exists, err := s.client.BucketExists(lc.Context(), s.bucket)
		if err != nil {
			s.logger.Error("storage bucket check failed", "error", err)
			return
		}
		if !exists {
			s.logger.Error("storage bucket missing", "bucket", s.bucket)
			return
		}

		s.logger.Info("storage bucket ready", "bucket", s.bucket)
	})

	return nil
}

func (s *s3) Download(ctx context.Context, key string) (*Blob, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.mapError(key, err)
	}

	// GetObject is lazy; Stat surfaces missing keys and access errors.
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, s.mapError(key, err)
	}

	return &Blob{
		Body:          obj,
		ContentType:   info.ContentType,
		ContentLength: info.Size,
	}, nil
}

func (s *s3) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == s3NoSuchKey {
			return false, nil
		}
		return false, fmt.Errorf("check object existence %s: %w", key, err)
	}

	return true, nil
}

func (s *s3) mapError(key string, err error) error {
	if minio.ToErrorResponse(err).Code == s3NoSuchKey {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return fmt.Errorf("download object %s: %w", key, err)
}
