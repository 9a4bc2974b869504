package storage

import (
	"bytes"
	"context"
	"io"
	"sync/atomic"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"hotspot-service/internal/config"
)

// MinioBlobStore keeps blobs in a MinIO (S3 compatible) bucket.
type MinioBlobStore struct {
	client *minio.Client
	bucket string
	logger zerolog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// NewMinioClient initializes a MinIO client and ensures the bucket exists.
func NewMinioClient(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*minio.Client, error) {
	minioClient, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioSSL,
	})
	if err != nil {
		return nil, err
	}
	exists, err := minioClient.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, errors.Wrap(err, "checking bucket")
	}
	if !exists {
		if err := minioClient.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, errors.Wrap(err, "creating bucket")
		}
		logger.Info().Str("bucket", cfg.MinioBucket).Msg("Created bucket")
	}
	return minioClient, nil
}

// NewMinioBlobStore wraps an initialized client.
func NewMinioBlobStore(client *minio.Client, bucket string, logger zerolog.Logger) *MinioBlobStore {
	return &MinioBlobStore{
		client: client,
		bucket: bucket,
		logger: logger.With().Str("component", "minio_blob").Str("bucket", bucket).Logger(),
	}
}

func (s *MinioBlobStore) Name() string {
	return "minio"
}

func (s *MinioBlobStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return errors.Wrap(err, "failed to upload to MinIO")
	}
	s.logger.Debug().Str("key", key).Int("bytes", len(data)).Msg("Stored blob")
	return nil
}

func (s *MinioBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.translate(err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, s.translate(err)
	}
	s.hits.Add(1)
	return data, nil
}

func (s *MinioBlobStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if isNoSuchKey(err) {
		return false, nil
	}
	return false, errors.Wrap(err, "stat object")
}

func (s *MinioBlobStore) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrap(err, "failed to remove from MinIO")
	}
	return nil
}

func (s *MinioBlobStore) Stats() BlobStats {
	hits, misses := s.hits.Load(), s.misses.Load()
	return BlobStats{
		Name:    "MinIO",
		Hits:    hits,
		Misses:  misses,
		HitRate: hitRate(hits, misses),
	}
}

func (s *MinioBlobStore) translate(err error) error {
	if isNoSuchKey(err) {
		s.misses.Add(1)
		return ErrBlobNotFound
	}
	return errors.Wrap(err, "failed to read from MinIO")
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
