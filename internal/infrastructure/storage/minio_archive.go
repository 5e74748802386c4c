// Package storage archiva los lotes RIPS generados en un bucket MinIO / S3.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/jhoicas/facturacion-clinica/internal/application/billing"
	"github.com/jhoicas/facturacion-clinica/internal/domain"
)

// Options conexión al servidor de objetos.
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
}

var _ billing.RIPSArchive = (*MinioArchive)(nil)

// MinioArchive implementa billing.RIPSArchive.
type MinioArchive struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewMinioArchive crea el cliente. No hace llamadas de red; ver EnsureBucket.
func NewMinioArchive(opts Options) (*MinioArchive, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio: crear cliente: %w", err)
	}
	return &MinioArchive{client: client, bucket: opts.Bucket, prefix: "rips"}, nil
}

// EnsureBucket crea el bucket si no existe.
func (a *MinioArchive) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("minio: consultar bucket %s: %w", a.bucket, err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("minio: crear bucket %s: %w", a.bucket, err)
	}
	return nil
}

// Store sube el JSON del lote y devuelve "s3://bucket/rips/<name>".
func (a *MinioArchive) Store(ctx context.Context, name string, data []byte) (string, error) {
	key := path.Join(a.prefix, name)
	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", errors.Join(domain.ErrDependencyUnavailable, fmt.Errorf("minio: subir %s: %w", key, err))
	}
	return "s3://" + a.bucket + "/" + key, nil
}
