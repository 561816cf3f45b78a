// Package mirror implements the naming server's optional disaster-recovery
// mirror: a best-effort S3 copy of the crash-recovery registry file and the
// fallback engine's backup tree. It never blocks the dispatcher or the
// local persistence path — every failure is logged and swallowed.
package mirror

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/marmos91/naming-server/internal/logger"
)

// Mirror uploads local files to an S3 bucket on a best-effort basis.
type Mirror struct {
	client *s3.Client
	bucket string
}

// New builds a Mirror against the given bucket/region, using the default
// AWS credential chain (environment, shared config, instance role).
func New(ctx context.Context, bucket, region string) (*Mirror, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &Mirror{client: s3.NewFromConfig(cfg), bucket: bucket}, nil
}

// NewWithClient builds a Mirror around an already-configured S3 client,
// mirroring the teacher's own S3ContentStoreConfig.Client injection point.
// The package tests pass a nil client, since none of their paths reach S3.
func NewWithClient(client *s3.Client, bucket string) *Mirror {
	return &Mirror{client: client, bucket: bucket}
}

// UploadRegistry best-effort uploads the registry flat file to
// "registry/registry.dat". Called after every successful local save; a
// failure here is logged and never returned to the caller.
func (m *Mirror) UploadRegistry(ctx context.Context, path string) {
	m.uploadFile(ctx, path, "registry/registry.dat")
}

// MirrorBackups walks dir and best-effort uploads every regular file under
// it to "backups/<relative path>", intended to run on a periodic schedule
// rather than per-write.
func (m *Mirror) MirrorBackups(ctx context.Context, dir string) {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return nil
		}
		m.uploadFile(ctx, path, filepath.Join("backups", rel))
		return nil
	})
	if err != nil {
		logger.Warn("backup mirror sweep failed", logger.Err(err))
	}
}

func (m *Mirror) uploadFile(ctx context.Context, localPath, key string) {
	start := time.Now()
	f, err := os.Open(localPath)
	if err != nil {
		logger.Warn("mirror: failed to open local file", "path", localPath, logger.Err(err))
		return
	}
	defer f.Close()

	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &m.bucket,
		Key:    &key,
		Body:   f,
	})
	if err != nil {
		logger.Warn("mirror: upload failed", "key", key, logger.Err(err))
		return
	}
	logger.Debug("mirror: upload complete", "key", key, "duration", time.Since(start).String())
}

// Run periodically mirrors dir's backup tree until ctx is cancelled.
func (m *Mirror) Run(ctx context.Context, backupDir string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.MirrorBackups(ctx, backupDir)
		}
	}
}
