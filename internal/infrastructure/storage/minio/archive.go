// Package minio archives checkpoint artifacts to S3-compatible object
// storage.  Archiving is strictly optional: a run with no archive configured
// keeps its checkpoints on the local filesystem only.
package minio

import (
	"context"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/turtacn/MolGrammar-Learner/internal/config"
	"github.com/turtacn/MolGrammar-Learner/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MolGrammar-Learner/pkg/errors"
)

// ObjectStoreAPI is the subset of the minio client the archive uses; tests
// substitute a fake.
type ObjectStoreAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	FGetObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.GetObjectOptions) error
}

// Archive uploads checkpoint files under a per-run prefix.
type Archive struct {
	client ObjectStoreAPI
	bucket string
	runID  string
	log    logging.Logger
}

// NewArchive connects to the configured endpoint and ensures the bucket
// exists.  runID becomes the object-name prefix, keeping runs separable.
func NewArchive(cfg config.MinIOConfig, runID string, log logging.Logger) (*Archive, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "failed to create object storage client")
	}
	return NewArchiveWithClient(client, cfg.Bucket, runID, log)
}

// NewArchiveWithClient wires an archive around an existing client.
func NewArchiveWithClient(client ObjectStoreAPI, bucket, runID string, log logging.Logger) (*Archive, error) {
	if client == nil {
		return nil, errors.New(errors.ErrCodeValidation, "object storage client is required")
	}
	if bucket == "" || runID == "" {
		return nil, errors.New(errors.ErrCodeValidation, "bucket and run ID are required")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "failed to check checkpoint bucket")
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeExternalService, "failed to create checkpoint bucket").
				WithDetail(bucket)
		}
		log.Info("created checkpoint bucket", logging.String("bucket", bucket))
	}

	return &Archive{client: client, bucket: bucket, runID: runID, log: log}, nil
}

// Store uploads one local checkpoint file as <runID>/<basename>.
func (a *Archive) Store(ctx context.Context, localPath string) error {
	object := a.runID + "/" + filepath.Base(localPath)
	info, err := a.client.FPutObject(ctx, a.bucket, object, localPath, minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCheckpointFailed, "failed to archive checkpoint").
			WithDetail(object)
	}

	a.log.Info("checkpoint archived",
		logging.String("object", object),
		logging.Int64("bytes", info.Size),
	)
	return nil
}

// Fetch downloads an archived checkpoint to localPath, for resuming a run on
// a different machine.
func (a *Archive) Fetch(ctx context.Context, objectName, localPath string) error {
	object := a.runID + "/" + objectName
	if err := a.client.FGetObject(ctx, a.bucket, object, localPath, minio.GetObjectOptions{}); err != nil {
		return errors.Wrap(err, errors.ErrCodeCheckpointFailed, "failed to fetch archived checkpoint").
			WithDetail(object)
	}
	return nil
}

//Personal.AI order the ending
