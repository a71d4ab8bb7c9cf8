package receipt

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/WeSplit-io/WeSplit-Backend/services/monitoring/logging"
	"github.com/WeSplit-io/WeSplit-Backend/utils"
)

// ObjectUploader archives receipt images. Returns the stored object key.
type ObjectUploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// S3Store keeps the original receipt images so a split can be re-checked
// against its source long after the analysis ran.
type S3Store struct {
	client *s3.S3
	bucket string
	logger *logging.Logger
}

// NewS3Store builds the uploader from the AWS keys in config. Returns nil
// when no bucket is configured; callers treat a nil store as
// archive-disabled rather than an error.
func NewS3Store(config *utils.Config, logger *logging.Logger) *S3Store {
	if config.ReceiptBucket == "" {
		logger.Info("no receipt bucket configured, image archiving disabled")
		return nil
	}

	sess := session.Must(session.NewSession(
		&aws.Config{
			Region:      aws.String(config.AWSRegion),
			Credentials: credentials.NewStaticCredentials(config.AWSAccessKeyID, config.AWSSecretAccessKey, ""),
		},
	))

	return &S3Store{
		client: s3.New(sess),
		bucket: config.ReceiptBucket,
		logger: logger,
	}
}

func (s *S3Store) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", key, err)
	}

	s.logger.Info(fmt.Sprintf("archived receipt image %s (%d bytes)", key, len(data)))
	return key, nil
}
