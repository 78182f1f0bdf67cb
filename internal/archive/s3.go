package archive

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"nimbus/internal/types"
)

// awsS3Client adapts *s3.Client to the S3Client interface.
type awsS3Client struct {
	client *s3.Client
}

// NewAWSS3Client wraps an aws-sdk-go-v2 S3 client.
func NewAWSS3Client(client *s3.Client) S3Client {
	return &awsS3Client{client: client}
}

func (c *awsS3Client) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	out, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, types.NewAppError(types.ErrCodeNotFoundSnapshot,
				"no snapshot stored for this location and hour", err)
		}
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected,
			"failed to fetch snapshot object", err)
	}
	return out.Body, nil
}

func (c *awsS3Client) PutObject(ctx context.Context, bucket, key string, body []byte) error {
	_, err := c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/zstd"),
	})
	return err
}
