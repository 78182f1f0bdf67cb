// Package archive persists assembled dashboard snapshots to S3 so recently
// rendered dashboards can be replayed without refetching the upstream
// providers. Payloads are JSON compressed with zstd.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"nimbus/internal/dashboard"
	"nimbus/internal/types"
)

// S3Client abstracts S3 object access for testability.
type S3Client interface {
	// GetObject fetches an object body by bucket and key.
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)

	// PutObject writes an object body under bucket and key.
	PutObject(ctx context.Context, bucket, key string, body []byte) error
}

// Archiver stores one snapshot per coordinate and hour. A second render in
// the same hour overwrites the first; history is one object per hour.
type Archiver struct {
	s3     S3Client
	bucket string
	logger *slog.Logger

	encoderPool sync.Pool
	decoderPool sync.Pool
}

// NewArchiver creates an Archiver writing to the given bucket.
func NewArchiver(s3Client S3Client, bucket string, logger *slog.Logger) *Archiver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Archiver{
		s3:     s3Client,
		bucket: bucket,
		logger: logger,
		encoderPool: sync.Pool{
			New: func() any {
				e, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
				if err != nil {
					// Cannot fail with nil writer and default options.
					panic(fmt.Sprintf("failed to create zstd encoder: %v", err))
				}
				return e
			},
		},
		decoderPool: sync.Pool{
			New: func() any {
				d, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
				if err != nil {
					panic(fmt.Sprintf("failed to create zstd decoder: %v", err))
				}
				return d
			},
		},
	}
}

// snapshotKey builds the object key for a coordinate and timestamp,
// truncated to the hour.
func snapshotKey(lat, lon float64, at time.Time) string {
	return fmt.Sprintf("snapshots/%.4f,%.4f/%s.json.zst",
		lat, lon, at.UTC().Format("2006-01-02/15"))
}

// Save persists one dashboard snapshot. Implements dashboard.SnapshotStore.
func (a *Archiver) Save(ctx context.Context, lat, lon float64, at time.Time, d *dashboard.Dashboard) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected,
			"failed to encode snapshot", err)
	}

	encoder := a.encoderPool.Get().(*zstd.Encoder)
	compressed := encoder.EncodeAll(raw, nil)
	a.encoderPool.Put(encoder)

	key := snapshotKey(lat, lon, at)
	if err := a.s3.PutObject(ctx, a.bucket, key, compressed); err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected,
			"failed to store snapshot", err)
	}

	a.logger.DebugContext(ctx, "snapshot stored",
		"key", key, "raw_bytes", len(raw), "stored_bytes", len(compressed))
	return nil
}

// Load fetches and decodes the snapshot for a coordinate and hour. A missing
// object surfaces as ErrCodeNotFoundSnapshot.
func (a *Archiver) Load(ctx context.Context, lat, lon float64, at time.Time) (*dashboard.Dashboard, error) {
	key := snapshotKey(lat, lon, at)

	body, err := a.s3.GetObject(ctx, a.bucket, key)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	compressed, err := io.ReadAll(body)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected,
			"failed to read snapshot body", err)
	}

	decoder := a.decoderPool.Get().(*zstd.Decoder)
	raw, err := decoder.DecodeAll(compressed, nil)
	a.decoderPool.Put(decoder)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected,
			"failed to decompress snapshot", err)
	}

	var d dashboard.Dashboard
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(&d); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected,
			"failed to decode snapshot", err)
	}
	return &d, nil
}
