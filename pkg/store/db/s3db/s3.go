// Package s3db stores one object per key in an S3-compatible bucket.
//
// Object names are the configured prefix followed by the hex encoding of the
// key. Hex preserves byte order and the prefix relation between keys, so a
// prefix scan maps onto a ListObjects prefix listing.
package s3db

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/PeterCxy/itte/pkg/logger"
	"github.com/PeterCxy/itte/pkg/store/db"
)

const backendName = "s3"

// Options configures the bucket connection.
type Options struct {
	Endpoint     string
	AccessKey    string
	SecretKey    string
	Bucket       string
	Region       string
	Prefix       string
	UseSSL       bool
	CreateBucket bool
}

// Backend is a db.Backend over minio-go.
type Backend struct {
	client *minio.Client
	bucket string
	prefix string
}

// Open connects and checks that the bucket exists, creating it when
// opts.CreateBucket is set.
func Open(ctx context.Context, opts Options) (*Backend, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 client: %w", err)
	}
	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("s3 bucket check %s: %w", opts.Bucket, err)
	}
	if !exists {
		if !opts.CreateBucket {
			return nil, fmt.Errorf("s3 bucket %s does not exist", opts.Bucket)
		}
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{Region: opts.Region}); err != nil {
			return nil, fmt.Errorf("s3 create bucket %s: %w", opts.Bucket, err)
		}
		logger.Info("s3_bucket_created", "bucket", opts.Bucket)
	}
	logger.Info("s3_connected", "endpoint", opts.Endpoint, "bucket", opts.Bucket, "prefix", opts.Prefix)
	return &Backend{client: client, bucket: opts.Bucket, prefix: opts.Prefix}, nil
}

func (b *Backend) Name() string { return backendName }

func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	defer db.ObserveOp(backendName, "get", time.Now())
	obj, err := b.client.GetObject(ctx, b.bucket, objectName(b.prefix, key), minio.GetObjectOptions{})
	if err != nil {
		return nil, mapErr("get", err)
	}
	defer obj.Close()
	// GetObject is lazy; a missing object surfaces on the first read.
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, mapErr("get", err)
	}
	return data, nil
}

func (b *Backend) Put(ctx context.Context, key string, value []byte) error {
	defer db.ObserveOp(backendName, "put", time.Now())
	_, err := b.client.PutObject(ctx, b.bucket, objectName(b.prefix, key),
		bytes.NewReader(value), int64(len(value)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("s3 put: %w", err)
	}
	return nil
}

func (b *Backend) ListPrefix(ctx context.Context, prefix string, limit int, cursor string) (db.ListResult, error) {
	defer db.ObserveOp(backendName, "list", time.Now())
	if err := db.ValidateLimit(limit); err != nil {
		return db.ListResult{}, err
	}
	after, err := db.ResumeAfter(prefix, cursor)
	if err != nil {
		return db.ListResult{}, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	opts := minio.ListObjectsOptions{
		Prefix:    objectName(b.prefix, prefix),
		Recursive: true,
	}
	if after != "" {
		opts.StartAfter = objectName(b.prefix, after)
	}

	probed := make([]string, 0, limit+1)
	for obj := range b.client.ListObjects(ctx, b.bucket, opts) {
		if obj.Err != nil {
			return db.ListResult{}, fmt.Errorf("s3 list: %w", obj.Err)
		}
		key, err := keyFromObject(b.prefix, obj.Key)
		if err != nil {
			logger.Warn("s3_foreign_object_skipped", "object", obj.Key, "error", err)
			continue
		}
		probed = append(probed, key)
		if len(probed) > limit {
			break
		}
	}
	return db.Page(probed, limit), nil
}

// Ready checks that the bucket is reachable.
func (b *Backend) Ready() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ok, err := b.client.BucketExists(ctx, b.bucket)
	return err == nil && ok
}

// Close is a no-op; minio clients hold no persistent connections to release.
func (b *Backend) Close() error { return nil }

func objectName(prefix, key string) string {
	return prefix + hex.EncodeToString([]byte(key))
}

func keyFromObject(prefix, name string) (string, error) {
	if !strings.HasPrefix(name, prefix) {
		return "", fmt.Errorf("object %q outside prefix %q", name, prefix)
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(name, prefix))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func mapErr(op string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return db.ErrNotFound
	}
	return fmt.Errorf("s3 %s: %w", op, err)
}
