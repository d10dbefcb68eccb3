// Package storage defines the blob store contract used for letter PDFs,
// dispatched archives and provider acknowledgement files.
package storage

import (
	"context"
	"errors"
	"time"
)

var ErrObjectNotFound = errors.New("object_not_found")

// Retention tag applied to short-lived archives.
const (
	RetentionTagKey  = "retention"
	RetentionOneWeek = "ONE_WEEK"
)

// Object describes a stored blob.
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ListOptions filters a bucket listing.
type ListOptions struct {
	Prefix        string
	Suffix        string
	ModifiedAfter time.Time
}

// BlobStore is the opaque key-value blob store the pipeline reads letter
// PDFs from and writes archives to. Listings are returned in ascending key
// order.
type BlobStore interface {
	List(ctx context.Context, bucket string, opts ListOptions) ([]Object, error)
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Head(ctx context.Context, bucket, key string) (Object, error)
	Put(ctx context.Context, bucket, key string, body []byte, tags map[string]string) error
	Copy(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error
	Delete(ctx context.Context, bucket, key string) error
}
