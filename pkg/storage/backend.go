// Package storage abstracts where instances are read from and reports are written to.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
)

// ErrNotFound is returned when a key does not exist in the store.
var ErrNotFound = errors.New("object not found")

// BlobStore defines the interface for abstract storage backends.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

// Location is a parsed storage URI.
type Location struct {
	Bucket string // empty for the local filesystem
	Root   string // local directory
	Key    string
}

// IsS3 reports whether the location points at a bucket.
func (l Location) IsS3() bool {
	return l.Bucket != ""
}

// ParseURI splits "s3://bucket/key" or a local path into a Location.
// Local paths are split into their directory and base name.
func ParseURI(uri string) (Location, error) {
	if rest, ok := strings.CutPrefix(uri, "s3://"); ok {
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket == "" {
			return Location{}, fmt.Errorf("invalid s3 uri %q: missing bucket", uri)
		}
		return Location{Bucket: bucket, Key: key}, nil
	}
	if uri == "" {
		return Location{}, errors.New("empty storage path")
	}
	return Location{Root: filepath.Dir(uri), Key: filepath.Base(uri)}, nil
}

// Open resolves a URI to a store and the key inside it.
func Open(ctx context.Context, uri string) (BlobStore, string, error) {
	loc, err := ParseURI(uri)
	if err != nil {
		return nil, "", err
	}
	if !loc.IsS3() {
		return NewLocalStore(loc.Root), loc.Key, nil
	}
	store, err := openBucket(ctx, loc.Bucket)
	if err != nil {
		return nil, "", err
	}
	return store, loc.Key, nil
}

func openBucket(ctx context.Context, bucket string) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return NewS3Store(cfg, bucket), nil
}
