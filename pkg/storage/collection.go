package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

// InstanceExt is the extension of instance files picked up from a collection.
const InstanceExt = ".txt"

// IsCollection reports whether uri names a directory or key prefix rather
// than a single object. A trailing "/" always marks a collection, as does a
// bare bucket or an existing local directory.
func IsCollection(uri string) bool {
	if strings.HasSuffix(uri, "/") {
		return true
	}
	if rest, ok := strings.CutPrefix(uri, "s3://"); ok {
		_, key, _ := strings.Cut(rest, "/")
		return key == ""
	}
	fi, err := os.Stat(uri)
	return err == nil && fi.IsDir()
}

// ExpandInputs resolves uri to the instance URIs it names. A single object
// resolves to itself. A collection is listed and every key ending in
// InstanceExt is returned as a full URI in lexical order; an empty collection
// is an error.
func ExpandInputs(ctx context.Context, uri string) ([]string, error) {
	if !IsCollection(uri) {
		return []string{uri}, nil
	}

	var (
		store  BlobStore
		prefix string
		toURI  func(key string) string
	)
	if rest, ok := strings.CutPrefix(uri, "s3://"); ok {
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket == "" {
			return nil, fmt.Errorf("invalid s3 uri %q: missing bucket", uri)
		}
		s3store, err := openBucket(ctx, bucket)
		if err != nil {
			return nil, err
		}
		store, prefix = s3store, key
		toURI = func(k string) string { return "s3://" + bucket + "/" + k }
	} else {
		root := filepath.Clean(uri)
		store = NewLocalStore(root)
		toURI = func(k string) string { return filepath.Join(root, filepath.FromSlash(k)) }
	}

	return expand(ctx, store, prefix, uri, toURI)
}

func expand(ctx context.Context, store BlobStore, prefix, uri string, toURI func(string) string) ([]string, error) {
	keys, err := store.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", uri, err)
	}

	var inputs []string
	for _, k := range keys {
		base := path.Base(k)
		if strings.HasPrefix(base, ".") || path.Ext(base) != InstanceExt {
			continue
		}
		inputs = append(inputs, toURI(k))
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no %s instances under %s: %w", InstanceExt, uri, ErrNotFound)
	}
	slices.Sort(inputs)
	return inputs, nil
}

// InstanceName is the short label of an input URI: its final path element.
func InstanceName(uri string) string {
	return path.Base(filepath.ToSlash(strings.TrimPrefix(uri, "s3://")))
}
