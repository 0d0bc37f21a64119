// Package source opens k6 result files from the local filesystem or S3.
package source

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const s3Scheme = "s3://"

// ErrNotFound is returned when the requested results file does not exist.
var ErrNotFound = errors.New("results file not found")

// S3API is the subset of the S3 client used to fetch result objects.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// IsS3URI reports whether location points at an S3 object.
func IsS3URI(location string) bool {
	return strings.HasPrefix(location, s3Scheme)
}

// ParseS3URI splits s3://bucket/key into its bucket and key.
func ParseS3URI(uri string) (string, string, error) {
	if !IsS3URI(uri) {
		return "", "", fmt.Errorf("not an s3 uri: %q", uri)
	}

	bucket, key, ok := strings.Cut(strings.TrimPrefix(uri, s3Scheme), "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 uri %q must be of the form s3://bucket/key", uri)
	}
	return bucket, key, nil
}

// Open returns a reader over the results at location, which is either a local
// path or an s3:// URI. Objects ending in .gz are decompressed transparently.
// client may be nil when location is a local path.
func Open(ctx context.Context, location string, client S3API) (io.ReadCloser, error) {
	if IsS3URI(location) {
		bucket, key, err := ParseS3URI(location)
		if err != nil {
			return nil, err
		}
		return OpenS3(ctx, client, bucket, key)
	}

	return OpenFile(location)
}

// OpenFile opens a local results file.
func OpenFile(path string) (io.ReadCloser, error) {
	if path == "" {
		return nil, ErrNotFound
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%s is a directory", path)
	}

	return maybeGunzip(path, f)
}

// OpenS3 fetches a results object from S3.
func OpenS3(ctx context.Context, client S3API, bucket, key string) (io.ReadCloser, error) {
	if client == nil {
		return nil, errors.New("s3 client is not configured")
	}

	resp, err := client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrNotFound, bucket, key)
		}
		return nil, fmt.Errorf("get object: %w", err)
	}

	return maybeGunzip(key, resp.Body)
}

func maybeGunzip(name string, body io.ReadCloser) (io.ReadCloser, error) {
	if !strings.HasSuffix(name, ".gz") {
		return body, nil
	}

	gzipReader, err := gzip.NewReader(body)
	if err != nil {
		_ = body.Close()
		return nil, fmt.Errorf("create gzip reader: %w", err)
	}
	return &gzipReadCloser{Reader: gzipReader, body: body}, nil
}

type gzipReadCloser struct {
	*gzip.Reader
	body io.ReadCloser
}

func (g *gzipReadCloser) Close() error {
	return errors.Join(g.Reader.Close(), g.body.Close())
}
