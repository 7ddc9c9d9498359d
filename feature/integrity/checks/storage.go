package checks

import (
	"context"
	"errors"
	"fmt"
	"io"

	"media-cleaner/core/storage"

	"github.com/minio/minio-go/v7"
)

// CheckStorage returns the objects missing from bucket.
func CheckStorage(ctx context.Context, client storage.Client, bucket string, objects []string) ([]string, error) {
	if client == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", bucket)
	}

	var missing []string
	for _, name := range objects {
		if !readable(ctx, client, bucket, name) {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

// readable reports whether the first byte of an object can be read.
// GetObject is lazy, so a missing key only surfaces on Read.
func readable(ctx context.Context, client storage.Client, bucket, name string) bool {
	obj, err := client.GetObject(ctx, bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return false
	}
	defer obj.Close()

	buf := make([]byte, 1)
	_, err = obj.Read(buf)
	return err == nil || errors.Is(err, io.EOF)
}
