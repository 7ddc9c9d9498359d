package catalog

import (
	"context"
	"fmt"

	"media-cleaner/core/storage"

	"github.com/minio/minio-go/v7"
)

// ObjectSource reads a newline separated export from object storage.
type ObjectSource struct {
	client storage.Client
	bucket string
	object string
}

// NewObjectSource creates a source reading bucket/object.
func NewObjectSource(client storage.Client, bucket, object string) *ObjectSource {
	return &ObjectSource{client: client, bucket: bucket, object: object}
}

// Name implements Source.
func (s *ObjectSource) Name() string {
	return "storage:" + s.bucket + "/" + s.object
}

// Load implements Source.
func (s *ObjectSource) Load(ctx context.Context) ([]string, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get reference object %s: %w", s.object, err)
	}
	defer obj.Close()

	ids, err := readLines(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference object %s: %w", s.object, err)
	}
	return ids, nil
}
