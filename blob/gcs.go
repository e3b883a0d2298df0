package blob

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCS stores blobs as objects in a Google Cloud Storage bucket, keyed by
// content address under the photos/ prefix.
type GCS struct {
	client *storage.Client
	bucket string
}

// NewGCS opens a GCS-backed blob store. An empty credentialsPath falls back
// to application default credentials.
func NewGCS(ctx context.Context, bucket, credentialsPath string) (*GCS, error) {
	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing GCS client: %w", err)
	}

	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("gcs bucket %q not accessible: %w", bucket, err)
	}

	return &GCS{client: client, bucket: bucket}, nil
}

// Close releases the underlying client.
func (g *GCS) Close() error {
	return g.client.Close()
}

func (g *GCS) objectName(ref string) string {
	return "photos/" + ref
}

func (g *GCS) Put(ctx context.Context, data []byte) (string, error) {
	ref := Ref(data)
	obj := g.client.Bucket(g.bucket).Object(g.objectName(ref))

	// Content-addressed objects never change, so an existing object is
	// already the blob being written.
	if exists, err := g.Exists(ctx, ref); err == nil && exists {
		return ref, nil
	}

	wc := obj.NewWriter(ctx)
	wc.ContentType = "application/octet-stream"
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return "", fmt.Errorf("failed to write blob %s: %w", ref, err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize blob %s: %w", ref, err)
	}

	return ref, nil
}

func (g *GCS) Exists(ctx context.Context, ref string) (bool, error) {
	_, err := g.client.Bucket(g.bucket).Object(g.objectName(ref)).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat blob %s: %w", ref, err)
	}
	return true, nil
}

func (g *GCS) Get(ctx context.Context, ref string) ([]byte, error) {
	rc, err := g.client.Bucket(g.bucket).Object(g.objectName(ref)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open blob %s: %w", ref, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", ref, err)
	}
	return data, nil
}
