package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	gcs "cloud.google.com/go/storage"
)

// ObjectStore is the narrow blob-storage contract the product controllers
// consume: upload during a request, delete as a fire-and-forget cleanup.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	DeleteAsync(key string)
}

// GCS stores product images in a Google Cloud Storage bucket.
type GCS struct {
	client *gcs.Client
	bucket string
}

func NewGCS(ctx context.Context, bucket string) (*GCS, error) {
	if bucket == "" {
		return nil, fmt.Errorf("storage: bucket name is empty")
	}
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage: create client: %w", err)
	}
	return &GCS{client: client, bucket: bucket}, nil
}

func (g *GCS) Upload(ctx context.Context, key string, r io.Reader, contentType string) error {
	w := g.client.Bucket(g.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("storage: upload %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("storage: finalize %s: %w", key, err)
	}
	return nil
}

func (g *GCS) Delete(ctx context.Context, key string) error {
	if err := g.client.Bucket(g.bucket).Object(key).Delete(ctx); err != nil {
		if err == gcs.ErrObjectNotExist {
			return nil
		}
		return fmt.Errorf("storage: delete %s: %w", key, err)
	}
	return nil
}

// DeleteAsync removes an object without blocking the caller. Failures are
// logged only; a leftover blob is cheaper than a failed request.
func (g *GCS) DeleteAsync(key string) {
	if key == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := g.Delete(ctx, key); err != nil {
			log.Printf("[storage] async delete failed key=%s err=%v", key, err)
		}
	}()
}
