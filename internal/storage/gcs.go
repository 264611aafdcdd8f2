package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

type GCSStore struct {
	client *gcs.Client
	bucket string
}

func NewGCSStore(ctx context.Context, bucket, credentialsFile string) (*GCSStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	c, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &GCSStore{client: c, bucket: bucket}, nil
}

func (u *GCSStore) Close() error { return u.client.Close() }

func (u *GCSStore) path(objectName string) string {
	return fmt.Sprintf("gs://%s/%s", u.bucket, objectName)
}

// Upload writes the object privately and returns its gs:// path.
func (u *GCSStore) Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (string, error) {
	obj := u.client.Bucket(u.bucket).Object(objectName)

	w := obj.NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return u.path(objectName), nil
}

func (u *GCSStore) List(ctx context.Context, prefix string) ([]Object, error) {
	it := u.client.Bucket(u.bucket).Objects(ctx, &gcs.Query{Prefix: prefix})

	var out []Object
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, Object{
			Name:      attrs.Name,
			Path:      u.path(attrs.Name),
			Size:      attrs.Size,
			CreatedAt: attrs.Created,
		})
	}
	return out, nil
}

// SignedGetURL needs credentials able to sign (service account key or
// IAM signBlob permission).
func (u *GCSStore) SignedGetURL(_ context.Context, objectName string, ttl time.Duration) (string, error) {
	return u.client.Bucket(u.bucket).SignedURL(objectName, &gcs.SignedURLOptions{
		Scheme:  gcs.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: time.Now().Add(ttl),
	})
}
