package storage

import (
	"context"
	"io"
	"time"
)

type Uploader interface {
	Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (storedPath string, err error)
}

type Lister interface {
	List(ctx context.Context, prefix string) ([]Object, error)
}

type Signer interface {
	SignedGetURL(ctx context.Context, objectName string, ttl time.Duration) (string, error)
}

type Object struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}
