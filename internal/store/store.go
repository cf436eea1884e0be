package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound reports that no object exists under the requested name.
var ErrNotFound = errors.New("object not found")

type UploadParams struct {
	Name        string
	Data        []byte
	ContentType string
	Metadata    map[string]string
}

type Store interface {
	Upload(context.Context, UploadParams) error
	Fetch(context.Context, string) ([]byte, error)
	SignedURL(context.Context, string, time.Duration) (string, error)
}
