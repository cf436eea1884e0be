package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/promptpix/promptpix/internal/log"
	"github.com/samber/do"
)

type S3Store struct {
	Client  *s3.Client
	Presign *s3.PresignClient
	Bucket  string
}

func NewS3Store(i *do.Injector) (Store, error) {
	client := do.MustInvoke[*s3.Client](i)
	return &S3Store{
		Client:  client,
		Presign: s3.NewPresignClient(client),
		Bucket:  do.MustInvokeNamed[string](i, "bucket"),
	}, nil
}

func (s *S3Store) Upload(ctx context.Context, params UploadParams) error {
	log := log.FromContextOrDiscard(ctx).WithGroup("s3").With(
		"name", params.Name,
		"content-type", params.ContentType,
		"bucket", s.Bucket,
	)
	log.Info("uploading object")

	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.Bucket),
		Key:          aws.String(params.Name),
		ContentType:  aws.String(params.ContentType),
		Body:         bytes.NewReader(params.Data),
		Metadata:     params.Metadata,
		StorageClass: s3types.StorageClassIntelligentTiering,
	})
	return err
}

func (s *S3Store) Fetch(ctx context.Context, name string) ([]byte, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("s3").With("name", name, "bucket", s.Bucket)
	log.Info("fetching object")

	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		var noSuchKey *s3types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, err
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

func (s *S3Store) SignedURL(ctx context.Context, name string, expiry time.Duration) (string, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("s3").With("name", name, "bucket", s.Bucket, "expiry", expiry)
	log.Info("presigning object url")

	req, err := s.Presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(name),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}
