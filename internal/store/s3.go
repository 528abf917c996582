package store

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/tyler180/bbref-season-stats/internal/bbref"
)

type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads one object per season. Long layout objects go under
// season=<n>/ prefixes so Athena can partition on them.
type S3Sink struct {
	Client S3API
	Bucket string
	Prefix string
	Layout Layout
}

func (s *S3Sink) ObjectKey(k Key) string {
	if s.Layout == LayoutLong {
		return path.Join(s.categoryPrefix(k.Category), fmt.Sprintf("season=%d", k.Season), k.FileName())
	}
	return path.Join(s.categoryPrefix(k.Category), k.FileName())
}

// Location is the s3:// directory holding every season of c.
func (s *S3Sink) Location(c bbref.Category) string {
	return "s3://" + s.Bucket + "/" + s.categoryPrefix(c) + "/"
}

// SeasonLocation is the partition directory of one season.
func (s *S3Sink) SeasonLocation(k Key) string {
	return s.Location(k.Category) + fmt.Sprintf("season=%d/", k.Season)
}

func (s *S3Sink) categoryPrefix(c bbref.Category) string {
	return strings.Trim(path.Join(s.Prefix, c.String()), "/")
}

// Put is a single PutObject, which replaces the object atomically.
func (s *S3Sink) Put(ctx context.Context, k Key, t *bbref.Table) error {
	body, err := Encode(t, s.Layout)
	if err != nil {
		return err
	}
	_, err = s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(s.ObjectKey(k)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", s.ObjectKey(k), err)
	}
	return nil
}
