// Package staging wraps the S3 buckets holding raw webhook envelopes:
// staged objects move to archive on success or quarantine on failure.
package staging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	internalaws "github.com/imrishuroy/go-dispute-reconciler/internal/aws"
)

// Store encapsulates operations on the staging bucket.
type Store struct {
	client internalaws.S3API
	bucket string
}

// NewStore creates a Store bound to the staging bucket.
func NewStore(client internalaws.S3API, bucket string) *Store {
	return &Store{
		client: client,
		bucket: bucket,
	}
}

// List returns every key currently staged. Listing order is whatever S3
// returns; callers must not assume FIFO.
func (s *Store) List(ctx context.Context) ([]string, error) {
	var keys []string
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            &s.bucket,
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("list staging objects: %w", err)
		}
		for _, obj := range out.Contents {
			if obj.Key != nil {
				keys = append(keys, *obj.Key)
			}
		}
		if out.IsTruncated == nil || !*out.IsTruncated {
			return keys, nil
		}
		token = out.NextContinuationToken
	}
}

// Get reads the raw envelope bytes for one staged key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", key, err)
	}
	return body, nil
}

// Put writes a new envelope into the staging bucket.
func (s *Store) Put(ctx context.Context, key string, body []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
		Body:   bytes.NewReader(body),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

// MoveTo copies a staged object to the target bucket, then deletes the
// original. Copy strictly precedes delete so a crash between the two leaves
// the object in staging, where the next run reprocesses it. A failed delete
// after a successful copy leaves the object transiently in both buckets;
// that state resolves on a later run, so both steps log independently.
func (s *Store) MoveTo(ctx context.Context, key, target string) error {
	source := url.PathEscape(s.bucket + "/" + key)
	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     &target,
		Key:        &key,
		CopySource: &source,
	})
	if err != nil {
		return fmt.Errorf("copy %s to %s: %w", key, target, err)
	}
	log.Printf("[staging] copied %s to %s", key, target)

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("delete %s after copy to %s: %w", key, target, err)
	}
	log.Printf("[staging] deleted %s from %s", key, s.bucket)
	return nil
}
