package staging

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// mockS3 is a small in-memory bucket store for unit tests.
// NOTE: intentionally minimal and not production-grade.
type mockS3 struct {
	mu      sync.Mutex
	buckets map[string]map[string][]byte

	failCopy   bool
	failDelete bool

	copyCalls   int
	deleteCalls int
}

func newMockS3(buckets ...string) *mockS3 {
	m := &mockS3{buckets: map[string]map[string][]byte{}}
	for _, b := range buckets {
		m.buckets[b] = map[string][]byte{}
	}
	return m
}

func (m *mockS3) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bucket, ok := m.buckets[*params.Bucket]
	if !ok {
		return nil, errors.New("no such bucket")
	}
	out := &s3.ListObjectsV2Output{}
	for k := range bucket {
		key := k
		out.Contents = append(out.Contents, s3types.Object{Key: &key})
	}
	truncated := false
	out.IsTruncated = &truncated
	return out, nil
}

func (m *mockS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	body, ok := m.buckets[*params.Bucket][*params.Key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func (m *mockS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	bucket, ok := m.buckets[*params.Bucket]
	if !ok {
		return nil, errors.New("no such bucket")
	}
	bucket[*params.Key] = body
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3) CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.copyCalls++
	if m.failCopy {
		return nil, errors.New("copy failed")
	}
	src, err := url.PathUnescape(*params.CopySource)
	if err != nil {
		return nil, err
	}
	parts := strings.SplitN(src, "/", 2)
	if len(parts) != 2 {
		return nil, errors.New("bad copy source")
	}
	body, ok := m.buckets[parts[0]][parts[1]]
	if !ok {
		return nil, errors.New("copy source missing")
	}
	target, ok := m.buckets[*params.Bucket]
	if !ok {
		return nil, errors.New("no such target bucket")
	}
	target[*params.Key] = body
	return &s3.CopyObjectOutput{}, nil
}

func (m *mockS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls++
	if m.failDelete {
		return nil, errors.New("delete failed")
	}
	delete(m.buckets[*params.Bucket], *params.Key)
	return &s3.DeleteObjectOutput{}, nil
}
