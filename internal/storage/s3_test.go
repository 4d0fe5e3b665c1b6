package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	in  *s3.PutObjectInput
	err error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3Write(t *testing.T) {
	fake := &fakePutter{}
	store := NewS3(fake, S3Config{Bucket: "menus", Region: "eu-west-1"})

	n, err := store.Write(context.Background(), "restaurants/a.webp", bytes.NewReader([]byte("abc")), WriteOptions{
		ContentType:  "image/webp",
		CacheControl: "max-age=3600",
		Overwrite:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	require.NotNil(t, fake.in)
	assert.Equal(t, "menus", aws.ToString(fake.in.Bucket))
	assert.Equal(t, "restaurants/a.webp", aws.ToString(fake.in.Key))
	assert.Equal(t, "image/webp", aws.ToString(fake.in.ContentType))
	assert.Equal(t, "max-age=3600", aws.ToString(fake.in.CacheControl))
	assert.Equal(t, int64(3), aws.ToInt64(fake.in.ContentLength))
	assert.Nil(t, fake.in.IfNoneMatch)
}

func TestS3WriteWithoutOverwriteIsConditional(t *testing.T) {
	fake := &fakePutter{}
	store := NewS3(fake, S3Config{Bucket: "menus", Region: "eu-west-1"})

	_, err := store.Write(context.Background(), "restaurants/a.webp", bytes.NewReader([]byte("abc")), WriteOptions{})
	require.NoError(t, err)
	assert.Equal(t, "*", aws.ToString(fake.in.IfNoneMatch))
}

func TestS3WriteError(t *testing.T) {
	fake := &fakePutter{err: errors.New("quota exceeded")}
	store := NewS3(fake, S3Config{Bucket: "menus", Region: "eu-west-1"})

	_, err := store.Write(context.Background(), "restaurants/a.webp", bytes.NewReader([]byte("abc")), WriteOptions{Overwrite: true})
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestS3PublicURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  S3Config
		want string
	}{
		{"aws", S3Config{Bucket: "menus", Region: "eu-west-1"}, "https://menus.s3.eu-west-1.amazonaws.com/restaurants/a.webp"},
		{"endpoint", S3Config{Bucket: "menus", Endpoint: "http://minio:9000/"}, "http://minio:9000/menus/restaurants/a.webp"},
		{"public", S3Config{Bucket: "menus", PublicURL: "https://cdn.example.com/"}, "https://cdn.example.com/restaurants/a.webp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewS3(&fakePutter{}, tt.cfg)
			assert.Equal(t, tt.want, store.PublicURL("restaurants/a.webp"))
		})
	}
}

// fakeS3Server accepts PutObject requests the way an S3-compatible store does.
type fakeS3Server struct {
	mu      sync.Mutex
	objects map[string][]byte
	headers map[string]http.Header
}

func (f *fakeS3Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[r.URL.Path]; ok && r.Header.Get("If-None-Match") == "*" {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusPreconditionFailed)
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>PreconditionFailed</Code><Message>At least one of the pre-conditions you specified did not hold</Message></Error>`))
		return
	}
	f.objects[r.URL.Path] = body
	f.headers[r.URL.Path] = r.Header.Clone()
	w.Header().Set("ETag", `"etag"`)
	w.WriteHeader(http.StatusOK)
}

func TestS3AgainstCompatibleEndpoint(t *testing.T) {
	fake := &fakeS3Server{objects: map[string][]byte{}, headers: map[string]http.Header{}}
	ts := httptest.NewServer(fake)
	defer ts.Close()

	client := s3.New(s3.Options{
		Region:                     "us-east-1",
		BaseEndpoint:               aws.String(ts.URL),
		UsePathStyle:               true,
		Credentials:                credentials.NewStaticCredentialsProvider("AKID", "SECRET", ""),
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
	})
	store := NewS3(client, S3Config{Bucket: "menus", Endpoint: ts.URL})
	ctx := context.Background()

	_, err := store.Write(ctx, "restaurants/a.webp", bytes.NewReader([]byte("webp")), WriteOptions{
		ContentType:  "image/webp",
		CacheControl: "max-age=3600",
		Overwrite:    true,
	})
	require.NoError(t, err)

	fake.mu.Lock()
	assert.Equal(t, []byte("webp"), fake.objects["/menus/restaurants/a.webp"])
	assert.Equal(t, "max-age=3600", fake.headers["/menus/restaurants/a.webp"].Get("Cache-Control"))
	assert.Equal(t, "image/webp", fake.headers["/menus/restaurants/a.webp"].Get("Content-Type"))
	fake.mu.Unlock()

	_, err = store.Write(ctx, "restaurants/a.webp", bytes.NewReader([]byte("again")), WriteOptions{})
	assert.ErrorIs(t, err, ErrExists)

	assert.Equal(t, ts.URL+"/menus/restaurants/a.webp", store.PublicURL("restaurants/a.webp"))
}
