package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"gasreport/internal/blob/core"
)

func TestMockLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMockForTests()
	if s.Driver() != core.DriverS3 || s.Bucket() != "mock-bucket" {
		t.Fatalf("unexpected store identity")
	}
	key := "interventions/i-1/conclusion/p-1-panel.jpg"
	info, err := s.Put(ctx, key, strings.NewReader("jpeg"), core.PutOptions{
		ContentType: "image/jpeg",
		Metadata:    map[string]string{"category": "conclusion"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != key || info.Size != 4 || info.ContentType != "image/jpeg" || info.ETag != "etag" {
		t.Fatalf("unexpected info %+v", info)
	}
	if info.Metadata["category"] != "conclusion" {
		t.Fatalf("metadata not round tripped: %+v", info.Metadata)
	}
	if _, err := s.Put(ctx, key, strings.NewReader("again"), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}

	_, rc, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "jpeg" {
		t.Fatalf("unexpected body %q", body)
	}

	list, err := s.List(ctx, "interventions/")
	if err != nil || len(list) != 1 || list[0].Key != key {
		t.Fatalf("unexpected listing %+v %v", list, err)
	}

	existed, err := s.Delete(ctx, key)
	if err != nil || !existed {
		t.Fatalf("delete: %v %v", existed, err)
	}
	existed, err = s.Delete(ctx, key)
	if err != nil || existed {
		t.Fatalf("second delete: %v %v", existed, err)
	}
	if _, err := s.Head(ctx, key); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, _, err := s.Get(ctx, key); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from get, got %v", err)
	}
}

func TestRejectsInvalidKeys(t *testing.T) {
	s := NewMockForTests()
	ctx := context.Background()
	if _, err := s.Put(ctx, "../x", strings.NewReader(""), core.PutOptions{}); err == nil {
		t.Fatalf("expected invalid key")
	}
	if _, err := s.Head(ctx, "/abs"); err == nil {
		t.Fatalf("expected invalid key")
	}
	if _, err := s.Delete(ctx, ""); err == nil {
		t.Fatalf("expected invalid key")
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected missing bucket error")
	}
}

func TestNewWithStaticCredentials(t *testing.T) {
	s, err := New(context.Background(), Config{
		Bucket:          "photos",
		Endpoint:        "http://minio:9000",
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
		PathStyle:       true,
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	creds, err := s.client.Options().Credentials.Retrieve(context.Background())
	if err != nil || creds.AccessKeyID != "AKIA" {
		t.Fatalf("static credentials not wired: %+v %v", creds, err)
	}
	if !s.client.Options().UsePathStyle || s.client.Options().Region != defaultRegion {
		t.Fatalf("unexpected client options")
	}
}

func TestDecodeChunked(t *testing.T) {
	got, ok := decodeChunked([]byte("4\r\njpeg\r\n0\r\nx-amz-checksum-crc32:abc\r\n\r\n"))
	if !ok || string(got) != "jpeg" {
		t.Fatalf("decode failed: %q %v", got, ok)
	}
	if _, ok := decodeChunked([]byte("plain body")); ok {
		t.Fatalf("plain body should not decode")
	}
}
