package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"gasreport/internal/config"
)

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		cfg  config.Blob
		want Driver
	}{
		{config.Blob{Driver: "fs", FSRoot: filepath.Join(t.TempDir(), "b")}, DriverFilesystem},
		{config.Blob{Driver: "memory"}, DriverMemory},
		{config.Blob{Driver: "s3", S3: config.S3{Bucket: "photos", AccessKeyID: "a", SecretAccessKey: "b"}}, DriverS3},
	}
	for _, tc := range cases {
		s, err := Open(ctx, tc.cfg)
		if err != nil {
			t.Fatalf("open %s: %v", tc.cfg.Driver, err)
		}
		if s.Driver() != tc.want {
			t.Fatalf("driver %s: got %s", tc.cfg.Driver, s.Driver())
		}
	}
	if _, err := Open(ctx, config.Blob{Driver: "ftp"}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
	if _, err := Open(ctx, config.Blob{Driver: "s3"}); err == nil {
		t.Fatalf("expected missing bucket error")
	}
}

// Every backend must behave the same for the calls the reconciler makes.
func TestBackendsShareContract(t *testing.T) {
	fsStore, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("fs: %v", err)
	}
	backends := map[string]Store{
		"fs":     fsStore,
		"memory": NewMemory(),
		"s3":     NewMockS3ForTests(),
	}
	for name, s := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			key := "interventions/i-9/conclusion/p-1-photo"
			info, err := s.Put(ctx, key, bytes.NewReader([]byte("img")), PutOptions{
				ContentType: "image/png",
				Metadata:    map[string]string{"category": "conclusion", "intervention": "i-9"},
			})
			if err != nil {
				t.Fatalf("put: %v", err)
			}
			if info.Key != key || info.Size != 3 {
				t.Fatalf("unexpected info %+v", info)
			}
			if _, err := s.Put(ctx, key, bytes.NewReader([]byte("x")), PutOptions{}); !errors.Is(err, ErrExists) {
				t.Fatalf("expected ErrExists, got %v", err)
			}
			head, err := s.Head(ctx, key)
			if err != nil || head.ContentType != "image/png" || head.Metadata["intervention"] != "i-9" {
				t.Fatalf("head: %+v %v", head, err)
			}
			_, rc, err := s.Get(ctx, key)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			body, _ := io.ReadAll(rc)
			_ = rc.Close()
			if string(body) != "img" {
				t.Fatalf("unexpected body %q", body)
			}
			list, err := s.List(ctx, "interventions/i-9/")
			if err != nil || len(list) != 1 {
				t.Fatalf("list: %+v %v", list, err)
			}
			if ok, err := s.Delete(ctx, key); err != nil || !ok {
				t.Fatalf("delete: %v %v", ok, err)
			}
			if _, err := s.Head(ctx, key); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}
