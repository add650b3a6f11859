//go:build integration

package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/duckdesk/duckdesk/internal/storage"
)

func TestStoreListsAndReadsAgainstMinIO(t *testing.T) {
	endpoint := envOr("DUCKDESK_TEST_S3_ENDPOINT", "")
	if endpoint == "" {
		t.Skip("DUCKDESK_TEST_S3_ENDPOINT is not set")
	}

	cfg := Config{
		Endpoint:        endpoint,
		Region:          envOr("DUCKDESK_TEST_S3_REGION", "us-east-1"),
		Bucket:          envOr("DUCKDESK_TEST_S3_BUCKET", "duckdesk-it"),
		AccessKeyID:     envOr("DUCKDESK_TEST_S3_ACCESS_KEY", "minio"),
		SecretAccessKey: envOr("DUCKDESK_TEST_S3_SECRET_KEY", "miniostorage"),
		Prefix:          "integration-tests",
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	seed, err := newMinioClient(cfg)
	if err != nil {
		t.Fatalf("newMinioClient() error = %v", err)
	}
	exists, err := seed.client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		t.Fatalf("BucketExists() error = %v", err)
	}
	if !exists {
		if err := seed.client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			t.Fatalf("MakeBucket() error = %v", err)
		}
	}

	payload := []byte("id,value\n1,a\n")
	fullKey := "integration-tests/sales/q1.csv"
	if _, err := seed.client.PutObject(ctx, cfg.Bucket, fullKey, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{ContentType: "text/csv"}); err != nil {
		t.Fatalf("PutObject() error = %v", err)
	}
	t.Cleanup(func() {
		_ = seed.client.RemoveObject(context.Background(), cfg.Bucket, fullKey, minio.RemoveObjectOptions{})
	})

	store, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := store.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	objects, err := store.List(ctx, "sales")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	found := false
	for _, object := range objects {
		if object.Key == "sales/q1.csv" {
			found = true
		}
	}
	if !found {
		t.Fatalf("List() = %#v, missing sales/q1.csv", objects)
	}

	reader, err := store.Get(ctx, "sales/q1.csv")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	readPayload, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("io.ReadAll() error = %v", err)
	}
	_ = reader.Close()
	if !bytes.Equal(readPayload, payload) {
		t.Fatalf("Get() payload = %q, want %q", string(readPayload), string(payload))
	}

	if _, err := store.Stat(ctx, "sales/missing.csv"); !errors.Is(err, storage.ErrObjectNotFound) {
		t.Fatalf("Stat() error = %v, want ErrObjectNotFound", err)
	}
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}
