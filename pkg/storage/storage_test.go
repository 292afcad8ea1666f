package storage_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/JaimeStill/intake/pkg/lifecycle"
	"github.com/JaimeStill/intake/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=intakestore;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/intakestore;"

type memStore map[string][]byte

func (m memStore) Start(*lifecycle.Coordinator) error { return nil }

func (m memStore) Download(_ context.Context, key string) (*storage.Blob, error) {
	data, ok := m[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.Blob{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentType:   "image/png",
		ContentLength: int64(len(data)),
	}, nil
}

func (m memStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m[key]
	return ok, nil
}

func TestNewAzure(t *testing.T) {
	cfg := &storage.Config{
		Provider:         storage.ProviderAzure,
		ContainerName:    "loan-documents",
		ConnectionString: azuriteConnString,
	}

	sys, err := storage.New(cfg, slog.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if sys == nil {
		t.Fatal("New() returned nil system")
	}
}

func TestNewAzureInvalidConnectionString(t *testing.T) {
	cfg := &storage.Config{
		Provider:         storage.ProviderAzure,
		ContainerName:    "loan-documents",
		ConnectionString: "not-a-connection-string",
	}

	if _, err := storage.New(cfg, slog.Default()); err == nil {
		t.Fatal("expected error for invalid connection string")
	}
}

func TestNewS3(t *testing.T) {
	cfg := &storage.Config{
		Provider:      storage.ProviderS3,
		ContainerName: "loan-processing",
		Endpoint:      "localhost:9000",
		AccessKey:     "minio",
		SecretKey:     "minio123",
	}

	sys, err := storage.New(cfg, slog.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if sys == nil {
		t.Fatal("New() returned nil system")
	}
}

func TestNewUnknownProvider(t *testing.T) {
	cfg := &storage.Config{Provider: "ftp", ContainerName: "x"}
	if _, err := storage.New(cfg, slog.Default()); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestReadAll(t *testing.T) {
	store := memStore{
		"uploads/app-1/ssn.png": []byte("png-bytes"),
	}
	ctx := context.Background()

	t.Run("within limit", func(t *testing.T) {
		data, ct, err := storage.ReadAll(ctx, store, "uploads/app-1/ssn.png", 64)
		if err != nil {
			t.Fatalf("ReadAll error: %v", err)
		}
		if string(data) != "png-bytes" || ct != "image/png" {
			t.Errorf("ReadAll = %q, %q", data, ct)
		}
	})

	t.Run("no limit", func(t *testing.T) {
		if _, _, err := storage.ReadAll(ctx, store, "uploads/app-1/ssn.png", 0); err != nil {
			t.Fatalf("ReadAll error: %v", err)
		}
	})

	t.Run("exceeds limit", func(t *testing.T) {
		_, _, err := storage.ReadAll(ctx, store, "uploads/app-1/ssn.png", 4)
		if !errors.Is(err, storage.ErrTooLarge) {
			t.Errorf("error = %v, want ErrTooLarge", err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		_, _, err := storage.ReadAll(ctx, store, "uploads/app-1/missing.png", 0)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{storage.ErrNotFound, http.StatusNotFound},
		{storage.ErrEmptyKey, http.StatusBadRequest},
		{storage.ErrInvalidKey, http.StatusBadRequest},
		{storage.ErrTooLarge, http.StatusRequestEntityTooLarge},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := storage.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
