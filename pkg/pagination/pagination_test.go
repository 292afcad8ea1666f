package pagination_test

import (
	"net/url"
	"testing"

	"github.com/JaimeStill/intake/pkg/pagination"
)

func TestPageRequestFromQuery(t *testing.T) {
	cfg := pagination.Config{DefaultPageSize: 20, MaxPageSize: 50}

	tests := []struct {
		name     string
		query    string
		page     int
		pageSize int
		offset   int
	}{
		{"empty uses defaults", "", 1, 20, 0},
		{"explicit", "page=3&page_size=10", 3, 10, 20},
		{"clamped size", "page_size=500", 1, 50, 0},
		{"invalid page", "page=-2", 1, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, _ := url.ParseQuery(tt.query)
			req := pagination.PageRequestFromQuery(values, cfg)

			if req.Page != tt.page || req.PageSize != tt.pageSize {
				t.Errorf("got page=%d size=%d, want page=%d size=%d", req.Page, req.PageSize, tt.page, tt.pageSize)
			}
			if req.Offset() != tt.offset {
				t.Errorf("Offset() = %d, want %d", req.Offset(), tt.offset)
			}
		})
	}
}

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		total, pageSize, want int
	}{
		{0, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{95, 10, 10},
	}

	for _, tt := range tests {
		r := pagination.NewPageResult[string](nil, tt.total, 1, tt.pageSize)
		if r.TotalPages != tt.want {
			t.Errorf("total=%d size=%d: TotalPages = %d, want %d", tt.total, tt.pageSize, r.TotalPages, tt.want)
		}
		if r.Data == nil {
			t.Error("Data should never be nil")
		}
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Setenv("TEST_PAGE_DEFAULT", "10")

	cfg := pagination.Config{}
	if err := cfg.Finalize(&pagination.ConfigEnv{DefaultPageSize: "TEST_PAGE_DEFAULT"}); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if cfg.DefaultPageSize != 10 || cfg.MaxPageSize != 100 {
		t.Errorf("Finalize result = %+v", cfg)
	}

	bad := pagination.Config{DefaultPageSize: 200, MaxPageSize: 100}
	if err := bad.Finalize(nil); err == nil {
		t.Error("expected error when default exceeds max")
	}
}
