package s3blob

import (
	"context"
	"testing"

	"github.com/alanyoungcy/spreadwatch/internal/config"
)

func TestNormaliseEndpoint(t *testing.T) {
	tests := []struct {
		in     string
		useSSL bool
		want   string
	}{
		{"https://s3.example.com", false, "https://s3.example.com"},
		{"http://localhost:9000", true, "http://localhost:9000"},
		{"minio.local:9000", false, "http://minio.local:9000"},
		{"r2.example.com", true, "https://r2.example.com"},
	}
	for _, tc := range tests {
		if got := normaliseEndpoint(tc.in, tc.useSSL); got != tc.want {
			t.Errorf("normaliseEndpoint(%q, %v) = %q, want %q", tc.in, tc.useSSL, got, tc.want)
		}
	}
}

func TestNewValidates(t *testing.T) {
	cfg := config.Defaults().S3
	cfg.Bucket = ""
	if _, err := New(context.Background(), cfg); err == nil {
		t.Error("missing bucket accepted")
	}

	cfg = config.Defaults().S3
	cfg.Region = ""
	if _, err := New(context.Background(), cfg); err == nil {
		t.Error("missing region accepted")
	}
}

func TestNewBuildsClient(t *testing.T) {
	cfg := config.Defaults().S3
	cfg.AccessKey, cfg.SecretKey = "key", "secret"
	c, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.Bucket() != "spreadwatch" || c.S3() == nil {
		t.Errorf("client = %+v", c)
	}
	if NewWriter(c) == nil {
		t.Error("NewWriter returned nil")
	}
}
