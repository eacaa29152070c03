package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PUBLIC_BASE_URL", "")
	t.Setenv("MAX_UPLOAD_BYTES", "")
	t.Setenv("STORAGE_DRIVER", "")

	cfg := Load()

	assert.Equal(t, "http://localhost:8080", cfg.PublicBaseURL)
	assert.Equal(t, int64(50<<20), cfg.MaxUploadBytes)
	assert.Equal(t, StorageDriverMinio, cfg.StorageDriver)
	assert.Equal(t, 30*24*time.Hour, cfg.JWTTTL)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PUBLIC_BASE_URL", "https://share.example.com/")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")
	t.Setenv("LINK_CACHE_TTL", "5s")
	t.Setenv("STORAGE_DRIVER", "MEMORY")
	t.Setenv("APP_ENV", "production")

	cfg := Load()

	assert.Equal(t, "https://share.example.com", cfg.PublicBaseURL)
	assert.Equal(t, int64(1024), cfg.MaxUploadBytes)
	assert.Equal(t, 5*time.Second, cfg.LinkCacheTTL)
	assert.Equal(t, StorageDriverMemory, cfg.StorageDriver)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("MAX_UPLOAD_BYTES", "lots")
	t.Setenv("JWT_TTL", "-1h")

	cfg := Load()

	assert.Equal(t, int64(50<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 30*24*time.Hour, cfg.JWTTTL)
}

func TestLoad_StorageEndpointDefaultsPerDriver(t *testing.T) {
	t.Setenv("STORAGE_ENDPOINT", "")

	t.Setenv("STORAGE_DRIVER", "minio")
	assert.Equal(t, "localhost:9000", Load().StorageEndpoint)

	t.Setenv("STORAGE_DRIVER", "s3")
	assert.Empty(t, Load().StorageEndpoint)
}
