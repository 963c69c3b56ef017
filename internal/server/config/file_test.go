package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseFile_JSON(t *testing.T) {
	dir := t.TempDir()
	path := writeTempJSON(t, dir, "server.json", map[string]any{
		"endpoint_addr_grpc":              "www.example:9000",
		"endpoint_addr_http":              ":9090",
		"database_dsn":                    "vault.db",
		"redis_url":                       "redis://cache:6379/0",
		"secret_key":                      "my_secret_key",
		"access_token_validity_duration":  "1m",
		"refresh_token_validity_duration": 180000000000,
		"s3_root_user":                    "user",
		"s3_root_password":                "password",
		"s3_bucket":                       "bucket",
		"s3_region":                       "region",
		"s3_base_endpoint":                "base_endpoint",
		"s3_public_base_url":              "https://cdn",
		"s3_use_path_style":               false,
		"download_url_ttl":                "30s",
		"log_level":                       "debug",
		"log_format":                      "text",
	})

	cfg := &Config{}
	require.NoError(t, parseFile(cfg, []string{"-config", path}))

	assert.Equal(t, &Config{
		EndpointAddrGRPC:             "www.example:9000",
		EndpointAddrHTTP:             ":9090",
		DatabaseDSN:                  "vault.db",
		RedisURL:                     "redis://cache:6379/0",
		SecretKey:                    "my_secret_key",
		AccessTokenValidityDuration:  time.Minute,
		RefreshTokenValidityDuration: 3 * time.Minute,
		S3RootUser:                   "user",
		S3RootPassword:               "password",
		S3Bucket:                     "bucket",
		S3Region:                     "region",
		S3BaseEndpoint:               "base_endpoint",
		S3PublicBaseURL:              "https://cdn",
		S3UsePathStyle:               false,
		DownloadURLTTL:               30 * time.Second,
		LogLevel:                     "debug",
		LogFormat:                    "text",
	}, cfg)
}

func Test_parseFile_PartialKeepsOtherFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yml")
	require.NoError(t, os.WriteFile(path, []byte("s3_bucket: other\naccess_token_validity_duration: 2m\n"), 0o600))

	cfg := &Config{}
	cfg.LoadDefaults()
	require.NoError(t, parseFile(cfg, []string{"-c", path}))

	assert.Equal(t, "other", cfg.S3Bucket)
	assert.Equal(t, 2*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, ":50051", cfg.EndpointAddrGRPC)
	assert.True(t, cfg.S3UsePathStyle)
}

func Test_parseFile_NoFlagNoChange(t *testing.T) {
	cfg := &Config{EndpointAddrGRPC: "defaults:1234"}
	require.NoError(t, parseFile(cfg, nil))
	assert.Equal(t, "defaults:1234", cfg.EndpointAddrGRPC)
}

func Test_parseFile_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))
	require.Error(t, parseFile(&Config{}, []string{"-config", bad}))

	badDuration := writeTempJSON(t, dir, "dur.json", map[string]any{"download_url_ttl": "forever"})
	require.Error(t, parseFile(&Config{}, []string{"-config", badDuration}))
}
