package config

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "test-key")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "test-key", cfg.GeminiAPIKey)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, "gemini-2.5-flash-preview-tts", cfg.GeminiTTSModel)
	assert.Equal(t, "/tmp/video2sound", cfg.TempDir)
	assert.Equal(t, 4, cfg.MaxConcurrentLines)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.S3Enabled())
}

func TestLoad_MissingAPIKey(t *testing.T) {
	// t.Setenv registers the restore; the variable must be truly unset
	// because envconfig treats a set-but-empty value as present.
	t.Setenv("GEMINI_API_KEY", "")
	require.NoError(t, os.Unsetenv("GEMINI_API_KEY"))

	_, err := Load()
	assert.ErrorIs(t, err, ErrGeminiAPIKeyRequired)
}

func TestLoad_CustomValues(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("GEMINI_MODEL", "gemini-custom")
	t.Setenv("TEMP_DIR", "/var/tmp/v2s")
	t.Setenv("MAX_CONCURRENT_LINES", "8")
	t.Setenv("FFPROBE_PATH", "/usr/local/bin/ffprobe")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "gemini-custom", cfg.GeminiModel)
	assert.Equal(t, "/var/tmp/v2s", cfg.TempDir)
	assert.Equal(t, 8, cfg.MaxConcurrentLines)
	assert.Equal(t, "/usr/local/bin/ffprobe", cfg.FFprobePath)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestS3Enabled(t *testing.T) {
	tests := []struct {
		name   string
		bucket string
		region string
		want   bool
	}{
		{"both set", "my-bucket", "eu-west-1", true},
		{"bucket only", "my-bucket", "", false},
		{"region only", "", "eu-west-1", false},
		{"neither", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{S3Bucket: tt.bucket, S3Region: tt.region}
			assert.Equal(t, tt.want, cfg.S3Enabled())
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{GeminiAPIKey: "key"}
	assert.NoError(t, cfg.Validate())

	cfg.GeminiAPIKey = ""
	assert.ErrorIs(t, cfg.Validate(), ErrGeminiAPIKeyRequired)
}

func TestNewLogger(t *testing.T) {
	cfg := &Config{LogFormat: "json", LogLevel: "debug"}
	assert.NotNil(t, cfg.NewLogger())

	cfg = &Config{LogFormat: "text", LogLevel: "warn"}
	assert.NotNil(t, cfg.NewLogger())
}

func TestString_MasksSecrets(t *testing.T) {
	cfg := &Config{
		Port:               8080,
		GeminiAPIKey:       "super-secret",
		AWSSecretAccessKey: "aws-secret",
	}

	s := cfg.String()
	assert.NotContains(t, s, "super-secret")
	assert.NotContains(t, s, "aws-secret")
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.input))
		})
	}
}
