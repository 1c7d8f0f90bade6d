// Package bootstrap provides dependency initialization for the Video2Sound API.
package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/francohuller-ux/Video2Sound/internal/config"
	"github.com/francohuller-ux/Video2Sound/internal/gemini"
	"github.com/francohuller-ux/Video2Sound/internal/job"
	"github.com/francohuller-ux/Video2Sound/internal/media"
	"github.com/francohuller-ux/Video2Sound/internal/sfx"
	"github.com/francohuller-ux/Video2Sound/internal/storage"
)

// Dependencies holds all initialized dependencies for the HTTP server.
type Dependencies struct {
	AudioService *job.ProcessAudioService
	Catalog      *sfx.Catalog
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	// Initialize storage
	store, err := initStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	// Initialize the AI collaborator client
	aiClient, err := gemini.NewClient(cfg.GeminiModel,
		gemini.WithAPIKey(cfg.GeminiAPIKey),
		gemini.WithTTSModel(cfg.GeminiTTSModel),
	)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	// Build the sound-effect catalog once; it is immutable afterwards.
	catalog := sfx.NewCatalog()

	// Initialize job repository
	repo := job.NewMemoryRepository()

	// Initialize ProcessAudioService
	svc := job.NewProcessAudioService(
		repo,
		aiClient,
		catalog,
		store,
		logger,
		job.WithMaxConcurrentLines(cfg.MaxConcurrentLines),
		job.WithProber(media.NewFFprobeProber(cfg.FFprobePath)),
	)

	return &Dependencies{
		AudioService: svc,
		Catalog:      catalog,
	}, nil
}

// initStorage creates the appropriate storage backend based on configuration.
func initStorage(cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	if cfg.S3Enabled() {
		s3Cfg := storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}
		s3Store, err := storage.NewS3Storage(cfg.TempDir, s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("create S3 storage: %w", err)
		}
		logger.Info("S3 storage configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
		return s3Store, nil
	}

	localStore, err := storage.NewLocalStorage(cfg.TempDir)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}
	logger.Info("local storage configured",
		slog.String("temp_dir", cfg.TempDir),
	)
	return localStore, nil
}
