package app

import (
	"fmt"
	"path/filepath"

	"gorm.io/gorm"

	"github.com/vidscholar/vidscholar-backend/internal/media"
	"github.com/vidscholar/vidscholar-backend/internal/platform/logger"
	"github.com/vidscholar/vidscholar-backend/internal/services"
)

type Services struct {
	Video         services.VideoService
	Chunk         services.ChunkService
	Transcription services.TranscriptionService
	Embedding     services.EmbeddingService
	Question      services.QuestionService
	Generation    services.GenerationService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, clients Clients, reposet Repos) (Services, error) {
	audioDir := filepath.Join(cfg.StoragePath, "audio")

	downloader, err := media.NewDownloader(log, media.DownloaderConfig{
		YtdlpPath:   cfg.YtdlpPath,
		AudioDir:    audioDir,
		AudioFormat: cfg.AudioFormat,
		Timeout:     cfg.DownloadTimeout,
	})
	if err != nil {
		return Services{}, fmt.Errorf("init downloader: %w", err)
	}

	ffmpeg, err := media.NewFFmpeg(log, cfg.FFmpegPath, cfg.FFmpegTimeout)
	if err != nil {
		return Services{}, fmt.Errorf("init ffmpeg: %w", err)
	}

	chunkSvc, err := services.NewChunkService(log, ffmpeg, reposet.AudioChunk, services.ChunkServiceConfig{
		ChunkDir:            filepath.Join(audioDir, "chunks"),
		MaxChunkBytes:       int64(cfg.MaxChunkSizeMB) * 1024 * 1024,
		SilenceThresholdDB:  cfg.SilenceThresholdDB,
		MinSilenceSeconds:   cfg.MinSilenceDurationS,
		DeleteOriginalAfter: cfg.DeleteOriginalAfter,
	})
	if err != nil {
		return Services{}, fmt.Errorf("init chunk service: %w", err)
	}

	provider, err := services.NewTranscriptionProvider(log, clients.OpenAI, services.ProviderConfig{
		Kind:         cfg.TranscriptionProvider,
		Model:        cfg.TranscriptionModel,
		WorkDir:      cfg.WhisperWorkDir,
		LocalTimeout: cfg.WhisperTimeout,
	})
	if err != nil {
		return Services{}, fmt.Errorf("init transcription provider: %w", err)
	}

	embeddingSvc := services.NewEmbeddingService(log, clients.OpenAI, services.EmbeddingConfig{
		Model:     cfg.EmbeddingModel,
		Dimension: cfg.EmbeddingDim,
	})

	videoSvc := services.NewVideoService(log, downloader,
		reposet.Video, reposet.AudioChunk, reposet.Transcription, reposet.Question)

	transcriptionSvc := services.NewTranscriptionService(log, provider, chunkSvc, embeddingSvc,
		reposet.Video, reposet.Transcription)

	questionSvc := services.NewQuestionService(log, db, clients.LLM,
		reposet.Transcription, reposet.Generation, reposet.Question,
		services.QuestionServiceConfig{
			Model:      cfg.LLMModel,
			LLMTimeout: cfg.LLMTimeout,
		})

	generationSvc := services.NewGenerationService(log, reposet.Generation, reposet.Question)

	return Services{
		Video:         videoSvc,
		Chunk:         chunkSvc,
		Transcription: transcriptionSvc,
		Embedding:     embeddingSvc,
		Question:      questionSvc,
		Generation:    generationSvc,
	}, nil
}
