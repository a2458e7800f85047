package services

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/pgvector/pgvector-go"

	"github.com/vidscholar/vidscholar-backend/internal/platform/logger"
	"github.com/vidscholar/vidscholar-backend/internal/repos"
	"github.com/vidscholar/vidscholar-backend/internal/types"
)

// Transcribe batch item statuses beyond the shared success/failed pair.
const (
	StatusNotFound = "not_found"
	StatusNoAudio  = "no_audio"
)

// TranscribeTotalSteps counts the pipeline stages reported per item:
// locate, prepare, transcribe, embed, persist.
const TranscribeTotalSteps = 5

// TranscribeResult is one per-video outcome in a batch transcription
// response.
type TranscribeResult struct {
	VideoID         string `json:"video_id"`
	Status          string `json:"status"`
	Error           string `json:"error,omitempty"`
	StepsCompleted  int    `json:"steps_completed"`
	TotalSteps      int    `json:"total_steps"`
	TranscriptionID *uint  `json:"transcription_id,omitempty"`
	// TranscriptionStatus distinguishes completed from
	// completed_no_embedding on success.
	TranscriptionStatus string `json:"transcription_status,omitempty"`
}

type TranscriptionService interface {
	// TranscribeBatch runs the locate, prepare, transcribe, embed,
	// persist pipeline per video, sequentially, one result per input id
	// in input order.
	TranscribeBatch(ctx context.Context, videoIDs []string, language string) []TranscribeResult
	List(ctx context.Context, skip, limit int, videoID string) ([]*types.Transcription, int64, error)
	ListByVideo(ctx context.Context, videoID string) ([]*types.Transcription, error)
	Get(ctx context.Context, id uint) (*types.Transcription, error)
	Delete(ctx context.Context, id uint) error
}

type transcriptionService struct {
	log            *logger.Logger
	provider       TranscriptionProvider
	chunker        ChunkService
	embedder       EmbeddingService
	retry          RetryPolicy
	videos         repos.VideoRepo
	transcriptions repos.TranscriptionRepo
}

func NewTranscriptionService(
	baseLog *logger.Logger,
	provider TranscriptionProvider,
	chunker ChunkService,
	embedder EmbeddingService,
	videos repos.VideoRepo,
	transcriptions repos.TranscriptionRepo,
) TranscriptionService {
	return &transcriptionService{
		log:            baseLog.With("service", "TranscriptionService"),
		provider:       provider,
		chunker:        chunker,
		embedder:       embedder,
		retry:          DefaultRetryPolicy(),
		videos:         videos,
		transcriptions: transcriptions,
	}
}

func (s *transcriptionService) TranscribeBatch(ctx context.Context, videoIDs []string, language string) []TranscribeResult {
	return RunSequential(ctx, videoIDs,
		func(ctx context.Context, id string) TranscribeResult {
			return s.transcribeOne(ctx, id, language)
		},
		func(id string) TranscribeResult {
			return TranscribeResult{
				VideoID:    id,
				Status:     StatusFailed,
				Error:      "request cancelled before item started",
				TotalSteps: TranscribeTotalSteps,
			}
		},
	)
}

func (s *transcriptionService) transcribeOne(ctx context.Context, videoID, language string) TranscribeResult {
	log := s.log.With("video_id", videoID)
	result := TranscribeResult{VideoID: videoID, TotalSteps: TranscribeTotalSteps}

	// Locate.
	video, err := s.videos.GetByVideoID(ctx, nil, videoID)
	if err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			result.Status = StatusNotFound
			return result
		}
		result.Status = StatusFailed
		result.Error = err.Error()
		return result
	}
	result.StepsCompleted = 1
	if !s.hasAudio(ctx, video) {
		result.Status = StatusNoAudio
		return result
	}

	// Prepare.
	paths, err := s.chunker.EnsureChunks(ctx, video)
	if err != nil {
		log.Error("chunk preparation failed", "error", err)
		result.Status = StatusFailed
		result.Error = err.Error()
		return result
	}
	result.StepsCompleted = 2

	// Transcribe chunk by chunk; any chunk failing after retries voids
	// the whole run so no partial transcript is ever stored.
	parts := make([]string, 0, len(paths))
	for i, path := range paths {
		var text string
		err := s.retry.Do(ctx, func() error {
			var terr error
			text, terr = s.provider.Transcribe(ctx, path, language)
			return terr
		})
		if err != nil {
			log.Error("chunk transcription failed", "chunk", i, "error", err)
			result.Status = StatusFailed
			result.Error = err.Error()
			return result
		}
		parts = append(parts, strings.TrimSpace(text))
	}
	fullText := strings.Join(parts, " ")
	result.StepsCompleted = 3

	// Embed. Failure degrades the row, never fails the run.
	status := types.TranscriptionStatusCompleted
	var vector *pgvector.Vector
	embedding, err := s.embedder.Embed(ctx, fullText)
	if err != nil {
		log.Warn("embedding failed, storing transcription without vector", "error", err)
		status = types.TranscriptionStatusNoEmbedding
	} else {
		v := pgvector.NewVector(embedding)
		vector = &v
	}
	result.StepsCompleted = 4

	// Persist.
	row, err := s.transcriptions.Create(ctx, nil, &types.Transcription{
		VideoID:           videoID,
		TranscriptionText: fullText,
		VectorEmbedding:   vector,
		Status:            status,
	})
	if err != nil {
		log.Error("transcription insert failed", "error", err)
		result.Status = StatusFailed
		result.Error = err.Error()
		return result
	}
	log.Info("transcription stored", "transcription_id", row.ID, "status", status, "chars", len(fullText))
	result.StepsCompleted = TranscribeTotalSteps
	result.Status = StatusSuccess
	result.TranscriptionID = &row.ID
	result.TranscriptionStatus = status
	return result
}

// hasAudio reports whether any transcribable file exists for the video,
// either the original download or a previously persisted chunk set.
func (s *transcriptionService) hasAudio(ctx context.Context, video *types.Video) bool {
	if video.FilePath != nil && *video.FilePath != "" {
		if _, err := os.Stat(*video.FilePath); err == nil {
			return true
		}
	}
	paths, err := s.chunker.EnsureChunks(ctx, video)
	return err == nil && len(paths) > 0
}

func (s *transcriptionService) List(ctx context.Context, skip, limit int, videoID string) ([]*types.Transcription, int64, error) {
	return s.transcriptions.List(ctx, nil, skip, limit, videoID)
}

func (s *transcriptionService) ListByVideo(ctx context.Context, videoID string) ([]*types.Transcription, error) {
	return s.transcriptions.ListByVideoID(ctx, nil, videoID)
}

func (s *transcriptionService) Get(ctx context.Context, id uint) (*types.Transcription, error) {
	return s.transcriptions.GetByID(ctx, nil, id)
}

func (s *transcriptionService) Delete(ctx context.Context, id uint) error {
	return s.transcriptions.Delete(ctx, nil, id)
}
