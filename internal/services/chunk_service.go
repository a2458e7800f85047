package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vidscholar/vidscholar-backend/internal/media"
	"github.com/vidscholar/vidscholar-backend/internal/platform/logger"
	"github.com/vidscholar/vidscholar-backend/internal/repos"
	"github.com/vidscholar/vidscholar-backend/internal/types"
)

// AudioToolkit is the slice of the ffmpeg wrapper the chunker needs.
type AudioToolkit interface {
	DetectSilences(ctx context.Context, audioPath string, noiseDB float64, minSilence time.Duration) ([]media.Silence, time.Duration, error)
	ExtractSegment(ctx context.Context, in, out string, start, end time.Duration) error
}

type ChunkServiceConfig struct {
	ChunkDir            string  // <storage>/audio/chunks
	MaxChunkBytes       int64   // split threshold, default 25MB
	SilenceThresholdDB  float64 // default -35
	MinSilenceSeconds   float64 // default 0.3
	DeleteOriginalAfter bool
}

// ChunkService splits oversized audio files at silence boundaries so each
// piece fits the transcription provider's upload limit.
type ChunkService interface {
	// EnsureChunks returns the audio file paths to transcribe for the
	// video, in playback order. Files at or under the threshold pass
	// through whole. Splitting is idempotent: persisted chunks whose
	// files still exist are reused, anything stale is rebuilt.
	EnsureChunks(ctx context.Context, video *types.Video) ([]string, error)
}

type chunkService struct {
	log    *logger.Logger
	audio  AudioToolkit
	chunks repos.AudioChunkRepo
	cfg    ChunkServiceConfig
}

func NewChunkService(baseLog *logger.Logger, audio AudioToolkit, chunks repos.AudioChunkRepo, cfg ChunkServiceConfig) (ChunkService, error) {
	if cfg.ChunkDir == "" {
		return nil, fmt.Errorf("chunk directory required")
	}
	if err := os.MkdirAll(cfg.ChunkDir, 0o755); err != nil {
		return nil, fmt.Errorf("create chunk dir: %w", err)
	}
	if cfg.MaxChunkBytes <= 0 {
		cfg.MaxChunkBytes = 25 * 1024 * 1024
	}
	if cfg.SilenceThresholdDB == 0 {
		cfg.SilenceThresholdDB = -35
	}
	if cfg.MinSilenceSeconds <= 0 {
		cfg.MinSilenceSeconds = 0.3
	}
	return &chunkService{
		log:    baseLog.With("service", "ChunkService"),
		audio:  audio,
		chunks: chunks,
		cfg:    cfg,
	}, nil
}

func (s *chunkService) EnsureChunks(ctx context.Context, video *types.Video) ([]string, error) {
	if video.FilePath == nil || *video.FilePath == "" {
		return nil, fmt.Errorf("%w: video %s has no audio file", ErrChunkingFailed, video.VideoID)
	}
	audioPath := *video.FilePath
	info, err := os.Stat(audioPath)
	if err != nil {
		if existing := s.reusable(ctx, video.VideoID); existing != nil {
			return existing, nil
		}
		return nil, fmt.Errorf("%w: stat %s: %v", ErrChunkingFailed, audioPath, err)
	}
	if info.Size() <= s.cfg.MaxChunkBytes {
		return []string{audioPath}, nil
	}
	if existing := s.reusable(ctx, video.VideoID); existing != nil {
		return existing, nil
	}
	return s.split(ctx, video.VideoID, audioPath, info.Size())
}

// reusable returns persisted chunk paths when every file is still on disk.
func (s *chunkService) reusable(ctx context.Context, videoID string) []string {
	rows, err := s.chunks.ListByVideoID(ctx, nil, videoID)
	if err != nil || len(rows) == 0 {
		return nil
	}
	paths := make([]string, 0, len(rows))
	for _, row := range rows {
		if _, err := os.Stat(row.FilePath); err != nil {
			s.log.Warn("persisted chunk missing on disk, re-splitting",
				"video_id", videoID, "path", row.FilePath)
			return nil
		}
		paths = append(paths, row.FilePath)
	}
	return paths
}

func (s *chunkService) split(ctx context.Context, videoID, audioPath string, fileSize int64) ([]string, error) {
	log := s.log.With("video_id", videoID)
	log.Info("splitting oversized audio", "size_bytes", fileSize, "threshold_bytes", s.cfg.MaxChunkBytes)

	silences, total, err := s.audio.DetectSilences(ctx, audioPath,
		s.cfg.SilenceThresholdDB,
		time.Duration(s.cfg.MinSilenceSeconds*float64(time.Second)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChunkingFailed, err)
	}
	midpoints := make([]time.Duration, 0, len(silences))
	for _, sil := range silences {
		midpoints = append(midpoints, sil.Midpoint())
	}
	segments := media.PlanSegments(total, fileSize, s.cfg.MaxChunkBytes, midpoints)
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: empty segment plan for %s", ErrChunkingFailed, videoID)
	}

	outDir := filepath.Join(s.cfg.ChunkDir, videoID)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create chunk dir: %v", ErrChunkingFailed, err)
	}
	ext := filepath.Ext(audioPath)

	var rows []*types.AudioChunk
	var paths []string
	for i, seg := range segments {
		outPath := filepath.Join(outDir, fmt.Sprintf("%s_chunk_%03d%s", videoID, i, ext))
		if err := s.audio.ExtractSegment(ctx, audioPath, outPath, seg.Start, seg.End); err != nil {
			s.cleanup(paths)
			return nil, fmt.Errorf("%w: segment %d: %v", ErrChunkingFailed, i, err)
		}
		info, err := os.Stat(outPath)
		if err != nil {
			s.cleanup(paths)
			return nil, fmt.Errorf("%w: segment %d output missing: %v", ErrChunkingFailed, i, err)
		}
		paths = append(paths, outPath)
		rows = append(rows, &types.AudioChunk{
			VideoID:    videoID,
			ChunkIndex: i,
			FilePath:   outPath,
			FileSize:   info.Size(),
			StartMS:    seg.Start.Milliseconds(),
			EndMS:      seg.End.Milliseconds(),
		})
	}

	// Stale rows from an earlier partial run are swapped out atomically
	// with the new set.
	if _, err := s.chunks.ReplaceAll(ctx, nil, videoID, rows); err != nil {
		s.cleanup(paths)
		return nil, fmt.Errorf("%w: persist chunk rows: %v", ErrChunkingFailed, err)
	}
	log.Info("audio split complete", "chunks", len(paths))

	if s.cfg.DeleteOriginalAfter {
		if err := os.Remove(audioPath); err != nil && !os.IsNotExist(err) {
			log.Warn("could not delete original audio", "path", audioPath, "error", err)
		}
	}
	return paths, nil
}

func (s *chunkService) cleanup(paths []string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			s.log.Warn("could not remove partial chunk", "path", p, "error", err)
		}
	}
}
