package services

import (
	"context"
	"errors"
	"os"

	"github.com/vidscholar/vidscholar-backend/internal/media"
	"github.com/vidscholar/vidscholar-backend/internal/platform/logger"
	"github.com/vidscholar/vidscholar-backend/internal/repos"
	"github.com/vidscholar/vidscholar-backend/internal/types"
)

// Batch item statuses reported in download results.
const (
	StatusSuccess   = "success"
	StatusDuplicate = "duplicate"
	StatusFailed    = "failed"
)

// DownloadResult is one per-URL outcome in a batch download response.
type DownloadResult struct {
	URL     string       `json:"url"`
	VideoID string       `json:"video_id,omitempty"`
	Status  string       `json:"status"`
	Error   string       `json:"error,omitempty"`
	Video   *types.Video `json:"video,omitempty"`
}

// MediaFetcher is the slice of the downloader the video service needs.
type MediaFetcher interface {
	AudioPath(videoID string) string
	Probe(ctx context.Context, url string) (*media.VideoMetadata, error)
	DownloadAudio(ctx context.Context, url, videoID string) (string, error)
}

type VideoService interface {
	// DownloadBatch ingests URLs sequentially; one result per input URL,
	// in input order. Individual failures never abort the batch.
	DownloadBatch(ctx context.Context, urls []string) []DownloadResult
	List(ctx context.Context, skip, limit int) ([]*types.Video, error)
	Get(ctx context.Context, videoID string) (*types.Video, error)
	// Delete refuses with a DependencyError when chunks, transcriptions
	// or questions reference the video and cascade is false.
	Delete(ctx context.Context, videoID string, cascade bool) error
}

type videoService struct {
	log            *logger.Logger
	fetcher        MediaFetcher
	videos         repos.VideoRepo
	chunks         repos.AudioChunkRepo
	transcriptions repos.TranscriptionRepo
	questions      repos.QuestionRepo
}

func NewVideoService(
	baseLog *logger.Logger,
	fetcher MediaFetcher,
	videos repos.VideoRepo,
	chunks repos.AudioChunkRepo,
	transcriptions repos.TranscriptionRepo,
	questions repos.QuestionRepo,
) VideoService {
	return &videoService{
		log:            baseLog.With("service", "VideoService"),
		fetcher:        fetcher,
		videos:         videos,
		chunks:         chunks,
		transcriptions: transcriptions,
		questions:      questions,
	}
}

func (s *videoService) DownloadBatch(ctx context.Context, urls []string) []DownloadResult {
	return RunSequential(ctx, urls,
		s.downloadOne,
		func(url string) DownloadResult {
			return DownloadResult{URL: url, Status: StatusFailed, Error: "request cancelled before item started"}
		},
	)
}

func (s *videoService) downloadOne(ctx context.Context, url string) DownloadResult {
	videoID, err := media.ExtractVideoID(url)
	if err != nil {
		return DownloadResult{URL: url, Status: StatusFailed, Error: err.Error()}
	}
	log := s.log.With("video_id", videoID)

	if existing, err := s.videos.GetByVideoID(ctx, nil, videoID); err == nil {
		log.Info("video already present, skipping download")
		return DownloadResult{URL: url, VideoID: videoID, Status: StatusDuplicate, Video: existing}
	} else if !errors.Is(err, repos.ErrNotFound) {
		return DownloadResult{URL: url, VideoID: videoID, Status: StatusFailed, Error: err.Error()}
	}

	meta, err := s.fetcher.Probe(ctx, url)
	if err != nil {
		log.Error("metadata probe failed", "error", err)
		return DownloadResult{URL: url, VideoID: videoID, Status: StatusFailed, Error: err.Error()}
	}

	audioPath, err := s.fetcher.DownloadAudio(ctx, url, videoID)
	if err != nil {
		log.Error("audio download failed", "error", err)
		return DownloadResult{URL: url, VideoID: videoID, Status: StatusFailed, Error: err.Error()}
	}

	video := &types.Video{
		VideoID:        videoID,
		Title:          meta.Title,
		FilePath:       &audioPath,
		DownloadStatus: types.DownloadStatusCompleted,
	}
	if meta.ThumbnailURL != "" {
		thumb := meta.ThumbnailURL
		video.ThumbnailURL = &thumb
	}
	created, err := s.videos.Create(ctx, nil, video)
	if err != nil {
		if errors.Is(err, repos.ErrDuplicate) {
			// Lost a race with a concurrent request for the same id.
			if existing, getErr := s.videos.GetByVideoID(ctx, nil, videoID); getErr == nil {
				return DownloadResult{URL: url, VideoID: videoID, Status: StatusDuplicate, Video: existing}
			}
		}
		log.Error("video insert failed", "error", err)
		return DownloadResult{URL: url, VideoID: videoID, Status: StatusFailed, Error: err.Error()}
	}
	log.Info("video ingested", "title", created.Title)
	return DownloadResult{URL: url, VideoID: videoID, Status: StatusSuccess, Video: created}
}

func (s *videoService) List(ctx context.Context, skip, limit int) ([]*types.Video, error) {
	return s.videos.List(ctx, nil, skip, limit)
}

func (s *videoService) Get(ctx context.Context, videoID string) (*types.Video, error) {
	return s.videos.GetByVideoID(ctx, nil, videoID)
}

func (s *videoService) Delete(ctx context.Context, videoID string, cascade bool) error {
	video, err := s.videos.GetByVideoID(ctx, nil, videoID)
	if err != nil {
		return err
	}

	chunks, err := s.chunks.ListByVideoID(ctx, nil, videoID)
	if err != nil {
		return err
	}
	transcriptions, err := s.transcriptions.ListByVideoID(ctx, nil, videoID)
	if err != nil {
		return err
	}
	questions, err := s.questions.ListByVideoID(ctx, nil, videoID)
	if err != nil {
		return err
	}
	if !cascade && (len(chunks) > 0 || len(transcriptions) > 0 || len(questions) > 0) {
		dep := &DependencyError{}
		for _, c := range chunks {
			dep.Resources = append(dep.Resources, DependentResource{Type: "audio_chunk", ID: c.ID})
		}
		for _, t := range transcriptions {
			dep.Resources = append(dep.Resources, DependentResource{Type: "transcription", ID: t.ID})
		}
		for _, q := range questions {
			dep.Resources = append(dep.Resources, DependentResource{Type: "question", ID: q.ID})
		}
		return dep
	}

	if err := s.videos.Delete(ctx, nil, videoID); err != nil {
		return err
	}

	// Row is gone; file removal is best effort. Orphans get logged, not
	// surfaced, so the API result matches the database.
	if video.FilePath != nil {
		s.removeFile(*video.FilePath)
	}
	for _, c := range chunks {
		s.removeFile(c.FilePath)
	}
	return nil
}

func (s *videoService) removeFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.log.Warn("orphaned file left on disk", "path", path, "error", err)
	}
}
