package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"gorm.io/gorm"

	"github.com/vidscholar/vidscholar-backend/internal/platform/logger"
	"github.com/vidscholar/vidscholar-backend/internal/repos"
	"github.com/vidscholar/vidscholar-backend/internal/types"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

type fakeVideoRepo struct {
	videos map[string]*types.Video
}

func (f *fakeVideoRepo) Create(_ context.Context, _ *gorm.DB, v *types.Video) (*types.Video, error) {
	if _, ok := f.videos[v.VideoID]; ok {
		return nil, repos.ErrDuplicate
	}
	v.ID = uint(len(f.videos) + 1)
	f.videos[v.VideoID] = v
	return v, nil
}

func (f *fakeVideoRepo) GetByVideoID(_ context.Context, _ *gorm.DB, videoID string) (*types.Video, error) {
	v, ok := f.videos[videoID]
	if !ok {
		return nil, repos.ErrNotFound
	}
	return v, nil
}

func (f *fakeVideoRepo) List(_ context.Context, _ *gorm.DB, _, _ int) ([]*types.Video, error) {
	var out []*types.Video
	for _, v := range f.videos {
		out = append(out, v)
	}
	return out, nil
}

func (f *fakeVideoRepo) UpdateStatus(_ context.Context, _ *gorm.DB, videoID, status string) error {
	v, ok := f.videos[videoID]
	if !ok {
		return repos.ErrNotFound
	}
	v.DownloadStatus = status
	return nil
}

func (f *fakeVideoRepo) Delete(_ context.Context, _ *gorm.DB, videoID string) error {
	if _, ok := f.videos[videoID]; !ok {
		return repos.ErrNotFound
	}
	delete(f.videos, videoID)
	return nil
}

type fakeTranscriptionRepo struct {
	rows   []*types.Transcription
	nextID uint
	fail   bool
}

func (f *fakeTranscriptionRepo) Create(_ context.Context, _ *gorm.DB, tr *types.Transcription) (*types.Transcription, error) {
	if f.fail {
		return nil, errors.New("insert refused")
	}
	f.nextID++
	tr.ID = f.nextID
	f.rows = append(f.rows, tr)
	return tr, nil
}

func (f *fakeTranscriptionRepo) GetByID(_ context.Context, _ *gorm.DB, id uint) (*types.Transcription, error) {
	for _, r := range f.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, repos.ErrNotFound
}

func (f *fakeTranscriptionRepo) List(_ context.Context, _ *gorm.DB, _, _ int, videoID string) ([]*types.Transcription, int64, error) {
	var out []*types.Transcription
	for _, r := range f.rows {
		if videoID == "" || r.VideoID == videoID {
			out = append(out, r)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeTranscriptionRepo) ListByVideoID(ctx context.Context, tx *gorm.DB, videoID string) ([]*types.Transcription, error) {
	out, _, err := f.List(ctx, tx, 0, 0, videoID)
	return out, err
}

func (f *fakeTranscriptionRepo) LatestByVideoID(_ context.Context, _ *gorm.DB, videoID string) (*types.Transcription, error) {
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].VideoID == videoID {
			return f.rows[i], nil
		}
	}
	return nil, repos.ErrNotFound
}

func (f *fakeTranscriptionRepo) Delete(_ context.Context, _ *gorm.DB, id uint) error {
	for i, r := range f.rows {
		if r.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return repos.ErrNotFound
}

type fakeChunker struct {
	paths []string
	err   error
}

func (f *fakeChunker) EnsureChunks(context.Context, *types.Video) ([]string, error) {
	return f.paths, f.err
}

type fakeProvider struct {
	texts    map[string]string
	failures int
	calls    int
}

func (f *fakeProvider) MaxFileBytes() int64 { return 0 }

func (f *fakeProvider) Transcribe(_ context.Context, audioPath, _ string) (string, error) {
	f.calls++
	if f.failures > 0 {
		f.failures--
		return "", &openai.APIError{HTTPStatusCode: 500}
	}
	text, ok := f.texts[audioPath]
	if !ok {
		return "", fmt.Errorf("no fixture for %s", audioPath)
	}
	return text, nil
}

type fakeEmbedder struct {
	dim  int
	fail bool
}

func (f *fakeEmbedder) Dimension() int { return f.dim }

func (f *fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	if f.fail {
		return nil, ErrEmbeddingFailed
	}
	return make([]float32, f.dim), nil
}

func seedAudioFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "abc12345678.wav")
	if err := os.WriteFile(path, []byte("RIFF"), 0o644); err != nil {
		t.Fatalf("seed audio file: %v", err)
	}
	return path
}

func newTestTranscriptionService(t *testing.T, videoRepo *fakeVideoRepo, trRepo *fakeTranscriptionRepo, chunker ChunkService, provider TranscriptionProvider, embedder EmbeddingService) TranscriptionService {
	t.Helper()
	svc := NewTranscriptionService(testLogger(t), provider, chunker, embedder, videoRepo, trRepo)
	impl := svc.(*transcriptionService)
	impl.retry = fastPolicy(3)
	return svc
}

func TestTranscribeBatchSuccess(t *testing.T) {
	audio := seedAudioFile(t)
	videoRepo := &fakeVideoRepo{videos: map[string]*types.Video{
		"abc12345678": {VideoID: "abc12345678", FilePath: &audio},
	}}
	trRepo := &fakeTranscriptionRepo{}
	chunker := &fakeChunker{paths: []string{"p0", "p1"}}
	provider := &fakeProvider{texts: map[string]string{
		"p0": "  hello world ",
		"p1": "second chunk",
	}}
	svc := newTestTranscriptionService(t, videoRepo, trRepo, chunker, provider, &fakeEmbedder{dim: 4})

	results := svc.TranscribeBatch(context.Background(), []string{"abc12345678"}, "")
	if len(results) != 1 {
		t.Fatalf("got %d results", len(results))
	}
	r := results[0]
	if r.Status != StatusSuccess {
		t.Fatalf("status=%q error=%q", r.Status, r.Error)
	}
	if r.TranscriptionStatus != types.TranscriptionStatusCompleted {
		t.Fatalf("transcription status=%q", r.TranscriptionStatus)
	}
	if r.StepsCompleted != TranscribeTotalSteps || r.TotalSteps != TranscribeTotalSteps {
		t.Fatalf("steps=%d/%d", r.StepsCompleted, r.TotalSteps)
	}
	if len(trRepo.rows) != 1 {
		t.Fatalf("stored %d rows", len(trRepo.rows))
	}
	if got := trRepo.rows[0].TranscriptionText; got != "hello world second chunk" {
		t.Fatalf("joined text = %q", got)
	}
	if trRepo.rows[0].VectorEmbedding == nil {
		t.Fatalf("embedding missing on success path")
	}
}

func TestTranscribeBatchUnknownVideo(t *testing.T) {
	videoRepo := &fakeVideoRepo{videos: map[string]*types.Video{}}
	svc := newTestTranscriptionService(t, videoRepo, &fakeTranscriptionRepo{},
		&fakeChunker{}, &fakeProvider{}, &fakeEmbedder{dim: 4})

	results := svc.TranscribeBatch(context.Background(), []string{"missing00ab"}, "")
	if results[0].Status != StatusNotFound {
		t.Fatalf("status=%q, want not_found", results[0].Status)
	}
	if results[0].StepsCompleted != 0 {
		t.Fatalf("steps=%d, want 0 when the video is unknown", results[0].StepsCompleted)
	}
}

func TestTranscribeBatchNoAudio(t *testing.T) {
	gone := "/nonexistent/abc12345678.wav"
	videoRepo := &fakeVideoRepo{videos: map[string]*types.Video{
		"abc12345678": {VideoID: "abc12345678", FilePath: &gone},
	}}
	svc := newTestTranscriptionService(t, videoRepo, &fakeTranscriptionRepo{},
		&fakeChunker{err: ErrChunkingFailed}, &fakeProvider{}, &fakeEmbedder{dim: 4})

	results := svc.TranscribeBatch(context.Background(), []string{"abc12345678"}, "")
	if results[0].Status != StatusNoAudio {
		t.Fatalf("status=%q, want no_audio", results[0].Status)
	}
}

func TestTranscribeBatchEmbeddingFailureDegrades(t *testing.T) {
	audio := seedAudioFile(t)
	videoRepo := &fakeVideoRepo{videos: map[string]*types.Video{
		"abc12345678": {VideoID: "abc12345678", FilePath: &audio},
	}}
	trRepo := &fakeTranscriptionRepo{}
	chunker := &fakeChunker{paths: []string{"p0"}}
	provider := &fakeProvider{texts: map[string]string{"p0": "only chunk"}}
	svc := newTestTranscriptionService(t, videoRepo, trRepo, chunker, provider, &fakeEmbedder{dim: 4, fail: true})

	results := svc.TranscribeBatch(context.Background(), []string{"abc12345678"}, "")
	r := results[0]
	if r.Status != StatusSuccess {
		t.Fatalf("status=%q error=%q, embedding failure must not fail the run", r.Status, r.Error)
	}
	if r.TranscriptionStatus != types.TranscriptionStatusNoEmbedding {
		t.Fatalf("transcription status=%q, want completed_no_embedding", r.TranscriptionStatus)
	}
	if trRepo.rows[0].VectorEmbedding != nil {
		t.Fatalf("vector stored despite embedding failure")
	}
}

func TestTranscribeBatchProviderRetriesThenSucceeds(t *testing.T) {
	audio := seedAudioFile(t)
	videoRepo := &fakeVideoRepo{videos: map[string]*types.Video{
		"abc12345678": {VideoID: "abc12345678", FilePath: &audio},
	}}
	trRepo := &fakeTranscriptionRepo{}
	provider := &fakeProvider{failures: 2, texts: map[string]string{"p0": "recovered"}}
	svc := newTestTranscriptionService(t, videoRepo, trRepo,
		&fakeChunker{paths: []string{"p0"}}, provider, &fakeEmbedder{dim: 4})

	results := svc.TranscribeBatch(context.Background(), []string{"abc12345678"}, "")
	if results[0].Status != StatusSuccess {
		t.Fatalf("status=%q error=%q", results[0].Status, results[0].Error)
	}
	if provider.calls != 3 {
		t.Fatalf("provider called %d times, want 3", provider.calls)
	}
}

func TestTranscribeBatchProviderExhaustionFailsVideo(t *testing.T) {
	audio := seedAudioFile(t)
	videoRepo := &fakeVideoRepo{videos: map[string]*types.Video{
		"abc12345678": {VideoID: "abc12345678", FilePath: &audio},
	}}
	trRepo := &fakeTranscriptionRepo{}
	provider := &fakeProvider{failures: 10, texts: map[string]string{"p0": "never"}}
	svc := newTestTranscriptionService(t, videoRepo, trRepo,
		&fakeChunker{paths: []string{"p0"}}, provider, &fakeEmbedder{dim: 4})

	results := svc.TranscribeBatch(context.Background(), []string{"abc12345678"}, "")
	if results[0].Status != StatusFailed {
		t.Fatalf("status=%q, want failed", results[0].Status)
	}
	if len(trRepo.rows) != 0 {
		t.Fatalf("partial transcription persisted")
	}
}

func TestTranscribeBatchOrderAndIsolation(t *testing.T) {
	audio := seedAudioFile(t)
	videoRepo := &fakeVideoRepo{videos: map[string]*types.Video{
		"abc12345678": {VideoID: "abc12345678", FilePath: &audio},
	}}
	trRepo := &fakeTranscriptionRepo{}
	provider := &fakeProvider{texts: map[string]string{"p0": "fine"}}
	svc := newTestTranscriptionService(t, videoRepo, trRepo,
		&fakeChunker{paths: []string{"p0"}}, provider, &fakeEmbedder{dim: 4})

	results := svc.TranscribeBatch(context.Background(), []string{"missing00ab", "abc12345678"}, "")
	if results[0].VideoID != "missing00ab" || results[0].Status != StatusNotFound {
		t.Fatalf("first result = %+v", results[0])
	}
	if results[1].VideoID != "abc12345678" || results[1].Status != StatusSuccess {
		t.Fatalf("second result = %+v", results[1])
	}
}
