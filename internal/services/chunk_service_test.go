package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vidscholar/vidscholar-backend/internal/media"
	"github.com/vidscholar/vidscholar-backend/internal/types"
)

type fakeToolkit struct {
	total        time.Duration
	silences     []media.Silence
	extracted    int
	failAtChunk  int // -1 to never fail
	segmentBytes int
}

func (f *fakeToolkit) DetectSilences(context.Context, string, float64, time.Duration) ([]media.Silence, time.Duration, error) {
	return f.silences, f.total, nil
}

func (f *fakeToolkit) ExtractSegment(_ context.Context, _, out string, _, _ time.Duration) error {
	if f.failAtChunk >= 0 && f.extracted == f.failAtChunk {
		return fmt.Errorf("extraction blew up")
	}
	f.extracted++
	size := f.segmentBytes
	if size == 0 {
		size = 1024
	}
	return os.WriteFile(out, make([]byte, size), 0o644)
}

func seedSizedFile(t *testing.T, dir string, size int) string {
	t.Helper()
	path := filepath.Join(dir, "abc12345678.wav")
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	return path
}

func newTestChunkService(t *testing.T, toolkit AudioToolkit, repo *fakeChunkRepo, maxBytes int64) ChunkService {
	t.Helper()
	svc, err := NewChunkService(testLogger(t), toolkit, repo, ChunkServiceConfig{
		ChunkDir:      filepath.Join(t.TempDir(), "chunks"),
		MaxChunkBytes: maxBytes,
	})
	if err != nil {
		t.Fatalf("init chunk service: %v", err)
	}
	return svc
}

func TestEnsureChunksPassthroughUnderThreshold(t *testing.T) {
	dir := t.TempDir()
	path := seedSizedFile(t, dir, 100)
	repo := &fakeChunkRepo{chunks: map[string][]*types.AudioChunk{}}
	svc := newTestChunkService(t, &fakeToolkit{failAtChunk: -1}, repo, 1024)

	paths, err := svc.EnsureChunks(context.Background(), &types.Video{VideoID: "abc12345678", FilePath: &path})
	if err != nil {
		t.Fatalf("EnsureChunks: %v", err)
	}
	if len(paths) != 1 || paths[0] != path {
		t.Fatalf("paths = %v, want just the original", paths)
	}
	if len(repo.chunks) != 0 {
		t.Fatalf("chunk rows persisted for a file under the threshold")
	}
}

func TestEnsureChunksSplitsOversizedFile(t *testing.T) {
	dir := t.TempDir()
	path := seedSizedFile(t, dir, 4096)
	repo := &fakeChunkRepo{chunks: map[string][]*types.AudioChunk{}}
	toolkit := &fakeToolkit{
		total:       40 * time.Minute,
		failAtChunk: -1,
		silences: []media.Silence{
			{Start: 9 * time.Minute, End: 9*time.Minute + 10*time.Second},
			{Start: 19 * time.Minute, End: 19*time.Minute + 10*time.Second},
			{Start: 29 * time.Minute, End: 29*time.Minute + 10*time.Second},
		},
	}
	svc := newTestChunkService(t, toolkit, repo, 1024)

	paths, err := svc.EnsureChunks(context.Background(), &types.Video{VideoID: "abc12345678", FilePath: &path})
	if err != nil {
		t.Fatalf("EnsureChunks: %v", err)
	}
	if len(paths) < 2 {
		t.Fatalf("got %d chunks for a 4x oversized file", len(paths))
	}
	rows := repo.chunks["abc12345678"]
	if len(rows) != len(paths) {
		t.Fatalf("%d rows persisted for %d chunks", len(rows), len(paths))
	}
	for i, row := range rows {
		if row.ChunkIndex != i {
			t.Fatalf("row %d has index %d", i, row.ChunkIndex)
		}
		if i > 0 && row.StartMS != rows[i-1].EndMS {
			t.Fatalf("chunks not contiguous at %d: %d != %d", i, rows[i-1].EndMS, row.StartMS)
		}
		if _, err := os.Stat(row.FilePath); err != nil {
			t.Fatalf("chunk file missing: %v", err)
		}
	}
	if rows[0].StartMS != 0 {
		t.Fatalf("first chunk starts at %dms", rows[0].StartMS)
	}
	if rows[len(rows)-1].EndMS != (40 * time.Minute).Milliseconds() {
		t.Fatalf("last chunk ends at %dms", rows[len(rows)-1].EndMS)
	}
}

func TestEnsureChunksIdempotentReuse(t *testing.T) {
	dir := t.TempDir()
	path := seedSizedFile(t, dir, 4096)
	chunkPath := filepath.Join(dir, "abc12345678_chunk_000.wav")
	if err := os.WriteFile(chunkPath, []byte("RIFF"), 0o644); err != nil {
		t.Fatalf("seed chunk: %v", err)
	}
	repo := &fakeChunkRepo{chunks: map[string][]*types.AudioChunk{
		"abc12345678": {{VideoID: "abc12345678", ChunkIndex: 0, FilePath: chunkPath}},
	}}
	toolkit := &fakeToolkit{total: 40 * time.Minute, failAtChunk: -1}
	svc := newTestChunkService(t, toolkit, repo, 1024)

	paths, err := svc.EnsureChunks(context.Background(), &types.Video{VideoID: "abc12345678", FilePath: &path})
	if err != nil {
		t.Fatalf("EnsureChunks: %v", err)
	}
	if len(paths) != 1 || paths[0] != chunkPath {
		t.Fatalf("paths = %v, want the persisted chunk", paths)
	}
	if toolkit.extracted != 0 {
		t.Fatalf("re-split despite reusable chunks")
	}
}

func TestEnsureChunksReplacesStaleRows(t *testing.T) {
	dir := t.TempDir()
	path := seedSizedFile(t, dir, 4096)
	// Persisted rows whose files are gone force a re-split; the old rows
	// must be swapped for the new set, not merged with it.
	stale := filepath.Join(dir, "gone_chunk_000.wav")
	repo := &fakeChunkRepo{chunks: map[string][]*types.AudioChunk{
		"abc12345678": {{ID: 5, VideoID: "abc12345678", ChunkIndex: 0, FilePath: stale}},
	}}
	toolkit := &fakeToolkit{
		total:       40 * time.Minute,
		failAtChunk: -1,
		silences: []media.Silence{
			{Start: 9 * time.Minute, End: 9*time.Minute + 10*time.Second},
			{Start: 19 * time.Minute, End: 19*time.Minute + 10*time.Second},
		},
	}
	svc := newTestChunkService(t, toolkit, repo, 1024)

	paths, err := svc.EnsureChunks(context.Background(), &types.Video{VideoID: "abc12345678", FilePath: &path})
	if err != nil {
		t.Fatalf("EnsureChunks: %v", err)
	}
	rows := repo.chunks["abc12345678"]
	if len(rows) != len(paths) {
		t.Fatalf("%d rows persisted for %d chunks", len(rows), len(paths))
	}
	for _, row := range rows {
		if row.FilePath == stale {
			t.Fatalf("stale row survived the replacement")
		}
	}
}

func TestEnsureChunksCleansUpOnExtractionFailure(t *testing.T) {
	dir := t.TempDir()
	path := seedSizedFile(t, dir, 4096)
	chunkDir := filepath.Join(t.TempDir(), "chunks")
	repo := &fakeChunkRepo{chunks: map[string][]*types.AudioChunk{}}
	toolkit := &fakeToolkit{total: 40 * time.Minute, failAtChunk: 2}
	svc, err := NewChunkService(testLogger(t), toolkit, repo, ChunkServiceConfig{
		ChunkDir:      chunkDir,
		MaxChunkBytes: 1024,
	})
	if err != nil {
		t.Fatalf("init chunk service: %v", err)
	}

	_, err = svc.EnsureChunks(context.Background(), &types.Video{VideoID: "abc12345678", FilePath: &path})
	if err == nil {
		t.Fatalf("EnsureChunks succeeded despite extraction failure")
	}
	if len(repo.chunks) != 0 {
		t.Fatalf("rows persisted after failed split")
	}
	// Chunks written before the failure are removed.
	matches, _ := filepath.Glob(filepath.Join(chunkDir, "abc12345678", "*"))
	if len(matches) != 0 {
		t.Fatalf("partial chunks left behind: %v", matches)
	}
}
