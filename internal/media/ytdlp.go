package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/vidscholar/vidscholar-backend/internal/platform/logger"
)

// VideoMetadata is the subset of yt-dlp's --dump-json output we keep.
type VideoMetadata struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnail"`
	DurationSec  float64 `json:"duration"`
	Uploader     string `json:"uploader"`
}

// Downloader wraps the yt-dlp binary. One download per external id; output
// paths are derived from the id so concurrent requests cannot collide.
type Downloader struct {
	log         *logger.Logger
	ytdlpPath   string
	audioDir    string
	audioFormat string
	timeout     time.Duration
}

type DownloaderConfig struct {
	YtdlpPath   string // binary name or absolute path, default "yt-dlp"
	AudioDir    string // <storage>/audio
	AudioFormat string // "wav" or "mp3"
	Timeout     time.Duration
}

func NewDownloader(log *logger.Logger, cfg DownloaderConfig) (*Downloader, error) {
	bin := cfg.YtdlpPath
	if bin == "" {
		bin = "yt-dlp"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("missing required binary %q in PATH: %w", bin, err)
	}
	if cfg.AudioDir == "" {
		return nil, fmt.Errorf("audio directory required")
	}
	if err := os.MkdirAll(cfg.AudioDir, 0o755); err != nil {
		return nil, fmt.Errorf("create audio dir: %w", err)
	}
	format := cfg.AudioFormat
	if format != "wav" && format != "mp3" {
		format = "wav"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &Downloader{
		log:         log.With("service", "Downloader"),
		ytdlpPath:   path,
		audioDir:    cfg.AudioDir,
		audioFormat: format,
		timeout:     timeout,
	}, nil
}

// AudioPath is where the audio artifact for videoID lives once downloaded.
func (d *Downloader) AudioPath(videoID string) string {
	return filepath.Join(d.audioDir, videoID+"."+d.audioFormat)
}

// Probe resolves metadata without downloading anything.
func (d *Downloader) Probe(ctx context.Context, url string) (*VideoMetadata, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	cmd := exec.CommandContext(ctx, d.ytdlpPath,
		"--dump-json",
		"--skip-download",
		"--no-playlist",
		"--no-warnings",
		url,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("yt-dlp probe failed: %w; stderr=%s", err, stderr.String())
	}
	var meta VideoMetadata
	if err := json.Unmarshal(stdout.Bytes(), &meta); err != nil {
		return nil, fmt.Errorf("parse yt-dlp metadata: %w", err)
	}
	if meta.ID == "" {
		return nil, fmt.Errorf("yt-dlp metadata missing video id")
	}
	return &meta, nil
}

// DownloadAudio fetches best audio for the video, transcoded to the
// configured format, with metadata and thumbnail embedded. Returns the
// produced path. A nonzero exit or missing output file is an error; no
// partial artifact is left behind.
func (d *Downloader) DownloadAudio(ctx context.Context, url, videoID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	outTemplate := filepath.Join(d.audioDir, videoID+".%(ext)s")
	args := []string{
		"--no-playlist",
		"--no-warnings",
		"-f", "bestaudio/best",
		"-x",
		"--audio-format", d.audioFormat,
		"--embed-metadata",
		"--embed-thumbnail",
		"-o", outTemplate,
		url,
	}
	cmd := exec.CommandContext(ctx, d.ytdlpPath, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		_ = os.Remove(d.AudioPath(videoID))
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("yt-dlp timed out after %s: %w", d.timeout, ctx.Err())
		}
		return "", fmt.Errorf("yt-dlp download failed: %w; out=%s", err, truncateOutput(out))
	}

	audioPath := d.AudioPath(videoID)
	if _, err := os.Stat(audioPath); err != nil {
		return "", fmt.Errorf("audio output missing at %s", audioPath)
	}
	return audioPath, nil
}

func truncateOutput(out []byte) string {
	const max = 2048
	if len(out) > max {
		out = out[len(out)-max:]
	}
	return string(out)
}
