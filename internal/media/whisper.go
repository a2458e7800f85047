package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/vidscholar/vidscholar-backend/internal/platform/logger"
)

// LocalWhisper runs the whisper CLI over whole files. The backing runtime is
// not re-entrant, so calls are serialized with a mutex; memory stays bounded
// at one inference at a time.
type LocalWhisper struct {
	log     *logger.Logger
	binPath string
	model   string
	workDir string
	timeout time.Duration

	mu sync.Mutex
}

func NewLocalWhisper(log *logger.Logger, model, workDir string, timeout time.Duration) (*LocalWhisper, error) {
	path, err := exec.LookPath("whisper")
	if err != nil {
		return nil, fmt.Errorf("missing required binary \"whisper\" in PATH: %w", err)
	}
	if model == "" {
		model = "turbo"
	}
	if workDir == "" {
		workDir = os.TempDir()
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("create whisper work dir: %w", err)
	}
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &LocalWhisper{
		log:     log.With("service", "LocalWhisper"),
		binPath: path,
		model:   model,
		workDir: workDir,
		timeout: timeout,
	}, nil
}

// MaxFileBytes reports no per-request limit for local inference.
func (w *LocalWhisper) MaxFileBytes() int64 { return 0 }

// Transcribe runs whisper over the file and reads the produced .txt output.
// The language passes through opaquely; empty means auto-detect.
func (w *LocalWhisper) Transcribe(ctx context.Context, audioPath, language string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	outDir, err := os.MkdirTemp(w.workDir, "whisper-*")
	if err != nil {
		return "", fmt.Errorf("create whisper output dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	args := []string{
		audioPath,
		"--model", w.model,
		"--output_format", "txt",
		"--output_dir", outDir,
		"--verbose", "False",
	}
	if language != "" {
		args = append(args, "--language", language)
	}
	cmd := exec.CommandContext(ctx, w.binPath, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("whisper timed out after %s: %w", w.timeout, ctx.Err())
		}
		return "", fmt.Errorf("whisper failed: %w; out=%s", err, truncateOutput(out))
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	txtPath := filepath.Join(outDir, base+".txt")
	text, err := os.ReadFile(txtPath)
	if err != nil {
		return "", fmt.Errorf("whisper output missing at %s: %w", txtPath, err)
	}
	return strings.TrimSpace(string(text)), nil
}
