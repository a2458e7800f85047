package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"time"

	"github.com/vidscholar/vidscholar-backend/internal/platform/logger"
)

// Silence is a detected silent span in the source audio. Cuts happen at the
// midpoint so neither neighboring chunk loses speech.
type Silence struct {
	Start time.Duration
	End   time.Duration
}

func (s Silence) Midpoint() time.Duration {
	return s.Start + (s.End-s.Start)/2
}

// FFmpeg wraps the ffmpeg binary for probing, silence detection and
// stream-copy segment extraction.
type FFmpeg struct {
	log        *logger.Logger
	ffmpegPath string
	timeout    time.Duration
}

func NewFFmpeg(log *logger.Logger, binPath string, timeout time.Duration) (*FFmpeg, error) {
	bin := binPath
	if bin == "" {
		bin = "ffmpeg"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("missing required binary %q in PATH: %w", bin, err)
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &FFmpeg{
		log:        log.With("service", "FFmpeg"),
		ffmpegPath: path,
		timeout:    timeout,
	}, nil
}

// ProbeDuration reads the duration of an audio file from ffmpeg stderr.
func (f *FFmpeg) ProbeDuration(ctx context.Context, audioPath string) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, f.ffmpegPath, "-i", audioPath, "-f", "null", "-")
	out, _ := cmd.CombinedOutput()
	d, err := parseFFmpegDuration(string(out))
	if err != nil {
		return 0, fmt.Errorf("probe duration of %s: %w", audioPath, err)
	}
	return d, nil
}

// DetectSilences runs silencedetect and returns the silent spans plus the
// total duration, both parsed from the same stderr stream.
func (f *FFmpeg) DetectSilences(ctx context.Context, audioPath string, noiseDB float64, minSilence time.Duration) ([]Silence, time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	filter := fmt.Sprintf("silencedetect=noise=%ddB:d=%.2f", int(noiseDB), minSilence.Seconds())
	cmd := exec.CommandContext(ctx, f.ffmpegPath,
		"-i", audioPath,
		"-af", filter,
		"-f", "null",
		"-",
	)
	out, err := cmd.CombinedOutput()
	text := string(out)
	duration, derr := parseFFmpegDuration(text)
	if derr != nil {
		if err != nil {
			return nil, 0, fmt.Errorf("silencedetect failed: %w; out=%s", err, truncateOutput(out))
		}
		return nil, 0, fmt.Errorf("silencedetect output missing duration: %w", derr)
	}
	return parseSilences(text), duration, nil
}

// ExtractSegment copies [start, end) of in to out without re-encoding.
func (f *FFmpeg) ExtractSegment(ctx context.Context, in, out string, start, end time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, f.ffmpegPath,
		"-y",
		"-i", in,
		"-ss", formatFFmpegTime(start),
		"-to", formatFFmpegTime(end),
		"-c", "copy",
		out,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		_ = os.Remove(out)
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("segment extraction timed out after %s: %w", f.timeout, ctx.Err())
		}
		return fmt.Errorf("extract segment %s: %w; out=%s", out, err, truncateOutput(output))
	}
	if _, err := os.Stat(out); err != nil {
		return fmt.Errorf("segment output missing at %s", out)
	}
	return nil
}

var (
	ffmpegDurationRe = regexp.MustCompile(`Duration:\s*(\d+):(\d+):(\d+)\.(\d+)`)
	silenceStartRe   = regexp.MustCompile(`silence_start:\s*([\d.]+)`)
	silenceEndRe     = regexp.MustCompile(`silence_end:\s*([\d.]+)`)
	newlineRe        = regexp.MustCompile(`\r?\n`)
)

func parseFFmpegDuration(output string) (time.Duration, error) {
	m := ffmpegDurationRe.FindStringSubmatch(output)
	if m == nil {
		return 0, fmt.Errorf("no Duration line in ffmpeg output")
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	s, _ := strconv.Atoi(m[3])
	frac := m[4]
	// The fractional field is centiseconds in stock builds but trust the
	// digit count rather than the build.
	ms, _ := strconv.Atoi(frac)
	switch len(frac) {
	case 1:
		ms *= 100
	case 2:
		ms *= 10
	case 3:
	default:
		for len(frac) > 3 {
			ms /= 10
			frac = frac[:len(frac)-1]
		}
	}
	return time.Duration(h)*time.Hour +
		time.Duration(min)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(ms)*time.Millisecond, nil
}

// parseSilences pairs silence_start/silence_end lines from silencedetect.
// A trailing start without an end (file ends silent) is dropped.
func parseSilences(output string) []Silence {
	var silences []Silence
	var start time.Duration
	hasStart := false
	for _, line := range newlineRe.Split(output, -1) {
		if m := silenceStartRe.FindStringSubmatch(line); m != nil {
			if sec, err := strconv.ParseFloat(m[1], 64); err == nil {
				start = time.Duration(sec * float64(time.Second))
				hasStart = true
			}
			continue
		}
		if m := silenceEndRe.FindStringSubmatch(line); m != nil && hasStart {
			if sec, err := strconv.ParseFloat(m[1], 64); err == nil {
				silences = append(silences, Silence{Start: start, End: time.Duration(sec * float64(time.Second))})
				hasStart = false
			}
		}
	}
	return silences
}

func formatFFmpegTime(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := d.Seconds() - float64(h*3600+m*60)
	return fmt.Sprintf("%02d:%02d:%06.3f", h, m, s)
}
