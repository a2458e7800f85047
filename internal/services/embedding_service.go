package services

import (
	"context"
	"fmt"
	"math"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"

	"github.com/vidscholar/vidscholar-backend/internal/platform/logger"
)

type EmbeddingConfig struct {
	Model         string
	Dimension     int
	MaxInputChars int // default 8000
}

// EmbeddingService turns transcription text into a unit-norm vector for
// cosine search. Over-long input is truncated from the end so the opening
// of the transcript, where topic statements cluster, is what gets embedded.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

type embeddingService struct {
	log    *logger.Logger
	client *openai.Client
	retry  RetryPolicy
	cfg    EmbeddingConfig
}

func NewEmbeddingService(baseLog *logger.Logger, client *openai.Client, cfg EmbeddingConfig) EmbeddingService {
	if cfg.MaxInputChars <= 0 {
		cfg.MaxInputChars = 8000
	}
	return &embeddingService{
		log:    baseLog.With("service", "EmbeddingService"),
		client: client,
		retry:  DefaultRetryPolicy(),
		cfg:    cfg,
	}
}

func (s *embeddingService) Dimension() int { return s.cfg.Dimension }

func (s *embeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty input", ErrEmbeddingFailed)
	}
	text = TruncateUTF8(text, s.cfg.MaxInputChars)

	var vector []float32
	err := s.retry.Do(ctx, func() error {
		resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: []string{text},
			Model: openai.EmbeddingModel(s.cfg.Model),
		})
		if err != nil {
			return err
		}
		if len(resp.Data) == 0 {
			return fmt.Errorf("embedding response carried no data")
		}
		vector = resp.Data[0].Embedding
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	if len(vector) != s.cfg.Dimension {
		return nil, fmt.Errorf("%w: model returned %d dims, want %d",
			ErrEmbeddingFailed, len(vector), s.cfg.Dimension)
	}
	return Normalize(vector), nil
}

// TruncateUTF8 cuts s to at most max bytes, backing up so the cut never
// lands inside a multi-byte rune.
func TruncateUTF8(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// Normalize scales v to unit length. Zero vectors pass through unchanged.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
