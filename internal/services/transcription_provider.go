package services

import (
	"context"
	"fmt"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/vidscholar/vidscholar-backend/internal/media"
	"github.com/vidscholar/vidscholar-backend/internal/platform/logger"
)

// TranscriptionProvider converts one audio file into text. Implementations
// report their per-file upload limit; zero means unlimited.
type TranscriptionProvider interface {
	Transcribe(ctx context.Context, audioPath, language string) (string, error)
	MaxFileBytes() int64
}

// remoteWhisper calls the hosted Whisper transcription endpoint.
type remoteWhisper struct {
	log    *logger.Logger
	client *openai.Client
	model  string
}

const remoteWhisperMaxBytes = 25 * 1024 * 1024

func NewRemoteWhisper(baseLog *logger.Logger, client *openai.Client, model string) TranscriptionProvider {
	if model == "" {
		model = openai.Whisper1
	}
	return &remoteWhisper{
		log:    baseLog.With("service", "RemoteWhisper"),
		client: client,
		model:  model,
	}
}

func (r *remoteWhisper) MaxFileBytes() int64 { return remoteWhisperMaxBytes }

func (r *remoteWhisper) Transcribe(ctx context.Context, audioPath, language string) (string, error) {
	info, err := os.Stat(audioPath)
	if err != nil {
		return "", fmt.Errorf("stat audio file: %w", err)
	}
	if info.Size() > remoteWhisperMaxBytes {
		return "", fmt.Errorf("file %s is %d bytes, over the %d byte upload limit",
			audioPath, info.Size(), int64(remoteWhisperMaxBytes))
	}
	resp, err := r.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    r.model,
		FilePath: audioPath,
		Language: language,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

type ProviderConfig struct {
	Kind         string // "local" or "remote"
	Model        string
	WorkDir      string
	LocalTimeout time.Duration
}

// NewTranscriptionProvider builds the configured provider. Unknown kinds
// fail loudly rather than silently falling back.
func NewTranscriptionProvider(baseLog *logger.Logger, client *openai.Client, cfg ProviderConfig) (TranscriptionProvider, error) {
	switch cfg.Kind {
	case "remote":
		return NewRemoteWhisper(baseLog, client, cfg.Model), nil
	case "local":
		return media.NewLocalWhisper(baseLog, cfg.Model, cfg.WorkDir, cfg.LocalTimeout)
	default:
		return nil, fmt.Errorf("unknown transcription provider %q, want local or remote", cfg.Kind)
	}
}
