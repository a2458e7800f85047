package app

import (
	"github.com/vidscholar/vidscholar-backend/internal/handlers"
	"github.com/vidscholar/vidscholar-backend/internal/platform/logger"
)

type Handlers struct {
	Video         *handlers.VideoHandler
	Transcription *handlers.TranscriptionHandler
	Question      *handlers.QuestionHandler
	Generation    *handlers.GenerationHandler
}

func wireHandlers(log *logger.Logger, serviceset Services) Handlers {
	return Handlers{
		Video:         handlers.NewVideoHandler(log, serviceset.Video),
		Transcription: handlers.NewTranscriptionHandler(log, serviceset.Transcription),
		Question:      handlers.NewQuestionHandler(log, serviceset.Question),
		Generation:    handlers.NewGenerationHandler(log, serviceset.Generation),
	}
}
