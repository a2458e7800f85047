package app

import (
	"gorm.io/gorm"

	"github.com/vidscholar/vidscholar-backend/internal/platform/logger"
	"github.com/vidscholar/vidscholar-backend/internal/repos"
)

type Repos struct {
	Video         repos.VideoRepo
	AudioChunk    repos.AudioChunkRepo
	Transcription repos.TranscriptionRepo
	Generation    repos.GenerationRepo
	Question      repos.QuestionRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger, embeddingDim int) Repos {
	return Repos{
		Video:         repos.NewVideoRepo(db, log),
		AudioChunk:    repos.NewAudioChunkRepo(db, log),
		Transcription: repos.NewTranscriptionRepo(db, log, embeddingDim),
		Generation:    repos.NewGenerationRepo(db, log),
		Question:      repos.NewQuestionRepo(db, log),
	}
}
