package app

import (
	"github.com/gin-gonic/gin"

	"github.com/vidscholar/vidscholar-backend/internal/platform/logger"
	"github.com/vidscholar/vidscholar-backend/internal/server"
)

func wireRouter(log *logger.Logger, cfg Config, handlerset Handlers) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		Log:                  log,
		CORSOrigins:          cfg.CORSOrigins,
		VideoHandler:         handlerset.Video,
		TranscriptionHandler: handlerset.Transcription,
		QuestionHandler:      handlerset.Question,
		GenerationHandler:    handlerset.Generation,
	})
}
