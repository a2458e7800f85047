package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/vidscholar/vidscholar-backend/internal/handlers"
	"github.com/vidscholar/vidscholar-backend/internal/middleware"
	"github.com/vidscholar/vidscholar-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log                  *logger.Logger
	CORSOrigins          []string
	VideoHandler         *handlers.VideoHandler
	TranscriptionHandler *handlers.TranscriptionHandler
	QuestionHandler      *handlers.QuestionHandler
	GenerationHandler    *handlers.GenerationHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(cfg.Log))

	// Cors
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", middleware.RequestIDHeader},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		// Videos
		api.POST("/videos/download", cfg.VideoHandler.DownloadVideos)
		api.POST("/videos/transcribe", cfg.TranscriptionHandler.TranscribeVideos)
		api.GET("/videos", cfg.VideoHandler.ListVideos)
		api.GET("/videos/:video_id", cfg.VideoHandler.GetVideo)
		api.DELETE("/videos/:video_id", cfg.VideoHandler.DeleteVideo)

		// Transcriptions
		api.POST("/transcriptions/transcribe", cfg.TranscriptionHandler.TranscribeVideos)
		api.GET("/transcriptions", cfg.TranscriptionHandler.ListTranscriptions)
		api.GET("/transcriptions/video/:video_id", cfg.TranscriptionHandler.GetByVideo)
		api.GET("/transcriptions/:id", cfg.TranscriptionHandler.GetTranscription)
		api.DELETE("/transcriptions/:id", cfg.TranscriptionHandler.DeleteTranscription)

		// Questions
		api.POST("/questions/generate", cfg.QuestionHandler.GenerateQuestions)
		api.GET("/questions/health", cfg.QuestionHandler.Health)

		// Generations
		api.GET("/generations", cfg.GenerationHandler.ListGenerations)
		api.GET("/generations/:id", cfg.GenerationHandler.GetGeneration)
		api.DELETE("/generations/:id", cfg.GenerationHandler.DeleteGeneration)
		api.PUT("/generations/:id/questions/reorder", cfg.GenerationHandler.ReorderQuestions)
		api.PUT("/generations/:id/questions/:question_id", cfg.GenerationHandler.UpdateQuestion)
		api.DELETE("/generations/:id/questions/:question_id", cfg.GenerationHandler.DeleteQuestion)
	}

	return router
}
