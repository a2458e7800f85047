package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/vidscholar/vidscholar-backend/internal/platform/logger"
	"github.com/vidscholar/vidscholar-backend/internal/types"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewPostgresService connects with the given DSN and ensures the pgvector
// extension is present. A missing extension is a startup failure, not
// something to limp along without.
func NewPostgresService(dsn string, log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	serviceLog.Info("Connecting to Postgres...")
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := gdb.Exec(`CREATE EXTENSION IF NOT EXISTS vector;`).Error; err != nil {
		return nil, fmt.Errorf("enable pgvector extension: %w", err)
	}
	serviceLog.Info("pgvector extension enabled")

	return &PostgresService{db: gdb, log: serviceLog}, nil
}

// AutoMigrateAll creates the tables, pins the vector column to the configured
// dimension and installs the foreign keys GORM is told not to manage.
func (s *PostgresService) AutoMigrateAll(embeddingDim int) error {
	s.log.Info("Auto migrating postgres tables...")
	if err := s.db.AutoMigrate(
		&types.Video{},
		&types.AudioChunk{},
		&types.Transcription{},
		&types.Generation{},
		&types.Question{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if embeddingDim <= 0 {
		return fmt.Errorf("embedding dimension must be positive, got %d", embeddingDim)
	}
	// Changing the dimension later requires a manual migration plus
	// re-embedding; mixed dimensions in one column are not supported.
	if err := s.db.Exec(fmt.Sprintf(
		`ALTER TABLE "transcriptions" ALTER COLUMN "vector_embedding" TYPE vector(%d);`, embeddingDim,
	)).Error; err != nil {
		return fmt.Errorf("set vector dimension: %w", err)
	}
	if err := s.db.Exec(fmt.Sprintf(
		`CREATE INDEX IF NOT EXISTS "idx_transcriptions_embedding_cosine"
		 ON "transcriptions" USING ivfflat ("vector_embedding" vector_cosine_ops) WITH (lists = %d);`, 100,
	)).Error; err != nil {
		return fmt.Errorf("create vector index: %w", err)
	}

	s.log.Info("Configuring foreign key relationships for postgres tables...")
	constraints := []struct {
		name string
		stmt string
	}{
		{
			name: "fk_audio_chunks_video_id",
			stmt: `ALTER TABLE "audio_chunks" ADD CONSTRAINT "fk_audio_chunks_video_id"
			       FOREIGN KEY ("video_id") REFERENCES "videos"("video_id") ON DELETE CASCADE`,
		},
		{
			name: "fk_transcriptions_video_id",
			stmt: `ALTER TABLE "transcriptions" ADD CONSTRAINT "fk_transcriptions_video_id"
			       FOREIGN KEY ("video_id") REFERENCES "videos"("video_id") ON DELETE CASCADE`,
		},
		{
			name: "fk_questions_generation_id",
			stmt: `ALTER TABLE "questions" ADD CONSTRAINT "fk_questions_generation_id"
			       FOREIGN KEY ("generation_id") REFERENCES "generations"("id") ON DELETE CASCADE`,
		},
		{
			name: "fk_questions_video_id",
			stmt: `ALTER TABLE "questions" ADD CONSTRAINT "fk_questions_video_id"
			       FOREIGN KEY ("video_id") REFERENCES "videos"("video_id") ON DELETE CASCADE`,
		},
	}
	for _, c := range constraints {
		if err := s.db.Exec(fmt.Sprintf(`ALTER TABLE %s DROP CONSTRAINT IF EXISTS %q;`,
			tableOfConstraint(c.name), c.name)).Error; err != nil {
			return fmt.Errorf("drop %s: %w", c.name, err)
		}
		if err := s.db.Exec(c.stmt).Error; err != nil {
			return fmt.Errorf("add %s: %w", c.name, err)
		}
	}
	return nil
}

func tableOfConstraint(name string) string {
	switch name {
	case "fk_audio_chunks_video_id":
		return `"audio_chunks"`
	case "fk_transcriptions_video_id":
		return `"transcriptions"`
	default:
		return `"questions"`
	}
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
