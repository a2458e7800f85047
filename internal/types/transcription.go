package types

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// Transcription status values.
const (
	TranscriptionStatusCompleted   = "completed"
	TranscriptionStatusNoEmbedding = "completed_no_embedding"
)

// Transcription holds the full speech-to-text output for one run over a
// video, with an optional unit-norm embedding for semantic search. A video
// may accumulate several transcriptions from re-runs.
type Transcription struct {
	ID                uint             `gorm:"primaryKey" json:"id"`
	VideoID           string           `gorm:"column:video_id;type:varchar(64);not null;index" json:"video_id"`
	TranscriptionText string           `gorm:"column:transcription_text;type:text;not null" json:"transcription_text"`
	VectorEmbedding   *pgvector.Vector `gorm:"column:vector_embedding;type:vector" json:"vector_embedding,omitempty"`
	Status            string           `gorm:"column:status;type:varchar(32);not null;default:'completed'" json:"status"`
	CreatedAt         time.Time        `gorm:"not null;default:now()" json:"created_at"`
}

func (Transcription) TableName() string {
	return "transcriptions"
}
