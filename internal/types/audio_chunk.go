package types

import (
	"time"
)

// AudioChunk is a contiguous slice of a video's original audio file, produced
// when the original exceeds the configured size threshold. Chunks for one
// video partition the full duration: sorted by ChunkIndex, non-overlapping,
// each EndMS equal to the next chunk's StartMS.
type AudioChunk struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	VideoID    string    `gorm:"column:video_id;type:varchar(64);not null;index;uniqueIndex:idx_audio_chunks_video_order,priority:1" json:"video_id"`
	ChunkIndex int       `gorm:"column:chunk_index;not null;uniqueIndex:idx_audio_chunks_video_order,priority:2" json:"chunk_index"`
	FilePath   string    `gorm:"column:file_path;type:varchar(1024);not null" json:"file_path"`
	FileSize   int64     `gorm:"column:file_size;not null" json:"file_size"`
	StartMS    int64     `gorm:"column:start_ms;not null" json:"start_ms"`
	EndMS      int64     `gorm:"column:end_ms;not null" json:"end_ms"`
	CreatedAt  time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (AudioChunk) TableName() string {
	return "audio_chunks"
}
