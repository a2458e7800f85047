package types

import (
	"time"
)

// Download status values for Video.
const (
	DownloadStatusPending     = "pending"
	DownloadStatusDownloading = "downloading"
	DownloadStatusCompleted   = "completed"
	DownloadStatusFailed      = "failed"
)

// Video is a YouTube video known to the system. VideoID is the 11-character
// external id and acts as the business key; dependent rows reference it
// directly so they survive surrogate-key churn across re-imports.
type Video struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	VideoID        string          `gorm:"column:video_id;type:varchar(64);uniqueIndex;not null" json:"video_id"`
	Title          string          `gorm:"column:title;type:varchar(512);not null" json:"title"`
	ThumbnailURL   *string         `gorm:"column:thumbnail_url;type:varchar(1024)" json:"thumbnail_url"`
	FilePath       *string         `gorm:"column:file_path;type:varchar(1024)" json:"file_path"`
	DownloadStatus string          `gorm:"column:download_status;type:varchar(20);not null;default:'pending'" json:"download_status"`
	CreatedAt      time.Time       `gorm:"not null;default:now()" json:"created_at"`
	Chunks         []AudioChunk    `gorm:"foreignKey:VideoID;references:VideoID;constraint:OnDelete:CASCADE" json:"chunks,omitempty"`
	Transcriptions []Transcription `gorm:"foreignKey:VideoID;references:VideoID;constraint:OnDelete:CASCADE" json:"transcriptions,omitempty"`
}

func (Video) TableName() string {
	return "videos"
}
