package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/vidscholar/vidscholar-backend/internal/platform/logger"
	"github.com/vidscholar/vidscholar-backend/internal/types"
)

type AudioChunkRepo interface {
	// CreateAll persists a video's chunk set all-or-nothing.
	CreateAll(ctx context.Context, tx *gorm.DB, chunks []*types.AudioChunk) ([]*types.AudioChunk, error)
	// ReplaceAll swaps the video's chunk set for the given rows in one
	// transaction, so readers never see a cleared-but-unfilled state.
	ReplaceAll(ctx context.Context, tx *gorm.DB, videoID string, chunks []*types.AudioChunk) ([]*types.AudioChunk, error)
	ListByVideoID(ctx context.Context, tx *gorm.DB, videoID string) ([]*types.AudioChunk, error)
	DeleteByVideoID(ctx context.Context, tx *gorm.DB, videoID string) error
}

type audioChunkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAudioChunkRepo(db *gorm.DB, baseLog *logger.Logger) AudioChunkRepo {
	return &audioChunkRepo{db: db, log: baseLog.With("repo", "AudioChunkRepo")}
}

func (r *audioChunkRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *audioChunkRepo) CreateAll(ctx context.Context, tx *gorm.DB, chunks []*types.AudioChunk) ([]*types.AudioChunk, error) {
	if len(chunks) == 0 {
		return []*types.AudioChunk{}, nil
	}
	conn := r.conn(tx)
	err := conn.WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		return inner.Create(&chunks).Error
	})
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

func (r *audioChunkRepo) ReplaceAll(ctx context.Context, tx *gorm.DB, videoID string, chunks []*types.AudioChunk) ([]*types.AudioChunk, error) {
	err := r.conn(tx).WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		if err := inner.Where("video_id = ?", videoID).Delete(&types.AudioChunk{}).Error; err != nil {
			return err
		}
		if len(chunks) == 0 {
			return nil
		}
		return inner.Create(&chunks).Error
	})
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

func (r *audioChunkRepo) ListByVideoID(ctx context.Context, tx *gorm.DB, videoID string) ([]*types.AudioChunk, error) {
	var chunks []*types.AudioChunk
	err := r.conn(tx).WithContext(ctx).
		Where("video_id = ?", videoID).
		Order("chunk_index ASC").
		Find(&chunks).Error
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

func (r *audioChunkRepo) DeleteByVideoID(ctx context.Context, tx *gorm.DB, videoID string) error {
	return r.conn(tx).WithContext(ctx).
		Where("video_id = ?", videoID).
		Delete(&types.AudioChunk{}).Error
}
