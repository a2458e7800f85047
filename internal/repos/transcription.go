package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/vidscholar/vidscholar-backend/internal/platform/logger"
	"github.com/vidscholar/vidscholar-backend/internal/types"
)

type TranscriptionRepo interface {
	// Create rejects vectors whose width differs from the configured
	// dimension; a nil vector is allowed (embedding failed).
	Create(ctx context.Context, tx *gorm.DB, t *types.Transcription) (*types.Transcription, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.Transcription, error)
	List(ctx context.Context, tx *gorm.DB, skip, limit int, videoID string) ([]*types.Transcription, int64, error)
	ListByVideoID(ctx context.Context, tx *gorm.DB, videoID string) ([]*types.Transcription, error)
	LatestByVideoID(ctx context.Context, tx *gorm.DB, videoID string) (*types.Transcription, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

type transcriptionRepo struct {
	db           *gorm.DB
	log          *logger.Logger
	embeddingDim int
}

func NewTranscriptionRepo(db *gorm.DB, baseLog *logger.Logger, embeddingDim int) TranscriptionRepo {
	return &transcriptionRepo{
		db:           db,
		log:          baseLog.With("repo", "TranscriptionRepo"),
		embeddingDim: embeddingDim,
	}
}

func (r *transcriptionRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *transcriptionRepo) Create(ctx context.Context, tx *gorm.DB, t *types.Transcription) (*types.Transcription, error) {
	if t.VectorEmbedding != nil && len(t.VectorEmbedding.Slice()) != r.embeddingDim {
		return nil, ErrVectorDimension
	}
	if err := r.conn(tx).WithContext(ctx).Create(t).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *transcriptionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.Transcription, error) {
	var t types.Transcription
	err := r.conn(tx).WithContext(ctx).First(&t, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *transcriptionRepo) List(ctx context.Context, tx *gorm.DB, skip, limit int, videoID string) ([]*types.Transcription, int64, error) {
	query := r.conn(tx).WithContext(ctx).Model(&types.Transcription{})
	if videoID != "" {
		query = query.Where("video_id = ?", videoID)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []*types.Transcription
	err := query.
		Order("created_at DESC").
		Offset(skip).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *transcriptionRepo) ListByVideoID(ctx context.Context, tx *gorm.DB, videoID string) ([]*types.Transcription, error) {
	var items []*types.Transcription
	err := r.conn(tx).WithContext(ctx).
		Where("video_id = ?", videoID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *transcriptionRepo) LatestByVideoID(ctx context.Context, tx *gorm.DB, videoID string) (*types.Transcription, error) {
	var t types.Transcription
	err := r.conn(tx).WithContext(ctx).
		Where("video_id = ?", videoID).
		Order("created_at DESC").
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *transcriptionRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	res := r.conn(tx).WithContext(ctx).Delete(&types.Transcription{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
