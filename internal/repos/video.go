package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/vidscholar/vidscholar-backend/internal/platform/logger"
	"github.com/vidscholar/vidscholar-backend/internal/types"
)

type VideoRepo interface {
	Create(ctx context.Context, tx *gorm.DB, video *types.Video) (*types.Video, error)
	GetByVideoID(ctx context.Context, tx *gorm.DB, videoID string) (*types.Video, error)
	List(ctx context.Context, tx *gorm.DB, skip, limit int) ([]*types.Video, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, videoID, status string) error
	Delete(ctx context.Context, tx *gorm.DB, videoID string) error
}

type videoRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVideoRepo(db *gorm.DB, baseLog *logger.Logger) VideoRepo {
	return &videoRepo{db: db, log: baseLog.With("repo", "VideoRepo")}
}

func (r *videoRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *videoRepo) Create(ctx context.Context, tx *gorm.DB, video *types.Video) (*types.Video, error) {
	if err := r.conn(tx).WithContext(ctx).Create(video).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return video, nil
}

func (r *videoRepo) GetByVideoID(ctx context.Context, tx *gorm.DB, videoID string) (*types.Video, error) {
	var video types.Video
	err := r.conn(tx).WithContext(ctx).
		Where("video_id = ?", videoID).
		First(&video).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &video, nil
}

func (r *videoRepo) List(ctx context.Context, tx *gorm.DB, skip, limit int) ([]*types.Video, error) {
	var videos []*types.Video
	err := r.conn(tx).WithContext(ctx).
		Order("created_at DESC").
		Offset(skip).
		Limit(limit).
		Find(&videos).Error
	if err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *videoRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, videoID, status string) error {
	res := r.conn(tx).WithContext(ctx).
		Model(&types.Video{}).
		Where("video_id = ?", videoID).
		Update("download_status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *videoRepo) Delete(ctx context.Context, tx *gorm.DB, videoID string) error {
	res := r.conn(tx).WithContext(ctx).
		Where("video_id = ?", videoID).
		Delete(&types.Video{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
