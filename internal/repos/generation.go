package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/vidscholar/vidscholar-backend/internal/platform/logger"
	"github.com/vidscholar/vidscholar-backend/internal/types"
)

type GenerationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, g *types.Generation) (*types.Generation, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.Generation, error)
	// GetWithQuestions preloads questions sorted by order_index.
	GetWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*types.Generation, error)
	List(ctx context.Context, tx *gorm.DB, skip, limit int) ([]*types.Generation, int64, error)
	UpdateQuestionCount(ctx context.Context, tx *gorm.DB, id uint, count int) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

type generationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGenerationRepo(db *gorm.DB, baseLog *logger.Logger) GenerationRepo {
	return &generationRepo{db: db, log: baseLog.With("repo", "GenerationRepo")}
}

func (r *generationRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *generationRepo) Create(ctx context.Context, tx *gorm.DB, g *types.Generation) (*types.Generation, error) {
	if err := r.conn(tx).WithContext(ctx).Create(g).Error; err != nil {
		return nil, err
	}
	return g, nil
}

func (r *generationRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.Generation, error) {
	var g types.Generation
	err := r.conn(tx).WithContext(ctx).First(&g, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (r *generationRepo) GetWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*types.Generation, error) {
	var g types.Generation
	err := r.conn(tx).WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		First(&g, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (r *generationRepo) List(ctx context.Context, tx *gorm.DB, skip, limit int) ([]*types.Generation, int64, error) {
	var total int64
	if err := r.conn(tx).WithContext(ctx).Model(&types.Generation{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []*types.Generation
	err := r.conn(tx).WithContext(ctx).
		Order("created_at DESC").
		Offset(skip).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *generationRepo) UpdateQuestionCount(ctx context.Context, tx *gorm.DB, id uint, count int) error {
	res := r.conn(tx).WithContext(ctx).
		Model(&types.Generation{}).
		Where("id = ?", id).
		Update("question_count", count)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *generationRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	res := r.conn(tx).WithContext(ctx).Delete(&types.Generation{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
