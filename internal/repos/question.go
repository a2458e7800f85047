package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/vidscholar/vidscholar-backend/internal/platform/logger"
	"github.com/vidscholar/vidscholar-backend/internal/types"
)

type QuestionRepo interface {
	CreateAll(ctx context.Context, tx *gorm.DB, questions []*types.Question) ([]*types.Question, error)
	GetInGeneration(ctx context.Context, tx *gorm.DB, generationID uint, questionID uint) (*types.Question, error)
	ListByGenerationID(ctx context.Context, tx *gorm.DB, generationID uint) ([]*types.Question, error)
	ListByVideoID(ctx context.Context, tx *gorm.DB, videoID string) ([]*types.Question, error)
	Update(ctx context.Context, tx *gorm.DB, q *types.Question) (*types.Question, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	// Reorder assigns order_index by position in questionIDs, atomically.
	// The id set must match the generation's question set exactly; on any
	// mismatch it fails with ErrOrderMismatch and leaves order unchanged.
	Reorder(ctx context.Context, tx *gorm.DB, generationID uint, questionIDs []uint) error
}

type questionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	return &questionRepo{db: db, log: baseLog.With("repo", "QuestionRepo")}
}

func (r *questionRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *questionRepo) CreateAll(ctx context.Context, tx *gorm.DB, questions []*types.Question) ([]*types.Question, error) {
	if len(questions) == 0 {
		return []*types.Question{}, nil
	}
	if err := r.conn(tx).WithContext(ctx).Create(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepo) GetInGeneration(ctx context.Context, tx *gorm.DB, generationID uint, questionID uint) (*types.Question, error) {
	var q types.Question
	err := r.conn(tx).WithContext(ctx).
		Where("id = ? AND generation_id = ?", questionID, generationID).
		First(&q).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &q, nil
}

func (r *questionRepo) ListByGenerationID(ctx context.Context, tx *gorm.DB, generationID uint) ([]*types.Question, error) {
	var items []*types.Question
	err := r.conn(tx).WithContext(ctx).
		Where("generation_id = ?", generationID).
		Order("order_index ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *questionRepo) ListByVideoID(ctx context.Context, tx *gorm.DB, videoID string) ([]*types.Question, error) {
	var items []*types.Question
	err := r.conn(tx).WithContext(ctx).
		Where("video_id = ?", videoID).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *questionRepo) Update(ctx context.Context, tx *gorm.DB, q *types.Question) (*types.Question, error) {
	if err := r.conn(tx).WithContext(ctx).Save(q).Error; err != nil {
		return nil, err
	}
	return q, nil
}

func (r *questionRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	res := r.conn(tx).WithContext(ctx).Delete(&types.Question{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *questionRepo) Reorder(ctx context.Context, tx *gorm.DB, generationID uint, questionIDs []uint) error {
	return r.conn(tx).WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		var existing []*types.Question
		if err := inner.
			Where("generation_id = ?", generationID).
			Find(&existing).Error; err != nil {
			return err
		}
		if len(existing) != len(questionIDs) {
			return ErrOrderMismatch
		}
		current := make(map[uint]bool, len(existing))
		for _, q := range existing {
			current[q.ID] = true
		}
		seen := make(map[uint]bool, len(questionIDs))
		for _, id := range questionIDs {
			if !current[id] || seen[id] {
				return ErrOrderMismatch
			}
			seen[id] = true
		}
		for index, id := range questionIDs {
			if err := inner.
				Model(&types.Question{}).
				Where("id = ? AND generation_id = ?", id, generationID).
				Update("order_index", index).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
