package services

import (
	"context"
	"strings"

	"github.com/vidscholar/vidscholar-backend/internal/platform/logger"
	"github.com/vidscholar/vidscholar-backend/internal/repos"
	"github.com/vidscholar/vidscholar-backend/internal/types"
)

// QuestionUpdate carries the editable question fields; nil means leave the
// stored value alone.
type QuestionUpdate struct {
	QuestionText *string `json:"question_text"`
	Answer       *string `json:"answer"`
	Context      *string `json:"context"`
	Difficulty   *string `json:"difficulty"`
	QuestionType *string `json:"question_type"`
	OrderIndex   *int    `json:"order_index"`
}

type GenerationService interface {
	List(ctx context.Context, skip, limit int) ([]*types.Generation, int64, error)
	// Get returns the generation with its questions in display order.
	Get(ctx context.Context, id uint) (*types.Generation, error)
	Delete(ctx context.Context, id uint) error
	UpdateQuestion(ctx context.Context, generationID, questionID uint, update QuestionUpdate) (*types.Question, error)
	DeleteQuestion(ctx context.Context, generationID, questionID uint) error
	// Reorder rewrites order_index from the given id list, which must
	// match the generation's question set exactly.
	Reorder(ctx context.Context, generationID uint, questionIDs []uint) ([]*types.Question, error)
}

type generationService struct {
	log         *logger.Logger
	generations repos.GenerationRepo
	questions   repos.QuestionRepo
}

func NewGenerationService(baseLog *logger.Logger, generations repos.GenerationRepo, questions repos.QuestionRepo) GenerationService {
	return &generationService{
		log:         baseLog.With("service", "GenerationService"),
		generations: generations,
		questions:   questions,
	}
}

func (s *generationService) List(ctx context.Context, skip, limit int) ([]*types.Generation, int64, error) {
	return s.generations.List(ctx, nil, skip, limit)
}

func (s *generationService) Get(ctx context.Context, id uint) (*types.Generation, error) {
	return s.generations.GetWithQuestions(ctx, nil, id)
}

func (s *generationService) Delete(ctx context.Context, id uint) error {
	return s.generations.Delete(ctx, nil, id)
}

func (s *generationService) UpdateQuestion(ctx context.Context, generationID, questionID uint, update QuestionUpdate) (*types.Question, error) {
	q, err := s.questions.GetInGeneration(ctx, nil, generationID, questionID)
	if err != nil {
		return nil, err
	}
	if update.QuestionText != nil {
		text := strings.TrimSpace(*update.QuestionText)
		if text == "" {
			return nil, ErrValidation
		}
		q.QuestionText = text
	}
	if update.Answer != nil {
		q.Answer = update.Answer
	}
	if update.Context != nil {
		q.Context = update.Context
	}
	if update.Difficulty != nil {
		v := strings.ToLower(strings.TrimSpace(*update.Difficulty))
		if !types.ValidDifficulty(v) {
			return nil, ErrValidation
		}
		q.Difficulty = &v
	}
	if update.QuestionType != nil {
		v := strings.ToLower(strings.TrimSpace(*update.QuestionType))
		if !types.ValidQuestionType(v) {
			return nil, ErrValidation
		}
		q.QuestionType = &v
	}
	if update.OrderIndex != nil {
		if *update.OrderIndex < 0 {
			return nil, ErrValidation
		}
		q.OrderIndex = *update.OrderIndex
	}
	return s.questions.Update(ctx, nil, q)
}

func (s *generationService) DeleteQuestion(ctx context.Context, generationID, questionID uint) error {
	if _, err := s.questions.GetInGeneration(ctx, nil, generationID, questionID); err != nil {
		return err
	}
	if err := s.questions.Delete(ctx, nil, questionID); err != nil {
		return err
	}
	remaining, err := s.questions.ListByGenerationID(ctx, nil, generationID)
	if err != nil {
		return err
	}
	return s.generations.UpdateQuestionCount(ctx, nil, generationID, len(remaining))
}

func (s *generationService) Reorder(ctx context.Context, generationID uint, questionIDs []uint) ([]*types.Question, error) {
	if _, err := s.generations.GetByID(ctx, nil, generationID); err != nil {
		return nil, err
	}
	if err := s.questions.Reorder(ctx, nil, generationID, questionIDs); err != nil {
		return nil, err
	}
	return s.questions.ListByGenerationID(ctx, nil, generationID)
}
