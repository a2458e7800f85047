package types

import (
	"time"
)

// Question enums. Values outside these sets are stored as null.
var (
	QuestionDifficulties = []string{"easy", "medium", "hard"}
	QuestionTypes        = []string{"factual", "conceptual", "analytical"}
)

// ValidDifficulty reports whether d is a known difficulty.
func ValidDifficulty(d string) bool {
	for _, v := range QuestionDifficulties {
		if v == d {
			return true
		}
	}
	return false
}

// ValidQuestionType reports whether t is a known question type.
func ValidQuestionType(t string) bool {
	for _, v := range QuestionTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Question is an AI-generated educational question. OrderIndex fixes display
// order within its Generation: 0-based, contiguous, unique per generation.
// VideoID is denormalized from the source video for filtering.
type Question struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	GenerationID uint      `gorm:"column:generation_id;not null;index" json:"generation_id"`
	VideoID      string    `gorm:"column:video_id;type:varchar(64);not null;index" json:"video_id"`
	QuestionText string    `gorm:"column:question_text;type:text;not null" json:"question_text"`
	Answer       *string   `gorm:"column:answer;type:text" json:"answer"`
	Context      *string   `gorm:"column:context;type:text" json:"context"`
	Difficulty   *string   `gorm:"column:difficulty;type:varchar(20)" json:"difficulty"`
	QuestionType *string   `gorm:"column:question_type;type:varchar(50)" json:"question_type"`
	OrderIndex   int       `gorm:"column:order_index;not null;default:0;index" json:"order_index"`
	CreatedAt    time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Question) TableName() string {
	return "questions"
}
