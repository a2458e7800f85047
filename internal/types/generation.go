package types

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Generation is one batch question-generation event. VideoIDs records the
// deduplicated external ids the batch was requested for, in request order.
type Generation struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	VideoIDs      datatypes.JSON `gorm:"column:video_ids;type:jsonb;not null" json:"video_ids"`
	QuestionCount int            `gorm:"column:question_count;not null;default:0" json:"question_count"`
	CreatedAt     time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	Questions     []Question     `gorm:"foreignKey:GenerationID;references:ID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

func (Generation) TableName() string {
	return "generations"
}

// VideoIDList decodes the stored id array.
func (g *Generation) VideoIDList() []string {
	var ids []string
	if len(g.VideoIDs) == 0 {
		return ids
	}
	_ = json.Unmarshal(g.VideoIDs, &ids)
	return ids
}

// EncodeVideoIDs stores the id array as jsonb.
func EncodeVideoIDs(ids []string) datatypes.JSON {
	raw, _ := json.Marshal(ids)
	return datatypes.JSON(raw)
}
