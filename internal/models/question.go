package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Question is a catalog entry users solve by submitting code.
type Question struct {
	ID          uint                        `gorm:"primaryKey" json:"id"`
	Title       string                      `gorm:"size:255;not null" json:"title"`
	Description string                      `gorm:"type:text" json:"description"`
	Difficulty  string                      `gorm:"size:32" json:"difficulty"`
	StarterCode string                      `gorm:"type:text" json:"starter_code"`
	Tags        datatypes.JSONSlice[string] `gorm:"not null;default:'[]'" json:"tags"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
	TestCases   []TestCase                  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// TagsSlice returns the non-empty, trimmed tags.
func (q Question) TagsSlice() []string {
	tags := make([]string, 0, len(q.Tags))
	for _, tag := range q.Tags {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}

// TestCase is one input/expected-output pair for a question.
type TestCase struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	QuestionID     uint   `gorm:"not null;index" json:"question_id"`
	Input          string `gorm:"type:text" json:"input"`
	ExpectedOutput string `gorm:"type:text" json:"expected_output"`
}
