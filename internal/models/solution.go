package models

import "time"

// Solution is the latest graded submission of a user for a question.
// There is at most one row per (user_id, question_id).
type Solution struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;uniqueIndex:idx_solutions_user_question" json:"user_id"`
	QuestionID    uint      `gorm:"not null;uniqueIndex:idx_solutions_user_question" json:"question_id"`
	SubmittedCode string    `gorm:"type:text" json:"submitted_code"`
	IsCorrect     bool      `gorm:"not null" json:"is_correct"`
	SubmittedAt   time.Time `gorm:"not null" json:"submitted_at"`
}
