package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/code-quest-api/internal/models"
)

// TestCaseRepository exposes read access to question test cases.
type TestCaseRepository interface {
	ListByQuestion(ctx context.Context, questionID uint) ([]models.TestCase, error)
}

// NewTestCaseRepository constructs a test case repository.
func NewTestCaseRepository(db *gorm.DB) TestCaseRepository {
	return &testCaseRepository{db: db}
}

type testCaseRepository struct {
	db *gorm.DB
}

// ListByQuestion returns the test cases of a question in catalog order.
func (r *testCaseRepository) ListByQuestion(ctx context.Context, questionID uint) ([]models.TestCase, error) {
	var testCases []models.TestCase
	err := r.db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Order("id ASC").
		Find(&testCases).Error
	if err != nil {
		return nil, err
	}
	return testCases, nil
}
