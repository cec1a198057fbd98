package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/code-quest-api/internal/models"
)

// SolutionRepository persists the latest solution per user and question.
type SolutionRepository interface {
	Upsert(ctx context.Context, solution *models.Solution) error
	Get(ctx context.Context, userID, questionID uint) (models.Solution, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Solution, error)
}

// NewSolutionRepository constructs a solution repository.
func NewSolutionRepository(db *gorm.DB) SolutionRepository {
	return &solutionRepository{db: db}
}

type solutionRepository struct {
	db *gorm.DB
}

// Upsert inserts the solution or overwrites the code, correctness and timestamp of the
// existing row for the same (user_id, question_id). The stored row is loaded back into solution.
func (r *solutionRepository) Upsert(ctx context.Context, solution *models.Solution) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"submitted_code", "is_correct", "submitted_at"}),
	}).Create(solution).Error
	if err != nil {
		return err
	}

	stored, err := r.Get(ctx, solution.UserID, solution.QuestionID)
	if err != nil {
		return err
	}
	*solution = stored
	return nil
}

func (r *solutionRepository) Get(ctx context.Context, userID, questionID uint) (models.Solution, error) {
	var solution models.Solution
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND question_id = ?", userID, questionID).
		First(&solution).Error
	if err != nil {
		return models.Solution{}, err
	}
	return solution, nil
}

func (r *solutionRepository) ListByUser(ctx context.Context, userID uint) ([]models.Solution, error) {
	var solutions []models.Solution
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("submitted_at DESC").
		Find(&solutions).Error
	if err != nil {
		return nil, err
	}
	return solutions, nil
}
