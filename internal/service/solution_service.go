package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/code-quest-api/internal/dto"
	"github.com/noah-isme/code-quest-api/internal/models"
	"github.com/noah-isme/code-quest-api/internal/repository"
)

// SolutionStore resolves submitters and keeps the latest solution per user and question.
type SolutionStore interface {
	// ResolveUser maps a provider id to the internal user id. found is false when no user
	// is registered for it; err is reserved for storage failures.
	ResolveUser(ctx context.Context, providerID string) (userID uint, found bool, err error)
	Upsert(ctx context.Context, userID, questionID uint, code string, isCorrect bool) (models.Solution, error)
	ListForProvider(ctx context.Context, providerID string) ([]dto.SolutionResponse, error)
}

type solutionStore struct {
	users     repository.UserRepository
	solutions repository.SolutionRepository
	logger    zerolog.Logger
	now       func() time.Time
}

// NewSolutionStore constructs the solution store.
func NewSolutionStore(users repository.UserRepository, solutions repository.SolutionRepository, logger zerolog.Logger) SolutionStore {
	return &solutionStore{
		users:     users,
		solutions: solutions,
		logger:    logger.With().Str("component", "solution_store").Logger(),
		now:       time.Now,
	}
}

func (s *solutionStore) ResolveUser(ctx context.Context, providerID string) (uint, bool, error) {
	providerID = strings.TrimSpace(providerID)
	if providerID == "" {
		return 0, false, nil
	}

	user, err := s.users.FindByProviderID(ctx, providerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return user.ID, true, nil
}

// Upsert stores the submission as the user's current solution for the question, replacing
// any earlier one. submitted_at is always the time of this call.
func (s *solutionStore) Upsert(ctx context.Context, userID, questionID uint, code string, isCorrect bool) (models.Solution, error) {
	solution := models.Solution{
		UserID:        userID,
		QuestionID:    questionID,
		SubmittedCode: code,
		IsCorrect:     isCorrect,
		SubmittedAt:   s.now().UTC(),
	}

	if err := s.solutions.Upsert(ctx, &solution); err != nil {
		return models.Solution{}, persistenceError(err)
	}

	s.logger.Debug().
		Uint("solution_id", solution.ID).
		Uint("user_id", userID).
		Uint("question_id", questionID).
		Bool("is_correct", isCorrect).
		Msg("solution stored")

	return solution, nil
}

func (s *solutionStore) ListForProvider(ctx context.Context, providerID string) ([]dto.SolutionResponse, error) {
	userID, found, err := s.ResolveUser(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrUserNotFound
	}

	solutions, err := s.solutions.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewSolutionResponseSlice(solutions), nil
}
