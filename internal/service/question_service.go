package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/code-quest-api/internal/dto"
	"github.com/noah-isme/code-quest-api/internal/repository"
)

const questionListCacheKey = "catalog:questions"

// QuestionService serves the read only question catalog.
type QuestionService interface {
	List(ctx context.Context) ([]dto.QuestionResponse, error)
	Get(ctx context.Context, id uint) (dto.QuestionResponse, error)
	ListTestCases(ctx context.Context, questionID uint) ([]dto.TestCaseResponse, error)
}

type questionService struct {
	questions repository.QuestionRepository
	testCases repository.TestCaseRepository
	cache     *redis.Client
	cacheTTL  time.Duration
	logger    zerolog.Logger
}

// NewQuestionService constructs the catalog service. A nil cache disables caching.
func NewQuestionService(questions repository.QuestionRepository, testCases repository.TestCaseRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) QuestionService {
	return &questionService{
		questions: questions,
		testCases: testCases,
		cache:     cache,
		cacheTTL:  ttl,
		logger:    logger.With().Str("component", "question_service").Logger(),
	}
}

func (s *questionService) List(ctx context.Context) ([]dto.QuestionResponse, error) {
	var cached []dto.QuestionResponse
	if s.readCache(ctx, questionListCacheKey, &cached) {
		return cached, nil
	}

	questions, err := s.questions.List(ctx)
	if err != nil {
		return nil, err
	}

	response := dto.NewQuestionResponseSlice(questions)
	s.writeCache(ctx, questionListCacheKey, response)
	return response, nil
}

func (s *questionService) Get(ctx context.Context, id uint) (dto.QuestionResponse, error) {
	cacheKey := fmt.Sprintf("catalog:question:%d", id)

	var cached dto.QuestionResponse
	if s.readCache(ctx, cacheKey, &cached) {
		return cached, nil
	}

	question, err := s.questions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuestionResponse{}, ErrQuestionNotFound
		}
		return dto.QuestionResponse{}, err
	}

	response := dto.NewQuestionResponse(question)
	s.writeCache(ctx, cacheKey, response)
	return response, nil
}

// ListTestCases returns the test cases of a question in catalog order. Test cases are not
// cached so the listing always matches what grading runs against.
func (s *questionService) ListTestCases(ctx context.Context, questionID uint) ([]dto.TestCaseResponse, error) {
	testCases, err := s.testCases.ListByQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if len(testCases) == 0 {
		return nil, ErrNoTestCases
	}
	return dto.NewTestCaseResponseSlice(testCases), nil
}

func (s *questionService) readCache(ctx context.Context, key string, target interface{}) bool {
	if s.cache == nil {
		return false
	}

	cached, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to read catalog cache")
		}
		return false
	}

	if err := json.Unmarshal([]byte(cached), target); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("discarding malformed catalog cache entry")
		return false
	}

	s.logger.Debug().Str("key", key).Msg("catalog cache hit")
	return true
}

func (s *questionService) writeCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to store catalog cache")
	}
}
