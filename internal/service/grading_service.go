package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/code-quest-api/internal/dto"
	"github.com/noah-isme/code-quest-api/internal/models"
	"github.com/noah-isme/code-quest-api/internal/observability"
	"github.com/noah-isme/code-quest-api/internal/repository"
	"github.com/noah-isme/code-quest-api/pkg/harness"
	"github.com/noah-isme/code-quest-api/pkg/piston"
)

// GradingService grades submissions against the test cases of a question.
type GradingService interface {
	Submit(ctx context.Context, payload dto.SubmitSolutionRequest) (dto.VerdictResponse, error)
	Evaluate(ctx context.Context, submission models.Submission, testCases []models.TestCase) models.Verdict
}

// GradingDefaults fills in the runtime when a submission omits it.
type GradingDefaults struct {
	Language string
	Version  string
}

type gradingService struct {
	questions  repository.QuestionRepository
	testCases  repository.TestCaseRepository
	store      SolutionStore
	dispatcher piston.Dispatcher
	events     GradeEventPublisher
	validator  *validator.Validate
	defaults   GradingDefaults
	logger     zerolog.Logger
	tracer     trace.Tracer
	now        func() time.Time
}

// NewGradingService wires the grading pipeline. events may be nil.
func NewGradingService(
	questions repository.QuestionRepository,
	testCases repository.TestCaseRepository,
	store SolutionStore,
	dispatcher piston.Dispatcher,
	events GradeEventPublisher,
	validate *validator.Validate,
	defaults GradingDefaults,
	logger zerolog.Logger,
) GradingService {
	if defaults.Language == "" {
		defaults.Language = "python"
	}
	if defaults.Version == "" {
		defaults.Version = "3.10.0"
	}

	return &gradingService{
		questions:  questions,
		testCases:  testCases,
		store:      store,
		dispatcher: dispatcher,
		events:     events,
		validator:  validate,
		defaults:   defaults,
		logger:     logger.With().Str("component", "grading_service").Logger(),
		tracer:     otel.Tracer("github.com/noah-isme/code-quest-api/internal/service/grading"),
		now:        time.Now,
	}
}

// Submit resolves the submitter and the question, grades every test case and stores the
// outcome as the user's current solution. Identity and catalog failures abort before any
// code runs. A failed write is logged and the verdict is still returned.
func (s *gradingService) Submit(ctx context.Context, payload dto.SubmitSolutionRequest) (dto.VerdictResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.VerdictResponse{}, err
	}

	submission := models.Submission{
		QuestionID: payload.QuestionID,
		ProviderID: strings.TrimSpace(payload.ProviderID),
		Code:       payload.Code,
		Language:   strings.ToLower(strings.TrimSpace(payload.Language)),
		Version:    strings.TrimSpace(payload.Version),
	}
	if submission.Language == "" {
		submission.Language = s.defaults.Language
	}
	if submission.Version == "" {
		submission.Version = s.defaults.Version
	}

	ctx, span := s.tracer.Start(ctx, "grading.submit", trace.WithAttributes(
		attribute.Int64("grading.question_id", int64(submission.QuestionID)),
		attribute.String("grading.language", submission.Language),
	))
	defer span.End()

	logger := s.logger.With().
		Uint("question_id", submission.QuestionID).
		Str("provider_id", submission.ProviderID).
		Str("language", submission.Language).
		Logger()

	userID, found, err := s.store.ResolveUser(ctx, submission.ProviderID)
	if err != nil {
		return dto.VerdictResponse{}, s.abort(span, fmt.Errorf("resolve user: %w", err))
	}
	if !found {
		return dto.VerdictResponse{}, s.abort(span, ErrUserNotFound)
	}

	if _, err := s.questions.GetByID(ctx, submission.QuestionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.VerdictResponse{}, s.abort(span, ErrQuestionNotFound)
		}
		return dto.VerdictResponse{}, s.abort(span, fmt.Errorf("load question: %w", err))
	}

	testCases, err := s.testCases.ListByQuestion(ctx, submission.QuestionID)
	if err != nil {
		return dto.VerdictResponse{}, s.abort(span, fmt.Errorf("load test cases: %w", err))
	}
	if len(testCases) == 0 {
		return dto.VerdictResponse{}, s.abort(span, ErrNoTestCases)
	}

	verdict := s.Evaluate(ctx, submission, testCases)

	persisted := true
	if _, err := s.store.Upsert(ctx, userID, submission.QuestionID, submission.Code, verdict.IsCorrect()); err != nil {
		persisted = false
		observability.SolutionPersistFailures().Inc()
		span.RecordError(err)
		logger.Error().Err(err).Str("failure", string(KindOf(err))).Msg("failed to store solution; returning verdict anyway")
	}

	verdictLabel := "incorrect"
	if verdict.IsCorrect() {
		verdictLabel = "correct"
	}
	observability.SubmissionsGraded().WithLabelValues(verdictLabel).Inc()
	span.SetAttributes(
		attribute.Int("grading.total", verdict.Total),
		attribute.Int("grading.passed", verdict.Passed),
		attribute.Bool("grading.persisted", persisted),
	)

	logger.Info().
		Int("total", verdict.Total).
		Int("passed", verdict.Passed).
		Int("failed", verdict.Failed).
		Bool("persisted", persisted).
		Msg("submission graded")

	s.publish(ctx, logger, GradeEvent{
		ProviderID: submission.ProviderID,
		UserID:     userID,
		QuestionID: submission.QuestionID,
		Total:      verdict.Total,
		Passed:     verdict.Passed,
		Failed:     verdict.Failed,
		IsCorrect:  verdict.IsCorrect(),
		Persisted:  persisted,
		GradedAt:   s.now().UTC(),
	})

	return dto.NewVerdictResponse(verdict), nil
}

// Evaluate runs the submission once per test case, sequentially and in the given order.
// Failures of a single test case are recorded in its result and never stop the batch.
func (s *gradingService) Evaluate(ctx context.Context, submission models.Submission, testCases []models.TestCase) models.Verdict {
	verdict := models.Verdict{
		QuestionID: submission.QuestionID,
		Results:    make([]models.TestResult, 0, len(testCases)),
	}

	for _, testCase := range testCases {
		result := s.runTestCase(ctx, submission, testCase)
		observability.TestCasesEvaluated().WithLabelValues(result.Status, result.Failure).Inc()
		if !result.Passed() {
			s.logger.Debug().
				Uint("question_id", submission.QuestionID).
				Uint("test_case_id", testCase.ID).
				Str("failure", result.Failure).
				Str("error", result.Error).
				Msg("test case failed")
		}
		verdict.Record(result)
	}

	return verdict
}

func (s *gradingService) runTestCase(ctx context.Context, submission models.Submission, testCase models.TestCase) models.TestResult {
	result := models.TestResult{
		TestCaseID:     testCase.ID,
		Input:          testCase.Input,
		ExpectedOutput: testCase.ExpectedOutput,
		Status:         models.TestStatusFail,
	}

	outcome, err := s.dispatcher.Dispatch(ctx, piston.Request{
		Source:   harness.InlineEntryPoint(testCase.Input, submission.Code),
		Stdin:    testCase.Input,
		Language: submission.Language,
		Version:  submission.Version,
	})
	if err != nil {
		result.Failure = models.FailureDispatch
		result.Error = err.Error()
		return result
	}

	stdout := strings.TrimSpace(outcome.Stdout)
	result.ActualOutput = &stdout

	if outcome.ExitCode != 0 {
		result.Failure = models.FailureRuntime
		result.Error = strings.TrimSpace(outcome.Stderr)
		if result.Error == "" {
			result.Error = fmt.Sprintf("process exited with code %d", outcome.ExitCode)
		}
		return result
	}

	if stdout != strings.TrimSpace(testCase.ExpectedOutput) {
		result.Failure = models.FailureWrongAnswer
		return result
	}

	result.Status = models.TestStatusPass
	return result
}

func (s *gradingService) publish(ctx context.Context, logger zerolog.Logger, event GradeEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishGraded(ctx, event); err != nil {
		logger.Warn().Err(err).Msg("failed to publish grade event")
	}
}

func (s *gradingService) abort(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(KindOf(err)))
	return err
}
