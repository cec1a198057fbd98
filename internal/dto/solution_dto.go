package dto

import (
	"time"

	"github.com/jinzhu/copier"

	"github.com/noah-isme/code-quest-api/internal/models"
)

// SubmitSolutionRequest is the payload of a grading request.
type SubmitSolutionRequest struct {
	QuestionID uint   `json:"question_id" validate:"required,gt=0"`
	ProviderID string `json:"provider_id" validate:"required"`
	Code       string `json:"code" validate:"required"`
	Language   string `json:"language"`
	Version    string `json:"version"`
}

// TestResultResponse describes one graded test case.
type TestResultResponse struct {
	TestCaseID     uint    `json:"test_case_id"`
	Input          string  `json:"input"`
	ExpectedOutput string  `json:"expected_output"`
	Output         *string `json:"output"`
	Error          string  `json:"error,omitempty"`
	Failure        string  `json:"failure,omitempty"`
	Status         string  `json:"status"`
}

// VerdictResponse is returned by the grading endpoint.
type VerdictResponse struct {
	QuestionID     uint                 `json:"question_id"`
	TotalTestCases int                  `json:"total_test_cases"`
	Passed         int                  `json:"passed"`
	Failed         int                  `json:"failed"`
	IsCorrect      bool                 `json:"is_correct"`
	Results        []TestResultResponse `json:"results"`
}

// SolutionResponse exposes a stored solution without the internal user id.
type SolutionResponse struct {
	ID            uint      `json:"id"`
	QuestionID    uint      `json:"question_id"`
	SubmittedCode string    `json:"submitted_code"`
	IsCorrect     bool      `json:"is_correct"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// NewVerdictResponse builds the grading response from a verdict.
func NewVerdictResponse(verdict models.Verdict) VerdictResponse {
	results := make([]TestResultResponse, 0, len(verdict.Results))
	for _, result := range verdict.Results {
		results = append(results, TestResultResponse{
			TestCaseID:     result.TestCaseID,
			Input:          result.Input,
			ExpectedOutput: result.ExpectedOutput,
			Output:         result.ActualOutput,
			Error:          result.Error,
			Failure:        result.Failure,
			Status:         result.Status,
		})
	}

	return VerdictResponse{
		QuestionID:     verdict.QuestionID,
		TotalTestCases: verdict.Total,
		Passed:         verdict.Passed,
		Failed:         verdict.Failed,
		IsCorrect:      verdict.IsCorrect(),
		Results:        results,
	}
}

// NewSolutionResponse converts a stored solution. UserID has no counterpart in the
// response and is dropped by the copy.
func NewSolutionResponse(solution models.Solution) SolutionResponse {
	var response SolutionResponse
	_ = copier.Copy(&response, &solution)
	return response
}

// NewSolutionResponseSlice converts stored solutions.
func NewSolutionResponseSlice(solutions []models.Solution) []SolutionResponse {
	items := make([]SolutionResponse, 0, len(solutions))
	for _, solution := range solutions {
		items = append(items, NewSolutionResponse(solution))
	}
	return items
}
