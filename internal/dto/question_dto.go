package dto

import "github.com/noah-isme/code-quest-api/internal/models"

// QuestionResponse represents a catalog question returned by the API.
type QuestionResponse struct {
	ID          uint     `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Difficulty  string   `json:"difficulty"`
	StarterCode string   `json:"starter_code"`
	Tags        []string `json:"tags"`
}

// TestCaseResponse represents a question test case.
type TestCaseResponse struct {
	ID             uint   `json:"id"`
	QuestionID     uint   `json:"question_id"`
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
}

// NewQuestionResponse builds a response DTO from the model.
func NewQuestionResponse(question models.Question) QuestionResponse {
	return QuestionResponse{
		ID:          question.ID,
		Title:       question.Title,
		Description: question.Description,
		Difficulty:  question.Difficulty,
		StarterCode: question.StarterCode,
		Tags:        question.TagsSlice(),
	}
}

// NewQuestionResponseSlice converts a slice of questions.
func NewQuestionResponseSlice(questions []models.Question) []QuestionResponse {
	items := make([]QuestionResponse, 0, len(questions))
	for _, question := range questions {
		items = append(items, NewQuestionResponse(question))
	}
	return items
}

// NewTestCaseResponseSlice converts a slice of test cases.
func NewTestCaseResponseSlice(testCases []models.TestCase) []TestCaseResponse {
	items := make([]TestCaseResponse, 0, len(testCases))
	for _, testCase := range testCases {
		items = append(items, TestCaseResponse{
			ID:             testCase.ID,
			QuestionID:     testCase.QuestionID,
			Input:          testCase.Input,
			ExpectedOutput: testCase.ExpectedOutput,
		})
	}
	return items
}
