package models

// Test result statuses.
const (
	TestStatusPass = "pass"
	TestStatusFail = "fail"
)

// Reasons attached to a failed test result.
const (
	FailureDispatch    = "dispatch_failure"
	FailureRuntime     = "runtime_failure"
	FailureWrongAnswer = "wrong_answer"
)

// TestResult is the outcome of running a submission against one test case.
type TestResult struct {
	TestCaseID     uint
	Input          string
	ExpectedOutput string
	// ActualOutput is nil when the execution service returned no result.
	ActualOutput *string
	Status       string
	Error        string
	Failure      string
}

// Passed reports whether the test case passed.
func (r TestResult) Passed() bool {
	return r.Status == TestStatusPass
}

// Verdict aggregates the test results of one submission in catalog order.
type Verdict struct {
	QuestionID uint
	Total      int
	Passed     int
	Failed     int
	Results    []TestResult
}

// IsCorrect reports whether every test case passed.
func (v Verdict) IsCorrect() bool {
	return v.Total > 0 && v.Failed == 0
}

// Record appends a result and updates the counters.
func (v *Verdict) Record(result TestResult) {
	v.Results = append(v.Results, result)
	v.Total++
	if result.Passed() {
		v.Passed++
	} else {
		v.Failed++
	}
}

// Submission is a grading request for one question.
type Submission struct {
	QuestionID uint
	ProviderID string
	Code       string
	Language   string
	Version    string
}
