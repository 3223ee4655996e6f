package model

import "time"

type SubmissionStatus string

// A submission is created Pending and transitions exactly once, to Accepted
// or Error. A terminal submission is immutable.
const (
	SubmissionPending  SubmissionStatus = "Pending"
	SubmissionAccepted SubmissionStatus = "Accepted"
	SubmissionError    SubmissionStatus = "Error"
)

type Submission struct {
	ID              string           `json:"id"`
	UserID          string           `json:"user_id"`
	ProblemID       string           `json:"problem_id"`
	Code            string           `json:"code,omitempty"`
	Language        string           `json:"language"`
	Status          SubmissionStatus `json:"status"`
	RuntimeMs       float64          `json:"runtime_ms"`
	MemoryKb        int              `json:"memory_kb"`
	ErrorMessage    string           `json:"error_message,omitempty"`
	TestCasesPassed int              `json:"test_cases_passed"`
	TestCasesTotal  int              `json:"test_cases_total"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}
