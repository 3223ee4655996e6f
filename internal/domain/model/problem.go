package model

import "time"

type ProblemDifficulty string

const (
	DifficultyEasy   ProblemDifficulty = "Easy"
	DifficultyMedium ProblemDifficulty = "Medium"
	DifficultyHard   ProblemDifficulty = "Hard"
)

type Problem struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Slug        string            `json:"slug"`
	Description string            `json:"description"`
	Difficulty  ProblemDifficulty `json:"difficulty"`
	Tags        []string          `json:"tags"`
	// BoilerplateCode is the per-language starter code shown in the editor.
	BoilerplateCode []CodeSnippet `json:"boilerplate_code,omitempty"`
	// ReferenceSolutions are validated against the visible test cases before
	// the problem is accepted into the catalog.
	ReferenceSolutions []CodeSnippet `json:"reference_solutions,omitempty"` // Admin only view
	VisibleTestCases   []TestCase    `json:"visible_test_cases,omitempty"`
	HiddenTestCases    []TestCase    `json:"hidden_test_cases,omitempty"` // Admin only view
	CreatedByID        *string       `json:"created_by_id,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// CodeSnippet pairs a language name with a piece of source code.
type CodeSnippet struct {
	Language   string `json:"language"`
	SourceCode string `json:"source_code"`
}

type TestCase struct {
	ID             string `json:"id"`
	ProblemID      string `json:"problem_id"`
	Stdin          string `json:"stdin"`
	ExpectedOutput string `json:"expected_output"`
	// Hidden cases drive "submit"; visible cases drive "run" and the
	// reference-solution validation at problem creation.
	IsHidden  bool `json:"is_hidden"`
	SortOrder int  `json:"sort_order"`
}
