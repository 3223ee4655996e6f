package service

import (
	"context"
	"database/sql"
	"fmt"

	"algoarena/internal/common"
	"algoarena/internal/domain/model"
	"algoarena/internal/domain/repository"
	"algoarena/internal/judge"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

type ProblemService struct {
	problemRepo    repository.ProblemRepository
	submissionRepo repository.SubmissionRepository
	evaluator      Evaluator
	db             *sql.DB // for transactions
	log            *zap.Logger
}

func NewProblemService(
	problemRepo repository.ProblemRepository,
	submissionRepo repository.SubmissionRepository,
	evaluator Evaluator,
	db *sql.DB,
	log *zap.Logger,
) *ProblemService {
	return &ProblemService{
		problemRepo:    problemRepo,
		submissionRepo: submissionRepo,
		evaluator:      evaluator,
		db:             db,
		log:            log,
	}
}

type CreateProblemRequest struct {
	Title              string                  `json:"title"`
	Description        string                  `json:"description"`
	Difficulty         model.ProblemDifficulty `json:"difficulty"`
	Tags               []string                `json:"tags"`
	BoilerplateCode    []model.CodeSnippet     `json:"boilerplate_code"`
	ReferenceSolutions []model.CodeSnippet     `json:"reference_solutions"`
	VisibleTestCases   []model.TestCase        `json:"visible_test_cases"`
	HiddenTestCases    []model.TestCase        `json:"hidden_test_cases"`
}

type UpdateProblemRequest struct {
	Title       *string                  `json:"title,omitempty"`
	Description *string                  `json:"description,omitempty"`
	Difficulty  *model.ProblemDifficulty `json:"difficulty,omitempty"`
	Tags        *[]string                `json:"tags,omitempty"`
}

// CreateProblem stores a new problem after proving it is solvable: every
// reference solution must pass every visible test case before anything is
// written. A reference solution that fails rejects the whole problem.
func (s *ProblemService) CreateProblem(ctx context.Context, userID string, req CreateProblemRequest) (*model.Problem, error) {
	if req.Title == "" || req.Description == "" || req.Difficulty == "" {
		return nil, fmt.Errorf("missing required fields for problem creation: %w", common.ErrBadRequest)
	}
	if len(req.VisibleTestCases) == 0 || len(req.HiddenTestCases) == 0 {
		return nil, fmt.Errorf("visible and hidden test cases are required: %w", common.ErrBadRequest)
	}
	if len(req.ReferenceSolutions) == 0 {
		return nil, fmt.Errorf("at least one reference solution is required: %w", common.ErrBadRequest)
	}

	cases := make([]judge.TestCase, 0, len(req.VisibleTestCases))
	for _, tc := range req.VisibleTestCases {
		cases = append(cases, judge.TestCase{Stdin: tc.Stdin, ExpectedOutput: tc.ExpectedOutput})
	}

	for _, solution := range req.ReferenceSolutions {
		verdict, err := s.evaluator.Evaluate(ctx, solution.Language, solution.SourceCode, cases)
		if err != nil {
			return nil, fmt.Errorf("reference solution (%s) could not be evaluated: %w", solution.Language, err)
		}
		if !verdict.Accepted() {
			return nil, fmt.Errorf("reference solution (%s) failed validation: %s: %w",
				solution.Language, verdict.Status.Label(), common.ErrValidation)
		}
	}

	problem := &model.Problem{
		ID:                 uuid.NewString(),
		Title:              req.Title,
		Slug:               slug.Make(req.Title),
		Description:        req.Description,
		Difficulty:         req.Difficulty,
		Tags:               req.Tags,
		BoilerplateCode:    req.BoilerplateCode,
		ReferenceSolutions: req.ReferenceSolutions,
		CreatedByID:        &userID,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.problemRepo.CreateProblem(ctx, tx, problem); err != nil {
		return nil, common.Errorf("failed to create problem: %w", err)
	}

	testCases := make([]model.TestCase, 0, len(req.VisibleTestCases)+len(req.HiddenTestCases))
	for i, tc := range req.VisibleTestCases {
		tc.ID = uuid.NewString()
		tc.IsHidden = false
		tc.SortOrder = i
		testCases = append(testCases, tc)
	}
	for i, tc := range req.HiddenTestCases {
		tc.ID = uuid.NewString()
		tc.IsHidden = true
		tc.SortOrder = i
		testCases = append(testCases, tc)
	}
	if err := s.problemRepo.AddTestCases(ctx, tx, problem.ID, testCases); err != nil {
		return nil, common.Errorf("failed to add test cases: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit transaction: %w", err)
	}

	s.log.Info("problem created",
		zap.String("problem_id", problem.ID),
		zap.String("slug", problem.Slug),
		zap.Int("test_cases", len(testCases)))
	return problem, nil
}

func (s *ProblemService) UpdateProblem(ctx context.Context, problemID string, req UpdateProblemRequest) (*model.Problem, error) {
	problem, err := s.problemRepo.FindProblemByID(ctx, problemID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		problem.Title = *req.Title
		problem.Slug = slug.Make(*req.Title)
	}
	if req.Description != nil {
		problem.Description = *req.Description
	}
	if req.Difficulty != nil {
		problem.Difficulty = *req.Difficulty
	}
	if req.Tags != nil {
		problem.Tags = *req.Tags
	}

	if err := s.problemRepo.UpdateProblem(ctx, nil, problem); err != nil {
		return nil, common.Errorf("failed to update problem: %w", err)
	}
	return problem, nil
}

func (s *ProblemService) DeleteProblem(ctx context.Context, problemID string) error {
	return s.problemRepo.DeleteProblem(ctx, problemID)
}

// GetProblemDetails returns the problem with its visible test cases. Hidden
// test cases and reference solutions are stripped unless the caller is an
// admin.
func (s *ProblemService) GetProblemDetails(ctx context.Context, idOrSlug, userRole string) (*model.Problem, error) {
	problem, err := s.problemRepo.FindProblemByID(ctx, idOrSlug)
	if err != nil {
		problem, err = s.problemRepo.FindProblemBySlug(ctx, idOrSlug)
	}
	if err != nil {
		return nil, err
	}

	visible, err := s.problemRepo.GetTestCases(ctx, problem.ID, false)
	if err != nil {
		return nil, common.Errorf("failed to load visible test cases: %w", err)
	}
	problem.VisibleTestCases = visible

	if userRole == model.RoleAdmin {
		hidden, err := s.problemRepo.GetTestCases(ctx, problem.ID, true)
		if err != nil {
			return nil, common.Errorf("failed to load hidden test cases: %w", err)
		}
		problem.HiddenTestCases = hidden
	} else {
		problem.ReferenceSolutions = nil
	}
	return problem, nil
}

func (s *ProblemService) ListProblems(ctx context.Context, page, pageSize int, difficulty model.ProblemDifficulty) ([]model.Problem, int, error) {
	offset := (page - 1) * pageSize
	return s.problemRepo.ListProblems(ctx, pageSize, offset, difficulty)
}

func (s *ProblemService) ListSolvedProblems(ctx context.Context, userID string) ([]string, error) {
	return s.submissionRepo.ListSolvedProblemIDs(ctx, userID)
}
