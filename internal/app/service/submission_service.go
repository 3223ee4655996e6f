package service

import (
	"context"
	"errors"
	"fmt"

	"algoarena/internal/common"
	"algoarena/internal/domain/model"
	"algoarena/internal/domain/repository"
	"algoarena/internal/judge"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Evaluator judges source code against a set of test cases.
type Evaluator interface {
	Evaluate(ctx context.Context, language, sourceCode string, cases []judge.TestCase) (judge.Verdict, error)
}

type SubmissionService struct {
	submissionRepo repository.SubmissionRepository
	problemRepo    repository.ProblemRepository
	evaluator      Evaluator
	log            *zap.Logger
}

func NewSubmissionService(
	subRepo repository.SubmissionRepository,
	probRepo repository.ProblemRepository,
	evaluator Evaluator,
	log *zap.Logger,
) *SubmissionService {
	return &SubmissionService{
		submissionRepo: subRepo,
		problemRepo:    probRepo,
		evaluator:      evaluator,
		log:            log,
	}
}

type EvaluateRequest struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

// EvaluationResponse is what submit and run return to the client. Status is
// always a human-readable label, never a bare status id.
type EvaluationResponse struct {
	SubmissionID      string  `json:"submission_id,omitempty"`
	Status            string  `json:"status"`
	Passed            int     `json:"passed"`
	Total             int     `json:"total"`
	// Runtime and memory are always serialized. A fast accepted solution can
	// legitimately report 0 ms and the field must still appear.
	RuntimeMs float64 `json:"runtime_ms"`
	MemoryKb  int     `json:"memory_kb"`
	Error             string  `json:"error,omitempty"`
	StatusDescription string  `json:"status_description,omitempty"`
}

// Submit evaluates the code against the problem's hidden test cases and
// persists the outcome. The submission record is created Pending before
// dispatch and finalized exactly once; on full acceptance the problem joins
// the user's solved set.
func (s *SubmissionService) Submit(ctx context.Context, userID, problemID string, req EvaluateRequest) (*EvaluationResponse, error) {
	if req.Code == "" || req.Language == "" {
		return nil, fmt.Errorf("code and language are required: %w", common.ErrBadRequest)
	}

	// Resolve the language up front so an unsupported one never leaves a
	// stranded Pending submission.
	if _, err := judge.LanguageID(req.Language); err != nil {
		return nil, err
	}

	if _, err := s.problemRepo.FindProblemByID(ctx, problemID); err != nil {
		return nil, fmt.Errorf("problem not found: %w", err)
	}
	hidden, err := s.problemRepo.GetTestCases(ctx, problemID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load test cases: %w", err)
	}
	if len(hidden) == 0 {
		return nil, fmt.Errorf("problem has no hidden test cases: %w", common.ErrInternalServer)
	}

	submission := &model.Submission{
		ID:             uuid.NewString(),
		UserID:         userID,
		ProblemID:      problemID,
		Code:           req.Code,
		Language:       req.Language,
		Status:         model.SubmissionPending,
		TestCasesTotal: len(hidden),
	}
	if err := s.submissionRepo.CreateSubmission(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	// Fire-and-forget with respect to the client: once dispatched, the
	// evaluation runs to completion and persists its verdict even if the
	// client disconnects, so nothing is left stuck in Pending.
	evalCtx := context.WithoutCancel(ctx)

	verdict, err := s.evaluator.Evaluate(evalCtx, req.Language, req.Code, toJudgeCases(hidden))
	if err != nil {
		// The submission stays Pending and is eligible for re-evaluation.
		s.log.Error("evaluation failed, submission left pending",
			zap.String("submission_id", submission.ID),
			zap.String("problem_id", problemID),
			zap.Error(err))
		return nil, err
	}

	status := model.SubmissionError
	if verdict.Accepted() {
		status = model.SubmissionAccepted
	}
	err = s.submissionRepo.FinalizeSubmission(evalCtx, submission.ID, status,
		verdict.TotalTimeMs, verdict.MaxMemoryKb, verdict.ErrorMessage, verdict.PassedCount)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyFinalized) {
			s.log.Error("refused to finalize submission twice",
				zap.String("submission_id", submission.ID),
				zap.Error(err))
		}
		return nil, err
	}

	if verdict.Accepted() {
		if err := s.submissionRepo.MarkProblemSolved(evalCtx, userID, problemID); err != nil {
			// The verdict is recorded; a failed solved-set update is
			// recoverable on the next accepted submission.
			s.log.Error("failed to mark problem solved",
				zap.String("user_id", userID),
				zap.String("problem_id", problemID),
				zap.Error(err))
		}
	}

	s.log.Info("submission evaluated",
		zap.String("submission_id", submission.ID),
		zap.String("status", string(status)),
		zap.Int("passed", verdict.PassedCount),
		zap.Int("total", verdict.TotalCount))

	resp := evaluationResponse(verdict)
	resp.SubmissionID = submission.ID
	return resp, nil
}

// Run evaluates the code against the problem's visible test cases. Nothing
// is persisted: no submission record, no solved-set change. The request
// context is used directly, so a disconnecting client aborts the poll.
func (s *SubmissionService) Run(ctx context.Context, problemID string, req EvaluateRequest) (*EvaluationResponse, error) {
	if req.Code == "" || req.Language == "" {
		return nil, fmt.Errorf("code and language are required: %w", common.ErrBadRequest)
	}
	if _, err := s.problemRepo.FindProblemByID(ctx, problemID); err != nil {
		return nil, fmt.Errorf("problem not found: %w", err)
	}
	visible, err := s.problemRepo.GetTestCases(ctx, problemID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load test cases: %w", err)
	}
	if len(visible) == 0 {
		return nil, fmt.Errorf("problem has no visible test cases: %w", common.ErrInternalServer)
	}

	verdict, err := s.evaluator.Evaluate(ctx, req.Language, req.Code, toJudgeCases(visible))
	if err != nil {
		return nil, err
	}
	return evaluationResponse(verdict), nil
}

func (s *SubmissionService) ListForProblem(ctx context.Context, userID, problemID string) ([]model.Submission, error) {
	return s.submissionRepo.ListSubmissionsForUserProblem(ctx, userID, problemID)
}

func (s *SubmissionService) Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	return s.submissionRepo.GetLeaderboard(ctx, limit)
}

func toJudgeCases(cases []model.TestCase) []judge.TestCase {
	out := make([]judge.TestCase, 0, len(cases))
	for _, tc := range cases {
		out = append(out, judge.TestCase{Stdin: tc.Stdin, ExpectedOutput: tc.ExpectedOutput})
	}
	return out
}

func evaluationResponse(v judge.Verdict) *EvaluationResponse {
	resp := &EvaluationResponse{
		Passed: v.PassedCount,
		Total:  v.TotalCount,
	}
	if v.Accepted() {
		resp.Status = v.Status.Label()
		resp.RuntimeMs = v.TotalTimeMs
		resp.MemoryKb = v.MaxMemoryKb
		return resp
	}
	resp.Status = v.Status.Label()
	resp.Error = v.ErrorMessage
	resp.StatusDescription = v.Status.Label()
	return resp
}
