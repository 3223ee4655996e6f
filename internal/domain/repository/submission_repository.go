package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"algoarena/internal/common"
	"algoarena/internal/domain/model"
)

type SubmissionRepository interface {
	CreateSubmission(ctx context.Context, sub *model.Submission) error
	GetSubmissionByID(ctx context.Context, id string) (*model.Submission, error)
	// FinalizeSubmission applies the verdict to a Pending submission. It is
	// the only transition out of Pending and must happen exactly once; a
	// call against an already-terminal submission returns ErrAlreadyFinalized
	// and changes nothing.
	FinalizeSubmission(ctx context.Context, id string, status model.SubmissionStatus,
		runtimeMs float64, memoryKb int, errorMessage string, testCasesPassed int) error
	ListSubmissionsForUserProblem(ctx context.Context, userID, problemID string) ([]model.Submission, error)

	// DeleteAllForUser removes every trace of the user's activity: their
	// submissions and their solved set. Used when the account is deleted.
	DeleteAllForUser(ctx context.Context, userID string) error

	MarkProblemSolved(ctx context.Context, userID, problemID string) error
	ListSolvedProblemIDs(ctx context.Context, userID string) ([]string, error)
	GetLeaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
}

type pgSubmissionRepository struct {
	db *sql.DB
}

func NewPgSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &pgSubmissionRepository{db: db}
}

func (r *pgSubmissionRepository) CreateSubmission(ctx context.Context, sub *model.Submission) error {
	query := `INSERT INTO submissions (id, user_id, problem_id, code, language, status, test_cases_total)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query,
		sub.ID, sub.UserID, sub.ProblemID, sub.Code, sub.Language, sub.Status, sub.TestCasesTotal)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.CreateSubmission: %w", err)
	}
	return nil
}

func (r *pgSubmissionRepository) GetSubmissionByID(ctx context.Context, id string) (*model.Submission, error) {
	query := `SELECT id, user_id, problem_id, code, language, status, runtime_ms, memory_kb,
	                 error_message, test_cases_passed, test_cases_total, created_at, updated_at
	          FROM submissions WHERE id = $1`
	sub := &model.Submission{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&sub.ID, &sub.UserID, &sub.ProblemID, &sub.Code, &sub.Language, &sub.Status,
		&sub.RuntimeMs, &sub.MemoryKb, &sub.ErrorMessage, &sub.TestCasesPassed, &sub.TestCasesTotal,
		&sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSubmissionRepository.GetSubmissionByID: %w", err)
	}
	return sub, nil
}

func (r *pgSubmissionRepository) FinalizeSubmission(ctx context.Context, id string, status model.SubmissionStatus,
	runtimeMs float64, memoryKb int, errorMessage string, testCasesPassed int) error {

	// The guard on status is the whole point: a concurrent or repeated
	// finalization loses the race here instead of overwriting the verdict.
	query := `UPDATE submissions SET
	            status = $2, runtime_ms = $3, memory_kb = $4, error_message = $5,
	            test_cases_passed = $6, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $1 AND status = $7`
	result, err := r.db.ExecContext(ctx, query,
		id, status, runtimeMs, memoryKb, errorMessage, testCasesPassed, model.SubmissionPending)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.FinalizeSubmission: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.FinalizeSubmission rows affected: %w", err)
	}
	if n == 0 {
		_, checkErr := r.GetSubmissionByID(ctx, id)
		return resolveFinalizeConflict(id, checkErr)
	}
	return nil
}

// resolveFinalizeConflict classifies a zero-row finalize: the submission is
// either already terminal, gone, or the existence check itself failed and
// that failure must not masquerade as a conflict.
func resolveFinalizeConflict(id string, checkErr error) error {
	switch {
	case checkErr == nil:
		return fmt.Errorf("submission %s: %w", id, common.ErrAlreadyFinalized)
	case errors.Is(checkErr, common.ErrNotFound):
		return common.ErrNotFound
	default:
		return fmt.Errorf("pgSubmissionRepository.FinalizeSubmission check: %w", checkErr)
	}
}

func (r *pgSubmissionRepository) ListSubmissionsForUserProblem(ctx context.Context, userID, problemID string) ([]model.Submission, error) {
	query := `SELECT id, user_id, problem_id, language, status, runtime_ms, memory_kb,
	                 error_message, test_cases_passed, test_cases_total, created_at, updated_at
	          FROM submissions WHERE user_id = $1 AND problem_id = $2 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID, problemID)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListSubmissionsForUserProblem: %w", err)
	}
	defer rows.Close()

	var subs []model.Submission
	for rows.Next() {
		var sub model.Submission
		if err := rows.Scan(
			&sub.ID, &sub.UserID, &sub.ProblemID, &sub.Language, &sub.Status,
			&sub.RuntimeMs, &sub.MemoryKb, &sub.ErrorMessage, &sub.TestCasesPassed, &sub.TestCasesTotal,
			&sub.CreatedAt, &sub.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.ListSubmissionsForUserProblem scan: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (r *pgSubmissionRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM submissions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("pgSubmissionRepository.DeleteAllForUser submissions: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM solved_problems WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("pgSubmissionRepository.DeleteAllForUser solved set: %w", err)
	}
	return nil
}

// MarkProblemSolved adds the problem to the user's solved set. Set semantics:
// re-solving an already-solved problem is a no-op.
func (r *pgSubmissionRepository) MarkProblemSolved(ctx context.Context, userID, problemID string) error {
	query := `INSERT INTO solved_problems (user_id, problem_id)
	          VALUES ($1, $2) ON CONFLICT (user_id, problem_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, userID, problemID); err != nil {
		return fmt.Errorf("pgSubmissionRepository.MarkProblemSolved: %w", err)
	}
	return nil
}

func (r *pgSubmissionRepository) ListSolvedProblemIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT problem_id FROM solved_problems WHERE user_id = $1 ORDER BY solved_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListSolvedProblemIDs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.ListSolvedProblemIDs scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *pgSubmissionRepository) GetLeaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	query := `SELECT u.id, u.username, COUNT(sp.problem_id) AS solved
	          FROM users u
	          JOIN solved_problems sp ON sp.user_id = u.id
	          GROUP BY u.id, u.username
	          ORDER BY solved DESC, u.username ASC
	          LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.GetLeaderboard: %w", err)
	}
	defer rows.Close()

	var entries []model.LeaderboardEntry
	rank := 0
	for rows.Next() {
		var entry model.LeaderboardEntry
		if err := rows.Scan(&entry.UserID, &entry.Username, &entry.ProblemsSolved); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.GetLeaderboard scan: %w", err)
		}
		rank++
		entry.Rank = rank
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
