package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"algoarena/internal/common"
	"algoarena/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type ProblemRepository interface {
	CreateProblem(ctx context.Context, tx *sql.Tx, problem *model.Problem) error
	UpdateProblem(ctx context.Context, tx *sql.Tx, problem *model.Problem) error
	DeleteProblem(ctx context.Context, id string) error
	FindProblemByID(ctx context.Context, id string) (*model.Problem, error)
	FindProblemBySlug(ctx context.Context, slug string) (*model.Problem, error)
	ListProblems(ctx context.Context, limit, offset int, difficulty model.ProblemDifficulty) ([]model.Problem, int, error)

	AddTestCases(ctx context.Context, tx *sql.Tx, problemID string, testCases []model.TestCase) error
	GetTestCases(ctx context.Context, problemID string, hidden bool) ([]model.TestCase, error)
	DeleteTestCases(ctx context.Context, tx *sql.Tx, problemID string) error
}

type pgProblemRepository struct {
	db *sql.DB
}

func NewPgProblemRepository(db *sql.DB) ProblemRepository {
	return &pgProblemRepository{db: db}
}

// Tags, boilerplate code and reference solutions are stored as jsonb; test
// cases get their own table because the judge reads them selectively by
// visibility.

func (r *pgProblemRepository) CreateProblem(ctx context.Context, tx *sql.Tx, p *model.Problem) error {
	tags, boilerplate, solutions, err := marshalProblemDocs(p)
	if err != nil {
		return err
	}

	query := `INSERT INTO problems (id, title, slug, description, difficulty, tags, boilerplate_code, reference_solutions, created_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = execer(tx, r.db).ExecContext(ctx, query,
		p.ID, p.Title, p.Slug, p.Description, p.Difficulty, tags, boilerplate, solutions, p.CreatedByID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique slug
			return fmt.Errorf("problem with this slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgProblemRepository.CreateProblem: %w", err)
	}
	return nil
}

func (r *pgProblemRepository) UpdateProblem(ctx context.Context, tx *sql.Tx, p *model.Problem) error {
	tags, boilerplate, solutions, err := marshalProblemDocs(p)
	if err != nil {
		return err
	}

	query := `UPDATE problems SET
	            title = $1, slug = $2, description = $3, difficulty = $4,
	            tags = $5, boilerplate_code = $6, reference_solutions = $7,
	            updated_at = CURRENT_TIMESTAMP
	          WHERE id = $8`
	result, err := execer(tx, r.db).ExecContext(ctx, query,
		p.Title, p.Slug, p.Description, p.Difficulty, tags, boilerplate, solutions, p.ID)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.UpdateProblem: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgProblemRepository) DeleteProblem(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM problems WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.DeleteProblem: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgProblemRepository) FindProblemByID(ctx context.Context, id string) (*model.Problem, error) {
	return r.findOne(ctx, "id", id)
}

func (r *pgProblemRepository) FindProblemBySlug(ctx context.Context, slug string) (*model.Problem, error) {
	return r.findOne(ctx, "slug", slug)
}

func (r *pgProblemRepository) findOne(ctx context.Context, column, value string) (*model.Problem, error) {
	query := fmt.Sprintf(`SELECT id, title, slug, description, difficulty, tags, boilerplate_code, reference_solutions, created_by, created_at, updated_at
	          FROM problems WHERE %s = $1`, column)

	problem := &model.Problem{}
	var tags, boilerplate, solutions []byte
	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&problem.ID, &problem.Title, &problem.Slug, &problem.Description, &problem.Difficulty,
		&tags, &boilerplate, &solutions, &problem.CreatedByID, &problem.CreatedAt, &problem.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgProblemRepository.findOne(%s): %w", column, err)
	}
	if err := unmarshalProblemDocs(problem, tags, boilerplate, solutions); err != nil {
		return nil, err
	}
	return problem, nil
}

func (r *pgProblemRepository) ListProblems(ctx context.Context, limit, offset int, difficulty model.ProblemDifficulty) ([]model.Problem, int, error) {
	where := ""
	args := []interface{}{}
	if difficulty != "" {
		where = "WHERE difficulty = $1"
		args = append(args, difficulty)
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM problems " + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgProblemRepository.ListProblems count: %w", err)
	}

	query := fmt.Sprintf(`SELECT id, title, slug, description, difficulty, tags, created_at, updated_at
	          FROM problems %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgProblemRepository.ListProblems: %w", err)
	}
	defer rows.Close()

	var problems []model.Problem
	for rows.Next() {
		var p model.Problem
		var tags []byte
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug, &p.Description, &p.Difficulty, &tags, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("pgProblemRepository.ListProblems scan: %w", err)
		}
		if len(tags) > 0 {
			if err := json.Unmarshal(tags, &p.Tags); err != nil {
				return nil, 0, fmt.Errorf("pgProblemRepository.ListProblems tags: %w", err)
			}
		}
		problems = append(problems, p)
	}
	return problems, total, rows.Err()
}

func (r *pgProblemRepository) AddTestCases(ctx context.Context, tx *sql.Tx, problemID string, testCases []model.TestCase) error {
	query := `INSERT INTO test_cases (id, problem_id, stdin, expected_output, is_hidden, sort_order)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	for _, tc := range testCases {
		if _, err := execer(tx, r.db).ExecContext(ctx, query,
			tc.ID, problemID, tc.Stdin, tc.ExpectedOutput, tc.IsHidden, tc.SortOrder); err != nil {
			return fmt.Errorf("pgProblemRepository.AddTestCases: %w", err)
		}
	}
	return nil
}

func (r *pgProblemRepository) GetTestCases(ctx context.Context, problemID string, hidden bool) ([]model.TestCase, error) {
	query := `SELECT id, problem_id, stdin, expected_output, is_hidden, sort_order
	          FROM test_cases WHERE problem_id = $1 AND is_hidden = $2 ORDER BY sort_order`
	rows, err := r.db.QueryContext(ctx, query, problemID, hidden)
	if err != nil {
		return nil, fmt.Errorf("pgProblemRepository.GetTestCases: %w", err)
	}
	defer rows.Close()

	var cases []model.TestCase
	for rows.Next() {
		var tc model.TestCase
		if err := rows.Scan(&tc.ID, &tc.ProblemID, &tc.Stdin, &tc.ExpectedOutput, &tc.IsHidden, &tc.SortOrder); err != nil {
			return nil, fmt.Errorf("pgProblemRepository.GetTestCases scan: %w", err)
		}
		cases = append(cases, tc)
	}
	return cases, rows.Err()
}

func (r *pgProblemRepository) DeleteTestCases(ctx context.Context, tx *sql.Tx, problemID string) error {
	if _, err := execer(tx, r.db).ExecContext(ctx, `DELETE FROM test_cases WHERE problem_id = $1`, problemID); err != nil {
		return fmt.Errorf("pgProblemRepository.DeleteTestCases: %w", err)
	}
	return nil
}

func marshalProblemDocs(p *model.Problem) (tags, boilerplate, solutions []byte, err error) {
	if tags, err = json.Marshal(p.Tags); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal tags: %w", err)
	}
	if boilerplate, err = json.Marshal(p.BoilerplateCode); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal boilerplate code: %w", err)
	}
	if solutions, err = json.Marshal(p.ReferenceSolutions); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal reference solutions: %w", err)
	}
	return tags, boilerplate, solutions, nil
}

func unmarshalProblemDocs(p *model.Problem, tags, boilerplate, solutions []byte) error {
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &p.Tags); err != nil {
			return fmt.Errorf("unmarshal tags: %w", err)
		}
	}
	if len(boilerplate) > 0 {
		if err := json.Unmarshal(boilerplate, &p.BoilerplateCode); err != nil {
			return fmt.Errorf("unmarshal boilerplate code: %w", err)
		}
	}
	if len(solutions) > 0 {
		if err := json.Unmarshal(solutions, &p.ReferenceSolutions); err != nil {
			return fmt.Errorf("unmarshal reference solutions: %w", err)
		}
	}
	return nil
}

// execer lets a query run inside an optional transaction.
func execer(tx *sql.Tx, db *sql.DB) interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
} {
	if tx != nil {
		return tx
	}
	return db
}
