package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docuscore/docuscore/internal/engine"
	"github.com/docuscore/docuscore/internal/rubric"
	"github.com/docuscore/docuscore/internal/scoring"
)

var ErrNotFound = errors.New("results: not found")

type SQLStore struct {
	db     *sql.DB
	events *EventRepo
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, events: NewEventRepo(db)}
}

func (s *SQLStore) SaveResult(ctx context.Context, res *engine.GradeResult) (string, error) {
	if res == nil {
		return "", errors.New("results: nil result")
	}
	byCriteria, err := json.Marshal(res.ByCriteria)
	if err != nil {
		return "", fmt.Errorf("results: encode criteria: %w", err)
	}
	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO grade_results
		   (id, file_id, filename, file_type, rubric_name, total_points, max_points,
		    percentage, degraded, by_criteria_json, graded_at, processing_ms)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		id, res.FileID, res.Filename, res.FileType, res.RubricName,
		res.TotalPoints, res.MaxPossiblePoints, res.Percentage,
		res.Degraded, string(byCriteria), res.GradedAt.Unix(), res.ProcessingMS)
	if err != nil {
		return "", fmt.Errorf("results: save: %w", err)
	}
	_ = s.events.Append(ctx, Event{
		Type: "FileGraded",
		Key:  id,
		DataJSON: fmt.Sprintf(`{"file_id":%q,"rubric":%q,"total":%g,"percentage":%g}`,
			res.FileID, res.RubricName, res.TotalPoints, res.Percentage),
	})
	return id, nil
}

func (s *SQLStore) GetResult(ctx context.Context, id string) (*engine.GradeResult, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT file_id, filename, file_type, rubric_name, total_points, max_points,
		        percentage, degraded, by_criteria_json, graded_at, processing_ms
		 FROM grade_results WHERE id = $1`, id)
	return scanResult(row)
}

func (s *SQLStore) ListResults(ctx context.Context, opts ListOpts) ([]*engine.GradeResult, error) {
	limit := opts.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := `SELECT file_id, filename, file_type, rubric_name, total_points, max_points,
	             percentage, degraded, by_criteria_json, graded_at, processing_ms
	      FROM grade_results WHERE 1=1`
	args := []any{}
	n := 0
	if opts.RubricName != "" {
		n++
		q += fmt.Sprintf(" AND rubric_name = $%d", n)
		args = append(args, opts.RubricName)
	}
	if opts.FileType != "" {
		n++
		q += fmt.Sprintf(" AND file_type = $%d", n)
		args = append(args, opts.FileType)
	}
	q += fmt.Sprintf(" ORDER BY graded_at DESC LIMIT $%d OFFSET $%d", n+1, n+2)
	args = append(args, limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("results: list: %w", err)
	}
	defer rows.Close()
	var out []*engine.GradeResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (*engine.GradeResult, error) {
	var (
		res      engine.GradeResult
		criteria string
		gradedAt int64
	)
	// Degraded scans into a bool on both drivers: Postgres returns a real
	// boolean and database/sql converts SQLite's 0/1 integers.
	err := row.Scan(&res.FileID, &res.Filename, &res.FileType, &res.RubricName,
		&res.TotalPoints, &res.MaxPossiblePoints, &res.Percentage,
		&res.Degraded, &criteria, &gradedAt, &res.ProcessingMS)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("results: scan: %w", err)
	}
	res.GradedAt = time.Unix(gradedAt, 0).UTC()
	res.ByCriteria = map[string]scoring.CriterionResult{}
	if err := json.Unmarshal([]byte(criteria), &res.ByCriteria); err != nil {
		return nil, fmt.Errorf("results: decode criteria: %w", err)
	}
	return &res, nil
}

func (s *SQLStore) PutRubric(ctx context.Context, r rubric.Rubric) error {
	if err := r.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("results: encode rubric: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO rubrics (name, version, file_type, rubric_json, created_at)
		 VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (name, version) DO UPDATE SET rubric_json = excluded.rubric_json`,
		r.Name, r.Version, string(r.FileType), string(data), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("results: put rubric: %w", err)
	}
	return nil
}

func (s *SQLStore) GetRubric(ctx context.Context, name string) (rubric.Rubric, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT rubric_json FROM rubrics WHERE name = $1`, name)
	if err != nil {
		return rubric.Rubric{}, fmt.Errorf("results: get rubric: %w", err)
	}
	defer rows.Close()
	var (
		best  rubric.Rubric
		found bool
	)
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return rubric.Rubric{}, fmt.Errorf("results: get rubric: %w", err)
		}
		var r rubric.Rubric
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			return rubric.Rubric{}, fmt.Errorf("results: decode rubric: %w", err)
		}
		if !found || versionLess(best.Version, r.Version) {
			best, found = r, true
		}
	}
	if err := rows.Err(); err != nil {
		return rubric.Rubric{}, err
	}
	if !found {
		return rubric.Preset(name)
	}
	return best, nil
}

// versionLess orders dot-separated versions numerically, so "1.9" sorts
// below "1.10". Non-numeric segments fall back to string comparison.
func versionLess(a, b string) bool {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		var av, bv string
		if i < len(as) {
			av = as[i]
		}
		if i < len(bs) {
			bv = bs[i]
		}
		an, aerr := strconv.Atoi(av)
		bn, berr := strconv.Atoi(bv)
		if aerr == nil && berr == nil {
			if an != bn {
				return an < bn
			}
			continue
		}
		if av != bv {
			return av < bv
		}
	}
	return false
}

func (s *SQLStore) ListRubrics(ctx context.Context) ([]rubric.Rubric, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT rubric_json FROM rubrics ORDER BY name, version`)
	if err != nil {
		return nil, fmt.Errorf("results: list rubrics: %w", err)
	}
	defer rows.Close()
	stored := map[string]struct{}{}
	var out []rubric.Rubric
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var r rubric.Rubric
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			continue
		}
		stored[r.Name] = struct{}{}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Presets show up unless a stored rubric shadows them.
	for _, p := range rubric.Presets() {
		if _, ok := stored[p.Name]; !ok {
			out = append(out, p)
		}
	}
	return out, nil
}
