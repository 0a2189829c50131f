package dataset

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/BayramAnnakov/eval-coach/pkg/plan"
)

// Store persists test cases in the local SQLite evaluation store. The
// caller opens the database (pkg/db) and runs migrations before handing
// it over.
type Store struct {
	db *sqlx.DB
}

// NewStore wraps an open, migrated database.
func NewStore(database *sqlx.DB) *Store {
	return &Store{db: database}
}

type caseRow struct {
	ID           string    `db:"id"`
	PlanName     string    `db:"plan_name"`
	Name         string    `db:"name"`
	Category     string    `db:"category"`
	Inputs       string    `db:"inputs"`
	Expectations string    `db:"expectations"`
	CreatedAt    time.Time `db:"created_at"`
}

func toRow(c Case) (caseRow, error) {
	inputs, err := json.Marshal(c.Inputs)
	if err != nil {
		return caseRow{}, errors.Wrapf(err, "failed to marshal inputs for case %q", c.Name)
	}
	expectations, err := json.Marshal(c.Expectations)
	if err != nil {
		return caseRow{}, errors.Wrapf(err, "failed to marshal expectations for case %q", c.Name)
	}
	return caseRow{
		ID:           c.ID,
		PlanName:     c.PlanName,
		Name:         c.Name,
		Category:     string(c.Category),
		Inputs:       string(inputs),
		Expectations: string(expectations),
		CreatedAt:    c.CreatedAt,
	}, nil
}

func (r caseRow) toCase() (Case, error) {
	c := Case{
		ID:        r.ID,
		PlanName:  r.PlanName,
		Name:      r.Name,
		Category:  plan.Category(r.Category),
		CreatedAt: r.CreatedAt,
	}
	if err := json.Unmarshal([]byte(r.Inputs), &c.Inputs); err != nil {
		return Case{}, errors.Wrapf(err, "failed to unmarshal inputs for case %q", r.Name)
	}
	if err := json.Unmarshal([]byte(r.Expectations), &c.Expectations); err != nil {
		return Case{}, errors.Wrapf(err, "failed to unmarshal expectations for case %q", r.Name)
	}
	return c, nil
}

// SaveCases upserts cases keyed by (plan, name), so re-scaffolding a
// plan refreshes stubs without duplicating them.
func (s *Store) SaveCases(ctx context.Context, cases []Case) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	for _, c := range cases {
		row, err := toRow(c)
		if err != nil {
			return err
		}
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO test_cases (id, plan_name, name, category, inputs, expectations, created_at)
			VALUES (:id, :plan_name, :name, :category, :inputs, :expectations, :created_at)
			ON CONFLICT(plan_name, name) DO UPDATE SET
				category = excluded.category,
				inputs = excluded.inputs,
				expectations = excluded.expectations
		`, row); err != nil {
			return errors.Wrapf(err, "failed to save case %q", c.Name)
		}
	}

	return errors.Wrap(tx.Commit(), "failed to commit cases")
}

// ListCases returns the cases for a plan, optionally filtered by
// category (empty category means all), ordered by category then name.
func (s *Store) ListCases(ctx context.Context, planName string, category plan.Category) ([]Case, error) {
	query := `
		SELECT id, plan_name, name, category, inputs, expectations, created_at
		FROM test_cases WHERE plan_name = ?`
	args := []interface{}{planName}
	if category != "" {
		query += " AND category = ?"
		args = append(args, string(category))
	}
	query += " ORDER BY category, name"

	var rows []caseRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrapf(err, "failed to list cases for plan %q", planName)
	}

	cases := make([]Case, 0, len(rows))
	for _, row := range rows {
		c, err := row.toCase()
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	return cases, nil
}

// PlanNames returns the distinct plan names present in the store.
func (s *Store) PlanNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := s.db.SelectContext(ctx, &names,
		"SELECT DISTINCT plan_name FROM test_cases ORDER BY plan_name"); err != nil {
		return nil, errors.Wrap(err, "failed to list plan names")
	}
	return names, nil
}

// ExportJSON renders a plan's cases as an indented JSON array for
// hand-off to an external dataset service.
func (s *Store) ExportJSON(ctx context.Context, planName string) (string, error) {
	cases, err := s.ListCases(ctx, planName, "")
	if err != nil {
		return "", err
	}
	if len(cases) == 0 {
		return "", errors.Errorf("no cases stored for plan %q", planName)
	}

	data, err := json.MarshalIndent(cases, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal cases")
	}
	return string(data) + "\n", nil
}
