package migrations

import (
	"database/sql"

	"github.com/BayramAnnakov/eval-coach/pkg/db"
	"github.com/pkg/errors"
)

// Migration20260818120000CreateTestCases creates the test_cases table.
func Migration20260818120000CreateTestCases() db.Migration {
	return db.Migration{
		Version:     20260818120000,
		Description: "Create test_cases table",
		Up: func(tx *sql.Tx) error {
			if _, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS test_cases (
					id TEXT PRIMARY KEY,
					plan_name TEXT NOT NULL,
					name TEXT NOT NULL,
					category TEXT NOT NULL,
					inputs TEXT NOT NULL,
					expectations TEXT NOT NULL,
					created_at DATETIME NOT NULL,
					UNIQUE(plan_name, name)
				)
			`); err != nil {
				return errors.Wrap(err, "failed to create test_cases table")
			}

			if _, err := tx.Exec(`
				CREATE INDEX IF NOT EXISTS idx_test_cases_plan_category
				ON test_cases(plan_name, category)
			`); err != nil {
				return errors.Wrap(err, "failed to create test_cases index")
			}

			return nil
		},
		Down: func(tx *sql.Tx) error {
			_, err := tx.Exec("DROP TABLE IF EXISTS test_cases")
			return errors.Wrap(err, "failed to drop test_cases table")
		},
	}
}
