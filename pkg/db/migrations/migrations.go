// Package migrations contains the evaluation store migrations. Versions
// use Rails-style timestamps (YYYYMMDDHHmmss).
package migrations

import (
	"github.com/BayramAnnakov/eval-coach/pkg/db"
)

// All returns all registered migrations in order.
func All() []db.Migration {
	return []db.Migration{
		Migration20260818120000CreateTestCases(),
	}
}
