package service

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/jask/stockflow/internal/database"
	"github.com/jask/stockflow/internal/logging"
)

// resetOrder lists tables children first so foreign keys hold while deleting.
var resetOrder = []string{"notifications", "orders", "products", "users"}

// MaintenanceService holds operator actions exposed by the CLI.
type MaintenanceService struct {
	DB  *sqlx.DB
	Log log.FieldLogger
}

// Reset deletes every row but leaves the schema and migration version alone.
// It returns the number of rows removed per table.
func (s *MaintenanceService) Reset(ctx context.Context) (map[string]int64, error) {
	if s.DB == nil {
		return nil, errors.New("maintenance: no database")
	}
	removed := make(map[string]int64, len(resetOrder))
	err := database.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		for _, table := range resetOrder {
			res, err := tx.ExecContext(ctx, "DELETE FROM "+table)
			if err != nil {
				return errors.Wrapf(err, "clear %s", table)
			}
			n, _ := res.RowsAffected()
			removed[table] = n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	fields := log.Fields{}
	for table, n := range removed {
		fields[table] = n
	}
	l := logging.Or(s.Log).WithFields(fields)
	if _, err := s.DB.ExecContext(ctx, "VACUUM"); err != nil {
		l.WithError(err).Warn("vacuum after reset")
	}
	l.Info("data reset")
	return removed, nil
}
