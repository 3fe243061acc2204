package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tabledger/internal/core/apperror"
	"tabledger/internal/domain/ledger"
	"tabledger/internal/infrastructure/storage/postgres"
)

const settingsTable = "settings"

var settingsColumns = postgres.ExtractDBColumns[ledger.Settings]()

// SettingsRepo implements ledger.SettingsRepository.
// The settings table holds exactly one pre-seeded row.
type SettingsRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewSettingsRepo creates a new settings repository.
func NewSettingsRepo(txm *postgres.TxManager) *SettingsRepo {
	return &SettingsRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Get returns the singleton row. Zero rows means the database was never
// seeded; multiple rows means the singleton invariant is broken. Both are
// surfaced as errors rather than silently picking a row.
func (r *SettingsRepo) Get(ctx context.Context) (*ledger.Settings, error) {
	q := r.builder.Select(settingsColumns...).
		From(settingsTable).
		Limit(2)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []ledger.Settings
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, apperror.NewDatabase(fmt.Errorf("select settings: %w", err))
	}

	return singletonRow(rows)
}

// singletonRow enforces the exactly-one-row invariant of the settings table.
func singletonRow(rows []ledger.Settings) (*ledger.Settings, error) {
	switch len(rows) {
	case 1:
		return &rows[0], nil
	case 0:
		return nil, apperror.NewNotFound("settings", nil).
			WithDetail("hint", "run cmd/seed to initialize the database")
	default:
		return nil, apperror.NewInternal(fmt.Errorf("settings singleton violated: %d rows", len(rows)))
	}
}

// Update replaces the singleton row.
func (r *SettingsRepo) Update(ctx context.Context, settings *ledger.Settings) error {
	q := r.builder.Update(settingsTable).
		Set("buffer_days", settings.BufferDays).
		Set("cost_per_tablet", settings.CostPerTablet).
		Set("sale_price_per_tablet", settings.SalePricePerTablet).
		Set("updated_at", settings.UpdatedAt).
		Where(squirrel.Eq{"id": settings.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewDatabase(fmt.Errorf("update settings: %w", err))
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("settings", settings.ID)
	}
	return nil
}

// Ensure interface compliance.
var _ ledger.SettingsRepository = (*SettingsRepo)(nil)
