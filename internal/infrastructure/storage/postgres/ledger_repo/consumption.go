package ledger_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tabledger/internal/core/apperror"
	"tabledger/internal/domain/ledger"
	"tabledger/internal/infrastructure/storage/postgres"
)

const consumptionTable = "consumption"

var consumptionColumns = postgres.ExtractDBColumns[ledger.Consumption]()

// ConsumptionRepo implements ledger.ConsumptionRepository.
type ConsumptionRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewConsumptionRepo creates a new consumption repository.
func NewConsumptionRepo(txm *postgres.TxManager) *ConsumptionRepo {
	return &ConsumptionRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new consumption record.
func (r *ConsumptionRepo) Create(ctx context.Context, consumption *ledger.Consumption) error {
	consumption.CreatedAt = time.Now()

	q := r.builder.Insert(consumptionTable).
		SetMap(postgres.StructToMap(consumption))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return apperror.NewDatabase(fmt.Errorf("insert consumption: %w", err))
	}
	return nil
}

// List returns all consumption records, most recent consumption_date first.
func (r *ConsumptionRepo) List(ctx context.Context) ([]ledger.Consumption, error) {
	q := r.builder.Select(consumptionColumns...).
		From(consumptionTable).
		OrderBy("consumption_date DESC", "created_at DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var records []ledger.Consumption
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &records, sql, args...); err != nil {
		return nil, apperror.NewDatabase(fmt.Errorf("select consumption: %w", err))
	}
	return records, nil
}

// Ensure interface compliance.
var _ ledger.ConsumptionRepository = (*ConsumptionRepo)(nil)
