package ledger_repo

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"tabledger/internal/core/apperror"
	"tabledger/internal/domain/ledger"
	"tabledger/internal/infrastructure/storage/postgres"
)

// StockRepo implements ledger.StockRepository. Stock is not maintained
// incrementally: it is recomputed from the full event log on every query.
type StockRepo struct {
	txm *postgres.TxManager
}

// NewStockRepo creates a new stock repository.
func NewStockRepo(txm *postgres.TxManager) *StockRepo {
	return &StockRepo{txm: txm}
}

// Summary returns per-variant stock: receipt tablets minus consumption
// minus sales. Values may be negative.
func (r *StockRepo) Summary(ctx context.Context) ([]ledger.StockSummary, error) {
	sql := `
		SELECT type, SUM(delta)::bigint AS current_stock
		FROM (
			SELECT type, tablets AS delta FROM receipts
			UNION ALL
			SELECT type, -quantity FROM consumption
			UNION ALL
			SELECT type, -quantity FROM sales
		) events
		GROUP BY type
		ORDER BY type
	`

	var summaries []ledger.StockSummary
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &summaries, sql); err != nil {
		return nil, apperror.NewDatabase(fmt.Errorf("aggregate stock: %w", err))
	}
	return summaries, nil
}

// Ensure interface compliance.
var _ ledger.StockRepository = (*StockRepo)(nil)
