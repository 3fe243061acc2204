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

const salesTable = "sales"

var saleColumns = postgres.ExtractDBColumns[ledger.Sale]()

// SaleRepo implements ledger.SaleRepository.
type SaleRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewSaleRepo creates a new sale repository.
func NewSaleRepo(txm *postgres.TxManager) *SaleRepo {
	return &SaleRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new sale.
func (r *SaleRepo) Create(ctx context.Context, sale *ledger.Sale) error {
	sale.CreatedAt = time.Now()

	q := r.builder.Insert(salesTable).
		SetMap(postgres.StructToMap(sale))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return apperror.NewDatabase(fmt.Errorf("insert sale: %w", err))
	}
	return nil
}

// List returns all sales, most recent sale_date first.
func (r *SaleRepo) List(ctx context.Context) ([]ledger.Sale, error) {
	q := r.builder.Select(saleColumns...).
		From(salesTable).
		OrderBy("sale_date DESC", "created_at DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var sales []ledger.Sale
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &sales, sql, args...); err != nil {
		return nil, apperror.NewDatabase(fmt.Errorf("select sales: %w", err))
	}
	return sales, nil
}

// TotalsByType aggregates sold quantity and revenue per variant.
func (r *SaleRepo) TotalsByType(ctx context.Context) ([]ledger.SaleTotals, error) {
	sql := `
		SELECT
			type,
			COALESCE(SUM(quantity), 0)::bigint AS tablets_sold,
			COALESCE(SUM(revenue), 0) AS total_revenue
		FROM sales
		GROUP BY type
		ORDER BY type
	`

	var totals []ledger.SaleTotals
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &totals, sql); err != nil {
		return nil, apperror.NewDatabase(fmt.Errorf("aggregate sales: %w", err))
	}
	return totals, nil
}

// Ensure interface compliance.
var _ ledger.SaleRepository = (*SaleRepo)(nil)
