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

const receiptsTable = "receipts"

var receiptColumns = postgres.ExtractDBColumns[ledger.Receipt]()

// ReceiptRepo implements ledger.ReceiptRepository.
type ReceiptRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewReceiptRepo creates a new receipt repository.
func NewReceiptRepo(txm *postgres.TxManager) *ReceiptRepo {
	return &ReceiptRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new receipt.
func (r *ReceiptRepo) Create(ctx context.Context, receipt *ledger.Receipt) error {
	receipt.CreatedAt = time.Now()

	q := r.builder.Insert(receiptsTable).
		SetMap(postgres.StructToMap(receipt))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return apperror.NewDatabase(fmt.Errorf("insert receipt: %w", err))
	}
	return nil
}

// List returns all receipts, most recent receipt_date first.
func (r *ReceiptRepo) List(ctx context.Context) ([]ledger.Receipt, error) {
	q := r.builder.Select(receiptColumns...).
		From(receiptsTable).
		OrderBy("receipt_date DESC", "created_at DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var receipts []ledger.Receipt
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &receipts, sql, args...); err != nil {
		return nil, apperror.NewDatabase(fmt.Errorf("select receipts: %w", err))
	}
	return receipts, nil
}

// Ensure interface compliance.
var _ ledger.ReceiptRepository = (*ReceiptRepo)(nil)
