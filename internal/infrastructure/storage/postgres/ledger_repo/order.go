// Package ledger_repo provides PostgreSQL implementations for the ledger
// repositories.
package ledger_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tabledger/internal/core/apperror"
	"tabledger/internal/core/id"
	"tabledger/internal/domain/ledger"
	"tabledger/internal/infrastructure/storage/postgres"
)

const ordersTable = "orders"

var orderColumns = postgres.ExtractDBColumns[ledger.Order]()

// OrderRepo implements ledger.OrderRepository.
type OrderRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewOrderRepo creates a new order repository.
func NewOrderRepo(txm *postgres.TxManager) *OrderRepo {
	return &OrderRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new order.
func (r *OrderRepo) Create(ctx context.Context, order *ledger.Order) error {
	order.CreatedAt = time.Now()

	q := r.builder.Insert(ordersTable).
		SetMap(postgres.StructToMap(order))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return apperror.NewDatabase(fmt.Errorf("insert order: %w", err))
	}
	return nil
}

// GetByID retrieves one order.
func (r *OrderRepo) GetByID(ctx context.Context, orderID id.ID) (*ledger.Order, error) {
	q := r.builder.Select(orderColumns...).
		From(ordersTable).
		Where(squirrel.Eq{"id": orderID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var order ledger.Order
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &order, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("order", orderID)
		}
		return nil, apperror.NewDatabase(fmt.Errorf("get order: %w", err))
	}
	return &order, nil
}

// UpdateFulfillment sets tablets_received and status for one order.
func (r *OrderRepo) UpdateFulfillment(ctx context.Context, orderID id.ID, tabletsReceived int, status ledger.OrderStatus) error {
	q := r.builder.Update(ordersTable).
		Set("tablets_received", tabletsReceived).
		Set("status", status).
		Where(squirrel.Eq{"id": orderID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewDatabase(fmt.Errorf("update order: %w", err))
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("order", orderID)
	}
	return nil
}

// ListPending returns orders with status pending or partial,
// most recent order_date first.
func (r *OrderRepo) ListPending(ctx context.Context) ([]ledger.Order, error) {
	q := r.builder.Select(orderColumns...).
		From(ordersTable).
		Where(squirrel.Eq{"status": []ledger.OrderStatus{ledger.StatusPending, ledger.StatusPartial}}).
		OrderBy("order_date DESC", "created_at DESC")

	return r.selectOrders(ctx, q)
}

// List returns all orders, most recent order_date first.
func (r *OrderRepo) List(ctx context.Context) ([]ledger.Order, error) {
	q := r.builder.Select(orderColumns...).
		From(ordersTable).
		OrderBy("order_date DESC", "created_at DESC")

	return r.selectOrders(ctx, q)
}

func (r *OrderRepo) selectOrders(ctx context.Context, q squirrel.SelectBuilder) ([]ledger.Order, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var orders []ledger.Order
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &orders, sql, args...); err != nil {
		return nil, apperror.NewDatabase(fmt.Errorf("select orders: %w", err))
	}
	return orders, nil
}

// Ensure interface compliance.
var _ ledger.OrderRepository = (*OrderRepo)(nil)
