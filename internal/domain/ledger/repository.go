package ledger

import (
	"context"

	"tabledger/internal/core/id"
)

// Repository interfaces for the record-storage collaborator. Each write is
// a single insert or update; the receipt-plus-order compound write is
// composed by the service inside one transaction.

// OrderRepository persists orders.
type OrderRepository interface {
	Create(ctx context.Context, order *Order) error

	// GetByID returns the order or a NOT_FOUND AppError.
	GetByID(ctx context.Context, orderID id.ID) (*Order, error)

	// UpdateFulfillment sets tablets_received and status for one order.
	UpdateFulfillment(ctx context.Context, orderID id.ID, tabletsReceived int, status OrderStatus) error

	// ListPending returns orders with status pending or partial,
	// ordered by order_date descending.
	ListPending(ctx context.Context) ([]Order, error)

	// List returns all orders ordered by order_date descending.
	List(ctx context.Context) ([]Order, error)
}

// ReceiptRepository persists receipts.
type ReceiptRepository interface {
	Create(ctx context.Context, receipt *Receipt) error

	// List returns all receipts ordered by receipt_date descending.
	List(ctx context.Context) ([]Receipt, error)
}

// ConsumptionRepository persists consumption records.
type ConsumptionRepository interface {
	Create(ctx context.Context, consumption *Consumption) error

	// List returns all consumption records ordered by consumption_date descending.
	List(ctx context.Context) ([]Consumption, error)
}

// SaleRepository persists sales.
type SaleRepository interface {
	Create(ctx context.Context, sale *Sale) error

	// List returns all sales ordered by sale_date descending.
	List(ctx context.Context) ([]Sale, error)

	// TotalsByType aggregates quantity and revenue per variant over all sales.
	TotalsByType(ctx context.Context) ([]SaleTotals, error)
}

// SettingsRepository reads and replaces the settings singleton.
type SettingsRepository interface {
	// Get returns the singleton row. Fails if zero or multiple rows exist.
	Get(ctx context.Context) (*Settings, error)

	// Update replaces the singleton row.
	Update(ctx context.Context, settings *Settings) error
}

// StockRepository computes derived stock from the event log.
type StockRepository interface {
	// Summary returns per-variant current stock recomputed from receipts,
	// consumption and sales. Variants with no activity are omitted.
	Summary(ctx context.Context) ([]StockSummary, error)
}
