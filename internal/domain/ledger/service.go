package ledger

import (
	"context"
	"fmt"
	"time"

	"tabledger/internal/core/apperror"
	"tabledger/internal/core/id"
	"tabledger/internal/core/tx"
	"tabledger/internal/core/types"
	"tabledger/pkg/logger"
)

// Service is the ledger engine: it validates and normalizes transaction
// records, applies them to derived aggregates, and answers queries.
// Execution is request-scoped; there is no background processing.
type Service struct {
	orders      OrderRepository
	receipts    ReceiptRepository
	consumption ConsumptionRepository
	sales       SaleRepository
	settings    SettingsRepository
	stock       StockRepository
	txManager   tx.ReadOnlyManager
}

// NewService creates the ledger service.
func NewService(
	orders OrderRepository,
	receipts ReceiptRepository,
	consumption ConsumptionRepository,
	sales SaleRepository,
	settings SettingsRepository,
	stock StockRepository,
	txManager tx.ReadOnlyManager,
) *Service {
	return &Service{
		orders:      orders,
		receipts:    receipts,
		consumption: consumption,
		sales:       sales,
		settings:    settings,
		stock:       stock,
		txManager:   txManager,
	}
}

// --- Write operations ---

// OrderInput carries a paid-order event.
type OrderInput struct {
	Date       time.Time
	Type       TabletType
	Packets    int
	AmountPaid types.Money
}

// RecordOrder persists a new pending order.
func (s *Service) RecordOrder(ctx context.Context, in OrderInput) (*Order, error) {
	order := NewOrder(in.Date, in.Type, in.Packets, in.AmountPaid)
	if err := order.Validate(); err != nil {
		return nil, err
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	logger.Info(ctx, "order recorded",
		"id", order.ID,
		"type", order.Type,
		"tablets", order.Tablets)

	return order, nil
}

// ReceiptInput carries a shipment-received event.
type ReceiptInput struct {
	Date    time.Time
	Type    TabletType
	Packets int
	OrderID *id.ID
	Notes   string
}

// RecordReceipt persists a receipt. When the receipt references an order,
// the order's tablets_received is incremented (clamped at the order total)
// and its status recomputed; receipt insert and order update run in one
// transaction so the pair can never partially apply.
func (s *Service) RecordReceipt(ctx context.Context, in ReceiptInput) (*Receipt, error) {
	receipt := NewReceipt(in.Date, in.Type, in.Packets, in.OrderID, in.Notes)
	if err := receipt.Validate(); err != nil {
		return nil, err
	}

	if receipt.OrderID == nil {
		if err := s.receipts.Create(ctx, receipt); err != nil {
			return nil, err
		}
		logger.Info(ctx, "receipt recorded",
			"id", receipt.ID,
			"type", receipt.Type,
			"tablets", receipt.Tablets)
		return receipt, nil
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		order, err := s.orders.GetByID(ctx, *receipt.OrderID)
		if err != nil {
			return err
		}
		if order.Type != receipt.Type {
			return apperror.NewInvalidInput("receipt type does not match order type").
				WithDetail("orderType", string(order.Type)).
				WithDetail("receiptType", string(receipt.Type))
		}

		if err := s.receipts.Create(ctx, receipt); err != nil {
			return fmt.Errorf("create receipt: %w", err)
		}

		order.ApplyReceipt(receipt.Tablets)
		if err := s.orders.UpdateFulfillment(ctx, order.ID, order.TabletsReceived, order.Status); err != nil {
			return fmt.Errorf("update order fulfillment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "receipt recorded against order",
		"id", receipt.ID,
		"order_id", receipt.OrderID,
		"tablets", receipt.Tablets)

	return receipt, nil
}

// ConsumptionInput carries a personal-use event.
type ConsumptionInput struct {
	Date     time.Time
	Type     TabletType
	Quantity int
}

// RecordConsumption persists a consumption record. The ledger trusts input:
// there is no check that the resulting stock stays non-negative.
func (s *Service) RecordConsumption(ctx context.Context, in ConsumptionInput) (*Consumption, error) {
	consumption := NewConsumption(in.Date, in.Type, in.Quantity)
	if err := consumption.Validate(); err != nil {
		return nil, err
	}

	if err := s.consumption.Create(ctx, consumption); err != nil {
		return nil, err
	}

	logger.Info(ctx, "consumption recorded",
		"id", consumption.ID,
		"type", consumption.Type,
		"quantity", consumption.Quantity)

	return consumption, nil
}

// QuickConsume records a quantity-1 consumption dated today. Backs the
// one-tap "take tablet" action.
func (s *Service) QuickConsume(ctx context.Context, typ TabletType) (*Consumption, error) {
	return s.RecordConsumption(ctx, ConsumptionInput{
		Date:     time.Now().Truncate(24 * time.Hour),
		Type:     typ,
		Quantity: 1,
	})
}

// SaleInput carries a sale event.
type SaleInput struct {
	Date     time.Time
	Type     TabletType
	Quantity int
	Revenue  types.Money
}

// RecordSale persists a sale. Profit is not snapshotted; it is derived at
// query time from the current cost setting.
func (s *Service) RecordSale(ctx context.Context, in SaleInput) (*Sale, error) {
	sale := NewSale(in.Date, in.Type, in.Quantity, in.Revenue)
	if err := sale.Validate(); err != nil {
		return nil, err
	}

	if err := s.sales.Create(ctx, sale); err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale recorded",
		"id", sale.ID,
		"type", sale.Type,
		"quantity", sale.Quantity,
		"revenue", sale.Revenue)

	return sale, nil
}

// UpdateSettings replaces the settings singleton. The new cost takes effect
// immediately and retroactively for all profit queries. Inputs are validated
// before any storage call.
func (s *Service) UpdateSettings(ctx context.Context, bufferDays int, costPerTablet, salePricePerTablet types.Money) (*Settings, error) {
	updated := &Settings{
		BufferDays:         bufferDays,
		CostPerTablet:      types.RoundUnitPrice(costPerTablet),
		SalePricePerTablet: types.RoundUnitPrice(salePricePerTablet),
		UpdatedAt:          time.Now(),
	}
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	current, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	updated.ID = current.ID

	if err := s.settings.Update(ctx, updated); err != nil {
		return nil, err
	}

	logger.Info(ctx, "settings updated",
		"buffer_days", updated.BufferDays,
		"cost_per_tablet", updated.CostPerTablet)

	return updated, nil
}

// --- Query operations ---

// Settings returns the current settings singleton.
func (s *Service) Settings(ctx context.Context) (*Settings, error) {
	return s.settings.Get(ctx)
}

// CurrentStock returns per-variant stock recomputed from the event log.
// Every variant is present in the result, zero when it has no activity.
// Values may be negative; the engine does not clamp.
func (s *Service) CurrentStock(ctx context.Context) (map[TabletType]int, error) {
	summaries, err := s.stock.Summary(ctx)
	if err != nil {
		return nil, err
	}

	stock := make(map[TabletType]int, len(AllTypes))
	for _, t := range AllTypes {
		stock[t] = 0
	}
	for _, summary := range summaries {
		stock[summary.Type] = summary.CurrentStock
	}
	return stock, nil
}

// PendingOrders returns orders still awaiting tablets (pending or partial),
// most recent order_date first. Unbounded: the full set in one call.
func (s *Service) PendingOrders(ctx context.Context) ([]Order, error) {
	return s.orders.ListPending(ctx)
}

// ProfitByType returns the per-variant profit breakdown evaluated against
// the current cost setting.
func (s *Service) ProfitByType(ctx context.Context) ([]ProfitSummary, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := s.sales.TotalsByType(ctx)
	if err != nil {
		return nil, err
	}
	return BuildProfitSummary(totals, settings.CostPerTablet), nil
}

// AllTimeProfit sums profit across all sales with the current cost setting.
func (s *Service) AllTimeProfit(ctx context.Context) (types.Money, error) {
	summaries, err := s.ProfitByType(ctx)
	if err != nil {
		return types.Zero(), err
	}

	profit := types.Zero()
	for _, summary := range summaries {
		profit = profit.Add(summary.TotalProfit)
	}
	return profit, nil
}

// Dashboard aggregates the front-page view: stock, reserve arithmetic,
// all-time profit and pending orders.
type Dashboard struct {
	Stock           map[TabletType]int `json:"stock"`
	TotalStock      int                `json:"totalStock"`
	DaysRemaining   int                `json:"daysRemaining"`
	BufferDays      int                `json:"bufferDays"`
	ReservedTablets int                `json:"reservedTablets"`
	AvailableToSell int                `json:"availableToSell"`
	AllTimeProfit   types.Money        `json:"allTimeProfit"`
	PendingOrders   []Order            `json:"pendingOrders"`
}

// GetDashboard assembles the dashboard view. All reads run in one
// read-only transaction so the merged figures come from a single snapshot.
func (s *Service) GetDashboard(ctx context.Context) (*Dashboard, error) {
	var dashboard *Dashboard
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		stock, err := s.CurrentStock(ctx)
		if err != nil {
			return err
		}
		settings, err := s.settings.Get(ctx)
		if err != nil {
			return err
		}
		pending, err := s.orders.ListPending(ctx)
		if err != nil {
			return err
		}
		profit, err := s.AllTimeProfit(ctx)
		if err != nil {
			return err
		}

		total := TotalStock(stock)
		dashboard = &Dashboard{
			Stock:           stock,
			TotalStock:      total,
			DaysRemaining:   DaysRemaining(total),
			BufferDays:      settings.BufferDays,
			ReservedTablets: settings.BufferDays,
			AvailableToSell: AvailableToSell(total, settings.BufferDays),
			AllTimeProfit:   profit,
			PendingOrders:   pending,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dashboard, nil
}

// History is the full transaction log, one list per record kind, each
// ordered by its own date descending.
type History struct {
	Orders      []Order       `json:"orders"`
	Receipts    []Receipt     `json:"receipts"`
	Consumption []Consumption `json:"consumption"`
	Sales       []Sale        `json:"sales"`
}

// GetHistory fetches all four record lists in one read-only transaction.
func (s *Service) GetHistory(ctx context.Context) (*History, error) {
	var history *History
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		orders, err := s.orders.List(ctx)
		if err != nil {
			return err
		}
		receipts, err := s.receipts.List(ctx)
		if err != nil {
			return err
		}
		consumption, err := s.consumption.List(ctx)
		if err != nil {
			return err
		}
		sales, err := s.sales.List(ctx)
		if err != nil {
			return err
		}

		history = &History{
			Orders:      orders,
			Receipts:    receipts,
			Consumption: consumption,
			Sales:       sales,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return history, nil
}
