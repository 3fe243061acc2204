package ledger

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabledger/internal/core/apperror"
	"tabledger/internal/core/id"
	"tabledger/internal/core/types"
)

// --- In-memory fakes ---
// One shared state struct backs all repository fakes, so derived views
// (stock, sale totals) are recomputed from the recorded events exactly
// like the SQL aggregates do.

type fakeState struct {
	orders        map[id.ID]*Order
	receipts      []Receipt
	consumption   []Consumption
	sales         []Sale
	settings      Settings
	settingsErr   error
	readOnlyCalls int
}

func newFakeState() *fakeState {
	return &fakeState{
		orders: make(map[id.ID]*Order),
		settings: Settings{
			ID:                 id.New(),
			BufferDays:         60,
			CostPerTablet:      types.MustMoney("0.4125"),
			SalePricePerTablet: types.MustMoney("0.6500"),
		},
	}
}

type fakeOrders struct{ s *fakeState }

func (f *fakeOrders) Create(_ context.Context, order *Order) error {
	cp := *order
	f.s.orders[order.ID] = &cp
	return nil
}

func (f *fakeOrders) GetByID(_ context.Context, orderID id.ID) (*Order, error) {
	order, ok := f.s.orders[orderID]
	if !ok {
		return nil, apperror.NewNotFound("order", orderID)
	}
	cp := *order
	return &cp, nil
}

func (f *fakeOrders) UpdateFulfillment(_ context.Context, orderID id.ID, tabletsReceived int, status OrderStatus) error {
	order, ok := f.s.orders[orderID]
	if !ok {
		return apperror.NewNotFound("order", orderID)
	}
	order.TabletsReceived = tabletsReceived
	order.Status = status
	return nil
}

func (f *fakeOrders) ListPending(_ context.Context) ([]Order, error) {
	var pending []Order
	for _, order := range f.s.orders {
		if order.Status == StatusPending || order.Status == StatusPartial {
			pending = append(pending, *order)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].OrderDate.After(pending[j].OrderDate)
	})
	return pending, nil
}

func (f *fakeOrders) List(_ context.Context) ([]Order, error) {
	var all []Order
	for _, order := range f.s.orders {
		all = append(all, *order)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].OrderDate.After(all[j].OrderDate)
	})
	return all, nil
}

type fakeReceipts struct{ s *fakeState }

func (f *fakeReceipts) Create(_ context.Context, receipt *Receipt) error {
	f.s.receipts = append(f.s.receipts, *receipt)
	return nil
}

func (f *fakeReceipts) List(_ context.Context) ([]Receipt, error) {
	return append([]Receipt(nil), f.s.receipts...), nil
}

type fakeConsumption struct{ s *fakeState }

func (f *fakeConsumption) Create(_ context.Context, consumption *Consumption) error {
	f.s.consumption = append(f.s.consumption, *consumption)
	return nil
}

func (f *fakeConsumption) List(_ context.Context) ([]Consumption, error) {
	return append([]Consumption(nil), f.s.consumption...), nil
}

type fakeSales struct{ s *fakeState }

func (f *fakeSales) Create(_ context.Context, sale *Sale) error {
	f.s.sales = append(f.s.sales, *sale)
	return nil
}

func (f *fakeSales) List(_ context.Context) ([]Sale, error) {
	return append([]Sale(nil), f.s.sales...), nil
}

func (f *fakeSales) TotalsByType(_ context.Context) ([]SaleTotals, error) {
	byType := make(map[TabletType]*SaleTotals)
	for _, sale := range f.s.sales {
		totals, ok := byType[sale.Type]
		if !ok {
			totals = &SaleTotals{Type: sale.Type, TotalRevenue: types.Zero()}
			byType[sale.Type] = totals
		}
		totals.TabletsSold += sale.Quantity
		totals.TotalRevenue = totals.TotalRevenue.Add(sale.Revenue)
	}

	var result []SaleTotals
	for _, t := range AllTypes {
		if totals, ok := byType[t]; ok {
			result = append(result, *totals)
		}
	}
	return result, nil
}

type fakeSettings struct{ s *fakeState }

func (f *fakeSettings) Get(_ context.Context) (*Settings, error) {
	if f.s.settingsErr != nil {
		return nil, f.s.settingsErr
	}
	cp := f.s.settings
	return &cp, nil
}

func (f *fakeSettings) Update(_ context.Context, settings *Settings) error {
	f.s.settings = *settings
	return nil
}

type fakeStock struct{ s *fakeState }

func (f *fakeStock) Summary(_ context.Context) ([]StockSummary, error) {
	stock := make(map[TabletType]int)
	for _, receipt := range f.s.receipts {
		stock[receipt.Type] += receipt.Tablets
	}
	for _, consumption := range f.s.consumption {
		stock[consumption.Type] -= consumption.Quantity
	}
	for _, sale := range f.s.sales {
		stock[sale.Type] -= sale.Quantity
	}

	var summaries []StockSummary
	for _, t := range AllTypes {
		if qty, ok := stock[t]; ok {
			summaries = append(summaries, StockSummary{Type: t, CurrentStock: qty})
		}
	}
	return summaries, nil
}

type fakeTxManager struct{ s *fakeState }

func (m fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m fakeTxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	m.s.readOnlyCalls++
	return fn(ctx)
}

func newTestService() (*Service, *fakeState) {
	state := newFakeState()
	svc := NewService(
		&fakeOrders{state},
		&fakeReceipts{state},
		&fakeConsumption{state},
		&fakeSales{state},
		&fakeSettings{state},
		&fakeStock{state},
		fakeTxManager{state},
	)
	return svc, state
}

// --- Tests ---

func TestRecordOrder(t *testing.T) {
	svc, state := newTestService()
	ctx := context.Background()

	order, err := svc.RecordOrder(ctx, OrderInput{
		Date:       date("2025-03-01"),
		Type:       TypeSilver,
		Packets:    5,
		AmountPaid: types.MustMoney("20.625"),
	})
	require.NoError(t, err)

	assert.Equal(t, 50, order.Tablets)
	assert.Equal(t, StatusPending, order.Status)
	assert.Len(t, state.orders, 1)
}

func TestRecordOrder_InvalidInput(t *testing.T) {
	svc, state := newTestService()
	ctx := context.Background()

	_, err := svc.RecordOrder(ctx, OrderInput{
		Date:       date("2025-03-01"),
		Type:       TypeSilver,
		Packets:    0,
		AmountPaid: types.MustMoney("5.000"),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidInput(err))

	// Rejected before any storage call.
	assert.Empty(t, state.orders)
}

func TestRecordReceipt_WithoutOrder(t *testing.T) {
	svc, state := newTestService()
	ctx := context.Background()

	receipt, err := svc.RecordReceipt(ctx, ReceiptInput{
		Date:    date("2025-03-10"),
		Type:    TypePurple,
		Packets: 3,
	})
	require.NoError(t, err)

	assert.Equal(t, 30, receipt.Tablets)
	assert.Len(t, state.receipts, 1)
}

func TestRecordReceipt_CompletesOrder(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	order, err := svc.RecordOrder(ctx, OrderInput{
		Date: date("2025-03-01"), Type: TypeSilver, Packets: 5, AmountPaid: types.MustMoney("20.625"),
	})
	require.NoError(t, err)

	_, err = svc.RecordReceipt(ctx, ReceiptInput{
		Date: date("2025-03-10"), Type: TypeSilver, Packets: 5, OrderID: &order.ID,
	})
	require.NoError(t, err)

	pending, err := svc.PendingOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending, "completed order must leave the pending list")
}

func TestRecordReceipt_TwoReceiptsDriveStatus(t *testing.T) {
	svc, state := newTestService()
	ctx := context.Background()

	// Order of 4 packets = 40 tablets; two 2-packet receipts complete it.
	order, err := svc.RecordOrder(ctx, OrderInput{
		Date: date("2025-03-01"), Type: TypeSilver, Packets: 4, AmountPaid: types.MustMoney("16.500"),
	})
	require.NoError(t, err)

	_, err = svc.RecordReceipt(ctx, ReceiptInput{
		Date: date("2025-03-10"), Type: TypeSilver, Packets: 2, OrderID: &order.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPartial, state.orders[order.ID].Status)
	assert.Equal(t, 20, state.orders[order.ID].TabletsReceived)

	_, err = svc.RecordReceipt(ctx, ReceiptInput{
		Date: date("2025-03-15"), Type: TypeSilver, Packets: 2, OrderID: &order.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, state.orders[order.ID].Status)
	assert.Equal(t, 40, state.orders[order.ID].TabletsReceived)
}

func TestRecordReceipt_ClampsOverdelivery(t *testing.T) {
	svc, state := newTestService()
	ctx := context.Background()

	order, err := svc.RecordOrder(ctx, OrderInput{
		Date: date("2025-03-01"), Type: TypeSilver, Packets: 5, AmountPaid: types.MustMoney("20.625"),
	})
	require.NoError(t, err)

	// 7 packets = 70 tablets against a 50-tablet order.
	_, err = svc.RecordReceipt(ctx, ReceiptInput{
		Date: date("2025-03-10"), Type: TypeSilver, Packets: 7, OrderID: &order.ID,
	})
	require.NoError(t, err)

	stored := state.orders[order.ID]
	assert.Equal(t, 50, stored.TabletsReceived, "tablets_received is clamped at the order total")
	assert.Equal(t, StatusComplete, stored.Status)
}

func TestRecordReceipt_OrderNotFound(t *testing.T) {
	svc, state := newTestService()
	ctx := context.Background()

	missing := id.New()
	_, err := svc.RecordReceipt(ctx, ReceiptInput{
		Date: date("2025-03-10"), Type: TypeSilver, Packets: 1, OrderID: &missing,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
	assert.Empty(t, state.receipts, "no receipt persisted when the order lookup fails")
}

func TestRecordReceipt_TypeMismatch(t *testing.T) {
	svc, state := newTestService()
	ctx := context.Background()

	order, err := svc.RecordOrder(ctx, OrderInput{
		Date: date("2025-03-01"), Type: TypeSilver, Packets: 5, AmountPaid: types.MustMoney("20.625"),
	})
	require.NoError(t, err)

	_, err = svc.RecordReceipt(ctx, ReceiptInput{
		Date: date("2025-03-10"), Type: TypePurple, Packets: 5, OrderID: &order.ID,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidInput(err))
	assert.Empty(t, state.receipts)
	assert.Equal(t, 0, state.orders[order.ID].TabletsReceived)
}

func TestCurrentStock_Scenario(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	// Receipts totalling 100 silver tablets.
	_, err := svc.RecordReceipt(ctx, ReceiptInput{Date: date("2025-03-01"), Type: TypeSilver, Packets: 6})
	require.NoError(t, err)
	_, err = svc.RecordReceipt(ctx, ReceiptInput{Date: date("2025-03-05"), Type: TypeSilver, Packets: 4})
	require.NoError(t, err)

	// Consumption totalling 10.
	_, err = svc.RecordConsumption(ctx, ConsumptionInput{Date: date("2025-03-06"), Type: TypeSilver, Quantity: 10})
	require.NoError(t, err)

	// Sales totalling 20.
	_, err = svc.RecordSale(ctx, SaleInput{Date: date("2025-03-07"), Type: TypeSilver, Quantity: 20, Revenue: types.MustMoney("13.000")})
	require.NoError(t, err)

	stock, err := svc.CurrentStock(ctx)
	require.NoError(t, err)

	assert.Equal(t, 70, stock[TypeSilver])
	assert.Equal(t, 0, stock[TypePurple], "variant with no activity reports zero")
}

func TestCurrentStock_MayGoNegative(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	// Overdraft is permitted: the ledger trusts input.
	_, err := svc.RecordConsumption(ctx, ConsumptionInput{Date: date("2025-03-06"), Type: TypePurple, Quantity: 5})
	require.NoError(t, err)

	stock, err := svc.CurrentStock(ctx)
	require.NoError(t, err)
	assert.Equal(t, -5, stock[TypePurple])
}

func TestAllTimeProfit_RecomputesAfterSettingsChange(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.RecordSale(ctx, SaleInput{
		Date: date("2025-03-07"), Type: TypeSilver, Quantity: 10, Revenue: types.MustMoney("10.000"),
	})
	require.NoError(t, err)

	profit, err := svc.AllTimeProfit(ctx)
	require.NoError(t, err)
	assert.True(t, profit.Equal(types.MustMoney("5.875")), "got %s", profit)

	// Raising the cost shifts the same sale's profit retroactively.
	_, err = svc.UpdateSettings(ctx, 60, types.MustMoney("0.5"), types.MustMoney("0.6500"))
	require.NoError(t, err)

	profit, err = svc.AllTimeProfit(ctx)
	require.NoError(t, err)
	assert.True(t, profit.Equal(types.MustMoney("5.000")), "got %s", profit)
}

func TestPendingOrders_SortedAndFiltered(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	older, err := svc.RecordOrder(ctx, OrderInput{
		Date: date("2025-01-10"), Type: TypeSilver, Packets: 2, AmountPaid: types.MustMoney("8.250"),
	})
	require.NoError(t, err)

	newer, err := svc.RecordOrder(ctx, OrderInput{
		Date: date("2025-02-20"), Type: TypePurple, Packets: 3, AmountPaid: types.MustMoney("12.375"),
	})
	require.NoError(t, err)

	completed, err := svc.RecordOrder(ctx, OrderInput{
		Date: date("2025-03-01"), Type: TypeSilver, Packets: 1, AmountPaid: types.MustMoney("4.125"),
	})
	require.NoError(t, err)
	_, err = svc.RecordReceipt(ctx, ReceiptInput{
		Date: date("2025-03-05"), Type: TypeSilver, Packets: 1, OrderID: &completed.ID,
	})
	require.NoError(t, err)

	pending, err := svc.PendingOrders(ctx)
	require.NoError(t, err)

	require.Len(t, pending, 2)
	assert.Equal(t, newer.ID, pending[0].ID, "most recent order_date first")
	assert.Equal(t, older.ID, pending[1].ID)
}

func TestUpdateSettings_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.UpdateSettings(ctx, -1, types.MustMoney("0.4125"), types.MustMoney("0.6500"))
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidInput(err))

	_, err = svc.UpdateSettings(ctx, 30, types.MustMoney("-0.1"), types.MustMoney("0.6500"))
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidInput(err))
}

func TestUpdateSettings_ValidatesBeforeStorage(t *testing.T) {
	svc, state := newTestService()
	ctx := context.Background()

	// Even with storage failing, bad input is rejected as INVALID_INPUT,
	// not surfaced as a storage error.
	state.settingsErr = apperror.NewDatabase(assert.AnError)

	_, err := svc.UpdateSettings(ctx, -1, types.MustMoney("0.4125"), types.MustMoney("0.6500"))
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidInput(err))
}

func TestGetDashboard(t *testing.T) {
	svc, state := newTestService()
	ctx := context.Background()

	// 70 tablets on hand against the default 60-day buffer.
	_, err := svc.RecordReceipt(ctx, ReceiptInput{Date: date("2025-03-01"), Type: TypeSilver, Packets: 4})
	require.NoError(t, err)
	_, err = svc.RecordReceipt(ctx, ReceiptInput{Date: date("2025-03-02"), Type: TypePurple, Packets: 3})
	require.NoError(t, err)

	dashboard, err := svc.GetDashboard(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, state.readOnlyCalls, "dashboard reads run in a read-only transaction")
	assert.Equal(t, 70, dashboard.TotalStock)
	assert.Equal(t, 70, dashboard.DaysRemaining)
	assert.Equal(t, 60, dashboard.BufferDays)
	assert.Equal(t, 60, dashboard.ReservedTablets)
	assert.Equal(t, 10, dashboard.AvailableToSell)
	assert.Empty(t, dashboard.PendingOrders)
}

func TestQuickConsume(t *testing.T) {
	svc, state := newTestService()
	ctx := context.Background()

	consumption, err := svc.QuickConsume(ctx, TypeSilver)
	require.NoError(t, err)

	assert.Equal(t, 1, consumption.Quantity)
	assert.Equal(t, TypeSilver, consumption.Type)
	assert.WithinDuration(t, time.Now(), consumption.ConsumptionDate, 24*time.Hour)
	assert.Len(t, state.consumption, 1)
}

func TestGetHistory(t *testing.T) {
	svc, state := newTestService()
	ctx := context.Background()

	_, err := svc.RecordOrder(ctx, OrderInput{
		Date: date("2025-03-01"), Type: TypeSilver, Packets: 2, AmountPaid: types.MustMoney("8.250"),
	})
	require.NoError(t, err)
	_, err = svc.RecordReceipt(ctx, ReceiptInput{Date: date("2025-03-02"), Type: TypeSilver, Packets: 2})
	require.NoError(t, err)
	_, err = svc.RecordConsumption(ctx, ConsumptionInput{Date: date("2025-03-03"), Type: TypeSilver, Quantity: 1})
	require.NoError(t, err)
	_, err = svc.RecordSale(ctx, SaleInput{Date: date("2025-03-04"), Type: TypeSilver, Quantity: 2, Revenue: types.MustMoney("1.300")})
	require.NoError(t, err)

	history, err := svc.GetHistory(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, state.readOnlyCalls, "history reads run in a read-only transaction")
	assert.Len(t, history.Orders, 1)
	assert.Len(t, history.Receipts, 1)
	assert.Len(t, history.Consumption, 1)
	assert.Len(t, history.Sales, 1)
}
