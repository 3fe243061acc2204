package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabledger/internal/core/apperror"
	"tabledger/internal/core/types"
)

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name     string
		received int
		total    int
		want     OrderStatus
	}{
		{"nothing received", 0, 50, StatusPending},
		{"partially received", 20, 50, StatusPartial},
		{"one tablet short", 49, 50, StatusPartial},
		{"fully received", 50, 50, StatusComplete},
		{"over-received clamps to complete", 60, 50, StatusComplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(tt.received, tt.total))
		})
	}
}

func TestNewOrder_PacketConversion(t *testing.T) {
	order := NewOrder(date("2025-03-01"), TypeSilver, 5, types.MustMoney("20.625"))

	assert.Equal(t, 50, order.Tablets)
	assert.Equal(t, StatusPending, order.Status)
	assert.Equal(t, 0, order.TabletsReceived)
	require.NoError(t, order.Validate())
}

func TestOrder_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Order)
		wantErr bool
	}{
		{"valid", func(o *Order) {}, false},
		{"zero packets", func(o *Order) { o.Packets = 0 }, true},
		{"negative amount", func(o *Order) { o.AmountPaid = types.MustMoney("-1") }, true},
		{"unknown type", func(o *Order) { o.Type = "green" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := NewOrder(date("2025-03-01"), TypePurple, 3, types.MustMoney("12.000"))
			tt.mutate(order)

			err := order.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperror.IsInvalidInput(err))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestOrder_ApplyReceipt(t *testing.T) {
	order := NewOrder(date("2025-03-01"), TypeSilver, 5, types.MustMoney("20.625"))

	// First receipt: pending -> partial
	order.ApplyReceipt(25)
	assert.Equal(t, 25, order.TabletsReceived)
	assert.Equal(t, StatusPartial, order.Status)
	assert.Equal(t, 25, order.Remaining())

	// Second receipt: partial -> complete
	order.ApplyReceipt(25)
	assert.Equal(t, 50, order.TabletsReceived)
	assert.Equal(t, StatusComplete, order.Status)
	assert.Equal(t, 0, order.Remaining())
}

func TestOrder_ApplyReceipt_Clamped(t *testing.T) {
	order := NewOrder(date("2025-03-01"), TypeSilver, 5, types.MustMoney("20.625"))

	// Receipt exceeding the order total never pushes received past it.
	order.ApplyReceipt(70)
	assert.Equal(t, 50, order.TabletsReceived)
	assert.Equal(t, StatusComplete, order.Status)

	// Further receipts are inert.
	order.ApplyReceipt(10)
	assert.Equal(t, 50, order.TabletsReceived)
	assert.Equal(t, StatusComplete, order.Status)
}

func TestOrder_CostPerTablet(t *testing.T) {
	order := NewOrder(date("2025-03-01"), TypeSilver, 5, types.MustMoney("20.625"))

	// 20.625 / 50 tablets = 0.4125
	assert.True(t, order.CostPerTablet().Equal(types.MustMoney("0.4125")),
		"got %s", order.CostPerTablet())
}

func TestNewReceipt_PacketConversion(t *testing.T) {
	receipt := NewReceipt(date("2025-03-10"), TypePurple, 3, nil, "customs cleared")

	assert.Equal(t, 30, receipt.Tablets)
	assert.Nil(t, receipt.OrderID)
	require.NoError(t, receipt.Validate())
}

func TestReceipt_Validate_ZeroPackets(t *testing.T) {
	receipt := NewReceipt(date("2025-03-10"), TypePurple, 0, nil, "")
	assert.True(t, apperror.IsInvalidInput(receipt.Validate()))
}

func TestConsumption_Validate(t *testing.T) {
	assert.NoError(t, NewConsumption(date("2025-03-11"), TypeSilver, 1).Validate())
	assert.True(t, apperror.IsInvalidInput(NewConsumption(date("2025-03-11"), TypeSilver, 0).Validate()))
}

func TestSale_Validate(t *testing.T) {
	assert.NoError(t, NewSale(date("2025-03-12"), TypePurple, 10, types.MustMoney("10.000")).Validate())
	assert.True(t, apperror.IsInvalidInput(NewSale(date("2025-03-12"), TypePurple, 0, types.MustMoney("1")).Validate()))
	assert.True(t, apperror.IsInvalidInput(NewSale(date("2025-03-12"), TypePurple, 1, types.MustMoney("-1")).Validate()))
}

func TestBuildProfitSummary(t *testing.T) {
	totals := []SaleTotals{
		{Type: TypeSilver, TabletsSold: 10, TotalRevenue: types.MustMoney("10.000")},
	}

	summaries := BuildProfitSummary(totals, types.MustMoney("0.4125"))
	require.Len(t, summaries, 1)

	// 10.000 - 10 * 0.4125 = 5.875
	assert.True(t, summaries[0].TotalCost.Equal(types.MustMoney("4.125")), "cost %s", summaries[0].TotalCost)
	assert.True(t, summaries[0].TotalProfit.Equal(types.MustMoney("5.875")), "profit %s", summaries[0].TotalProfit)

	// Same sale re-evaluated at a higher cost shifts profit retroactively.
	summaries = BuildProfitSummary(totals, types.MustMoney("0.5"))
	assert.True(t, summaries[0].TotalProfit.Equal(types.MustMoney("5.000")), "profit %s", summaries[0].TotalProfit)
}

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}
