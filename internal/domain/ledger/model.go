// Package ledger implements the stock and order-reconciliation model:
// how orders, receipts, consumption and sales combine into current stock,
// order fulfillment status and profit.
package ledger

import (
	"time"

	"tabledger/internal/core/apperror"
	"tabledger/internal/core/id"
	"tabledger/internal/core/types"
)

// TabletType identifies one of the two tablet variants.
type TabletType string

const (
	TypeSilver TabletType = "silver"
	TypePurple TabletType = "purple"
)

// AllTypes lists every tablet variant in display order.
var AllTypes = []TabletType{TypeSilver, TypePurple}

// Valid reports whether t is a known variant.
func (t TabletType) Valid() bool {
	return t == TypeSilver || t == TypePurple
}

// OrderStatus tracks order fulfillment.
// Transitions: pending -> partial -> complete. Complete is terminal;
// no transition reverts status or reduces tablets_received.
type OrderStatus string

const (
	StatusPending  OrderStatus = "pending"
	StatusPartial  OrderStatus = "partial"
	StatusComplete OrderStatus = "complete"
)

// TabletsPerPacket is the physical packet size. All packet-based inputs
// are converted to tablet counts at record time.
const TabletsPerPacket = 10

// DeriveStatus computes order status from received and total tablets.
// The status is never stored independently of this rule.
func DeriveStatus(received, total int) OrderStatus {
	switch {
	case received <= 0:
		return StatusPending
	case received < total:
		return StatusPartial
	default:
		return StatusComplete
	}
}

// Order is a paid order awaiting shipment. Created on the order-paid event,
// mutated only by receipts referencing it, never deleted.
type Order struct {
	ID              id.ID       `db:"id" json:"id"`
	CreatedAt       time.Time   `db:"created_at" json:"createdAt"`
	OrderDate       time.Time   `db:"order_date" json:"orderDate"`
	Type            TabletType  `db:"type" json:"type"`
	Packets         int         `db:"packets" json:"packets"`
	Tablets         int         `db:"tablets" json:"tablets"`
	AmountPaid      types.Money `db:"amount_paid" json:"amountPaid"`
	Status          OrderStatus `db:"status" json:"status"`
	TabletsReceived int         `db:"tablets_received" json:"tabletsReceived"`
}

// NewOrder creates a pending order from a paid-order event.
func NewOrder(orderDate time.Time, typ TabletType, packets int, amountPaid types.Money) *Order {
	return &Order{
		ID:              id.New(),
		OrderDate:       orderDate,
		Type:            typ,
		Packets:         packets,
		Tablets:         packets * TabletsPerPacket,
		AmountPaid:      amountPaid,
		Status:          StatusPending,
		TabletsReceived: 0,
	}
}

// Validate checks order constraints before any storage call.
func (o *Order) Validate() error {
	if !o.Type.Valid() {
		return apperror.NewInvalidInput("unknown tablet type").WithDetail("type", string(o.Type))
	}
	if o.Packets < 1 {
		return apperror.NewInvalidInput("packets must be at least 1").WithDetail("packets", o.Packets)
	}
	if o.AmountPaid.IsNegative() {
		return apperror.NewInvalidInput("amount paid must not be negative")
	}
	return nil
}

// Remaining returns tablets still expected on this order.
func (o *Order) Remaining() int {
	return o.Tablets - o.TabletsReceived
}

// ApplyReceipt increments tablets_received by the receipt's tablet count,
// clamped so it never exceeds the order total, and recomputes status.
func (o *Order) ApplyReceipt(tablets int) {
	received := o.TabletsReceived + tablets
	if received > o.Tablets {
		received = o.Tablets
	}
	o.TabletsReceived = received
	o.Status = DeriveStatus(o.TabletsReceived, o.Tablets)
}

// CostPerTablet returns the effective per-tablet cost of this order,
// rounded to 4 decimal places.
func (o *Order) CostPerTablet() types.Money {
	if o.Tablets == 0 {
		return types.Zero()
	}
	return types.RoundUnitPrice(o.AmountPaid.Div(types.NewMoney(float64(o.Tablets))))
}

// Receipt is a received shipment. Immutable after creation. OrderID is a
// weak reference: a receipt may arrive with no matching order.
type Receipt struct {
	ID          id.ID      `db:"id" json:"id"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	ReceiptDate time.Time  `db:"receipt_date" json:"receiptDate"`
	Type        TabletType `db:"type" json:"type"`
	Packets     int        `db:"packets" json:"packets"`
	Tablets     int        `db:"tablets" json:"tablets"`
	OrderID     *id.ID     `db:"order_id" json:"orderId,omitempty"`
	Notes       string     `db:"notes" json:"notes,omitempty"`
}

// NewReceipt creates a receipt from a shipment-received event.
func NewReceipt(receiptDate time.Time, typ TabletType, packets int, orderID *id.ID, notes string) *Receipt {
	return &Receipt{
		ID:          id.New(),
		ReceiptDate: receiptDate,
		Type:        typ,
		Packets:     packets,
		Tablets:     packets * TabletsPerPacket,
		OrderID:     orderID,
		Notes:       notes,
	}
}

// Validate checks receipt constraints before any storage call.
func (r *Receipt) Validate() error {
	if !r.Type.Valid() {
		return apperror.NewInvalidInput("unknown tablet type").WithDetail("type", string(r.Type))
	}
	if r.Packets < 1 {
		return apperror.NewInvalidInput("packets must be at least 1").WithDetail("packets", r.Packets)
	}
	return nil
}

// Consumption is a personal-use event. Immutable.
type Consumption struct {
	ID              id.ID      `db:"id" json:"id"`
	CreatedAt       time.Time  `db:"created_at" json:"createdAt"`
	ConsumptionDate time.Time  `db:"consumption_date" json:"consumptionDate"`
	Type            TabletType `db:"type" json:"type"`
	Quantity        int        `db:"quantity" json:"quantity"`
}

// NewConsumption creates a consumption record.
func NewConsumption(date time.Time, typ TabletType, quantity int) *Consumption {
	return &Consumption{
		ID:              id.New(),
		ConsumptionDate: date,
		Type:            typ,
		Quantity:        quantity,
	}
}

// Validate checks consumption constraints before any storage call.
func (c *Consumption) Validate() error {
	if !c.Type.Valid() {
		return apperror.NewInvalidInput("unknown tablet type").WithDetail("type", string(c.Type))
	}
	if c.Quantity < 1 {
		return apperror.NewInvalidInput("quantity must be at least 1").WithDetail("quantity", c.Quantity)
	}
	return nil
}

// Sale is a sale event. Immutable. Profit is not stored per-sale; it is
// computed at query time against the current cost_per_tablet setting.
type Sale struct {
	ID        id.ID       `db:"id" json:"id"`
	CreatedAt time.Time   `db:"created_at" json:"createdAt"`
	SaleDate  time.Time   `db:"sale_date" json:"saleDate"`
	Type      TabletType  `db:"type" json:"type"`
	Quantity  int         `db:"quantity" json:"quantity"`
	Revenue   types.Money `db:"revenue" json:"revenue"`
}

// NewSale creates a sale record.
func NewSale(date time.Time, typ TabletType, quantity int, revenue types.Money) *Sale {
	return &Sale{
		ID:       id.New(),
		SaleDate: date,
		Type:     typ,
		Quantity: quantity,
		Revenue:  revenue,
	}
}

// Validate checks sale constraints before any storage call.
func (s *Sale) Validate() error {
	if !s.Type.Valid() {
		return apperror.NewInvalidInput("unknown tablet type").WithDetail("type", string(s.Type))
	}
	if s.Quantity < 1 {
		return apperror.NewInvalidInput("quantity must be at least 1").WithDetail("quantity", s.Quantity)
	}
	if s.Revenue.IsNegative() {
		return apperror.NewInvalidInput("revenue must not be negative")
	}
	return nil
}

// Settings is the singleton configuration row. It is pre-seeded and only
// ever replaced, never created or destroyed at runtime. It is loaded once
// per operation and passed explicitly rather than read through a global.
type Settings struct {
	ID                 id.ID       `db:"id" json:"id"`
	BufferDays         int         `db:"buffer_days" json:"bufferDays"`
	CostPerTablet      types.Money `db:"cost_per_tablet" json:"costPerTablet"`
	SalePricePerTablet types.Money `db:"sale_price_per_tablet" json:"salePricePerTablet"`
	UpdatedAt          time.Time   `db:"updated_at" json:"updatedAt"`
}

// Validate checks settings constraints before any storage call.
func (s *Settings) Validate() error {
	if s.BufferDays < 0 {
		return apperror.NewInvalidInput("buffer days must not be negative").WithDetail("bufferDays", s.BufferDays)
	}
	if s.CostPerTablet.IsNegative() {
		return apperror.NewInvalidInput("cost per tablet must not be negative")
	}
	if s.SalePricePerTablet.IsNegative() {
		return apperror.NewInvalidInput("sale price per tablet must not be negative")
	}
	return nil
}

// StockSummary is the derived per-variant stock figure:
// sum of receipt tablets minus consumption minus sales. It is recomputed
// from the event log on every query and may be negative; callers display
// max(0, stock) defensively, the engine does not clamp.
type StockSummary struct {
	Type         TabletType `db:"type" json:"type"`
	CurrentStock int        `db:"current_stock" json:"currentStock"`
}

// SaleTotals aggregates sales per variant, the raw material for profit.
type SaleTotals struct {
	Type         TabletType  `db:"type" json:"type"`
	TabletsSold  int         `db:"tablets_sold" json:"tabletsSold"`
	TotalRevenue types.Money `db:"total_revenue" json:"totalRevenue"`
}

// ProfitSummary is the derived per-variant profit view, evaluated against
// the current cost_per_tablet. Changing the cost setting shifts historical
// profit retroactively; that is a deliberate property of the model.
type ProfitSummary struct {
	Type         TabletType  `json:"type"`
	TabletsSold  int         `json:"tabletsSold"`
	TotalRevenue types.Money `json:"totalRevenue"`
	TotalCost    types.Money `json:"totalCost"`
	TotalProfit  types.Money `json:"totalProfit"`
}

// BuildProfitSummary evaluates per-variant profit from sale aggregates and
// the current per-tablet cost. Amounts are rounded to BHD scale (3 places).
func BuildProfitSummary(totals []SaleTotals, costPerTablet types.Money) []ProfitSummary {
	summaries := make([]ProfitSummary, 0, len(totals))
	for _, t := range totals {
		cost := types.RoundAmount(costPerTablet.Mul(types.NewMoney(float64(t.TabletsSold))))
		revenue := types.RoundAmount(t.TotalRevenue)
		summaries = append(summaries, ProfitSummary{
			Type:         t.Type,
			TabletsSold:  t.TabletsSold,
			TotalRevenue: revenue,
			TotalCost:    cost,
			TotalProfit:  revenue.Sub(cost),
		})
	}
	return summaries
}
