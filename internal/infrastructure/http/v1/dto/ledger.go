// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"time"

	"tabledger/internal/core/apperror"
	"tabledger/internal/core/types"
	"tabledger/internal/domain/ledger"
)

// DateLayout is the wire format for calendar dates. The ledger has no
// time-of-day semantics.
const DateLayout = "2006-01-02"

// ParseDate parses a calendar date from the wire format.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, apperror.NewValidation("invalid date, expected YYYY-MM-DD").
			WithDetail("value", s)
	}
	return d, nil
}

// --- Requests ---

// CreateOrderRequest records a paid order.
type CreateOrderRequest struct {
	Date       string      `json:"date" binding:"required"`
	Type       string      `json:"type" binding:"required,oneof=silver purple"`
	Packets    int         `json:"packets" binding:"required,min=1"`
	AmountPaid types.Money `json:"amountPaid"`
}

// CreateReceiptRequest records a received shipment. OrderID is an optional
// reference to a pending order of the same type.
type CreateReceiptRequest struct {
	Date    string  `json:"date" binding:"required"`
	Type    string  `json:"type" binding:"required,oneof=silver purple"`
	Packets int     `json:"packets" binding:"required,min=1"`
	OrderID *string `json:"orderId" binding:"omitempty,uuid"`
	Notes   string  `json:"notes"`
}

// CreateConsumptionRequest records personal use.
type CreateConsumptionRequest struct {
	Date     string `json:"date" binding:"required"`
	Type     string `json:"type" binding:"required,oneof=silver purple"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

// QuickConsumeRequest records a one-tablet consumption dated today.
type QuickConsumeRequest struct {
	Type string `json:"type" binding:"required,oneof=silver purple"`
}

// CreateSaleRequest records a sale.
type CreateSaleRequest struct {
	Date     string      `json:"date" binding:"required"`
	Type     string      `json:"type" binding:"required,oneof=silver purple"`
	Quantity int         `json:"quantity" binding:"required,min=1"`
	Revenue  types.Money `json:"revenue"`
}

// UpdateSettingsRequest replaces the settings singleton.
type UpdateSettingsRequest struct {
	BufferDays         int         `json:"bufferDays" binding:"min=0"`
	CostPerTablet      types.Money `json:"costPerTablet"`
	SalePricePerTablet types.Money `json:"salePricePerTablet"`
}

// --- Responses ---

// StockResponse is the per-variant stock view.
type StockResponse struct {
	Stock      map[ledger.TabletType]int `json:"stock"`
	TotalStock int                       `json:"totalStock"`
}

// ProfitResponse is the profit view: per-variant breakdown plus the
// combined all-time figure.
type ProfitResponse struct {
	ByType        []ledger.ProfitSummary `json:"byType"`
	AllTimeProfit types.Money            `json:"allTimeProfit"`
}

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
