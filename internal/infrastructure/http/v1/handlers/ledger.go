package handlers

import (
	"github.com/gin-gonic/gin"

	"tabledger/internal/core/apperror"
	"tabledger/internal/core/id"
	"tabledger/internal/domain/ledger"
	"tabledger/internal/infrastructure/http/v1/dto"
)

// LedgerHandler exposes the transaction-recording endpoints. Handlers bind
// and forward only; all domain rules live in the ledger service.
type LedgerHandler struct {
	*BaseHandler
	service *ledger.Service
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(base *BaseHandler, service *ledger.Service) *LedgerHandler {
	return &LedgerHandler{BaseHandler: base, service: service}
}

// CreateOrder handles POST /orders.
func (h *LedgerHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	date, err := dto.ParseDate(req.Date)
	if err != nil {
		h.Error(c, err)
		return
	}

	order, err := h.service.RecordOrder(c.Request.Context(), ledger.OrderInput{
		Date:       date,
		Type:       ledger.TabletType(req.Type),
		Packets:    req.Packets,
		AmountPaid: req.AmountPaid,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, order)
}

// CreateReceipt handles POST /receipts.
func (h *LedgerHandler) CreateReceipt(c *gin.Context) {
	var req dto.CreateReceiptRequest
	if !h.BindJSON(c, &req) {
		return
	}

	date, err := dto.ParseDate(req.Date)
	if err != nil {
		h.Error(c, err)
		return
	}

	var orderID *id.ID
	if req.OrderID != nil {
		parsed, err := id.Parse(*req.OrderID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid order id").WithDetail("orderId", *req.OrderID))
			return
		}
		orderID = &parsed
	}

	receipt, err := h.service.RecordReceipt(c.Request.Context(), ledger.ReceiptInput{
		Date:    date,
		Type:    ledger.TabletType(req.Type),
		Packets: req.Packets,
		OrderID: orderID,
		Notes:   req.Notes,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, receipt)
}

// CreateConsumption handles POST /consumption.
func (h *LedgerHandler) CreateConsumption(c *gin.Context) {
	var req dto.CreateConsumptionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	date, err := dto.ParseDate(req.Date)
	if err != nil {
		h.Error(c, err)
		return
	}

	consumption, err := h.service.RecordConsumption(c.Request.Context(), ledger.ConsumptionInput{
		Date:     date,
		Type:     ledger.TabletType(req.Type),
		Quantity: req.Quantity,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, consumption)
}

// QuickConsume handles POST /consumption/quick: one tablet, dated today.
func (h *LedgerHandler) QuickConsume(c *gin.Context) {
	var req dto.QuickConsumeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	consumption, err := h.service.QuickConsume(c.Request.Context(), ledger.TabletType(req.Type))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, consumption)
}

// CreateSale handles POST /sales.
func (h *LedgerHandler) CreateSale(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	date, err := dto.ParseDate(req.Date)
	if err != nil {
		h.Error(c, err)
		return
	}

	sale, err := h.service.RecordSale(c.Request.Context(), ledger.SaleInput{
		Date:     date,
		Type:     ledger.TabletType(req.Type),
		Quantity: req.Quantity,
		Revenue:  req.Revenue,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, sale)
}

// PendingOrders handles GET /orders/pending.
func (h *LedgerHandler) PendingOrders(c *gin.Context) {
	orders, err := h.service.PendingOrders(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, orders)
}
