package handlers

import (
	"github.com/gin-gonic/gin"

	"tabledger/internal/core/types"
	"tabledger/internal/domain/ledger"
	"tabledger/internal/infrastructure/http/v1/dto"
)

// DashboardHandler exposes the derived views: stock, profit, dashboard,
// history and settings.
type DashboardHandler struct {
	*BaseHandler
	service *ledger.Service
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(base *BaseHandler, service *ledger.Service) *DashboardHandler {
	return &DashboardHandler{BaseHandler: base, service: service}
}

// Stock handles GET /stock.
func (h *DashboardHandler) Stock(c *gin.Context) {
	stock, err := h.service.CurrentStock(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.StockResponse{
		Stock:      stock,
		TotalStock: ledger.TotalStock(stock),
	})
}

// Profit handles GET /profit.
func (h *DashboardHandler) Profit(c *gin.Context) {
	byType, err := h.service.ProfitByType(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	allTime := types.Zero()
	for _, summary := range byType {
		allTime = allTime.Add(summary.TotalProfit)
	}

	h.OK(c, dto.ProfitResponse{
		ByType:        byType,
		AllTimeProfit: allTime,
	})
}

// Dashboard handles GET /dashboard.
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.service.GetDashboard(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dashboard)
}

// History handles GET /history.
func (h *DashboardHandler) History(c *gin.Context) {
	history, err := h.service.GetHistory(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, history)
}

// GetSettings handles GET /settings.
func (h *DashboardHandler) GetSettings(c *gin.Context) {
	settings, err := h.service.Settings(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, settings)
}

// UpdateSettings handles PUT /settings.
func (h *DashboardHandler) UpdateSettings(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	settings, err := h.service.UpdateSettings(
		c.Request.Context(),
		req.BufferDays,
		req.CostPerTablet,
		req.SalePricePerTablet,
	)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, settings)
}
