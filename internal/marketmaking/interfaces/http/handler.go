package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/pkg/logging"

	"github.com/wyfcoding/optionsmm/internal/marketmaking/application"

	invapp "github.com/wyfcoding/optionsmm/internal/inventory/application"
	inventory "github.com/wyfcoding/optionsmm/internal/inventory/domain"
)

// HTTP 处理器
// 负责处理做市台相关的 HTTP 请求
type DeskHandler struct {
	desks     *application.DeskService
	inventory *invapp.InventoryService
}

// 创建 HTTP 处理器实例
func NewDeskHandler(desks *application.DeskService, inventorySvc *invapp.InventoryService) *DeskHandler {
	return &DeskHandler{desks: desks, inventory: inventorySvc}
}

// 注册路由
// 将处理器方法绑定到 Gin 路由引擎
func (h *DeskHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1/desks")
	{
		api.POST("/:underlying/fills", h.RecordFill)
		api.POST("/:underlying/quotes", h.GenerateQuote)
		api.POST("/:underlying/greeks", h.UpdateGreeks)
		api.POST("/:underlying/marks", h.MarkToMarket)
		api.POST("/:underlying/hedge-fills", h.RecordHedgeFill)
		api.POST("/:underlying/attribution", h.Attribution)
		api.POST("/:underlying/halt", h.Halt)
		api.POST("/:underlying/resume", h.Resume)
		api.GET("/:underlying/status", h.Status)
		api.GET("/:underlying/positions", h.ListPositions)
		api.GET("/:underlying/positions/:symbol", h.GetPosition)
		api.POST("/reset-daily", h.ResetDaily)
	}
}

// RecordFill 处理成交回报
func (h *DeskHandler) RecordFill(c *gin.Context) {
	var cmd application.TradeFillCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd.Underlying = c.Param("underlying")
	if cmd.TimestampMs == 0 {
		cmd.TimestampMs = time.Now().UnixMilli()
	}

	result, err := h.desks.OnTradeFill(c.Request.Context(), cmd)
	if err != nil {
		var limitErr *inventory.ErrInventoryLimitExceeded
		if errors.As(err, &limitErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "limit_type": limitErr.LimitType})
			return
		}
		logging.Error(c.Request.Context(), "Failed to record fill", "underlying", cmd.Underlying, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GenerateQuote 生成双边报价
func (h *DeskHandler) GenerateQuote(c *gin.Context) {
	var req application.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.Underlying = c.Param("underlying")
	if req.TimestampMs == 0 {
		req.TimestampMs = time.Now().UnixMilli()
	}

	quote, err := h.desks.GenerateQuote(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, application.ErrTradingHalted) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, quote)
}

// UpdateGreeks 更新希腊值快照
func (h *DeskHandler) UpdateGreeks(c *gin.Context) {
	var cmd application.GreeksUpdateCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd.Underlying = c.Param("underlying")
	if cmd.TimestampMs == 0 {
		cmd.TimestampMs = time.Now().UnixMilli()
	}

	breaches := h.desks.OnGreeksUpdate(c.Request.Context(), cmd)
	c.JSON(http.StatusOK, gin.H{"breaches": breaches})
}

// MarkToMarket 按市值重估
func (h *DeskHandler) MarkToMarket(c *gin.Context) {
	var cmd application.MarkToMarketCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd.Underlying = c.Param("underlying")
	if cmd.TimestampMs == 0 {
		cmd.TimestampMs = time.Now().UnixMilli()
	}

	h.desks.OnMarkToMarket(c.Request.Context(), cmd)
	c.JSON(http.StatusOK, h.desks.Status(cmd.Underlying, cmd.TimestampMs))
}

// RecordHedgeFill 处理对冲成交回报
func (h *DeskHandler) RecordHedgeFill(c *gin.Context) {
	var cmd application.HedgeFillCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd.Underlying = c.Param("underlying")
	if cmd.TimestampMs == 0 {
		cmd.TimestampMs = time.Now().UnixMilli()
	}

	h.desks.OnHedgeFill(c.Request.Context(), cmd)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Attribution 盈亏归因
func (h *DeskHandler) Attribution(c *gin.Context) {
	var req application.AttributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.Underlying = c.Param("underlying")

	c.JSON(http.StatusOK, h.desks.Attribution(c.Request.Context(), req))
}

// HaltRequest 熔断请求
type HaltRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Halt 人工熔断
func (h *DeskHandler) Halt(c *gin.Context) {
	var req HaltRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.desks.Halt(c.Request.Context(), c.Param("underlying"), req.Reason)
	c.JSON(http.StatusOK, h.desks.Status(c.Param("underlying"), time.Now().UnixMilli()))
}

// Resume 人工恢复
func (h *DeskHandler) Resume(c *gin.Context) {
	h.desks.Resume(c.Request.Context(), c.Param("underlying"))
	c.JSON(http.StatusOK, h.desks.Status(c.Param("underlying"), time.Now().UnixMilli()))
}

// Status 做市台状态
func (h *DeskHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.desks.Status(c.Param("underlying"), time.Now().UnixMilli()))
}

// ListPositions 查询标的下全部仓位快照
func (h *DeskHandler) ListPositions(c *gin.Context) {
	if h.inventory == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "position persistence disabled"})
		return
	}

	snapshots, err := h.inventory.ListPositions(c.Request.Context(), c.Param("underlying"))
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to list positions", "underlying", c.Param("underlying"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"positions": snapshots})
}

// GetPosition 查询单个仓位快照
func (h *DeskHandler) GetPosition(c *gin.Context) {
	if h.inventory == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "position persistence disabled"})
		return
	}

	snapshot, err := h.inventory.GetPosition(c.Request.Context(), c.Param("underlying"), c.Param("symbol"))
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to get position", "symbol", c.Param("symbol"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if snapshot == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "position not found"})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// ResetDaily 日初重置全部做市台
func (h *DeskHandler) ResetDaily(c *gin.Context) {
	h.desks.ResetDailyAll(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
