// internal/interfaces/http/handlers/inventory.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/inventory"
)

// InventoryHandler handles the admin stock ledger endpoints
type InventoryHandler struct {
	inventoryService *inventory.Service
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(inventoryService *inventory.Service) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// CreateProduct handles POST /admin/products. Initial stock is booked as a
// purchase movement.
func (h *InventoryHandler) CreateProduct(c *gin.Context) {
	var req inventory.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	p, err := h.inventoryService.CreateProduct(c.Request.Context(), &req, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "Product created successfully", p)
}

// SetStock handles PUT /admin/inventory/stock
func (h *InventoryHandler) SetStock(c *gin.Context) {
	var req inventory.SetStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	movement, err := h.inventoryService.SetStock(c.Request.Context(), req, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Stock updated successfully"
	if movement == nil {
		message = "Stock unchanged"
	}
	respondOK(c, http.StatusOK, message, movement)
}

// BulkSetStock handles PUT /admin/inventory/stock/bulk. Either every
// adjustment applies or none does.
func (h *InventoryHandler) BulkSetStock(c *gin.Context) {
	var req inventory.BulkSetStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	movements, err := h.inventoryService.BulkSetStock(c.Request.Context(), &req, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Stock updated successfully", movements)
}

// ListMovements handles GET /admin/inventory/movements
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	var req inventory.MovementListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	response, err := h.inventoryService.ListMovements(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Stock movements retrieved successfully", response)
}

// Reconcile handles GET /admin/inventory/reconcile?product_id=&variation_id=
func (h *InventoryHandler) Reconcile(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Query("product_id"), 10, 32)
	if err != nil || productID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "product_id is required",
		})
		return
	}
	variationID, ok := parseOptionalID(c, "variation_id")
	if !ok {
		return
	}

	result, err := h.inventoryService.Reconcile(c.Request.Context(), inventory.Target{
		ProductID:   uint(productID),
		VariationID: variationID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Reconciliation completed", result)
}

// ListAlerts handles GET /admin/inventory/alerts?open=true
func (h *InventoryHandler) ListAlerts(c *gin.Context) {
	openOnly := true
	if raw := c.Query("open"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid open filter",
			})
			return
		}
		openOnly = v
	}

	alerts, err := h.inventoryService.ListAlerts(c.Request.Context(), openOnly)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Stock alerts retrieved successfully", alerts)
}

// ResolveAlert handles POST /admin/inventory/alerts/:id/resolve
func (h *InventoryHandler) ResolveAlert(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	alert, err := h.inventoryService.ResolveAlert(c.Request.Context(), id, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Stock alert resolved", alert)
}
