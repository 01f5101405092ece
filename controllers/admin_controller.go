package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mahyudindev/e-commerce-sowryzel/models"
	"github.com/mahyudindev/e-commerce-sowryzel/repository"
	"github.com/mahyudindev/e-commerce-sowryzel/services"
)

type AdminOrderController struct {
	orderService *services.OrderService
}

func NewAdminOrderController(orderService *services.OrderService) *AdminOrderController {
	return &AdminOrderController{orderService: orderService}
}

type updateStatusRequest struct {
	Status         models.OrderStatus `json:"status_transaksi" binding:"required"`
	TrackingNumber string             `json:"nomor_resi"`
}

// ListOrders is the back-office order listing with free-text search over
// invoice and customer name/email plus independent status-axis filters.
func (ac *AdminOrderController) ListOrders(ctx *gin.Context) {
	page, limit := parsePaginationParams(ctx)
	params := repository.SearchParams{
		Search:        ctx.Query("search"),
		OrderStatus:   ctx.Query("status_transaksi"),
		PaymentStatus: ctx.Query("status_pembayaran"),
		Page:          page,
		Limit:         limit,
	}

	result, svcErr := ac.orderService.AdminListOrders(ctx.Request.Context(), params)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"message": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// GetOrder returns one order plus the statuses an admin may move it into.
func (ac *AdminOrderController) GetOrder(ctx *gin.Context) {
	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid order ID"})
		return
	}

	order, svcErr := ac.orderService.AdminGetOrder(ctx.Request.Context(), orderID)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"message": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"order":         order,
		"next_statuses": models.AllowedTransitions[order.Status],
	})
}

// UpdateStatus moves an order along the fulfilment state machine.
func (ac *AdminOrderController) UpdateStatus(ctx *gin.Context) {
	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid order ID"})
		return
	}

	var req updateStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request", "errors": err.Error()})
		return
	}

	order, svcErr := ac.orderService.AdminTransitionStatus(ctx.Request.Context(), orderID, req.Status, req.TrackingNumber)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"message": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, order)
}
