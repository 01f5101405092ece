package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mahyudindev/e-commerce-sowryzel/services"
)

// PaymentReconciler is the slice of the order service the webhook layer
// needs.
type PaymentReconciler interface {
	ReconcilePayment(ctx context.Context, n *services.Notification, raw []byte) *services.ServiceError
}

// WebhookController receives payment-gateway callbacks: the asynchronous
// server-to-server notification, authenticated by payload signature, and
// the synchronous browser return, which only carries query parameters.
type WebhookController struct {
	orderService PaymentReconciler
	gateway      services.PaymentGateway
	frontendURL  string
	logger       *zap.Logger
}

func NewWebhookController(orderService PaymentReconciler, gateway services.PaymentGateway, frontendURL string, logger *zap.Logger) *WebhookController {
	return &WebhookController{
		orderService: orderService,
		gateway:      gateway,
		frontendURL:  frontendURL,
		logger:       logger,
	}
}

// HandleNotification processes the asynchronous payment notification. A
// signature mismatch is an authentication failure and must not touch any
// order; an unknown order id is benign and reported as not found.
func (wc *WebhookController) HandleNotification(ctx *gin.Context) {
	raw, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Failed to read request body"})
		return
	}

	notification, err := services.ParseNotification(raw)
	if err != nil {
		if errors.Is(err, services.ErrIncompleteNotification) {
			ctx.JSON(http.StatusBadRequest, gin.H{"message": "Incomplete notification payload"})
			return
		}
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Malformed notification payload"})
		return
	}

	if !wc.gateway.VerifySignature(notification) {
		wc.logger.Warn("webhook signature mismatch",
			zap.String("order_id", notification.OrderID))
		ctx.JSON(http.StatusForbidden, gin.H{"message": "Invalid signature"})
		return
	}

	if svcErr := wc.orderService.ReconcilePayment(ctx.Request.Context(), notification, raw); svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"message": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "OK"})
}

// HandleFinish is the browser-return landing. Its parameters arrive on an
// unauthenticated query string, so it carries less authority than the
// signed webhook: it may only move an order from unpaid to payment
// pending. Paid and terminal states wait for the webhook.
func (wc *WebhookController) HandleFinish(ctx *gin.Context) {
	orderID := ctx.Query("order_id")
	statusCode := ctx.Query("status_code")
	transactionStatus := ctx.Query("transaction_status")

	flash := "pending"
	switch transactionStatus {
	case "capture", "settlement":
		flash = "success"
	case "deny", "cancel", "expire", "failure":
		flash = "failed"
	}

	if orderID != "" && transactionStatus == "pending" {
		notification := &services.Notification{
			OrderID:           orderID,
			TransactionStatus: transactionStatus,
			StatusCode:        statusCode,
		}
		if svcErr := wc.orderService.ReconcilePayment(ctx.Request.Context(), notification, nil); svcErr != nil {
			wc.logger.Warn("finish redirect reconciliation skipped",
				zap.String("order_id", orderID),
				zap.String("reason", svcErr.Message))
		}
	}

	params := url.Values{}
	params.Set("payment", flash)
	if orderID != "" {
		params.Set("order_id", orderID)
	}
	ctx.Redirect(http.StatusFound, wc.frontendURL+"/orders?"+params.Encode())
}
