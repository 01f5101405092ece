package services

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mahyudindev/e-commerce-sowryzel/models"
	"github.com/mahyudindev/e-commerce-sowryzel/repository"
)

// retryMarker tags gateway session ids of retried checkouts. Attempt rows
// are the source of truth for resolving them; suffix stripping is only a
// fallback for attempts created before the table existed.
const retryMarker = "-RETRY-"

type OrderItemRequest struct {
	ProductID  uuid.UUID       `json:"produk_id" binding:"required"`
	Quantity   int             `json:"jumlah" binding:"required,min=1"`
	UnitPrice  decimal.Decimal `json:"harga_satuan"`
	Name       string          `json:"nama_produk"`
	CartItemID *uuid.UUID      `json:"keranjang_id"`
}

type CreateOrderRequest struct {
	Items                []OrderItemRequest `json:"items" binding:"required,dive"`
	GoodsTotal           decimal.Decimal    `json:"totalBelanja" binding:"required"`
	ShippingCost         decimal.Decimal    `json:"shippingCost"`
	GrandTotal           decimal.Decimal    `json:"grandTotal" binding:"required"`
	SelectedCourier      string             `json:"selectedCourier" binding:"required"`
	SelectedService      string             `json:"selectedService" binding:"required"`
	CustomerName         string             `json:"customerName" binding:"required"`
	CustomerPhone        string             `json:"customerPhone" binding:"required"`
	CustomerAddress      string             `json:"customerAddress" binding:"required"`
	SelectedProvinceID   string             `json:"selectedProvinceId" binding:"required"`
	SelectedProvinceName string             `json:"selectedProvinceName" binding:"required"`
	SelectedCityID       string             `json:"selectedCityId" binding:"required"`
	SelectedCityName     string             `json:"selectedCityName" binding:"required"`
	SelectedDistrict     string             `json:"selectedDistrict"`
	CustomerPostalCode   string             `json:"customerPostalCode" binding:"required"`
	CustomerNotes        string             `json:"customerNotes"`
}

type CreateOrderResponse struct {
	Order     *models.Order `json:"order"`
	SnapToken string        `json:"snap_token"`
}

type OrderListResponse struct {
	Orders []models.Order `json:"orders"`
	Meta   MetaData       `json:"meta"`
}

type MetaData struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasMore    bool  `json:"has_more"`
}

type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// OrderEventPublisher pushes lifecycle events to the message bus. Calls are
// best-effort: a publish failure is logged, never surfaced to the request.
type OrderEventPublisher interface {
	Publish(ctx context.Context, event models.OrderEvent) error
}

// OrderService is the single authority for every state change an order can
// undergo: creation, payment reconciliation, admin fulfilment transitions,
// customer receipt confirmation, payment retry, and stock reversal.
type OrderService struct {
	db        *gorm.DB
	orders    repository.OrderRepository
	products  repository.ProductRepository
	carts     repository.CartRepository
	customers repository.CustomerRepository
	attempts  repository.AttemptRepository
	gateway   PaymentGateway
	producer  OrderEventPublisher
	finishURL string
	logger    *zap.Logger
}

func NewOrderService(
	db *gorm.DB,
	orders repository.OrderRepository,
	products repository.ProductRepository,
	carts repository.CartRepository,
	customers repository.CustomerRepository,
	attempts repository.AttemptRepository,
	gateway PaymentGateway,
	producer OrderEventPublisher,
	finishURL string,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		db:        db,
		orders:    orders,
		products:  products,
		carts:     carts,
		customers: customers,
		attempts:  attempts,
		gateway:   gateway,
		producer:  producer,
		finishURL: finishURL,
		logger:    logger,
	}
}

// CreateOrder places an order from a cart selection. The order row, its
// lines, the stock decrements, the first payment attempt, and the cart
// cleanup all commit or roll back as one transaction; a gateway failure
// mid-way leaves no trace.
func (s *OrderService) CreateOrder(ctx context.Context, userID uuid.UUID, req *CreateOrderRequest) (*CreateOrderResponse, *ServiceError) {
	if len(req.Items) == 0 {
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "At least one item is required"}
	}

	customer, err := s.customers.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Customer profile not found"}
		}
		s.logger.Error("customer lookup failed", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to create order"}
	}

	address := models.ShippingAddress{
		RecipientName:  req.CustomerName,
		Phone:          req.CustomerPhone,
		AddressLine:    req.CustomerAddress,
		ProvinceID:     req.SelectedProvinceID,
		ProvinceName:   req.SelectedProvinceName,
		CityID:         req.SelectedCityID,
		CityName:       req.SelectedCityName,
		District:       req.SelectedDistrict,
		PostalCode:     req.CustomerPostalCode,
		Courier:        req.SelectedCourier,
		CourierService: req.SelectedService,
	}
	addressJSON, err := json.Marshal(address)
	if err != nil {
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to create order"}
	}

	invoiceID := generateInvoiceID()
	order := &models.Order{
		InvoiceID:       invoiceID,
		CustomerID:      customer.ID,
		ShippingFee:     req.ShippingCost,
		Status:          models.OrderPending,
		PaymentStatus:   models.PaymentUnpaid,
		ShippingAddress: datatypes.JSON(addressJSON),
		CustomerNote:    req.CustomerNotes,
	}

	var snapToken string
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		goodsTotal := decimal.Zero
		totalWeight := 0
		cartIDs := make([]uuid.UUID, 0, len(req.Items))
		lines := make([]models.OrderLine, 0, len(req.Items))

		for _, item := range req.Items {
			product, err := s.products.LockByID(tx, item.ProductID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return &ServiceError{
						StatusCode: http.StatusUnprocessableEntity,
						Message:    fmt.Sprintf("Product %s not found", item.ProductID),
					}
				}
				return err
			}
			if !product.Active {
				return &ServiceError{
					StatusCode: http.StatusUnprocessableEntity,
					Message:    fmt.Sprintf("Product %s is no longer available", product.Name),
				}
			}
			if product.Stock < item.Quantity {
				return &ServiceError{
					StatusCode: http.StatusUnprocessableEntity,
					Message:    fmt.Sprintf("Insufficient stock for product %s", product.Name),
				}
			}
			if err := s.products.DecrementStock(tx, product.ID, item.Quantity); err != nil {
				if errors.Is(err, repository.ErrInsufficientStock) {
					return &ServiceError{
						StatusCode: http.StatusUnprocessableEntity,
						Message:    fmt.Sprintf("Insufficient stock for product %s", product.Name),
					}
				}
				return err
			}

			subtotal := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			goodsTotal = goodsTotal.Add(subtotal)
			if product.WeightGrams > 0 {
				totalWeight += product.WeightGrams * item.Quantity
			} else {
				s.logger.Warn("product has no weight, skipping in shipment total",
					zap.String("product_id", product.ID.String()))
			}
			lines = append(lines, models.OrderLine{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    item.Quantity,
				UnitPrice:   product.Price,
				Subtotal:    subtotal,
			})
			if item.CartItemID != nil {
				cartIDs = append(cartIDs, *item.CartItemID)
			}
		}

		grandTotal := goodsTotal.Add(req.ShippingCost)
		if !grandTotal.Equal(req.GrandTotal) {
			return &ServiceError{
				StatusCode: http.StatusBadRequest,
				Message:    "Order total does not match current item prices",
			}
		}

		order.GoodsTotal = goodsTotal
		order.GrandTotal = grandTotal
		order.TotalWeight = totalWeight
		order.Lines = lines
		if err := s.orders.Create(tx, order); err != nil {
			return err
		}

		sessionReq := BuildSessionRequest(invoiceID, order, order.Lines, customer, address, s.finishURL)
		token, _, err := s.gateway.CreateSession(sessionReq)
		if err != nil {
			s.logger.Error("payment session creation failed",
				zap.String("invoice_id", invoiceID), zap.Error(err))
			return &ServiceError{
				StatusCode: http.StatusBadGateway,
				Message:    "Payment service is unavailable, please try again",
			}
		}
		snapToken = token

		order.SnapToken = token
		if err := s.orders.SaveTx(tx, order); err != nil {
			return err
		}
		if err := s.attempts.Create(tx, &models.PaymentAttempt{
			OrderID:        order.ID,
			GatewayOrderID: invoiceID,
			SnapToken:      token,
		}); err != nil {
			return err
		}

		return s.carts.DeleteForUser(tx, userID, cartIDs)
	})
	if txErr != nil {
		var svcErr *ServiceError
		if errors.As(txErr, &svcErr) {
			return nil, svcErr
		}
		s.logger.Error("order creation failed", zap.String("invoice_id", invoiceID), zap.Error(txErr))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to create order"}
	}

	s.publish(ctx, models.EventOrderCreated, order)
	s.logger.Info("order created",
		zap.String("invoice_id", order.InvoiceID),
		zap.String("customer_id", customer.ID.String()),
		zap.String("grand_total", order.GrandTotal.String()))

	return &CreateOrderResponse{Order: order, SnapToken: snapToken}, nil
}

// ReconcilePayment applies a verified gateway notification to the order's
// two status axes. Both the asynchronous webhook and the browser-return
// handler funnel through here; notifications arriving out of order are
// ignored once the payment has progressed past the status they imply.
func (s *OrderService) ReconcilePayment(ctx context.Context, n *Notification, raw []byte) *ServiceError {
	order, svcErr := s.resolveOrder(ctx, n.OrderID)
	if svcErr != nil {
		return svcErr
	}

	nextPayment := order.PaymentStatus
	nextStatus := order.Status
	revert := false

	switch n.TransactionStatus {
	case "capture":
		if n.FraudStatus == "challenge" {
			nextPayment = models.PaymentUnpaid
		} else {
			nextPayment = models.PaymentPaid
		}
	case "settlement":
		nextPayment = models.PaymentPaid
	case "pending":
		if order.PaymentStatus == models.PaymentUnpaid {
			nextPayment = models.PaymentPending
		}
	case "deny":
		nextPayment = models.PaymentDenied
		nextStatus = models.OrderCancelled
		revert = true
	case "failure":
		nextPayment = models.PaymentFailed
		nextStatus = models.OrderCancelled
		revert = true
	case "cancel":
		nextPayment = models.PaymentCancelled
		nextStatus = models.OrderCancelled
		revert = true
	case "expire":
		nextPayment = models.PaymentExpired
		nextStatus = models.OrderCancelled
		revert = true
	default:
		s.logger.Warn("unhandled gateway transaction status",
			zap.String("invoice_id", order.InvoiceID),
			zap.String("transaction_status", n.TransactionStatus))
		return nil
	}

	if order.PaymentStatus.Regresses(nextPayment) {
		s.logger.Info("stale gateway notification ignored",
			zap.String("invoice_id", order.InvoiceID),
			zap.String("current", string(order.PaymentStatus)),
			zap.String("implied", string(nextPayment)))
		return nil
	}

	order.PaymentStatus = nextPayment
	order.Status = nextStatus
	if n.PaymentType != "" {
		order.PaymentMethod = n.PaymentType
	}
	if n.TransactionID != "" && order.MidtransTransactionID == nil {
		txID := n.TransactionID
		order.MidtransTransactionID = &txID
	}
	if len(raw) > 0 {
		order.GatewayPayload = datatypes.JSON(raw)
	}

	if err := s.orders.Save(ctx, order); err != nil {
		s.logger.Error("payment reconciliation persist failed",
			zap.String("invoice_id", order.InvoiceID), zap.Error(err))
		return &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to update order"}
	}

	if revert {
		s.revertStock(ctx, order)
	}

	s.publish(ctx, models.EventPaymentReconciled, order)
	s.logger.Info("payment reconciled",
		zap.String("invoice_id", order.InvoiceID),
		zap.String("transaction_status", n.TransactionStatus),
		zap.String("payment_status", string(order.PaymentStatus)),
		zap.String("order_status", string(order.Status)))
	return nil
}

// resolveOrder maps a gateway order id back to the order. Attempt rows are
// authoritative; the suffix-strip fallback covers sessions created before
// attempts were recorded.
func (s *OrderService) resolveOrder(ctx context.Context, gatewayOrderID string) (*models.Order, *ServiceError) {
	attempt, err := s.attempts.FindByGatewayOrderID(ctx, gatewayOrderID)
	if err == nil {
		order, err := s.orders.FindByID(ctx, attempt.OrderID)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Error("order lookup failed", zap.String("gateway_order_id", gatewayOrderID), zap.Error(err))
			return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to resolve order"}
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.logger.Error("payment attempt lookup failed", zap.String("gateway_order_id", gatewayOrderID), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to resolve order"}
	}

	invoiceID := gatewayOrderID
	if idx := strings.Index(invoiceID, retryMarker); idx >= 0 {
		invoiceID = invoiceID[:idx]
	}
	order, err := s.orders.FindByInvoice(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Order not found"}
		}
		s.logger.Error("order lookup failed", zap.String("invoice_id", invoiceID), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to resolve order"}
	}
	return order, nil
}

// AdminTransitionStatus moves an order along the fulfilment state machine.
// Re-requesting the current status is a no-op, except that it may update
// the tracking number of a shipped order.
func (s *OrderService) AdminTransitionStatus(ctx context.Context, orderID uuid.UUID, requested models.OrderStatus, trackingNumber string) (*models.Order, *ServiceError) {
	if !models.ValidOrderStatus(requested) {
		return nil, &ServiceError{
			StatusCode: http.StatusBadRequest,
			Message:    fmt.Sprintf("Unknown order status %q", requested),
		}
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Order not found"}
		}
		s.logger.Error("order lookup failed", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to fetch order"}
	}

	if requested == order.Status {
		if requested == models.OrderShipped && trackingNumber != "" {
			order.TrackingNumber = &trackingNumber
			if err := s.orders.Save(ctx, order); err != nil {
				s.logger.Error("tracking number update failed", zap.String("invoice_id", order.InvoiceID), zap.Error(err))
				return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to update order"}
			}
		}
		return order, nil
	}

	if !models.CanTransition(order.Status, requested) {
		return nil, &ServiceError{
			StatusCode: http.StatusUnprocessableEntity,
			Message:    fmt.Sprintf("Invalid status transition from %s to %s", order.Status, requested),
		}
	}

	wasShipped := order.Status == models.OrderShipped
	if requested == models.OrderShipped {
		if strings.TrimSpace(trackingNumber) == "" {
			return nil, &ServiceError{
				StatusCode: http.StatusUnprocessableEntity,
				Message:    "Tracking number is required when marking an order as shipped",
			}
		}
		order.TrackingNumber = &trackingNumber
	} else if wasShipped {
		order.TrackingNumber = nil
	}

	order.Status = requested
	if err := s.orders.Save(ctx, order); err != nil {
		s.logger.Error("status transition persist failed", zap.String("invoice_id", order.InvoiceID), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to update order"}
	}

	if requested == models.OrderCancelled {
		s.revertStock(ctx, order)
	}

	s.publish(ctx, models.EventStatusChanged, order)
	s.logger.Info("order status changed",
		zap.String("invoice_id", order.InvoiceID),
		zap.String("status", string(order.Status)))
	return order, nil
}

// CustomerMarkReceived completes a shipped order on the customer's behalf.
func (s *OrderService) CustomerMarkReceived(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, *ServiceError) {
	customer, err := s.customers.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Customer profile not found"}
		}
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to fetch order"}
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Order not found"}
		}
		s.logger.Error("order lookup failed", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to fetch order"}
	}

	if order.CustomerID != customer.ID {
		return nil, &ServiceError{StatusCode: http.StatusForbidden, Message: "Order does not belong to you"}
	}
	if order.Status != models.OrderShipped {
		return nil, &ServiceError{
			StatusCode: http.StatusUnprocessableEntity,
			Message:    "Only shipped orders can be confirmed as received",
		}
	}

	order.Status = models.OrderCompleted
	order.TrackingNumber = nil
	if err := s.orders.Save(ctx, order); err != nil {
		s.logger.Error("receipt confirmation persist failed", zap.String("invoice_id", order.InvoiceID), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to update order"}
	}

	s.publish(ctx, models.EventStatusChanged, order)
	return order, nil
}

// RetryPayment opens a fresh checkout session for an order whose payment
// never completed. Each retry is a new attempt row whose gateway order id
// carries the retry marker; the order itself keeps its invoice reference.
func (s *OrderService) RetryPayment(ctx context.Context, userID, orderID uuid.UUID) (*CreateOrderResponse, *ServiceError) {
	customer, err := s.customers.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Customer profile not found"}
		}
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to fetch order"}
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Order not found"}
		}
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to fetch order"}
	}

	if order.CustomerID != customer.ID {
		return nil, &ServiceError{StatusCode: http.StatusForbidden, Message: "Order does not belong to you"}
	}
	if order.Status != models.OrderPending ||
		(order.PaymentStatus != models.PaymentUnpaid && order.PaymentStatus != models.PaymentPending) {
		return nil, &ServiceError{
			StatusCode: http.StatusUnprocessableEntity,
			Message:    "Payment can only be retried while the order is awaiting payment",
		}
	}

	var address models.ShippingAddress
	if err := json.Unmarshal(order.ShippingAddress, &address); err != nil {
		s.logger.Error("shipping address snapshot corrupt", zap.String("invoice_id", order.InvoiceID), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to retry payment"}
	}

	gatewayOrderID := fmt.Sprintf("%s%s%d", order.InvoiceID, retryMarker, time.Now().Unix())
	sessionReq := BuildSessionRequest(gatewayOrderID, order, order.Lines, customer, address, s.finishURL)
	token, _, err := s.gateway.CreateSession(sessionReq)
	if err != nil {
		s.logger.Error("payment session creation failed",
			zap.String("gateway_order_id", gatewayOrderID), zap.Error(err))
		return nil, &ServiceError{
			StatusCode: http.StatusBadGateway,
			Message:    "Payment service is unavailable, please try again",
		}
	}

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.attempts.Create(tx, &models.PaymentAttempt{
			OrderID:        order.ID,
			GatewayOrderID: gatewayOrderID,
			SnapToken:      token,
		}); err != nil {
			return err
		}
		order.SnapToken = token
		return s.orders.SaveTx(tx, order)
	})
	if txErr != nil {
		s.logger.Error("payment retry persist failed", zap.String("invoice_id", order.InvoiceID), zap.Error(txErr))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to retry payment"}
	}

	return &CreateOrderResponse{Order: order, SnapToken: token}, nil
}

var errStockAlreadyReverted = errors.New("stock already reverted")

// revertStock returns every line's quantity to product stock, exactly once
// per order. It runs in its own transaction: the reversal is an explicit
// compensating action, not part of any caller's rollback scope. The latch
// UPDATE on stock_reverted_at runs before the increments; a concurrent
// reversal that already took the latch matches zero rows and rolls this
// transaction back with the increments uncommitted.
func (s *OrderService) revertStock(ctx context.Context, order *models.Order) {
	if order.StockRevertedAt != nil {
		return
	}
	if order.Status != models.OrderCancelled {
		return
	}

	now := time.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND stock_reverted_at IS NULL", order.ID).
			Update("stock_reverted_at", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errStockAlreadyReverted
		}
		for _, line := range order.Lines {
			if err := s.products.IncrementStock(tx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errStockAlreadyReverted) {
			s.logger.Info("stock reversal skipped, already reverted",
				zap.String("invoice_id", order.InvoiceID))
			return
		}
		s.logger.Error("stock reversal failed", zap.String("invoice_id", order.InvoiceID), zap.Error(err))
		return
	}

	order.StockRevertedAt = &now
	s.logger.Info("stock reverted", zap.String("invoice_id", order.InvoiceID))
}

// GetUserOrders lists the caller's orders newest-first.
func (s *OrderService) GetUserOrders(ctx context.Context, userID uuid.UUID, page, limit int) (*OrderListResponse, *ServiceError) {
	customer, err := s.customers.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Customer profile not found"}
		}
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to fetch orders"}
	}

	orders, total, err := s.orders.FindByCustomer(ctx, customer.ID, page, limit)
	if err != nil {
		s.logger.Error("order listing failed", zap.String("customer_id", customer.ID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to fetch orders"}
	}

	return &OrderListResponse{
		Orders: orders,
		Meta:   buildMeta(page, limit, total),
	}, nil
}

// GetOrderByID returns one order, enforcing ownership.
func (s *OrderService) GetOrderByID(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, *ServiceError) {
	customer, err := s.customers.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Customer profile not found"}
		}
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to fetch order"}
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Order not found"}
		}
		s.logger.Error("order lookup failed", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to fetch order"}
	}
	if order.CustomerID != customer.ID {
		return nil, &ServiceError{StatusCode: http.StatusForbidden, Message: "Order does not belong to you"}
	}
	return order, nil
}

// AdminListOrders is the back-office listing with search and filters.
func (s *OrderService) AdminListOrders(ctx context.Context, p repository.SearchParams) (*OrderListResponse, *ServiceError) {
	orders, total, err := s.orders.Search(ctx, p)
	if err != nil {
		s.logger.Error("admin order search failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to fetch orders"}
	}
	return &OrderListResponse{
		Orders: orders,
		Meta:   buildMeta(p.Page, p.Limit, total),
	}, nil
}

// AdminGetOrder returns one order without an ownership check.
func (s *OrderService) AdminGetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, *ServiceError) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Order not found"}
		}
		s.logger.Error("order lookup failed", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to fetch order"}
	}
	return order, nil
}

func (s *OrderService) publish(ctx context.Context, eventType string, order *models.Order) {
	if s.producer == nil {
		return
	}
	event := models.OrderEvent{
		Type:          eventType,
		OrderID:       order.ID.String(),
		InvoiceID:     order.InvoiceID,
		OrderStatus:   string(order.Status),
		PaymentStatus: string(order.PaymentStatus),
		Timestamp:     time.Now(),
	}
	if err := s.producer.Publish(ctx, event); err != nil {
		s.logger.Warn("order event publish failed",
			zap.String("invoice_id", order.InvoiceID),
			zap.String("type", eventType),
			zap.Error(err))
	}
}

const invoiceTokenAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// generateInvoiceID builds the human-readable invoice reference: a short
// random token plus a timestamp. The unique index on invoice_id backstops
// the negligible collision chance.
func generateInvoiceID() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("INV-%04d-%s", time.Now().Nanosecond()%10000, time.Now().Format("20060102150405"))
	}
	token := make([]byte, 4)
	for i, b := range buf {
		token[i] = invoiceTokenAlphabet[int(b)%len(invoiceTokenAlphabet)]
	}
	return fmt.Sprintf("INV-%s-%s", token, time.Now().Format("20060102150405"))
}

func buildMeta(page, limit int, total int64) MetaData {
	return MetaData{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: calculateTotalPages(total, limit),
		HasMore:    total > int64(page*limit),
	}
}

func calculateTotalPages(total int64, limit int) int64 {
	if limit == 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
