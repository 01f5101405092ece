package controllers_test

import (
	"bytes"
	"context"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/mahyudindev/e-commerce-sowryzel/controllers"
	"github.com/mahyudindev/e-commerce-sowryzel/services"
)

const webhookServerKey = "SB-Mid-server-testkey"

// ---- mock reconciler implementing controllers.PaymentReconciler ----

type mockReconciler struct {
	err          *services.ServiceError
	calls        int
	lastNotified *services.Notification
}

func (m *mockReconciler) ReconcilePayment(_ context.Context, n *services.Notification, _ []byte) *services.ServiceError {
	m.calls++
	m.lastNotified = n
	return m.err
}

// ---- helpers ----

func setupWebhookRouter(rec *mockReconciler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	gateway := services.NewMidtransGateway(webhookServerKey, false)
	wc := controllers.NewWebhookController(rec, gateway, "http://shop.example.com", zap.NewNop())

	r := gin.New()
	r.POST("/payments/notification", wc.HandleNotification)
	r.GET("/payments/finish", wc.HandleFinish)
	return r
}

func signedNotification(orderID, transactionStatus string) map[string]string {
	statusCode := "200"
	grossAmount := "110000.00"
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + webhookServerKey))
	return map[string]string{
		"order_id":           orderID,
		"transaction_status": transactionStatus,
		"payment_type":       "bank_transfer",
		"status_code":        statusCode,
		"gross_amount":       grossAmount,
		"signature_key":      hex.EncodeToString(sum[:]),
	}
}

func postNotification(r *gin.Engine, body []byte) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments/notification", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

// ---- notification tests ----

func TestHandleNotification_MalformedBody(t *testing.T) {
	rec := &mockReconciler{}
	r := setupWebhookRouter(rec)

	w := postNotification(r, []byte("{not json"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, rec.calls)
}

func TestHandleNotification_IncompletePayload(t *testing.T) {
	rec := &mockReconciler{}
	r := setupWebhookRouter(rec)

	w := postNotification(r, []byte(`{"order_id":"INV-1","transaction_status":"settlement"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, rec.calls)
}

func TestHandleNotification_SignatureMismatch(t *testing.T) {
	rec := &mockReconciler{}
	r := setupWebhookRouter(rec)

	payload := signedNotification("INV-AB12-20260101120000", "settlement")
	payload["signature_key"] = "deadbeef"
	body, _ := json.Marshal(payload)

	w := postNotification(r, body)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, 0, rec.calls)
}

func TestHandleNotification_UnknownOrder(t *testing.T) {
	rec := &mockReconciler{err: &services.ServiceError{StatusCode: http.StatusNotFound, Message: "Order not found"}}
	r := setupWebhookRouter(rec)

	body, _ := json.Marshal(signedNotification("INV-ZZZZ-20260101120000", "settlement"))
	w := postNotification(r, body)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 1, rec.calls)
}

func TestHandleNotification_Success(t *testing.T) {
	rec := &mockReconciler{}
	r := setupWebhookRouter(rec)

	body, _ := json.Marshal(signedNotification("INV-AB12-20260101120000", "settlement"))
	w := postNotification(r, body)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, "settlement", rec.lastNotified.TransactionStatus)
}

func TestHandleNotification_PersistenceFailure(t *testing.T) {
	rec := &mockReconciler{err: &services.ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to update order"}}
	r := setupWebhookRouter(rec)

	body, _ := json.Marshal(signedNotification("INV-AB12-20260101120000", "expire"))
	w := postNotification(r, body)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// ---- finish redirect tests ----

func TestHandleFinish_RedirectsWithFlash(t *testing.T) {
	rec := &mockReconciler{}
	r := setupWebhookRouter(rec)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/payments/finish?order_id=INV-AB12-20260101120000&status_code=200&transaction_status=settlement", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	location := w.Header().Get("Location")
	assert.Contains(t, location, "http://shop.example.com/orders?")
	assert.Contains(t, location, "payment=success")
	assert.Contains(t, location, "order_id=INV-AB12-20260101120000")
	// settlement is only applied through the signed webhook
	assert.Equal(t, 0, rec.calls)
}

func TestHandleFinish_PendingStatusReconciles(t *testing.T) {
	rec := &mockReconciler{}
	r := setupWebhookRouter(rec)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/payments/finish?order_id=INV-AB12-20260101120000&status_code=201&transaction_status=pending", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "payment=pending")
	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, "pending", rec.lastNotified.TransactionStatus)
}

func TestHandleFinish_FailureFlash(t *testing.T) {
	for _, status := range []string{"deny", "cancel", "expire"} {
		rec := &mockReconciler{}
		r := setupWebhookRouter(rec)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet,
			fmt.Sprintf("/payments/finish?order_id=INV-1&status_code=202&transaction_status=%s", status), nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Contains(t, w.Header().Get("Location"), "payment=failed")
		assert.Equal(t, 0, rec.calls)
	}
}
