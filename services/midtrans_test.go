package services_test

import (
	"crypto/sha512"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mahyudindev/e-commerce-sowryzel/models"
	"github.com/mahyudindev/e-commerce-sowryzel/services"
)

const testServerKey = "SB-Mid-server-testkey"

func signPayload(orderID, statusCode, grossAmount string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + testServerKey))
	return hex.EncodeToString(sum[:])
}

func TestParseNotification_Malformed(t *testing.T) {
	_, err := services.ParseNotification([]byte("{not json"))
	assert.ErrorIs(t, err, services.ErrMalformedPayload)
}

func TestParseNotification_Incomplete(t *testing.T) {
	_, err := services.ParseNotification([]byte(`{"order_id":"INV-1","transaction_status":"settlement"}`))
	assert.ErrorIs(t, err, services.ErrIncompleteNotification)
}

func TestParseNotification_Valid(t *testing.T) {
	raw := []byte(`{
		"order_id": "INV-AB12-20260101120000",
		"transaction_status": "settlement",
		"payment_type": "bank_transfer",
		"signature_key": "abc",
		"status_code": "200",
		"gross_amount": "110000.00",
		"fraud_status": "accept",
		"transaction_id": "mt-123"
	}`)

	n, err := services.ParseNotification(raw)
	assert.NoError(t, err)
	assert.Equal(t, "INV-AB12-20260101120000", n.OrderID)
	assert.Equal(t, "settlement", n.TransactionStatus)
	assert.Equal(t, "bank_transfer", n.PaymentType)
	assert.Equal(t, "mt-123", n.TransactionID)
}

func TestVerifySignature(t *testing.T) {
	gw := services.NewMidtransGateway(testServerKey, false)

	n := &services.Notification{
		OrderID:      "INV-AB12-20260101120000",
		StatusCode:   "200",
		GrossAmount:  "110000.00",
		SignatureKey: signPayload("INV-AB12-20260101120000", "200", "110000.00"),
	}
	assert.True(t, gw.VerifySignature(n))

	n.SignatureKey = signPayload("INV-AB12-20260101120000", "200", "999999.00")
	assert.False(t, gw.VerifySignature(n))

	n.SignatureKey = "deadbeef"
	assert.False(t, gw.VerifySignature(n))
}

func TestBuildSessionRequest(t *testing.T) {
	productID := uuid.New()
	order := &models.Order{
		GrandTotal:  decimal.NewFromInt(110000),
		ShippingFee: decimal.NewFromInt(10000),
	}
	lines := []models.OrderLine{
		{
			ProductID:   productID,
			ProductName: "Kemeja Batik",
			Quantity:    2,
			UnitPrice:   decimal.NewFromInt(50000),
		},
	}
	customer := &models.Customer{
		FullName:   "Budi Santoso",
		Email:      "budi@example.com",
		Phone:      "0812000111",
		Address:    "Jl. Merdeka 1",
		City:       "Bandung",
		PostalCode: "40111",
	}
	addr := models.ShippingAddress{
		RecipientName: "Budi Santoso",
		Phone:         "0812000111",
		AddressLine:   "Jl. Merdeka 1",
		CityName:      "Bandung",
		PostalCode:    "40111",
	}

	req := services.BuildSessionRequest("INV-AB12-20260101120000", order, lines, customer, addr, "http://api.example.com/payments/finish")

	assert.Equal(t, "INV-AB12-20260101120000", req.TransactionDetails.OrderID)
	assert.Equal(t, int64(110000), req.TransactionDetails.GrossAmt)

	items := *req.Items
	assert.Len(t, items, 2)
	assert.Equal(t, productID.String(), items[0].ID)
	assert.Equal(t, int64(50000), items[0].Price)
	assert.Equal(t, int32(2), items[0].Qty)
	assert.Equal(t, "SHIPPING_COST", items[1].ID)
	assert.Equal(t, "Biaya Pengiriman", items[1].Name)
	assert.Equal(t, int64(10000), items[1].Price)

	assert.Equal(t, "Budi Santoso", req.CustomerDetail.FName)
	assert.Equal(t, "IDN", req.CustomerDetail.ShipAddr.CountryCode)
	assert.Equal(t, "http://api.example.com/payments/finish", req.Callbacks.Finish)
}

func TestBuildSessionRequest_NoShippingLineWhenFree(t *testing.T) {
	order := &models.Order{
		GrandTotal:  decimal.NewFromInt(50000),
		ShippingFee: decimal.Zero,
	}
	lines := []models.OrderLine{
		{ProductID: uuid.New(), ProductName: "Topi", Quantity: 1, UnitPrice: decimal.NewFromInt(50000)},
	}

	req := services.BuildSessionRequest("INV-X", order, lines, &models.Customer{}, models.ShippingAddress{}, "")
	assert.Len(t, *req.Items, 1)
}

func TestBuildSessionRequest_TruncatesLongItemNames(t *testing.T) {
	longName := strings.Repeat("Sepatu ", 20)
	order := &models.Order{GrandTotal: decimal.NewFromInt(1000)}
	lines := []models.OrderLine{
		{ProductID: uuid.New(), ProductName: longName, Quantity: 1, UnitPrice: decimal.NewFromInt(1000)},
	}

	req := services.BuildSessionRequest("INV-X", order, lines, &models.Customer{}, models.ShippingAddress{}, "")
	items := *req.Items
	assert.Len(t, []rune(items[0].Name), 50)
	assert.True(t, strings.HasPrefix(longName, items[0].Name))
}

func TestBuildSessionRequest_BillingFallsBackToShippingAddress(t *testing.T) {
	order := &models.Order{GrandTotal: decimal.NewFromInt(1000)}
	customer := &models.Customer{FullName: "Siti", Email: "siti@example.com"}
	addr := models.ShippingAddress{CityName: "Surabaya", PostalCode: "60111"}

	req := services.BuildSessionRequest("INV-X", order, nil, customer, addr, "")
	assert.Equal(t, "Surabaya", req.CustomerDetail.BillAddr.City)
	assert.Equal(t, "60111", req.CustomerDetail.BillAddr.Postcode)
}
