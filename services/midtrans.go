package services

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"

	"github.com/mahyudindev/e-commerce-sowryzel/models"
)

// itemNameLimit is Midtrans' maximum length for an item display name.
const itemNameLimit = 50

var (
	ErrMalformedPayload       = errors.New("malformed notification payload")
	ErrIncompleteNotification = errors.New("incomplete notification payload")
)

// Notification is the parsed body of a Midtrans HTTP notification.
type Notification struct {
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	PaymentType       string `json:"payment_type"`
	SignatureKey      string `json:"signature_key"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	FraudStatus       string `json:"fraud_status,omitempty"`
	TransactionID     string `json:"transaction_id,omitempty"`
}

// ParseNotification decodes and minimally validates a webhook body.
// Signature verification is a separate step; parsing never trusts the
// payload.
func ParseNotification(raw []byte) (*Notification, error) {
	var n Notification
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, ErrMalformedPayload
	}
	if n.OrderID == "" || n.TransactionStatus == "" || n.PaymentType == "" ||
		n.SignatureKey == "" || n.StatusCode == "" || n.GrossAmount == "" {
		return nil, ErrIncompleteNotification
	}
	return &n, nil
}

// PaymentGateway creates hosted-checkout sessions and authenticates inbound
// notifications.
type PaymentGateway interface {
	CreateSession(req *snap.Request) (token string, redirectURL string, err error)
	VerifySignature(n *Notification) bool
}

// MidtransGateway implements PaymentGateway against Midtrans Snap. The
// server key is injected once at construction and never mutated.
type MidtransGateway struct {
	client    snap.Client
	serverKey string
}

func NewMidtransGateway(serverKey string, production bool) *MidtransGateway {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	var c snap.Client
	c.New(serverKey, env)
	return &MidtransGateway{client: c, serverKey: serverKey}
}

func (g *MidtransGateway) CreateSession(req *snap.Request) (string, string, error) {
	resp, errM := g.client.CreateTransaction(req)
	if errM != nil {
		return "", "", errM
	}
	return resp.Token, resp.RedirectURL, nil
}

// VerifySignature recomputes sha512(order_id + status_code + gross_amount
// + server_key) and compares it to the notification's signature_key. A
// mismatch is an authentication failure; the notification must not touch
// any order.
func (g *MidtransGateway) VerifySignature(n *Notification) bool {
	sum := sha512.Sum512([]byte(n.OrderID + n.StatusCode + n.GrossAmount + g.serverKey))
	expected := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(expected), []byte(n.SignatureKey)) == 1
}

// BuildSessionRequest maps an order into the Snap session-creation payload.
// Pure function, no side effects: one item per order line, a synthetic
// shipping-fee line when the fee is positive, and customer contact blocks.
func BuildSessionRequest(gatewayOrderID string, order *models.Order, lines []models.OrderLine, customer *models.Customer, addr models.ShippingAddress, finishURL string) *snap.Request {
	items := make([]midtrans.ItemDetails, 0, len(lines)+1)
	for _, line := range lines {
		items = append(items, midtrans.ItemDetails{
			ID:    line.ProductID.String(),
			Price: line.UnitPrice.IntPart(),
			Qty:   int32(line.Quantity),
			Name:  truncateName(line.ProductName, itemNameLimit),
		})
	}
	if order.ShippingFee.IsPositive() {
		items = append(items, midtrans.ItemDetails{
			ID:    "SHIPPING_COST",
			Price: order.ShippingFee.IntPart(),
			Qty:   1,
			Name:  "Biaya Pengiriman",
		})
	}

	billingCity := customer.City
	if billingCity == "" {
		billingCity = addr.CityName
	}
	billingPostcode := customer.PostalCode
	if billingPostcode == "" {
		billingPostcode = addr.PostalCode
	}

	return &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  gatewayOrderID,
			GrossAmt: order.GrandTotal.IntPart(),
		},
		Items: &items,
		CustomerDetail: &midtrans.CustomerDetails{
			FName: customer.FullName,
			Email: customer.Email,
			Phone: customer.Phone,
			BillAddr: &midtrans.CustomerAddress{
				FName:       customer.FullName,
				Phone:       customer.Phone,
				Address:     customer.Address,
				City:        billingCity,
				Postcode:    billingPostcode,
				CountryCode: "IDN",
			},
			ShipAddr: &midtrans.CustomerAddress{
				FName:       addr.RecipientName,
				Phone:       addr.Phone,
				Address:     addr.AddressLine,
				City:        addr.CityName,
				Postcode:    addr.PostalCode,
				CountryCode: "IDN",
			},
		},
		Callbacks: &snap.Callbacks{Finish: finishURL},
	}
}

func truncateName(name string, limit int) string {
	runes := []rune(name)
	if len(runes) <= limit {
		return name
	}
	return string(runes[:limit])
}
