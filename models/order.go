package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Order is one purchase by a customer. Monetary totals and the shipping
// address are captured at creation and never recomputed afterwards.
type Order struct {
	ID                    uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"transaksi_id"`
	InvoiceID             string          `gorm:"column:invoice_id;uniqueIndex;not null" json:"invoice_id"`
	CustomerID            uuid.UUID       `gorm:"type:uuid;not null;index" json:"pelanggan_id"`
	GoodsTotal            decimal.Decimal `gorm:"column:total_belanja;type:numeric(14,2);not null" json:"total_belanja"`
	ShippingFee           decimal.Decimal `gorm:"column:biaya_pengiriman;type:numeric(14,2);not null" json:"biaya_pengiriman"`
	GrandTotal            decimal.Decimal `gorm:"column:total_keseluruhan;type:numeric(14,2);not null" json:"total_keseluruhan"`
	Status                OrderStatus     `gorm:"column:status_transaksi;type:varchar(20);not null;default:'pending'" json:"status_transaksi"`
	PaymentStatus         PaymentStatus   `gorm:"column:status_pembayaran;type:varchar(20);not null;default:'unpaid'" json:"status_pembayaran"`
	PaymentMethod         string          `gorm:"column:metode_pembayaran;type:varchar(50)" json:"metode_pembayaran,omitempty"`
	SnapToken             string          `gorm:"column:snap_token" json:"snap_token,omitempty"`
	MidtransTransactionID *string         `gorm:"column:midtrans_transaction_id" json:"midtrans_transaction_id,omitempty"`
	ShippingAddress       datatypes.JSON  `gorm:"column:alamat_pengiriman;type:jsonb" json:"alamat_pengiriman"`
	CustomerNote          string          `gorm:"column:catatan_pelanggan" json:"catatan_pelanggan,omitempty"`
	TrackingNumber        *string         `gorm:"column:nomor_resi;type:varchar(255)" json:"nomor_resi,omitempty"`
	StockRevertedAt       *time.Time      `gorm:"column:stock_reverted_at" json:"stock_reverted_at,omitempty"`
	TotalWeight           int             `gorm:"column:total_berat;not null;default:0" json:"total_berat"`
	GatewayPayload        datatypes.JSON  `gorm:"column:midtrans_response;type:jsonb" json:"-"`
	CreatedAt             time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	Lines                 []OrderLine     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"detail_transaksi,omitempty"`
}

func (Order) TableName() string { return "transaksi" }

// OrderLine is one product line within an order. Name and unit price are
// historical snapshots: a later product rename or deletion must not change
// how the line renders. Subtotal is quantity x unit price at creation.
type OrderLine struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"detail_transaksi_id"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"transaksi_id"`
	ProductID   uuid.UUID       `gorm:"column:produk_id;type:uuid;not null" json:"produk_id"`
	ProductName string          `gorm:"column:nama_produk;not null" json:"nama_produk"`
	Quantity    int             `gorm:"column:jumlah;not null" json:"jumlah"`
	UnitPrice   decimal.Decimal `gorm:"column:harga_satuan;type:numeric(14,2);not null" json:"harga_satuan"`
	Subtotal    decimal.Decimal `gorm:"column:subtotal;type:numeric(14,2);not null" json:"subtotal"`
}

func (OrderLine) TableName() string { return "detail_transaksi" }

// ShippingAddress is the point-in-time delivery snapshot serialized into
// the order's alamat_pengiriman column. It is never re-read from the
// customer profile.
type ShippingAddress struct {
	RecipientName  string `json:"nama_penerima"`
	Phone          string `json:"no_telepon"`
	AddressLine    string `json:"alamat_lengkap"`
	ProvinceID     string `json:"provinsi_id"`
	ProvinceName   string `json:"provinsi_nama"`
	CityID         string `json:"kota_id"`
	CityName       string `json:"kota_nama"`
	District       string `json:"kecamatan,omitempty"`
	PostalCode     string `json:"kode_pos"`
	Courier        string `json:"kurir"`
	CourierService string `json:"layanan_kurir"`
}

// PaymentAttempt records one Snap checkout session for an order. Retried
// payments create a new attempt whose GatewayOrderID carries the -RETRY-
// suffix sent to the gateway; webhook lookups resolve the attempt first
// instead of parsing the suffix out of the order id.
type PaymentAttempt struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"attempt_id"`
	OrderID        uuid.UUID `gorm:"type:uuid;not null;index" json:"transaksi_id"`
	GatewayOrderID string    `gorm:"uniqueIndex;not null" json:"gateway_order_id"`
	SnapToken      string    `json:"snap_token"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (PaymentAttempt) TableName() string { return "payment_attempts" }
