package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is catalog inventory. Stock is the only column mutated outside
// catalog administration; it changes only inside the order-creation
// transaction and the stock-reversal path.
type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"produk_id"`
	Code        string          `gorm:"column:kode_produk;uniqueIndex;not null" json:"kode_produk"`
	Name        string          `gorm:"column:nama_produk;not null" json:"nama_produk"`
	Description string          `gorm:"column:deskripsi" json:"deskripsi,omitempty"`
	Price       decimal.Decimal `gorm:"column:harga;type:numeric(14,2);not null" json:"harga"`
	Stock       int             `gorm:"column:stok;not null;default:0" json:"stok"`
	WeightGrams int             `gorm:"column:berat" json:"berat"`
	Category    string          `gorm:"column:kategori" json:"kategori,omitempty"`
	Active      bool            `gorm:"column:status_aktif;not null;default:true" json:"status_aktif"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Product) TableName() string { return "produk" }

// CartItem is one product selection in a customer's cart. Cart rows that
// fund an order are deleted inside the order-creation transaction.
type CartItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id_keranjang"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	ProductID uuid.UUID       `gorm:"column:produk_id;type:uuid;not null" json:"produk_id"`
	Quantity  int             `gorm:"column:jumlah;not null" json:"jumlah"`
	UnitPrice decimal.Decimal `gorm:"column:harga_satuan;type:numeric(14,2);not null" json:"harga_satuan"`
	Subtotal  decimal.Decimal `gorm:"column:subtotal;type:numeric(14,2);not null" json:"subtotal"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (CartItem) TableName() string { return "keranjang" }

// Customer is the storefront profile owned by a user account. The order
// lifecycle reads it for identity and billing contact; it never writes it.
type Customer struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"pelanggan_id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	FullName   string    `gorm:"column:nama_lengkap;not null" json:"nama_lengkap"`
	Email      string    `gorm:"column:email;not null;index" json:"email"`
	Phone      string    `gorm:"column:no_telepon" json:"no_telepon,omitempty"`
	Address    string    `gorm:"column:alamat" json:"alamat,omitempty"`
	City       string    `gorm:"column:kota" json:"kota,omitempty"`
	PostalCode string    `gorm:"column:kode_pos" json:"kode_pos,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Customer) TableName() string { return "pelanggan" }

// Review is a customer rating for a delivered order line.
type Review struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"ulasan_id"`
	CustomerID  uuid.UUID `gorm:"type:uuid;not null;index" json:"pelanggan_id"`
	ProductID   uuid.UUID `gorm:"column:produk_id;type:uuid;not null;index" json:"produk_id"`
	OrderLineID uuid.UUID `gorm:"column:detail_transaksi_id;type:uuid;not null;uniqueIndex" json:"detail_transaksi_id"`
	Rating      int       `gorm:"not null" json:"rating"`
	Comment     string    `gorm:"column:komentar" json:"komentar,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Review) TableName() string { return "ulasan" }
