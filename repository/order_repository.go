package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mahyudindev/e-commerce-sowryzel/models"
)

// SearchParams drive the admin order listing: free-text search over
// invoice and customer name/email, optional filter on each status axis,
// plus pagination.
type SearchParams struct {
	Search        string
	OrderStatus   string
	PaymentStatus string
	Page          int
	Limit         int
}

// OrderRepository defines the interface for order data access. Methods
// taking a *gorm.DB run inside the caller's transaction.
type OrderRepository interface {
	Create(tx *gorm.DB, order *models.Order) error
	SaveTx(tx *gorm.DB, order *models.Order) error
	Save(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByInvoice(ctx context.Context, invoiceID string) (*models.Order, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID, page, limit int) ([]models.Order, int64, error)
	FindLine(ctx context.Context, lineID uuid.UUID) (*models.OrderLine, error)
	Search(ctx context.Context, p SearchParams) ([]models.Order, int64, error)
}

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) OrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) Create(tx *gorm.DB, order *models.Order) error {
	return tx.Create(order).Error
}

func (r *GormOrderRepository) SaveTx(tx *gorm.DB, order *models.Order) error {
	return tx.Save(order).Error
}

func (r *GormOrderRepository) Save(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("id = ?", id).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) FindByInvoice(ctx context.Context, invoiceID string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("invoice_id = ?", invoiceID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByCustomer retrieves a customer's orders newest-first with pagination.
func (r *GormOrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, page, limit int) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("customer_id = ?", customerID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Preload("Lines").
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *GormOrderRepository) FindLine(ctx context.Context, lineID uuid.UUID) (*models.OrderLine, error) {
	var line models.OrderLine
	if err := r.db.WithContext(ctx).Where("id = ?", lineID).First(&line).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &line, nil
}

// Search is the admin listing query. Free-text search matches the invoice
// reference or the owning customer's name/email; each status axis filters
// independently.
func (r *GormOrderRepository) Search(ctx context.Context, p SearchParams) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Joins("LEFT JOIN pelanggan ON pelanggan.id = transaksi.customer_id")

	if p.Search != "" {
		term := "%" + p.Search + "%"
		query = query.Where(
			"transaksi.invoice_id ILIKE ? OR pelanggan.nama_lengkap ILIKE ? OR pelanggan.email ILIKE ?",
			term, term, term,
		)
	}
	if p.OrderStatus != "" && p.OrderStatus != "all" {
		query = query.Where("transaksi.status_transaksi = ?", p.OrderStatus)
	}
	if p.PaymentStatus != "" && p.PaymentStatus != "all" {
		query = query.Where("transaksi.status_pembayaran = ?", p.PaymentStatus)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (p.Page - 1) * p.Limit
	if err := query.
		Preload("Lines").
		Offset(offset).
		Limit(p.Limit).
		Order("transaksi.created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}
