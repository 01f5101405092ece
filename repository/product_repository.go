package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mahyudindev/e-commerce-sowryzel/models"
)

// ProductRepository defines catalog reads plus the two stock mutations the
// order lifecycle is allowed to make. LockByID and DecrementStock must run
// inside the order-creation transaction; IncrementStock inside the
// stock-reversal transaction.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindActive(ctx context.Context, page, limit int) ([]models.Product, int64, error)
	LockByID(tx *gorm.DB, id uuid.UUID) (*models.Product, error)
	DecrementStock(tx *gorm.DB, id uuid.UUID, qty int) error
	IncrementStock(tx *gorm.DB, id uuid.UUID, qty int) error
}

type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) ProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *GormProductRepository) FindActive(ctx context.Context, page, limit int) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Product{}).Where("status_aktif = ?", true)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// LockByID reads a product under SELECT ... FOR UPDATE. Two concurrent
// orders for the same product serialize here, so the stock check that
// follows always sees the committed result of the other order.
func (r *GormProductRepository) LockByID(tx *gorm.DB, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// DecrementStock subtracts qty from stock, guarded so the row can never go
// negative even without the row lock.
func (r *GormProductRepository) DecrementStock(tx *gorm.DB, id uuid.UUID, qty int) error {
	res := tx.Model(&models.Product{}).
		Where("id = ? AND stok >= ?", id, qty).
		UpdateColumn("stok", gorm.Expr("stok - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (r *GormProductRepository) IncrementStock(tx *gorm.DB, id uuid.UUID, qty int) error {
	return tx.Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("stok", gorm.Expr("stok + ?", qty)).Error
}
