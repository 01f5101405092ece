package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mahyudindev/e-commerce-sowryzel/models"
)

// AttemptRepository persists payment attempts: one row per Snap session,
// keyed by the order id sent to the gateway. Webhooks resolve the order
// through this table instead of parsing retry suffixes.
type AttemptRepository interface {
	Create(tx *gorm.DB, attempt *models.PaymentAttempt) error
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.PaymentAttempt, error)
}

type GormAttemptRepository struct {
	db *gorm.DB
}

func NewGormAttemptRepository(db *gorm.DB) AttemptRepository {
	return &GormAttemptRepository{db: db}
}

func (r *GormAttemptRepository) Create(tx *gorm.DB, attempt *models.PaymentAttempt) error {
	return tx.Create(attempt).Error
}

func (r *GormAttemptRepository) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.PaymentAttempt, error) {
	var a models.PaymentAttempt
	if err := r.db.WithContext(ctx).Where("gateway_order_id = ?", gatewayOrderID).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
