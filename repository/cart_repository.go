package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mahyudindev/e-commerce-sowryzel/models"
)

// CartRepository removes the cart rows an order was built from. Deletion
// happens inside the order-creation transaction so cart cleanup and order
// insert commit or roll back together.
type CartRepository interface {
	DeleteForUser(tx *gorm.DB, userID uuid.UUID, ids []uuid.UUID) error
}

type GormCartRepository struct {
	db *gorm.DB
}

func NewGormCartRepository(db *gorm.DB) CartRepository {
	return &GormCartRepository{db: db}
}

// DeleteForUser only deletes rows owned by the given user; ids belonging
// to other users are silently skipped.
func (r *GormCartRepository) DeleteForUser(tx *gorm.DB, userID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return tx.Where("user_id = ? AND id IN ?", userID, ids).
		Delete(&models.CartItem{}).Error
}
