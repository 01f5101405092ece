package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mahyudindev/e-commerce-sowryzel/models"
	"github.com/mahyudindev/e-commerce-sowryzel/repository"
)

type CreateReviewRequest struct {
	OrderLineID uuid.UUID `json:"detail_transaksi_id" binding:"required"`
	Rating      int       `json:"rating" binding:"required,min=1,max=5"`
	Comment     string    `json:"komentar"`
}

// ReviewService lets customers rate products they actually received. One
// review per order line, and only once the order is completed.
type ReviewService struct {
	reviews   repository.ReviewRepository
	orders    repository.OrderRepository
	customers repository.CustomerRepository
	logger    *zap.Logger
}

func NewReviewService(reviews repository.ReviewRepository, orders repository.OrderRepository, customers repository.CustomerRepository, logger *zap.Logger) *ReviewService {
	return &ReviewService{reviews: reviews, orders: orders, customers: customers, logger: logger}
}

func (s *ReviewService) CreateReview(ctx context.Context, userID uuid.UUID, req *CreateReviewRequest) (*models.Review, *ServiceError) {
	customer, err := s.customers.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Customer profile not found"}
		}
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to create review"}
	}

	line, err := s.orders.FindLine(ctx, req.OrderLineID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Order line not found"}
		}
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to create review"}
	}

	order, err := s.orders.FindByID(ctx, line.OrderID)
	if err != nil {
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to create review"}
	}
	if order.CustomerID != customer.ID {
		return nil, &ServiceError{StatusCode: http.StatusForbidden, Message: "Order does not belong to you"}
	}
	if order.Status != models.OrderCompleted {
		return nil, &ServiceError{
			StatusCode: http.StatusUnprocessableEntity,
			Message:    "Only completed orders can be reviewed",
		}
	}

	exists, err := s.reviews.ExistsForLine(ctx, line.ID)
	if err != nil {
		s.logger.Error("review existence check failed", zap.String("line_id", line.ID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to create review"}
	}
	if exists {
		return nil, &ServiceError{StatusCode: http.StatusConflict, Message: "This item has already been reviewed"}
	}

	review := &models.Review{
		CustomerID:  customer.ID,
		ProductID:   line.ProductID,
		OrderLineID: line.ID,
		Rating:      req.Rating,
		Comment:     req.Comment,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		s.logger.Error("review persist failed", zap.String("line_id", line.ID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to create review"}
	}
	return review, nil
}

type ReviewListResponse struct {
	Reviews []models.Review `json:"reviews"`
	Meta    MetaData        `json:"meta"`
}

func (s *ReviewService) GetProductReviews(ctx context.Context, productID uuid.UUID, page, limit int) (*ReviewListResponse, *ServiceError) {
	reviews, total, err := s.reviews.FindByProduct(ctx, productID, page, limit)
	if err != nil {
		s.logger.Error("review listing failed", zap.String("product_id", productID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to fetch reviews"}
	}
	return &ReviewListResponse{Reviews: reviews, Meta: buildMeta(page, limit, total)}, nil
}
