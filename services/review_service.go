package services

import (
	"context"
	"net/http"

	"github.com/TechbroSam/jogiloran/models"

	"go.uber.org/zap"
)

// ReviewStore is the write side of the content platform for reviews.
type ReviewStore interface {
	CreateReview(ctx context.Context, review models.Review) error
}

type ReviewService struct {
	content ReviewStore
	logger  *zap.Logger
}

func NewReviewService(content ReviewStore, logger *zap.Logger) *ReviewService {
	return &ReviewService{content: content, logger: logger}
}

// SubmitReview creates the review document in the content store.
func (s *ReviewService) SubmitReview(ctx context.Context, review models.Review) *ServiceError {
	if err := s.content.CreateReview(ctx, review); err != nil {
		s.logger.Error("Failed to create review", zap.String("product_id", review.ProductID), zap.Error(err))
		return &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to submit review."}
	}
	return nil
}
