// Package feedback reads and writes product reviews.
package feedback

import (
	"context"
	"strings"

	"fitfuzz-storefront/internal/backend"
	"fitfuzz-storefront/internal/logger"

	"go.uber.org/zap"
)

// Gateway is the backend surface for product reviews.
type Gateway interface {
	ProductFeedback(ctx context.Context, productID int64) (*backend.ProductFeedback, error)
	SubmitFeedback(ctx context.Context, req backend.SubmitFeedbackRequest) error
	DeleteFeedback(ctx context.Context, feedbackID, userID int64) error
}

type Service interface {
	// ProductReviews lists a product's reviews with its rating aggregates.
	// viewerID may be zero for anonymous visitors.
	ProductReviews(ctx context.Context, productID, viewerID int64) (Reviews, error)
	// Submit posts a review and returns the product's refreshed reviews.
	Submit(ctx context.Context, input ReviewInput) (Reviews, error)
	Delete(ctx context.Context, userID, reviewID int64) error
}

type service struct {
	gw Gateway
}

func NewService(gw Gateway) Service {
	return &service{gw: gw}
}

func (s *service) ProductReviews(ctx context.Context, productID, viewerID int64) (Reviews, error) {
	if productID <= 0 {
		return Reviews{}, ErrInvalidProductID
	}

	fb, err := s.gw.ProductFeedback(ctx, productID)
	if err != nil {
		logger.FromCtx(ctx).Error("fetch reviews failed",
			zap.String("service", "Feedback"),
			zap.String("method", "ProductReviews"),
			zap.Int64("product_id", productID),
			zap.Error(err),
		)
		return Reviews{}, err
	}
	return mapReviews(productID, viewerID, fb), nil
}

func (s *service) Submit(ctx context.Context, input ReviewInput) (Reviews, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "Feedback"),
		zap.String("method", "Submit"),
		zap.Int64("product_id", input.ProductID),
	)

	if input.UserID <= 0 {
		return Reviews{}, ErrUserRequired
	}
	if input.ProductID <= 0 {
		return Reviews{}, ErrInvalidProductID
	}
	if input.Rating < MinRating || input.Rating > MaxRating {
		return Reviews{}, ErrInvalidRating
	}
	comment := strings.TrimSpace(input.Comment)
	if comment == "" {
		return Reviews{}, ErrCommentRequired
	}
	if len(input.Images) > MaxImages {
		return Reviews{}, ErrTooManyImages
	}

	err := s.gw.SubmitFeedback(ctx, backend.SubmitFeedbackRequest{
		ProductID: input.ProductID,
		UserID:    input.UserID,
		Rating:    input.Rating,
		Comment:   comment,
		Images:    input.Images,
	})
	if err != nil {
		log.Error("submit review failed", zap.Error(err))
		return Reviews{}, err
	}
	log.Info("review submitted", zap.Int("rating", input.Rating))

	return s.ProductReviews(ctx, input.ProductID, input.UserID)
}

func (s *service) Delete(ctx context.Context, userID, reviewID int64) error {
	if userID <= 0 {
		return ErrUserRequired
	}
	if reviewID <= 0 {
		return ErrInvalidReviewID
	}

	if err := s.gw.DeleteFeedback(ctx, reviewID, userID); err != nil {
		logger.FromCtx(ctx).Error("delete review failed",
			zap.String("service", "Feedback"),
			zap.String("method", "Delete"),
			zap.Int64("review_id", reviewID),
			zap.Error(err),
		)
		return err
	}
	return nil
}
