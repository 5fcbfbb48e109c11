package service

import (
	"context"
	"fmt"

	"github.com/ammar0144/catalog4go/pkg/logger"
	"github.com/ammar0144/catalog4go/pkg/models"
	"github.com/ammar0144/catalog4go/pkg/repository"
	"github.com/ammar0144/catalog4go/pkg/schemas"
)

// ProductInvalidator drops cached views of a product.
type ProductInvalidator interface {
	InvalidateProduct(ctx context.Context, id uint)
}

// ReviewService stores reviews. Reviews are embedded in cached products, so
// every write invalidates the reviewed product when an invalidator is set.
type ReviewService struct {
	*BaseService[models.Review, schemas.Review]
	products ProductInvalidator
}

// NewReviewService builds the review service. products may be nil.
func NewReviewService(repo repository.Repository[models.Review], products ProductInvalidator, baseLog *logger.Logger, opts ...Option) *ReviewService {
	return &ReviewService{
		BaseService: NewBaseService[models.Review, schemas.Review]("ReviewService", repo, models.NewReview, baseLog, opts...),
		products:    products,
	}
}

func (s *ReviewService) Save(ctx context.Context, schema schemas.Review) (*models.Review, error) {
	saved, err := s.BaseService.Save(ctx, schema)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, saved.ProductID)
	return saved, nil
}

func (s *ReviewService) Delete(ctx context.Context, id uint) error {
	existing, err := s.BaseService.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.BaseService.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete review %d: %w", id, err)
	}
	s.invalidate(ctx, existing.ProductID)
	return nil
}

func (s *ReviewService) invalidate(ctx context.Context, productID uint) {
	if s.products != nil {
		s.products.InvalidateProduct(ctx, productID)
	}
}
