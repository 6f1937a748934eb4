package product

import (
	"context"
	"strings"

	"orderdesk/internal/apperr"
	"orderdesk/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	Create(ctx context.Context, input CreateProductInput) (*Product, error)
	AdjustStock(ctx context.Context, id int64, delta int) (*Product, error)
	Get(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context) ([]*Product, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*Product, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperr.Validationf("Product name is required")
	}
	if input.Price <= 0 {
		return nil, apperr.Validationf("Price must be greater than zero")
	}
	if input.Stock < 0 {
		return nil, apperr.Validationf("Stock cannot be negative")
	}

	p := &Product{
		Name:  strings.TrimSpace(input.Name),
		Price: input.Price,
		Stock: input.Stock,
	}
	if err := s.repo.Insert(ctx, p); err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("product created",
		zap.String("layer", "service"),
		zap.Int64("product_id", p.ID),
		zap.String("name", p.Name),
	)
	return p, nil
}

// AdjustStock shifts stock by delta, positive to restock and negative
// to consume. The negative-stock guard lives in the repository's
// conditional update so every caller funnels through one atomic
// check-and-set.
func (s *service) AdjustStock(ctx context.Context, id int64, delta int) (*Product, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperr.NotFoundf("Product not found")
	}

	updated, err := s.repo.AdjustStock(ctx, id, delta)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.Validationf("Insufficient stock")
	}

	logger.FromCtx(ctx).Info("stock adjusted",
		zap.String("layer", "service"),
		zap.Int64("product_id", id),
		zap.Int("delta", delta),
		zap.Int("stock", updated.Stock),
	)
	return updated, nil
}

func (s *service) Get(ctx context.Context, id int64) (*Product, error) {
	return s.repo.Get(ctx, id)
}

func (s *service) List(ctx context.Context) ([]*Product, error) {
	return s.repo.List(ctx)
}
