package cache

import (
	"context"
	"time"

	"cierrecaja/backend/internal/domain"
)

// SalesSummaryCache keeps recently fetched ledger summaries so repeated
// closings for the same date do not hammer the accounting API.
type SalesSummaryCache interface {
	Get(ctx context.Context, key string) (*domain.SalesSummary, bool, error)
	Set(ctx context.Context, key string, value *domain.SalesSummary, ttl time.Duration) error
}

type NoopSalesSummaryCache struct{}

func (NoopSalesSummaryCache) Get(_ context.Context, _ string) (*domain.SalesSummary, bool, error) {
	return nil, false, nil
}

func (NoopSalesSummaryCache) Set(_ context.Context, _ string, _ *domain.SalesSummary, _ time.Duration) error {
	return nil
}
