// backend-go/internal/repository/sales_repository.go
package repository

import (
	"context"

	"github.com/demandiq/backend-go/internal/domain"
)

// SalesRepository is the read surface over the raw sales table. Records
// returns unaggregated rows for one key (duplicate dates allowed; the
// series aggregator sums them), Options the selectable dimensions, and
// Keys every (location, category) pair with data.
type SalesRepository interface {
	Records(ctx context.Context, key domain.SeriesKey) ([]domain.SalesRecord, error)
	Options(ctx context.Context) (domain.ForecastOptions, error)
	Keys(ctx context.Context) ([]domain.SeriesKey, error)
}
