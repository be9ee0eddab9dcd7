// backend-go/internal/repository/postgres/sales_repository.go
package postgres

import (
	"context"
	"fmt"

	"github.com/demandiq/backend-go/internal/domain"
	"github.com/demandiq/backend-go/internal/repository"
)

// SalesRepository reads the weekly_sales table. Rows come back raw and
// unaggregated; grouping and ordering into a weekly series happens in
// the forecast package so the CSV and Postgres backends share one code
// path.
type SalesRepository struct {
	db *DB
}

func NewSalesRepository(db *DB) *SalesRepository {
	return &SalesRepository{db: db}
}

func (r *SalesRepository) Records(ctx context.Context, key domain.SeriesKey) ([]domain.SalesRecord, error) {
	query := `
		SELECT location_id, category_id, date, amount
		FROM weekly_sales
		WHERE location_id = $1 AND category_id = $2
		ORDER BY date`

	var records []domain.SalesRecord
	if err := r.db.SelectContext(ctx, &records, query, key.LocationID, key.CategoryID); err != nil {
		return nil, fmt.Errorf("query sales records: %w", err)
	}
	return records, nil
}

func (r *SalesRepository) Options(ctx context.Context) (domain.ForecastOptions, error) {
	var options domain.ForecastOptions

	if err := r.db.SelectContext(ctx, &options.Locations,
		`SELECT DISTINCT location_id FROM weekly_sales ORDER BY location_id`); err != nil {
		return options, fmt.Errorf("query locations: %w", err)
	}
	if err := r.db.SelectContext(ctx, &options.Categories,
		`SELECT DISTINCT category_id FROM weekly_sales ORDER BY category_id`); err != nil {
		return options, fmt.Errorf("query categories: %w", err)
	}
	return options, nil
}

func (r *SalesRepository) Keys(ctx context.Context) ([]domain.SeriesKey, error) {
	query := `
		SELECT DISTINCT location_id, category_id
		FROM weekly_sales
		ORDER BY location_id, category_id`

	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query series keys: %w", err)
	}
	defer rows.Close()

	var keys []domain.SeriesKey
	for rows.Next() {
		var key domain.SeriesKey
		if err := rows.Scan(&key.LocationID, &key.CategoryID); err != nil {
			return nil, fmt.Errorf("scan series key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

var _ repository.SalesRepository = (*SalesRepository)(nil)
