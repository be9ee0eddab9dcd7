// backend-go/internal/repository/csv_dataset.go
package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/demandiq/backend-go/internal/domain"
	"github.com/rs/zerolog/log"
)

// requiredColumns must all be present in a dataset CSV header.
var requiredColumns = []string{"location_id", "category_id", "date", "amount"}

// CSVDataset is an immutable in-memory dataset handle: the CSV is parsed
// once at construction and the records never change afterwards. Callers
// receive the handle explicitly; there is no module-level singleton.
type CSVDataset struct {
	records []domain.SalesRecord
	options domain.ForecastOptions
	keys    []domain.SeriesKey
}

// LoadCSVDataset reads and validates a sales CSV. Header names are
// matched case-insensitively after trimming; missing required columns or
// unparseable cells fail with a validation error.
func LoadCSVDataset(path string) (*CSVDataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}

	// Create a map of column indices
	colMap := make(map[string]int)
	for i, col := range header {
		colMap[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := colMap[col]; !ok {
			return nil, domain.Validationf("dataset is missing required column %q", col)
		}
	}

	var records []domain.SalesRecord
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV record: %w", err)
		}
		line++

		locationID, err := strconv.Atoi(strings.TrimSpace(row[colMap["location_id"]]))
		if err != nil {
			return nil, domain.Validationf("line %d: bad location_id %q", line, row[colMap["location_id"]])
		}
		categoryID, err := strconv.Atoi(strings.TrimSpace(row[colMap["category_id"]]))
		if err != nil {
			return nil, domain.Validationf("line %d: bad category_id %q", line, row[colMap["category_id"]])
		}
		date, err := parseDate(strings.TrimSpace(row[colMap["date"]]))
		if err != nil {
			return nil, domain.Validationf("line %d: bad date %q", line, row[colMap["date"]])
		}
		amount, err := strconv.ParseFloat(strings.TrimSpace(row[colMap["amount"]]), 64)
		if err != nil {
			return nil, domain.Validationf("line %d: bad amount %q", line, row[colMap["amount"]])
		}

		records = append(records, domain.SalesRecord{
			LocationID: locationID,
			CategoryID: categoryID,
			Date:       date,
			Amount:     amount,
		})
	}

	ds := &CSVDataset{records: records}
	ds.index()

	log.Info().Str("path", path).Int("records", len(records)).
		Int("locations", len(ds.options.Locations)).
		Int("categories", len(ds.options.Categories)).
		Msg("dataset loaded")

	return ds, nil
}

// NewDatasetFromRecords builds a dataset handle directly from records.
// Used by tests and by callers that already hold rows in memory.
func NewDatasetFromRecords(records []domain.SalesRecord) *CSVDataset {
	ds := &CSVDataset{records: append([]domain.SalesRecord(nil), records...)}
	ds.index()
	return ds
}

func (d *CSVDataset) index() {
	locations := make(map[int]struct{})
	categories := make(map[int]struct{})
	keys := make(map[domain.SeriesKey]struct{})
	for _, r := range d.records {
		locations[r.LocationID] = struct{}{}
		categories[r.CategoryID] = struct{}{}
		keys[domain.SeriesKey{LocationID: r.LocationID, CategoryID: r.CategoryID}] = struct{}{}
	}

	d.options.Locations = sortedInts(locations)
	d.options.Categories = sortedInts(categories)

	d.keys = make([]domain.SeriesKey, 0, len(keys))
	for k := range keys {
		d.keys = append(d.keys, k)
	}
	sort.Slice(d.keys, func(i, j int) bool {
		if d.keys[i].LocationID != d.keys[j].LocationID {
			return d.keys[i].LocationID < d.keys[j].LocationID
		}
		return d.keys[i].CategoryID < d.keys[j].CategoryID
	})
}

func (d *CSVDataset) Records(ctx context.Context, key domain.SeriesKey) ([]domain.SalesRecord, error) {
	var out []domain.SalesRecord
	for _, r := range d.records {
		if r.LocationID == key.LocationID && r.CategoryID == key.CategoryID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (d *CSVDataset) Options(ctx context.Context) (domain.ForecastOptions, error) {
	return d.options, nil
}

func (d *CSVDataset) Keys(ctx context.Context) ([]domain.SeriesKey, error) {
	return d.keys, nil
}

func sortedInts(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "02-01-2006", "2006/01/02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format %q", value)
}

var _ SalesRepository = (*CSVDataset)(nil)
