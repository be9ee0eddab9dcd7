package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/demandiq/backend-go/internal/config"
	"github.com/demandiq/backend-go/internal/repository"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/urfave/cli/v2"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newSeedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Load the dataset CSV into the weekly_sales table",
		Flags: []cli.Flag{
			newDBURLFlag(),
			&cli.StringFlag{
				Name:    "dataset",
				Usage:   "Path to the sales dataset CSV",
				EnvVars: []string{"APP_DATASET_PATH"},
			},
		},
		Action: runSeed,
	}
}

func runSeed(c *cli.Context) error {
	cfg := config.Load()

	datasetPath := c.String("dataset")
	if datasetPath == "" {
		datasetPath = cfg.App.DatasetPath
	}

	dataset, err := repository.LoadCSVDataset(datasetPath)
	if err != nil {
		return err
	}

	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	ctx := c.Context
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := ensureSalesTable(ctx, tx); err != nil {
		return err
	}

	log.Println("Starting weekly_sales seeding...")

	rowCount, err := seedSales(ctx, tx, dataset)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("Seeded %d sales rows\n", rowCount)
	return nil
}

func ensureSalesTable(ctx context.Context, tx *sql.Tx) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS weekly_sales (
			location_id INTEGER NOT NULL,
			category_id INTEGER NOT NULL,
			date        DATE    NOT NULL,
			amount      DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (location_id, category_id, date)
		)`
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create weekly_sales table: %w", err)
	}
	return nil
}

func seedSales(ctx context.Context, tx *sql.Tx, dataset *repository.CSVDataset) (int, error) {
	const query = `
		INSERT INTO weekly_sales (location_id, category_id, date, amount)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (location_id, category_id, date)
		DO UPDATE SET amount = weekly_sales.amount + EXCLUDED.amount`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	keys, err := dataset.Keys(ctx)
	if err != nil {
		return 0, err
	}

	rowCount := 0
	for _, key := range keys {
		records, err := dataset.Records(ctx, key)
		if err != nil {
			return rowCount, err
		}
		for _, record := range records {
			if _, err := stmt.ExecContext(ctx,
				record.LocationID, record.CategoryID, record.Date, record.Amount,
			); err != nil {
				return rowCount, fmt.Errorf("failed to insert sales row: %w", err)
			}

			rowCount++
			if rowCount%5000 == 0 {
				log.Printf("Seeded %d sales rows...", rowCount)
			}
		}
	}

	return rowCount, nil
}
