package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/demandiq/backend-go/internal/artifact"
	"github.com/demandiq/backend-go/internal/cache"
	"github.com/demandiq/backend-go/internal/config"
	"github.com/demandiq/backend-go/internal/domain"
	"github.com/demandiq/backend-go/internal/forecast"
	"github.com/demandiq/backend-go/internal/pipeline"
	"github.com/demandiq/backend-go/internal/repository"
	"github.com/demandiq/backend-go/internal/service"
	"github.com/demandiq/backend-go/internal/storage"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func newLocationFlag() *cli.IntFlag {
	return &cli.IntFlag{
		Name:     "location",
		Usage:    "Location id of the series",
		Required: true,
	}
}

func newCategoryFlag() *cli.IntFlag {
	return &cli.IntFlag{
		Name:     "category",
		Usage:    "Category id of the series",
		Required: true,
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "demandiq",
		Usage: "Train models and run demand forecasts from the command line",
		Commands: []*cli.Command{
			{
				Name:  "train",
				Usage: "Fit and store the boosted model for one series",
				Flags: []cli.Flag{
					newLocationFlag(),
					newCategoryFlag(),
				},
				Action: runTrain,
			},
			{
				Name:  "train-all",
				Usage: "Fit models for every series in the dataset",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "workers",
						Usage:   "Number of concurrent training workers",
						Value:   0,
						EnvVars: []string{"APP_RETRAIN_WORKERS"},
					},
				},
				Action: runTrainAll,
			},
			{
				Name:  "forecast",
				Usage: "Print forecast and ordering lines for one series",
				Flags: []cli.Flag{
					newLocationFlag(),
					newCategoryFlag(),
					&cli.IntFlag{
						Name:  "horizon",
						Usage: "Number of weeks to forecast",
						Value: 12,
					},
					&cli.StringFlag{
						Name:  "strategy",
						Usage: "Forecast strategy name",
						Value: forecast.StrategyGBT,
					},
					&cli.Float64Flag{
						Name:  "stock",
						Usage: "Current stock on hand",
						Value: 0,
					},
					&cli.Float64Flag{
						Name:  "safety",
						Usage: "Safety stock percentage of forecast",
						Value: 0.1,
					},
				},
				Action: runForecast,
			},
			{
				Name:   "options",
				Usage:  "List the location and category ids in the dataset",
				Action: runOptions,
			},
			newSeedCommand(),
			{
				Name:  "pull-dataset",
				Usage: "Download a staged dataset CSV from object storage",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "object",
						Usage:    "Object key in the dataset bucket",
						Required: true,
					},
				},
				Action: runPullDataset,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newService(cfg *config.Config) (*service.ForecastService, error) {
	dataset, err := repository.LoadCSVDataset(cfg.App.DatasetPath)
	if err != nil {
		return nil, err
	}
	store, err := artifact.NewFSStore(cfg.App.ModelsDir)
	if err != nil {
		return nil, err
	}

	trainer := forecast.NewTrainer(store, forecast.DefaultGBTParams())
	registry := forecast.NewRegistry(
		forecast.NewLagModelStrategy(store),
		forecast.NewSeasonalStrategy(),
	)
	return service.NewForecastService(dataset, registry, trainer, cache.NewNoopForecastCache()), nil
}

func runTrain(c *cli.Context) error {
	cfg := config.Load()
	svc, err := newService(cfg)
	if err != nil {
		return err
	}

	key := domain.SeriesKey{LocationID: c.Int("location"), CategoryID: c.Int("category")}
	trained, err := svc.Retrain(c.Context, key)
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	log.Printf("Trained model for location=%d category=%d at %s\n",
		key.LocationID, key.CategoryID, trained.TrainedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func runTrainAll(c *cli.Context) error {
	cfg := config.Load()

	dataset, err := repository.LoadCSVDataset(cfg.App.DatasetPath)
	if err != nil {
		return err
	}
	store, err := artifact.NewFSStore(cfg.App.ModelsDir)
	if err != nil {
		return err
	}

	workers := c.Int("workers")
	if workers <= 0 {
		workers = cfg.App.RetrainWorkers
	}

	trainer := forecast.NewTrainer(store, forecast.DefaultGBTParams())
	retrainer := pipeline.NewRetrainer(dataset, trainer, workers)

	result, err := retrainer.RetrainAll(c.Context)
	if err != nil {
		return fmt.Errorf("batch retrain failed: %w", err)
	}

	log.Printf("Batch retrain done: %d trained, %d skipped, %d failed in %s\n",
		result.Trained, result.Skipped, result.Failed, result.Duration)
	if result.Failed > 0 {
		return fmt.Errorf("%d series failed to train", result.Failed)
	}
	return nil
}

func runForecast(c *cli.Context) error {
	cfg := config.Load()
	svc, err := newService(cfg)
	if err != nil {
		return err
	}

	req := service.ForecastRequest{
		Key: domain.SeriesKey{
			LocationID: c.Int("location"),
			CategoryID: c.Int("category"),
		},
		Horizon:       c.Int("horizon"),
		Strategy:      c.String("strategy"),
		CurrentStock:  c.Float64("stock"),
		SafetyPercent: c.Float64("safety"),
	}

	lines, err := svc.Forecast(c.Context, req)
	if err != nil {
		return fmt.Errorf("forecast failed: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tFORECAST\tSAFETY\tREQUIRED\tORDER")
	for _, line := range lines {
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%.2f\n",
			line.Date, line.Yhat, line.SafetyStock, line.RequiredStock, line.OrderQty)
	}
	return w.Flush()
}

func runOptions(c *cli.Context) error {
	cfg := config.Load()

	dataset, err := repository.LoadCSVDataset(cfg.App.DatasetPath)
	if err != nil {
		return err
	}
	options, err := dataset.Options(c.Context)
	if err != nil {
		return err
	}

	fmt.Printf("Locations:  %v\n", options.Locations)
	fmt.Printf("Categories: %v\n", options.Categories)
	return nil
}

func runPullDataset(c *cli.Context) error {
	cfg := config.Load()

	objectStore, err := storage.NewMinioClient(storage.MinioConfig{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		UseSSL:    cfg.Storage.UseSSL,
	})
	if err != nil {
		return err
	}

	object := c.String("object")
	destPath := filepath.Join(cfg.App.DataDir, filepath.Base(object))

	if err := objectStore.DownloadObject(c.Context, object, destPath); err != nil {
		return fmt.Errorf("download dataset: %w", err)
	}

	log.Printf("Downloaded %s to %s\n", object, destPath)
	return nil
}
