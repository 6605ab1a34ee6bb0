package main

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/imagesync/internal/catalog"
	"github.com/andresuchdata/imagesync/internal/config"
	"github.com/andresuchdata/imagesync/internal/imageproc"
	"github.com/andresuchdata/imagesync/internal/reconcile"
	"github.com/andresuchdata/imagesync/internal/storage"
	"github.com/andresuchdata/imagesync/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Log.Debug().Err(err).Msg("no .env file loaded")
	}

	app := &cli.App{
		Name:  "imagesync",
		Usage: "Reconcile a catalog of image URLs against an S3 bucket, uploading what is missing or blocked",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Input catalog file (.csv or .xlsx)",
				Required: true,
				EnvVars:  []string{"INPUT_CSV"},
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output CSV file (default: <input> - processed.csv)",
				EnvVars: []string{"OUTPUT_CSV"},
			},
			&cli.StringFlag{
				Name:    "bucket",
				Usage:   "S3 bucket name",
				EnvVars: []string{"S3_BUCKET"},
			},
			&cli.StringFlag{
				Name:    "region",
				Usage:   "AWS region",
				EnvVars: []string{"AWS_REGION"},
			},
			&cli.IntFlag{
				Name:  "width",
				Usage: "Target image width",
				Value: 1200,
			},
			&cli.IntFlag{
				Name:  "height",
				Usage: "Target image height",
				Value: 800,
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Simulate operations without uploading (safe mode)",
				Value: true,
			},
			&cli.BoolFlag{
				Name:  "upload",
				Usage: "Actually upload images (overrides --dry-run)",
			},
			&cli.BoolFlag{
				Name:  "yes",
				Usage: "Skip the production confirmation prompt",
			},
			&cli.BoolFlag{
				Name:  "test-mode",
				Usage: "Process only the first --test-rows rows",
			},
			&cli.IntFlag{
				Name:  "test-rows",
				Usage: "Number of rows to process in test mode",
				Value: 5,
			},
			&cli.BoolFlag{
				Name:  "debug-save",
				Usage: "Save normalized images locally for inspection",
			},
			&cli.StringFlag{
				Name:  "debug-dir",
				Usage: "Directory for debug images",
				Value: "debug_images",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Timeout for each network call",
				Value: 10 * time.Second,
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:  "log-dir",
				Usage: "Directory for run log files (empty disables file logging)",
				Value: "logs",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("imagesync failed")
	}
}

func buildOptions(c *cli.Context, cfg *config.Config) (config.Options, error) {
	opts := config.Options{
		InputPath:    c.String("input"),
		OutputPath:   c.String("output"),
		Bucket:       c.String("bucket"),
		Region:       c.String("region"),
		TargetWidth:  c.Int("width"),
		TargetHeight: c.Int("height"),
		DryRun:       c.Bool("dry-run") && !c.Bool("upload"),
		DebugSave:    c.Bool("debug-save"),
		DebugDir:     c.String("debug-dir"),
		TestMode:     c.Bool("test-mode"),
		TestRows:     c.Int("test-rows"),
		Timeout:      c.Duration("timeout"),
		LogLevel:     c.String("log-level"),
		LogDir:       c.String("log-dir"),
	}

	if opts.Bucket == "" {
		opts.Bucket = cfg.Storage.Bucket
	}
	if opts.Region == "" {
		opts.Region = cfg.Storage.Region
	}
	if opts.Bucket == "" {
		return opts, fmt.Errorf("bucket must be provided via --bucket or S3_BUCKET")
	}
	if opts.OutputPath == "" {
		ext := filepath.Ext(opts.InputPath)
		opts.OutputPath = strings.TrimSuffix(opts.InputPath, ext) + " - processed.csv"
	}
	return opts, nil
}

// confirmProductionRun guards live uploads behind an explicit prompt,
// unless --yes was given or the run only touches test rows.
func confirmProductionRun(opts config.Options) bool {
	if opts.DryRun || opts.TestMode {
		return true
	}
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("WARNING: PRODUCTION MODE ENABLED")
	fmt.Printf("This will upload images to bucket %q. This cannot be undone.\n", opts.Bucket)
	fmt.Println(strings.Repeat("=", 60))
	fmt.Print("Type 'CONFIRM UPLOAD' to proceed: ")

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil || strings.TrimSpace(line) != "CONFIRM UPLOAD" {
		fmt.Println("Upload cancelled.")
		logger.Log.Info().Msg("upload cancelled by user")
		return false
	}
	return true
}

func run(c *cli.Context) error {
	logger.SetLevel(c.String("log-level"))

	cfg := config.Load()
	opts, err := buildOptions(c, cfg)
	if err != nil {
		return err
	}

	if opts.LogDir != "" {
		if path, err := logger.TeeToFile(opts.LogDir); err != nil {
			logger.Log.Warn().Err(err).Msg("file logging disabled")
		} else {
			logger.Log.Info().Str("path", path).Msg("run log created")
		}
	}

	logger.Log.Info().
		Str("input", opts.InputPath).
		Str("output", opts.OutputPath).
		Str("bucket", opts.Bucket).
		Str("dimensions", fmt.Sprintf("%dx%d", opts.TargetWidth, opts.TargetHeight)).
		Bool("dry_run", opts.DryRun).
		Bool("test_mode", opts.TestMode).
		Msg("imagesync started")

	if !c.Bool("yes") && !confirmProductionRun(opts) {
		return nil
	}

	table, err := catalog.Load(opts.InputPath)
	if err != nil {
		return err
	}
	logger.Log.Info().Int("rows", len(table.Rows)).Msg("catalog loaded")

	if opts.TestMode {
		table.Head(opts.TestRows)
		logger.Log.Info().Int("rows", len(table.Rows)).Msg("test mode: catalog truncated")
	}

	urlCol, _, err := table.DetectURLColumn()
	if err != nil {
		return err
	}
	resultCol := table.ResultColumn()
	keyCol := table.EnsureColumn(catalog.ColumnKey)
	statusCol := table.EnsureColumn(catalog.ColumnStatus)
	httpCol := table.EnsureColumn(catalog.ColumnHTTPCode)

	store, err := storage.NewS3Client(storage.S3Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    opts.Bucket,
		Region:    opts.Region,
		UseSSL:    cfg.Storage.UseSSL,
		Timeout:   opts.Timeout,
	})
	if err != nil {
		return err
	}

	httpClient := &http.Client{Timeout: opts.Timeout}
	debugDir := ""
	if opts.DebugSave {
		debugDir = opts.DebugDir
	}

	prober := reconcile.NewProber(store, reconcile.HTTPHead(httpClient))
	images := imageproc.New(httpClient, opts.TargetWidth, opts.TargetHeight, debugDir)
	decision := reconcile.NewDecision(store, prober, images, opts.DryRun)
	reconciler := reconcile.NewReconciler(decision)

	items := make([]reconcile.Item, 0, len(table.Rows))
	for i := range table.Rows {
		items = append(items, reconcile.Item{Row: i + 1, RawURL: table.Get(i, urlCol)})
	}

	outcomes, summary := reconciler.Run(c.Context, items)

	for i, outcome := range outcomes {
		table.Set(i, keyCol, outcome.Key)
		table.Set(i, statusCol, outcome.Status)
		table.Set(i, httpCol, strconv.Itoa(outcome.HTTPStatus))
		table.Set(i, resultCol, outcome.PublicURL)
	}

	if err := table.Save(opts.OutputPath); err != nil {
		return err
	}
	logger.Log.Info().Str("path", opts.OutputPath).Msg("results saved")

	fmt.Printf("\nProcessing completed: %d rows\n", summary.Total)
	fmt.Printf("  accessible already: %d\n", summary.Exists)
	fmt.Printf("  new uploads:        %d\n", summary.Uploaded)
	fmt.Printf("  re-uploads:         %d\n", summary.Reuploaded)
	fmt.Printf("  errors/skipped:     %d\n", summary.Errors)
	fmt.Printf("Output saved to: %s\n", opts.OutputPath)
	if summary.Reuploaded > 0 {
		fmt.Printf("Note: %d images were re-uploaded due to accessibility issues\n", summary.Reuploaded)
	}

	return nil
}
