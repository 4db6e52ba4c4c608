package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"perfume/internal/catalog"
	"perfume/internal/config"
	"perfume/internal/domain"
	"perfume/internal/logger"
	"perfume/internal/metrics"
	"perfume/internal/service"
	chiTransport "perfume/internal/transport/chi"
	"perfume/internal/tui"
)

const usage = `Usage: perfume [--config=config.yaml] [--catalog=perfumes.csv] <command> [flags]

Commands:
  tui      interactive terminal finder (default)
  serve    HTTP API
  exact    exact-match search: --personality --occasion --notes --intensity
  rank     ranked search: same flags plus --weights=2,2,2,2
`

func main() {
	_ = godotenv.Load()

	var cfgPath, catalogPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/perfume/config.yaml if not provided)")
	flag.StringVar(&catalogPath, "catalog", "", "Catalog file (csv, xlsx or yaml); overrides catalog.path")
	flag.Usage = func() { fmt.Fprint(flag.CommandLine.Output(), usage) }
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if catalogPath != "" {
		cfg.Catalog.Path = catalogPath
	}

	cmd := "tui"
	args := flag.Args()
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	var outputs []string
	if cfg.Logging.File != "" {
		outputs = append(outputs, cfg.Logging.File)
	} else if cmd == "tui" {
		// keep the terminal for the TUI
		outputs = append(outputs, os.DevNull)
	}
	lg, err := logger.NewLogger(cfg.Logging.Env, cfg.Logging.Level, outputs...)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	rec, err := build(context.Background(), cfg, lg)
	if err != nil {
		lg.Fatal("Startup failed", zap.Error(err), zap.Bool("fatal_init", service.IsStartupError(err)))
	}
	instrumented := service.NewInstrumentedRecommender(rec, lg)

	switch cmd {
	case "tui":
		m := tui.New(instrumented, tuiSettings(cfg), rec.Summary())
		if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
			lg.Fatal("TUI failed", zap.Error(err))
		}
	case "serve":
		serve(cfg, instrumented, rec.Summary(), lg)
	case "exact", "rank":
		if err := runOnce(os.Stdout, cmd, args, cfg, instrumented); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// build loads the catalog and fits the index once; the result is shared read-only.
func build(ctx context.Context, cfg *config.AppConfig, lg *zap.Logger) (*service.Recommender, error) {
	start := time.Now()
	src := &catalog.FileSource{Path: cfg.Catalog.Path, Format: cfg.Catalog.Format, Sheet: cfg.Catalog.Sheet}
	cat, err := catalog.Open(ctx, src)
	if err != nil {
		return nil, err
	}
	rec, err := service.NewRecommender(cat, service.Options{
		TopK:      cfg.Ranker.TopK,
		Weighting: cfg.Ranker.Weighting,
		Stopwords: cfg.Ranker.Stopwords,
	})
	if err != nil {
		return nil, err
	}
	metrics.Register()
	metrics.CatalogRecords.Set(float64(rec.Size()))
	metrics.VocabularyTerms.Set(float64(rec.Dimension()))
	lg.Info("Recommender ready",
		zap.String("catalog", cfg.Catalog.Path),
		zap.Int("records", rec.Size()),
		zap.Int("vocabulary", rec.Dimension()),
		zap.String("weighting", rec.Weighting()),
		zap.Duration("duration", time.Since(start)),
	)
	return rec, nil
}

func tuiSettings(cfg *config.AppConfig) tui.Settings {
	return tui.Settings{
		MinWeight:     cfg.Ranker.MinWeight,
		MaxWeight:     cfg.Ranker.MaxWeight,
		DefaultWeight: cfg.Ranker.DefaultWeight,
		ExactLimit:    cfg.Ranker.ExactLimit,
	}
}

func serve(cfg *config.AppConfig, rec domain.Recommender, summary string, lg *zap.Logger) {
	server := chiTransport.NewServer(rec, chiTransport.Limits{
		MinWeight:     cfg.Ranker.MinWeight,
		MaxWeight:     cfg.Ranker.MaxWeight,
		DefaultWeight: cfg.Ranker.DefaultWeight,
		ExactLimit:    cfg.Ranker.ExactLimit,
	}, summary, lg)

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      server.Router(),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		lg.Info("Starting HTTP server", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	lg.Info("Received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		lg.Error("Error during shutdown", zap.Error(err))
	}
	lg.Info("Server stopped gracefully")
}

// runOnce executes a single exact or ranked search and prints the result.
func runOnce(w io.Writer, cmd string, args []string, cfg *config.AppConfig, rec domain.Recommender) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	var q domain.Query
	fs.StringVar(&q.Personality, "personality", "", "personality")
	fs.StringVar(&q.Occasion, "occasion", "", "occasion")
	fs.StringVar(&q.Notes, "notes", "", "dominant notes")
	fs.StringVar(&q.Intensity, "intensity", "", "intensity")
	weightsFlag := fs.String("weights", "", "comma separated weights: personality,occasion,notes,intensity")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd == "exact" {
		recs := rec.FilterExact(q)
		if len(recs) == 0 {
			_, err := fmt.Fprintln(w, "No perfume matches your criteria exactly. Try adjusting your choices!")
			return err
		}
		if n := cfg.Ranker.ExactLimit; n >= 0 && len(recs) > n {
			recs = recs[:n]
		}
		for _, r := range recs {
			if _, err := fmt.Fprintf(w, "- %s\n", r.Name); err != nil {
				return err
			}
		}
		return nil
	}

	weights := domain.UniformWeights(cfg.Ranker.DefaultWeight)
	if *weightsFlag != "" {
		parsed, err := parseWeights(*weightsFlag)
		if err != nil {
			return err
		}
		weights = parsed
	}
	if err := weights.Validate(cfg.Ranker.MinWeight, cfg.Ranker.MaxWeight); err != nil {
		return err
	}
	for _, r := range rec.Rank(q, weights) {
		if _, err := fmt.Fprintf(w, "- %s (score: %.2f)\n", r.Name, r.Score); err != nil {
			return err
		}
	}
	return nil
}

func parseWeights(s string) (domain.QueryWeights, error) {
	var w domain.QueryWeights
	parts := strings.Split(s, ",")
	if len(parts) != domain.AttributeCount {
		return w, fmt.Errorf("%w: expected %d comma separated values, got %q", domain.ErrInvalidWeights, domain.AttributeCount, s)
	}
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return w, fmt.Errorf("%w: %q is not an integer", domain.ErrInvalidWeights, p)
		}
		w[i] = v
	}
	return w, nil
}
