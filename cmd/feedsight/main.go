package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"feedsight/internal/app"
	"feedsight/internal/config"
	"feedsight/internal/ingest"
	"feedsight/internal/logger"
	"feedsight/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var (
		cfgPath string
		name    string
		asJSON  bool
		noTUI   bool
	)
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/feedsight/config.yaml if not provided)")
	flag.StringVar(&name, "name", "", "Name stored with the feedback batch")
	flag.BoolVar(&asJSON, "json", false, "Print the full report as JSON")
	flag.BoolVar(&noTUI, "no-tui", false, "Exit after printing the report")
	flag.Parse()
	inputs := flag.Args()
	if len(inputs) == 0 {
		fmt.Println("Usage: feedsight [--config=config.yaml] [--json] [--no-tui] feedback1.txt [feedback2.txt ...]")
		fmt.Println("Each non-blank line of a file is one feedback entry.")
		os.Exit(1)
	}

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

	zl := logger.NewZapLogger(logger.Options{
		FilePath: cfg.Logging.FilePath,
		Level:    cfg.Logging.Level,
		JSON:     cfg.Logging.JSON,
	})
	defer zl.Sync()

	ctx := context.Background()
	a, err := app.Build(ctx, cfg, zl)
	if err != nil {
		log.Fatalf("init failed: %v", err)
	}
	defer a.Close()

	texts, metadata, err := ingest.ReadFeedbackFiles(inputs)
	if err != nil {
		log.Fatalf("read failed: %v", err)
	}
	if name == "" {
		name = inputs[0]
	}
	batch, err := a.Service.Submit(ctx, name, texts, metadata)
	if err != nil {
		log.Fatalf("ingest failed: %v", err)
	}
	report, err := a.Service.AnalyzeFeedback(ctx, batch.ID, cfg.Analysis)
	if err != nil {
		log.Fatalf("analysis failed: %v", err)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			log.Fatal(err)
		}
	} else {
		fmt.Println(report.ExecutiveSummary)
		fmt.Println()
		fmt.Println("Recommendations:")
		for _, r := range report.Recommendations {
			fmt.Println("  - " + r)
		}
	}
	if noTUI {
		return
	}

	if _, err := a.Service.IndexFeedback(ctx, batch.ID); err != nil {
		log.Fatalf("indexing failed: %v", err)
	}
	m := tui.New(a.Service, report)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}
