package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"poloscraper/lib/browser"
	"poloscraper/lib/configutil"
	"poloscraper/lib/scrapers/polo"
	"poloscraper/lib/telemetry"
	"poloscraper/lib/util/serviceutil"
	"poloscraper/services/collector"
	"poloscraper/services/collector/db"
	"poloscraper/services/collector/export"
	"time"
)

type SystemConfig struct {
	BaseUrl     string `json:"base_url"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	Institution string `json:"institution"`
}

type Config struct {
	// System selects which entry of Systems to scrape, "usjt" or "uam".
	System  string                  `json:"system"`
	Systems map[string]SystemConfig `json:"systems"`

	Cpfs           []string `json:"cpfs"`
	Schema         string   `json:"schema"`
	Output         string   `json:"output"`
	TimeoutSeconds int      `json:"timeout_seconds"`
}

func (c Config) system(override string) (SystemConfig, string, error) {
	name := c.System
	if override != "" {
		name = override
	}
	sys, ok := c.Systems[name]
	if !ok {
		return SystemConfig{}, "", fmt.Errorf("no system %q in config", name)
	}
	return sys, name, nil
}

func (c Config) outputDir() string {
	if c.Output != "" {
		return c.Output
	}
	return "resultados"
}

func (c Config) timeout() time.Duration {
	if c.TimeoutSeconds > 0 {
		return time.Duration(c.TimeoutSeconds) * time.Second
	}
	return 10 * time.Second
}

type batchFunc func(ctx context.Context, r *collector.Runner, cpfs []string) ([]collector.Record, error)

// runBatch is the shared body of the scrape and financeiro commands:
// read the config, open a portal session, collect, export, and
// optionally archive.
func runBatch(ctx context.Context, method, systemOverride, dbPath, logFile string, run batchFunc) {
	if logFile != "" {
		w, closer, err := telemetry.OpenLogFile(logFile)
		if err != nil {
			serviceutil.Fatal("failed to open log file", err)
		}
		defer closer.Close()
		telemetry.InitSlogWriter(true, w)
	}

	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	sys, name, err := cfg.system(systemOverride)
	if err != nil {
		serviceutil.Fatal("failed to resolve system", err)
	}
	slog.Info("starting batch",
		"system", name,
		"method", method,
		"identifiers", len(cfg.Cpfs))

	session, err := browser.NewFormSession(browser.FormSessionOptions{BaseUrl: sys.BaseUrl})
	if err != nil {
		serviceutil.Fatal("failed to open portal session", err)
	}
	client, err := polo.NewClient(polo.ClientOptions{
		BaseUrl: sys.BaseUrl,
		Timeout: cfg.timeout(),
		Session: session,
	})
	if err != nil {
		serviceutil.Fatal("failed to create portal client", err)
	}
	defer client.Close()

	runner := collector.NewRunner(client, collector.Credentials{
		Username: sys.Username,
		Password: sys.Password,
	})

	started := time.Now()
	records, err := run(ctx, runner, cfg.Cpfs)
	if err != nil {
		serviceutil.Fatal("batch aborted", err)
	}
	slog.Info("batch collected",
		"records", len(records),
		"seconds", time.Since(started).Seconds())

	writeOutputs(cfg, sys, records)

	if dbPath != "" {
		archive, err := db.Open(dbPath)
		if err != nil {
			serviceutil.Fatal("failed to open archive", err)
		}
		defer archive.Close()
		runID, err := archive.SaveRun(ctx, sys.Institution, method, records)
		if err != nil {
			serviceutil.Fatal("failed to archive run", err)
		}
		slog.Info("run archived", "db", dbPath, "run_id", runID)
	}
}

func writeOutputs(cfg Config, sys SystemConfig, records []collector.Record) {
	dir := cfg.outputDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		serviceutil.Fatal("failed to create output directory", err)
	}

	projection := export.Project(export.SchemaByName(cfg.Schema), sys.Institution, records)

	csvPath := filepath.Join(dir, "alunos_coletados.csv")
	csvFile, err := os.Create(csvPath)
	if err != nil {
		serviceutil.Fatal("failed to create csv", err)
	}
	defer csvFile.Close()
	if err := export.WriteCSV(csvFile, projection); err != nil {
		serviceutil.Fatal("failed to write csv", err)
	}
	slog.Info("csv saved", "path", csvPath)

	xlsxPath := filepath.Join(dir, "alunos_coletados.xlsx")
	xlsxFile, err := os.Create(xlsxPath)
	if err != nil {
		serviceutil.Fatal("failed to create xlsx", err)
	}
	defer xlsxFile.Close()
	if err := export.WriteXLSX(xlsxFile, projection); err != nil {
		serviceutil.Fatal("failed to write xlsx", err)
	}
	slog.Info("xlsx saved", "path", xlsxPath)
}
