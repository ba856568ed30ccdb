package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mission-control/telemetry/internal/app"
	"github.com/mission-control/telemetry/internal/client"
	"github.com/mission-control/telemetry/internal/config"
	"github.com/mission-control/telemetry/internal/logging"
	"github.com/mission-control/telemetry/internal/poller"
	"github.com/mission-control/telemetry/internal/telemetry"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "Path to config file")
	backendURL := flag.String("url", "", "Backend base URL, absolute or relative to -origin (default /api)")
	origin := flag.String("origin", "", "Origin used to resolve a relative backend URL")
	order := flag.String("order", "", "Out-of-order response policy: latest-issued or arrival")
	strict := flag.Bool("strict", false, "Reject responses with missing fields")
	logLevel := flag.String("log-level", "", "Override log level")
	logFile := flag.String("log-file", "", "Override log file")
	once := flag.Bool("once", false, "Fetch one snapshot, print it with its derived visual state and exit")
	flag.Parse()

	cfg, err := config.LoadClient(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *backendURL != "" {
		cfg.BackendURL = *backendURL
	}
	if *origin != "" {
		cfg.Origin = *origin
	}
	if *order != "" {
		cfg.Order = *order
	}
	if *strict {
		cfg.StrictFields = true
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *logFile != "" {
		cfg.Log.File = *logFile
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	logger, closer := logging.NewFile(cfg.Log, version, "mission-tui")
	defer closer.Close()

	opts := []client.Option{client.WithTimeout(cfg.RequestTimeout)}
	if cfg.StrictFields {
		opts = append(opts, client.WithStrictFields())
	}
	httpClient, err := client.NewHTTPClient(cfg.BackendURL, cfg.Origin, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *once {
		if err := printOnce(httpClient); err != nil {
			fmt.Fprintf(os.Stderr, "Error (%s): %v\n", client.Classify(err), err)
			os.Exit(1)
		}
		return
	}

	policy, _ := poller.ParseOrderPolicy(cfg.Order)
	logger.Info("console starting", "endpoint", httpClient.Endpoint(), "order", policy.String(), "strict", cfg.StrictFields)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feed := app.NewFeed(telemetry.NewCell(), logger)
	h, err := poller.Start(ctx, poller.Config{
		Interval: poller.DefaultInterval,
		Order:    policy,
		OnStale:  feed.Stale,
		Logger:   logger,
	}, httpClient, feed.Update, feed.Error)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	m := app.New(app.Options{
		Endpoint: httpClient.Endpoint(),
		Feed:     feed,
		Poller:   h,
		Logger:   logger,
	})
	p := tea.NewProgram(m, tea.WithAltScreen())

	_, runErr := p.Run()
	h.Stop()
	cancel()
	h.Wait()

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
}

func printOnce(c *client.HTTPClient) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	s, err := c.FetchTelemetry(ctx)
	if err != nil {
		return err
	}
	out := struct {
		Endpoint string                `json:"endpoint"`
		Snapshot telemetry.Snapshot    `json:"snapshot"`
		Visual   telemetry.VisualState `json:"visual"`
	}{c.Endpoint(), s, telemetry.Derive(s)}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
