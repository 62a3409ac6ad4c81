package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edvin/drtrack/internal/config"
	"github.com/edvin/drtrack/internal/drctl"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch os.Args[1] {
	case "apply":
		fs := flag.NewFlagSet("apply", flag.ExitOnError)
		file := fs.String("f", "", "Path to plan YAML file (required)")
		timeout := fs.Duration("timeout", 5*time.Minute, "Timeout for the whole run")
		fs.Parse(os.Args[2:])

		if *file == "" {
			fmt.Fprintln(os.Stderr, "Error: -f flag is required")
			fs.Usage()
			os.Exit(1)
		}

		plan, err := drctl.LoadPlan(*file)
		if err != nil {
			fail(err)
		}
		client := newClient(cfg, plan.APIURL, plan.APIKey)

		ctx, cancel := context.WithTimeout(ctx, *timeout)
		defer cancel()
		if _, err := drctl.Apply(ctx, client, plan, os.Stdout); err != nil {
			fail(err)
		}

	case "overview":
		fs := flag.NewFlagSet("overview", flag.ExitOnError)
		apiURL := fs.String("api", "", "drtrack API base URL (default: $DRTRACK_API_URL)")
		fs.Parse(os.Args[2:])

		client := newClient(cfg, *apiURL, "")
		ov, err := drctl.FetchOverview(ctx, client)
		if err != nil {
			fail(err)
		}
		if err := drctl.PrintOverview(os.Stdout, ov); err != nil {
			fail(err)
		}

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// newClient prefers explicit values over the environment.
func newClient(cfg *config.Config, apiURL, apiKey string) *drctl.Client {
	if apiURL == "" {
		apiURL = cfg.APIURL
	}
	if apiKey == "" {
		apiKey = cfg.APIKey
	}
	if err := (&config.Config{APIURL: apiURL, APIKey: apiKey}).Validate(config.ComponentCLI); err != nil {
		fail(err)
	}
	return drctl.NewClient(apiURL, apiKey)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage:
  drctl apply -f <plan.yaml>
  drctl overview [-api URL]

Commands:
  apply      Schedule the backup snapshots and recovery drills in a plan (existing keys are skipped)
  overview   Print backup health and drill readiness

Environment:
  DRTRACK_API_URL   API base URL (default: http://localhost:8090)
  DRTRACK_API_KEY   API key sent as X-API-Key`)
}
