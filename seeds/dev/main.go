// Command dev seeds a local database with well-known API keys so drctl and
// curl can talk to a dev server without running create-api-key first.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/edvin/drtrack/internal/config"
	"github.com/edvin/drtrack/internal/core"
	"github.com/edvin/drtrack/internal/db"
	"github.com/edvin/drtrack/internal/model"
)

var devKeys = []struct {
	name, role, raw string
}{
	{"dev-operator", model.RoleOperator, "drt_dev_operator_0000000000000001"},
	{"dev-viewer", model.RoleViewer, "drt_dev_viewer_00000000000000001"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, db.PoolOptions{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	keys := core.NewAPIKeyService(pool)
	for _, k := range devKeys {
		_, err := keys.CreateWithRawKey(ctx, k.name, k.role, k.raw)
		switch {
		case errors.Is(err, core.ErrConflict):
			fmt.Printf("  %-13s exists\n", k.name)
		case err != nil:
			fmt.Fprintf(os.Stderr, "failed to seed %s: %v\n", k.name, err)
			os.Exit(1)
		default:
			fmt.Printf("  %-13s %s (%s)\n", k.name, k.raw, k.role)
		}
	}
	fmt.Println("Seed complete. Apply seeds/dev/plan.yaml with drctl for sample records.")
}
