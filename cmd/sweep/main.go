package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"comedor/internal/config"
	"comedor/internal/db"
	applog "comedor/internal/log"
	"comedor/internal/trash"
)

// One-shot trash sweep, suitable for cron outside the server process.
func main() {
	dryRun := flag.Bool("dry-run", false, "list sweep candidates without purging them")
	flag.Parse()

	if err := run(*dryRun); err != nil {
		fmt.Fprintf(os.Stderr, "sweep failed: %v\n", err)
		os.Exit(1)
	}
}

func run(dryRun bool) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := applog.SetLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}

	database, err := db.Configure(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	now := time.Now().UTC()

	if dryRun {
		for _, kind := range []trash.Kind{trash.KindRecipe, trash.KindProjection} {
			entries, err := trash.ListDeleted(ctx, database, kind, trash.Filter{})
			if err != nil {
				return fmt.Errorf("list %s trash: %w", kind, err)
			}
			for _, entry := range entries {
				if entry.DeletedAt == nil || now.Sub(*entry.DeletedAt) <= trash.RetentionWindow {
					continue
				}
				fmt.Fprintf(os.Stdout, "would purge %s %d (%s, deleted %s)\n",
					entry.Kind, entry.ID, entry.Name, entry.DeletedAt.Format(time.RFC3339))
			}
		}
		return nil
	}

	report, err := trash.Sweep(ctx, database, now)
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}

	fmt.Fprintf(os.Stdout, "purged %d entities (%d recipes, %d projections)\n",
		report.Total(), report.Purged[trash.KindRecipe], report.Purged[trash.KindProjection])
	return nil
}
