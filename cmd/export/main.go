// Command export prints drop point snapshots from the configured storage.
// By default it writes the full fleet as a JSON object keyed by number.
//
// Flags:
//
//	-since    RFC3339 cutoff; only drop points changed after it
//	-number   print a single drop point
//	-rank     print a JSON list ordered by priority, highest first
//	-metrics  print the fleet gauge in Prometheus text format
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/joho/godotenv"

	"github.com/bottlecrew/droptracker/internal/app"
	"github.com/bottlecrew/droptracker/internal/metrics"
	"github.com/bottlecrew/droptracker/internal/service/tracker"
)

func main() {
	_ = godotenv.Load()

	sinceFlag := flag.String("since", "", "RFC3339 cutoff; only drop points changed after it")
	numberFlag := flag.Int("number", 0, "print a single drop point")
	rankFlag := flag.Bool("rank", false, "print a JSON list ordered by priority, highest first")
	metricsFlag := flag.Bool("metrics", false, "print the fleet gauge in Prometheus text format")
	flag.Parse()

	var since *time.Time
	if *sinceFlag != "" {
		t, err := time.Parse(time.RFC3339, *sinceFlag)
		if err != nil {
			log.Fatalf("parse -since: %v", err)
		}
		since = &t
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	a, err := app.Bootstrap(ctx)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	svc, closeStorage, err := a.NewTracker(ctx, metrics.Nop{})
	if err != nil {
		a.Log.Error("wire storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStorage()

	if err := run(ctx, svc, exportOptions{
		since:   since,
		number:  *numberFlag,
		rank:    *rankFlag,
		metrics: *metricsFlag,
	}); err != nil {
		a.Log.Error("export failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

type exportOptions struct {
	since   *time.Time
	number  int
	rank    bool
	metrics bool
}

func run(ctx context.Context, svc *tracker.Service, opts exportOptions) error {
	if opts.metrics {
		reg := metrics.NewRegistry()
		if err := svc.SeedGauges(ctx, reg); err != nil {
			return err
		}
		return reg.WriteText(os.Stdout)
	}

	if opts.number > 0 {
		snap, err := svc.Info(ctx, opts.number)
		if err != nil {
			return err
		}
		return printJSON(snap)
	}

	snaps, err := svc.InfoAll(ctx, opts.since)
	if err != nil {
		return err
	}

	if opts.rank {
		ranked := make([]tracker.Snapshot, 0, len(snaps))
		for _, s := range snaps {
			ranked = append(ranked, s)
		}
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].Priority != ranked[j].Priority {
				return ranked[i].Priority > ranked[j].Priority
			}
			return ranked[i].Number < ranked[j].Number
		})
		return printJSON(ranked)
	}

	return printJSON(snaps)
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(data))
	return err
}
