// Command seed fills the configured storage with a demo fleet: drop points
// spread over a venue with a history of reports and visits. Intended for
// manual testing against an empty database.
//
// Flags:
//
//	-points  number of drop points to create (default 12)
//	-seed    RNG seed for reproducible fleets (default 1)
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/bottlecrew/droptracker/internal/app"
	"github.com/bottlecrew/droptracker/internal/domain"
	"github.com/bottlecrew/droptracker/internal/metrics"
	"github.com/bottlecrew/droptracker/internal/service/tracker"
)

var descriptions = []string{
	"main hall east",
	"main hall west",
	"west entrance",
	"beer garden",
	"workshop tent",
	"stage left",
	"cloakroom",
	"food court",
	"assembly hall",
	"north stairs",
}

// reportStates is the sampling pool for seeded reports; the mid states
// appear twice so full-ish points dominate, as they do at a real event.
var reportStates = []domain.State{
	domain.StateEmpty,
	domain.StateSomeBottles,
	domain.StateSomeBottles,
	domain.StateReasonablyFull,
	domain.StateReasonablyFull,
	domain.StateFull,
	domain.StateOverflow,
}

func main() {
	_ = godotenv.Load()

	pointsFlag := flag.Int("points", 12, "number of drop points to create")
	seedFlag := flag.Int64("seed", 1, "RNG seed for reproducible fleets")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
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

	rng := rand.New(rand.NewSource(*seedFlag))
	if err := seedFleet(ctx, a, svc, rng, *pointsFlag); err != nil {
		a.Log.Error("seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func seedFleet(ctx context.Context, a *app.App, svc *tracker.Service, rng *rand.Rand, count int) error {
	now := time.Now()
	cats := a.Categories.All()

	var created, reports, visits, removed int

	for i := 0; i < count; i++ {
		number, err := svc.NextFreeNumber(ctx)
		if err != nil {
			return err
		}

		// Creations land in the day before yesterday's evening so every
		// event window below stays in the past.
		createdAt := now.Add(-36 * time.Hour).Add(time.Duration(rng.Int63n(int64(12 * time.Hour))))
		lat := 53.5615 + rng.Float64()*0.002 - 0.001
		lng := 9.9845 + rng.Float64()*0.003 - 0.0015
		level := rng.Intn(4)

		input := tracker.CreateInput{
			Number:      number,
			CategoryID:  cats[rng.Intn(len(cats))].ID,
			Description: descriptions[rng.Intn(len(descriptions))],
			Lat:         &lat,
			Lng:         &lng,
			Time:        createdAt,
		}
		if rng.Intn(3) > 0 {
			input.Level = &level
		}

		if _, err := svc.Create(ctx, input); err != nil {
			return fmt.Errorf("create %d: %w", number, err)
		}
		created++

		between := func() time.Time {
			window := now.Sub(createdAt)
			return createdAt.Add(time.Duration(rng.Int63n(int64(window))))
		}

		for r := rng.Intn(4); r > 0; r-- {
			state := reportStates[rng.Intn(len(reportStates))]
			if _, err := svc.Report(ctx, number, state, between()); err != nil {
				return fmt.Errorf("report %d: %w", number, err)
			}
			reports++
		}

		if rng.Intn(3) == 0 {
			action := domain.VisitActionEmptied
			if rng.Intn(4) == 0 {
				action = domain.VisitActionNoAction
			}
			if _, err := svc.Visit(ctx, number, action, between()); err != nil {
				return fmt.Errorf("visit %d: %w", number, err)
			}
			visits++
		}

		if count >= 5 && rng.Intn(10) == 0 {
			if err := svc.Remove(ctx, number, now); err != nil {
				return fmt.Errorf("remove %d: %w", number, err)
			}
			removed++
		}
	}

	a.Log.Info("demo fleet seeded",
		slog.Int("points", created),
		slog.Int("reports", reports),
		slog.Int("visits", visits),
		slog.Int("removed", removed),
	)
	return nil
}
