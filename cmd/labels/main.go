// Command labels prints the label style manifest of the active fleet: a
// JSON object mapping drop point number to the template key its sign label
// is rendered from. Rendering itself happens outside this system.
//
// Flags:
//
//	-styles  comma-separated inventory of known template keys; when empty
//	         every drop point resolves to the configured base style
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
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/bottlecrew/droptracker/internal/app"
	"github.com/bottlecrew/droptracker/internal/domain"
	"github.com/bottlecrew/droptracker/internal/labels"
	"github.com/bottlecrew/droptracker/internal/metrics"
)

func main() {
	_ = godotenv.Load()

	stylesFlag := flag.String("styles", "", "comma-separated inventory of known template keys")
	flag.Parse()

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

	var known func(string) bool
	if *stylesFlag != "" {
		inventory := make(map[string]struct{})
		for _, s := range strings.Split(*stylesFlag, ",") {
			inventory[strings.TrimSpace(s)] = struct{}{}
		}
		known = func(key string) bool {
			_, ok := inventory[key]
			return ok
		}
	}

	details, err := svc.List(ctx, domain.DropPointFilter{})
	if err != nil {
		a.Log.Error("list drop points", slog.String("error", err.Error()))
		os.Exit(1)
	}

	style := a.Cfg.Labels.Style
	if style == "" {
		style = labels.DefaultStyle
	}

	manifest := make(map[int]string, len(details))
	for _, d := range details {
		// A category no longer in the table keeps the bare style.
		key := style
		if cat, ok := a.Categories.ByID(d.DropPoint.CategoryID); ok {
			key = labels.Resolve(style, cat, known)
		}
		manifest[d.DropPoint.Number] = key
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		a.Log.Error("encode manifest", slog.String("error", err.Error()))
		os.Exit(1)
	}
	fmt.Println(string(data))
}
