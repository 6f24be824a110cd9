// Command migrate applies goose migrations to the configured PostgreSQL
// database. The sqlite store migrates itself when it is opened and needs no
// external tool.
//
// Usage:
//
//	migrate [-dir migrations] [up|down|status]
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql

	"github.com/bottlecrew/droptracker/internal/app"
	"github.com/bottlecrew/droptracker/internal/config"
)

func main() {
	_ = godotenv.Load()

	dirFlag := flag.String("dir", "migrations", "directory holding the goose SQL migrations")
	flag.Parse()

	command := flag.Arg(0)
	if command == "" {
		command = "up"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	a, err := app.Bootstrap(ctx)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	if a.Cfg.Storage.Driver != config.DriverPostgres {
		a.Log.Error("migrate targets the postgres driver; the sqlite store migrates itself on open")
		os.Exit(1)
	}

	db, err := sql.Open("pgx", a.Cfg.Database.DSN)
	if err != nil {
		a.Log.Error("open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, os.DirFS(*dirFlag))
	if err != nil {
		a.Log.Error("goose provider", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := runCommand(ctx, provider, command); err != nil {
		a.Log.Error("migrate failed",
			slog.String("command", command),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}
}

func runCommand(ctx context.Context, provider *goose.Provider, command string) error {
	switch command {
	case "up":
		results, err := provider.Up(ctx)
		if err != nil {
			return err
		}
		for _, r := range results {
			fmt.Printf("applied %s\n", r.Source.Path)
		}
		if len(results) == 0 {
			fmt.Println("database is up to date")
		}
		return nil

	case "down":
		result, err := provider.Down(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("rolled back %s\n", result.Source.Path)
		return nil

	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			return err
		}
		for _, s := range statuses {
			fmt.Printf("%-10s %s\n", s.State, s.Source.Path)
		}
		return nil

	default:
		return fmt.Errorf("unknown command %q (want up, down or status)", command)
	}
}
