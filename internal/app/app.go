package app

import (
	"context"
	"log/slog"

	"github.com/bottlecrew/droptracker/internal/config"
)

// App holds the dependencies shared by every command entry point.
type App struct {
	Cfg        *config.Config
	Categories *config.CategoryTable
	Log        *slog.Logger
}

// Bootstrap loads configuration, initializes the default logger and the
// category table, and logs startup information.
func Bootstrap(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := NewLogger(cfg.Log)

	categories, err := config.LoadCategories(cfg.Categories.File)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "starting droptracker",
		slog.String("version", BuildVersion()),
		slog.String("storage_driver", cfg.Storage.Driver),
		slog.String("log_level", cfg.Log.Level),
	)

	return &App{
		Cfg:        cfg,
		Categories: categories,
		Log:        logger,
	}, nil
}
