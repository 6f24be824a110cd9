package config

import (
	"fmt"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the %s driver", DriverPostgres)
		}
	case DriverSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the %s driver", DriverSQLite)
		}
	default:
		return fmt.Errorf("storage.driver must be %q or %q (got %q)", DriverPostgres, DriverSQLite, c.Storage.Driver)
	}

	if err := c.Tracker.validate(); err != nil {
		return fmt.Errorf("tracker: %w", err)
	}

	if c.Labels.Style == "" {
		return fmt.Errorf("labels.style must not be empty")
	}

	return nil
}

func (t *TrackerConfig) validate() error {
	if t.VisitInterval <= 0 {
		return fmt.Errorf("visit_interval must be > 0 (got %v)", t.VisitInterval)
	}
	if t.DefaultVisitPriority <= 0 {
		return fmt.Errorf("default_visit_priority must be > 0 (got %v)", t.DefaultVisitPriority)
	}
	return nil
}
