package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Log        LogConfig        `yaml:"log"`
	Storage    StorageConfig    `yaml:"storage"`
	Database   DatabaseConfig   `yaml:"database"`
	Tracker    TrackerConfig    `yaml:"tracker"`
	Labels     LabelsConfig     `yaml:"labels"`
	Categories CategoriesConfig `yaml:"categories"`
}

// Storage driver names accepted by StorageConfig.Driver.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// StorageConfig selects the storage backend.
type StorageConfig struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"postgres"`
	Path   string `yaml:"path"   env:"STORAGE_PATH"   env-default:"droptracker.db"`
}

// DatabaseConfig holds PostgreSQL connection settings. It is only consulted
// when the postgres driver is selected.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// TrackerConfig holds visit scheduling parameters.
//
// VisitInterval is the target time between visits to a drop point that
// nobody has reported on. DefaultVisitPriority is the weight assigned to
// such a point so that it still climbs the visit queue eventually.
// ScoringDisabled pins every priority to zero, which turns the visit queue
// into a plain inventory list.
type TrackerConfig struct {
	VisitInterval        time.Duration `yaml:"visit_interval"         env:"TRACKER_VISIT_INTERVAL"         env-default:"2h"`
	DefaultVisitPriority float64       `yaml:"default_visit_priority" env:"TRACKER_DEFAULT_VISIT_PRIORITY" env-default:"1.0"`
	ScoringDisabled      bool          `yaml:"scoring_disabled"       env:"TRACKER_SCORING_DISABLED"       env-default:"false"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// LabelsConfig holds label sheet rendering settings.
type LabelsConfig struct {
	Style string `yaml:"style" env:"LABELS_STYLE" env-default:"default"`
}

// CategoriesConfig points at an optional category table file. When File is
// empty the built-in table is used.
type CategoriesConfig struct {
	File string `yaml:"file" env:"CATEGORIES_FILE"`
}
