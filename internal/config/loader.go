package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/bjaus/report"
)

// Load reads config.yaml and config.<APP_ENVIRONMENT>.yaml from dirs
// (default ./configs and .), then applies environment overrides such as
// REPORT_FORMAT or DATABASE_POSTGRES_HOST. A .env file in the working
// directory is loaded first when present.
func Load(dirs ...string) (*Config, error) {
	loadEnvFile(dirs)

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(dirs) == 0 {
		dirs = []string{"./configs", "."}
	}
	for _, d := range dirs {
		v.AddConfigPath(d)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := v.GetString("app.environment")
	v.SetConfigName("config." + env)
	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading %s config: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile(dirs []string) {
	for _, d := range append([]string{"."}, dirs...) {
		path := filepath.Join(d, ".env")
		if _, err := os.Stat(path); err == nil {
			// Variables already set in the environment win.
			_ = godotenv.Load(path)
		}
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "report")
	v.SetDefault("app.environment", "development")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.user", "postgres")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.database", "marketplace")
	v.SetDefault("database.postgres.sslmode", "disable")
	v.SetDefault("database.postgres.max_connections", 10)
	v.SetDefault("database.postgres.max_idle", 5)

	v.SetDefault("report.format", string(report.CSV))
	v.SetDefault("report.columns", report.Fields())
	v.SetDefault("report.delimiter", ",")
	v.SetDefault("report.indent", 2)
	v.SetDefault("report.compact", false)
	v.SetDefault("report.excel.sheet_name", "Productos")
	v.SetDefault("report.pdf.title", "Reporte de Productos")
	v.SetDefault("report.pdf.page_size", "A4")
	v.SetDefault("report.pdf.orientation", "P")
	v.SetDefault("report.pdf.margin", 20.0)
	v.SetDefault("report.pdf.line_height", 6.0)
	v.SetDefault("report.pdf.font_size", 10.0)
	v.SetDefault("report.pdf.max_line_width", 80)
	v.SetDefault("report.pdf.break_threshold", 24.0)
	v.SetDefault("report.pdf.font_file", "")
}

func validate(cfg *Config) error {
	var errs []error
	if cfg.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if cfg.Database.Postgres.Port <= 0 || cfg.Database.Postgres.Port > 65535 {
		errs = append(errs, fmt.Errorf("database.postgres.port %d out of range", cfg.Database.Postgres.Port))
	}
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", cfg.Logging.Level))
	}
	if d := []rune(cfg.Report.Delimiter); len(d) > 1 {
		errs = append(errs, fmt.Errorf("report.delimiter %q must be a single character", cfg.Report.Delimiter))
	} else if len(d) == 1 {
		if err := report.ValidateDelimiter(d[0]); err != nil {
			errs = append(errs, fmt.Errorf("report.delimiter: %w", err))
		}
	}
	if name := cfg.Report.Excel.SheetName; name != "" {
		if err := report.ValidateSheetName(name); err != nil {
			errs = append(errs, fmt.Errorf("report.excel.sheet_name: %w", err))
		}
	}
	// report.format is not validated; unknown values select CSV.
	return errors.Join(errs...)
}

// Dump writes cfg as YAML with secrets redacted.
func Dump(w io.Writer, cfg *Config) error {
	redacted := *cfg
	if redacted.Database.Postgres.Password != "" {
		redacted.Database.Postgres.Password = "***"
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&redacted); err != nil {
		return err
	}
	return enc.Close()
}
