// Package config loads reportd settings from YAML files, a .env file, and
// the environment.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bjaus/report"
)

// Config is the full service configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app" yaml:"app"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Report   ReportConfig   `mapstructure:"report" yaml:"report"`
}

type AppConfig struct {
	Name        string `mapstructure:"name" yaml:"name"`
	Environment string `mapstructure:"environment" yaml:"environment"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres" yaml:"postgres"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host" yaml:"host"`
	Port           int    `mapstructure:"port" yaml:"port"`
	User           string `mapstructure:"user" yaml:"user"`
	Password       string `mapstructure:"password" yaml:"password"`
	Database       string `mapstructure:"database" yaml:"database"`
	SSLMode        string `mapstructure:"sslmode" yaml:"sslmode"`
	MaxConnections int    `mapstructure:"max_connections" yaml:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle" yaml:"max_idle"`
}

// GetDSN returns a lib/pq connection URL.
func (p PostgresConfig) GetDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     fmt.Sprintf("%s:%d", p.Host, p.Port),
		Path:     "/" + p.Database,
		RawQuery: url.Values{"sslmode": {p.SSLMode}}.Encode(),
	}
	return u.String()
}

// ReportConfig selects and tunes the report format.
type ReportConfig struct {
	Format    string      `mapstructure:"format" yaml:"format"`
	Columns   []string    `mapstructure:"columns" yaml:"columns"`
	Delimiter string      `mapstructure:"delimiter" yaml:"delimiter"`
	Indent    int         `mapstructure:"indent" yaml:"indent"`
	Compact   bool        `mapstructure:"compact" yaml:"compact"`
	Excel     ExcelConfig `mapstructure:"excel" yaml:"excel"`
	PDF       PDFConfig   `mapstructure:"pdf" yaml:"pdf"`
}

type ExcelConfig struct {
	SheetName string `mapstructure:"sheet_name" yaml:"sheet_name"`
}

type PDFConfig struct {
	Title          string  `mapstructure:"title" yaml:"title"`
	PageSize       string  `mapstructure:"page_size" yaml:"page_size"`
	Orientation    string  `mapstructure:"orientation" yaml:"orientation"`
	Margin         float64 `mapstructure:"margin" yaml:"margin"`
	LineHeight     float64 `mapstructure:"line_height" yaml:"line_height"`
	FontSize       float64 `mapstructure:"font_size" yaml:"font_size"`
	MaxLineWidth   int     `mapstructure:"max_line_width" yaml:"max_line_width"`
	BreakThreshold float64 `mapstructure:"break_threshold" yaml:"break_threshold"`
	FontFile       string  `mapstructure:"font_file" yaml:"font_file"`
}

// ReportOptions converts the report section into generator options.
func (c *Config) ReportOptions() report.Options {
	r := c.Report
	opts := report.Options{
		Columns:   r.Columns,
		Compact:   r.Compact,
		SheetName: r.Excel.SheetName,
		Page: report.PageConfig{
			Title:          r.PDF.Title,
			Size:           r.PDF.PageSize,
			Orientation:    r.PDF.Orientation,
			Margin:         r.PDF.Margin,
			LineHeight:     r.PDF.LineHeight,
			FontSize:       r.PDF.FontSize,
			MaxLineWidth:   r.PDF.MaxLineWidth,
			BreakThreshold: r.PDF.BreakThreshold,
			FontFile:       r.PDF.FontFile,
		},
	}
	if d := []rune(r.Delimiter); len(d) > 0 {
		opts.Delimiter = d[0]
	}
	if r.Indent > 0 {
		opts.Indent = strings.Repeat(" ", r.Indent)
	}
	return opts
}
