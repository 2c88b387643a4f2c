package report

import (
	"errors"
	"fmt"
	"maps"
	"sync"
)

// Constructor builds a strategy. It runs only when its format is selected,
// so a failing constructor never affects other formats.
type Constructor func(Options) (Generator, error)

var builtin = map[Format]Constructor{
	CSV: func(opts Options) (Generator, error) {
		g, err := NewCSVGenerator(opts)
		if err != nil {
			return nil, err
		}
		return g, nil
	},
	JSON: func(opts Options) (Generator, error) {
		return NewJSONGenerator(opts), nil
	},
}

// registerBuiltin is called from init by strategies whose writer library
// can be left out of the build.
func registerBuiltin(f Format, c Constructor) { builtin[f] = c }

// capability describes what a format needs and how to get it back when it
// is missing from the build.
type capability struct {
	name   string
	remedy string
}

var capabilities = map[Format]capability{
	CSV:   {name: "delimited-text writer (encoding/csv)", remedy: "register a CSV constructor"},
	JSON:  {name: "structured-text writer (encoding/json)", remedy: "register a JSON constructor"},
	Excel: {name: "spreadsheet writer (github.com/xuri/excelize/v2)", remedy: `build without the "noxlsx" tag`},
	PDF:   {name: "document writer (github.com/go-pdf/fpdf)", remedy: `build without the "nopdf" tag`},
}

// ConfigError reports that a selected format cannot be served.
type ConfigError struct {
	Format     Format
	Capability string
	Remedy     string
	Err        error
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("report format %q requires %s: %v", e.Format, e.Capability, e.Err)
	if e.Remedy != "" && errors.Is(e.Err, ErrMissingCapability) {
		msg += "; " + e.Remedy
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Factory maps a configured format name to a strategy instance.
// It is safe for concurrent use.
type Factory struct {
	opts  Options
	mu    sync.RWMutex
	ctors map[Format]Constructor
}

// NewFactory returns a factory holding every strategy compiled into the
// binary. opts is passed to each constructor on selection.
func NewFactory(opts Options) *Factory {
	return &Factory{opts: opts, ctors: maps.Clone(builtin)}
}

// Register installs or replaces the constructor for f.
func (fa *Factory) Register(f Format, c Constructor) {
	fa.mu.Lock()
	defer fa.mu.Unlock()
	fa.ctors[f] = c
}

// Deregister removes the constructor for f. Selecting f afterwards fails
// with a [ConfigError].
func (fa *Factory) Deregister(f Format) {
	fa.mu.Lock()
	defer fa.mu.Unlock()
	delete(fa.ctors, f)
}

// Available returns the formats that currently have a constructor, in
// [Formats] order.
func (fa *Factory) Available() []Format {
	fa.mu.RLock()
	defer fa.mu.RUnlock()
	var out []Format
	for _, f := range formats {
		if _, ok := fa.ctors[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// Select returns the strategy for configured. Unknown or empty values
// select CSV. A recognized format that cannot be built returns a
// [*ConfigError] and never falls back to another format.
func (fa *Factory) Select(configured string) (Generator, error) {
	f, err := ParseFormat(configured)
	if err != nil {
		f = CSV
	}
	capab := capabilities[f]
	fa.mu.RLock()
	ctor, ok := fa.ctors[f]
	fa.mu.RUnlock()
	if !ok {
		return nil, &ConfigError{Format: f, Capability: capab.name, Remedy: capab.remedy, Err: ErrMissingCapability}
	}
	g, err := ctor(fa.opts)
	if err != nil {
		return nil, &ConfigError{Format: f, Capability: capab.name, Remedy: capab.remedy, Err: err}
	}
	return g, nil
}

// Select is shorthand for NewFactory(opts).Select(configured).
func Select(configured string, opts Options) (Generator, error) {
	return NewFactory(opts).Select(configured)
}
