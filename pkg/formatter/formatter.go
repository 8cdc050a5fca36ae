// Package formatter renders CLI output as table, json or yaml.
// Commands build plain records and pick a formatter by name.
package formatter

import (
	"fmt"
	"io"
	"sort"
	"sync"
)

// Record is one row of output keyed by column name.
type Record = map[string]any

// Formatter converts records to a specific output format.
type Formatter interface {
	// Name returns the formatter name (e.g., "table", "json", "yaml").
	Name() string

	// Description returns a human-readable description.
	Description() string

	// FormatList formats a list of records of the given kind.
	FormatList(w io.Writer, kind string, records []Record, opts FormatOptions) error

	// FormatRecord formats a single record of the given kind.
	FormatRecord(w io.Writer, kind string, record Record, opts FormatOptions) error
}

// FormatOptions configures formatting behavior.
type FormatOptions struct {
	// Columns selects and orders fields. Tables need it; json and yaml
	// include every field when it is empty.
	Columns []string

	// NoHeader disables the header row for tables.
	NoHeader bool

	// Compact minimizes whitespace (json).
	Compact bool

	// MaxWidth truncates long table values (0 = no limit).
	MaxWidth int
}

// Registry manages registered formatters.
type Registry struct {
	mu         sync.RWMutex
	formatters map[string]Formatter
	defaultFmt string
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		formatters: make(map[string]Formatter),
		defaultFmt: "table",
	}
}

// Register adds a formatter to the registry.
func (r *Registry) Register(f Formatter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.formatters[f.Name()]; exists {
		return fmt.Errorf("formatter %q already registered", f.Name())
	}
	r.formatters[f.Name()] = f
	return nil
}

// Get returns a formatter by name.
func (r *Registry) Get(name string) (Formatter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.formatters[name]
	return f, ok
}

// Lookup returns the named formatter, or the default for an empty name.
func (r *Registry) Lookup(name string) (Formatter, error) {
	if name == "" {
		r.mu.RLock()
		name = r.defaultFmt
		r.mu.RUnlock()
	}
	f, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (available: %v)", name, r.List())
	}
	return f, nil
}

// List returns all registered formatter names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.formatters))
	for name := range r.formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry holds the built-in formatters.
var DefaultRegistry = NewRegistry()

// Lookup returns a formatter from the default registry.
func Lookup(name string) (Formatter, error) {
	return DefaultRegistry.Lookup(name)
}

// List returns all formatter names from the default registry.
func List() []string {
	return DefaultRegistry.List()
}

// selectColumns keeps only the requested columns of record.
func selectColumns(record Record, columns []string) Record {
	if len(columns) == 0 || record == nil {
		return record
	}
	out := make(Record, len(columns))
	for _, col := range columns {
		if v, ok := record[col]; ok {
			out[col] = v
		}
	}
	return out
}

func selectAll(records []Record, columns []string) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = selectColumns(r, columns)
	}
	return out
}

func init() {
	for _, f := range []Formatter{NewTableFormatter(), NewJSONFormatter(), NewYAMLFormatter()} {
		if err := DefaultRegistry.Register(f); err != nil {
			panic(err)
		}
	}
}
