// Package plugins provides a plugin registry for statement readers and
// ledger writers.
package plugins

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/ArionMiles/mynt2koinly/pkg/api"
	"github.com/ArionMiles/mynt2koinly/pkg/config"
	"github.com/ArionMiles/mynt2koinly/pkg/orchestrator"
)

// ReaderPlugin defines the interface for statement reader plugins.
type ReaderPlugin interface {
	// Name returns the plugin name (e.g., "pdf", "text").
	Name() string
	// Description returns a human-readable description.
	Description() string
	// Extensions returns the lower-case file extensions, dot included,
	// handled by the reader.
	Extensions() []string
	// NewReader creates a new reader instance.
	NewReader(logger *slog.Logger) api.Reader
}

// WriterPlugin defines the interface for ledger writer plugins.
type WriterPlugin interface {
	// Name returns the plugin name (e.g., "csv", "sheets").
	Name() string
	// Description returns a human-readable description.
	Description() string
	// RequiredScopes returns the OAuth scopes needed by this plugin.
	RequiredScopes() []string
	// NewWriter creates a new writer instance from the application config.
	// httpClient is nil unless some selected plugin requires scopes.
	NewWriter(ctx context.Context, httpClient *http.Client, cfg *config.Config, logger *slog.Logger) (api.Writer, error)
}

// Registry manages available reader and writer plugins.
type Registry struct {
	readers map[string]ReaderPlugin
	writers map[string]WriterPlugin
}

// NewRegistry creates an empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		readers: make(map[string]ReaderPlugin),
		writers: make(map[string]WriterPlugin),
	}
}

// RegisterReader registers a reader plugin.
func (r *Registry) RegisterReader(plugin ReaderPlugin) error {
	name := plugin.Name()
	if _, exists := r.readers[name]; exists {
		return fmt.Errorf("reader plugin %q already registered", name)
	}
	r.readers[name] = plugin
	return nil
}

// RegisterWriter registers a writer plugin.
func (r *Registry) RegisterWriter(plugin WriterPlugin) error {
	name := plugin.Name()
	if _, exists := r.writers[name]; exists {
		return fmt.Errorf("writer plugin %q already registered", name)
	}
	r.writers[name] = plugin
	return nil
}

// GetReader returns a reader plugin by name.
func (r *Registry) GetReader(name string) (ReaderPlugin, error) {
	plugin, exists := r.readers[name]
	if !exists {
		return nil, fmt.Errorf("reader plugin %q not found", name)
	}
	return plugin, nil
}

// GetWriter returns a writer plugin by name.
func (r *Registry) GetWriter(name string) (WriterPlugin, error) {
	plugin, exists := r.writers[name]
	if !exists {
		return nil, fmt.Errorf("writer plugin %q not found (available: %s)", name, strings.Join(r.writerNames(), ", "))
	}
	return plugin, nil
}

// ListReaders returns all registered reader plugins sorted by name.
func (r *Registry) ListReaders() []ReaderPlugin {
	plugins := make([]ReaderPlugin, 0, len(r.readers))
	for _, plugin := range r.readers {
		plugins = append(plugins, plugin)
	}
	slices.SortFunc(plugins, func(a, b ReaderPlugin) int { return strings.Compare(a.Name(), b.Name()) })
	return plugins
}

// ListWriters returns all registered writer plugins sorted by name.
func (r *Registry) ListWriters() []WriterPlugin {
	plugins := make([]WriterPlugin, 0, len(r.writers))
	for _, plugin := range r.writers {
		plugins = append(plugins, plugin)
	}
	slices.SortFunc(plugins, func(a, b WriterPlugin) int { return strings.Compare(a.Name(), b.Name()) })
	return plugins
}

func (r *Registry) writerNames() []string {
	var names []string
	for _, p := range r.ListWriters() {
		names = append(names, p.Name())
	}
	return names
}

// Scopes returns the sorted, deduplicated OAuth scopes required by the
// named writers.
func (r *Registry) Scopes(writerNames ...string) ([]string, error) {
	var scopes []string
	for _, name := range writerNames {
		writer, err := r.GetWriter(name)
		if err != nil {
			return nil, err
		}
		scopes = append(scopes, writer.RequiredScopes()...)
	}
	slices.Sort(scopes)
	return slices.Compact(scopes), nil
}

// CreateReaders instantiates every reader plugin, keyed by extension.
func (r *Registry) CreateReaders(logger *slog.Logger) map[string]api.Reader {
	readers := make(map[string]api.Reader)
	for _, plugin := range r.ListReaders() {
		reader := plugin.NewReader(logger)
		for _, ext := range plugin.Extensions() {
			readers[ext] = reader
		}
	}
	return readers
}

// CreateWriters instantiates the named writers in order. On failure the
// writers created so far are closed.
func (r *Registry) CreateWriters(ctx context.Context, names []string, httpClient *http.Client, cfg *config.Config, logger *slog.Logger) ([]orchestrator.Output, error) {
	outputs := make([]orchestrator.Output, 0, len(names))
	for _, name := range names {
		plugin, err := r.GetWriter(name)
		if err != nil {
			Close(outputs)
			return nil, err
		}

		w, err := plugin.NewWriter(ctx, httpClient, cfg, logger)
		if err != nil {
			Close(outputs)
			return nil, fmt.Errorf("creating %s writer: %w", name, err)
		}
		outputs = append(outputs, orchestrator.Output{Name: name, Writer: w})
	}
	return outputs, nil
}

// Close releases writers that hold resources, such as database pools.
func Close(outputs []orchestrator.Output) {
	for _, out := range outputs {
		switch w := out.Writer.(type) {
		case io.Closer:
			_ = w.Close()
		case interface{ Close() }:
			w.Close()
		}
	}
}
