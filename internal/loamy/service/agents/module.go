package agents

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/kiosk404/loamy/internal/loamy/service/agents/domain/repo"
	"github.com/kiosk404/loamy/internal/loamy/service/agents/domain/service/lending"
	"github.com/kiosk404/loamy/internal/loamy/service/agents/domain/service/runtime"
	"github.com/kiosk404/loamy/internal/loamy/service/agents/domain/service/runtime/directive"
	boltdbStore "github.com/kiosk404/loamy/internal/loamy/service/agents/store/boltdb"
	"github.com/kiosk404/loamy/internal/loamy/service/agents/store/inmemory"
	"github.com/kiosk404/loamy/internal/loamy/service/agents/store/seed"
	sqliteStore "github.com/kiosk404/loamy/internal/loamy/service/agents/store/sqlite"
	"github.com/kiosk404/loamy/internal/loamy/service/documents"
	"github.com/kiosk404/loamy/internal/loamy/service/tools"
	"github.com/kiosk404/loamy/pkg/logger"
)

const (
	StoreInMemory = "inmemory"
	StoreBoltDB   = "boltdb"
	StoreSQLite   = "sqlite"
)

// Config holds the configuration for the Agents module.
// Follows K8S-style: Config → Complete() → New(ctx, deps).
type Config struct {
	// MaxSteps bounds backend round trips per user turn (default: 10).
	MaxSteps int `json:"max_steps,omitempty"`

	// BackendTimeout bounds one backend round trip (default: 60s).
	BackendTimeout time.Duration `json:"backend_timeout,omitempty"`

	// ToolTimeout bounds one tool invocation (default: 10s).
	ToolTimeout time.Duration `json:"tool_timeout,omitempty"`

	// RunTimeout bounds a whole run (default: 5m).
	RunTimeout time.Duration `json:"run_timeout,omitempty"`

	// DirectiveFile overrides the built-in directive and is watched for changes.
	DirectiveFile string `json:"directive_file,omitempty"`

	// StoreType selects the customer store: "inmemory", "boltdb" or "sqlite".
	// Default: "sqlite".
	StoreType string `json:"store_type,omitempty"`

	// StorePath is the database file for boltdb and sqlite.
	// Default: "data/loamy.db".
	StorePath string `json:"store_path,omitempty"`

	// Seed loads the demo customers at startup.
	Seed bool `json:"seed,omitempty"`

	// StaticDir receives generated documents (default: "static").
	StaticDir string `json:"static_dir,omitempty"`
}

// CompletedConfig is the validated and completed configuration.
type CompletedConfig struct {
	*Config
}

// Complete validates and fills defaults.
func (c *Config) Complete() CompletedConfig {
	if c.MaxSteps <= 0 {
		c.MaxSteps = runtime.DefaultMaxSteps
	}
	if c.BackendTimeout <= 0 {
		c.BackendTimeout = runtime.DefaultBackendTimeout
	}
	if c.ToolTimeout <= 0 {
		c.ToolTimeout = runtime.DefaultToolTimeout
	}
	if c.RunTimeout <= 0 {
		c.RunTimeout = runtime.DefaultRunTimeout
	}
	if c.StoreType == "" {
		c.StoreType = StoreSQLite
	}
	if c.StorePath == "" {
		c.StorePath = filepath.Join("data", "loamy.db")
	}
	if c.StaticDir == "" {
		c.StaticDir = "static"
	}
	return CompletedConfig{c}
}

// Dependencies holds the external modules required by the Agents module.
type Dependencies struct {
	Backend runtime.Backend
}

// Module is the top-level Agents module.
//
// It exposes:
//   - Orchestrator: runs one user turn to a terminal outcome
//   - Customers: the customer store backing the lending tools
type Module struct {
	Orchestrator *runtime.Orchestrator
	Customers    repo.CustomerRepository

	directive *directive.Loader
	closers   []io.Closer
}

// Close releases the directive watcher and the store handle.
func (m *Module) Close() error {
	if m.directive != nil {
		m.directive.Close()
	}
	var firstErr error
	for _, c := range m.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// New creates and initializes the Agents module from a completed config.
func (c CompletedConfig) New(ctx context.Context, deps Dependencies) (*Module, error) {
	logger.Info("[Agents] creating Agents module...")

	if deps.Backend == nil {
		return nil, fmt.Errorf("backend dependency is required")
	}

	m := &Module{}
	ok := false
	defer func() {
		if !ok {
			for _, cl := range m.closers {
				cl.Close()
			}
		}
	}()

	customers, err := c.openStore(m)
	if err != nil {
		return nil, err
	}
	m.Customers = customers
	if c.Seed {
		if err := seed.Load(ctx, customers); err != nil {
			return nil, err
		}
		logger.Info("[Agents] seeded %d demo customers", len(seed.Customers()))
	}

	docs, err := documents.NewGenerator(documents.Config{Dir: c.StaticDir})
	if err != nil {
		return nil, err
	}

	registry := tools.NewRegistry()
	if err := lending.New(customers, docs).Register(registry); err != nil {
		return nil, fmt.Errorf("register lending tools: %w", err)
	}

	if binder, ok := deps.Backend.(runtime.ToolBinder); ok {
		if err := binder.BindTools(tools.ToolInfos(registry.DescribeAll())); err != nil {
			return nil, err
		}
	}

	m.directive, err = directive.NewLoader(c.DirectiveFile, directive.Default())
	if err != nil {
		return nil, err
	}

	m.Orchestrator = runtime.NewOrchestrator(deps.Backend, registry, m.directive, runtime.LoopConfig{
		MaxSteps:       c.MaxSteps,
		BackendTimeout: c.BackendTimeout,
		ToolTimeout:    c.ToolTimeout,
		RunTimeout:     c.RunTimeout,
	})

	logger.Info("[Agents] Agents module initialized (store=%s, max_steps=%d, backend_timeout=%s, tool_timeout=%s, tools=%d)",
		c.StoreType, c.MaxSteps, c.BackendTimeout, c.ToolTimeout, registry.Len())
	ok = true
	return m, nil
}

func (c CompletedConfig) openStore(m *Module) (repo.CustomerRepository, error) {
	switch c.StoreType {
	case StoreSQLite:
		s, err := sqliteStore.Open(c.StorePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite at %s: %w", c.StorePath, err)
		}
		m.closers = append(m.closers, s)
		logger.Info("[Agents] using SQLite store at %s", c.StorePath)
		return s, nil
	case StoreBoltDB:
		db, err := boltdbStore.Open(c.StorePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open boltdb at %s: %w", c.StorePath, err)
		}
		m.closers = append(m.closers, db)
		logger.Info("[Agents] using BoltDB store at %s", c.StorePath)
		return boltdbStore.NewCustomerStore(db), nil
	case StoreInMemory:
		logger.Info("[Agents] using in-memory store")
		return inmemory.NewCustomerStore(), nil
	default:
		return nil, fmt.Errorf("unknown store type %q", c.StoreType)
	}
}
