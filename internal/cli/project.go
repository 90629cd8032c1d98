package cli

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/fable"
	"github.com/aretw0/fable/internal/config"
	"github.com/aretw0/fable/internal/metrics"
	"github.com/aretw0/fable/pkg/adapters/file"
	"github.com/aretw0/fable/pkg/adapters/redis"
	"github.com/aretw0/fable/pkg/domain"
	"github.com/aretw0/fable/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// ProjectOptions locates a story project.
type ProjectOptions struct {
	Dir        string
	ConfigPath string
	RedisURL   string
	Debug      bool
}

// Project is a story directory (or Redis namespace) with its configuration.
type Project struct {
	Dir      string
	Config   config.Config
	Logger   *slog.Logger
	Loader   ports.StoryLoader
	Registry *prometheus.Registry
	Metrics  *metrics.Collector
	Debug    bool
}

// OpenProject reads the configuration and builds the story loader.
// A Redis URL (flag, config or FABLE_REDIS_URL) selects the Redis loader;
// otherwise stories are read from Dir.
func OpenProject(opts ProjectOptions) (*Project, error) {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}

	cfg, err := config.Load(dir, opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.RedisURL != "" {
		cfg.Redis.URL = opts.RedisURL
	}

	logger, err := createLogger(cfg.Log, opts.Debug)
	if err != nil {
		return nil, err
	}

	p := &Project{
		Dir:      dir,
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
		Debug:    opts.Debug,
	}
	p.Metrics = metrics.New(p.Registry)

	if cfg.Redis.URL != "" {
		loader, err := redis.NewFromURL(cfg.Redis.URL, redis.WithPrefix(cfg.Redis.Prefix))
		if err != nil {
			return nil, err
		}
		logger.Debug("Using redis loader", "prefix", cfg.Redis.Prefix)
		p.Loader = loader
		return p, nil
	}

	loader, err := file.New(dir, file.WithExtensions(cfg.Extensions...), file.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	p.Loader = loader
	return p, nil
}

// Name is the configured project name, or the directory name.
func (p *Project) Name() string {
	if p.Config.Name != "" {
		return p.Config.Name
	}
	abs, err := filepath.Abs(p.Dir)
	if err != nil {
		return filepath.Base(p.Dir)
	}
	return filepath.Base(abs)
}

// NewEngine initializes a Fable engine with standard CLI conventions and
// loads every story. Parse errors are returned; the engine is still usable
// with the stories that did parse.
func (p *Project) NewEngine(ctx context.Context) (*fable.Engine, error) {
	hooks := p.Metrics.Hooks()
	if p.Debug {
		hooks = hooks.Merge(createDebugHooks(p.Logger))
	}

	engineOpts := []fable.Option{
		fable.WithLoader(p.Loader),
		fable.WithLogger(p.Logger),
		fable.WithLifecycleHooks(hooks),
	}
	if len(p.Config.Palette) > 0 {
		engineOpts = append(engineOpts, fable.WithPalette(p.Palette()...))
	}
	if p.Config.MaxSteps > 0 {
		engineOpts = append(engineOpts, fable.WithMaxSteps(p.Config.MaxSteps))
	}

	engine, err := fable.New(p.Dir, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	engine.Name = p.Name()

	if err := engine.Sync(ctx); err != nil {
		return engine, err
	}
	return engine, nil
}

// Palette is the built-in colors plus the configured ones.
func (p *Project) Palette() []domain.ColorTag {
	colors := slices.Clone(domain.DefaultPalette)
	for _, name := range slices.Sorted(maps.Keys(p.Config.Palette)) {
		colors = append(colors, domain.ColorTag(name))
	}
	return colors
}

// EntryPoint decides where a run starts: the flags, then the config, then
// the naming convention of determineEntryFile.
func (p *Project) EntryPoint(engine *fable.Engine, fileFlag, blockFlag string) (string, string) {
	if fileFlag != "" {
		return fileFlag, blockFlag
	}
	if p.Config.Entry.File != "" {
		block := blockFlag
		if block == "" {
			block = p.Config.Entry.Block
		}
		return p.Config.Entry.File, block
	}
	return determineEntryFile(engine.Registry().Files(), p.Name()), blockFlag
}

// determineEntryFile picks the story a run starts in when none is
// configured: start, main, index or the project name (any extension), and
// otherwise the first file.
func determineEntryFile(files []string, name string) string {
	if len(files) == 0 {
		return ""
	}
	for _, candidate := range []string{"start", "main", "index", name} {
		for _, f := range files {
			if strings.TrimSuffix(f, path.Ext(f)) == candidate {
				return f
			}
		}
	}
	return files[0]
}
