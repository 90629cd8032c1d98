package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/fable"
	"github.com/aretw0/fable/internal/compiler"
	"github.com/aretw0/fable/internal/presentation/graph"
	"github.com/aretw0/fable/pkg/adapters/file"
	httpAdapter "github.com/aretw0/fable/pkg/adapters/http"
	mcpAdapter "github.com/aretw0/fable/pkg/adapters/mcp"
	"github.com/aretw0/fable/pkg/adapters/redis"
	"github.com/aretw0/fable/pkg/ports"
)

// Graph renders the project's stories as a Mermaid flowchart.
func Graph(ctx context.Context, opts ProjectOptions) (string, error) {
	project, err := OpenProject(opts)
	if err != nil {
		return "", err
	}
	engine, err := project.NewEngine(ctx)
	if err != nil {
		return "", err
	}
	return graph.GenerateMermaid(engine.Inspect(), nil), nil
}

// Push uploads every story of a directory to Redis. Nothing is uploaded
// unless every file parses.
func Push(ctx context.Context, opts ProjectOptions) ([]string, error) {
	project, err := OpenProject(ProjectOptions{Dir: opts.Dir, ConfigPath: opts.ConfigPath, Debug: opts.Debug})
	if err != nil {
		return nil, err
	}
	url := opts.RedisURL
	if url == "" {
		url = project.Config.Redis.URL
	}
	if url == "" {
		return nil, fmt.Errorf("a redis url is required (--redis-url or redis.url)")
	}

	src, ok := project.Loader.(*file.Loader)
	if !ok {
		return nil, fmt.Errorf("push reads stories from a directory")
	}
	dst, err := redis.NewFromURL(url, redis.WithPrefix(project.Config.Redis.Prefix))
	if err != nil {
		return nil, err
	}
	defer dst.Close()

	ids, err := src.List(ctx)
	if err != nil {
		return nil, err
	}

	parser := compiler.NewParser(compiler.WithPalette(project.Palette()...))
	raws := make(map[string][]byte, len(ids))
	var errs []error
	for _, id := range ids {
		raw, err := src.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		if _, err := parser.Parse(id, raw); err != nil {
			errs = append(errs, err)
			continue
		}
		raws[id] = raw
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	for _, id := range ids {
		if err := dst.Save(ctx, id, raws[id]); err != nil {
			return nil, err
		}
		project.Logger.Debug("Pushed story", "file", id)
	}
	return ids, nil
}

// Serve exposes the project over HTTP until ctx is done. Watchable loaders
// keep the registry in sync with story changes.
func Serve(ctx context.Context, opts ProjectOptions, addr string) error {
	project, engine, err := openForServing(ctx, opts)
	if err != nil {
		return err
	}
	if addr == "" {
		addr = project.Config.Serve.Addr
	}

	srv := &http.Server{
		Addr: addr,
		Handler: httpAdapter.NewHandler(engine,
			httpAdapter.WithGatherer(project.Registry),
			httpAdapter.WithLogger(project.Logger),
		),
	}

	serverErrors := make(chan error, 1)
	go func() {
		fmt.Printf("Starting Fable Server on %s\n", srv.Addr)
		fmt.Printf("Serving stories from: %s\n", project.Name())
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown did not complete: %w", err)
		}
		fmt.Println("Fable Server stopped gracefully")
		return nil
	}
}

// ServeMCP exposes the project to MCP clients on stdio, or over SSE when
// sseAddr is set.
func ServeMCP(ctx context.Context, opts ProjectOptions, sseAddr string) error {
	project, engine, err := openForServing(ctx, opts)
	if err != nil {
		return err
	}
	server := mcpAdapter.NewServer(engine, project.Logger)
	if sseAddr != "" {
		return server.ServeSSE(ctx, sseAddr)
	}
	return server.ServeStdio()
}

func openForServing(ctx context.Context, opts ProjectOptions) (*Project, *fable.Engine, error) {
	project, err := OpenProject(opts)
	if err != nil {
		return nil, nil, err
	}
	engine, err := project.NewEngine(ctx)
	if err != nil {
		return nil, nil, err
	}
	if _, ok := project.Loader.(ports.Watchable); ok {
		go keepInSync(ctx, project, engine)
	}
	return project, engine, nil
}

// keepInSync re-syncs the registry on every change. Readers keep seeing the
// previous stories until the swap.
func keepInSync(ctx context.Context, project *Project, engine *fable.Engine) {
	changes, err := engine.Watch(ctx)
	if err != nil {
		project.Logger.Warn("Watch unavailable", "err", err)
		return
	}
	for id := range changes {
		if err := reload(ctx, engine, changes); err != nil {
			project.Logger.Error("Reload failed", "file", id, "err", err)
			continue
		}
		project.Logger.Info("Stories reloaded", "file", id)
	}
}
