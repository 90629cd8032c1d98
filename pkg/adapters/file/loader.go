package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/fable/pkg/domain"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultExtensions are the file extensions treated as story files.
var DefaultExtensions = []string{".story", ".txt"}

// Loader implements ports.StoryLoader and ports.Watchable over a directory.
// Story ids are slash separated paths relative to the root, extension included.
type Loader struct {
	root       string
	extensions []string
	logger     *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithExtensions replaces DefaultExtensions. A leading dot is optional.
// An empty list keeps the defaults.
func WithExtensions(exts ...string) Option {
	return func(l *Loader) {
		if len(exts) == 0 {
			return
		}
		l.extensions = nil
		for _, ext := range exts {
			ext = strings.TrimSpace(ext)
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			l.extensions = append(l.extensions, ext)
		}
	}
}

// WithLogger sets the logger used by Watch.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a Loader rooted at dir.
func New(dir string, opts ...Option) (*Loader, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("story directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("story directory: %s is not a directory", abs)
	}

	l := &Loader{
		root:       abs,
		extensions: slices.Clone(DefaultExtensions),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(l)
	}
	if len(l.extensions) == 0 {
		l.extensions = slices.Clone(DefaultExtensions)
	}
	return l, nil
}

// Root returns the absolute directory the loader reads from.
func (l *Loader) Root() string {
	return l.root
}

// pattern is the doublestar glob matching every story file under the root.
func (l *Loader) pattern() string {
	exts := make([]string, len(l.extensions))
	for i, ext := range l.extensions {
		exts[i] = strings.TrimPrefix(ext, ".")
	}
	return "**/*.{" + strings.Join(exts, ",") + "}"
}

func (l *Loader) matches(id string) bool {
	ok, err := doublestar.Match(l.pattern(), id)
	return err == nil && ok
}

// Load reads one story file.
func (l *Loader) Load(ctx context.Context, id string) ([]byte, error) {
	if !fs.ValidPath(id) || !l.matches(id) {
		return nil, fmt.Errorf("%w: %s", domain.ErrStoryNotFound, id)
	}
	data, err := os.ReadFile(filepath.Join(l.root, filepath.FromSlash(id)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrStoryNotFound, id)
		}
		return nil, fmt.Errorf("failed to read %s: %w", id, err)
	}
	return data, nil
}

// List returns the ids of every story file under the root, sorted.
// Hidden files and directories are skipped.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(l.root), l.pattern(), doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		if hidden(m) {
			continue
		}
		ids = append(ids, m)
	}
	slices.Sort(ids)
	return ids, nil
}

func hidden(id string) bool {
	for _, part := range strings.Split(id, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// Watch emits the id of every story file that is written, created, removed
// or renamed. New subdirectories are watched as they appear. The channel is
// closed when ctx is done.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to start watcher: %w", err)
	}
	if err := l.addTree(w, l.root); err != nil {
		w.Close()
		return nil, err
	}

	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				l.logger.Warn("watcher error", "err", err)
			case evt, ok := <-w.Events:
				if !ok {
					return
				}
				id, ok := l.handle(w, evt)
				if !ok {
					continue
				}
				select {
				case ch <- id:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}

// handle turns a filesystem event into a story id.
func (l *Loader) handle(w *fsnotify.Watcher, evt fsnotify.Event) (string, bool) {
	if evt.Has(fsnotify.Create) {
		if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
			if err := l.addTree(w, evt.Name); err != nil {
				l.logger.Warn("failed to watch directory", "dir", evt.Name, "err", err)
			}
			return "", false
		}
	}
	if !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) && !evt.Has(fsnotify.Remove) && !evt.Has(fsnotify.Rename) {
		return "", false
	}
	rel, err := filepath.Rel(l.root, evt.Name)
	if err != nil {
		return "", false
	}
	id := filepath.ToSlash(rel)
	if hidden(id) || !l.matches(id) {
		return "", false
	}
	l.logger.Debug("story changed", "file", id, "op", evt.Op.String())
	return id, true
}

func (l *Loader) addTree(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && strings.HasPrefix(path.Base(filepath.ToSlash(p)), ".") {
			return filepath.SkipDir
		}
		if err := w.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
}
