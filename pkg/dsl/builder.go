package dsl

import (
	"fmt"
	"maps"
	"slices"

	"github.com/aretw0/fable/internal/compiler"
	"github.com/aretw0/fable/pkg/adapters/memory"
	"github.com/aretw0/fable/pkg/domain"
)

// Builder manages the construction of a set of story files.
type Builder struct {
	stories map[string]*StoryBuilder
	palette []domain.ColorTag
}

// New creates a new story builder.
func New() *Builder {
	return &Builder{
		stories: make(map[string]*StoryBuilder),
	}
}

// Palette sets the colors accepted when the stories are checked by Build.
// The default palette is used when it is never called.
func (b *Builder) Palette(colors ...domain.ColorTag) *Builder {
	b.palette = colors
	return b
}

// Story creates a new story file.
// If the file already exists, it returns the existing builder.
func (b *Builder) Story(file string) *StoryBuilder {
	if sb, ok := b.stories[file]; ok {
		return sb
	}
	sb := &StoryBuilder{file: file}
	b.stories[file] = sb
	return sb
}

// Sources renders every story to markup, keyed by file id.
func (b *Builder) Sources() map[string]string {
	out := make(map[string]string, len(b.stories))
	for file, sb := range b.stories {
		out[file] = sb.String()
	}
	return out
}

// Build parses every story and returns them in a memory loader.
// The first story that does not parse fails the build.
func (b *Builder) Build() (*memory.Loader, error) {
	var opts []compiler.Option
	if b.palette != nil {
		opts = append(opts, compiler.WithPalette(b.palette...))
	}
	parser := compiler.NewParser(opts...)

	sources := b.Sources()
	for _, file := range slices.Sorted(maps.Keys(sources)) {
		if _, err := parser.Parse(file, []byte(sources[file])); err != nil {
			return nil, fmt.Errorf("failed to build story %s: %w", file, err)
		}
	}
	return memory.NewLoader(sources), nil
}
