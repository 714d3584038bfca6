// Package source resolves image references for the portrait.
package source

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// BuiltinPrefix marks references that are generated rather than read.
const BuiltinPrefix = "builtin:"

var (
	ErrEmptyRef       = errors.New("source: empty image reference")
	ErrUnknownBuiltin = errors.New("source: unknown builtin image")
)

// Loader turns a reference into a decoded image.
type Loader interface {
	Load(ctx context.Context, ref string) (image.Image, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, ref string) (image.Image, error)

func (f LoaderFunc) Load(ctx context.Context, ref string) (image.Image, error) { return f(ctx, ref) }

// FileLoader decodes PNG, JPEG, GIF, BMP, TIFF and WebP files, and serves
// builtin references from Builtins.
type FileLoader struct {
	Builtins map[string]func() image.Image
}

func NewFileLoader() *FileLoader {
	return &FileLoader{Builtins: map[string]func() image.Image{
		"silhouette": func() image.Image { return Silhouette(256, 320) },
	}}
}

func (l *FileLoader) Load(ctx context.Context, ref string) (image.Image, error) {
	if ref == "" {
		return nil, ErrEmptyRef
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if name, ok := strings.CutPrefix(ref, BuiltinPrefix); ok {
		gen, ok := l.Builtins[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownBuiltin, name)
		}
		return gen(), nil
	}

	f, err := os.Open(ref)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", ref, err)
	}
	return img, nil
}

// BuiltinNames lists the generated images available to l.
func (l *FileLoader) BuiltinNames() []string {
	names := make([]string, 0, len(l.Builtins))
	for n := range l.Builtins {
		names = append(names, BuiltinPrefix+n)
	}
	return names
}
