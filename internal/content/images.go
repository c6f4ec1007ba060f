package content

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp"
)

// imageExtensions are tried, in order, for image names given without one.
var imageExtensions = []string{".webp", ".png", ".jpg", ".jpeg", ".gif"}

var ErrImageNotFound = errors.New("image not found")

// ImageInfo describes a decoded cover image.
type ImageInfo struct {
	Path   string
	Format string
	Width  int
	Height int
}

// ResolveImage finds name under dir and decodes its header to make sure it
// is a real image.
func ResolveImage(dir, name string) (*ImageInfo, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(name))
	if clean == string(filepath.Separator) {
		return nil, fmt.Errorf("%w: empty name", ErrImageNotFound)
	}

	candidates := []string{filepath.Join(dir, clean)}
	if filepath.Ext(clean) == "" {
		candidates = candidates[:0]
		for _, ext := range imageExtensions {
			candidates = append(candidates, filepath.Join(dir, clean+ext))
		}
	}

	for _, path := range candidates {
		f, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		cfg, format, err := image.DecodeConfig(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
		}
		return &ImageInfo{Path: path, Format: format, Width: cfg.Width, Height: cfg.Height}, nil
	}
	return nil, fmt.Errorf("%w: %s (looked in %s)", ErrImageNotFound, strings.TrimPrefix(clean, string(filepath.Separator)), dir)
}
