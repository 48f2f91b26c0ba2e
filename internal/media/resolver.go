// Package media turns indexed image paths into storefront image URLs.
package media

import (
	"net/url"
	"strings"

	"github.com/loziogigio/omnicommerce/internal/domain"
)

// Size directories under the image base URI.
const (
	thumbDir = "thumb"
	smallDir = "small"
	largeDir = "large"
)

// Resolver builds size-variant URLs below a base URI.
type Resolver struct {
	base string
}

// NewResolver returns a resolver rooted at baseURI.
func NewResolver(baseURI string) *Resolver {
	return &Resolver{base: strings.TrimRight(baseURI, "/")}
}

// Resolve expands image paths into an ImageSet. The first path supplies the
// thumbnail, small and large variants; every path is part of the gallery at
// full size. Absolute URLs are kept as they are. It returns nil when no
// usable path is given.
func (r *Resolver) Resolve(paths []string) *domain.ImageSet {
	cleaned := make([]string, 0, len(paths))
	for _, p := range paths {
		if p = strings.TrimSpace(p); p != "" {
			cleaned = append(cleaned, p)
		}
	}
	if len(cleaned) == 0 {
		return nil
	}

	set := &domain.ImageSet{
		Thumbnail: r.url(thumbDir, cleaned[0]),
		Small:     r.url(smallDir, cleaned[0]),
		Large:     r.url(largeDir, cleaned[0]),
		Gallery:   make([]string, len(cleaned)),
	}
	for i, p := range cleaned {
		set.Gallery[i] = r.url("", p)
	}
	return set
}

func (r *Resolver) url(dir, path string) string {
	if u, err := url.Parse(path); err == nil && u.IsAbs() {
		return path
	}
	path = strings.TrimLeft(path, "/")
	if dir == "" {
		return r.base + "/" + path
	}
	return r.base + "/" + dir + "/" + path
}
