// Package imageurl turns opaque image references into renderable URLs.
package imageurl

import (
	"regexp"
	"strings"
)

// asset refs look like image-<asset>-<W>x<H>-<ext>
var assetRef = regexp.MustCompile(`^image-([A-Za-z0-9]+)-(\d+x\d+)-([a-z0-9]+)$`)

type Resolver struct {
	base    string
	project string
	dataset string
}

func NewResolver(base, project, dataset string) *Resolver {
	return &Resolver{
		base:    strings.TrimRight(base, "/"),
		project: strings.Trim(project, "/"),
		dataset: strings.Trim(dataset, "/"),
	}
}

// URL never fails: unknown shapes are joined to the base as-is.
func (r *Resolver) URL(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if m := assetRef.FindStringSubmatch(ref); m != nil {
		return r.join(m[1] + "-" + m[2] + "." + m[3])
	}
	return r.join(strings.TrimLeft(ref, "/"))
}

func (r *Resolver) join(file string) string {
	parts := []string{r.base}
	if r.project != "" {
		parts = append(parts, r.project)
	}
	if r.dataset != "" {
		parts = append(parts, r.dataset)
	}
	return strings.Join(append(parts, file), "/")
}
