package mapurl

import (
	"fmt"

	"github.com/randoapp/rando-service/internal/model"
)

// GeoResolver turns a requester IP into approximate coordinates for the
// map fallback. Implementations are expected to be in-memory lookups.
type GeoResolver interface {
	Locate(ip string) (model.Location, bool)
}

// NoGeo is a GeoResolver that never resolves. Deployments without a geo
// database fall back to the all-empty map bundle.
type NoGeo struct{}

func (NoGeo) Locate(string) (model.Location, bool) { return model.Location{}, false }

// Resolver formats static-map URL bundles. It performs no I/O: the URL
// template and per-size dimensions are fixed at construction and the geo
// lookup is injected.
type Resolver struct {
	// template receives latitude, longitude, zoom, width, height.
	template string
	zoom     int
	sizes    map[model.SizeClass]int
	geo      GeoResolver
}

func NewResolver(template string, zoom int, sizes map[model.SizeClass]int, geo GeoResolver) *Resolver {
	if geo == nil {
		geo = NoGeo{}
	}
	return &Resolver{template: template, zoom: zoom, sizes: sizes, geo: geo}
}

// Resolve returns the map URL bundle for a rando. Explicit coordinates
// win; otherwise the requester IP is looked up; when neither yields a
// usable point every URL in the bundle stays empty.
func (r *Resolver) Resolve(loc *model.Location, ip string) model.SizeURLs {
	point, ok := r.point(loc, ip)
	if !ok {
		return model.SizeURLs{}
	}
	var urls model.SizeURLs
	for _, sc := range model.SizeClasses() {
		side := r.sizes[sc]
		if side <= 0 {
			continue
		}
		urls.SetForSize(sc, fmt.Sprintf(r.template, point.Latitude, point.Longitude, r.zoom, side, side))
	}
	return urls
}

func (r *Resolver) point(loc *model.Location, ip string) (model.Location, bool) {
	if loc != nil && (loc.Latitude != 0 || loc.Longitude != 0) {
		return *loc, true
	}
	if ip == "" {
		return model.Location{}, false
	}
	return r.geo.Locate(ip)
}
