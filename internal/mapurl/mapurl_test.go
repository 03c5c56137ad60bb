package mapurl

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/randoapp/rando-service/internal/model"
)

const template = "https://map.example.com/%f,%f/%d/%dx%d"

func sizes() map[model.SizeClass]int {
	return map[model.SizeClass]int{
		model.SizeSmall:  480,
		model.SizeMedium: 1024,
		model.SizeLarge:  1920,
	}
}

type staticGeo struct {
	loc model.Location
	ok  bool
}

func (g staticGeo) Locate(string) (model.Location, bool) { return g.loc, g.ok }

func TestResolveFromCoordinates(t *testing.T) {
	r := NewResolver(template, 15, sizes(), nil)
	loc := &model.Location{Latitude: 53.9, Longitude: 27.5}

	got := r.Resolve(loc, "10.0.0.1")

	want := fmt.Sprintf(template, 53.9, 27.5, 15, 1920, 1920)
	assert.Equal(t, want, got.Large)
	assert.Equal(t, fmt.Sprintf(template, 53.9, 27.5, 15, 480, 480), got.Small)
	assert.Equal(t, fmt.Sprintf(template, 53.9, 27.5, 15, 1024, 1024), got.Medium)
}

func TestResolveFallsBackToIP(t *testing.T) {
	geo := staticGeo{loc: model.Location{Latitude: 40.4, Longitude: -3.7}, ok: true}
	r := NewResolver(template, 15, sizes(), geo)

	got := r.Resolve(nil, "10.0.0.1")

	assert.Equal(t, fmt.Sprintf(template, 40.4, -3.7, 15, 1920, 1920), got.Large)
}

func TestResolveDegenerateInputIsEmptyBundle(t *testing.T) {
	tests := []struct {
		name string
		loc  *model.Location
		ip   string
		geo  GeoResolver
	}{
		{"no location no ip", nil, "", nil},
		{"zero coordinates unresolvable ip", &model.Location{}, "10.0.0.1", staticGeo{}},
		{"no location unresolvable ip", nil, "10.0.0.1", NoGeo{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := NewResolver(template, 15, sizes(), tc.geo)
			got := r.Resolve(tc.loc, tc.ip)
			assert.Equal(t, model.SizeURLs{}, got)
		})
	}
}
