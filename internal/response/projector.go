package response

import (
	"sort"

	"github.com/randoapp/rando-service/internal/model"
)

// PostImage is the versioned public payload returned after an upload.
// Map URLs are pointers so an unresolved map serializes as JSON null,
// which is what pre-1.0.19 clients expect.
type PostImage struct {
	RandoID      string           `json:"randoId"`
	Creation     int64            `json:"creation"`
	ImageURL     string           `json:"imageURL"`
	ImageSizeURL SizeURLs         `json:"imageSizeURL"`
	MapURL       *string          `json:"mapURL"`
	MapSizeURL   NullableSizeURLs `json:"mapSizeURL"`
	Detected     []string         `json:"detected"`
}

type SizeURLs struct {
	Small  string `json:"small"`
	Medium string `json:"medium"`
	Large  string `json:"large"`
}

type NullableSizeURLs struct {
	Small  *string `json:"small"`
	Medium *string `json:"medium"`
	Large  *string `json:"large"`
}

// Projector maps persisted randos into the public payload. The raw-tag
// to category table is fixed at construction; categories are matched in
// sorted name order so projection is deterministic.
type Projector struct {
	categories []string
	rawTags    map[string][]string
}

func NewProjector(table map[string][]string) *Projector {
	categories := make([]string, 0, len(table))
	for name := range table {
		categories = append(categories, name)
	}
	sort.Strings(categories)
	return &Projector{categories: categories, rawTags: table}
}

func (p *Projector) Project(r *model.Rando) *PostImage {
	return &PostImage{
		RandoID:  r.RandoID,
		Creation: r.Creation,
		ImageURL: r.ImageURL,
		ImageSizeURL: SizeURLs{
			Small:  r.ImageSizeURL.Small,
			Medium: r.ImageSizeURL.Medium,
			Large:  r.ImageSizeURL.Large,
		},
		MapURL: nullable(r.MapURL),
		MapSizeURL: NullableSizeURLs{
			Small:  nullable(r.MapSizeURL.Small),
			Medium: nullable(r.MapSizeURL.Medium),
			Large:  nullable(r.MapSizeURL.Large),
		},
		Detected: p.detect(r.Tags),
	}
}

// detect maps each raw tag to its category, dropping tags no category
// claims. Record order is preserved; dropped entries are simply omitted.
func (p *Projector) detect(tags []string) []string {
	detected := []string{}
	for _, tag := range tags {
		if cat, ok := p.category(tag); ok {
			detected = append(detected, cat)
		}
	}
	return detected
}

func (p *Projector) category(tag string) (string, bool) {
	for _, cat := range p.categories {
		for _, raw := range p.rawTags[cat] {
			if raw == tag {
				return cat, true
			}
		}
	}
	return "", false
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
