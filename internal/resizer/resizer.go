package resizer

import (
	"context"
	"fmt"

	"github.com/disintegration/imaging"

	"github.com/randoapp/rando-service/internal/model"
)

// Bounds is the target box for one size class. The source image is fit
// inside it preserving aspect ratio.
type Bounds struct {
	Width  int
	Height int
}

// Resizer produces the sized variants of a staged origin image.
type Resizer struct {
	abs     func(rel string) string
	bounds  map[model.SizeClass]Bounds
	quality int
}

func New(abs func(rel string) string, bounds map[model.SizeClass]Bounds, quality int) *Resizer {
	return &Resizer{abs: abs, bounds: bounds, quality: quality}
}

// Resize reads the staged origin and writes the variant for sc at
// targetRel. Each call decodes the origin itself so concurrent variants
// never share a mutable image.
func (r *Resizer) Resize(ctx context.Context, sc model.SizeClass, originRel, targetRel string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, ok := r.bounds[sc]
	if !ok {
		return fmt.Errorf("resize: no bounds configured for size %q", sc)
	}
	src, err := imaging.Open(r.abs(originRel), imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("resize %s: open origin: %w", sc, err)
	}
	dst := imaging.Fit(src, b.Width, b.Height, imaging.Lanczos)
	if err := imaging.Save(dst, r.abs(targetRel), imaging.JPEGQuality(r.quality)); err != nil {
		return fmt.Errorf("resize %s: save: %w", sc, err)
	}
	return nil
}
