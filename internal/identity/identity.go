package identity

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/randoapp/rando-service/internal/model"
)

// Generator produces rando ids and the staging-relative paths derived
// from them. Ids are hex strings drawn from crypto/rand; the first
// prefixLen characters become the shard directory so one directory never
// accumulates every image.
type Generator struct {
	byteLen   int
	prefixLen int
	ext       string
}

func NewGenerator(byteLen, prefixLen int, ext string) *Generator {
	return &Generator{byteLen: byteLen, prefixLen: prefixLen, ext: ext}
}

// Generate returns a fresh id and its four derived paths. A failing
// random source is fatal to the request; there is no retry.
func (g *Generator) Generate() (string, model.ImagePaths, error) {
	buf := make([]byte, g.byteLen)
	if _, err := rand.Read(buf); err != nil {
		return "", model.ImagePaths{}, fmt.Errorf("generate rando id: %w", err)
	}
	id := hex.EncodeToString(buf)
	prefix := id[:g.prefixLen]
	paths := model.ImagePaths{
		Origin: fmt.Sprintf("%s/%s.%s", prefix, id, g.ext),
		Small:  fmt.Sprintf("%s/%s_%s.%s", prefix, id, model.SizeSmall, g.ext),
		Medium: fmt.Sprintf("%s/%s_%s.%s", prefix, id, model.SizeMedium, g.ext),
		Large:  fmt.Sprintf("%s/%s_%s.%s", prefix, id, model.SizeLarge, g.ext),
	}
	return id, paths, nil
}
