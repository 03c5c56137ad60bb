package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randoapp/rando-service/internal/model"
)

func testTable() map[string][]string {
	return map[string][]string{
		"animal": {"dog", "cat"},
		"food":   {"pizza", "sushi"},
	}
}

func TestProjectDetectedTags(t *testing.T) {
	tests := []struct {
		name string
		tags []string
		want []string
	}{
		{"single match", []string{"dog"}, []string{"animal"}},
		{"unmatched dropped", []string{"dog", "submarine", "pizza"}, []string{"animal", "food"}},
		{"order preserved", []string{"pizza", "cat"}, []string{"food", "animal"}},
		{"duplicates kept per raw tag", []string{"dog", "cat"}, []string{"animal", "animal"}},
		{"no tags", []string{}, []string{}},
		{"nothing matches", []string{"submarine"}, []string{}},
	}
	p := NewProjector(testTable())
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := p.Project(&model.Rando{Tags: tc.tags})
			assert.Equal(t, tc.want, got.Detected)
		})
	}
}

func TestProjectFields(t *testing.T) {
	p := NewProjector(testTable())
	rando := &model.Rando{
		RandoID:  "abc123",
		Creation: 1724800000000,
		ImageURL: "https://img/large.jpg",
		ImageSizeURL: model.SizeURLs{
			Small:  "https://img/small.jpg",
			Medium: "https://img/medium.jpg",
			Large:  "https://img/large.jpg",
		},
		MapURL: "https://map/large",
		MapSizeURL: model.SizeURLs{
			Small:  "https://map/small",
			Medium: "https://map/medium",
			Large:  "https://map/large",
		},
		Tags: []string{"dog"},
	}
	got := p.Project(rando)

	assert.Equal(t, "abc123", got.RandoID)
	assert.Equal(t, int64(1724800000000), got.Creation)
	assert.Equal(t, rando.ImageSizeURL.Large, got.ImageURL)
	assert.Equal(t, "https://img/small.jpg", got.ImageSizeURL.Small)
	require.NotNil(t, got.MapURL)
	assert.Equal(t, "https://map/large", *got.MapURL)
	require.NotNil(t, got.MapSizeURL.Medium)
	assert.Equal(t, "https://map/medium", *got.MapSizeURL.Medium)
}

func TestProjectAbsentMapIsNull(t *testing.T) {
	p := NewProjector(testTable())
	got := p.Project(&model.Rando{RandoID: "x"})

	assert.Nil(t, got.MapURL)
	assert.Nil(t, got.MapSizeURL.Small)
	assert.Nil(t, got.MapSizeURL.Medium)
	assert.Nil(t, got.MapSizeURL.Large)
}
