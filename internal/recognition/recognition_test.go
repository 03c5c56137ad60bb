package recognition

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubScanner struct {
	name string
	tags []string
	err  error
}

func (s stubScanner) Name() string { return s.name }

func (s stubScanner) Scan(context.Context, string) ([]string, error) {
	return s.tags, s.err
}

func TestRecognizeMergesEnabledScanners(t *testing.T) {
	svc := NewService(zap.NewNop().Sugar(),
		stubScanner{name: "labels", tags: []string{"dog", "tree"}},
		stubScanner{name: "faces", tags: []string{"person", "dog"}},
		stubScanner{name: "unused", tags: []string{"pizza"}},
	)

	tags, err := svc.Recognize(context.Background(), "/tmp/small.jpg", []string{"labels", "faces"})
	require.NoError(t, err)

	// scanner order kept, duplicates collapsed, disabled scanner ignored
	assert.Equal(t, []string{"dog", "tree", "person"}, tags)
}

func TestRecognizeNoScannersEnabled(t *testing.T) {
	svc := NewService(zap.NewNop().Sugar(), stubScanner{name: "labels", tags: []string{"dog"}})

	tags, err := svc.Recognize(context.Background(), "/tmp/small.jpg", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{}, tags)
}

func TestRecognizeScannerFailure(t *testing.T) {
	svc := NewService(zap.NewNop().Sugar(),
		stubScanner{name: "labels", err: errors.New("backend down")},
	)

	_, err := svc.Recognize(context.Background(), "/tmp/small.jpg", []string{"labels"})
	assert.ErrorContains(t, err, "backend down")
}

func TestRecognizeUnknownScanner(t *testing.T) {
	svc := NewService(zap.NewNop().Sugar())

	_, err := svc.Recognize(context.Background(), "/tmp/small.jpg", []string{"ghost"})
	assert.ErrorContains(t, err, "not registered")
}
