package recognition

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Scanner is a pluggable recognition backend. Scan returns the raw tags
// it detected in the image at path.
type Scanner interface {
	Name() string
	Scan(ctx context.Context, imagePath string) ([]string, error)
}

// Service runs the enabled scanners against the small variant and
// merges their raw tags. Recognition is an enhancement: the caller
// downgrades any returned error to an empty tag list.
type Service struct {
	scanners map[string]Scanner
	log      *zap.SugaredLogger
}

func NewService(log *zap.SugaredLogger, scanners ...Scanner) *Service {
	byName := make(map[string]Scanner, len(scanners))
	for _, sc := range scanners {
		byName[sc.Name()] = sc
	}
	return &Service{scanners: byName, log: log}
}

// Recognize runs each enabled scanner in order and merges tags,
// preserving scanner order and first occurrence. The first scanner
// failure aborts with that error; the caller treats it as best-effort.
func (s *Service) Recognize(ctx context.Context, imagePath string, enabled []string) ([]string, error) {
	tags := []string{}
	seen := make(map[string]bool)
	for _, name := range enabled {
		sc, ok := s.scanners[name]
		if !ok {
			return nil, fmt.Errorf("recognize: scanner %q is not registered", name)
		}
		found, err := sc.Scan(ctx, imagePath)
		if err != nil {
			return nil, fmt.Errorf("recognize: scanner %q: %w", name, err)
		}
		s.log.Debugw("scanner done", "scanner", name, "tags", found)
		for _, t := range found {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	return tags, nil
}
