package staging

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/multierr"
)

// Stager manages the local staging directory the pipeline works in:
// inbound uploads move in, resized variants are written next to them,
// and everything is reaped after the variants reach the object store.
// Paths handed to it are staging-relative; collisions cannot happen
// because every path embeds the per-request rando id.
type Stager struct {
	root string
}

func NewStager(root string) *Stager {
	return &Stager{root: root}
}

// Abs resolves a staging-relative path to an absolute one.
func (s *Stager) Abs(rel string) string {
	return filepath.Join(s.root, rel)
}

// MoveIn relocates the inbound temp file to the staging origin path,
// creating intermediate directories. Rename first; when the temp dir
// lives on another filesystem, fall back to copy+remove. On success the
// inbound file no longer exists at its original path.
func (s *Stager) MoveIn(inboundPath, originRel string) error {
	dst := s.Abs(originRel)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("stage %s: %w", originRel, err)
	}
	if err := os.Rename(inboundPath, dst); err == nil {
		return nil
	}
	if err := copyFile(inboundPath, dst); err != nil {
		return fmt.Errorf("stage %s: %w", originRel, err)
	}
	if err := os.Remove(inboundPath); err != nil {
		return fmt.Errorf("stage %s: %w", originRel, err)
	}
	return nil
}

// Reap deletes the given staging-relative paths concurrently. All
// deletes are attempted regardless of individual failures; the combined
// error reports every file that could not be removed. Callers treat a
// non-nil result as a warning, not a hard failure.
func (s *Stager) Reap(ctx context.Context, rels ...string) error {
	errs := make([]error, len(rels))
	var wg sync.WaitGroup
	for i, rel := range rels {
		wg.Add(1)
		go func(i int, rel string) {
			defer wg.Done()
			if err := os.Remove(s.Abs(rel)); err != nil {
				errs[i] = fmt.Errorf("reap %s: %w", rel, err)
			}
		}(i, rel)
	}
	wg.Wait()
	return multierr.Combine(errs...)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
