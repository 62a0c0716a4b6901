package runner

import (
	"context"
	"fmt"
	"path/filepath"

	"coco/internal/command"
	"coco/internal/match"
	"coco/internal/metrics"
	"coco/internal/scan"
)

func (r *Runner) runList(ctx context.Context, c command.List) error {
	targets := c.Targets
	if len(targets) == 0 {
		targets = []string{r.session.WorkDir}
	}

	opts := scan.Options{MaxDepth: c.MaxDepth()}
	if globs := c.Globs(); len(globs) > 0 {
		g, err := match.Compile(globs...)
		if err != nil {
			return fmt.Errorf("%w: %w", command.ErrInvalidOption, err)
		}
		opts.Filter = g
	}

	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return err
		}

		root := r.resolve(target)
		entries, err := r.lister.List(root, opts)
		if err != nil {
			return err
		}

		for _, e := range entries {
			r.reporter.Entry(displayPath(target, root, e.Path))
		}
		metrics.RecordListed(len(entries))
	}
	return nil
}

// displayPath re-roots an entry found below root at target as the user typed it
func displayPath(target, root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.Join(target, rel)
}
