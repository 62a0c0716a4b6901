package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"coco/internal/fsops"
	"coco/internal/match"
)

// Options controls a listing
type Options struct {
	// Filter selects which entries are emitted; nil emits everything
	Filter match.Matcher
	// MaxDepth is how many levels below the root to descend: 0 lists only the
	// immediate children, a negative value is unbounded
	MaxDepth int
}

// Entry is one listed directory entry
type Entry struct {
	Path      string // root as given, joined with the entry's relative path
	Name      string
	Depth     int // 0 for immediate children of the root
	IsDir     bool
	IsSymlink bool
	Size      int64
}

// Lister enumerates directory trees
type Lister struct {
	logger zerolog.Logger
}

// NewLister creates a Lister that reports skipped subtrees to logger
func NewLister(logger zerolog.Logger) *Lister {
	return &Lister{logger: logger}
}

// List returns the entries below root in pre-order, siblings sorted by name.
// Symbolic links below root are listed but never descended. A root that is itself a
// symbolic link to a directory is listed, since the caller named it explicitly.
func (l *Lister) List(root string, opts Options) ([]Entry, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("could not find the directory path %q: %w", root, fsops.ErrPathNotFound)
		}
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%q is not a directory: %w", root, fsops.ErrNotADirectory)
	}

	walkRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root, err)
	}

	entries := make([]Entry, 0)
	err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// An unreadable directory below the root is skipped, the rest of the tree is still listed
			if d != nil && d.IsDir() && path != walkRoot && os.IsPermission(err) {
				l.logger.Warn().Str("path", path).Err(err).Msg("skipping unreadable directory")
				return filepath.SkipDir
			}
			return err
		}
		if path == walkRoot {
			return nil
		}

		rel, err := filepath.Rel(walkRoot, path)
		if err != nil {
			return err
		}
		depth := strings.Count(rel, string(filepath.Separator))

		isSymlink := d.Type()&fs.ModeSymlink != 0
		if match.Selects(opts.Filter, d.Name()) {
			var size int64
			if info, err := d.Info(); err == nil {
				size = info.Size()
			}
			entries = append(entries, Entry{
				Path:      filepath.Join(root, rel),
				Name:      d.Name(),
				Depth:     depth,
				IsDir:     d.IsDir(),
				IsSymlink: isSymlink,
				Size:      size,
			})
		}

		if d.IsDir() && opts.MaxDepth >= 0 && depth >= opts.MaxDepth {
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", root, err)
	}

	l.logger.Debug().
		Str("path", root).
		Int("max_depth", opts.MaxDepth).
		Int("entries", len(entries)).
		Msg("listing complete")

	return entries, nil
}
