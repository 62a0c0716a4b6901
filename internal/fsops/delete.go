package fsops

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"coco/internal/match"
)

// DeleteOptions controls a delete walk
type DeleteOptions struct {
	// Filter selects which entries below the root are removed; nil removes the root itself
	Filter match.Matcher
}

// DeleteResult summarises what a delete walk removed
type DeleteResult struct {
	Removed int   // entries removed, directories included
	Bytes   int64 // apparent size of removed non-directories
	Skipped int   // entries left in place because the filter did not select them
}

// Delete removes path and everything below it, children before parents.
// Symbolic links are removed, never followed. The first failing removal aborts the walk:
// entries already removed stay removed.
func Delete(d Deleter, path string, opts DeleteOptions) (DeleteResult, error) {
	var res DeleteResult

	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return res, fmt.Errorf("the system cannot find %q, it may have been moved or already deleted: %w", path, ErrPathNotFound)
		}
		return res, fmt.Errorf("stat %s: %w", path, err)
	}

	if opts.Filter == nil {
		err = removeTree(d, path, info, &res)
		return res, err
	}

	if !info.IsDir() {
		if !opts.Filter.Match(filepath.Base(path)) {
			res.Skipped++
			return res, nil
		}
		err = removeTree(d, path, info, &res)
		return res, err
	}

	err = removeMatching(d, path, opts.Filter, &res)
	return res, err
}

// removeTree removes path post-order
func removeTree(d Deleter, path string, info fs.FileInfo, res *DeleteResult) error {
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return fmt.Errorf("read directory %s: %w", path, err)
		}
		// os.ReadDir returns entries sorted by name
		for _, entry := range entries {
			child := filepath.Join(path, entry.Name())
			childInfo, err := entry.Info()
			if err != nil {
				return fmt.Errorf("stat %s: %w", child, err)
			}
			if err := removeTree(d, child, childInfo, res); err != nil {
				return err
			}
		}
	} else {
		res.Bytes += info.Size()
	}

	if err := d.Remove(path); err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	res.Removed++
	return nil
}

// removeMatching removes the entries below dir selected by filter, keeping dir itself
func removeMatching(d Deleter, dir string, filter match.Matcher, res *DeleteResult) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		child := filepath.Join(dir, entry.Name())
		childInfo, err := entry.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", child, err)
		}

		switch {
		case filter.Match(entry.Name()):
			if err := removeTree(d, child, childInfo, res); err != nil {
				return err
			}
		case childInfo.IsDir():
			if err := removeMatching(d, child, filter, res); err != nil {
				return err
			}
		default:
			res.Skipped++
		}
	}
	return nil
}
