package runner

import (
	"context"
	"fmt"
	"strings"

	"coco/internal/command"
	"coco/internal/database"
	"coco/internal/fsops"
	"coco/internal/match"
	"coco/internal/metrics"
	"coco/internal/safety"
)

func (r *Runner) runDelete(ctx context.Context, c command.Delete) error {
	if len(c.Targets) == 0 {
		return command.ErrTargetMissing
	}

	var (
		opts  fsops.DeleteOptions
		globs string
	)
	if patterns := c.Globs(); len(patterns) > 0 {
		g, err := match.Compile(patterns...)
		if err != nil {
			return fmt.Errorf("%w: %w", command.ErrInvalidOption, err)
		}
		opts.Filter = g
		globs = g.String()
	}

	for _, target := range c.Targets {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.deleteTarget(target, opts, globs); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) deleteTarget(target string, opts fsops.DeleteOptions, globs string) error {
	// An empty target would resolve to the working directory itself
	if strings.TrimSpace(target) == "" {
		return fmt.Errorf("%w: empty delete target", safety.ErrInvalidPath)
	}

	path := r.resolve(target)
	objType := objectType(path)

	if err := r.validator.ValidateDeleteTarget(path); err != nil {
		r.logger.Warn().Str("path", path).Err(err).Msg("delete refused")
		r.record(database.ActionSkip, path, objType, fsops.DeleteResult{}, err)
		return fmt.Errorf("refusing to delete %s: %w", target, err)
	}

	res, err := fsops.Delete(r.deleter, path, opts)
	metrics.RecordDeletion(res.Removed, res.Bytes)
	if err != nil {
		r.logger.Error().
			Str("path", path).
			Str("object", objType).
			Int("removed", res.Removed).
			Err(err).
			Msg("delete failed")
		r.record(database.ActionError, path, objType, res, err)
		return err
	}

	r.logger.Info().
		Str("path", path).
		Str("object", objType).
		Int("removed", res.Removed).
		Int64("bytes", res.Bytes).
		Int("skipped", res.Skipped).
		Msg("delete complete")
	r.record(database.ActionDelete, path, objType, res, nil)

	if opts.Filter == nil {
		r.reporter.Success(fmt.Sprintf("Deleted %s.", target))
	} else {
		r.reporter.Success(fmt.Sprintf("Deleted %d %s matching %s in %s.",
			res.Removed, plural(res.Removed, "entry", "entries"), globs, target))
	}
	return nil
}

// record stores one target outcome. History is an audit trail: a failed
// write is logged and never fails the command.
func (r *Runner) record(action, path, objType string, res fsops.DeleteResult, cause error) {
	if r.history == nil {
		return
	}

	rec := database.Record{
		Action:     action,
		Command:    r.commandLine,
		Path:       path,
		ObjectType: objType,
		Entries:    res.Removed,
		Size:       res.Bytes,
	}
	if cause != nil {
		rec.ErrorMessage = cause.Error()
	}

	if err := r.history.RecordDeletion(rec); err != nil {
		r.logger.Error().Err(err).Str("path", path).Msg("failed to record history")
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
