package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"coco/internal/config"
	"coco/internal/database"
	"coco/internal/exitcodes"
)

var (
	errNoQuery = errors.New("no query selected")
	errBadDate = errors.New("invalid date")
)

const dateLayout = "2006-01-02"

type options struct {
	configPath string
	dbPath     string
	recent     int
	action     string
	pathLike   string
	largest    int
	since      string
	until      string
	stats      bool
	days       int
	info       bool
	prune      int
	jsonOutput bool
}

func newRootCmd(out io.Writer) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "coco-history",
		Short: "Query the coco deletion history",
		Example: `  coco-history --recent 10            # 10 most recent targets
  coco-history --stats --days 7        # Totals for the last week
  coco-history --action SKIP           # Targets refused by the safety checks
  coco-history --path '/home/me/%'     # Targets below /home/me
  coco-history --largest 5 --json      # 5 largest deletions as JSON
  coco-history --since 2026-01-01      # Records from January 1st on
  coco-history --prune 90              # Drop records older than 90 days`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := run(out, opts)
			if errors.Is(err, errNoQuery) {
				_ = cmd.Usage()
			}
			return err
		},
	}
	cmd.SetOut(out)

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "coco config file (default: $XDG_CONFIG_HOME/coco/config.yaml)")
	f.StringVar(&opts.dbPath, "db", "", "history database (default: history.database_path from the config)")
	f.IntVar(&opts.recent, "recent", 0, "show the N most recent records")
	f.StringVar(&opts.action, "action", "", "filter by action (DELETE, SKIP, ERROR)")
	f.StringVar(&opts.pathLike, "path", "", "filter by path pattern (SQL LIKE syntax)")
	f.IntVar(&opts.largest, "largest", 0, "show the N largest deletions")
	f.StringVar(&opts.since, "since", "", "show records on or after this date (YYYY-MM-DD)")
	f.StringVar(&opts.until, "until", "", "show records on or before this date (YYYY-MM-DD)")
	f.BoolVar(&opts.stats, "stats", false, "show deletion statistics")
	f.IntVar(&opts.days, "days", 30, "number of days covered by --stats")
	f.BoolVar(&opts.info, "info", false, "show database size and covered time range")
	f.IntVar(&opts.prune, "prune", 0, "delete records older than N days and compact the database")
	f.BoolVar(&opts.jsonOutput, "json", false, "output in JSON format")

	return cmd
}

func run(out io.Writer, opts options) error {
	if !opts.selected() {
		return errNoQuery
	}

	dbPath, err := resolveDBPath(opts)
	if err != nil {
		return err
	}

	db, err := database.NewHistoryDB(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database %s: %w", dbPath, err)
	}
	defer db.Close()

	switch {
	case opts.prune > 0:
		return prune(out, db, opts.prune)
	case opts.info:
		return showInfo(out, db, dbPath, opts.jsonOutput)
	case opts.stats:
		return showStats(out, db, opts.days, opts.jsonOutput)
	case opts.recent > 0:
		return showRecords(out, opts.jsonOutput, "", func() ([]database.Record, error) {
			return db.GetRecent(opts.recent)
		})
	case opts.action != "":
		action := strings.ToUpper(opts.action)
		return showRecords(out, opts.jsonOutput, "Records with action: "+action, func() ([]database.Record, error) {
			return db.GetByAction(action)
		})
	case opts.pathLike != "":
		return showRecords(out, opts.jsonOutput, "Records matching path pattern: "+opts.pathLike, func() ([]database.Record, error) {
			return db.GetByPath(opts.pathLike)
		})
	case opts.largest > 0:
		return showRecords(out, opts.jsonOutput, fmt.Sprintf("Largest %d deletions:", opts.largest), func() ([]database.Record, error) {
			return db.GetLargest(opts.largest)
		})
	case opts.since != "" || opts.until != "":
		start, end, err := dateRange(opts.since, opts.until, time.Now())
		if err != nil {
			return err
		}
		title := fmt.Sprintf("Records from %s to %s", start.Format(dateLayout), end.Add(-time.Nanosecond).Format(dateLayout))
		return showRecords(out, opts.jsonOutput, title, func() ([]database.Record, error) {
			return db.GetByDateRange(start, end)
		})
	default:
		return errNoQuery
	}
}

func (o options) selected() bool {
	return o.prune > 0 || o.info || o.stats || o.recent > 0 ||
		o.action != "" || o.pathLike != "" || o.largest > 0 ||
		o.since != "" || o.until != ""
}

// dateRange turns inclusive local dates into [start, end). An empty since
// starts at the epoch, an empty until ends today.
func dateRange(since, until string, now time.Time) (time.Time, time.Time, error) {
	start := time.Unix(0, 0).In(now.Location())
	if since != "" {
		t, err := time.ParseInLocation(dateLayout, since, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: --since %q: %w", errBadDate, since, err)
		}
		start = t
	}

	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if until != "" {
		t, err := time.ParseInLocation(dateLayout, until, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: --until %q: %w", errBadDate, until, err)
		}
		end = t
	}
	end = end.AddDate(0, 0, 1)

	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: --since %s is after --until %s", errBadDate, since, until)
	}
	return start, end, nil
}

// resolveDBPath prefers --db, then the configured history path
func resolveDBPath(opts options) (string, error) {
	if opts.dbPath != "" {
		return opts.dbPath, nil
	}
	cfg, err := config.LoadOrDefault(opts.configPath)
	if err != nil {
		return "", err
	}
	return cfg.History.DatabasePath, nil
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitcodes.Success
	case errors.Is(err, config.ErrInvalid):
		return exitcodes.InvalidConfig
	case errors.Is(err, errNoQuery), errors.Is(err, errBadDate):
		return exitcodes.UsageError
	default:
		return exitcodes.RuntimeError
	}
}

func showRecords(out io.Writer, jsonOutput bool, title string, query func() ([]database.Record, error)) error {
	records, err := query()
	if err != nil {
		return fmt.Errorf("failed to query history: %w", err)
	}
	if jsonOutput {
		return writeJSON(out, records)
	}
	if title != "" {
		fmt.Fprintf(out, "%s\n\n", title)
	}
	return printRecords(out, records)
}

func showStats(out io.Writer, db *database.HistoryDB, days int, jsonOutput bool) error {
	stats, err := db.GetStats(days)
	if err != nil {
		return fmt.Errorf("failed to get statistics: %w", err)
	}
	if jsonOutput {
		return writeJSON(out, stats)
	}

	fmt.Fprintf(out, "Deletion Statistics (Last %d days)\n", days)
	fmt.Fprintf(out, "Period: %s to %s\n\n", stats.StartDate.Format("2006-01-02"), stats.EndDate.Format("2006-01-02"))
	fmt.Fprintf(out, "Targets Deleted:  %d\n", stats.TotalDeletions)
	fmt.Fprintf(out, "Targets Skipped:  %d\n", stats.TotalSkipped)
	fmt.Fprintf(out, "Errors:           %d\n", stats.TotalErrors)
	fmt.Fprintf(out, "Entries Removed:  %d\n", stats.EntriesDeleted)
	fmt.Fprintf(out, "Space Freed:      %s\n", formatBytes(stats.BytesDeleted))
	return nil
}

func showInfo(out io.Writer, db *database.HistoryDB, dbPath string, jsonOutput bool) error {
	info, err := db.GetDatabaseInfo()
	if err != nil {
		return fmt.Errorf("failed to read database info: %w", err)
	}
	if jsonOutput {
		return writeJSON(out, info)
	}

	fmt.Fprintf(out, "Database: %s\n", dbPath)
	fmt.Fprintf(out, "Records:  %d\n", info.TotalRecords)
	fmt.Fprintf(out, "Size:     %s\n", formatBytes(info.SizeBytes))
	if info.TotalRecords > 0 {
		fmt.Fprintf(out, "Oldest:   %s\n", info.Oldest.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "Newest:   %s\n", info.Newest.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func prune(out io.Writer, db *database.HistoryDB, days int) error {
	removed, err := db.DeleteOldRecords(days)
	if err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}
	if err := db.Vacuum(); err != nil {
		return fmt.Errorf("failed to compact database: %w", err)
	}
	fmt.Fprintf(out, "Removed %d records older than %d days\n", removed, days)
	return nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printRecords(out io.Writer, records []database.Record) error {
	if len(records) == 0 {
		fmt.Fprintln(out, "No records found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTimestamp\tAction\tType\tEntries\tSize\tCommand\tPath")
	fmt.Fprintln(w, "--\t---------\t------\t----\t-------\t----\t-------\t----")
	for _, r := range records {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			r.ID, r.Timestamp.Format("2006-01-02 15:04:05"), r.Action, r.ObjectType,
			r.Entries, formatBytes(r.Size), r.Command, r.Path)
	}
	return w.Flush()
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
