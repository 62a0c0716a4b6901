package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coco/internal/database"
	"coco/internal/exitcodes"
)

func seedHistory(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "history.db")
	db, err := database.NewHistoryDB(dbPath)
	require.NoError(t, err)
	defer db.Close()

	records := []database.Record{
		{Action: database.ActionDelete, Command: "delete build", Path: "/work/build", ObjectType: "directory", Entries: 12, Size: 4096},
		{Action: database.ActionDelete, Command: "delete notes.txt", Path: "/work/notes.txt", ObjectType: "file", Entries: 1, Size: 10},
		{Action: database.ActionSkip, Command: "delete /etc", Path: "/etc", ObjectType: "directory", ErrorMessage: "protected path: /etc"},
		{Action: database.ActionDelete, Command: "delete old", Path: "/work/old", ObjectType: "file", Entries: 1, Size: 1, Timestamp: time.Now().AddDate(0, 0, -100)},
	}
	for _, r := range records {
		require.NoError(t, db.RecordDeletion(r))
	}
	return dbPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{3 * 1024 * 1024 * 1024, "3.0 GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatBytes(tt.in), "formatBytes(%d)", tt.in)
	}
}

func TestRecentRecords(t *testing.T) {
	dbPath := seedHistory(t)

	out, err := execute(t, "--db", dbPath, "--recent", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "/work/build")
	assert.Contains(t, out, "4.0 KB")
	assert.Contains(t, out, "delete /etc")
}

func TestFilterByAction(t *testing.T) {
	dbPath := seedHistory(t)

	out, err := execute(t, "--db", dbPath, "--action", "skip")
	require.NoError(t, err)
	assert.Contains(t, out, "Records with action: SKIP")
	assert.Contains(t, out, "/etc")
	assert.NotContains(t, out, "/work/build")
}

func TestFilterByPath(t *testing.T) {
	dbPath := seedHistory(t)

	out, err := execute(t, "--db", dbPath, "--path", "/work/%", "--json")
	require.NoError(t, err)

	var records []database.Record
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	assert.Len(t, records, 3)
}

func TestLargestRecords(t *testing.T) {
	dbPath := seedHistory(t)

	out, err := execute(t, "--db", dbPath, "--largest", "1", "--json")
	require.NoError(t, err)

	var records []database.Record
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "/work/build", records[0].Path)
}

func TestStats(t *testing.T) {
	dbPath := seedHistory(t)

	out, err := execute(t, "--db", dbPath, "--stats", "--days", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "Deletion Statistics (Last 7 days)")
	assert.Contains(t, out, "Targets Deleted:  2")
	assert.Contains(t, out, "Targets Skipped:  1")
	assert.Contains(t, out, "Entries Removed:  13")
}

func TestInfo(t *testing.T) {
	dbPath := seedHistory(t)

	out, err := execute(t, "--db", dbPath, "--info")
	require.NoError(t, err)
	assert.Contains(t, out, "Records:  4")
	assert.Contains(t, out, "Oldest:")
}

func TestPrune(t *testing.T) {
	dbPath := seedHistory(t)

	out, err := execute(t, "--db", dbPath, "--prune", "30")
	require.NoError(t, err)
	assert.Equal(t, "Removed 1 records older than 30 days\n", out)

	out, err = execute(t, "--db", dbPath, "--info")
	require.NoError(t, err)
	assert.Contains(t, out, "Records:  3")
}

func TestNoQuerySelected(t *testing.T) {
	dbPath := seedHistory(t)

	out, err := execute(t, "--db", dbPath)
	require.ErrorIs(t, err, errNoQuery)
	assert.Equal(t, exitcodes.UsageError, exitCode(err))
	assert.Contains(t, out, "Usage:")
}

func TestDatabasePathFromConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(home, "state"))

	dbPath := seedHistory(t)
	cfgPath := filepath.Join(home, "coco.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("history:\n  database_path: "+dbPath+"\n"), 0644))

	out, err := execute(t, "--config", cfgPath, "--recent", "1")
	require.NoError(t, err)
	// newest seeded record is the refused /etc delete
	assert.Contains(t, out, "SKIP")
	assert.Contains(t, out, "delete /etc")
	assert.NotContains(t, out, "/work/")
}

func TestInvalidConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "coco.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("color: rainbow\n"), 0644))

	_, err := execute(t, "--config", cfgPath, "--recent", "1")
	require.Error(t, err)
	assert.Equal(t, exitcodes.InvalidConfig, exitCode(err))
}

func TestDateRange(t *testing.T) {
	now := time.Date(2026, 3, 15, 13, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		since     string
		until     string
		wantStart time.Time
		wantEnd   time.Time
		wantErr   bool
	}{
		{
			name:      "since only ends tomorrow midnight",
			since:     "2026-03-01",
			wantStart: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "until is inclusive",
			since:     "2026-02-01",
			until:     "2026-02-28",
			wantStart: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "until only starts at the epoch",
			until:     "2026-01-31",
			wantStart: time.Unix(0, 0).UTC(),
			wantEnd:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		},
		{name: "malformed since", since: "15/03/2026", wantErr: true},
		{name: "malformed until", until: "yesterday", wantErr: true},
		{name: "since after until", since: "2026-03-10", until: "2026-03-01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := dateRange(tt.since, tt.until, now)
			if tt.wantErr {
				require.ErrorIs(t, err, errBadDate)
				assert.Equal(t, exitcodes.UsageError, exitCode(err))
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.wantStart.Equal(start), "start = %v, want %v", start, tt.wantStart)
			assert.True(t, tt.wantEnd.Equal(end), "end = %v, want %v", end, tt.wantEnd)
		})
	}
}

func TestFilterByDate(t *testing.T) {
	dbPath := seedHistory(t)
	now := time.Now()

	out, err := execute(t, "--db", dbPath, "--since", now.AddDate(0, 0, -7).Format(dateLayout), "--json")
	require.NoError(t, err)
	var recent []database.Record
	require.NoError(t, json.Unmarshal([]byte(out), &recent))
	assert.Len(t, recent, 3)

	out, err = execute(t, "--db", dbPath, "--until", now.AddDate(0, 0, -50).Format(dateLayout), "--json")
	require.NoError(t, err)
	var old []database.Record
	require.NoError(t, json.Unmarshal([]byte(out), &old))
	require.Len(t, old, 1)
	assert.Equal(t, "/work/old", old[0].Path)

	_, err = execute(t, "--db", dbPath, "--since", "not-a-date")
	require.ErrorIs(t, err, errBadDate)
}
